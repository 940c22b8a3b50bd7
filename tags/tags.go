// SPDX-License-Identifier: EPL-2.0

package tags

import (
	"slices"
	"sort"
	"strings"
)

// LineSeparator joins multiple values of one field in Joined.
const LineSeparator = "\n"

// Well-known field names.
const (
	KeyTitle        = "TITLE"
	KeyVersion      = "VERSION"
	KeyAlbum        = "ALBUM"
	KeyTrackNumber  = "TRACKNUMBER"
	KeyArtist       = "ARTIST"
	KeyPerformer    = "PERFORMER"
	KeyCopyright    = "COPYRIGHT"
	KeyLicense      = "LICENSE"
	KeyOrganization = "ORGANIZATION"
	KeyDescription  = "DESCRIPTION"
	KeyGenre        = "GENRE"
	KeyDate         = "DATE"
	KeyLocation     = "LOCATION"
	KeyContact      = "CONTACT"
	KeyISRC         = "ISRC"
)

// Data holds the vendor string and the comment fields of one logical stream.
// Keys are stored upper-cased; values keep the order they were encountered in.
type Data struct {
	vendor string
	fields map[string][]string
}

// New parses raw "KEY=VALUE" comments.
//
// A key written as "KEY[locale]" is folded into KEY with the value prefixed
// by the upper-cased locale, e.g. "TITLE[fr]=Bonjour" becomes
// TITLE = "FR: Bonjour".
func New(vendor string, comments []string) *Data {
	fields := make(map[string][]string, len(comments))

	for _, comment := range comments {
		key, value, _ := strings.Cut(comment, "=")

		if idx := strings.IndexByte(key, '['); idx > -1 {
			locale := key[idx+1:]
			if end := strings.IndexByte(locale, ']'); end > -1 {
				locale = locale[:end]
			}
			value = strings.ToUpper(locale) + ": " + value
			key = key[:idx]
		}

		key = strings.ToUpper(key)
		fields[key] = append(fields[key], value)
	}

	return &Data{vendor: vendor, fields: fields}
}

// Vendor returns the encoder vendor string.
func (d *Data) Vendor() string { return d.vendor }

// Single returns the last value stored for key, or "" if there is none.
func (d *Data) Single(key string) string {
	values := d.fields[strings.ToUpper(key)]
	if len(values) == 0 {
		return ""
	}

	return values[len(values)-1]
}

// Joined returns every value of key joined with LineSeparator.
func (d *Data) Joined(key string) string {
	return strings.Join(d.fields[strings.ToUpper(key)], LineSeparator)
}

// Multi returns all values of key in encounter order. The result is never nil.
func (d *Data) Multi(key string) []string {
	values := d.fields[strings.ToUpper(key)]
	if len(values) == 0 {
		return []string{}
	}

	return slices.Clone(values)
}

// Keys returns the stored field names, sorted.
func (d *Data) Keys() []string {
	keys := make([]string, 0, len(d.fields))
	for k := range d.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// All returns a copy of every field.
func (d *Data) All() map[string][]string {
	out := make(map[string][]string, len(d.fields))
	for k, v := range d.fields {
		out[k] = slices.Clone(v)
	}

	return out
}

func (d *Data) Title() string        { return d.Single(KeyTitle) }
func (d *Data) Version() string      { return d.Single(KeyVersion) }
func (d *Data) Album() string        { return d.Single(KeyAlbum) }
func (d *Data) TrackNumber() string  { return d.Single(KeyTrackNumber) }
func (d *Data) Artist() string       { return d.Single(KeyArtist) }
func (d *Data) Copyright() string    { return d.Single(KeyCopyright) }
func (d *Data) License() string      { return d.Single(KeyLicense) }
func (d *Data) Organization() string { return d.Single(KeyOrganization) }
func (d *Data) Description() string  { return d.Single(KeyDescription) }
func (d *Data) Contact() string      { return d.Single(KeyContact) }
func (d *Data) ISRC() string         { return d.Single(KeyISRC) }

func (d *Data) Performers() []string { return d.Multi(KeyPerformer) }
func (d *Data) Genres() []string     { return d.Multi(KeyGenre) }
func (d *Data) Dates() []string      { return d.Multi(KeyDate) }
func (d *Data) Locations() []string  { return d.Multi(KeyLocation) }
