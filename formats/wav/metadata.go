// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"strings"

	gowav "github.com/go-audio/wav"
	"github.com/ik5/oggpbx/tags"
)

// listSeparator joins multi-valued fields, as RIFF INFO expects.
const listSeparator = "; "

// MetadataFromTags maps stream tags onto RIFF INFO fields. It returns nil
// when t is nil or holds nothing that INFO can store.
//
//	TITLE        -> INAM
//	ARTIST       -> IART
//	ALBUM        -> IPRD
//	TRACKNUMBER  -> ITRK
//	GENRE        -> IGNR (all values)
//	DATE         -> ICRD (first value)
//	COPYRIGHT    -> ICOP
//	DESCRIPTION  -> ICMT
//	ORGANIZATION -> ISRC
//	LOCATION     -> IARL (all values)
//	vendor       -> ISFT
func MetadataFromTags(t *tags.Data) *gowav.Metadata {
	if t == nil {
		return nil
	}

	m := &gowav.Metadata{
		Title:     t.Title(),
		Artist:    t.Artist(),
		Product:   t.Album(),
		TrackNbr:  t.TrackNumber(),
		Genre:     strings.Join(t.Genres(), listSeparator),
		Copyright: t.Copyright(),
		Comments:  oneLine(t.Description()),
		Source:    t.Organization(),
		Location:  strings.Join(t.Locations(), listSeparator),
		Software:  t.Vendor(),
	}
	if dates := t.Dates(); len(dates) > 0 {
		m.CreationDate = dates[0]
	}

	fields := []*string{
		&m.Title, &m.Artist, &m.Product, &m.TrackNbr, &m.Genre, &m.Copyright,
		&m.Comments, &m.Source, &m.Location, &m.Software, &m.CreationDate,
	}

	empty := true
	for _, f := range fields {
		if *f != "" {
			empty = false
			*f = aligned(*f)
		}
	}
	if empty {
		return nil
	}

	return m
}

// oneLine collapses whitespace runs, INFO comments must not hold newlines.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// aligned pads s with a NUL when its INFO entry would have an odd size.
// go-audio/wav writes no pad byte but its reader expects one.
func aligned(s string) string {
	if (len(s)+1)%2 != 0 {
		return s + "\x00"
	}

	return s
}
