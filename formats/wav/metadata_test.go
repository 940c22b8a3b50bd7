// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"strings"
	"testing"

	"github.com/ik5/oggpbx/tags"
)

func TestMetadataFromTags(t *testing.T) {
	t.Parallel()

	td := tags.New("libVorbis", []string{
		"TITLE=First",
		"TITLE=Second",
		"ARTIST=Band",
		"TRACKNUMBER=7",
		"DATE=1999",
		"DATE=2001",
		"LOCATION=Berlin",
		"LOCATION[de]=Hamburg",
		"DESCRIPTION=line one\nline  two",
		"ORGANIZATION=Label",
		"COPYRIGHT=(c) Band",
	})

	m := MetadataFromTags(td)
	if m == nil {
		t.Fatal("MetadataFromTags() = nil")
	}

	tests := []struct {
		field string
		got   string
		want  string
	}{
		{"Title", m.Title, "Second"},
		{"Artist", m.Artist, "Band"},
		{"TrackNbr", m.TrackNbr, "7"},
		{"CreationDate", m.CreationDate, "1999"},
		{"Location", m.Location, "Berlin; DE: Hamburg"},
		{"Comments", m.Comments, "line one line two"},
		{"Source", m.Source, "Label"},
		{"Copyright", m.Copyright, "(c) Band"},
		{"Software", m.Software, "libVorbis"},
		{"Product", m.Product, ""},
	}

	for _, tt := range tests {
		if got := strings.TrimRight(tt.got, "\x00"); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.field, got, tt.want)
		}
		if tt.got != "" && len(tt.got)%2 == 0 {
			t.Errorf("%s has even length %d, its INFO entry would be misaligned", tt.field, len(tt.got))
		}
	}
}

func TestMetadataFromTagsEmpty(t *testing.T) {
	t.Parallel()

	if m := MetadataFromTags(nil); m != nil {
		t.Errorf("MetadataFromTags(nil) = %+v, want nil", m)
	}
	if m := MetadataFromTags(tags.New("", []string{"REPLAYGAIN_TRACK_GAIN=-3 dB"})); m != nil {
		t.Errorf("MetadataFromTags() without INFO fields = %+v, want nil", m)
	}
}
