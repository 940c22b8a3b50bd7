// SPDX-License-Identifier: EPL-2.0

package oggpbx

import (
	"io"

	"github.com/ik5/oggpbx/audio"
)

var _ audio.Decoder = Decoder{}

// Decoder opens Ogg input as an audio.Source playing its first stream.
// The returned Source owns r.
type Decoder struct {
	Options []Option
}

func (d Decoder) Decode(r io.Reader) (audio.Source, error) {
	src, err := Open(r, true, d.Options...)
	if err != nil {
		return nil, err
	}

	return src, nil
}
