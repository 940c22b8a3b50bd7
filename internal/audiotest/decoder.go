// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"time"

	"github.com/ik5/oggpbx/audio"
	"github.com/ik5/oggpbx/tags"
)

var _ audio.StreamDecoder = (*FakeDecoder)(nil)

// FakeDecoder serves interleaved samples from memory and records how it is
// driven.
type FakeDecoder struct {
	Chans int
	Rate  int
	Data  []float32

	Upper, Nominal, Lower int
	TagData               *tags.Data
	Seekable              bool
	Statistics            audio.StreamStats

	Clip    bool
	Clipped bool

	ReadCalls []int // len(dst) of every Read call
	Seeks     []int64
	Closed    int
	CloseErr  error
	OnClose   func()

	pos int // index into Data
}

// NewFakeDecoder returns a decoder with frames frames of silence.
func NewFakeDecoder(channels, rate, frames int) *FakeDecoder {
	return &FakeDecoder{
		Chans:    channels,
		Rate:     rate,
		Data:     make([]float32, channels*frames),
		TagData:  tags.New("", nil),
		Seekable: true,
	}
}

func (d *FakeDecoder) Channels() int       { return d.Chans }
func (d *FakeDecoder) SampleRate() int     { return d.Rate }
func (d *FakeDecoder) UpperBitrate() int   { return d.Upper }
func (d *FakeDecoder) NominalBitrate() int { return d.Nominal }
func (d *FakeDecoder) LowerBitrate() int   { return d.Lower }
func (d *FakeDecoder) Tags() *tags.Data    { return d.TagData }

func (d *FakeDecoder) TotalSamples() int64 { return int64(len(d.Data) / d.Chans) }

func (d *FakeDecoder) TotalTime() time.Duration {
	return time.Duration(d.TotalSamples()) * time.Second / time.Duration(d.Rate)
}

func (d *FakeDecoder) SamplePosition() int64 { return int64(d.pos / d.Chans) }

func (d *FakeDecoder) SetSamplePosition(pos int64) error {
	return d.SeekSamples(pos, io.SeekStart)
}

func (d *FakeDecoder) TimePosition() time.Duration {
	return time.Duration(d.SamplePosition()) * time.Second / time.Duration(d.Rate)
}

func (d *FakeDecoder) SetTimePosition(pos time.Duration) error {
	return d.SeekTime(pos, io.SeekStart)
}

func (d *FakeDecoder) SeekTime(offset time.Duration, whence int) error {
	return d.SeekSamples(int64(offset)*int64(d.Rate)/int64(time.Second), whence)
}

func (d *FakeDecoder) SeekSamples(offset int64, whence int) error {
	if !d.Seekable {
		return audio.ErrNotSeekable
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = d.SamplePosition() + offset
	case io.SeekEnd:
		target = d.TotalSamples() + offset
	default:
		return audio.ErrInvalidWhence
	}
	if target < 0 {
		return audio.ErrSeekOutOfRange
	}

	d.Seeks = append(d.Seeks, target)
	d.pos = int(min(target, d.TotalSamples())) * d.Chans

	return nil
}

func (d *FakeDecoder) IsEndOfStream() bool { return d.pos >= len(d.Data) }

func (d *FakeDecoder) ClipSamples() bool { return d.Clip }

func (d *FakeDecoder) SetClipSamples(clip bool) {
	d.Clip = clip
	d.Clipped = false
}

func (d *FakeDecoder) HasClipped() bool { return d.Clipped }

func (d *FakeDecoder) Stats() audio.StreamStats { return d.Statistics }

func (d *FakeDecoder) Read(dst []float32) (int, error) {
	d.ReadCalls = append(d.ReadCalls, len(dst))

	if d.pos >= len(d.Data) {
		return 0, io.EOF
	}

	n := copy(dst, d.Data[d.pos:])
	d.pos += n

	return n, nil
}

func (d *FakeDecoder) Close() error {
	d.Closed++
	if d.OnClose != nil {
		d.OnClose()
	}

	return d.CloseErr
}
