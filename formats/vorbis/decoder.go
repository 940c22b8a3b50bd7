// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ik5/oggpbx/audio"
	"github.com/ik5/oggpbx/tags"
	"github.com/ik5/oggpbx/utils"
	"github.com/jfreymuth/vorbis"
)

// packetDecoder is the subset of vorbis.Decoder used here, to allow testing.
type packetDecoder interface {
	ReadHeader(packet []byte) error
	HeadersRead() bool
	SampleRate() int
	Channels() int
	BufferSize() int
	BitrateInfo() vorbis.Bitrate
	CommentFields() (vendor string, comments []string)
	DecodeInto(packet []byte, buf []float32) ([]float32, error)
	Clear()
}

type jfDecoder struct {
	vorbis.Decoder
}

func (d *jfDecoder) BitrateInfo() vorbis.Bitrate { return d.Bitrate }

func (d *jfDecoder) CommentFields() (string, []string) {
	return d.Vendor, d.Comments
}

var _ audio.StreamDecoder = (*StreamDecoder)(nil)

// StreamDecoder decodes the packets of one Vorbis logical stream.
type StreamDecoder struct {
	pp  audio.PacketProvider
	dec packetDecoder

	channels   int
	sampleRate int
	bitrate    vorbis.Bitrate
	tags       *tags.Data
	total      int64

	scratch []float32
	pending []float32

	decoded int64 // frame position after the last decoded packet
	toSkip  int64 // frames to drop before output resumes
	aligned bool
	eos     bool

	clip    bool
	clipped bool

	stats        audio.StreamStats
	instantBits  int64
	instantFrame int64

	closed bool
}

// NewStreamDecoder reads the identification, comment and setup headers from
// pp. On a seekable provider the stream length is looked up right away.
func NewStreamDecoder(pp audio.PacketProvider) (*StreamDecoder, error) {
	return newStreamDecoder(pp, &jfDecoder{})
}

// Factory adapts NewStreamDecoder to audio.DecoderFactory.
func Factory(pp audio.PacketProvider) (audio.StreamDecoder, error) {
	return NewStreamDecoder(pp)
}

func newStreamDecoder(pp audio.PacketProvider, dec packetDecoder) (*StreamDecoder, error) {
	for range 3 {
		pkt, err := pp.NextPacket()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("vorbis: read header: %w", io.ErrUnexpectedEOF)
		}
		if err != nil {
			return nil, fmt.Errorf("vorbis: read header: %w", err)
		}

		if err := dec.ReadHeader(pkt.Data); err != nil {
			return nil, fmt.Errorf("%w", err)
		}
	}

	if !dec.HeadersRead() || dec.Channels() <= 0 {
		return nil, ErrIncompleteHeaders
	}

	vendor, comments := dec.CommentFields()

	s := &StreamDecoder{
		pp:         pp,
		dec:        dec,
		channels:   dec.Channels(),
		sampleRate: dec.SampleRate(),
		bitrate:    dec.BitrateInfo(),
		tags:       tags.New(vendor, comments),
		scratch:    make([]float32, dec.BufferSize()),
	}

	if pp.CanSeek() {
		total, err := pp.LastGranule()
		if err != nil {
			return nil, fmt.Errorf("vorbis: stream length: %w", err)
		}
		s.total = total
	}

	return s, nil
}

func (s *StreamDecoder) Channels() int       { return s.channels }
func (s *StreamDecoder) SampleRate() int     { return s.sampleRate }
func (s *StreamDecoder) UpperBitrate() int   { return max(s.bitrate.Maximum, 0) }
func (s *StreamDecoder) NominalBitrate() int { return max(s.bitrate.Nominal, 0) }
func (s *StreamDecoder) LowerBitrate() int   { return max(s.bitrate.Minimum, 0) }
func (s *StreamDecoder) Tags() *tags.Data    { return s.tags }

// BufSize is the largest number of floats a single packet decodes to.
func (s *StreamDecoder) BufSize() int { return len(s.scratch) }

// TotalSamples is the stream length in frames, 0 while unknown. Forward-only
// streams learn it when the last packet is decoded.
func (s *StreamDecoder) TotalSamples() int64 { return s.total }

func (s *StreamDecoder) TotalTime() time.Duration {
	return s.framesToTime(s.total)
}

// SamplePosition is the frame index of the next frame Read returns.
func (s *StreamDecoder) SamplePosition() int64 {
	return s.decoded - int64(len(s.pending)/s.channels) + s.toSkip
}

func (s *StreamDecoder) SetSamplePosition(pos int64) error {
	return s.SeekSamples(pos, io.SeekStart)
}

func (s *StreamDecoder) TimePosition() time.Duration {
	return s.framesToTime(s.SamplePosition())
}

func (s *StreamDecoder) SetTimePosition(pos time.Duration) error {
	return s.SeekTime(pos, io.SeekStart)
}

func (s *StreamDecoder) SeekTime(offset time.Duration, whence int) error {
	return s.SeekSamples(s.timeToFrames(offset), whence)
}

// SeekSamples moves the read position by offset frames relative to whence.
func (s *StreamDecoder) SeekSamples(offset int64, whence int) error {
	if s.closed {
		return audio.ErrClosed
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = s.SamplePosition() + offset
	case io.SeekEnd:
		if s.total <= 0 {
			return audio.ErrUnknownLength
		}
		target = s.total + offset
	default:
		return audio.ErrInvalidWhence
	}

	if target < 0 {
		return fmt.Errorf("%w: %d", audio.ErrSeekOutOfRange, target)
	}
	if !s.pp.CanSeek() {
		return audio.ErrNotSeekable
	}

	return s.seek(target)
}

func (s *StreamDecoder) seek(target int64) error {
	s.pending = nil
	s.toSkip = 0
	s.aligned = true

	if s.total > 0 && target >= s.total {
		s.decoded = s.total
		s.eos = true

		return nil
	}

	start, err := s.pp.SeekTo(target)
	if err != nil {
		return fmt.Errorf("vorbis: seek to %d: %w", target, err)
	}

	s.dec.Clear()
	s.eos = false

	// the primer restores the overlap, its own output precedes start
	pkt, err := s.pp.NextPacket()
	switch {
	case errors.Is(err, io.EOF):
		s.eos = true
	case err != nil:
		return fmt.Errorf("vorbis: seek to %d: %w", target, err)
	default:
		if _, err := s.dec.DecodeInto(pkt.Data, s.scratch); err != nil {
			return fmt.Errorf("vorbis: seek to %d: %w", target, err)
		}
		s.eos = pkt.EndOfStream
	}

	s.decoded = start
	s.toSkip = target - start

	return nil
}

func (s *StreamDecoder) IsEndOfStream() bool {
	return s.eos && len(s.pending) == 0
}

func (s *StreamDecoder) ClipSamples() bool { return s.clip }

// SetClipSamples enables clamping of Read output to [-1, 1] and resets
// HasClipped.
func (s *StreamDecoder) SetClipSamples(clip bool) {
	s.clip = clip
	s.clipped = false
}

func (s *StreamDecoder) HasClipped() bool { return s.clipped }

func (s *StreamDecoder) Stats() audio.StreamStats {
	st := s.stats

	if st.SampleCount > 0 {
		st.EffectiveBitrate = int((st.AudioBits + st.OverheadBits) * int64(s.sampleRate) / st.SampleCount)
	}
	if s.instantFrame > 0 {
		st.InstantBitrate = int(s.instantBits * int64(s.sampleRate) / s.instantFrame)
	}

	return st
}

// Read fills dst with interleaved samples. dst is truncated to whole frames.
func (s *StreamDecoder) Read(dst []float32) (int, error) {
	if s.closed {
		return 0, audio.ErrClosed
	}

	dst = dst[:len(dst)/s.channels*s.channels]

	var err error
	n := 0
	for n < len(dst) {
		if len(s.pending) > 0 {
			c := copy(dst[n:], s.pending)
			s.pending = s.pending[c:]
			n += c

			continue
		}

		if err = s.decodeNext(); err != nil {
			break
		}
	}

	if s.clip && utils.ClipBuffer(dst[:n]) {
		s.clipped = true
	}
	s.stats.SampleCount += int64(n / s.channels)

	if errors.Is(err, io.EOF) {
		if n > 0 {
			return n, nil
		}

		return 0, io.EOF
	}

	return n, err
}

// decodeNext decodes one packet into pending.
func (s *StreamDecoder) decodeNext() error {
	if s.eos {
		return io.EOF
	}

	pkt, err := s.pp.NextPacket()
	if errors.Is(err, io.EOF) {
		s.eos = true
		if s.total == 0 {
			s.total = s.decoded
		}

		return io.EOF
	}
	if err != nil {
		return fmt.Errorf("vorbis: read packet: %w", err)
	}

	out, err := s.dec.DecodeInto(pkt.Data, s.scratch)
	if err != nil {
		return fmt.Errorf("vorbis: decode packet: %w", err)
	}

	frames := int64(len(out) / s.channels)
	s.decoded += frames

	s.stats.PacketCount++
	s.stats.AudioBits += int64(len(pkt.Data)) * 8
	s.stats.OverheadBits += pkt.OverheadBits
	if frames > 0 {
		s.instantBits = int64(len(pkt.Data))*8 + pkt.OverheadBits
		s.instantFrame = frames
	}

	if pkt.GranulePosition >= 0 {
		extra := s.decoded - pkt.GranulePosition

		switch {
		case pkt.EndOfStream:
			// the last packet is padded up to a whole block
			if extra > 0 {
				out = out[:max(len(out)-int(extra)*s.channels, 0)]
			}
			s.decoded = pkt.GranulePosition
			s.total = pkt.GranulePosition
		case !s.aligned:
			// audio that starts before granule 0 is dropped
			if extra > 0 {
				out = out[min(int(extra)*s.channels, len(out)):]
			}
			s.decoded = pkt.GranulePosition
			s.aligned = true
		}
	}

	if pkt.EndOfStream {
		s.eos = true
	}

	if s.toSkip > 0 {
		skip := min(s.toSkip, int64(len(out)/s.channels))
		out = out[skip*int64(s.channels):]
		s.toSkip -= skip
	}

	s.pending = out

	return nil
}

// Close releases the decoder. The packet provider belongs to the container.
func (s *StreamDecoder) Close() error {
	s.closed = true
	s.pending = nil

	return nil
}

func (s *StreamDecoder) framesToTime(frames int64) time.Duration {
	if s.sampleRate <= 0 {
		return 0
	}

	rate := int64(s.sampleRate)

	return time.Duration(frames/rate)*time.Second +
		time.Duration(frames%rate)*time.Second/time.Duration(rate)
}

func (s *StreamDecoder) timeToFrames(d time.Duration) int64 {
	rate := int64(s.sampleRate)

	return int64(d/time.Second)*rate + int64(d%time.Second)*rate/int64(time.Second)
}
