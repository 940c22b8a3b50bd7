// SPDX-License-Identifier: EPL-2.0

package oggpbx

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ik5/oggpbx/audio"
	"github.com/ik5/oggpbx/tags"
)

const defaultBufSize = 4096

var _ audio.Source = (*Reader)(nil)

// Reader plays one logical stream at a time out of an Ogg physical stream.
//
// Every discovered stream the codec registry and the NewStreamHook accept
// gets a decoder in discovery order. The first one is active after Open;
// SwitchStreams selects another. All playback calls go to the active
// decoder.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	container audio.ContainerReader
	owned     bool
	src       io.Closer // set when the source is owned

	codecs *audio.Registry
	hook   NewStreamHook
	log    *slog.Logger

	streams []audio.StreamDecoder
	index   int
	cur     audio.StreamDecoder

	closed bool
}

// OpenFile opens path and reads it as an Ogg file. The file is closed by
// Close.
func OpenFile(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return Open(f, true, opts...)
}

// Open discovers the logical streams of src. With takeOwnership, src is
// closed by Close, and also when Open fails, if it implements io.Closer.
func Open(src io.Reader, takeOwnership bool, opts ...Option) (*Reader, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	r := &Reader{
		owned:  takeOwnership,
		codecs: o.codecs,
		hook:   o.hook,
		log:    o.log,
	}

	if takeOwnership {
		var guard *ownedSource
		src, guard = own(src)
		r.src = guard
	}

	r.container = o.container(src, takeOwnership, o.log)
	r.container.SetNewStreamCallback(r.accept)

	ok, err := r.container.Init()
	switch {
	case err != nil:
		return nil, r.fail(err)
	case !ok:
		return nil, r.fail(errors.New("no valid pages"))
	case len(r.streams) == 0:
		return nil, r.fail(errors.New("no decodable stream"))
	}

	r.cur = r.streams[0]

	return r, nil
}

// fail releases everything Open acquired.
func (r *Reader) fail(cause error) error {
	for _, dec := range r.streams {
		_ = dec.Close()
	}
	r.streams = nil

	r.container.SetNewStreamCallback(nil)
	_ = r.container.Close()

	if r.src != nil {
		_ = r.src.Close()
	}
	r.closed = true

	r.log.Debug("open failed", slog.Any("error", cause))

	return fmt.Errorf("%w: %w", ErrInvalidContainer, cause)
}

// accept is the container callback for newly discovered streams.
func (r *Reader) accept(pp audio.PacketProvider) bool {
	log := r.log.With(slog.Uint64("serial", uint64(pp.Serial())), slog.String("codec", pp.Codec()))

	factory, ok := r.codecs.Get(pp.Codec())
	if !ok {
		log.Debug("no decoder for stream")
		return false
	}

	dec, err := factory(pp)
	if err != nil {
		log.Warn("cannot decode stream", slog.Any("error", err))
		return false
	}
	dec.SetClipSamples(true)

	if r.hook != nil && !r.hook(dec) {
		log.Debug("stream rejected by hook")
		return false
	}

	r.streams = append(r.streams, dec)
	log.Info("stream added",
		slog.Int("index", len(r.streams)-1),
		slog.Int("channels", dec.Channels()),
		slog.Int("sample_rate", dec.SampleRate()),
	)

	return true
}

// FindNextStream scans forward for streams starting after the known ones,
// as in chained files. It reports whether a stream was added.
func (r *Reader) FindNextStream() (bool, error) {
	if r.container == nil || r.closed {
		return false, nil
	}

	return r.container.FindNextStream()
}

// SwitchStreams makes the stream at index active. It reports whether the
// channel count or the sample rate differs from the previous stream. The
// clipping policy carries over.
func (r *Reader) SwitchStreams(index int) (bool, error) {
	if index < 0 || index >= len(r.streams) {
		return false, fmt.Errorf("%w: %d of %d", ErrStreamIndexOutOfRange, index, len(r.streams))
	}
	if index == r.index {
		return false, nil
	}

	prev, next := r.cur, r.streams[index]
	next.SetClipSamples(prev.ClipSamples())

	r.cur = next
	r.index = index

	return prev.Channels() != next.Channels() || prev.SampleRate() != next.SampleRate(), nil
}

// ReadSamples fills dst with interleaved samples of the active stream. Only
// whole frames are requested; it returns 0, io.EOF at the end of the stream.
func (r *Reader) ReadSamples(dst []float32) (int, error) {
	return r.ReadSamplesAt(dst, 0, len(dst))
}

// ReadSamplesAt reads up to count samples into buf starting at offset.
// count is rounded down to whole frames, a count of less than one frame
// or a stream with no channels returns 0 without reading.
func (r *Reader) ReadSamplesAt(buf []float32, offset, count int) (int, error) {
	channels := r.cur.Channels()
	if channels <= 0 {
		return 0, nil
	}

	count -= count % channels
	if count <= 0 {
		return 0, nil
	}
	if offset < 0 || offset > len(buf) || count > len(buf)-offset {
		return 0, fmt.Errorf("%w: offset %d, count %d, len %d", ErrBufferTooSmall, offset, count, len(buf))
	}

	return r.cur.Read(buf[offset : offset+count])
}

// SeekSamples and SeekTime move the active stream. whence is one of
// io.SeekStart, io.SeekCurrent or io.SeekEnd.
func (r *Reader) SeekSamples(offset int64, whence int) error {
	return r.cur.SeekSamples(offset, whence)
}

func (r *Reader) SeekTime(offset time.Duration, whence int) error {
	return r.cur.SeekTime(offset, whence)
}

func (r *Reader) Channels() int       { return r.cur.Channels() }
func (r *Reader) SampleRate() int     { return r.cur.SampleRate() }
func (r *Reader) UpperBitrate() int   { return r.cur.UpperBitrate() }
func (r *Reader) NominalBitrate() int { return r.cur.NominalBitrate() }
func (r *Reader) LowerBitrate() int   { return r.cur.LowerBitrate() }
func (r *Reader) Tags() *tags.Data    { return r.cur.Tags() }

func (r *Reader) TotalSamples() int64      { return r.cur.TotalSamples() }
func (r *Reader) TotalTime() time.Duration { return r.cur.TotalTime() }

func (r *Reader) SamplePosition() int64                   { return r.cur.SamplePosition() }
func (r *Reader) SetSamplePosition(pos int64) error       { return r.cur.SetSamplePosition(pos) }
func (r *Reader) TimePosition() time.Duration             { return r.cur.TimePosition() }
func (r *Reader) SetTimePosition(pos time.Duration) error { return r.cur.SetTimePosition(pos) }

func (r *Reader) IsEndOfStream() bool      { return r.cur.IsEndOfStream() }
func (r *Reader) ClipSamples() bool        { return r.cur.ClipSamples() }
func (r *Reader) SetClipSamples(clip bool) { r.cur.SetClipSamples(clip) }
func (r *Reader) HasClipped() bool         { return r.cur.HasClipped() }
func (r *Reader) Stats() audio.StreamStats { return r.cur.Stats() }

// StreamIndex is the index of the active stream.
func (r *Reader) StreamIndex() int { return r.index }

// StreamCount is the number of streams added so far.
func (r *Reader) StreamCount() int { return len(r.streams) }

func (r *Reader) ContainerOverheadBits() int64 { return r.container.ContainerBits() }
func (r *Reader) ContainerWasteBits() int64    { return r.container.WasteBits() }

// BufSize is a buffer length, in floats, that holds at least one decoded
// packet of the active stream.
func (r *Reader) BufSize() int {
	if b, ok := r.cur.(interface{ BufSize() int }); ok && b.BufSize() > 0 {
		return b.BufSize()
	}

	return defaultBufSize
}

// Close closes every decoder in the order they were added, then the
// container if the source is owned. Later calls do nothing.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var errs []error
	for i, dec := range r.streams {
		if err := dec.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close stream %d: %w", i, err))
		}
	}
	r.streams = nil

	r.container.SetNewStreamCallback(nil)

	if r.owned {
		if err := r.container.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close container: %w", err))
		}
		// a no-op when the container already closed it
		if err := r.src.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close source: %w", err))
		}
	}

	return errors.Join(errs...)
}

// ownedSource closes the wrapped reader at most once, so the container
// and the Reader can both try. Only the first Close reports an error.
type ownedSource struct {
	io.Reader

	once sync.Once
}

type ownedSeekSource struct {
	*ownedSource
	io.Seeker
}

func own(src io.Reader) (io.Reader, *ownedSource) {
	guard := &ownedSource{Reader: src}
	if s, ok := src.(io.Seeker); ok {
		return ownedSeekSource{ownedSource: guard, Seeker: s}, guard
	}

	return guard, guard
}

func (s *ownedSource) Close() error {
	var err error
	s.once.Do(func() {
		if c, ok := s.Reader.(io.Closer); ok {
			err = c.Close()
		}
	})

	return err
}
