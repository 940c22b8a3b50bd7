// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/oggpbx/audio"
	"github.com/ik5/oggpbx/utils"
)

const (
	pcmFormat      = 1
	bitDepth       = 16
	defaultBufSize = 4096
)

// Option configures Encode.
type Option func(*encodeOptions)

type encodeOptions struct {
	metadata *gowav.Metadata
	bufSize  int
}

// WithMetadata adds a LIST/INFO chunk to the file.
func WithMetadata(m *gowav.Metadata) Option {
	return func(o *encodeOptions) {
		o.metadata = m
	}
}

// WithBufferSize sets how many floats are read from the source at a time.
// The default is the source's BufSize.
func WithBufferSize(n int) Option {
	return func(o *encodeOptions) {
		o.bufSize = n
	}
}

// Encode reads src to the end and writes it to w as 16-bit PCM WAV.
// Samples are clamped to [-1, 1]. src is not closed.
func Encode(w io.WriteSeeker, src audio.Source, opts ...Option) error {
	o := &encodeOptions{}
	for _, opt := range opts {
		opt(o)
	}

	channels, rate := src.Channels(), src.SampleRate()
	if channels <= 0 || rate <= 0 {
		return fmt.Errorf("%w: %d channels @ %d Hz", ErrInvalidFormat, channels, rate)
	}

	size := o.bufSize
	if size <= 0 {
		size = src.BufSize()
	}
	if size <= 0 {
		size = defaultBufSize
	}
	size = max(size-size%channels, channels)

	enc := gowav.NewEncoder(w, rate, bitDepth, channels, pcmFormat)
	enc.Metadata = o.metadata

	buf := make([]float32, size)
	pcm := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           make([]int, 0, size),
		SourceBitDepth: bitDepth,
	}

	for {
		n, err := src.ReadSamples(buf)
		n -= n % channels

		pcm.Data = pcm.Data[:n]
		for i, x := range buf[:n] {
			pcm.Data[i] = int(utils.Float32ToInt16(x))
		}

		// the first call writes the header even when there is no audio
		if n > 0 || enc.WrittenBytes == 0 {
			if werr := enc.Write(pcm); werr != nil {
				return fmt.Errorf("wav: write samples: %w", werr)
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("wav: read source: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: finish file: %w", err)
	}

	return nil
}
