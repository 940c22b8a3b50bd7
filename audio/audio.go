// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// DecoderFactory wraps the packets of one logical stream in a StreamDecoder.
type DecoderFactory func(pp PacketProvider) (StreamDecoder, error)

// Registry for stream decoders by codec key (e.g., "vorbis", "opus").
type Registry struct {
	codecs map[string]DecoderFactory

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]DecoderFactory),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(codec string, f DecoderFactory) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[codec] = f
}

func (r *Registry) Get(codec string) (DecoderFactory, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	f, ok := r.codecs[codec]
	return f, ok
}

// Codecs returns the registered codec keys.
func (r *Registry) Codecs() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	keys := make([]string, 0, len(r.codecs))
	for k := range r.codecs {
		keys = append(keys, k)
	}

	return keys
}
