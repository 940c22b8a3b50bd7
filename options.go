// SPDX-License-Identifier: EPL-2.0

package oggpbx

import (
	"io"
	"log/slog"

	"github.com/ik5/oggpbx/audio"
	"github.com/ik5/oggpbx/formats/ogg"
	"github.com/ik5/oggpbx/formats/vorbis"
)

// NewStreamHook is called with every decoder built for a newly discovered
// logical stream. Returning false leaves the stream out of the reader; the
// decoder is then the hook's to close or drop.
type NewStreamHook func(dec audio.StreamDecoder) bool

// ContainerFactory builds the demultiplexer over src. When owned is true
// closing the container must close src.
type ContainerFactory func(src io.Reader, owned bool, log *slog.Logger) audio.ContainerReader

// Option configures Open.
//
// Example:
//
//	r, err := oggpbx.OpenFile("song.ogg",
//	    oggpbx.WithLogger(slog.Default()),
//	    oggpbx.WithNewStreamHook(func(dec audio.StreamDecoder) bool {
//	        return dec.Channels() <= 2
//	    }),
//	)
type Option func(*openOptions)

type openOptions struct {
	log       *slog.Logger
	hook      NewStreamHook
	codecs    *audio.Registry
	container ContainerFactory
}

func defaultOptions() *openOptions {
	return &openOptions{
		log:       slog.New(slog.DiscardHandler),
		codecs:    DefaultCodecs(),
		container: OggContainer,
	}
}

// DefaultCodecs returns a registry with every codec this module decodes.
func DefaultCodecs() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(ogg.CodecVorbis, vorbis.Factory)

	return r
}

// OggContainer is the default ContainerFactory.
func OggContainer(src io.Reader, owned bool, log *slog.Logger) audio.ContainerReader {
	return ogg.NewReader(src, owned, log)
}

// WithLogger sets the logger used by the reader and its container.
// Nothing is logged by default.
func WithLogger(log *slog.Logger) Option {
	return func(o *openOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// WithNewStreamHook installs a hook that sees each new decoder before it is
// added and may reject it.
func WithNewStreamHook(hook NewStreamHook) Option {
	return func(o *openOptions) {
		o.hook = hook
	}
}

// WithCodecs replaces the codec registry. Streams whose codec is not
// registered are skipped.
func WithCodecs(codecs *audio.Registry) Option {
	return func(o *openOptions) {
		if codecs != nil {
			o.codecs = codecs
		}
	}
}

// WithContainerFactory replaces the Ogg demultiplexer.
func WithContainerFactory(f ContainerFactory) Option {
	return func(o *openOptions) {
		if f != nil {
			o.container = f
		}
	}
}
