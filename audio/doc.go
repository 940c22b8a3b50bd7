// SPDX-License-Identifier: EPL-2.0

// Package audio defines the contracts shared by the container, codec and
// playback layers.
//
// # Sources
//
// Source is a pull-based stream of interleaved float32 samples:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Samples are nominally in [-1.0, 1.0]. ReadSamples returns io.EOF when the
// stream is finished.
//
// # Containers and Codecs
//
// A ContainerReader splits a physical stream into logical streams and
// reports each one to a callback as a PacketProvider. A StreamDecoder turns
// the packets of one logical stream into samples and keeps track of the
// playback position:
//
//	container.SetNewStreamCallback(func(pp audio.PacketProvider) bool {
//	    factory, ok := registry.Get(pp.Codec())
//	    if !ok {
//	        return false
//	    }
//	    dec, err := factory(pp)
//	    return err == nil && keep(dec)
//	})
//
// # Codec Registry
//
// Registry maps codec names, as reported by PacketProvider.Codec, to
// DecoderFactory functions. It is safe for concurrent use, so one registry
// can serve many readers.
//
//	registry := audio.NewRegistry()
//	registry.Register("vorbis", vorbis.Factory)
//
// # Errors
//
// Seeking and reading report the sentinel errors of this package, wrapped
// with context. Use errors.Is to test for them.
package audio
