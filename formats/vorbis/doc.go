// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Vorbis logical streams into interleaved float32 PCM.
//
// The payload math (codebooks, floors, residues, inverse MDCT) is done by
// github.com/jfreymuth/vorbis. This package drives it packet by packet from
// an audio.PacketProvider and adds what a player needs on top: stream
// length, sample accurate seeking, clipping and bitrate statistics.
//
// # Creating a decoder
//
// A StreamDecoder is normally created by a container reader when it
// discovers a stream whose codec is "vorbis":
//
//	registry := audio.NewRegistry()
//	registry.Register("vorbis", vorbis.Factory)
//
// It can also be built by hand from any provider:
//
//	dec, err := vorbis.NewStreamDecoder(pp)
//	if err != nil {
//	    // not a Vorbis stream, or the headers are damaged
//	}
//
// # Output Format
//
//   - Sample format: float32, nominally in [-1.0, 1.0]
//   - Channels: as declared by the identification header
//   - Layout: interleaved, [L0, R0, L1, R1, ...] for stereo
//
// Decoded audio may slightly exceed the nominal range. Enable clipping with
// SetClipSamples(true) to clamp it; HasClipped then reports whether any
// sample was clamped since clipping was last set.
//
// # Length and Seeking
//
// On seekable input the total length comes from the granule position of
// the stream's last page and SeekSamples, SeekTime and the position setters
// work with sample accuracy. On forward-only input seeking returns
// audio.ErrNotSeekable and TotalSamples stays 0 until the last packet has
// been decoded.
package vorbis
