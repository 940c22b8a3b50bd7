// SPDX-License-Identifier: EPL-2.0

// Package ogg implements audio.ContainerReader for Ogg physical streams
// (RFC 3533).
//
// A Reader splits the input into pages, verifies their checksums and hands
// each logical stream to a callback as an audio.PacketProvider the moment
// its BOS page is seen. Streams the callback declines are skipped and their
// pages are counted as waste.
//
//	r := ogg.NewReader(f, true, nil)
//	r.SetNewStreamCallback(func(pp audio.PacketProvider) bool {
//		return pp.Codec() == ogg.CodecVorbis
//	})
//	ok, err := r.Init()
//
// Chained files, where a new group of streams starts after the previous
// ones ended, are followed with FindNextStream.
package ogg
