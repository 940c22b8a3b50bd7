// SPDX-License-Identifier: EPL-2.0

// Package oggpbx plays Ogg audio files one logical stream at a time.
//
// An Ogg file can carry several logical streams side by side, and chained
// files append new groups of streams one after another. A Reader finds
// them, builds a decoder for every stream it can decode and exposes a
// single playback cursor over the stream that is currently selected.
//
// # Quick Start
//
//	r, err := oggpbx.OpenFile("song.ogg")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	fmt.Println(r.Tags().Title(), r.TotalTime())
//
//	buf := make([]float32, r.BufSize())
//	for {
//	    n, err := r.ReadSamples(buf)
//	    if err == io.EOF {
//	        break
//	    }
//	    // buf[:n] holds interleaved samples
//	}
//
// # Streams
//
// Streams are numbered in the order they are found. The first one is
// active after Open. FindNextStream scans ahead for streams of a chained
// file and SwitchStreams changes the active one:
//
//	if changed, err := r.SwitchStreams(1); err == nil && changed {
//	    // channel count or sample rate differ, reconfigure the output
//	}
//
// WithNewStreamHook lets the caller look at every new decoder and refuse
// streams it does not want.
//
// # Ownership
//
// Open(src, true) and OpenFile close the source when the Reader is closed,
// and when Open fails. Open(src, false) never closes it.
//
// # Codecs
//
// Vorbis is decoded by formats/vorbis. Other codecs can be added with
// WithCodecs and an audio.Registry; streams with no registered codec are
// skipped and counted by ContainerWasteBits.
//
// The Reader implements audio.Source, so formats/wav can write it out:
//
//	out, _ := os.Create("song.wav")
//	err := wav.Encode(out, r)
package oggpbx
