// SPDX-License-Identifier: EPL-2.0

// Package wav writes any audio.Source to a 16-bit PCM WAV file.
//
// Encoding is done by github.com/go-audio/wav. Samples are clamped to
// [-1.0, 1.0] and converted with utils.Float32ToInt16.
//
//	r, _ := oggpbx.OpenFile("song.ogg")
//	defer r.Close()
//
//	out, _ := os.Create("song.wav")
//	defer out.Close()
//
//	err := wav.Encode(out, r, wav.WithMetadata(wav.MetadataFromTags(r.Tags())))
//
// The output must be an io.WriteSeeker because the chunk sizes are patched
// once the source is exhausted. Encode never closes the source or the
// output.
//
// MetadataFromTags carries the common Vorbis comment fields over to a
// LIST/INFO chunk.
package wav
