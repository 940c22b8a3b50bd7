// SPDX-License-Identifier: EPL-2.0

package ogg

import "bytes"

// Codec keys reported by PacketProvider.Codec.
const (
	CodecVorbis  = "vorbis"
	CodecOpus    = "opus"
	CodecTheora  = "theora"
	CodecFLAC    = "flac"
	CodecSpeex   = "speex"
	CodecUnknown = "unknown"
)

// DetectCodec identifies the payload of a logical stream from its first packet.
func DetectCodec(firstPacket []byte) string {
	switch {
	case len(firstPacket) >= 7 && firstPacket[0] == 0x01 && string(firstPacket[1:7]) == CodecVorbis:
		return CodecVorbis
	case bytes.HasPrefix(firstPacket, []byte("OpusHead")):
		return CodecOpus
	case len(firstPacket) >= 7 && firstPacket[0] == 0x80 && string(firstPacket[1:7]) == CodecTheora:
		return CodecTheora
	case bytes.HasPrefix(firstPacket, []byte("\x7fFLAC")):
		return CodecFLAC
	case bytes.HasPrefix(firstPacket, []byte("Speex   ")):
		return CodecSpeex
	}

	return CodecUnknown
}
