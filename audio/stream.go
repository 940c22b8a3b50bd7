// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"time"

	"github.com/ik5/oggpbx/tags"
)

// Packet is one codec packet of a logical stream.
type Packet struct {
	Data []byte
	// GranulePosition is set on the last packet completed on a page, -1 otherwise.
	GranulePosition int64
	// EndOfStream marks the final packet of the logical stream.
	EndOfStream bool
	// OverheadBits is the framing cost of the pages this packet was read from.
	OverheadBits int64
}

// PacketProvider supplies the packets of one logical stream.
type PacketProvider interface {
	// Serial is the stream serial number from the container.
	Serial() uint32
	// Codec names the payload format sniffed from the first packet.
	Codec() string
	CanSeek() bool
	// NextPacket returns io.EOF after the last packet.
	NextPacket() (*Packet, error)
	// SeekTo positions the provider so NextPacket resumes before granule.
	// It returns the granule position the next packet starts at.
	SeekTo(granule int64) (int64, error)
	// LastGranule is the granule position of the final page, 0 when unknown.
	LastGranule() (int64, error)
}

// ContainerReader demultiplexes logical streams out of a physical container.
type ContainerReader interface {
	// SetNewStreamCallback installs the acceptance hook. The hook runs
	// synchronously once per discovered logical stream and returns whether
	// the stream is kept.
	SetNewStreamCallback(fn func(PacketProvider) bool)
	// Init validates the framing and reports the first group of streams.
	// It returns false when the input is not a valid container.
	Init() (bool, error)
	// FindNextStream scans forward for streams appended later (chained files).
	FindNextStream() (bool, error)
	// ContainerBits counts bits spent on framing.
	ContainerBits() int64
	// WasteBits counts bits skipped because of sync loss or ignored streams.
	WasteBits() int64
	Close() error
}

// StreamStats is a snapshot of decoder counters.
type StreamStats struct {
	PacketCount      int
	SampleCount      int64
	AudioBits        int64
	OverheadBits     int64
	EffectiveBitrate int
	InstantBitrate   int
}

// StreamDecoder decodes one logical stream into interleaved float PCM.
type StreamDecoder interface {
	Channels() int
	SampleRate() int
	// Bitrate bounds in bits per second, 0 when unspecified.
	UpperBitrate() int
	NominalBitrate() int
	LowerBitrate() int

	Tags() *tags.Data

	TotalSamples() int64
	TotalTime() time.Duration

	SamplePosition() int64
	SetSamplePosition(pos int64) error
	TimePosition() time.Duration
	SetTimePosition(pos time.Duration) error
	// SeekSamples and SeekTime take io.SeekStart, io.SeekCurrent or io.SeekEnd.
	SeekSamples(offset int64, whence int) error
	SeekTime(offset time.Duration, whence int) error

	IsEndOfStream() bool

	ClipSamples() bool
	SetClipSamples(clip bool)
	// HasClipped reports whether Read clamped a sample since clipping was last set.
	HasClipped() bool

	Stats() StreamStats

	// Read fills dst with interleaved samples and returns the number of
	// floats written. At the end of the stream it returns 0, io.EOF.
	Read(dst []float32) (int, error)

	Close() error
}
