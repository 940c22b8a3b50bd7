// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
	"io"
)

// Page header flags.
const (
	FlagContinued byte = 0x01
	FlagBOS       byte = 0x02
	FlagEOS       byte = 0x04
)

var oggCRC = func() (t [256]uint32) {
	for i := range t {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = (r << 1) ^ 0x04c11db7
			} else {
				r <<= 1
			}
		}
		t[i] = r
	}
	return t
}()

// OggCRC computes the Ogg page checksum of data.
func OggCRC(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = (crc << 8) ^ oggCRC[byte(crc>>24)^b]
	}

	return crc
}

// OggWriter builds an Ogg physical stream in memory. Sequence numbers are
// kept per serial.
type OggWriter struct {
	buf bytes.Buffer
	seq map[uint32]uint32
}

func NewOggWriter() *OggWriter {
	return &OggWriter{seq: make(map[uint32]uint32)}
}

// Page appends a page with explicit lacing values.
func (w *OggWriter) Page(serial uint32, flags byte, granule int64, segments, body []byte) *OggWriter {
	raw := make([]byte, 27, 27+len(segments)+len(body))
	copy(raw, "OggS")
	raw[5] = flags
	binary.LittleEndian.PutUint64(raw[6:], uint64(granule))
	binary.LittleEndian.PutUint32(raw[14:], serial)
	binary.LittleEndian.PutUint32(raw[18:], w.seq[serial])
	raw[26] = byte(len(segments))
	raw = append(raw, segments...)
	raw = append(raw, body...)

	binary.LittleEndian.PutUint32(raw[22:], OggCRC(raw))

	w.seq[serial]++
	w.buf.Write(raw)

	return w
}

// Packets appends a page holding whole packets.
func (w *OggWriter) Packets(serial uint32, flags byte, granule int64, packets ...[]byte) *OggWriter {
	segs, body := Lace(packets...)

	return w.Page(serial, flags, granule, segs, body)
}

// Raw appends bytes that are not a page.
func (w *OggWriter) Raw(b []byte) *OggWriter {
	w.buf.Write(b)
	return w
}

func (w *OggWriter) Len() int      { return w.buf.Len() }
func (w *OggWriter) Bytes() []byte { return bytes.Clone(w.buf.Bytes()) }

// Lace computes lacing values for whole packets.
func Lace(packets ...[]byte) (segments, body []byte) {
	for _, p := range packets {
		n := len(p)
		for n >= 255 {
			segments = append(segments, 255)
			n -= 255
		}
		segments = append(segments, byte(n))
		body = append(body, p...)
	}

	return segments, body
}

// Packet returns n bytes filled with tag, handy for telling packets apart.
func Packet(tag byte, n int) []byte {
	return bytes.Repeat([]byte{tag}, n)
}

// ForwardOnly hides every method of r except Read.
func ForwardOnly(r io.Reader) io.Reader {
	return struct{ io.Reader }{r}
}

// TrackedSource is an in-memory io.ReadSeekCloser that counts Close calls.
type TrackedSource struct {
	*bytes.Reader
	Closed int
}

func NewTrackedSource(data []byte) *TrackedSource {
	return &TrackedSource{Reader: bytes.NewReader(data)}
}

func (t *TrackedSource) Close() error {
	t.Closed++
	return nil
}
