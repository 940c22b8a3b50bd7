// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"encoding/binary"
)

const (
	capturePattern = "OggS"
	headerSize     = 27
	maxPageSize    = headerSize + 255 + 255*255

	flagContinued = 0x01
	flagBOS       = 0x02
	flagEOS       = 0x04
)

// page is one parsed Ogg page.
type page struct {
	offset   int64 // byte offset of the capture pattern
	size     int64 // header + segment table + body
	flags    byte
	granule  int64
	serial   uint32
	sequence uint32
	segments []byte
	body     []byte
}

func (p *page) continued() bool { return p.flags&flagContinued != 0 }
func (p *page) bos() bool       { return p.flags&flagBOS != 0 }
func (p *page) eos() bool       { return p.flags&flagEOS != 0 }

// overheadBits is the framing cost of the page.
func (p *page) overheadBits() int64 {
	return int64(headerSize+len(p.segments)) * 8
}

// completedPackets counts the packets that end on this page.
func (p *page) completedPackets() int {
	n := 0
	for _, seg := range p.segments {
		if seg < 255 {
			n++
		}
	}

	return n
}

// firstPacket returns the bytes of the first packet that starts on the page.
// Only meaningful for pages that are not continued, such as BOS pages.
func (p *page) firstPacket() []byte {
	n := 0
	for _, seg := range p.segments {
		n += int(seg)
		if seg < 255 {
			break
		}
	}

	return p.body[:n]
}

// parsePage decodes a raw page that has already been bounds-checked.
func parsePage(offset int64, raw []byte) *page {
	nseg := int(raw[26])

	segments := make([]byte, nseg)
	copy(segments, raw[headerSize:headerSize+nseg])

	body := make([]byte, len(raw)-headerSize-nseg)
	copy(body, raw[headerSize+nseg:])

	return &page{
		offset:   offset,
		size:     int64(len(raw)),
		flags:    raw[5],
		granule:  int64(binary.LittleEndian.Uint64(raw[6:14])),
		serial:   binary.LittleEndian.Uint32(raw[14:18]),
		sequence: binary.LittleEndian.Uint32(raw[18:22]),
		segments: segments,
		body:     body,
	}
}

// pageRef is the seek index entry of a page.
type pageRef struct {
	offset    int64
	size      int64
	granule   int64
	continued bool
	completes int
	eos       bool
}

func refOf(p *page) pageRef {
	return pageRef{
		offset:    p.offset,
		size:      p.size,
		granule:   p.granule,
		continued: p.continued(),
		completes: p.completedPackets(),
		eos:       p.eos(),
	}
}
