// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"errors"
	"io"

	"github.com/ik5/oggpbx/audio"
)

var _ audio.PacketProvider = (*stream)(nil)

// stream assembles the packets of one logical stream.
type stream struct {
	r      *Reader
	serial uint32
	codec  string

	// seekable sources
	firstOffset int64
	cursor      int64
	index       []pageRef
	indexEnd    int64
	indexDone   bool
	maxGranule  int64

	// forward-only sources
	pages []*page

	packets   []*audio.Packet
	partial   []byte
	open      bool // a packet continues on the next page
	dropping  bool // the open packet lost its head
	overhead  int64
	consumed  int64 // end of the furthest page assembled
	primeLast bool
	eosSeen   bool

	last      int64
	lastKnown bool
}

func newStream(r *Reader, bos *page) *stream {
	return &stream{
		r:           r,
		serial:      bos.serial,
		codec:       DetectCodec(bos.firstPacket()),
		firstOffset: bos.offset,
		cursor:      bos.offset,
		indexEnd:    bos.offset,
		maxGranule:  -1,
	}
}

func (s *stream) Serial() uint32 { return s.serial }
func (s *stream) Codec() string  { return s.codec }
func (s *stream) CanSeek() bool  { return s.r.seeker != nil }

func (s *stream) NextPacket() (*audio.Packet, error) {
	for len(s.packets) == 0 {
		if s.eosSeen {
			return nil, io.EOF
		}

		p, err := s.nextPage()
		if err != nil {
			return nil, err
		}
		s.addPage(p)
	}

	pkt := s.packets[0]
	s.packets[0] = nil
	s.packets = s.packets[1:]

	return pkt, nil
}

func (s *stream) nextPage() (*page, error) {
	if s.r.seeker == nil {
		if len(s.pages) > 0 {
			p := s.pages[0]
			s.pages[0] = nil
			s.pages = s.pages[1:]

			return p, nil
		}

		return s.r.pump(s.serial)
	}

	for {
		p, err := s.r.readPage(s.cursor)
		if err != nil {
			return nil, err
		}
		s.cursor = p.offset + p.size
		s.note(p)

		if p.serial == s.serial {
			return p, nil
		}
	}
}

// note records p in the seek index when it extends the indexed range.
func (s *stream) note(p *page) {
	if p.offset < s.indexEnd {
		return
	}
	s.indexEnd = p.offset + p.size

	if p.serial != s.serial {
		return
	}

	s.index = append(s.index, refOf(p))
	s.maxGranule = max(s.maxGranule, p.granule)
	if p.eos() {
		s.indexDone = true
	}
}

// addPage splits the page body into packets using its lacing values.
func (s *stream) addPage(p *page) {
	// bytes lost on re-read pages were already counted
	fresh := p.offset >= s.consumed
	s.consumed = max(s.consumed, p.offset+p.size)
	waste := func(n int) {
		if fresh {
			s.r.wasteBits += int64(n) * 8
		}
	}

	if p.continued() && !s.open {
		s.dropping = true
		s.open = true
	}
	if !p.continued() && s.open {
		waste(len(s.partial))
		s.partial = nil
		s.open = false
		s.dropping = false
	}

	s.overhead += p.overheadBits()

	var done []*audio.Packet
	off := 0
	for _, seg := range p.segments {
		s.partial = append(s.partial, p.body[off:off+int(seg)]...)
		s.open = true
		off += int(seg)

		if seg == 255 {
			continue
		}

		data := s.partial
		s.partial = nil
		s.open = false

		if s.dropping {
			s.dropping = false
			waste(len(data))
			continue
		}

		done = append(done, &audio.Packet{Data: data, GranulePosition: -1})
	}

	n := len(done)
	if n > 0 {
		done[n-1].GranulePosition = p.granule
		done[0].OverheadBits = s.overhead
		s.overhead = 0
	}

	if p.eos() {
		if n > 0 {
			done[n-1].EndOfStream = true
		}
		if s.open {
			waste(len(s.partial))
		}
		s.partial = nil
		s.open = false
		s.eosSeen = true
	}

	if s.primeLast {
		s.primeLast = false
		if n > 1 {
			done = done[n-1:]
		}
	}

	s.packets = append(s.packets, done...)
}

// SeekTo positions the stream for decoding from granule. The next packet
// returned is a primer whose output should be discarded; output of the
// packets after it starts at the returned granule.
func (s *stream) SeekTo(granule int64) (int64, error) {
	if !s.CanSeek() {
		return 0, audio.ErrNotSeekable
	}
	if granule < 0 {
		return 0, audio.ErrSeekOutOfRange
	}

	// at least one audio page, so the header pages are all indexed
	if err := s.indexThrough(max(granule, 1)); err != nil {
		return 0, err
	}

	s.packets = nil
	s.partial = nil
	s.open = false
	s.dropping = false
	s.overhead = 0
	s.eosSeen = false
	s.primeLast = false

	for i := len(s.index) - 1; i >= 0; i-- {
		ref := s.index[i]
		if ref.granule <= 0 || ref.granule > granule {
			continue
		}
		// the only packet completed here began on an earlier page
		if ref.continued && ref.completes == 1 {
			continue
		}

		s.cursor = ref.offset
		s.primeLast = true

		return ref.granule, nil
	}

	s.cursor = s.audioStart()

	return 0, nil
}

// indexThrough extends the seek index until it covers target.
func (s *stream) indexThrough(target int64) error {
	for !s.indexDone && s.maxGranule < target {
		p, err := s.r.readPage(s.indexEnd)
		if errors.Is(err, io.EOF) {
			s.indexDone = true
			return nil
		}
		if err != nil {
			return err
		}
		s.note(p)
	}

	return nil
}

// audioStart is the offset of the first page after the header pages.
func (s *stream) audioStart() int64 {
	start := s.firstOffset

	for _, ref := range s.index {
		if ref.granule > 0 {
			break
		}
		if ref.granule == 0 {
			start = ref.offset + ref.size
		}
	}

	return start
}

// LastGranule returns the granule position of the last page of the stream.
// It is 0 when the source cannot seek.
func (s *stream) LastGranule() (int64, error) {
	if !s.CanSeek() {
		return 0, nil
	}
	if s.lastKnown {
		return s.last, nil
	}

	g, err := s.r.lastGranule(s.serial)
	if err != nil {
		return 0, err
	}

	s.last = g
	s.lastKnown = true

	return g, nil
}
