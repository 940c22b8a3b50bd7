// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ik5/oggpbx/audio"
)

// lastPageWindow is the chunk size of the backward search for the final page.
const lastPageWindow = 64 * 1024

var _ audio.ContainerReader = (*Reader)(nil)

// Reader demultiplexes the logical streams of an Ogg physical stream.
//
// When the source implements io.Seeker every logical stream reads through
// its own cursor and can seek by granule position. Otherwise pages are read
// once and queued on the stream they belong to.
type Reader struct {
	src    io.Reader
	seeker io.Seeker
	closer io.Closer

	br  *bufio.Reader
	pos int64 // offset of the next byte br yields, -1 when unknown

	scanPos   int64
	accounted int64 // bytes below this offset were already counted

	streams  map[uint32]*stream
	rejected map[uint32]struct{}

	held        []*page
	heldSerials map[uint32]struct{}

	// seekable: body bits of streams whose BOS page a stream cursor read
	// before the scan offered it
	early map[uint32]int64

	callback func(audio.PacketProvider) bool

	containerBits int64
	wasteBits     int64

	log    *slog.Logger
	closed bool
}

// NewReader creates a Reader over src. When closeOnDispose is true and src
// implements io.Closer, Close also closes src. A nil log discards output.
func NewReader(src io.Reader, closeOnDispose bool, log *slog.Logger) *Reader {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	r := &Reader{
		src:         src,
		br:          bufio.NewReaderSize(src, maxPageSize),
		streams:     make(map[uint32]*stream),
		rejected:    make(map[uint32]struct{}),
		heldSerials: make(map[uint32]struct{}),
		early:       make(map[uint32]int64),
		log:         log,
	}

	if s, ok := src.(io.Seeker); ok {
		if off, err := s.Seek(0, io.SeekCurrent); err == nil {
			r.seeker = s
			r.pos = off
			r.scanPos = off
			r.accounted = off
		}
	}

	if closeOnDispose {
		if c, ok := src.(io.Closer); ok {
			r.closer = c
		}
	}

	return r
}

func (r *Reader) SetNewStreamCallback(fn func(audio.PacketProvider) bool) {
	r.callback = fn
}

// Init reads the first group of BOS pages and reports each logical stream to
// the callback. It returns false when no valid page was found.
func (r *Reader) Init() (bool, error) {
	pages, _, err := r.scan()
	if err != nil {
		return false, err
	}

	return pages > 0, nil
}

// FindNextStream scans for logical streams that begin after the ones already
// known, such as the next link of a chained file. It returns whether any new
// stream was accepted.
func (r *Reader) FindNextStream() (bool, error) {
	_, accepted, err := r.scan()

	return accepted, err
}

func (r *Reader) ContainerBits() int64 { return r.containerBits }
func (r *Reader) WasteBits() int64     { return r.wasteBits }

// Close releases the source when the Reader owns it. Calling Close more than
// once is a no-op.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.callback = nil
	r.held = nil

	if r.closer != nil {
		return r.closer.Close()
	}

	return nil
}

// scan walks pages until a group of new BOS pages has been seen and the
// first data page after it is reached, or the input ends.
func (r *Reader) scan() (pages int, accepted bool, err error) {
	discovered := false

	for {
		p, err := r.nextScanPage()
		if errors.Is(err, io.EOF) {
			return pages, accepted, nil
		}
		if err != nil {
			return pages, accepted, err
		}
		pages++

		if p.bos() && !r.known(p.serial) {
			discovered = true
			if r.discover(p) {
				accepted = true
			}
			continue
		}

		if r.seeker == nil {
			r.route(p)
		}

		if discovered {
			return pages, accepted, nil
		}
	}
}

func (r *Reader) nextScanPage() (*page, error) {
	if r.seeker != nil {
		p, err := r.readPage(r.scanPos)
		if err != nil {
			return nil, err
		}
		r.scanPos = p.offset + p.size

		return p, nil
	}

	if len(r.held) > 0 {
		p := r.held[0]
		r.held = r.held[1:]

		return p, nil
	}

	return r.readPage(0)
}

func (r *Reader) known(serial uint32) bool {
	if _, ok := r.streams[serial]; ok {
		return true
	}
	_, ok := r.rejected[serial]

	return ok
}

// discover offers a new logical stream to the callback.
func (r *Reader) discover(p *page) bool {
	s := newStream(r, p)
	r.streams[p.serial] = s

	var heldBits int64
	if r.seeker == nil {
		s.pages = append(s.pages, p)

		delete(r.heldSerials, p.serial)
		kept := r.held[:0]
		for _, h := range r.held {
			if h.serial == p.serial {
				s.pages = append(s.pages, h)
				heldBits += int64(len(h.body)) * 8
			} else {
				kept = append(kept, h)
			}
		}
		r.held = kept
	}

	r.log.Debug("ogg: logical stream found",
		"serial", p.serial, "codec", s.codec, "offset", p.offset)

	earlyBits := r.early[p.serial]
	delete(r.early, p.serial)

	if r.callback != nil && r.callback(s) {
		return true
	}

	delete(r.streams, p.serial)
	r.rejected[p.serial] = struct{}{}
	// pages read for the stream before it was offered count too
	r.wasteBits += int64(len(p.body))*8 + heldBits + earlyBits

	r.log.Debug("ogg: logical stream ignored", "serial", p.serial, "codec", s.codec)

	return false
}

// route files a page read from a forward-only source under its stream.
func (r *Reader) route(p *page) {
	if s, ok := r.streams[p.serial]; ok {
		s.pages = append(s.pages, p)
		return
	}

	if _, ok := r.heldSerials[p.serial]; ok {
		r.held = append(r.held, p)
		return
	}

	if _, ok := r.rejected[p.serial]; ok {
		return
	}

	if p.bos() {
		r.held = append(r.held, p)
		r.heldSerials[p.serial] = struct{}{}
	}
}

// pump reads forward-only pages until one of serial shows up, routing the
// rest.
func (r *Reader) pump(serial uint32) (*page, error) {
	for {
		p, err := r.readPage(0)
		if err != nil {
			return nil, err
		}
		if p.serial == serial {
			return p, nil
		}
		r.route(p)
	}
}

// readPage returns the next valid page at or after at. Seekable sources are
// repositioned when needed. Garbage and pages failing the checksum are
// skipped. At the end of input it returns io.EOF.
func (r *Reader) readPage(at int64) (*page, error) {
	if r.closed {
		return nil, audio.ErrClosed
	}

	if r.seeker != nil && at != r.pos {
		if _, err := r.seeker.Seek(at, io.SeekStart); err != nil {
			return nil, fmt.Errorf("ogg: seek to %d: %w", at, err)
		}
		r.br.Reset(r.src)
		r.pos = at
	}

	for {
		hdr, err := r.br.Peek(headerSize)
		if len(hdr) < headerSize {
			return nil, r.short(hdr, err)
		}

		if string(hdr[:4]) != capturePattern || hdr[4] != 0 {
			r.skip(1)
			continue
		}

		nseg := int(hdr[26])
		head, err := r.br.Peek(headerSize + nseg)
		if len(head) < headerSize+nseg {
			return nil, r.short(head, err)
		}

		size := headerSize + nseg
		for _, seg := range head[headerSize:] {
			size += int(seg)
		}

		raw, err := r.br.Peek(size)
		if len(raw) < size {
			return nil, r.short(raw, err)
		}

		if binary.LittleEndian.Uint32(raw[22:26]) != pageChecksum(raw) {
			r.log.Warn("ogg: page checksum mismatch", "offset", r.pos)
			r.skip(1)
			continue
		}

		p := parsePage(r.pos, raw)
		_, _ = r.br.Discard(size)
		r.pos += int64(size)

		if p.offset >= r.accounted {
			r.accounted = p.offset + p.size
			r.containerBits += p.overheadBits()
			r.count(p)
		}

		return p, nil
	}
}

// short handles input that ends inside a page. The leftover bytes are waste.
func (r *Reader) short(buf []byte, err error) error {
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("ogg: read page: %w", err)
	}

	if len(buf) > 0 {
		r.log.Debug("ogg: truncated page at end of input", "offset", r.pos, "bytes", len(buf))
		r.skip(len(buf))
	}

	return io.EOF
}

// skip drops n buffered bytes that are not part of any page.
func (r *Reader) skip(n int) {
	_, _ = r.br.Discard(n)

	end := r.pos + int64(n)
	if end > r.accounted {
		r.wasteBits += (end - max(r.pos, r.accounted)) * 8
		r.accounted = end
	}
	r.pos = end
}

// count charges the body of a page read for the first time as waste when
// no stream will use it.
func (r *Reader) count(p *page) {
	bits := int64(len(p.body)) * 8

	if r.seeker != nil && !r.known(p.serial) {
		if p.bos() {
			r.early[p.serial] = 0
			return
		}
		if _, ok := r.early[p.serial]; ok {
			r.early[p.serial] += bits
			return
		}
	}

	if r.unwanted(p) {
		r.wasteBits += bits
	}
}

// unwanted reports whether a page belongs to no stream anybody reads.
func (r *Reader) unwanted(p *page) bool {
	if _, ok := r.rejected[p.serial]; ok {
		return true
	}
	if p.bos() {
		return false
	}
	if _, ok := r.streams[p.serial]; ok {
		return false
	}
	_, ok := r.heldSerials[p.serial]

	return !ok
}

// lastGranule searches backwards from the end of the source for the last
// page of serial carrying a granule position.
func (r *Reader) lastGranule(serial uint32) (int64, error) {
	if r.closed {
		return 0, audio.ErrClosed
	}

	end, err := r.seeker.Seek(0, io.SeekEnd)
	r.pos = -1
	if err != nil {
		return 0, fmt.Errorf("ogg: seek to end: %w", err)
	}

	buf := make([]byte, lastPageWindow)
	for end > 0 {
		start := max(end-lastPageWindow, 0)
		n := int(end - start)

		if _, err := r.seeker.Seek(start, io.SeekStart); err != nil {
			return 0, fmt.Errorf("ogg: seek to %d: %w", start, err)
		}
		if _, err := io.ReadFull(r.src, buf[:n]); err != nil {
			return 0, fmt.Errorf("ogg: read last page: %w", err)
		}

		for i := n - headerSize; i >= 0; i-- {
			if string(buf[i:i+4]) != capturePattern || buf[i+4] != 0 {
				continue
			}
			if binary.LittleEndian.Uint32(buf[i+14:i+18]) != serial {
				continue
			}
			if g := int64(binary.LittleEndian.Uint64(buf[i+6 : i+14])); g != -1 {
				return g, nil
			}
		}

		if start == 0 {
			break
		}
		// overlap so a header split across windows is still found
		end = start + headerSize - 1
	}

	return 0, nil
}
