// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"

	"github.com/ik5/oggpbx/audio"
)

var _ audio.PacketProvider = (*FakeProvider)(nil)

// FakeProvider replays a fixed list of packets.
//
// SeekTo follows the container contract: it positions on the last packet
// whose granule is at or below the target, or on AudioStart when there is
// none, and returns that granule.
type FakeProvider struct {
	SerialNo   uint32
	CodecName  string
	Seekable   bool
	Packets    []*audio.Packet
	AudioStart int
	Last       int64

	// Err replaces io.EOF once the packets run out.
	Err error

	Seeks []int64
	next  int
}

func (p *FakeProvider) Serial() uint32 { return p.SerialNo }
func (p *FakeProvider) Codec() string  { return p.CodecName }
func (p *FakeProvider) CanSeek() bool  { return p.Seekable }

func (p *FakeProvider) NextPacket() (*audio.Packet, error) {
	if p.next >= len(p.Packets) {
		if p.Err != nil {
			return nil, p.Err
		}
		return nil, io.EOF
	}

	pkt := p.Packets[p.next]
	p.next++

	return pkt, nil
}

func (p *FakeProvider) SeekTo(granule int64) (int64, error) {
	if !p.Seekable {
		return 0, audio.ErrNotSeekable
	}
	p.Seeks = append(p.Seeks, granule)

	for i := len(p.Packets) - 1; i >= p.AudioStart; i-- {
		if g := p.Packets[i].GranulePosition; g > 0 && g <= granule {
			p.next = i
			return g, nil
		}
	}
	p.next = p.AudioStart

	return 0, nil
}

func (p *FakeProvider) LastGranule() (int64, error) {
	if !p.Seekable {
		return 0, nil
	}
	return p.Last, nil
}

// Remaining is the number of packets not yet returned.
func (p *FakeProvider) Remaining() int { return len(p.Packets) - p.next }
