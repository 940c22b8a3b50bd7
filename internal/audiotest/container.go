// SPDX-License-Identifier: EPL-2.0

package audiotest

import "github.com/ik5/oggpbx/audio"

var _ audio.ContainerReader = (*FakeContainer)(nil)

// FakeContainer offers scripted streams to the installed callback. Init
// offers InitStreams, each FindNextStream call offers the next group of
// Later.
type FakeContainer struct {
	InitStreams []audio.PacketProvider
	Later       [][]audio.PacketProvider

	// InitOK is what Init reports when InitErr is nil.
	InitOK  bool
	InitErr error

	Overhead int64
	Waste    int64

	Callback func(audio.PacketProvider) bool

	InitCalls int
	FindCalls int
	Closed    int
	CloseErr  error

	// OnClose runs before Close returns, for call order checks.
	OnClose func()
}

func (c *FakeContainer) SetNewStreamCallback(fn func(audio.PacketProvider) bool) {
	c.Callback = fn
}

func (c *FakeContainer) Init() (bool, error) {
	c.InitCalls++
	if c.InitErr != nil {
		return false, c.InitErr
	}

	c.offer(c.InitStreams)

	return c.InitOK, nil
}

func (c *FakeContainer) FindNextStream() (bool, error) {
	c.FindCalls++
	if len(c.Later) == 0 {
		return false, nil
	}

	group := c.Later[0]
	c.Later = c.Later[1:]

	return c.offer(group), nil
}

func (c *FakeContainer) offer(group []audio.PacketProvider) bool {
	accepted := false
	for _, pp := range group {
		if c.Callback != nil && c.Callback(pp) {
			accepted = true
		}
	}

	return accepted
}

func (c *FakeContainer) ContainerBits() int64 { return c.Overhead }
func (c *FakeContainer) WasteBits() int64     { return c.Waste }

func (c *FakeContainer) Close() error {
	c.Closed++
	if c.OnClose != nil {
		c.OnClose()
	}

	return c.CloseErr
}
