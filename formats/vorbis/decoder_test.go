// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ik5/oggpbx/audio"
	"github.com/ik5/oggpbx/internal/audiotest"
	"github.com/jfreymuth/vorbis"
)

// mockPacketDecoder stands in for vorbis.Decoder. Audio packets are
// {frames, value}: after the first packet following a reset, each packet
// decodes to frames frames of value/100.
type mockPacketDecoder struct {
	channels int
	headers  int
	overlap  bool
	clears   int
}

func (m *mockPacketDecoder) ReadHeader(p []byte) error {
	if len(p) == 0 || p[0]&1 == 0 {
		return errors.New("vorbis: invalid header")
	}
	m.headers++
	return nil
}

func (m *mockPacketDecoder) HeadersRead() bool { return m.headers >= 3 }
func (m *mockPacketDecoder) SampleRate() int   { return 1000 }
func (m *mockPacketDecoder) Channels() int     { return m.channels }
func (m *mockPacketDecoder) BufferSize() int   { return 255 * m.channels }

func (m *mockPacketDecoder) BitrateInfo() vorbis.Bitrate {
	return vorbis.Bitrate{Nominal: 128000, Minimum: -1, Maximum: 192000}
}

func (m *mockPacketDecoder) CommentFields() (string, []string) {
	return "mock encoder", []string{"TITLE=Tone", "artist=Someone", "ARTIST=Someone Else"}
}

func (m *mockPacketDecoder) DecodeInto(p []byte, buf []float32) ([]float32, error) {
	if len(p) != 2 {
		return nil, errors.New("vorbis: bad packet")
	}
	if !m.overlap {
		m.overlap = true
		return buf[:0], nil
	}

	out := buf[:int(p[0])*m.channels]
	for i := range out {
		out[i] = float32(int8(p[1])) / 100
	}

	return out, nil
}

func (m *mockPacketDecoder) Clear() {
	m.overlap = false
	m.clears++
}

func headerPackets() []*audio.Packet {
	return []*audio.Packet{
		{Data: []byte{1}, GranulePosition: 0},
		{Data: []byte{3}, GranulePosition: -1},
		{Data: []byte{5}, GranulePosition: 0},
	}
}

// toneProvider scripts six audio packets of ten frames each. Packet i is
// worth value i and ends at granule 10*i; the last one is cut to 45.
func toneProvider(seekable bool) *audiotest.FakeProvider {
	pkts := headerPackets()
	for i := range 6 {
		pkts = append(pkts, &audio.Packet{
			Data:            []byte{10, byte(i)},
			GranulePosition: int64(10 * i),
			OverheadBits:    8,
		})
	}
	last := pkts[len(pkts)-1]
	last.GranulePosition = 45
	last.EndOfStream = true

	return &audiotest.FakeProvider{
		SerialNo:   1,
		CodecName:  "vorbis",
		Seekable:   seekable,
		Packets:    pkts,
		AudioStart: 3,
		Last:       45,
	}
}

func newToneDecoder(t *testing.T, seekable bool) (*StreamDecoder, *mockPacketDecoder) {
	t.Helper()

	mock := &mockPacketDecoder{channels: 2}
	dec, err := newStreamDecoder(toneProvider(seekable), mock)
	if err != nil {
		t.Fatalf("newStreamDecoder() error = %v", err)
	}

	return dec, mock
}

// frameValue is the expected sample at frame f of the tone stream.
func frameValue(f int64) float32 {
	return float32(f/10+1) / 100
}

func readAll(t *testing.T, dec audio.StreamDecoder, chunk int) []float32 {
	t.Helper()

	var out []float32
	buf := make([]float32, chunk)
	for {
		n, err := dec.Read(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
	}
}

func TestStreamDecoder_Headers(t *testing.T) {
	t.Parallel()

	dec, _ := newToneDecoder(t, true)

	if dec.Channels() != 2 || dec.SampleRate() != 1000 {
		t.Errorf("format = %d ch @ %d Hz, want 2 ch @ 1000 Hz", dec.Channels(), dec.SampleRate())
	}
	if dec.NominalBitrate() != 128000 || dec.UpperBitrate() != 192000 || dec.LowerBitrate() != 0 {
		t.Errorf("bitrates = (%d, %d, %d), want (192000, 128000, 0)",
			dec.UpperBitrate(), dec.NominalBitrate(), dec.LowerBitrate())
	}
	if got := dec.Tags().Vendor(); got != "mock encoder" {
		t.Errorf("Tags().Vendor() = %q, want %q", got, "mock encoder")
	}
	if got := dec.Tags().Artist(); got != "Someone Else" {
		t.Errorf("Tags().Artist() = %q, want %q", got, "Someone Else")
	}
	if dec.TotalSamples() != 45 {
		t.Errorf("TotalSamples() = %d, want 45", dec.TotalSamples())
	}
	if got, want := dec.TotalTime(), 45*time.Millisecond; got != want {
		t.Errorf("TotalTime() = %v, want %v", got, want)
	}
	if dec.BufSize() != 510 {
		t.Errorf("BufSize() = %d, want 510", dec.BufSize())
	}
}

func TestStreamDecoder_HeaderErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		packets []*audio.Packet
		wantErr error
	}{
		{
			name:    "stream ends early",
			packets: headerPackets()[:2],
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "audio instead of setup",
			packets: append(headerPackets()[:2], &audio.Packet{Data: []byte{10, 1}}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pp := &audiotest.FakeProvider{Packets: tt.packets}
			_, err := newStreamDecoder(pp, &mockPacketDecoder{channels: 1})
			if err == nil {
				t.Fatal("newStreamDecoder() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("newStreamDecoder() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStreamDecoder_ReadAll(t *testing.T) {
	t.Parallel()

	for _, chunk := range []int{2, 7, 16, 1000} {
		dec, _ := newToneDecoder(t, false)

		out := readAll(t, dec, chunk)
		if len(out) != 90 {
			t.Fatalf("chunk %d: read %d floats, want 90", chunk, len(out))
		}
		for i, v := range out {
			if want := frameValue(int64(i / 2)); v != want {
				t.Fatalf("chunk %d: out[%d] = %v, want %v", chunk, i, v, want)
			}
		}

		if !dec.IsEndOfStream() {
			t.Errorf("chunk %d: IsEndOfStream() = false after EOF", chunk)
		}
		if dec.SamplePosition() != 45 {
			t.Errorf("chunk %d: SamplePosition() = %d, want 45", chunk, dec.SamplePosition())
		}
		// forward-only streams learn their length at the end
		if dec.TotalSamples() != 45 {
			t.Errorf("chunk %d: TotalSamples() = %d, want 45", chunk, dec.TotalSamples())
		}
	}
}

func TestStreamDecoder_ReadWholeFrames(t *testing.T) {
	t.Parallel()

	dec, _ := newToneDecoder(t, true)

	n, err := dec.Read(make([]float32, 7))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if n != 6 {
		t.Errorf("Read() into 7 floats = %d, want 6", n)
	}

	if n, err := dec.Read(make([]float32, 1)); n != 0 || err != nil {
		t.Errorf("Read() into 1 float = (%d, %v), want (0, nil)", n, err)
	}
}

func TestStreamDecoder_Seek(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		offset int64
		whence int
		want   int64
	}{
		{"start", 25, io.SeekStart, 25},
		{"start of stream", 0, io.SeekStart, 0},
		{"page boundary", 20, io.SeekStart, 20},
		{"current", 7, io.SeekCurrent, 12},
		{"end", -10, io.SeekEnd, 35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dec, mock := newToneDecoder(t, true)

			if _, err := dec.Read(make([]float32, 10)); err != nil {
				t.Fatalf("Read() error = %v", err)
			}

			if err := dec.SeekSamples(tt.offset, tt.whence); err != nil {
				t.Fatalf("SeekSamples() error = %v", err)
			}
			if mock.clears != 1 {
				t.Errorf("decoder cleared %d times, want 1", mock.clears)
			}
			if got := dec.SamplePosition(); got != tt.want {
				t.Errorf("SamplePosition() = %d, want %d", got, tt.want)
			}

			out := readAll(t, dec, 6)
			if got, want := len(out), int(45-tt.want)*2; got != want {
				t.Fatalf("read %d floats after seek, want %d", got, want)
			}
			if out[0] != frameValue(tt.want) {
				t.Errorf("first sample = %v, want %v", out[0], frameValue(tt.want))
			}
		})
	}
}

func TestStreamDecoder_SeekTime(t *testing.T) {
	t.Parallel()

	dec, _ := newToneDecoder(t, true)

	if err := dec.SetTimePosition(33 * time.Millisecond); err != nil {
		t.Fatalf("SetTimePosition() error = %v", err)
	}
	if got := dec.SamplePosition(); got != 33 {
		t.Errorf("SamplePosition() = %d, want 33", got)
	}
	if got := dec.TimePosition(); got != 33*time.Millisecond {
		t.Errorf("TimePosition() = %v, want 33ms", got)
	}
}

func TestStreamDecoder_SeekPastEnd(t *testing.T) {
	t.Parallel()

	dec, _ := newToneDecoder(t, true)

	if err := dec.SetSamplePosition(45); err != nil {
		t.Fatalf("SetSamplePosition() error = %v", err)
	}
	if !dec.IsEndOfStream() {
		t.Error("IsEndOfStream() = false, want true")
	}
	if n, err := dec.Read(make([]float32, 8)); n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("Read() = (%d, %v), want (0, EOF)", n, err)
	}

	// seeking back revives the stream
	if err := dec.SetSamplePosition(40); err != nil {
		t.Fatalf("SetSamplePosition() error = %v", err)
	}
	if got := len(readAll(t, dec, 8)); got != 10 {
		t.Errorf("read %d floats, want 10", got)
	}
}

func TestStreamDecoder_SeekErrors(t *testing.T) {
	t.Parallel()

	seekable, _ := newToneDecoder(t, true)
	forward, _ := newToneDecoder(t, false)

	tests := []struct {
		name    string
		dec     *StreamDecoder
		offset  int64
		whence  int
		wantErr error
	}{
		{"negative", seekable, -1, io.SeekStart, audio.ErrSeekOutOfRange},
		{"before start from end", seekable, -46, io.SeekEnd, audio.ErrSeekOutOfRange},
		{"bad whence", seekable, 0, 42, audio.ErrInvalidWhence},
		{"forward-only", forward, 10, io.SeekStart, audio.ErrNotSeekable},
		{"unknown length", forward, -1, io.SeekEnd, audio.ErrUnknownLength},
	}

	for _, tt := range tests {
		if err := tt.dec.SeekSamples(tt.offset, tt.whence); !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: SeekSamples() error = %v, want %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestStreamDecoder_Clipping(t *testing.T) {
	t.Parallel()

	pkts := headerPackets()
	pkts = append(pkts,
		&audio.Packet{Data: []byte{4, 0}, GranulePosition: -1},
		&audio.Packet{Data: []byte{4, 150}, GranulePosition: -1},
		&audio.Packet{Data: []byte{4, 20}, GranulePosition: 8, EndOfStream: true},
	)

	newDec := func() *StreamDecoder {
		dec, err := newStreamDecoder(&audiotest.FakeProvider{Packets: pkts}, &mockPacketDecoder{channels: 1})
		if err != nil {
			t.Fatalf("newStreamDecoder() error = %v", err)
		}
		return dec
	}

	dec := newDec()
	dec.SetClipSamples(true)
	out := readAll(t, dec, 64)
	if !dec.HasClipped() {
		t.Error("HasClipped() = false, want true")
	}
	if out[0] != -1 {
		t.Errorf("out[0] = %v, want -1", out[0])
	}

	dec.SetClipSamples(true)
	if dec.HasClipped() {
		t.Error("HasClipped() not reset by SetClipSamples")
	}

	raw := newDec()
	out = readAll(t, raw, 64)
	if raw.HasClipped() {
		t.Error("HasClipped() = true with clipping disabled")
	}
	if out[0] >= -1 {
		t.Errorf("out[0] = %v, want below -1", out[0])
	}
}

func TestStreamDecoder_Stats(t *testing.T) {
	t.Parallel()

	dec, _ := newToneDecoder(t, true)
	readAll(t, dec, 1000)

	st := dec.Stats()
	if st.PacketCount != 6 {
		t.Errorf("PacketCount = %d, want 6", st.PacketCount)
	}
	if st.AudioBits != 6*16 {
		t.Errorf("AudioBits = %d, want %d", st.AudioBits, 6*16)
	}
	if st.OverheadBits != 6*8 {
		t.Errorf("OverheadBits = %d, want %d", st.OverheadBits, 6*8)
	}
	if st.SampleCount != 45 {
		t.Errorf("SampleCount = %d, want 45", st.SampleCount)
	}
	// 144 bits over 45 frames at 1000 Hz
	if st.EffectiveBitrate != 3200 {
		t.Errorf("EffectiveBitrate = %d, want 3200", st.EffectiveBitrate)
	}
	// last packet: 24 bits for 10 frames
	if st.InstantBitrate != 2400 {
		t.Errorf("InstantBitrate = %d, want 2400", st.InstantBitrate)
	}
}

func TestStreamDecoder_Close(t *testing.T) {
	t.Parallel()

	dec, _ := newToneDecoder(t, true)

	if err := dec.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := dec.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if _, err := dec.Read(make([]float32, 4)); !errors.Is(err, audio.ErrClosed) {
		t.Errorf("Read() after Close error = %v, want %v", err, audio.ErrClosed)
	}
	if err := dec.SetSamplePosition(0); !errors.Is(err, audio.ErrClosed) {
		t.Errorf("SetSamplePosition() after Close error = %v, want %v", err, audio.ErrClosed)
	}
}

func TestStreamDecoder_ProviderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk on fire")
	pp := &audiotest.FakeProvider{
		Packets: append(headerPackets(), &audio.Packet{Data: []byte{4, 1}}),
		Err:     boom,
	}

	dec, err := newStreamDecoder(pp, &mockPacketDecoder{channels: 1})
	if err != nil {
		t.Fatalf("newStreamDecoder() error = %v", err)
	}

	if _, err := dec.Read(make([]float32, 16)); !errors.Is(err, boom) {
		t.Errorf("Read() error = %v, want %v", err, boom)
	}
}
