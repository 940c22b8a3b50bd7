// SPDX-License-Identifier: EPL-2.0

package oggpbx_test

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/ik5/oggpbx"
	"github.com/ik5/oggpbx/audio"
)

// Example_basicUsage opens a file and reads the active stream to the end.
func Example_basicUsage() {
	r, err := oggpbx.OpenFile("formats/vorbis/testdata/test.ogg")
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	fmt.Printf("Streams: %d\n", r.StreamCount())
	fmt.Printf("Format: %d ch @ %d Hz\n", r.Channels(), r.SampleRate())

	buf := make([]float32, r.BufSize())
	total := 0
	for {
		n, err := r.ReadSamples(buf)
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
	}
	fmt.Printf("Read %d samples\n", total)

	// Output:
	// Streams: 1
	// Format: 1 ch @ 44100 Hz
	// Read 44100 samples
}

// ExampleWithNewStreamHook accepts mono streams only.
func ExampleWithNewStreamHook() {
	f, err := os.Open("formats/vorbis/testdata/eof_issue.ogg")
	if err != nil {
		log.Fatal(err)
	}

	_, err = oggpbx.Open(f, true, oggpbx.WithNewStreamHook(func(dec audio.StreamDecoder) bool {
		fmt.Printf("Offered: %d channels\n", dec.Channels())
		return dec.Channels() == 1
	}))
	fmt.Println(err)

	// Output:
	// Offered: 2 channels
	// invalid or unsupported container: no decodable stream
}

// ExampleReader_SetTimePosition seeks the active stream.
func ExampleReader_SetTimePosition() {
	r, err := oggpbx.OpenFile("formats/vorbis/testdata/long.ogg")
	if err != nil {
		log.Fatal(err)
	}
	defer r.Close()

	fmt.Println(r.TotalTime())

	if err := r.SeekTime(-5*time.Second, io.SeekEnd); err != nil {
		log.Fatal(err)
	}
	fmt.Println(r.TimePosition(), r.SamplePosition())

	// Output:
	// 20s
	// 15s 661500
}

// ExampleDecoder uses the Reader as a plain audio.Source.
func ExampleDecoder() {
	f, err := os.Open("formats/vorbis/testdata/test.ogg")
	if err != nil {
		log.Fatal(err)
	}

	var dec audio.Decoder = oggpbx.Decoder{}
	src, err := dec.Decode(f)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	fmt.Println(src.SampleRate(), src.Channels())

	// Output:
	// 44100 1
}
