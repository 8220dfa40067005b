package audio

import (
	"fmt"
	"os"
	"time"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// MP3Duration decodes an MP3 file's headers and returns its play time.
func MP3Duration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open mp3: %w", err)
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, fmt.Errorf("decode mp3: %w", err)
	}

	// The decoder always emits 16-bit stereo, 4 bytes per sample frame.
	frames := dec.Length() / 4
	seconds := float64(frames) / float64(dec.SampleRate())
	return time.Duration(seconds * float64(time.Second)), nil
}
