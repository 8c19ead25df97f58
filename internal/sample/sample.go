// Package sample loads and renders the per-pitch recordings the piano
// plays. Every sample is decoded to interleaved-ready stereo frames at the
// output rate, so playback never resamples.
package sample

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/cbegin/vpiano-go/internal/pitch"
)

// Extensions are the file types LoadFile understands, in lookup order.
var Extensions = []string{".wav", ".mp3", ".ogg"}

var ErrUnsupported = errors.New("sample: unsupported file type")

// resampleQuality is passed to beep.Resample; 4 is a good trade-off for
// one-shot decoding at load time.
const resampleQuality = 4

// Sample is a decoded recording of one pitch.
type Sample struct {
	Name   string
	Rate   int
	Frames [][2]float32
}

func (s *Sample) Duration() time.Duration {
	if s.Rate <= 0 {
		return 0
	}
	return time.Duration(len(s.Frames)) * time.Second / time.Duration(s.Rate)
}

// Bytes is the in-memory size of the decoded frames.
func (s *Sample) Bytes() uint64 { return uint64(len(s.Frames)) * 8 }

// Set maps pitch names to samples. Pitches without a sample are absent.
type Set map[string]*Sample

func (s Set) Bytes() uint64 {
	var n uint64
	for _, smp := range s {
		n += smp.Bytes()
	}
	return n
}

// LoadFile decodes one wav, mp3 or ogg file and resamples it to rate. The
// sample is named after the file without its extension.
func LoadFile(path string, rate int) (*Sample, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("sample: invalid rate %d", rate)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	stream, format, err := decode(f, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer stream.Close()

	var src beep.Streamer = stream
	if int(format.SampleRate) != rate {
		src = beep.Resample(resampleQuality, format.SampleRate, beep.SampleRate(rate), stream)
	}
	frames, err := readAll(src, stream.Len())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &Sample{Name: name, Rate: rate, Frames: frames}, nil
}

func decode(rc io.ReadCloser, ext string) (beep.StreamSeekCloser, beep.Format, error) {
	switch ext {
	case ".wav":
		return wav.Decode(rc)
	case ".mp3":
		return mp3.Decode(rc)
	case ".ogg":
		return vorbis.Decode(rc)
	}
	return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
}

func readAll(s beep.Streamer, hint int) ([][2]float32, error) {
	out := make([][2]float32, 0, max(hint, 0))
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		for _, f := range buf[:n] {
			out = append(out, [2]float32{float32(f[0]), float32(f[1])})
		}
		if !ok {
			break
		}
	}
	return out, s.Err()
}

// FindFile returns the sample file for a pitch in dir, trying each of
// Extensions in order.
func FindFile(dir string, p pitch.Pitch) (string, bool) {
	for _, ext := range Extensions {
		path := filepath.Join(dir, p.Name+ext)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path, true
		}
	}
	return "", false
}
