package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

const resampleQuality = 4

// Decode reads an mp3 or wav stream fully into memory at the given rate and
// returns a looping source. ext selects the codec (".mp3", ".wav").
func Decode(rc io.ReadCloser, ext string, rate beep.SampleRate) (Source, error) {
	var (
		s      beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch strings.ToLower(ext) {
	case ".mp3":
		s, format, err = mp3.Decode(rc)
	case ".wav":
		s, format, err = wav.Decode(rc)
	default:
		rc.Close()
		return nil, fmt.Errorf("unsupported audio format %q", ext)
	}
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("decode %s: %w", ext, err)
	}
	defer s.Close()

	var in beep.Streamer = s
	if format.SampleRate != rate {
		in = beep.Resample(resampleQuality, format.SampleRate, rate, s)
	}
	out := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	buf := beep.NewBuffer(out)
	buf.Append(in)
	if buf.Len() == 0 {
		return nil, fmt.Errorf("decode %s: empty stream", ext)
	}

	return func() beep.Streamer {
		return beep.Loop(-1, buf.Streamer(0, buf.Len()))
	}, nil
}

// DecodeFile opens and decodes path
func DecodeFile(path string, rate beep.SampleRate) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return Decode(f, filepath.Ext(path), rate)
}
