// Package wav builds and parses minimal RIFF/WAVE containers around 16-bit
// little-endian PCM. The encoder is pure: for any sample slice it produces a
// valid, self-describing container with a 44-byte header.
package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// HeaderSize is the fixed size of the container header in bytes.
const HeaderSize = 44

// BitsPerSample is the only sample depth this package produces.
const BitsPerSample = 16

// Format describes the shape of decoded audio.
type Format struct {
	Channels   int
	SampleRate int
}

var (
	// ErrNotWAV is returned when the input does not carry RIFF/WAVE framing.
	ErrNotWAV = errors.New("wav: not a RIFF/WAVE container")

	// ErrTruncated is returned when the input is shorter than its header claims.
	ErrTruncated = errors.New("wav: truncated container")
)

// Encode wraps normalized float samples in a playable WAV container.
// Samples are clamped to [-1.0, 1.0] and quantized to signed 16-bit
// little-endian (negative values scale by 32768, positive by 32767).
// The sample slice must be channel-interleaved and its length a multiple of
// channels; mismatched lengths are the caller's responsibility.
func Encode(channels, sampleRate int, samples []float64) []byte {
	dataLen := len(samples) * 2
	buf := make([]byte, HeaderSize+dataLen)

	byteRate := sampleRate * channels * 2
	blockAlign := channels * 2

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataLen))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(buf[20:22], 1)  // PCM format tag
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], BitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataLen))

	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[HeaderSize+i*2:], uint16(quantize(s)))
	}

	return buf
}

// Decode parses a container produced by Encode and recovers the normalized
// samples. The inverse of the quantization above, so a round trip is exact
// on the 16-bit grid.
func Decode(b []byte) (Format, []float64, error) {
	f, pcm, err := PCM(b)
	if err != nil {
		return Format{}, nil, err
	}
	return f, Samples(pcm), nil
}

// PCM parses the container header and returns the raw 16-bit little-endian
// payload without converting samples. Rehydration uses this to hand stored
// audio straight to the player.
func PCM(b []byte) (Format, []byte, error) {
	if len(b) < HeaderSize {
		return Format{}, nil, ErrNotWAV
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" || string(b[12:16]) != "fmt " {
		return Format{}, nil, ErrNotWAV
	}
	if tag := binary.LittleEndian.Uint16(b[20:22]); tag != 1 {
		return Format{}, nil, fmt.Errorf("wav: unsupported format tag %d", tag)
	}
	if bits := binary.LittleEndian.Uint16(b[34:36]); bits != BitsPerSample {
		return Format{}, nil, fmt.Errorf("wav: unsupported bit depth %d", bits)
	}

	f := Format{
		Channels:   int(binary.LittleEndian.Uint16(b[22:24])),
		SampleRate: int(binary.LittleEndian.Uint32(b[24:28])),
	}

	dataLen := int(binary.LittleEndian.Uint32(b[40:44]))
	if len(b) < HeaderSize+dataLen {
		return Format{}, nil, ErrTruncated
	}

	return f, b[HeaderSize : HeaderSize+dataLen], nil
}

// Samples converts raw 16-bit little-endian PCM bytes to normalized floats.
// A trailing odd byte is ignored.
func Samples(pcm []byte) []float64 {
	n := len(pcm) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		if v < 0 {
			out[i] = float64(v) / 32768
		} else {
			out[i] = float64(v) / 32767
		}
	}
	return out
}

// Duration reports the playing time of a raw PCM payload.
func Duration(pcmLen, channels, sampleRate int) time.Duration {
	if channels == 0 || sampleRate == 0 {
		return 0
	}
	frames := pcmLen / (2 * channels)
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

func quantize(s float64) int16 {
	if s < -1.0 {
		s = -1.0
	} else if s > 1.0 {
		s = 1.0
	}
	if s < 0 {
		return int16(math.Round(s * 32768))
	}
	return int16(math.Round(s * 32767))
}
