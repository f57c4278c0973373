package wav

import (
	"encoding/binary"
	"math"
	"testing"
	"time"
)

func TestEncode_HeaderFields(t *testing.T) {
	samples := make([]float64, 240)
	b := Encode(1, 24000, samples)

	if len(b) != HeaderSize+len(samples)*2 {
		t.Fatalf("container length = %d, want %d", len(b), HeaderSize+len(samples)*2)
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE framing")
	}
	if got := binary.LittleEndian.Uint16(b[20:22]); got != 1 {
		t.Errorf("format tag = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(b[22:24]); got != 1 {
		t.Errorf("channels = %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(b[24:28]); got != 24000 {
		t.Errorf("sample rate = %d, want 24000", got)
	}
	if got := binary.LittleEndian.Uint32(b[28:32]); got != 24000*1*2 {
		t.Errorf("byte rate = %d, want %d", got, 24000*1*2)
	}
	if got := binary.LittleEndian.Uint16(b[32:34]); got != 2 {
		t.Errorf("block align = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint16(b[34:36]); got != 16 {
		t.Errorf("bits per sample = %d, want 16", got)
	}
	if got := binary.LittleEndian.Uint32(b[40:44]); got != uint32(len(samples)*2) {
		t.Errorf("data length = %d, want %d", got, len(samples)*2)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	// A sine sweep plus a few awkward values near the quantization edges.
	samples := make([]float64, 0, 1024)
	for i := 0; i < 1000; i++ {
		samples = append(samples, math.Sin(float64(i)/17.3))
	}
	samples = append(samples, -1.0, 1.0, 0.0, -0.5, 0.5, 1.0/32767, -1.0/32768)

	_, decoded, err := Decode(Encode(2, 44100, samples))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(decoded) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(decoded), len(samples))
	}

	const tolerance = 1.0 / 32768
	for i := range samples {
		if diff := math.Abs(decoded[i] - samples[i]); diff > tolerance {
			t.Fatalf("sample %d: got %v, want %v (diff %v > %v)",
				i, decoded[i], samples[i], diff, tolerance)
		}
	}
}

func TestEncode_ClampsOutOfRange(t *testing.T) {
	_, decoded, err := Decode(Encode(1, 24000, []float64{-7.5, 3.2}))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded[0] != -1.0 {
		t.Errorf("negative overflow decoded to %v, want -1.0", decoded[0])
	}
	if decoded[1] != 1.0 {
		t.Errorf("positive overflow decoded to %v, want 1.0", decoded[1])
	}
}

func TestDecode_RejectsGarbage(t *testing.T) {
	cases := map[string][]byte{
		"empty":       nil,
		"short":       []byte("RIFF"),
		"not riff":    make([]byte, 64),
		"bad payload": Encode(1, 24000, make([]float64, 100))[:50],
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, _, err := Decode(input); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}

func TestSamples_MatchesDecode(t *testing.T) {
	samples := []float64{0.25, -0.25, 0.75, -0.75}
	container := Encode(1, 24000, samples)
	_, pcm, err := PCM(container)
	if err != nil {
		t.Fatalf("PCM failed: %v", err)
	}
	_, decoded, err := Decode(container)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	converted := Samples(pcm)
	for i := range decoded {
		if converted[i] != decoded[i] {
			t.Fatalf("sample %d: Samples=%v Decode=%v", i, converted[i], decoded[i])
		}
	}
}

func TestDuration(t *testing.T) {
	// One second of 24kHz mono PCM16.
	if got := Duration(24000*2, 1, 24000); got != time.Second {
		t.Errorf("Duration = %v, want %v", got, time.Second)
	}
	if got := Duration(1000, 0, 0); got != 0 {
		t.Errorf("Duration with zero format = %v, want 0", got)
	}
}
