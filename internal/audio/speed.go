package audio

import "encoding/binary"

// Stretch time-stretches mono PCM16LE audio so it plays at the given rate on
// a fixed-rate device: rate 0.7 yields 1/0.7 times the samples via linear
// interpolation. Quality is fine for speech; this is not a pitch-preserving
// resampler.
func Stretch(pcm []byte, rate float64) []byte {
	if rate <= 0 || rate == 1.0 {
		return pcm
	}

	in := make([]int16, len(pcm)/2)
	for i := range in {
		in[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	if len(in) == 0 {
		return pcm
	}

	outLen := int(float64(len(in)) / rate)
	out := make([]byte, outLen*2)

	for i := 0; i < outLen; i++ {
		pos := float64(i) * rate
		idx := int(pos)
		if idx >= len(in)-1 {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(in[len(in)-1]))
			continue
		}
		frac := pos - float64(idx)
		v := float64(in[idx])*(1-frac) + float64(in[idx+1])*frac
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}

	return out
}
