package ai

import (
	"context"
	"errors"
	"fmt"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/charmbracelet/log"

	"github.com/kotobacli/kotoba/internal/audio"
	"github.com/kotobacli/kotoba/internal/dict"
	"github.com/kotobacli/kotoba/internal/wav"
)

// japaneseVoices maps the domain voice selection onto Cloud TTS voice names.
var japaneseVoices = map[dict.Voice]string{
	dict.VoiceFemale: "ja-JP-Neural2-B",
	dict.VoiceMale:   "ja-JP-Neural2-C",
}

// Synthesizer produces native-pronunciation PCM via Google Cloud TTS.
type Synthesizer struct {
	client *texttospeech.Client
	log    *log.Logger
}

// NewSynthesizer builds a synthesizer using ambient Google credentials
// (GOOGLE_APPLICATION_CREDENTIALS or machine defaults).
func NewSynthesizer(ctx context.Context, logger *log.Logger) (*Synthesizer, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, &SynthesisError{Err: fmt.Errorf("create client: %w", err)}
	}
	return &Synthesizer{client: client, log: logger}, nil
}

// Synthesize returns raw 16-bit little-endian mono PCM at 24kHz for the
// given text. Container framing is the caller's concern; the service's own
// header is stripped here. Every failure comes back as *SynthesisError.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, voice dict.Voice) ([]byte, error) {
	name, ok := japaneseVoices[voice]
	if !ok {
		return nil, &SynthesisError{Err: fmt.Errorf("unknown voice %q", voice)}
	}

	req := &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: "ja-JP",
			Name:         name,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:   texttospeechpb.AudioEncoding_LINEAR16,
			SampleRateHertz: audio.SampleRate,
		},
	}

	resp, err := s.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, &SynthesisError{Err: err}
	}

	pcm, err := stripContainer(resp.AudioContent)
	if err != nil {
		return nil, &SynthesisError{Err: err}
	}
	if len(pcm) == 0 {
		return nil, &SynthesisError{Err: errors.New("service returned empty audio")}
	}
	return pcm, nil
}

// Close releases the underlying client.
func (s *Synthesizer) Close() error {
	return s.client.Close()
}

// stripContainer removes the WAV framing that LINEAR16 responses arrive in,
// leaving the raw PCM payload.
func stripContainer(b []byte) ([]byte, error) {
	f, pcm, err := wav.PCM(b)
	if err != nil {
		return nil, fmt.Errorf("unexpected audio framing: %w", err)
	}
	if f.Channels != audio.Channels || f.SampleRate != audio.SampleRate {
		return nil, fmt.Errorf("unexpected audio format: %d channel(s) at %dHz", f.Channels, f.SampleRate)
	}
	return pcm, nil
}
