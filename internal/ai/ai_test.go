package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/kotobacli/kotoba/internal/audio"
	"github.com/kotobacli/kotoba/internal/dict"
	"github.com/kotobacli/kotoba/internal/wav"
)

const validResponse = `{
	"japanese": "林檎",
	"reading": "りんご",
	"romaji": "ringo",
	"englishDefinition": "apple",
	"exampleJapanese": "林檎を食べます。",
	"exampleReading": "りんごをたべます。",
	"exampleEnglish": "I eat an apple.",
	"jlpt": "N5",
	"partOfSpeech": "noun"
}`

func TestParseAnalysis_Valid(t *testing.T) {
	a, err := parseAnalysis(validResponse)
	if err != nil {
		t.Fatalf("parseAnalysis failed: %v", err)
	}
	if a.Japanese != "林檎" || a.Reading != "りんご" || a.Romaji != "ringo" {
		t.Errorf("core fields wrong: %+v", a)
	}
	if a.JLPT != "N5" || a.PartOfSpeech != "noun" {
		t.Errorf("enrichment fields wrong: %+v", a)
	}
	if a.GrammarNote != "" {
		t.Errorf("absent enrichment field should stay empty, got %q", a.GrammarNote)
	}
}

func TestParseAnalysis_FencedJSON(t *testing.T) {
	fenced := "```json\n" + validResponse + "\n```"
	if _, err := parseAnalysis(fenced); err != nil {
		t.Errorf("fenced JSON rejected: %v", err)
	}
}

func TestParseAnalysis_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json":        "the word apple is 林檎",
		"missing core":    `{"romaji": "ringo"}`,
		"empty japanese":  `{"japanese": "", "reading": "りんご", "englishDefinition": "apple"}`,
		"missing reading": `{"japanese": "林檎", "englishDefinition": "apple"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parseAnalysis(raw); err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}

func TestNewAnalyzer_MissingKey(t *testing.T) {
	_, err := NewAnalyzer(context.Background(), "", DefaultModel, nil)
	var analysisErr *AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("missing key returned %T, want *AnalysisError", err)
	}
}

func TestStripContainer(t *testing.T) {
	samples := []float64{0.1, -0.1, 0.2, -0.2}
	container := wav.Encode(audio.Channels, audio.SampleRate, samples)

	pcm, err := stripContainer(container)
	if err != nil {
		t.Fatalf("stripContainer failed: %v", err)
	}
	if len(pcm) != len(samples)*2 {
		t.Errorf("payload is %d bytes, want %d", len(pcm), len(samples)*2)
	}

	if _, err := stripContainer([]byte("definitely not audio")); err == nil {
		t.Error("garbage input should fail")
	}

	// Wrong shape: stereo at the right rate.
	stereo := wav.Encode(2, audio.SampleRate, samples)
	if _, err := stripContainer(stereo); err == nil {
		t.Error("stereo payload should be rejected")
	}
}

func TestJapaneseVoices_CoverDomainEnum(t *testing.T) {
	for _, v := range []dict.Voice{dict.VoiceFemale, dict.VoiceMale} {
		if _, ok := japaneseVoices[v]; !ok {
			t.Errorf("no Cloud TTS voice mapped for %q", v)
		}
	}
}
