package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/kotobacli/kotoba/internal/dict"
)

// DefaultModel is the Gemini model used for lookup analysis.
const DefaultModel = "gemini-2.0-flash"

const analysisPrompt = `You are a Japanese dictionary. Analyze the input below and reply with a
single JSON object, no prose, using exactly these keys:
"japanese" (the word or phrase in Japanese), "reading" (kana),
"romaji", "englishDefinition", "exampleJapanese" (one natural example
sentence), "exampleReading" (the example in kana), "exampleEnglish",
and optionally "jlpt" (N5-N1), "partOfSpeech", "grammarNote".
If the input is English, translate it; if it is Japanese, analyze it as-is.

Input: %s`

// Analyzer turns free text into a structured dictionary analysis via Gemini.
type Analyzer struct {
	client *genai.Client
	model  string
	log    *log.Logger
}

// NewAnalyzer builds an analyzer. The API key is required; a missing key is
// an analysis failure by contract, reported here rather than on first use.
func NewAnalyzer(ctx context.Context, apiKey, model string, logger *log.Logger) (*Analyzer, error) {
	if apiKey == "" {
		return nil, &AnalysisError{Err: errors.New("GEMINI_API_KEY is not set")}
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, &AnalysisError{Err: fmt.Errorf("create client: %w", err)}
	}

	return &Analyzer{client: client, model: model, log: logger}, nil
}

// Analyze suspends the caller for one round trip to the model and returns
// the parsed analysis. Every failure mode (transport, empty candidates,
// non-conforming JSON) comes back as *AnalysisError.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*dict.Analysis, error) {
	model := a.client.GenerativeModel(a.model)
	model.GenerationConfig.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(fmt.Sprintf(analysisPrompt, text)))
	if err != nil {
		return nil, &AnalysisError{Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, &AnalysisError{Err: errors.New("model returned no candidates")}
	}

	raw, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, &AnalysisError{Err: errors.New("model returned a non-text part")}
	}

	analysis, err := parseAnalysis(string(raw))
	if err != nil {
		a.log.Debug("unparsable analysis response", "raw", string(raw))
		return nil, &AnalysisError{Err: err}
	}
	return analysis, nil
}

// Close releases the underlying client.
func (a *Analyzer) Close() error {
	return a.client.Close()
}

// parseAnalysis decodes the model's JSON reply and validates the fields a
// usable entry cannot do without.
func parseAnalysis(raw string) (*dict.Analysis, error) {
	// Models occasionally fence JSON despite the response MIME type.
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var analysis dict.Analysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	switch {
	case analysis.Japanese == "":
		return nil, errors.New("response missing japanese")
	case analysis.Reading == "":
		return nil, errors.New("response missing reading")
	case analysis.EnglishDefinition == "":
		return nil, errors.New("response missing englishDefinition")
	}
	return &analysis, nil
}
