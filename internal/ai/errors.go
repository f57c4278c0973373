// Package ai holds the external generative-AI collaborators: Gemini for
// lookup analysis and Google Cloud Text-to-Speech for native pronunciation.
package ai

import "fmt"

// AnalysisError wraps any failure of the analysis collaborator: missing
// credentials, transport errors, or a response that does not conform to the
// expected structure. It surfaces to the user; the lookup is retryable.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed: %v", e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// SynthesisError wraps any failure of the speech collaborator. It is logged
// only; the entry stays pending until the user retries playback.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
