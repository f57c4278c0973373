// Package dict defines the dictionary entry model shared by the cache, the
// stores, and the UI.
package dict

import (
	"time"

	"github.com/kotobacli/kotoba/internal/audio"
)

// AudioState is the lifecycle state of an entry's pronunciation audio. It is
// the only part of an entry that changes after creation.
type AudioState int

const (
	// AudioPending means no playable audio exists yet. Entries stay pending
	// until a materialization succeeds; synthesis failures leave them here.
	AudioPending AudioState = iota

	// AudioReady means a playable handle has been derived and attached.
	AudioReady
)

func (s AudioState) String() string {
	switch s {
	case AudioPending:
		return "pending"
	case AudioReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Voice selects the synthesized speaker.
type Voice string

const (
	VoiceFemale Voice = "female"
	VoiceMale   Voice = "male"
)

// Analysis is the structured result of one lookup, produced once by the
// analysis collaborator. All fields are immutable after creation; the
// enrichment fields (JLPT, PartOfSpeech, GrammarNote) may be empty.
type Analysis struct {
	Japanese          string `json:"japanese"`
	Reading           string `json:"reading"`
	Romaji            string `json:"romaji"`
	EnglishDefinition string `json:"englishDefinition"`
	ExampleJapanese   string `json:"exampleJapanese"`
	ExampleReading    string `json:"exampleReading"`
	ExampleEnglish    string `json:"exampleEnglish"`
	JLPT              string `json:"jlpt,omitempty"`
	PartOfSpeech      string `json:"partOfSpeech,omitempty"`
	GrammarNote       string `json:"grammarNote,omitempty"`
}

// Entry is one cached lookup result. ID joins the entry to its stored audio
// payload and is never reused.
type Entry struct {
	ID            string
	OriginalInput string
	Analysis
	Timestamp time.Time

	AudioState AudioState
	Handle     *audio.Handle
}

// Record is the persisted text-field projection of an entry. Playable
// handles and audio state are process-local and re-derived on load, so they
// never appear here.
type Record struct {
	ID            string    `json:"id"`
	OriginalInput string    `json:"originalInput"`
	Analysis                // embedded; flattened by encoding/json
	Timestamp     time.Time `json:"timestamp"`
}

// Record returns the persistable projection of the entry.
func (e *Entry) Record() Record {
	return Record{
		ID:            e.ID,
		OriginalInput: e.OriginalInput,
		Analysis:      e.Analysis,
		Timestamp:     e.Timestamp,
	}
}

// FromRecord rebuilds an entry from its persisted projection. Audio starts
// pending; rehydration attaches a handle when a stored payload exists.
func FromRecord(r Record) *Entry {
	return &Entry{
		ID:            r.ID,
		OriginalInput: r.OriginalInput,
		Analysis:      r.Analysis,
		Timestamp:     r.Timestamp,
		AudioState:    AudioPending,
	}
}
