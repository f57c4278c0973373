package metastore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kotobacli/kotoba/internal/dict"
)

func testRecords() []dict.Record {
	return []dict.Record{
		{
			ID:            "id-2",
			OriginalInput: "water",
			Analysis: dict.Analysis{
				Japanese:          "水",
				Reading:           "みず",
				Romaji:            "mizu",
				EnglishDefinition: "water",
				ExampleJapanese:   "水を飲みます。",
				ExampleReading:    "みずをのみます。",
				ExampleEnglish:    "I drink water.",
				JLPT:              "N5",
			},
			Timestamp: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		},
		{
			ID:            "id-1",
			OriginalInput: "cat",
			Analysis: dict.Analysis{
				Japanese:          "猫",
				Reading:           "ねこ",
				Romaji:            "neko",
				EnglishDefinition: "cat",
				ExampleJapanese:   "猫がいます。",
				ExampleReading:    "ねこがいます。",
				ExampleEnglish:    "There is a cat.",
			},
			Timestamp: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestStore_SaveLoadPreservesOrder(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "entries.json"))
	want := testRecords()

	if err := s.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("loaded %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("record %d: id %q, want %q (order not preserved?)", i, got[i].ID, want[i].ID)
		}
		if got[i].Japanese != want[i].Japanese || got[i].JLPT != want[i].JLPT {
			t.Errorf("record %d: fields did not survive the round trip", i)
		}
		if !got[i].Timestamp.Equal(want[i].Timestamp) {
			t.Errorf("record %d: timestamp %v, want %v", i, got[i].Timestamp, want[i].Timestamp)
		}
	}
}

func TestStore_MissingSnapshotIsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does-not-exist.json"))

	records, err := s.Load()
	if err != nil {
		t.Fatalf("missing snapshot produced error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("missing snapshot produced %d records, want 0", len(records))
	}
}

func TestStore_CorruptSnapshotDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.json")
	if err := os.WriteFile(path, []byte("{not json at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := New(path).Load()
	if err == nil {
		t.Error("corrupt snapshot should surface a loggable error")
	}
	if len(records) != 0 {
		t.Errorf("corrupt snapshot produced %d records, want 0", len(records))
	}
}

func TestStore_SaveOverwritesPrevious(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "entries.json"))

	if err := s.Save(testRecords()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save(nil); err != nil {
		t.Fatalf("Save of empty list failed: %v", err)
	}

	records, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("snapshot holds %d records after empty Save, want 0", len(records))
	}
}
