// Package cache is the in-memory entry collection and the choreography
// around it: synchronous lookup analysis, background audio materialization,
// deletion with resource cleanup, and rehydration from the persistent
// stores at startup. It is the only component that keeps the metadata
// snapshot and the audio payload store consistent with each other.
package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/kotobacli/kotoba/internal/audio"
	"github.com/kotobacli/kotoba/internal/blobstore"
	"github.com/kotobacli/kotoba/internal/dict"
	"github.com/kotobacli/kotoba/internal/metastore"
	"github.com/kotobacli/kotoba/internal/wav"
)

// ErrEmptyLookup rejects lookups that are blank after trimming.
var ErrEmptyLookup = errors.New("cache: lookup text is empty")

// Analyzer is the external analysis collaborator boundary.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*dict.Analysis, error)
}

// Synthesizer is the external speech collaborator boundary. It returns raw
// 16-bit little-endian mono PCM in the audio package format.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice dict.Voice) ([]byte, error)
}

// Options wires the cache's collaborators and stores. Everything is
// injected; the cache owns no global state, so tests run isolated instances.
type Options struct {
	Analyzer    Analyzer
	Synthesizer Synthesizer
	Blobs       *blobstore.Store
	Meta        *metastore.Store
	Audio       audio.Factory
	Voice       dict.Voice
	Logger      *log.Logger
}

// Cache holds the ordered entry collection, newest first. Each entry's
// audio moves Pending -> Ready through materialization; deletion is the
// only terminal transition and removes the entry entirely.
type Cache struct {
	analyzer Analyzer
	synth    Synthesizer
	blobs    *blobstore.Store
	meta     *metastore.Store
	audio    audio.Factory
	voice    dict.Voice
	log      *log.Logger

	mu       sync.Mutex
	entries  []*dict.Entry
	inflight map[string]struct{} // per-id materialization dedup
	hydrated bool
	onChange func()

	// saveMu orders snapshot writes so a stale projection never overwrites
	// a newer one.
	saveMu sync.Mutex

	wg sync.WaitGroup // in-flight background work, drained on Shutdown
}

// New constructs an idle cache. Call Rehydrate before anything else.
func New(opts Options) *Cache {
	voice := opts.Voice
	if voice == "" {
		voice = dict.VoiceFemale
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Cache{
		analyzer: opts.Analyzer,
		synth:    opts.Synthesizer,
		blobs:    opts.Blobs,
		meta:     opts.Meta,
		audio:    opts.Audio,
		voice:    voice,
		log:      logger,
		inflight: make(map[string]struct{}),
	}
}

// SetOnChange registers a callback fired (without the cache lock) whenever
// the observable collection or an entry's audio state changes.
func (c *Cache) SetOnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Rehydrate populates the collection from the persisted snapshot, fetching
// each entry's stored audio concurrently. Entries whose payload is missing
// or corrupt come back Pending for lazy materialization. Nothing here ever
// fails startup: an unreadable snapshot just means an empty collection.
// Must complete before the cache is used; it never writes the snapshot.
func (c *Cache) Rehydrate() {
	records, err := c.meta.Load()
	if err != nil {
		c.log.Warn("metadata snapshot unreadable, starting empty", "err", err)
	}

	entries := make([]*dict.Entry, len(records))
	var wg sync.WaitGroup
	for i, rec := range records {
		wg.Add(1)
		go func(i int, rec dict.Record) {
			defer wg.Done()
			e := dict.FromRecord(rec)
			entries[i] = e

			data, ok, err := c.blobs.Get(blobstore.NativeKey(rec.ID))
			if err != nil {
				c.log.Warn("stored audio unreadable, entry degraded to pending", "id", rec.ID, "err", err)
				return
			}
			if !ok {
				return
			}
			_, pcm, err := wav.PCM(data)
			if err != nil {
				c.log.Warn("stored audio corrupt, entry degraded to pending", "id", rec.ID, "err", err)
				return
			}
			e.Handle = audio.NewHandle(c.audio, pcm)
			e.AudioState = dict.AudioReady
		}(i, rec)
	}
	wg.Wait()

	c.mu.Lock()
	c.entries = entries
	c.hydrated = true
	c.mu.Unlock()
	c.notify()
}

// Lookup analyzes text and prepends the resulting entry with pending audio.
// The analysis call suspends the caller; audio materialization does not —
// it runs detached and its completion is observed through the entry's state.
// On analysis failure nothing is inserted and the error propagates.
func (c *Cache) Lookup(ctx context.Context, text string) (dict.Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return dict.Entry{}, ErrEmptyLookup
	}

	analysis, err := c.analyzer.Analyze(ctx, text)
	if err != nil {
		return dict.Entry{}, err
	}

	e := &dict.Entry{
		ID:            uuid.NewString(),
		OriginalInput: text,
		Analysis:      *analysis,
		Timestamp:     time.Now(),
		AudioState:    dict.AudioPending,
	}

	c.mu.Lock()
	c.entries = append([]*dict.Entry{e}, c.entries...)
	snapshot := *e
	c.mu.Unlock()

	c.persist()
	c.notify()
	c.spawnMaterialize(e.ID, e.Japanese)

	return snapshot, nil
}

// RequestPlayback foregrounds materialization for an entry the user wants
// to hear. Missing entries and entries that already have audio are no-ops;
// a materialization already in flight is never duplicated.
func (c *Cache) RequestPlayback(id string) {
	c.mu.Lock()
	e, ok := c.findLocked(id)
	if !ok || e.AudioState == dict.AudioReady {
		c.mu.Unlock()
		return
	}
	text := e.Japanese
	c.mu.Unlock()

	c.spawnMaterialize(id, text)
}

// Delete removes the entry from the collection immediately and releases its
// handle; the stored payload is cleaned up in the background and a cleanup
// failure only leaves an orphaned payload behind, never a ghost entry.
func (c *Cache) Delete(id string) {
	c.mu.Lock()
	idx := -1
	for i, e := range c.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return
	}
	e := c.entries[idx]
	c.entries = append(c.entries[:idx], c.entries[idx+1:]...)
	c.mu.Unlock()

	if e.Handle != nil {
		e.Handle.Release()
	}
	c.persist()
	c.notify()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.blobs.Delete(blobstore.NativeKey(id)); err != nil {
			c.log.Warn("audio cleanup failed, payload orphaned", "id", id, "err", err)
		}
	}()
}

// Entries returns a snapshot of the collection, newest first.
func (c *Cache) Entries() []dict.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]dict.Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = *e
	}
	return out
}

// Get returns a snapshot of one entry.
func (c *Cache) Get(id string) (dict.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.findLocked(id)
	if !ok {
		return dict.Entry{}, false
	}
	return *e, true
}

// Len reports the number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// AudioFootprint reports the on-disk size of all stored audio.
func (c *Cache) AudioFootprint() int64 {
	return c.blobs.Size()
}

// Shutdown waits for in-flight background work and releases every handle.
// Safe to call more than once.
func (c *Cache) Shutdown() {
	c.wg.Wait()

	c.mu.Lock()
	for _, e := range c.entries {
		if e.Handle != nil {
			e.Handle.Release()
		}
	}
	c.mu.Unlock()
}

func (c *Cache) spawnMaterialize(id, text string) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		// Detached on purpose: no cancellation exists for in-flight
		// synthesis, and completion is observed via the entry's state.
		c.materialize(context.Background(), id, text)
	}()
}

// materialize synthesizes, persists, and attaches audio for one entry. At
// most one materialization runs per id; failures log and leave the entry
// pending. If the entry is deleted mid-flight the fresh handle is released
// and the result discarded rather than resurrected.
func (c *Cache) materialize(ctx context.Context, id, text string) {
	c.mu.Lock()
	if _, busy := c.inflight[id]; busy {
		c.mu.Unlock()
		return
	}
	e, ok := c.findLocked(id)
	if !ok || e.AudioState == dict.AudioReady {
		c.mu.Unlock()
		return
	}
	c.inflight[id] = struct{}{}
	c.mu.Unlock()

	pcm, err := c.synth.Synthesize(ctx, text, c.voice)
	if err != nil {
		c.log.Warn("speech synthesis failed, entry stays pending", "id", id, "err", err)
		c.clearInflight(id)
		return
	}

	container := wav.Encode(audio.Channels, audio.SampleRate, wav.Samples(pcm))
	if err := c.blobs.Put(blobstore.NativeKey(id), container); err != nil {
		c.log.Error("storing audio failed, entry stays pending", "id", id, "err", err)
		c.clearInflight(id)
		return
	}

	handle := audio.NewHandle(c.audio, pcm)

	c.mu.Lock()
	delete(c.inflight, id)
	e, ok = c.findLocked(id)
	if !ok {
		c.mu.Unlock()
		handle.Release()
		return
	}
	e.AudioState = dict.AudioReady
	e.Handle = handle
	c.mu.Unlock()
	c.notify()
}

func (c *Cache) clearInflight(id string) {
	c.mu.Lock()
	delete(c.inflight, id)
	c.mu.Unlock()
}

// persist writes the text projection of the current collection. It never
// runs before rehydration completes (a partial view would clobber the real
// snapshot) and a failed write is simply retried on the next mutation.
func (c *Cache) persist() {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	if !c.hydrated {
		c.mu.Unlock()
		return
	}
	records := make([]dict.Record, len(c.entries))
	for i, e := range c.entries {
		records[i] = e.Record()
	}
	c.mu.Unlock()

	if err := c.meta.Save(records); err != nil {
		c.log.Error("metadata snapshot write failed", "err", err)
	}
}

func (c *Cache) findLocked(id string) (*dict.Entry, bool) {
	for _, e := range c.entries {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

func (c *Cache) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
