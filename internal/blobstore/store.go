// Package blobstore is a persistent keyed store for audio payloads. Each key
// maps to one file on disk, so independent keys never contend with or corrupt
// each other. Payloads over a small threshold are held zstd-compressed when
// compression actually wins.
package blobstore

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// ChannelNative is the audio channel for native-speaker pronunciation.
// Further channel kinds (slow readings, example sentences) key the same way.
const ChannelNative = "native"

// compressThreshold is the minimum payload size worth compressing.
const compressThreshold = 1024

// zstdMagic prefixes every zstd frame; payloads are stored either raw or as
// a single frame, and Get distinguishes the two by this prefix.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Key addresses one stored payload.
type Key struct {
	EntryID string
	Channel string
}

// NativeKey returns the key for an entry's native pronunciation audio.
func NativeKey(entryID string) Key {
	return Key{EntryID: entryID, Channel: ChannelNative}
}

func (k Key) String() string {
	return k.EntryID + "." + k.Channel
}

// Store persists payloads under a single directory.
type Store struct {
	dir     string
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Open creates the store directory if needed and prepares the codec.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blobstore: create directory: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("blobstore: create encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("blobstore: create decoder: %w", err)
	}

	return &Store{dir: dir, encoder: encoder, decoder: decoder}, nil
}

// Put stores a payload under key, replacing any previous payload.
func (s *Store) Put(key Key, data []byte) error {
	toWrite := data
	if len(data) > compressThreshold {
		compressed := s.encoder.EncodeAll(data, nil)
		if len(compressed) < len(data) {
			toWrite = compressed
		}
	}
	if err := writeAtomic(s.path(key), toWrite); err != nil {
		return fmt.Errorf("blobstore: put %s: %w", key, err)
	}
	return nil
}

// Get retrieves the payload for key. A missing key is reported as
// (nil, false, nil); the error return is reserved for real store failures.
func (s *Store) Get(key Key) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("blobstore: get %s: %w", key, err)
	}

	if bytes.HasPrefix(data, zstdMagic) {
		decompressed, err := s.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, false, fmt.Errorf("blobstore: decompress %s: %w", key, err)
		}
		data = decompressed
	}
	return data, true, nil
}

// Delete removes the payload for key. Deleting an absent key is a no-op.
func (s *Store) Delete(key Key) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blobstore: delete %s: %w", key, err)
	}
	return nil
}

// Size reports the total on-disk size of all stored payloads.
func (s *Store) Size() int64 {
	var total int64
	_ = filepath.WalkDir(s.dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil //nolint:nilerr
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}

// Close releases the codec resources.
func (s *Store) Close() error {
	s.encoder.Close()
	s.decoder.Close()
	return nil
}

func (s *Store) path(key Key) string {
	return filepath.Join(s.dir, key.String())
}

// writeAtomic writes via a temp file and rename so a crash mid-write never
// leaves a half-written payload under the real name.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	_, writeErr := f.Write(data)
	closeErr := f.Close()

	if writeErr != nil {
		os.Remove(tmp)
		return writeErr
	}
	if closeErr != nil {
		os.Remove(tmp)
		return closeErr
	}
	return os.Rename(tmp, path)
}
