package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"encoding/json/v2"
)

// WriteResult describes a written artifact.
type WriteResult struct {
	Path     string
	Size     int64
	Checksum string
}

// Read loads a snapshot artifact from disk. A missing file and a file that
// is not valid JSON are distinct failures for the caller to classify.
func Read(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	var snap Snapshot
	if err := json.UnmarshalRead(f, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &snap, nil
}

// Write encodes a snapshot to disk. Writes to a temp file and renames on
// success so a partially written artifact can never replace a good one.
func Write(path string, snap *Snapshot) (*WriteResult, error) {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("create snapshot file: %w", err)
	}
	defer os.Remove(tmpPath) // Clean up on failure
	defer f.Close()

	// Tee to SHA-256 hasher
	hasher := sha256.New()
	w := io.MultiWriter(f, hasher)

	if err := json.MarshalWrite(w, snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close snapshot file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		return nil, fmt.Errorf("rename snapshot: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat snapshot: %w", err)
	}

	return &WriteResult{
		Path:     path,
		Size:     info.Size(),
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// EncodedSize returns the byte size a snapshot would occupy on disk.
func EncodedSize(snap *Snapshot) (int64, error) {
	b, err := json.Marshal(snap)
	if err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}
