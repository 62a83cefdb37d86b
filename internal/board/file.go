package board

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Board file extensions: .yb is pretty-printed JSON, .ybb is the compact
// msgpack encoding of the same snapshot.
const (
	ExtJSON   = ".yb"
	ExtBinary = ".ybb"
)

// SaveFile writes the board's snapshot to path, picking the encoding from
// the extension. Unknown extensions get the JSON form.
func SaveFile(b *Board, path string) error {
	s := b.Snapshot()

	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(path), ExtBinary) {
		data, err = msgpack.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode board: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadFile reads a board file. Malformed data is a recoverable error: the
// caller keeps its current board and shows a status message.
func LoadFile(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read board: %w", err)
	}

	var s Snapshot
	if strings.EqualFold(filepath.Ext(path), ExtBinary) {
		err = msgpack.Unmarshal(data, &s)
	} else {
		err = json.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode board: %w", err)
	}

	return FromSnapshot(&s), nil
}

// EncodeSnapshot serializes a snapshot to JSON, for the autosave cache.
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot parses a JSON snapshot produced by EncodeSnapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}
