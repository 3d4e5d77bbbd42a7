package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/davidjcox/birdcast-collector/internal/domain"
)

// appendJSON appends one object to the top-level array in the history file.
// The array-of-objects shape forces a full read-modify-write; prior elements
// are carried as raw bytes so their content is untouched, and the rewrite
// goes through a temp file plus rename so a crash never leaves a truncated
// history. A file that exists but does not parse is an error, never
// silently replaced.
func appendJSON(path string, obs domain.Observation) error {
	var records []json.RawMessage

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(bytes.TrimSpace(data)) > 0 {
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("existing history unparsable, refusing to overwrite: %w", err)
			}
		}
	case os.IsNotExist(err):
		// first observation, start a new array
	default:
		return fmt.Errorf("read: %w", err)
	}

	rec, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("marshal observation: %w", err)
	}
	records = append(records, rec)

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	out = append(out, '\n')

	return writeAtomic(path, out)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
