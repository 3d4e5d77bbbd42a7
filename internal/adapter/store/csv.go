package store

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/davidjcox/birdcast-collector/internal/domain"
)

// appendCSV appends one data row, creating the file with a header row when
// it is absent or empty. Prior rows are never re-read or rewritten.
func appendCSV(path string, obs domain.Observation) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(domain.Columns()); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(obs.CSVRow()); err != nil {
		return fmt.Errorf("write row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return f.Close()
}
