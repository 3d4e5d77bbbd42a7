// Package store persists observations to the CSV and JSON history files.
package store

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/davidjcox/birdcast-collector/internal/domain"
)

// Appender writes each observation to both output formats, keeping them in
// lockstep. The two writes are not atomic across formats: a failure is
// reported with the format and path so an operator can tell which file is
// behind. The design assumes a single writer; nothing else may touch the
// files while a batch is running.
type Appender struct {
	csvPath  string
	jsonPath string
	logger   *slog.Logger
}

// NewAppender creates an Appender targeting the two history files, creating
// their parent directories if needed.
func NewAppender(csvPath, jsonPath string, logger *slog.Logger) (*Appender, error) {
	for _, p := range []string{csvPath, jsonPath} {
		if dir := filepath.Dir(p); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
	}
	return &Appender{csvPath: csvPath, jsonPath: jsonPath, logger: logger}, nil
}

// Append persists one observation to both files. The CSV row is appended
// first; if the JSON rewrite then fails, the CSV is one record ahead, which
// the returned *domain.AppendError identifies.
func (a *Appender) Append(obs domain.Observation) error {
	if err := appendCSV(a.csvPath, obs); err != nil {
		return &domain.AppendError{Format: "csv", Path: a.csvPath, Err: err}
	}
	if err := appendJSON(a.jsonPath, obs); err != nil {
		return &domain.AppendError{Format: "json", Path: a.jsonPath, Err: err}
	}
	a.logger.Debug("observation appended",
		"region", obs.RegionCode,
		"csv", a.csvPath,
		"json", a.jsonPath,
	)
	return nil
}
