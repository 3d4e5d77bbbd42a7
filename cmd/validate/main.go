// Command validate performs integrity checks across the two observation
// history files: header and key agreement, row-count lockstep, and field
// value sanity. Run it when a collector failure left the formats suspect.
//
// Usage:
//
//	go run ./cmd/validate -csv data/birdcast_data.csv -json data/birdcast_data.json
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/davidjcox/birdcast-collector/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "data/birdcast_data.csv", "path to the CSV history")
	jsonPath := flag.String("json", "data/birdcast_data.json", "path to the JSON history")
	flag.Parse()

	os.Exit(run(*csvPath, *jsonPath))
}

func run(csvPath, jsonPath string) int {
	header, rows, err := loadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load CSV: %v\n", err)
		return 1
	}
	objects, err := loadJSON(jsonPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load JSON: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkHeader(header),
		checkLockstep(rows, objects),
		checkKeys(objects),
		checkValues(header, rows),
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS  %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL  %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("      %s\n", e)
		}
	}

	fmt.Printf("\n%d record(s) in CSV, %d in JSON, %d phase(s) failed\n",
		len(rows), len(objects), failed)
	if failed > 0 {
		return 1
	}
	return 0
}

func loadCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	return all[0], all[1:], nil
}

func loadJSON(path string) ([]map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var objects []map[string]json.RawMessage
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, err
	}
	return objects, nil
}

func checkHeader(header []string) *phase {
	p := &phase{name: "CSV header matches the fixed column order"}
	want := domain.Columns()
	if len(header) != len(want) {
		p.errorf("header has %d columns, want %d", len(header), len(want))
		return p
	}
	for i, col := range want {
		if header[i] != col {
			p.errorf("column %d is %q, want %q", i, header[i], col)
		}
	}
	return p
}

// checkLockstep verifies the two formats hold the same history. A
// difference of exactly one record is the signature of a crash between the
// CSV append and the JSON rewrite; anything larger means history diverged.
func checkLockstep(rows [][]string, objects []map[string]json.RawMessage) *phase {
	p := &phase{name: "CSV and JSON record counts in lockstep"}
	diff := len(rows) - len(objects)
	switch {
	case diff == 0:
	case diff == 1:
		p.errorf("CSV is one record ahead of JSON (interrupted append); reconcile manually")
	case diff == -1:
		p.errorf("JSON is one record ahead of CSV; reconcile manually")
	default:
		p.errorf("counts diverged: %d CSV rows vs %d JSON objects", len(rows), len(objects))
	}
	return p
}

func checkKeys(objects []map[string]json.RawMessage) *phase {
	p := &phase{name: "JSON objects carry exactly the CSV columns as keys"}
	want := domain.Columns()
	for i, obj := range objects {
		if len(obj) != len(want) {
			p.errorf("object %d has %d keys, want %d", i, len(obj), len(want))
			continue
		}
		for _, col := range want {
			if _, ok := obj[col]; !ok {
				p.errorf("object %d is missing key %q", i, col)
			}
		}
	}
	return p
}

func checkValues(header []string, rows [][]string) *phase {
	p := &phase{name: "CSV field values parse as their declared types"}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	for i, row := range rows {
		if len(row) != len(header) {
			p.errorf("row %d has %d fields, want %d", i, len(row), len(header))
			continue
		}
		if _, err := time.Parse(time.RFC3339, row[col["scrape_timestamp"]]); err != nil {
			p.errorf("row %d: bad scrape_timestamp %q", i, row[col["scrape_timestamp"]])
		}
		if row[col["url"]] == "" {
			p.errorf("row %d: empty url", i)
		}
		for _, name := range []string{domain.FieldTotalBirds, domain.FieldPeakBirds} {
			if v := row[col[name]]; v != "" {
				if n, err := strconv.ParseInt(v, 10, 64); err != nil || n < 0 {
					p.errorf("row %d: %s %q is not a non-negative integer", i, name, v)
				}
			}
		}
		for _, name := range []string{domain.FieldFlightSpeed, domain.FieldFlightAltitude} {
			if v := row[col[name]]; v != "" {
				if f, err := strconv.ParseFloat(v, 64); err != nil || f < 0 {
					p.errorf("row %d: %s %q is not a non-negative number", i, name, v)
				}
			}
		}
	}
	return p
}
