// Package targets supplies the region lists the collector scrapes.
package targets

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/davidjcox/birdcast-collector/internal/domain"
)

var regionCodeRe = regexp.MustCompile(`/region/([^/]+)/?$`)

// Defaults returns the built-in core county list.
func Defaults() []domain.Target {
	return []domain.Target{
		{RegionCode: "US-FL-031", URL: "https://dashboard.birdcast.info/region/US-FL-031"}, // Duval County, Florida
		{RegionCode: "US-CO-013", URL: "https://dashboard.birdcast.info/region/US-CO-013"}, // Boulder County, Colorado
		{RegionCode: "US-NJ-013", URL: "https://dashboard.birdcast.info/region/US-NJ-013"}, // Essex County, New Jersey
		{RegionCode: "US-CA-013", URL: "https://dashboard.birdcast.info/region/US-CA-013"}, // Contra Costa County, California
		{RegionCode: "US-AL-081", URL: "https://dashboard.birdcast.info/region/US-AL-081"}, // Lee County, Alabama
	}
}

// LoadCSV reads a flyway corridor county list. The file must have a header
// row with a "birdcast_url" column; a "region_code" column is used when
// present, otherwise the code is derived from the URL. Rows without a URL
// are skipped. Order is preserved.
func LoadCSV(path string) ([]domain.Target, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open target list: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read target list header: %w", err)
	}

	urlCol, codeCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "birdcast_url":
			urlCol = i
		case "region_code":
			codeCol = i
		}
	}
	if urlCol == -1 {
		return nil, errors.New("target list has no birdcast_url column")
	}

	var list []domain.Target
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read target list row: %w", err)
		}
		if urlCol >= len(row) {
			continue
		}
		url := strings.TrimSpace(row[urlCol])
		if url == "" {
			continue
		}

		code := ""
		if codeCol != -1 && codeCol < len(row) {
			code = strings.TrimSpace(row[codeCol])
		}
		if code == "" {
			code = RegionCodeFromURL(url)
		}
		list = append(list, domain.Target{RegionCode: code, URL: url})
	}
	return list, nil
}

// RegionCodeFromURL extracts the region code from a dashboard URL,
// e.g. ".../region/US-FL-031" → "US-FL-031". Returns "" when the URL does
// not follow the dashboard path shape.
func RegionCodeFromURL(url string) string {
	m := regionCodeRe.FindStringSubmatch(strings.TrimSuffix(url, "/"))
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
