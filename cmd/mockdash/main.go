// Command mockdash serves generated BirdCast-style dashboard pages for
// local development, so a collector can be exercised end to end without
// touching the real upstream. Figures are deterministic per region and
// night, which makes repeated runs comparable.
//
// Usage:
//
//	go run ./cmd/mockdash -addr :9090
//	TARGETS_CSV= CSV_PATH=/tmp/d.csv JSON_PATH=/tmp/d.json \
//	  go run ./cmd/collector run   # after pointing targets at :9090
package main

import (
	"flag"
	"fmt"
	"hash/fnv"
	"html/template"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

var directions = []string{"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW"}

var pageTmpl = template.Must(template.New("region").Parse(`<!DOCTYPE html>
<html>
<head><title>BirdCast Migration Dashboard</title></head>
<body>
  <header><h1>Migration Dashboard</h1><h2>{{.RegionName}}</h2><nav>Search</nav></header>
  <main>
    <section>
      <p><strong>{{.TotalBirds}}</strong> Birds crossed {{.RegionName}} last night</p>
      <p>Peak of {{.PeakBirds}} birds in flight, flying {{.Direction}} at {{.Speed}} mph at {{.Altitude}} feet</p>
    </section>
    <section>
      <p>{{.NightLabel}}</p>
      <p>Migration began {{.WindowStart}} and ended {{.WindowEnd}}</p>
    </section>
  </main>
</body>
</html>
`))

type page struct {
	RegionName  string
	TotalBirds  string
	PeakBirds   string
	Direction   string
	Speed       int
	Altitude    string
	NightLabel  string
	WindowStart string
	WindowEnd   string
}

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /region/{code}", handleRegion)

	log.Printf("mock dashboard listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

func handleRegion(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		http.NotFound(w, r)
		return
	}

	night := time.Now().AddDate(0, 0, -1)
	p := generate(code, night)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, p); err != nil {
		log.Printf("render %s: %v", code, err)
	}
}

// generate derives a night's figures from the region code and date alone.
func generate(code string, night time.Time) page {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s", code, night.Format("2006-01-02"))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	total := 1000 + rng.Intn(2_000_000)
	peak := total / (8 + rng.Intn(20))
	start := time.Date(night.Year(), night.Month(), night.Day(), 18+rng.Intn(4), 15*rng.Intn(4), 0, 0, time.UTC)
	end := start.Add(time.Duration(6+rng.Intn(6)) * time.Hour)

	return page{
		RegionName:  regionName(code),
		TotalBirds:  groupThousands(total),
		PeakBirds:   groupThousands(peak),
		Direction:   directions[rng.Intn(len(directions))],
		Speed:       8 + rng.Intn(35),
		Altitude:    groupThousands(300 + 100*rng.Intn(20)),
		NightLabel:  night.Format("Monday") + " night, " + night.Format("Jan 2"),
		WindowStart: start.Format("Mon, Jan 2, 2006, 3:04 PM") + " EDT",
		WindowEnd:   end.Format("Mon, Jan 2, 2006, 3:04 PM") + " EDT",
	}
}

// regionName fakes a readable county name out of a region code like
// "US-FL-031".
func regionName(code string) string {
	parts := strings.Split(code, "-")
	if len(parts) != 3 {
		return code
	}
	return fmt.Sprintf("County %s, %s", parts[2], parts[1])
}

func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
