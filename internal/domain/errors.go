package domain

import "fmt"

// FetchError is a terminal fetch failure after exhausting retries, or a
// response that cannot be scraped (wrong content type, CSS body). The batch
// runner recovers from it by marking the target failed and moving on.
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// AppendError is a persistence failure in one of the two output formats.
// Format is "csv" or "json" so operators can tell which file is now behind
// the other; the two writes are not atomic across formats.
type AppendError struct {
	Format string
	Path   string
	Err    error
}

func (e *AppendError) Error() string {
	return fmt.Sprintf("append %s %s: %v", e.Format, e.Path, e.Err)
}

func (e *AppendError) Unwrap() error { return e.Err }
