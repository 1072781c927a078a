package engine

import (
	"fmt"
	"net/http"
)

// ValidationError reports bad caller input detected before any network call.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Msg
}

// FetchError terminates a fetch: either the API answered with a non-2xx
// status (StatusCode, Body set) or the exchange itself failed (Err set).
type FetchError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("youtube data API %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
	}
	return fmt.Sprintf("youtube data API: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IOError wraps a filesystem failure while producing the output file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
