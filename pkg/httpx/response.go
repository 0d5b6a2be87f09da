package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// JSON writes v as JSON with the given status code. Encoding errors are
// discarded; use this for handler responses, not for streaming.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError writes a standard {"error": message} JSON response.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// NoContent writes 204 with no body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// SafeError returns the error message for client responses.
// In production, 5xx messages are replaced with the status text.
func SafeError(err error, status int, isProduction bool) string {
	if isProduction && status >= http.StatusInternalServerError {
		return http.StatusText(status)
	}
	return err.Error()
}

// Page is the envelope for every list endpoint.
type Page[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Paging is a parsed ?limit=&offset= pair.
type Paging struct {
	Limit  int
	Offset int
}

// Paging limits shared by list endpoints.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

var (
	errBadLimit  = errors.New("limit must be a positive integer")
	errBadOffset = errors.New("offset must be a non-negative integer")
)

// ParsePaging reads ?limit=&offset=. A missing limit defaults to
// DefaultPageSize and a larger one is clamped to MaxPageSize.
func ParsePaging(r *http.Request) (Paging, error) {
	p := Paging{Limit: DefaultPageSize}
	q := r.URL.Query()
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return p, errBadLimit
		}
		p.Limit = min(n, MaxPageSize)
	}
	if s := q.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return p, errBadOffset
		}
		p.Offset = n
	}
	return p, nil
}

// WritePage writes data as a Page with status 200.
func WritePage[T any](w http.ResponseWriter, data []T, total int, p Paging) {
	if data == nil {
		data = []T{}
	}
	JSON(w, http.StatusOK, Page[T]{Data: data, Total: total, Limit: p.Limit, Offset: p.Offset})
}
