package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Separator joins country code and city name into a cache key. Neither
// field may contain it.
const Separator = ","

// Header is the column header a dataset may start with.
const Header = "country code,city name,population"

// Sentinel errors for well-defined error conditions.
var (
	// ErrMalformedRecord indicates a missing field or a population that is
	// not a non-negative base-10 integer.
	ErrMalformedRecord = errors.New("ingest: malformed record")

	// ErrSeparatorCollision indicates a field containing Separator.
	ErrSeparatorCollision = errors.New("ingest: field contains key separator")
)

// Record is one (country code, city, population) row.
type Record struct {
	CountryCode string
	City        string
	Population  int64
}

// RecordError describes a rejected row.
type RecordError struct {
	Line int
	Raw  string
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Raw)
}

func (e *RecordError) Unwrap() error { return e.Err }

// ParseRecord validates the fields of one row. Fields beyond the third are
// ignored. Errors are *RecordError wrapping ErrMalformedRecord or
// ErrSeparatorCollision.
func ParseRecord(line int, fields []string) (Record, error) {
	fail := func(err error) (Record, error) {
		return Record{}, &RecordError{Line: line, Raw: strings.Join(fields, Separator), Err: err}
	}

	if len(fields) < 3 {
		return fail(fmt.Errorf("%w: want 3 fields, got %d", ErrMalformedRecord, len(fields)))
	}
	code, city, popStr := fields[0], fields[1], strings.TrimSpace(fields[2])
	if code == "" || city == "" || popStr == "" {
		return fail(fmt.Errorf("%w: empty field", ErrMalformedRecord))
	}
	if strings.Contains(code, Separator) || strings.Contains(city, Separator) {
		return fail(ErrSeparatorCollision)
	}

	pop, err := strconv.ParseInt(popStr, 10, 64)
	if err != nil {
		return fail(fmt.Errorf("%w: population %q is not an integer", ErrMalformedRecord, popStr))
	}
	if pop < 0 {
		return fail(fmt.Errorf("%w: negative population %d", ErrMalformedRecord, pop))
	}

	return Record{CountryCode: code, City: city, Population: pop}, nil
}

// Key returns the cache key for a record.
func (r Record) Key() string {
	return r.CountryCode + Separator + r.City
}

// isHeader reports whether a first row is the column header.
func isHeader(fields []string) bool {
	return strings.Contains(strings.ToLower(strings.Join(fields, Separator)), Header)
}
