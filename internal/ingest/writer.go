package ingest

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// Writer writes records in the format Loader reads, header first.
type Writer struct {
	w      *csv.Writer
	header bool
	n      int64
}

// NewWriter returns a Writer on w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

// Write appends one record. The record is validated first so that the
// output always loads cleanly.
func (w *Writer) Write(r Record) error {
	if _, err := ParseRecord(int(w.n)+2, []string{r.CountryCode, r.City, strconv.FormatInt(r.Population, 10)}); err != nil {
		return err
	}
	if !w.header {
		if err := w.w.Write(strings.Split(Header, Separator)); err != nil {
			return err
		}
		w.header = true
	}
	w.n++
	return w.w.Write([]string{r.CountryCode, r.City, strconv.FormatInt(r.Population, 10)})
}

// Count returns the number of records written.
func (w *Writer) Count() int64 { return w.n }

// Flush writes buffered data and reports any write error.
func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}
