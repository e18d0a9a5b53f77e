// Package repl runs the interactive query loop: read a country code and a
// city name, answer the query, then print the cache in its current order.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/citylookup/citycache"
)

// ExitWord ends the session when entered as a country code, in any case.
const ExitWord = "exit"

// Prompts written before each input line.
const (
	CodePrompt = "Enter country code (or 'exit' to quit): "
	CityPrompt = "Enter city name: "
)

// Session reads queries from in and writes answers to out.
//
// After each query the cache contents are listed in eviction order: the
// first line printed is the next entry to be evicted under lru and fifo.
type Session struct {
	client *citycache.Client
	in     *bufio.Scanner
	out    io.Writer
	logger *zap.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger for rejected queries.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a session over client.
func New(client *citycache.Client, in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		client: client,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("repl")
	return s
}

// Run loops until the exit word, end of input, or a client error other
// than a rejected key. End of input is not an error.
func (s *Session) Run() error {
	for {
		code, ok := s.prompt(CodePrompt)
		if !ok || strings.EqualFold(code, ExitWord) {
			return s.in.Err()
		}
		city, ok := s.prompt(CityPrompt)
		if !ok {
			return s.in.Err()
		}

		res, err := s.client.Query(code, city)
		switch {
		case errors.Is(err, citycache.ErrSeparatorCollision):
			s.logger.Debug("query rejected", zap.String("code", code), zap.String("city", city), zap.Error(err))
			fmt.Fprintln(s.out, "City not found.")
		case err != nil:
			return err
		case res.Hit():
			fmt.Fprintf(s.out, "Population (from cache): %d\n", res.Population)
		case res.Found():
			fmt.Fprintf(s.out, "Population: %d\n", res.Population)
		default:
			fmt.Fprintln(s.out, "City not found.")
		}

		s.printCache()
	}
}

func (s *Session) prompt(p string) (string, bool) {
	fmt.Fprint(s.out, p)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Session) printCache() {
	fmt.Fprintln(s.out, "Cache contents:")
	for _, e := range s.client.Cache().Entries() {
		fmt.Fprintf(s.out, "%s -> %s\n", e.Key, e.Value)
	}
	fmt.Fprintln(s.out)
}
