// Package file provides a line-oriented report sink over any io.Writer.
// It is the usual destination for LOG actions and for summary redirects.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/accellera-official/uvm-core/contracts"
	"github.com/accellera-official/uvm-core/sinks"
)

// Sink writes one line per report. Writes are serialized; the sink never
// reorders or drops lines.
type Sink struct {
	mu    sync.Mutex
	w     io.Writer
	owned io.Closer
}

// New wraps an existing writer. Close leaves the writer open.
func New(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Open creates or appends to the file at path. Close closes the file.
func Open(path string) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open report log %s: %w", path, err)
	}
	return &Sink{w: f, owned: f}, nil
}

// Write implements sinks.Sink.
func (s *Sink) Write(_ context.Context, _ *contracts.Report, composed string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.w == nil {
		return fmt.Errorf("file sink is closed")
	}
	if _, err := io.WriteString(s.w, composed+"\n"); err != nil {
		return fmt.Errorf("failed to write report line: %w", err)
	}
	return nil
}

// Close implements sinks.Sink. Only files the sink opened itself are closed.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.w = nil
	if s.owned != nil {
		err := s.owned.Close()
		s.owned = nil
		return err
	}
	return nil
}

var _ sinks.Sink = (*Sink)(nil)
