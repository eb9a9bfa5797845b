package gateway

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// streamWriterConfig controls when buffered deltas are pushed to the client.
type streamWriterConfig struct {
	// MaxBufferBytes triggers a push when the buffer reaches this size.
	// Default: 300 bytes.
	MaxBufferBytes int

	// IdleTimeout pushes whatever is buffered when no delta arrives within
	// this duration. Default: 2 seconds.
	IdleTimeout time.Duration
}

// streamWriter batches model deltas and writes them to the HTTP response at
// natural text boundaries (paragraphs, sentences, size limit, idle timeout),
// flushing the chunked response after each write. Bytes pass through
// verbatim; batching only affects chunk boundaries, never content.
type streamWriter struct {
	cfg     streamWriterConfig
	w       io.Writer
	flusher http.Flusher

	mu       sync.Mutex
	buf      strings.Builder
	timer    *time.Timer
	wrote    bool
	writeErr error
}

func newStreamWriter(w http.ResponseWriter, cfg streamWriterConfig) *streamWriter {
	if cfg.MaxBufferBytes <= 0 {
		cfg.MaxBufferBytes = 300
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 2 * time.Second
	}
	flusher, _ := w.(http.Flusher)
	return &streamWriter{cfg: cfg, w: w, flusher: flusher}
}

// OnDelta appends a delta and pushes if a boundary is reached. Returns the
// first write error encountered so the caller can stop streaming promptly.
func (s *streamWriter) OnDelta(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.writeErr != nil {
		return s.writeErr
	}
	s.buf.WriteString(text)

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.cfg.IdleTimeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.pushLocked(s.buf.Len())
	})

	s.checkBoundaryLocked()
	return s.writeErr
}

// Close pushes any remaining buffered content. Call after the stream ends.
func (s *streamWriter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pushLocked(s.buf.Len())
	return s.writeErr
}

// Wrote reports whether any bytes reached the client.
func (s *streamWriter) Wrote() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wrote
}

func (s *streamWriter) checkBoundaryLocked() {
	content := s.buf.String()

	if len(content) >= s.cfg.MaxBufferBytes {
		s.pushLocked(len(content))
		return
	}
	if idx := strings.LastIndex(content, "\n\n"); idx >= 0 {
		s.pushLocked(idx + 2)
		return
	}
	if pos := lastSentenceEnd(content); pos > 0 {
		s.pushLocked(pos)
	}
}

// pushLocked writes the first n buffered bytes and keeps the rest.
func (s *streamWriter) pushLocked(n int) {
	content := s.buf.String()
	if n > len(content) {
		n = len(content)
	}
	if n == 0 || s.writeErr != nil {
		return
	}

	if _, err := io.WriteString(s.w, content[:n]); err != nil {
		s.writeErr = err
		return
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	s.wrote = true

	remainder := content[n:]
	s.buf.Reset()
	s.buf.WriteString(remainder)
}

// lastSentenceEnd returns the byte position just past the last sentence-ending
// punctuation (. ! ?) followed by a space or newline. Returns -1 when no
// boundary exists or the buffer is too small (< 40 bytes) to bother pushing.
func lastSentenceEnd(s string) int {
	best := -1
	for i := 0; i < len(s)-1; i++ {
		if (s[i] == '.' || s[i] == '!' || s[i] == '?') &&
			(s[i+1] == ' ' || s[i+1] == '\n') {
			best = i + 1
		}
	}
	if best > 40 {
		return best
	}
	return -1
}
