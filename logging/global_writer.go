package logging

import (
	"io"
	"os"
	"sync"
)

// stderr is the stream sink of every logger. Swapping its target also
// redirects loggers created before the swap.
var stderr = &sink{w: os.Stderr}

type sink struct {
	mu sync.RWMutex
	w  io.Writer
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

// SetStderr redirects the stream output of every logger.
func SetStderr(w io.Writer) {
	stderr.mu.Lock()
	stderr.w = w
	stderr.mu.Unlock()
}
