// Package profiling records nested wall-clock spans for the --timing flag.
package profiling

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Stopper ends a span, typically via defer.
type Stopper interface {
	Stop()
}

// Span is one timed step in the hierarchy.
type Span struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration_ns"`
	Children []*Span       `json:"children,omitempty"`

	start    time.Time
	profiler *Profiler
}

// Stop completes the timing for this span.
func (s *Span) Stop() {
	s.profiler.endSpan(s)
}

// Profiler tracks a stack of open spans. Spans are expected to nest; the
// session loader is single-goroutine so a stack is enough.
type Profiler struct {
	mu      sync.Mutex
	enabled bool
	root    *Span
	stack   []*Span
}

var defaultProfiler = &Profiler{}

// Enable starts a fresh profiling session on the global profiler.
func Enable() {
	defaultProfiler.reset(true)
}

// Disable turns the global profiler off and discards its spans.
func Disable() {
	defaultProfiler.reset(false)
}

// Enabled reports whether spans are being recorded.
func Enabled() bool {
	defaultProfiler.mu.Lock()
	defer defaultProfiler.mu.Unlock()
	return defaultProfiler.enabled
}

// Start begins a new span under the innermost open one.
func Start(name string) Stopper {
	return defaultProfiler.startSpan(name)
}

// Root returns the finished span tree, or nil when profiling is off.
func Root() *Span {
	defaultProfiler.mu.Lock()
	defer defaultProfiler.mu.Unlock()

	if !defaultProfiler.enabled {
		return nil
	}
	defaultProfiler.root.Duration = time.Since(defaultProfiler.root.start)
	return defaultProfiler.root
}

// Summarize prints an indented summary of all spans to w.
func Summarize(w io.Writer) {
	root := Root()
	if root == nil {
		return
	}

	fmt.Fprintln(w, "\n--- Timing Profile ---")
	for _, child := range root.Children {
		printSpan(w, child, 0, root.Duration)
	}
	fmt.Fprintf(w, "total %v\n", root.Duration.Round(100*time.Microsecond))
}

func (p *Profiler) reset(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.enabled = enabled
	p.root = &Span{Name: "total", start: time.Now(), profiler: p}
	p.stack = []*Span{p.root}
}

func (p *Profiler) startSpan(name string) Stopper {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.enabled {
		return noopStopper{}
	}

	parent := p.stack[len(p.stack)-1]
	s := &Span{Name: name, start: time.Now(), profiler: p}
	parent.Children = append(parent.Children, s)
	p.stack = append(p.stack, s)
	return s
}

func (p *Profiler) endSpan(s *Span) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s.Duration = time.Since(s.start)
	// Pop s and anything left open above it.
	for i := len(p.stack) - 1; i > 0; i-- {
		if p.stack[i] == s {
			p.stack = p.stack[:i]
			return
		}
	}
}

func printSpan(w io.Writer, s *Span, depth int, total time.Duration) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(s.Duration) / float64(total) * 100
	}
	fmt.Fprintf(w, "%s- %s (%v, %.1f%%)\n",
		strings.Repeat("  ", depth), s.Name, s.Duration.Round(100*time.Microsecond), percentage)
	for _, child := range s.Children {
		printSpan(w, child, depth+1, total)
	}
}

type noopStopper struct{}

func (noopStopper) Stop() {}
