package utils

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tj/go-spin"
)

// Spinner draws a terminal spinner next to a label until stopped.
type Spinner struct {
	out      io.Writer
	label    string
	interval time.Duration
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// StartSpinner begins drawing on out. Call Stop when the work finishes.
func StartSpinner(out io.Writer, label string) *Spinner {
	s := &Spinner{
		out:      out,
		label:    label,
		interval: 100 * time.Millisecond,
		done:     make(chan struct{}),
	}

	s.wg.Add(1)
	go s.run()
	return s
}

func (s *Spinner) run() {
	defer s.wg.Done()

	frames := spin.New()
	frames.Set(spin.Spin1)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	start := time.Now()
	for {
		fmt.Fprintf(s.out, "\r%s %s (%s)", frames.Next(), s.label, time.Since(start).Truncate(time.Second))
		select {
		case <-s.done:
			fmt.Fprintf(s.out, "\r%s done (%s)\n", s.label, time.Since(start).Truncate(time.Millisecond))
			return
		case <-ticker.C:
		}
	}
}

// Stop ends the spinner and waits for the final line. Safe to call more
// than once.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
}
