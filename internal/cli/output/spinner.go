package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner animates while a request is outstanding, for instance a
// snapshot creation held up by the simulated device delay.
type Spinner struct {
	w        io.Writer
	message  string
	frames   []string
	interval time.Duration

	once sync.Once
	done chan struct{}
	wg   sync.WaitGroup
}

// NewSpinner creates a new spinner.
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		w:        w,
		message:  message,
		frames:   []string{"|", "/", "-", "\\"},
		interval: 100 * time.Millisecond,
		done:     make(chan struct{}),
	}
}

// Start starts the animation.
func (s *Spinner) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.w, "\r%s %s", s.frames[i%len(s.frames)], s.message)
			select {
			case <-s.done:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop ends the animation and prints the final line. An empty line just
// clears the spinner.
func (s *Spinner) Stop(final string) {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		if final == "" {
			fmt.Fprint(s.w, "\r\033[K")
			return
		}
		fmt.Fprintf(s.w, "\r\033[K%s\n", final)
	})
}
