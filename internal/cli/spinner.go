package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/klotskigraph/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner draws an animated status line with the elapsed time until it is
// stopped or its context ends. The message may change while it runs.
type Spinner struct {
	w      io.Writer
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc

	stopped chan struct{}

	mu      sync.Mutex
	running bool
	ended   bool
	message string
	start   time.Time
	width   int
}

// newSpinner creates a spinner on stderr that only stops when told to.
func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner on stderr that also stops when ctx
// is cancelled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	return newSpinnerTo(ctx, os.Stderr, message)
}

func newSpinnerTo(ctx context.Context, w io.Writer, message string) *Spinner {
	sctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		parent:  ctx,
		ctx:     sctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
		message: message,
	}
}

// Start begins the animation. It has no effect on a running or stopped
// spinner.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running || s.ended {
		return
	}
	s.running = true
	s.start = time.Now()
	go s.run()
}

func (s *Spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-ticker.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := time.Since(s.start).Truncate(100 * time.Millisecond)
	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message) + " " +
		StyleDim.Render("("+elapsed.String()+")")
	if w := lipgloss.Width(line); w > s.width {
		s.width = w
	}
	fmt.Fprintf(s.w, "\r%s\033[K", line)
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	}
}

// Update replaces the message shown next to the animation.
func (s *Spinner) Update(format string, args ...any) {
	s.mu.Lock()
	s.message = fmt.Sprintf(format, args...)
	s.mu.Unlock()
}

// Message returns the current message.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Stop ends the animation and clears the line. It is safe to call more
// than once, and before Start.
func (s *Spinner) Stop() {
	s.cancel()
	s.mu.Lock()
	running := s.running
	s.running, s.ended = false, true
	s.mu.Unlock()
	if running {
		<-s.stopped
	}
}

// StopWithSuccess stops the spinner and prints a success line.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints an error line.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the spinner's parent context was cancelled,
// as opposed to the spinner being stopped normally.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

// exploreProgress shows explorer progress on a spinner.
type exploreProgress struct {
	observability.NoopExploreHooks
	spinner *Spinner
}

func (h exploreProgress) OnProgress(_ context.Context, expanded, queued, discovered int) {
	h.spinner.Update("Exploring: %d states found, %d expanded, %d queued", discovered, expanded, queued)
}
