package scanner

import (
	"fmt"
	"sync"
	"time"

	"github.com/omelkes/phaicull/logging"
	"github.com/omelkes/phaicull/types"
)

// ProgressTracker periodically prints how far the per-image pass has come.
// Results arrive on a channel from the worker goroutines.
type ProgressTracker struct {
	processed int
	flagged   int
	total     int

	ticker  *time.Ticker
	done    chan bool
	drained chan struct{}
	mu      sync.Mutex
}

// NewProgressTracker starts tracking a batch of total images, consuming
// finished results from the channel until it is closed.
func NewProgressTracker(total int, results <-chan types.FilterResult) *ProgressTracker {
	tracker := &ProgressTracker{
		ticker:  time.NewTicker(500 * time.Millisecond),
		done:    make(chan bool),
		drained: make(chan struct{}),
		total:   total,
	}

	go tracker.displayProgress()
	go tracker.processResults(results)

	return tracker
}

// displayProgress shows the progress periodically
func (p *ProgressTracker) displayProgress() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.mu.Lock()
			fmt.Printf("\rProgress: %d/%d (flagged: %d)", p.processed, p.total, p.flagged)
			p.mu.Unlock()
		}
	}
}

// processResults updates the tracker state as images finish
func (p *ProgressTracker) processResults(results <-chan types.FilterResult) {
	for result := range results {
		p.mu.Lock()
		p.processed++
		if result.ShouldFilter {
			p.flagged++
		}
		p.mu.Unlock()

		logging.LogImageProcessed(result.Path, result.ShouldFilter, result.Reasons)
	}
	close(p.drained)
}

// Stop ends the progress tracking and prints the final line. The results
// channel must be closed before calling Stop.
func (p *ProgressTracker) Stop() {
	p.ticker.Stop()
	p.done <- true
	<-p.drained

	p.mu.Lock()
	fmt.Printf("\rProgress: %d/%d (flagged: %d)\n", p.processed, p.total, p.flagged)
	p.mu.Unlock()
}

// Counts returns how many images were processed and how many were flagged.
func (p *ProgressTracker) Counts() (processed, flagged int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed, p.flagged
}
