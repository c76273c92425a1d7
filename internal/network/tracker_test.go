package network

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerMarksAndReports(t *testing.T) {
	tr := NewRequestTracker()

	assert.False(t, tr.IsRequested("u1"))

	tr.MarkRequested("u1")
	assert.True(t, tr.IsRequested("u1"))
	assert.False(t, tr.IsRequested("u2"))
}

func TestTrackerSurvivesSuggestionRefresh(t *testing.T) {
	// A suggestion the user already requested stays flagged even after
	// the suggestions list is refetched: the flag lives here, not in the
	// list data, because the server keeps suggesting users until the
	// request is actioned.
	tr := NewRequestTracker()
	tr.MarkRequested("u1")

	refetched := []string{"u1", "u2", "u3"}
	var stillFlagged []string
	for _, id := range refetched {
		if tr.IsRequested(id) {
			stillFlagged = append(stillFlagged, id)
		}
	}
	assert.Equal(t, []string{"u1"}, stillFlagged)
}

func TestTrackerMarkIsIdempotent(t *testing.T) {
	tr := NewRequestTracker()
	tr.MarkRequested("u1")
	tr.MarkRequested("u1")
	assert.True(t, tr.IsRequested("u1"))
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tr := NewRequestTracker()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.MarkRequested("shared")
			tr.IsRequested("shared")
		}()
	}
	wg.Wait()

	assert.True(t, tr.IsRequested("shared"))
}
