package transcribe

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
)

func TestProgress_KnownDuration(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "a.mp4", 0, 100)

	p.Advance(25)
	gt.Equal(t, p.Percent(), 25.0)

	// out of order segments never move progress backwards
	p.Advance(10)
	gt.Equal(t, p.Percent(), 25.0)

	p.Advance(150)
	gt.Equal(t, p.Percent(), 100.0)
	gt.True(t, strings.Contains(buf.String(), "100.0%"))
}

func TestProgress_UnknownDurationCompletesOnLastSegment(t *testing.T) {
	p := NewProgress(nil, "a.mp4", 1, 0)

	p.Advance(12.5)
	p.Advance(30)
	gt.Equal(t, p.Percent(), 0.0)
	gt.Equal(t, p.Done(), 30.0)

	p.Finish(30)
	gt.Equal(t, p.Percent(), 100.0)
}

func TestProgress_FinishWithoutSegments(t *testing.T) {
	p := NewProgress(nil, "silent.mp4", 0, 0)
	p.Finish(0)
	gt.Equal(t, p.Percent(), 0.0)
}

func TestSlotAllocator(t *testing.T) {
	a := NewSlotAllocator()

	const workers = 16
	slots := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slots <- a.Acquire()
		}()
	}
	wg.Wait()
	close(slots)

	seen := make(map[int]bool)
	for s := range slots {
		gt.Equal(t, seen[s], false)
		seen[s] = true
	}
	gt.Equal(t, len(seen), workers)
	gt.Equal(t, a.InUse(), workers)

	a.Release(3)
	gt.Equal(t, a.Acquire(), 3)
	gt.Equal(t, a.Acquire(), workers)
}
