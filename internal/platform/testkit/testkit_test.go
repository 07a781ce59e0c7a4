package testkit

import (
	"errors"
	"sync"
	"testing"
	"time"
)

var (
	clock   = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	retries = 3
)

func TestSwapRestoresAfterTheTest(t *testing.T) {
	pinned := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	t.Run("swapped", func(t *testing.T) {
		Swap(t, &clock, func() time.Time { return pinned })
		Swap(t, &retries, 0)
		if !clock().Equal(pinned) || retries != 0 {
			t.Fatalf("swap not applied: %v %d", clock(), retries)
		}
	})
	if clock().Year() != 2026 || clock().Month() != time.January || retries != 3 {
		t.Fatalf("seams not restored: %v %d", clock(), retries)
	}
}

func TestSerialExcludesOtherSerialTests(t *testing.T) {
	var (
		mu      sync.Mutex
		inside  int
		overlap bool
		wg      sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t.Run("serial", func(t *testing.T) {
				Serial(t)
				mu.Lock()
				inside++
				overlap = overlap || inside > 1
				mu.Unlock()
				time.Sleep(2 * time.Millisecond)
				mu.Lock()
				inside--
				mu.Unlock()
			})
		}()
	}
	wg.Wait()
	if overlap {
		t.Fatalf("serial sections overlapped")
	}
}

func TestAssertions(t *testing.T) {
	MustPanic(t, func() { panic("missing required env") })
	MustNotPanic(t, func() {})
	MustContain(t, `{"level":"info","job_id":"j-1"}`, `"job_id":"j-1"`)

	type code int
	errBad := errors.New("bad")
	codeOf := func(err error) code {
		if errors.Is(err, errBad) {
			return 422
		}
		return 500
	}
	MustCode(t, errBad, codeOf, code(422))
}
