package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var (
	errTransient = errors.New("transient")
	errFatal     = errors.New("fatal")
)

func testPolicy() (Policy, *[]time.Duration) {
	var slept []time.Duration
	p := DefaultPolicy()
	p.Retryable = func(err error) bool { return errors.Is(err, errTransient) }
	p.Sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return p, &slept
}

func TestDoSucceedsAfterTwoFailures(t *testing.T) {
	p, slept := testPolicy()
	calls := 0
	v, attempts, err := Do(context.Background(), p, func(_ context.Context, attempt int) (string, error) {
		calls++
		if attempt != calls {
			t.Errorf("attempt = %d, want %d", attempt, calls)
		}
		if attempt < 3 {
			return "", errTransient
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if v != "ok" || attempts != 3 || calls != 3 {
		t.Errorf("v=%q attempts=%d calls=%d", v, attempts, calls)
	}
	if len(*slept) != 2 {
		t.Errorf("slept %d times, want 2", len(*slept))
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	p, _ := testPolicy()
	calls := 0
	_, attempts, err := Do(context.Background(), p, func(context.Context, int) (int, error) {
		calls++
		return 0, errTransient
	})
	if err != errTransient {
		t.Fatalf("err = %v, want the original error unwrapped", err)
	}
	if attempts != 3 || calls != 3 {
		t.Errorf("attempts=%d calls=%d, want 3", attempts, calls)
	}
}

func TestDoDoesNotRetryFatal(t *testing.T) {
	p, slept := testPolicy()
	calls := 0
	_, attempts, err := Do(context.Background(), p, func(context.Context, int) (int, error) {
		calls++
		return 0, errFatal
	})
	if !errors.Is(err, errFatal) || calls != 1 || attempts != 1 || len(*slept) != 0 {
		t.Fatalf("err=%v calls=%d attempts=%d slept=%d", err, calls, attempts, len(*slept))
	}
}

func TestHookFailureDoesNotAbort(t *testing.T) {
	p, _ := testPolicy()
	hookCalls := 0
	p.BeforeRetry = func(context.Context, State) error {
		hookCalls++
		if hookCalls == 1 {
			panic("boom")
		}
		return errors.New("hook error")
	}

	_, attempts, err := Do(context.Background(), p, func(_ context.Context, attempt int) (int, error) {
		if attempt < 3 {
			return 0, errTransient
		}
		return 1, nil
	})
	if err != nil || attempts != 3 {
		t.Fatalf("err=%v attempts=%d", err, attempts)
	}
	if hookCalls != 2 {
		t.Errorf("hookCalls = %d, want 2", hookCalls)
	}
}

func TestWaitBounds(t *testing.T) {
	p := DefaultPolicy()
	for _, r := range []float64{0, 0.5, 0.999} {
		p.Rand = func() float64 { return r }
		for attempt := 1; attempt <= 10; attempt++ {
			w := p.Wait(attempt)
			if w < 4*time.Second || w > 60*time.Second {
				t.Errorf("Wait(%d) with r=%v = %v, out of [4s, 60s]", attempt, r, w)
			}
		}
	}

	p.Rand = func() float64 { return 1 }
	if got := p.Wait(3); got != 8*time.Second {
		t.Errorf("Wait(3) upper bound = %v, want 8s", got)
	}
	if got := p.Wait(10); got != 60*time.Second {
		t.Errorf("Wait(10) upper bound = %v, want 60s", got)
	}
}

func TestDoStopsOnCancelledSleep(t *testing.T) {
	p := DefaultPolicy()
	p.Retryable = func(error) bool { return true }
	ctx, cancel := context.WithCancel(context.Background())
	p.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	calls := 0
	_, _, err := Do(ctx, p, func(context.Context, int) (int, error) {
		calls++
		return 0, errTransient
	})
	if err != errTransient || calls != 1 {
		t.Fatalf("err=%v calls=%d", err, calls)
	}
}
