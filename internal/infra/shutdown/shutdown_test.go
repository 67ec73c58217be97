package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHooksRunInReverseOrder(t *testing.T) {
	h := NewHandler(time.Second)

	var order []int
	h.OnShutdown(func(context.Context) error { order = append(order, 1); return nil })
	h.OnShutdown(func(context.Context) error { order = append(order, 2); return nil })
	h.OnShutdown(func(context.Context) error { order = append(order, 3); return nil })

	h.Trigger()
	if err := h.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	want := []int{3, 2, 1}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("hook order = %v, want %v", order, want)
		}
	}
}

func TestWaitReturnsLastError(t *testing.T) {
	h := NewHandler(time.Second)

	errFirst := errors.New("first registered")
	h.OnShutdown(func(context.Context) error { return errFirst })
	h.OnShutdown(func(context.Context) error { return errors.New("second registered") })

	h.Trigger()
	// Hooks run in reverse, so the first-registered hook errors last.
	if err := h.Wait(); !errors.Is(err, errFirst) {
		t.Errorf("Wait() error = %v, want %v", err, errFirst)
	}
}

func TestHookContextHasDeadline(t *testing.T) {
	h := NewHandler(50 * time.Millisecond)

	var deadlineSet bool
	h.OnShutdown(func(ctx context.Context) error {
		_, deadlineSet = ctx.Deadline()
		return nil
	})

	h.Trigger()
	h.Wait()

	if !deadlineSet {
		t.Error("hook context has no deadline")
	}
}

func TestDoneClosesAfterWait(t *testing.T) {
	h := NewHandler(time.Second)

	select {
	case <-h.Done():
		t.Fatal("Done() closed before shutdown")
	default:
	}

	h.Trigger()
	h.Wait()

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() not closed after Wait")
	}
}

func TestTriggerIsIdempotent(t *testing.T) {
	h := NewHandler(time.Second)
	h.Trigger()
	h.Trigger()

	if err := h.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}
