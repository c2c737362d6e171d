package booking

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransitionAndApply(t *testing.T) {
	if !CanTransition(StatusPending, StatusConfirmed) {
		t.Fatalf("expected pending -> confirmed allowed")
	}
	if CanTransition(StatusCompleted, StatusPending) {
		t.Fatalf("expected completed -> pending not allowed")
	}

	b := &Booking{Status: StatusPending}
	now := time.Now()
	if err := ApplyTransition(b, StatusConfirmed, now); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if b.Status != StatusConfirmed {
		t.Fatalf("expected status confirmed, got %s", b.Status)
	}

	if err := ApplyTransition(b, StatusPending, now); err == nil {
		t.Fatalf("expected backward transition to fail")
	} else if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTerminalStatesAreClosed(t *testing.T) {
	for _, terminal := range []Status{StatusCompleted, StatusCancelled} {
		for _, to := range []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled} {
			if to == terminal {
				continue
			}
			if CanTransition(terminal, to) {
				t.Fatalf("expected %s -> %s not allowed", terminal, to)
			}
		}
	}
}
