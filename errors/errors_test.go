package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
)

// TestNewDefaultsCategoryFromCode verifies codes pick up their default category.
func TestNewDefaultsCategoryFromCode(t *testing.T) {
	err := New(ErrCodeStopFailed, "boom")
	if err.Category() != CategoryTransient {
		t.Fatalf("expected transient, got %s", err.Category())
	}
	if !err.Retryable() {
		t.Fatal("expected stop failure to be retryable")
	}

	inv := Invariantf("offer target %q does not exist", "childA")
	if inv.Category() != CategoryInternal {
		t.Fatalf("expected internal, got %s", inv.Category())
	}
	if inv.Retryable() {
		t.Fatal("invariant violations must not be retryable")
	}
}

func TestErrorMessageIncludesMonikerAndCause(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := StopFailed("logger:0", cause)

	msg := err.Error()
	want := "node stop failed (node logger:0): connection reset"
	if msg != want {
		t.Fatalf("expected %q, got %q", want, msg)
	}
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause to remain in the chain")
	}
}

func TestWrapPreservesCodeAndAttribution(t *testing.T) {
	inner := StopFailed("db:0", stderrors.New("timeout"))
	wrapped := Wrap(inner, "shutting down realm")

	if wrapped.Code() != ErrCodeStopFailed {
		t.Fatalf("expected STOP_FAILED, got %s", wrapped.Code())
	}
	if wrapped.Moniker() != "db:0" {
		t.Fatalf("expected moniker to survive wrapping, got %q", wrapped.Moniker())
	}
	if !IsRetryable(wrapped) {
		t.Fatal("expected wrapped stop failure to stay retryable")
	}
}

func TestWrapMapsContextErrors(t *testing.T) {
	err := Wrap(context.DeadlineExceeded, "stopping node")
	if err.Code() != ErrCodeTimeout {
		t.Fatalf("expected TIMEOUT, got %s", err.Code())
	}

	err = Wrap(context.Canceled, "stopping node")
	if err.Code() != ErrCodeCanceled {
		t.Fatalf("expected CANCELED, got %s", err.Code())
	}
}

func TestWrapNilReturnsNil(t *testing.T) {
	if Wrap(nil, "nope") != nil {
		t.Fatal("expected nil")
	}
}

func TestIsInvariant(t *testing.T) {
	if !IsInvariant(Invariantf("bad")) {
		t.Fatal("expected invariant")
	}
	if !IsInvariant(Cyclef("cycle among %d nodes", 3)) {
		t.Fatal("expected cycle to count as invariant")
	}
	if IsInvariant(StopFailed("a:0", stderrors.New("x"))) {
		t.Fatal("stop failure is not an invariant violation")
	}
	if IsInvariant(stderrors.New("plain")) {
		t.Fatal("plain errors are not invariant violations")
	}
	// Wrapping must not lose the classification.
	if !IsInvariant(fmt.Errorf("outer: %w", Invariantf("inner"))) {
		t.Fatal("expected invariant through wrapping")
	}
}

func TestWithRetryableOverride(t *testing.T) {
	err := New(ErrCodeStopFailed, "gone for good", WithRetryable(false))
	if err.Retryable() {
		t.Fatal("expected override to win")
	}
}

func TestAsRealmError(t *testing.T) {
	if _, ok := AsRealmError(stderrors.New("plain")); ok {
		t.Fatal("plain error should not convert")
	}
	re, ok := AsRealmError(fmt.Errorf("outer: %w", NotFound("missing child")))
	if !ok {
		t.Fatal("expected conversion through wrapping")
	}
	if re.Code() != ErrCodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %s", re.Code())
	}
}
