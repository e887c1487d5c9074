package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfWrappedChain(t *testing.T) {
	base := New(KindNotFound, "delete", "context %q does not exist", "c1")
	wrapped := fmt.Errorf("boundary: %w", base)

	if got := KindOf(wrapped); got != KindNotFound {
		t.Fatalf("KindOf = %v, want NotFound", got)
	}
	if !Is(wrapped, KindNotFound) {
		t.Fatalf("Is(wrapped, NotFound) = false")
	}
	if Is(nil, KindNotFound) {
		t.Fatalf("nil error must not carry a kind")
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Fatalf("KindOf plain error = %v, want Internal", got)
	}
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindProvider, "groq", cause)
	if err.Error() != "groq: connection refused" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Errorf("wrapped cause must be reachable")
	}
	if Wrap(KindProvider, "groq", nil) != nil {
		t.Errorf("Wrap(nil) must be nil")
	}
	if KindMalformedGameResponse.String() != "MalformedGameResponse" {
		t.Errorf("unexpected kind name %q", KindMalformedGameResponse.String())
	}
}
