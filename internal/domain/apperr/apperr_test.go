package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(New(KindConflict, "dup")); got != KindConflict {
		t.Errorf("KindOf = %v, want KindConflict", got)
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("KindOf(plain) = %v, want KindUnknown", got)
	}
	if got := KindOf(nil); got != KindUnknown {
		t.Errorf("KindOf(nil) = %v, want KindUnknown", got)
	}
}

func TestKindOfWalksWrapChain(t *testing.T) {
	inner := New(KindAuth, "stale token")
	outer := fmt.Errorf("refresh: %w", inner)
	if got := KindOf(outer); got != KindAuth {
		t.Errorf("KindOf(wrapped) = %v, want KindAuth", got)
	}
}

func TestMessageHidesUntaggedDetail(t *testing.T) {
	if got := Message(New(KindValidation, "field missing")); got != "field missing" {
		t.Errorf("Message = %q", got)
	}
	// Untagged errors must not leak internals to callers.
	if got := Message(errors.New("dial tcp 10.0.0.5:5432 refused")); got != "something went wrong" {
		t.Errorf("Message(untagged) = %q", got)
	}
}

func TestWrapKeepsCauseOutOfMessage(t *testing.T) {
	cause := errors.New("pq: connection reset")
	err := Wrap(KindPersistence, "user insert failed", cause)

	if Message(err) != "user insert failed" {
		t.Errorf("Message = %q, want caller-facing message only", Message(err))
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	if err.Error() != "user insert failed: pq: connection reset" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindValidation:  "validation",
		KindConflict:    "conflict",
		KindAuth:        "auth",
		KindNotFound:    "not_found",
		KindUpload:      "upload",
		KindPersistence: "persistence",
		KindUnknown:     "unknown",
	}
	for k, want := range cases {
		if k.String() != want {
			t.Errorf("%d.String() = %q, want %q", k, k.String(), want)
		}
	}
}
