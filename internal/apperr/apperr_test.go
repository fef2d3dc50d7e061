package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	err := New(Conflict, "already placed a bid")
	if KindOf(err) != Conflict {
		t.Fatalf("expected Conflict, got %v", KindOf(err))
	}
	wrapped := fmt.Errorf("outer: %w", err)
	if KindOf(wrapped) != Conflict {
		t.Fatalf("KindOf should see through wrapping, got %v", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Fatalf("plain errors must have no kind")
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{Validation, http.StatusBadRequest},
		{InvalidState, http.StatusBadRequest},
		{NotFound, http.StatusNotFound},
		{Forbidden, http.StatusForbidden},
		{Conflict, http.StatusConflict},
		{External, http.StatusBadGateway},
	}
	for _, tc := range cases {
		if got := Status(New(tc.kind, "x")); got != tc.want {
			t.Errorf("kind %v: expected %d, got %d", tc.kind, tc.want, got)
		}
	}
	if Status(errors.New("boom")) != http.StatusInternalServerError {
		t.Errorf("unclassified errors must map to 500")
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("gateway timeout")
	err := Wrap(External, "failed to create payment order", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("wrapped cause lost")
	}
	if err.Error() != "failed to create payment order" {
		t.Fatalf("caller-facing message must not include the cause, got %q", err.Error())
	}
}
