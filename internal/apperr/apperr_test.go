package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeOf(t *testing.T) {
	err := New(CodeNotFound, "gone")
	if CodeOf(err) != CodeNotFound {
		t.Fatalf("expected not_found, got %s", CodeOf(err))
	}

	wrapped := fmt.Errorf("handler: %w", err)
	if CodeOf(wrapped) != CodeNotFound {
		t.Fatal("code must survive fmt.Errorf wrapping")
	}

	if CodeOf(errors.New("plain")) != CodeInternal {
		t.Fatal("uncoded errors default to internal")
	}
}

func TestMessageOfHidesInternals(t *testing.T) {
	if MessageOf(errors.New("redis: connection refused")) != "internal error" {
		t.Fatal("uncoded errors must not leak their text")
	}
	if MessageOf(New(CodeInvalidArgument, "bad password")) != "bad password" {
		t.Fatal("coded errors expose their message")
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("dial timeout")
	err := Wrap(CodeInternal, "store failure", cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause must be reachable via errors.Is")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeUnauthenticated:    http.StatusUnauthorized,
		CodeInvalidArgument:    http.StatusBadRequest,
		CodeNotFound:           http.StatusNotFound,
		CodePermissionDenied:   http.StatusForbidden,
		CodeFailedPrecondition: http.StatusPreconditionFailed,
		CodeResourceExhausted:  http.StatusTooManyRequests,
		CodeAlreadyExists:      http.StatusConflict,
		CodeDeadlineExceeded:   http.StatusGone,
		CodeInternal:           http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := HTTPStatus(code); got != want {
			t.Fatalf("status for %s = %d, want %d", code, got, want)
		}
	}
}
