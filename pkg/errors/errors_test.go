package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestErrorIncludesInternal(t *testing.T) {
	internal := stdErrors.New("boom")
	err := Wrap(internal, "failed")

	if err.Error() != "failed: boom" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestWithInternalCopies(t *testing.T) {
	base := New("TEST", "test", http.StatusBadRequest)
	with := base.WithInternal(stdErrors.New("oops"))

	if with == base {
		t.Fatal("expected WithInternal to return a copy")
	}
	if base.Internal != nil {
		t.Fatal("expected original error to remain unchanged")
	}
	if with.Internal == nil {
		t.Fatal("expected internal error to be set")
	}
}

func TestFromError(t *testing.T) {
	if out := FromError(ErrNotFound); out != ErrNotFound {
		t.Fatal("expected FromError to return the same AppError instance")
	}

	raw := stdErrors.New("raw")
	out := FromError(raw)
	if out.Code != ErrInternalServer.Code {
		t.Fatalf("expected internal server code, got %s", out.Code)
	}
	if out.Internal == nil {
		t.Fatal("expected internal error to be attached")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := NewAlreadyExists("role r1 already exists")
	if !Is(err, ErrAlreadyExists) {
		t.Fatal("expected code-based match for ALREADY_EXISTS")
	}
	if Is(err, ErrNotFound) {
		t.Fatal("did not expect match against NOT_FOUND")
	}
	if Is(stdErrors.New("plain"), ErrNotFound) {
		t.Fatal("plain errors must not match")
	}
}

func TestTaxonomyStatusCodes(t *testing.T) {
	cases := map[*AppError]int{
		ErrInvalidAccessToken: http.StatusUnauthorized,
		ErrUnauthorizedAccess: http.StatusForbidden,
		ErrInvalidUserID:      http.StatusUnauthorized,
		ErrInvalidPassword:    http.StatusUnauthorized,
		ErrAlreadyLoggedIn:    http.StatusConflict,
		ErrAlreadyExists:      http.StatusConflict,
		ErrStillReferenced:    http.StatusConflict,
		ErrNotFound:           http.StatusNotFound,
	}
	for err, want := range cases {
		if err.StatusCode != want {
			t.Fatalf("%s: status = %d, want %d", err.Code, err.StatusCode, want)
		}
	}
}
