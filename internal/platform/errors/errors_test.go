package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestGetTypeThroughWrapping(t *testing.T) {
	base := Conflictf("role %s already assigned", "Doctor")
	wrapped := fmt.Errorf("add crew: %w", base)

	if GetType(wrapped) != ErrorTypeConflict {
		t.Errorf("Expected conflict, got %s", GetType(wrapped))
	}
	if HTTPStatus(wrapped) != http.StatusConflict {
		t.Errorf("Expected 409, got %d", HTTPStatus(wrapped))
	}
}

func TestPlainErrorIsInternal(t *testing.T) {
	err := fmt.Errorf("boom")

	if GetType(err) != ErrorTypeInternal {
		t.Errorf("unknown errors should map to internal")
	}
	if HTTPStatus(err) != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", HTTPStatus(err))
	}
	if Is(nil, ErrorTypeInternal) {
		t.Errorf("nil is not an error of any type")
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := WrapExternal("remote leaderboard unavailable", fmt.Errorf("dial tcp: refused"))

	want := "remote leaderboard unavailable: dial tcp: refused"
	if err.Error() != want {
		t.Errorf("Expected %q got %q", want, err.Error())
	}
}
