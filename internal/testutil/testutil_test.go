package testutil

import (
	"errors"
	"net/http"
	"testing"
)

// The Assert helpers call t.Errorf/t.Fatalf directly, so only their
// passing paths are exercised here; the failing paths are covered by
// the handler tests that use them.
func TestAssertHelpersPassingPaths(t *testing.T) {
	t.Parallel()

	AssertStatusCode(t, http.StatusOK, http.StatusOK)
	AssertStatusCode(t, http.StatusNotFound, http.StatusNotFound)
	AssertNoError(t, nil)
	AssertError(t, errors.New("boom"))
}

func TestNewTestRequest(t *testing.T) {
	t.Parallel()

	req := NewTestRequest(http.MethodGet, "/api/sessions")
	if req.Method != http.MethodGet {
		t.Errorf("method = %s, want GET", req.Method)
	}
	if req.URL.Path != "/api/sessions" {
		t.Errorf("path = %s, want /api/sessions", req.URL.Path)
	}
}

func TestNewTestRecorder(t *testing.T) {
	t.Parallel()

	rec := NewTestRecorder()
	rec.WriteHeader(http.StatusNoContent)
	if rec.Code != http.StatusNoContent {
		t.Errorf("code = %d, want %d", rec.Code, http.StatusNoContent)
	}
}
