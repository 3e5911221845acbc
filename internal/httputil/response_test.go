package httputil

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/formsense-data/form.report/internal/testutil"
)

func decodeBody(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return m
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	rec := testutil.NewTestRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"session_id": "abc-123"})

	testutil.AssertStatusCode(t, rec.Code, http.StatusCreated)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content-type = %s, want application/json", ct)
	}
	if got := decodeBody(t, rec.Body.Bytes())["session_id"]; got != "abc-123" {
		t.Errorf("session_id = %v, want abc-123", got)
	}
}

func TestWriteJSONOK(t *testing.T) {
	t.Parallel()

	rec := testutil.NewTestRecorder()
	WriteJSONOK(rec, map[string]int{"total_reps": 12})

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	if got := decodeBody(t, rec.Body.Bytes())["total_reps"]; got != float64(12) {
		t.Errorf("total_reps = %v, want 12", got)
	}
}

func TestWriteJSONError(t *testing.T) {
	t.Parallel()

	rec := testutil.NewTestRecorder()
	WriteJSONError(rec, http.StatusBadRequest, "missing 'id' parameter")

	testutil.AssertStatusCode(t, rec.Code, http.StatusBadRequest)
	if got := decodeBody(t, rec.Body.Bytes())["error"]; got != "missing 'id' parameter" {
		t.Errorf("error = %v, want missing 'id' parameter", got)
	}
}

func TestErrorShorthands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		write func(w http.ResponseWriter)
		code  int
	}{
		{"method not allowed", func(w http.ResponseWriter) { MethodNotAllowed(w) }, http.StatusMethodNotAllowed},
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "bad exercise name") }, http.StatusBadRequest},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "session not found") }, http.StatusNotFound},
		{"internal error", func(w http.ResponseWriter) { InternalServerError(w, "query failed") }, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewTestRecorder()
			tt.write(rec)
			testutil.AssertStatusCode(t, rec.Code, tt.code)
			if _, ok := decodeBody(t, rec.Body.Bytes())["error"]; !ok {
				t.Error("response body has no error field")
			}
		})
	}
}
