package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOptional_UnmarshalJSON(t *testing.T) {
	type patch struct {
		Description OptionalString `json:"description"`
		Limit       Optional[int]  `json:"limit"`
	}

	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantValue   *string
		wantLimit   *int
	}{
		{"absent", `{}`, false, nil, nil},
		{"null clears", `{"description": null}`, true, nil, nil},
		{"empty string", `{"description": ""}`, true, strPtr(""), nil},
		{"value", `{"description": "notes", "limit": 3}`, true, strPtr("notes"), intPtr(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p patch
			if err := json.Unmarshal([]byte(tt.body), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if p.Description.Present != tt.wantPresent {
				t.Errorf("present: got %v, want %v", p.Description.Present, tt.wantPresent)
			}
			if !equalPtr(p.Description.Value, tt.wantValue) {
				t.Errorf("value: got %v, want %v", p.Description.Value, tt.wantValue)
			}
			if !equalPtr(p.Limit.Value, tt.wantLimit) {
				t.Errorf("limit: got %v, want %v", p.Limit.Value, tt.wantLimit)
			}
		})
	}

	var p patch
	if err := json.Unmarshal([]byte(`{"description": 12}`), &p); err == nil {
		t.Error("expected a type error for a number in a string field")
	}
}

func TestRespondConflict(t *testing.T) {
	rr := httptest.NewRecorder()
	rr.Header().Set(RequestIDHeader, "req-7")
	RespondConflict(rr, "project was modified concurrently", "project", "p-1")

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want 409", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("content type: got %q", ct)
	}

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{
		"title":         "Conflict",
		"status":        float64(http.StatusConflict),
		"detail":        "project was modified concurrently",
		"resource_type": "project",
		"resource_id":   "p-1",
		"request_id":    "req-7",
	}
	for k, v := range want {
		if body[k] != v {
			t.Errorf("%s: got %v, want %v", k, body[k], v)
		}
	}
}

func TestNewProblem_UnknownStatus(t *testing.T) {
	p := NewProblem(http.StatusTeapot, "")
	if p.Type != "about:blank" {
		t.Errorf("type: got %q", p.Type)
	}
	out, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]any
	_ = json.Unmarshal(out, &body)
	if _, ok := body["detail"]; ok {
		t.Error("empty detail should be omitted")
	}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
