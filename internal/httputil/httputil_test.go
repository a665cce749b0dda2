package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestOptionalString(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantRef     *string
	}{
		{"absent", `{}`, false, nil},
		{"null", `{"parentId":null}`, true, nil},
		{"empty string", `{"parentId":""}`, true, nil},
		{"value", `{"parentId":"f1"}`, true, ptr("f1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dto struct {
				ParentID OptionalString `json:"parentId"`
			}
			assert.NilError(t, json.Unmarshal([]byte(tt.body), &dto))
			assert.Equal(t, dto.ParentID.Present, tt.wantPresent)
			assert.DeepEqual(t, dto.ParentID.Ref(), tt.wantRef)
		})
	}
}

func TestOptionalStringRejectsNonString(t *testing.T) {
	var dto struct {
		ParentID OptionalString `json:"parentId"`
	}
	err := json.Unmarshal([]byte(`{"parentId":42}`), &dto)
	assert.Assert(t, err != nil)
}

func TestParseJSON(t *testing.T) {
	var dest struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Docs","extra":true}`))
	assert.NilError(t, ParseJSON(httptest.NewRecorder(), r, &dest))
	assert.Equal(t, dest.Name, "Docs")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.ErrorContains(t, ParseJSON(httptest.NewRecorder(), r, &dest), "request body is required")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	assert.ErrorContains(t, ParseJSON(httptest.NewRecorder(), r, &dest), "invalid JSON")
}

func TestRespondErrorWithExtras(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set(RequestIDHeader, "abc")

	RespondErrorWithExtras(w, http.StatusBadRequest, "name: cannot be blank", map[string]any{"field": "name"})

	assert.Equal(t, w.Code, http.StatusBadRequest)
	assert.Equal(t, w.Header().Get("Content-Type"), "application/problem+json")

	var body map[string]any
	assert.NilError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, body["title"], "Bad Request")
	assert.Equal(t, body["detail"], "name: cannot be blank")
	assert.Equal(t, body["field"], "name")
	assert.Equal(t, body["instance"], "urn:request:abc")
	assert.Check(t, is.Contains(body["type"].(string), "rfc7231"))
}

func TestRespondJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RespondJSON(w, http.StatusCreated, map[string]int{"deleted": 3})

	assert.Equal(t, w.Code, http.StatusCreated)
	assert.Equal(t, w.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, strings.TrimSpace(w.Body.String()), `{"deleted":3}`)
}

func ptr(s string) *string { return &s }
