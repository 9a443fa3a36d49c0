package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"billNo": 7})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if got := rec.Body.String(); got != `{"billNo":7}` {
		t.Errorf("body = %s", got)
	}
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusNotFound, "held bill not found")

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusNotFound || body.Error != "held bill not found" || body.Details != nil {
		t.Errorf("got %d %+v", rec.Code, body)
	}
}

func TestDecodeKeepsNumbers(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"id":1001}`))
	var v map[string]any
	if err := Decode(req, &v); err != nil {
		t.Fatal(err)
	}
	if n, ok := v["id"].(json.Number); !ok || n.String() != "1001" {
		t.Errorf("id = %#v", v["id"])
	}
}
