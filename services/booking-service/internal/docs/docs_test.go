package docs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoadRewritesServerURL(t *testing.T) {
	d, err := Load("https://book.example.com/")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, name := range []string{General, Medical} {
		body, ok := d.Get(name)
		if !ok {
			t.Fatalf("%s missing", name)
		}
		var doc struct {
			OpenAPI string `json:"openapi"`
			Servers []struct {
				URL string `json:"url"`
			} `json:"servers"`
			Paths map[string]any `json:"paths"`
		}
		if err := json.Unmarshal(body, &doc); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if doc.OpenAPI != "3.1.0" || len(doc.Servers) == 0 || doc.Servers[0].URL != "https://book.example.com" {
			t.Fatalf("%s: unexpected header %+v", name, doc)
		}
		if len(doc.Paths) == 0 {
			t.Fatalf("%s: no paths", name)
		}
	}
}

func TestHandler(t *testing.T) {
	d, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	rw := httptest.NewRecorder()
	d.Handler(Medical).ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/ai/medical/openapi.json", nil))
	if rw.Code != http.StatusOK || rw.Header().Get("Content-Type") != "application/json; charset=utf-8" {
		t.Fatalf("unexpected response %d %q", rw.Code, rw.Header().Get("Content-Type"))
	}
	var doc map[string]any
	if err := json.Unmarshal(rw.Body.Bytes(), &doc); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if _, ok := doc["paths"].(map[string]any)["/ai/medical/reservations"]; !ok {
		t.Fatal("medical reservations path missing")
	}
}
