// Package docs serves the OpenAPI discovery documents agents use to find the booking API.
package docs

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

//go:embed openapi.json medical-openapi.json
var assets embed.FS

const (
	General = "openapi.json"
	Medical = "medical-openapi.json"
)

type Documents struct {
	docs map[string][]byte
}

// Load reads the embedded documents and points their first server entry at baseURL.
func Load(baseURL string) (*Documents, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	d := &Documents{docs: make(map[string][]byte)}
	for _, name := range []string{General, Medical} {
		raw, err := assets.ReadFile(name)
		if err != nil {
			return nil, err
		}
		out, err := withServerURL(raw, baseURL)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		d.docs[name] = out
	}
	return d, nil
}

func withServerURL(raw []byte, baseURL string) ([]byte, error) {
	if baseURL == "" {
		return raw, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	servers, _ := doc["servers"].([]any)
	if len(servers) == 0 {
		servers = []any{map[string]any{"description": "Production server"}}
	}
	first, ok := servers[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("servers[0] is not an object")
	}
	first["url"] = baseURL
	servers[0] = first
	doc["servers"] = servers
	return json.MarshalIndent(doc, "", "  ")
}

func (d *Documents) Get(name string) ([]byte, bool) {
	b, ok := d.docs[name]
	return b, ok
}

func (d *Documents) Handler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		body, ok := d.Get(name)
		if !ok {
			http.Error(w, "openapi not available", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}
