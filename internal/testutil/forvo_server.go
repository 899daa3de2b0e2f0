package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Item builds one search result object as Forvo returns it
func Item(original, username, addtime, pathmp3 string) map[string]any {
	return map[string]any{
		"id":                 1,
		"word":               strings.ToLower(original),
		"original":           original,
		"num_pronunciations": 1,
		"standard_pronunciation": map[string]any{
			"username": username,
			"addtime":  addtime,
			"pathmp3":  pathmp3,
			"sex":      "m",
			"country":  "Spain",
		},
	}
}

// ForvoServer is a fake Forvo API. Searches are answered with SearchBody,
// any path registered with AddAudio serves the given bytes.
type ForvoServer struct {
	*httptest.Server

	mu          sync.Mutex
	searchBody  []byte
	contentType string
	audio       map[string][]byte
	requests    []string
}

// NewForvoServer starts a fake Forvo API that is closed with the test
func NewForvoServer(t *testing.T) *ForvoServer {
	t.Helper()

	s := &ForvoServer{
		searchBody:  []byte(`{"attributes":{"total":0},"items":[]}`),
		contentType: "application/json; charset=utf-8",
		audio:       make(map[string][]byte),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)

	return s
}

// SetItems makes searches return the given items
func (s *ForvoServer) SetItems(t *testing.T, items ...map[string]any) {
	t.Helper()

	if items == nil {
		items = []map[string]any{}
	}
	body, err := json.Marshal(map[string]any{
		"attributes": map[string]any{"total": len(items)},
		"items":      items,
	})
	if err != nil {
		t.Fatalf("Failed to encode items: %v", err)
	}
	s.SetSearchBody(body, "application/json; charset=utf-8")
}

// SetSearchBody makes searches return body verbatim with contentType
func (s *ForvoServer) SetSearchBody(body []byte, contentType string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.searchBody = body
	s.contentType = contentType
}

// AddAudio serves data at path and returns its absolute URL
func (s *ForvoServer) AddAudio(path string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audio[path] = data
	return s.URL + path
}

// Requests returns the request URIs seen so far
func (s *ForvoServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.requests...)
}

func (s *ForvoServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, r.URL.RequestURI())

	if data, ok := s.audio[r.URL.Path]; ok {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(data)
		return
	}

	if strings.HasPrefix(r.URL.Path, "/key/") {
		w.Header().Set("Content-Type", s.contentType)
		_, _ = w.Write(s.searchBody)
		return
	}

	http.NotFound(w, r)
}
