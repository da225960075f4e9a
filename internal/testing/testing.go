// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/rmp/internal/models"
)

// MediaID derives a valid 11 character video id from a fixture id.
func MediaID(id string) string {
	return ("vid_" + id + "0000000000")[:11]
}

// Track builds a playable YouTube track fixture with a deterministic media id.
func Track(id, title string, score int) models.Track {
	return models.Track{
		ID:        id,
		Title:     title,
		Author:    "user_" + id,
		Subreddit: "listentothis",
		Score:     score,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		MediaID:   MediaID(id),
		Source:    models.SourceYouTube,
		URL:       "https://www.youtube.com/watch?v=" + MediaID(id),
		Permalink: fmt.Sprintf("/r/listentothis/comments/%s/post/", id),
		Domain:    "youtube.com",
	}
}

// Comment builds a comment fixture with optional replies.
func Comment(id, author, body string, replies ...models.Comment) models.Comment {
	return models.Comment{
		ID:        id,
		Author:    author,
		Body:      body,
		Score:     1,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Replies:   replies,
	}
}

// RecordedRequest captures the parts of a request tests assert on.
type RecordedRequest struct {
	Path      string
	Query     map[string][]string
	UserAgent string
}

// JSONServer serves canned JSON bodies keyed by request path and records every request.
//
// Paths without a registered body return 404.
type JSONServer struct {
	*httptest.Server

	mu       sync.Mutex
	bodies   map[string]any
	statuses map[string]int
	requests []RecordedRequest
}

// NewJSONServer starts a server that is closed when the test finishes.
func NewJSONServer(t *testing.T) *JSONServer {
	t.Helper()
	s := &JSONServer{bodies: map[string]any{}, statuses: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle registers body (marshaled to JSON unless it is a string) for path.
func (s *JSONServer) Handle(path string, body any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[path] = body
}

// Fail makes path answer with status and an empty body.
func (s *JSONServer) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[path] = status
}

// Requests returns a copy of the recorded requests.
func (s *JSONServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

func (s *JSONServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{Path: r.URL.Path, Query: r.URL.Query(), UserAgent: r.UserAgent()})
	status, failing := s.statuses[r.URL.Path]
	body, ok := s.bodies[r.URL.Path]
	s.mu.Unlock()

	if failing {
		w.WriteHeader(status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if raw, isString := body.(string); isString {
		io.WriteString(w, raw)
		return
	}
	json.NewEncoder(w).Encode(body)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
