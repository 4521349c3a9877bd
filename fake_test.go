package earthengine_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/twpayne/go-earthengine"
)

type capturedRequest struct {
	method        string
	path          string
	contentType   string
	authorization string
	body          map[string]any
}

// A fakeEarthEngine is a value:compute endpoint that returns a canned
// response.
type fakeEarthEngine struct {
	*httptest.Server
	mutex    sync.Mutex
	requests []capturedRequest
}

func newFakeEarthEngine(t *testing.T, statusCode int, responseBody string) *fakeEarthEngine {
	t.Helper()
	f := &fakeEarthEngine{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read request body: %v", err)
		}
		var body map[string]any
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("unmarshal request body: %v", err)
		}
		f.mutex.Lock()
		f.requests = append(f.requests, capturedRequest{
			method:        r.Method,
			path:          r.URL.Path,
			contentType:   r.Header.Get("Content-Type"),
			authorization: r.Header.Get("Authorization"),
			body:          body,
		})
		f.mutex.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = io.WriteString(w, responseBody)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeEarthEngine) Requests() []capturedRequest {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]capturedRequest(nil), f.requests...)
}

func newTestClient(t *testing.T, baseURL string) *earthengine.Client {
	t.Helper()
	client, err := earthengine.NewClient(
		earthengine.WithBaseURL(baseURL),
		earthengine.WithHTTPClient(http.DefaultClient),
		earthengine.WithProject("test-project"),
	)
	assert.NoError(t, err)
	assert.NoError(t, client.Initialize(t.Context()))
	return client
}

func ptr(f float64) *float64 {
	return &f
}
