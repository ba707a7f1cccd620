package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// geminiServer answers generateContent calls with a fixed status and body and
// records the decoded request bodies.
type geminiServer struct {
	*httptest.Server

	mu       sync.Mutex
	paths    []string
	requests []map[string]any
}

func newGeminiServer(t *testing.T, status int, body string) *geminiServer {
	t.Helper()

	s := &geminiServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		_ = json.Unmarshal(raw, &decoded)

		s.mu.Lock()
		s.paths = append(s.paths, r.URL.Path)
		s.requests = append(s.requests, decoded)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(s.Close)
	return s
}

// recorded returns the paths and bodies received so far.
func (s *geminiServer) recorded() ([]string, []map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...), append([]map[string]any(nil), s.requests...)
}

func newTestGemini(t *testing.T, srv *geminiServer) CompletionGateway {
	t.Helper()

	gw, err := NewGeminiGateway(context.Background(), GeminiOptions{
		APIKey:  "test-key",
		Model:   "gemini-test",
		BaseURL: srv.URL + "/",
	}, quietLogger())
	require.NoError(t, err)
	return gw
}

func candidateBody(text, usage string) string {
	b, _ := json.Marshal(text)
	body := `{"candidates": [{"content": {"role": "model", "parts": [{"text": ` + string(b) + `}]}}]`
	if usage != "" {
		body += `, "usageMetadata": ` + usage
	}
	return body + "}"
}

// findValue returns the first value stored under key anywhere in v.
func findValue(v any, key string) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		if found, ok := t[key]; ok {
			return found, true
		}
		for _, child := range t {
			if found, ok := findValue(child, key); ok {
				return found, true
			}
		}
	case []any:
		for _, child := range t {
			if found, ok := findValue(child, key); ok {
				return found, true
			}
		}
	}
	return nil, false
}

func TestGeminiGateway_RequestMapping(t *testing.T) {
	srv := newGeminiServer(t, http.StatusOK, candidateBody(`{"name": "Jane"}`, `{"totalTokenCount": 42}`))
	gw := newTestGemini(t, srv)

	completion, err := gw.Complete(context.Background(), CompletionRequest{
		Messages: []Message{
			{Role: RoleSystem, Content: "You are a strict resume parser."},
			{Role: RoleUser, Content: "Parse this resume"},
		},
		Temperature: 0.2,
		JSONMode:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"name": "Jane"}`, completion.Text)
	require.NotNil(t, completion.TokensUsed)
	assert.Equal(t, 42, *completion.TokensUsed)

	paths, requests := srv.recorded()
	require.Len(t, requests, 1)
	assert.Contains(t, paths[0], "gemini-test:generateContent")
	req := requests[0]

	system, ok := req["systemInstruction"]
	require.True(t, ok, "system messages must go to systemInstruction")
	text, _ := findValue(system, "text")
	assert.Equal(t, "You are a strict resume parser.", text)

	contents, _ := json.Marshal(req["contents"])
	assert.Contains(t, string(contents), "Parse this resume")
	assert.NotContains(t, string(contents), "strict resume parser")

	mimeType, ok := findValue(req, "responseMimeType")
	require.True(t, ok)
	assert.Equal(t, "application/json", mimeType)

	temperature, ok := findValue(req, "temperature")
	require.True(t, ok)
	assert.InDelta(t, 0.2, temperature, 1e-6)
}

func TestGeminiGateway_PlainModeOmitsMIMEType(t *testing.T) {
	srv := newGeminiServer(t, http.StatusOK, candidateBody("hello", ""))
	gw := newTestGemini(t, srv)

	_, err := gw.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	_, requests := srv.recorded()
	require.Len(t, requests, 1)
	_, ok := findValue(requests[0], "responseMimeType")
	assert.False(t, ok)
	_, ok = requests[0]["systemInstruction"]
	assert.False(t, ok)
}

func TestGeminiGateway_Usage(t *testing.T) {
	tests := []struct {
		name  string
		usage string
		want  *int
	}{
		{name: "reported", usage: `{"promptTokenCount": 10, "candidatesTokenCount": 5, "totalTokenCount": 15}`, want: intPtr(15)},
		{name: "absent", usage: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newGeminiServer(t, http.StatusOK, candidateBody("{}", tt.usage))
			gw := newTestGemini(t, srv)

			completion, err := gw.Complete(context.Background(), CompletionRequest{
				Messages: []Message{{Role: RoleUser, Content: "hi"}},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, completion.TokensUsed)
		})
	}
}

func TestGeminiGateway_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "blank text", status: http.StatusOK, body: candidateBody("  \n ", "")},
		{name: "no candidates", status: http.StatusOK, body: `{"candidates": []}`},
		{
			name:   "api error",
			status: http.StatusBadRequest,
			body:   `{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"error": {"code": 500, "message": "internal", "status": "INTERNAL"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newGeminiServer(t, tt.status, tt.body)
			gw := newTestGemini(t, srv)

			completion, err := gw.Complete(context.Background(), CompletionRequest{
				Messages: []Message{{Role: RoleUser, Content: "hi"}},
			})
			require.Error(t, err)
			assert.Nil(t, completion)
			assert.Equal(t, KindGatewayFailure, KindOf(err))
		})
	}
}

func TestGeminiGateway_RequiresUserMessage(t *testing.T) {
	srv := newGeminiServer(t, http.StatusOK, candidateBody("{}", ""))
	gw := newTestGemini(t, srv)

	_, err := gw.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleSystem, Content: "only system"}},
	})
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
	_, requests := srv.recorded()
	assert.Empty(t, requests)
}

func TestNewGeminiGateway_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiGateway(context.Background(), GeminiOptions{}, quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func intPtr(n int) *int { return &n }
