package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messagesHandler(t *testing.T, text string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, messagesPath, r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-3-5-sonnet-20241022", req.Model)
		require.Len(t, req.Messages, 1)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{{"type": "text", "text": text}},
		})
	}
}

func TestAnalyzeModeration(t *testing.T) {
	srv := httptest.NewServer(messagesHandler(t,
		`{"recommended_action": "flag", "crisis_level": "medium", "confidence": 0.9, "toxic": true}`))
	defer srv.Close()

	client := NewClient(srv.URL, "sk-test", "claude-3-5-sonnet-20241022")
	defer client.Close()

	result, err := client.Analyze(context.Background(), ModeModeration, "borderline content")
	require.NoError(t, err)

	moderation, ok := result.Moderation()
	require.True(t, ok)
	assert.Equal(t, "flag", moderation.RecommendedAction)
	assert.Equal(t, "medium", moderation.CrisisLevel)
	assert.InDelta(t, 0.9, moderation.Confidence, 1e-9)
	assert.True(t, moderation.Toxic)

	_, ok = result.Enhancement()
	assert.False(t, ok)
}

func TestAnalyzeEnhancementWithProseWrapper(t *testing.T) {
	srv := httptest.NewServer(messagesHandler(t,
		"Here is the analysis:\n{\"mood\": \"hopeful\", \"tags\": [\"growth\"], \"viral_score\": 0.4}\nLet me know if you need more."))
	defer srv.Close()

	client := NewClient(srv.URL, "sk-test", "claude-3-5-sonnet-20241022")
	defer client.Close()

	result, err := client.Analyze(context.Background(), ModeEnhancement, "I started therapy")
	require.NoError(t, err)

	enhancement, ok := result.Enhancement()
	require.True(t, ok)
	assert.Equal(t, "hopeful", enhancement.Mood)
	assert.Equal(t, []string{"growth"}, enhancement.Tags)
}

func TestAnalyzeUnparseableOutput(t *testing.T) {
	srv := httptest.NewServer(messagesHandler(t, "I refuse to answer in JSON."))
	defer srv.Close()

	client := NewClient(srv.URL, "sk-test", "claude-3-5-sonnet-20241022")
	defer client.Close()

	result, err := client.Analyze(context.Background(), ModeModeration, "anything")
	require.NoError(t, err)

	_, ok := result.Moderation()
	assert.False(t, ok)
	assert.Equal(t, "I refuse to answer in JSON.", result.Raw())
}

func TestAnalyzeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sk-test", "claude-3-5-sonnet-20241022")
	defer client.Close()

	_, err := client.Analyze(context.Background(), ModeModeration, "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestParseTextModeMismatch(t *testing.T) {
	result := ParseText(ModeEnhancement, `{"recommended_action": "approve"}`)

	// Valid JSON but asked for enhancement: zero-value struct parses, so
	// the accessor still reports ok with empty fields.
	enhancement, ok := result.Enhancement()
	require.True(t, ok)
	assert.Empty(t, enhancement.Mood)

	_, ok = result.Moderation()
	assert.False(t, ok)
}
