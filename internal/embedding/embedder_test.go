package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIEmbedder(t *testing.T) {
	var gotAuth, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var req embeddingsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel = req.Model

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2, 0.3}},
			},
		})
	}))
	defer srv.Close()

	embedder := NewOpenAIEmbedder(srv.URL, "test-key", "text-embedding-3-small")

	vec, err := embedder.Embed(context.Background(), "experienced head chef")
	require.NoError(t, err)

	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "text-embedding-3-small", gotModel)
}

func TestOpenAIEmbedderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	embedder := NewOpenAIEmbedder(srv.URL, "test-key", "")

	_, err := embedder.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestNewOpenAIEmbedderWithoutKeyFallsBack(t *testing.T) {
	embedder := NewOpenAIEmbedder("", "", "")
	_, ok := embedder.(*HashEmbedder)
	assert.True(t, ok)
}

func TestHashEmbedder(t *testing.T) {
	embedder := &HashEmbedder{}

	a, err := embedder.Embed(context.Background(), "head chef with pastry experience")
	require.NoError(t, err)
	require.Len(t, a, FallbackDimensions)

	// deterministic
	b, err := embedder.Embed(context.Background(), "head chef with pastry experience")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// distinct inputs produce distinct vectors
	c, err := embedder.Embed(context.Background(), "completely different text")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	empty, err := embedder.Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, FallbackDimensions), empty)
}
