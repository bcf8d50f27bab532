package serper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shopping", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "kablosuz mouse", body["q"])
		assert.Equal(t, "tr", body["gl"])
		assert.Equal(t, "tr", body["hl"])
		assert.Equal(t, 30.0, body["num"])

		json.NewEncoder(w).Encode(map[string]any{
			"shopping_results": []map[string]any{
				{"title": "Logitech G502", "link": "https://www.trendyol.com/g502-p-1", "price": "1.499 TL"},
				{"title": "no link", "price": "999 TL"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", 5*time.Second)
	c.SetBaseURL(srv.URL)

	links, err := c.Shopping(context.Background(), "kablosuz mouse", 30)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "Logitech G502", links[0].Title)
	assert.Equal(t, "1.499 TL", links[0].PriceHint)
}

func TestWeb(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"organic": []map[string]any{
				{"title": "Razer Viper", "link": "https://www.n11.com/urun/viper-1"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", 5*time.Second)
	c.SetBaseURL(srv.URL)

	links, err := c.Web(context.Background(), "site:n11.com mouse", 10)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Empty(t, links[0].PriceHint)
}

func TestUpstreamErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("bad-key", 5*time.Second)
	c.SetBaseURL(srv.URL)

	_, err := c.Shopping(context.Background(), "mouse", 30)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
