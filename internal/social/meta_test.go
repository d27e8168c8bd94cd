package social

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFacebookPublish_TextPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/page-1/feed", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "token-1", r.Form.Get("access_token"))
		assert.Equal(t, "new arrivals", r.Form.Get("message"))
		json.NewEncoder(w).Encode(map[string]string{"id": "page-1_777"})
	}))
	defer srv.Close()

	c := &FacebookClient{BaseURL: srv.URL, PageID: "page-1", AccessToken: "token-1"}
	id, err := c.Publish(context.Background(), Post{Caption: "new arrivals"})
	require.NoError(t, err)
	assert.Equal(t, "page-1_777", id)
}

func TestFacebookPublish_PhotoPost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/page-1/photos", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "https://cdn.example.com/fabric.jpg", r.Form.Get("url"))
		assert.Equal(t, "new arrivals", r.Form.Get("caption"))
		json.NewEncoder(w).Encode(map[string]string{"id": "999", "post_id": "page-1_999"})
	}))
	defer srv.Close()

	c := &FacebookClient{BaseURL: srv.URL, PageID: "page-1", AccessToken: "token-1"}
	id, err := c.Publish(context.Background(), Post{
		Caption:  "new arrivals",
		MediaURL: "https://cdn.example.com/fabric.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "page-1_999", id)
}

func TestFacebookPublish_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"invalid token"}}`))
	}))
	defer srv.Close()

	c := &FacebookClient{BaseURL: srv.URL, PageID: "page-1", AccessToken: "token-1"}
	_, err := c.Publish(context.Background(), Post{Caption: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestInstagramPublish_TwoStepFlow(t *testing.T) {
	var step int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		step++
		require.NoError(t, r.ParseForm())
		switch step {
		case 1:
			require.Equal(t, "/user-1/media", r.URL.Path)
			assert.Equal(t, "https://cdn.example.com/fabric.jpg", r.Form.Get("image_url"))
			json.NewEncoder(w).Encode(map[string]string{"id": "container-1"})
		case 2:
			require.Equal(t, "/user-1/media_publish", r.URL.Path)
			assert.Equal(t, "container-1", r.Form.Get("creation_id"))
			json.NewEncoder(w).Encode(map[string]string{"id": "media-42"})
		}
	}))
	defer srv.Close()

	c := &InstagramClient{BaseURL: srv.URL, UserID: "user-1", AccessToken: "token-1"}
	id, err := c.Publish(context.Background(), Post{
		Caption:  "new arrivals",
		MediaURL: "https://cdn.example.com/fabric.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "media-42", id)
	assert.Equal(t, 2, step)
}

func TestInstagramPublish_RequiresMedia(t *testing.T) {
	c := &InstagramClient{UserID: "user-1", AccessToken: "token-1"}
	_, err := c.Publish(context.Background(), Post{Caption: "no media"})
	require.Error(t, err)
}

func TestTikTokPublish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/post/publish/content/init/", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		source := body["source_info"].(map[string]any)
		assert.Equal(t, "PULL_FROM_URL", source["source"])

		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"publish_id": "pub-7"},
		})
	}))
	defer srv.Close()

	c := &TikTokClient{BaseURL: srv.URL, AccessToken: "token-1"}
	id, err := c.Publish(context.Background(), Post{
		Caption:  "new arrivals",
		MediaURL: "https://cdn.example.com/fabric.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "pub-7", id)
}
