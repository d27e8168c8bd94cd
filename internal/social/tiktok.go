package social

import (
	"context"
	"errors"
)

// DefaultTikTokBaseURL is the TikTok open API root.
const DefaultTikTokBaseURL = "https://open.tiktokapis.com/v2"

// TikTokClient publishes photo posts through the content posting API.
type TikTokClient struct {
	BaseURL     string
	AccessToken string
}

// Publish initiates a photo post pulled from the media URL.
func (c *TikTokClient) Publish(ctx context.Context, post Post) (string, error) {
	if c.AccessToken == "" {
		return "", errors.New("tiktok publishing is not configured")
	}
	if post.MediaURL == "" {
		return "", errors.New("tiktok posts require media")
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultTikTokBaseURL
	}

	body := map[string]any{
		"post_info": map[string]any{
			"title":         post.Caption,
			"privacy_level": "PUBLIC_TO_EVERYONE",
		},
		"source_info": map[string]any{
			"source":            "PULL_FROM_URL",
			"photo_cover_index": 0,
			"photo_images":      []string{post.MediaURL},
		},
		"post_mode":  "DIRECT_POST",
		"media_type": "PHOTO",
	}

	var resp struct {
		Data struct {
			PublishID string `json:"publish_id"`
		} `json:"data"`
	}
	if err := postJSON(ctx, "tiktok", base+"/post/publish/content/init/", c.AccessToken, body, &resp); err != nil {
		return "", err
	}
	return resp.Data.PublishID, nil
}
