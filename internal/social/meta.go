package social

import (
	"context"
	"errors"
	"net/url"
)

// DefaultGraphBaseURL is the Meta Graph API root.
const DefaultGraphBaseURL = "https://graph.facebook.com/v19.0"

// FacebookClient publishes page posts through the Graph API.
type FacebookClient struct {
	BaseURL     string
	PageID      string
	AccessToken string
}

// Publish posts to the page feed, attaching the media as a photo when given.
func (c *FacebookClient) Publish(ctx context.Context, post Post) (string, error) {
	if c.PageID == "" || c.AccessToken == "" {
		return "", errors.New("facebook publishing is not configured")
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultGraphBaseURL
	}

	form := url.Values{}
	form.Set("access_token", c.AccessToken)

	endpoint := base + "/" + c.PageID + "/feed"
	form.Set("message", post.Caption)
	if post.MediaURL != "" {
		endpoint = base + "/" + c.PageID + "/photos"
		form.Set("url", post.MediaURL)
		form.Set("caption", post.Caption)
	}

	var resp struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	if err := postForm(ctx, "facebook", endpoint, form, &resp); err != nil {
		return "", err
	}
	if resp.PostID != "" {
		return resp.PostID, nil
	}
	return resp.ID, nil
}

// InstagramClient publishes through the Graph content-publishing flow:
// create a media container, then publish it.
type InstagramClient struct {
	BaseURL     string
	UserID      string
	AccessToken string
}

// Publish runs the two-step container/publish sequence. Instagram requires
// media, captions alone are rejected.
func (c *InstagramClient) Publish(ctx context.Context, post Post) (string, error) {
	if c.UserID == "" || c.AccessToken == "" {
		return "", errors.New("instagram publishing is not configured")
	}
	if post.MediaURL == "" {
		return "", errors.New("instagram posts require media")
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultGraphBaseURL
	}

	form := url.Values{}
	form.Set("access_token", c.AccessToken)
	form.Set("image_url", post.MediaURL)
	form.Set("caption", post.Caption)

	var container struct {
		ID string `json:"id"`
	}
	if err := postForm(ctx, "instagram", base+"/"+c.UserID+"/media", form, &container); err != nil {
		return "", err
	}

	publish := url.Values{}
	publish.Set("access_token", c.AccessToken)
	publish.Set("creation_id", container.ID)

	var resp struct {
		ID string `json:"id"`
	}
	if err := postForm(ctx, "instagram", base+"/"+c.UserID+"/media_publish", publish, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}
