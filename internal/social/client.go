// Package social provides thin HTTP clients for the publishing APIs of the
// supported platforms. Request and response shapes follow the platform docs;
// nothing here owns a protocol.
package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Post is the platform-independent content to publish.
type Post struct {
	Caption  string
	MediaURL string
}

// Publisher pushes a post to one platform and returns the platform-side id.
type Publisher interface {
	Publish(ctx context.Context, post Post) (string, error)
}

// httpClient is shared by the platform clients.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// apiError is the normalized failure for any platform call.
type apiError struct {
	Platform string
	Status   int
	Body     string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s api: status %d: %s", e.Platform, e.Status, e.Body)
}

// postForm sends a form-encoded POST and decodes the JSON response into out.
func postForm(ctx context.Context, platform, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(req, platform, out)
}

// postJSON sends a JSON POST and decodes the JSON response into out.
func postJSON(ctx context.Context, platform, endpoint, bearer string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return do(req, platform, out)
}

func do(req *http.Request, platform string, out any) error {
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apiError{Platform: platform, Status: resp.StatusCode, Body: string(data)}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}
