package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the external music catalog. The service persists only
// album identifiers; everything else here is a read-time enrichment overlay.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// Album is the catalog metadata for one album.
type Album struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	ImageURL string `json:"imageUrl"`
}

// New creates a catalog client.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// catalog wire shapes; only the fields we consume.
type wireAlbum struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

func (w *wireAlbum) toAlbum() Album {
	a := Album{ID: w.ID, Name: w.Name}
	if len(w.Artists) > 0 {
		a.Artist = w.Artists[0].Name
	}
	if len(w.Images) > 0 {
		a.ImageURL = w.Images[0].URL
	}
	return a
}

// GetAlbum fetches one album by its catalog ID. The caller's catalog token
// is forwarded as the bearer credential.
func (c *Client) GetAlbum(ctx context.Context, token, albumID string) (*Album, error) {
	endpoint := fmt.Sprintf("%s/albums/%s", c.BaseURL, url.PathEscape(albumID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog status %d", res.StatusCode)
	}

	var w wireAlbum
	if err := json.NewDecoder(res.Body).Decode(&w); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	album := w.toAlbum()
	return &album, nil
}

// SearchAlbums searches the catalog for albums matching the query.
func (c *Client) SearchAlbums(ctx context.Context, token, query string, limit int) ([]Album, error) {
	if limit <= 0 {
		limit = 10
	}

	u, err := url.Parse(c.BaseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("invalid catalog base URL: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("type", "album")
	q.Set("limit", fmt.Sprint(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog status %d", res.StatusCode)
	}

	var out struct {
		Albums struct {
			Items []wireAlbum `json:"items"`
		} `json:"albums"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	albums := make([]Album, 0, len(out.Albums.Items))
	for i := range out.Albums.Items {
		albums = append(albums, out.Albums.Items[i].toAlbum())
	}
	return albums, nil
}

// Placeholder returns the fallback metadata used when an album lookup fails.
// Reads degrade per item instead of failing the whole request.
func Placeholder(albumID string) *Album {
	return &Album{ID: albumID, Name: "Unknown Album"}
}
