package points

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"OroswapBot/internal/model"
)

// Defaults for the public testnet API.
const (
	DefaultBaseURL = "https://testnet-api.oroswap.org"
	DefaultOrigin  = "https://testnet.oroswap.org"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

// OroswapFetcher implements Fetcher using the portfolio points endpoint.
type OroswapFetcher struct {
	BaseURL string
	Origin  string
	Client  *http.Client
}

// NewOroswapFetcher creates a fetcher. An empty baseURL or origin falls back to the testnet defaults.
func NewOroswapFetcher(baseURL, origin string, client *http.Client) *OroswapFetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if origin == "" {
		origin = DefaultOrigin
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OroswapFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Origin:  strings.TrimRight(origin, "/"),
		Client:  client,
	}
}

func (f *OroswapFetcher) Name() string { return "oroswap" }

// pointsResponse is the expected JSON shape from the portfolio API.
type pointsResponse struct {
	Points []model.PointsRecord `json:"points"`
}

// FetchPoints returns the first record the API reports for address.
func (f *OroswapFetcher) FetchPoints(ctx context.Context, address string) (*model.PointsRecord, error) {
	endpoint := fmt.Sprintf("%s/api/portfolio/%s/points", f.BaseURL, url.PathEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Origin", f.Origin)
	req.Header.Set("Referer", f.Origin+"/")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch points: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch points: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result pointsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode points: %w", err)
	}
	if len(result.Points) == 0 {
		return nil, ErrNoPoints
	}
	rec := result.Points[0]
	return &rec, nil
}
