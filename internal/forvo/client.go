package forvo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
)

const (
	// DefaultBaseURL is the free Forvo API endpoint
	DefaultBaseURL = "http://apifree.forvo.com"
	defaultTimeout = 30 * time.Second
	searchPageSize = 100
)

// ClientConfig holds the Forvo client configuration
type ClientConfig struct {
	APIKey  string
	BaseURL string        // Endpoint root, without trailing slash
	Timeout time.Duration // Applies to search and download separately
}

// DefaultClientConfig returns the default configuration for the given key
func DefaultClientConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
		Timeout: defaultTimeout,
	}
}

// Client talks to the Forvo API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        logrus.FieldLogger
}

// NewClient creates a new Forvo API client
func NewClient(config *ClientConfig, log logrus.FieldLogger) *Client {
	cfg := *config
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

// SearchURL builds the pronounced-words-search URL for a word and an
// optional language code
func (c *Client) SearchURL(word, language string) string {
	var extra string
	if language != "" {
		extra = "/language/" + url.PathEscape(language)
	}

	return fmt.Sprintf("%s/key/%s/format/json/action/pronounced-words-search/pagesize/%d/search/%s%s",
		c.baseURL, c.apiKey, searchPageSize, url.PathEscape(word), extra)
}

// Search performs one search request and returns the results in the
// order Forvo sent them
func (c *Client) Search(ctx context.Context, word, language string) ([]SearchResult, error) {
	reqURL := c.SearchURL(word, language)
	c.log.WithField("url", c.redact(reqURL)).Debug("Searching Forvo")

	resp, err := c.get(ctx, "search", reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := decodeBody(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.NewDecoder(body).Decode(&sr); err != nil {
		return nil, &MalformedResponseError{Reason: "invalid JSON", Err: err}
	}

	if sr.Items == nil {
		return nil, &MalformedResponseError{Reason: "missing items field"}
	}

	results := *sr.Items
	for i, r := range results {
		if r.Pronunciation == nil {
			return nil, &MalformedResponseError{
				Reason: fmt.Sprintf("item %d (%q) has no standard_pronunciation", i, r.Original),
			}
		}
	}

	c.log.WithField("count", len(results)).Debug("Search finished")
	return results, nil
}

// decodeBody honours a declared charset. Without one the body is JSON and
// therefore UTF-8, so it is read as is.
func decodeBody(body io.Reader, contentType string) (io.Reader, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil || params["charset"] == "" {
		return body, nil
	}

	r, err := charset.NewReaderLabel(params["charset"], body)
	if err != nil {
		return nil, &MalformedResponseError{Reason: "unsupported charset " + params["charset"], Err: err}
	}
	return r, nil
}

// Download fetches the audio behind audioURL. The caller closes the reader.
func (c *Client) Download(ctx context.Context, audioURL string) (io.ReadCloser, error) {
	c.log.WithField("url", audioURL).Debug("Downloading pronunciation")

	resp, err := c.get(ctx, "download", audioURL)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) get(ctx context.Context, op, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: c.redactErr(err)}
	}

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &NetworkError{Op: op, StatusCode: resp.StatusCode}
	}

	return resp, nil
}

// redact hides the API key in text that may end up in logs or errors
func (c *Client) redact(s string) string {
	if c.apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, c.apiKey, "***")
}

func (c *Client) redactErr(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		uerr.URL = c.redact(uerr.URL)
	}
	return err
}
