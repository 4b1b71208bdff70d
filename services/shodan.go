package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/echord/echord-backend/config"
)

// SearchResponse is the raw upstream search payload, trimmed to the
// fields the orchestrator normalizes.
type SearchResponse struct {
	Matches []RawSearchMatch `json:"matches"`
	Total   int              `json:"total"`
}

type RawSearchMatch struct {
	IPStr     string      `json:"ip_str"`
	Port      int         `json:"port"`
	Org       string      `json:"org"`
	Location  rawLocation `json:"location"`
	Hostnames []string    `json:"hostnames"`
}

type rawLocation struct {
	CountryName string `json:"country_name"`
}

type shodanErrorBody struct {
	Error string `json:"error"`
}

// ShodanClient calls the Shodan REST API. Every request carries the
// configured timeout; failures map onto the typed error taxonomy in
// errors.go rather than a generic error.
type ShodanClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewShodanClient builds a client from cfg.
func NewShodanClient(cfg config.Config) *ShodanClient {
	return &ShodanClient{
		baseURL: cfg.ShodanBaseURL,
		apiKey:  cfg.ShodanAPIKey,
		http:    &http.Client{Timeout: cfg.ShodanTimeout},
	}
}

// SearchHosts runs a host search for the given query and 1-based page.
func (c *ShodanClient) SearchHosts(ctx context.Context, query string, page int) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	raw, err := c.get(ctx, c.baseURL+"/host/search?"+params.Encode(), false)
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode shodan search response: %w", err)
	}
	return &resp, nil
}

// GetHost fetches the raw host document for an IP.
func (c *ShodanClient) GetHost(ctx context.Context, ip string) (*RawHostDocument, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)

	raw, err := c.get(ctx, c.baseURL+"/host/"+url.PathEscape(ip)+"?"+params.Encode(), true)
	if err != nil {
		return nil, err
	}

	var doc RawHostDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode shodan host response: %w", err)
	}
	return &doc, nil
}

func (c *ShodanClient) get(ctx context.Context, rawURL string, notFoundIsTyped bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("contact shodan API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read shodan response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusForbidden:
		return nil, ErrForbidden
	case http.StatusNotFound:
		if notFoundIsTyped {
			return nil, ErrNotFound
		}
	}

	msg := "unexpected response"
	var eb shodanErrorBody
	if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
		msg = eb.Error
	}
	return nil, &UpstreamError{Status: resp.StatusCode, Message: msg}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Timeout()
	}
	return false
}
