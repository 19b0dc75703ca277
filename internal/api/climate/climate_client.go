package climate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://archive-api.open-meteo.com"
	referenceYear  = 2023
)

// Fetcher returns daily temperature series for a month.
type Fetcher interface {
	FetchMonth(ctx context.Context, lat, lon float64, month time.Month) (*DailyTemperatures, error)
}

// DailyTemperatures holds one value per day in Celsius. Missing days are nil.
type DailyTemperatures struct {
	Time []string   `json:"time"`
	Mean []*float64 `json:"temperature_2m_mean"`
	Max  []*float64 `json:"temperature_2m_max"`
	Min  []*float64 `json:"temperature_2m_min"`
}

type archiveResponse struct {
	Daily  DailyTemperatures `json:"daily"`
	Error  bool              `json:"error"`
	Reason string            `json:"reason"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) FetchMonth(ctx context.Context, lat, lon float64, month time.Month) (*DailyTemperatures, error) {
	reqURL, err := c.buildURL(lat, lon, month)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open-meteo request: %w", err)
	}
	defer resp.Body.Close()

	var payload archiveResponse
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if json.NewDecoder(resp.Body).Decode(&payload) == nil && payload.Reason != "" {
			return nil, fmt.Errorf("open-meteo status %s: %s", resp.Status, payload.Reason)
		}
		return nil, fmt.Errorf("open-meteo status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode open-meteo response: %w", err)
	}
	if payload.Error {
		return nil, fmt.Errorf("open-meteo error: %s", payload.Reason)
	}
	return &payload.Daily, nil
}

func (c *Client) buildURL(lat, lon float64, month time.Month) (string, error) {
	u, err := url.Parse(c.baseURL + "/v1/archive")
	if err != nil {
		return "", fmt.Errorf("parse open-meteo base url: %w", err)
	}

	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("start_date", fmt.Sprintf("%d-%02d-01", referenceYear, month))
	q.Set("end_date", fmt.Sprintf("%d-%02d-%02d", referenceYear, month, daysIn(month)))
	q.Set("daily", "temperature_2m_mean,temperature_2m_max,temperature_2m_min")
	q.Set("timezone", "auto")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// daysIn ignores leap years; the reference year is not one.
func daysIn(m time.Month) int {
	return time.Date(referenceYear, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
