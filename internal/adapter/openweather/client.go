package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cropshield/claim-assessment-service/internal/domain"
	"github.com/cropshield/claim-assessment-service/internal/observability"
)

// Provider supplies a current weather observation for a coordinate.
type Provider interface {
	Current(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error)
}

// Client implements Provider against the OpenWeatherMap current weather API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client.
func NewClient(apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://api.openweathermap.org/data/2.5/weather",
		metrics:    metrics,
		logger:     logger,
	}
}

// Current fetches conditions at (lat, lon) in metric units.
func (c *Client) Current(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	params := url.Values{
		"lat":   {fmt.Sprintf("%.6f", lat)},
		"lon":   {fmt.Sprintf("%.6f", lon)},
		"appid": {c.apiKey},
		"units": {"metric"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.observeDuration(time.Since(start))
	if err != nil {
		c.countRequest("error")
		return domain.WeatherSnapshot{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.countRequest("error")
		body, _ := io.ReadAll(resp.Body)
		return domain.WeatherSnapshot{}, fmt.Errorf("openweathermap API error: status %d: %s", resp.StatusCode, body)
	}

	var owm response
	if err := json.NewDecoder(resp.Body).Decode(&owm); err != nil {
		c.countRequest("error")
		return domain.WeatherSnapshot{}, fmt.Errorf("decode response: %w", err)
	}
	c.countRequest("success")

	snapshot := domain.WeatherSnapshot{
		TemperatureC: owm.Main.Temp,
		HumidityPct:  owm.Main.Humidity,
		WindSpeedMS:  owm.Wind.Speed,
		ObservedAt:   time.Now().UTC(),
		Source:       "openweathermap",
	}
	if owm.DT > 0 {
		snapshot.ObservedAt = time.Unix(owm.DT, 0).UTC()
	}
	if len(owm.Weather) > 0 {
		snapshot.Condition = owm.Weather[0].Main
		snapshot.Description = owm.Weather[0].Description
	}
	return snapshot, nil
}

func (c *Client) countRequest(outcome string) {
	if c.metrics != nil {
		c.metrics.WeatherRequests.WithLabelValues(outcome).Inc()
	}
}

func (c *Client) observeDuration(d time.Duration) {
	if c.metrics != nil {
		c.metrics.WeatherAPIDuration.Observe(d.Seconds())
	}
}

// OpenWeatherMap API response types.

type response struct {
	Weather []condition `json:"weather"`
	Main    mainBlock   `json:"main"`
	Wind    windBlock   `json:"wind"`
	DT      int64       `json:"dt"` // observation unix time
}

type condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type mainBlock struct {
	Temp     float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
}

type windBlock struct {
	Speed float64 `json:"speed"`
}
