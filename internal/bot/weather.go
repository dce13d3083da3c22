// Package bot implements the in-chat command interpreter and its weather
// lookup collaborator.
package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"wtforum/internal/observability"
)

// ErrLookupFailed is the single uniform failure signal for a weather lookup.
// Transport errors, non-2xx statuses and malformed payloads all collapse into
// it; callers never see a partial result.
var ErrLookupFailed = errors.New("weather lookup failed")

// WeatherReport holds the fields of a successful lookup, exactly as returned
// by the upstream API.
type WeatherReport struct {
	City      string
	Country   string
	LocalTime string
	TempC     float64
	Condition string
	WindMph   float64
}

// WeatherLookup resolves a free-text city name to a weather report.
type WeatherLookup interface {
	CityWeather(ctx context.Context, city string) (*WeatherReport, error)
}

// WeatherClient is a client for the weatherapi.com current-conditions API.
type WeatherClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewWeatherClient returns a WeatherClient. Every request is bounded by
// timeout; an expired deadline is reported as ErrLookupFailed, never a hang.
func NewWeatherClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *WeatherClient {
	return &WeatherClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// currentResponse mirrors the relevant slice of the weatherapi.com payload.
// Pointer fields distinguish "missing" from zero values so a garbled payload
// is rejected instead of passed through.
type currentResponse struct {
	Location *struct {
		Name      string `json:"name"`
		Country   string `json:"country"`
		LocalTime string `json:"localtime"`
	} `json:"location"`
	Current *struct {
		TempC     *float64 `json:"temp_c"`
		Condition *struct {
			Text string `json:"text"`
		} `json:"condition"`
		WindMph *float64 `json:"wind_mph"`
	} `json:"current"`
}

// CityWeather fetches current conditions for the city. Responses are
// requested in Russian to match the bot's reply language.
func (c *WeatherClient) CityWeather(ctx context.Context, city string) (*WeatherReport, error) {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", city)
	q.Set("lang", "ru")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/current.json?"+q.Encode(), nil)
	if err != nil {
		return nil, c.fail(city, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(city, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(city, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, c.fail(city, err)
	}

	if payload.Location == nil || payload.Current == nil ||
		payload.Current.TempC == nil || payload.Current.Condition == nil || payload.Current.WindMph == nil {
		return nil, c.fail(city, errors.New("incomplete payload"))
	}

	observability.WeatherLookups.WithLabelValues("ok").Inc()
	return &WeatherReport{
		City:      payload.Location.Name,
		Country:   payload.Location.Country,
		LocalTime: payload.Location.LocalTime,
		TempC:     *payload.Current.TempC,
		Condition: payload.Current.Condition.Text,
		WindMph:   *payload.Current.WindMph,
	}, nil
}

func (c *WeatherClient) fail(city string, cause error) error {
	observability.WeatherLookups.WithLabelValues("failed").Inc()
	if c.logger != nil {
		c.logger.Warn("weather lookup failed",
			slog.String("city", city),
			slog.String("error", cause.Error()),
		)
	}
	return fmt.Errorf("%w: %v", ErrLookupFailed, cause)
}
