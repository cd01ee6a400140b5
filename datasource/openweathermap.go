package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weather-page/models"
)

// maxBodyBytes caps how much of a response body is read
const maxBodyBytes = 1 << 20

// ErrEmptyResponse is returned when a successful response lacks the data a caller needs
var ErrEmptyResponse = errors.New("empty response")

// APIError is the error payload OpenWeather sends with a non-2xx status
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
}

// OpenWeatherMapProvider implements both WeatherProvider and PlaceSearcher interfaces
type OpenWeatherMapProvider struct {
	apiKey     string
	endpoints  Endpoints
	httpClient *http.Client
}

// NewOpenWeatherMapProvider creates a new OpenWeatherMap provider.
// An empty baseURL selects the public API host.
func NewOpenWeatherMapProvider(apiKey, baseURL string, timeout time.Duration) *OpenWeatherMapProvider {
	return &OpenWeatherMapProvider{
		apiKey:    apiKey,
		endpoints: NewEndpoints(baseURL),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider name
func (p *OpenWeatherMapProvider) Name() string {
	return "OpenWeatherMap"
}

// Endpoints returns the URL builder the provider requests from
func (p *OpenWeatherMapProvider) Endpoints() Endpoints {
	return p.endpoints
}

type weatherCondition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CurrentWeather fetches current weather for a position
func (p *OpenWeatherMapProvider) CurrentWeather(ctx context.Context, c models.Coordinates) (models.CurrentWeather, error) {
	var response struct {
		Weather []weatherCondition `json:"weather"`
		Main    struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Pressure  float64 `json:"pressure"`
			Humidity  float64 `json:"humidity"`
		} `json:"main"`
		Visibility float64 `json:"visibility"`
		Dt         int64   `json:"dt"`
		Sys        struct {
			Sunrise int64 `json:"sunrise"`
			Sunset  int64 `json:"sunset"`
		} `json:"sys"`
		Timezone int64 `json:"timezone"`
	}

	if err := p.fetch(ctx, p.endpoints.CurrentWeather(c), &response); err != nil {
		return models.CurrentWeather{}, err
	}
	if len(response.Weather) == 0 {
		return models.CurrentWeather{}, fmt.Errorf("current weather has no conditions: %w", ErrEmptyResponse)
	}

	return models.CurrentWeather{
		Temperature: response.Main.Temp,
		FeelsLike:   response.Main.FeelsLike,
		Humidity:    response.Main.Humidity,
		Pressure:    response.Main.Pressure,
		Visibility:  response.Visibility,
		Description: response.Weather[0].Description,
		Icon:        response.Weather[0].Icon,
		Observed:    response.Dt,
		Sunrise:     response.Sys.Sunrise,
		Sunset:      response.Sys.Sunset,
		Timezone:    response.Timezone,
	}, nil
}

// Forecast fetches the 5-day forecast at 3-hour steps for a position
func (p *OpenWeatherMapProvider) Forecast(ctx context.Context, c models.Coordinates) (models.Forecast, error) {
	var response struct {
		City struct {
			Timezone int64 `json:"timezone"`
		} `json:"city"`
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp    float64 `json:"temp"`
				TempMax float64 `json:"temp_max"`
			} `json:"main"`
			Wind struct {
				Speed float64 `json:"speed"`
				Deg   int     `json:"deg"`
			} `json:"wind"`
			Weather []weatherCondition `json:"weather"`
		} `json:"list"`
	}

	if err := p.fetch(ctx, p.endpoints.Forecast(c), &response); err != nil {
		return models.Forecast{}, err
	}
	if len(response.List) == 0 {
		return models.Forecast{}, fmt.Errorf("forecast has no samples: %w", ErrEmptyResponse)
	}

	forecast := models.Forecast{
		Timezone: response.City.Timezone,
		Samples:  make([]models.ForecastSample, 0, len(response.List)),
	}
	for i, item := range response.List {
		if len(item.Weather) == 0 {
			return models.Forecast{}, fmt.Errorf("forecast sample %d has no conditions: %w", i, ErrEmptyResponse)
		}
		forecast.Samples = append(forecast.Samples, models.ForecastSample{
			Time:           item.Dt,
			Temperature:    item.Main.Temp,
			TemperatureMax: item.Main.TempMax,
			WindSpeed:      item.Wind.Speed,
			WindDeg:        item.Wind.Deg,
			Description:    item.Weather[0].Description,
			Icon:           item.Weather[0].Icon,
		})
	}

	return forecast, nil
}

// AirPollution fetches the current air quality for a position
func (p *OpenWeatherMapProvider) AirPollution(ctx context.Context, c models.Coordinates) (models.AirQuality, error) {
	var response struct {
		List []struct {
			Main struct {
				AQI int `json:"aqi"`
			} `json:"main"`
			Components models.PollutantComponents `json:"components"`
		} `json:"list"`
	}

	if err := p.fetch(ctx, p.endpoints.AirPollution(c), &response); err != nil {
		return models.AirQuality{}, err
	}
	if len(response.List) == 0 {
		return models.AirQuality{}, fmt.Errorf("air pollution has no readings: %w", ErrEmptyResponse)
	}

	return models.AirQuality{
		AQI:        response.List[0].Main.AQI,
		Components: response.List[0].Components,
	}, nil
}

// ReverseGeocode resolves a position to candidate place names, best match first
func (p *OpenWeatherMapProvider) ReverseGeocode(ctx context.Context, c models.Coordinates) ([]models.Location, error) {
	var locations []models.Location
	if err := p.fetch(ctx, p.endpoints.ReverseGeo(c), &locations); err != nil {
		return nil, err
	}
	if len(locations) == 0 {
		return nil, fmt.Errorf("no place found at %v,%v: %w", c.Lat, c.Lon, ErrEmptyResponse)
	}
	return locations, nil
}

// Search finds places matching a free-text query. No match is not an error.
func (p *OpenWeatherMapProvider) Search(ctx context.Context, query string) ([]models.Location, error) {
	var locations []models.Location
	if err := p.fetch(ctx, p.endpoints.Geo(query), &locations); err != nil {
		return nil, err
	}
	return locations, nil
}

// fetch performs a GET with the credential appended and decodes the JSON body into dst
func (p *OpenWeatherMapProvider) fetch(ctx context.Context, endpoint string, dst any) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	params := u.Query()
	params.Set("appid", p.apiKey)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// parseAPIError decodes {"cod": ..., "message": ...}; cod is a string or a number
// depending on the endpoint.
func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var payload struct {
		Cod     json.RawMessage `json:"cod"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}

	apiErr.Code = strings.Trim(string(payload.Cod), `"`)
	apiErr.Message = payload.Message
	return apiErr
}
