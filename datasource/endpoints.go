package datasource

import (
	"net/url"
	"strconv"
	"strings"

	"weather-page/models"
)

// DefaultBaseURL is the public OpenWeather API host
const DefaultBaseURL = "https://api.openweathermap.org"

// geocodeLimit caps the candidates returned by the geocoding endpoints
const geocodeLimit = 5

// Endpoints builds the OpenWeather GET URLs. Coordinates are not range-checked.
// The credential is not part of the URL; it is added when the request is made.
type Endpoints struct {
	BaseURL string
}

// NewEndpoints creates an endpoint builder for baseURL, or the public host if empty
func NewEndpoints(baseURL string) Endpoints {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return Endpoints{BaseURL: strings.TrimRight(baseURL, "/")}
}

// CurrentWeather returns the current weather URL, always in metric units
func (e Endpoints) CurrentWeather(c models.Coordinates) string {
	params := coordParams(c)
	params.Add("units", "metric")
	return e.build("/data/2.5/weather", params)
}

// Forecast returns the 5-day/3-hour forecast URL, always in metric units
func (e Endpoints) Forecast(c models.Coordinates) string {
	params := coordParams(c)
	params.Add("units", "metric")
	return e.build("/data/2.5/forecast", params)
}

// AirPollution returns the current air pollution URL
func (e Endpoints) AirPollution(c models.Coordinates) string {
	return e.build("/data/2.5/air_pollution", coordParams(c))
}

// ReverseGeo returns the reverse geocoding URL
func (e Endpoints) ReverseGeo(c models.Coordinates) string {
	params := coordParams(c)
	params.Add("limit", strconv.Itoa(geocodeLimit))
	return e.build("/geo/1.0/reverse", params)
}

// Geo returns the forward geocoding URL for a free-text place query
func (e Endpoints) Geo(query string) string {
	params := url.Values{}
	params.Add("q", query)
	params.Add("limit", strconv.Itoa(geocodeLimit))
	return e.build("/geo/1.0/direct", params)
}

func (e Endpoints) build(path string, params url.Values) string {
	return e.BaseURL + path + "?" + params.Encode()
}

func coordParams(c models.Coordinates) url.Values {
	params := url.Values{}
	params.Add("lat", strconv.FormatFloat(c.Lat, 'f', -1, 64))
	params.Add("lon", strconv.FormatFloat(c.Lon, 'f', -1, 64))
	return params
}
