// Package owmtest provides a fake OpenWeather API for tests.
package owmtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

// APIKey is the credential the fake server accepts
const APIKey = "test-key"

// Endpoint paths served by the fake
const (
	PathWeather      = "/data/2.5/weather"
	PathForecast     = "/data/2.5/forecast"
	PathAirPollution = "/data/2.5/air_pollution"
	PathReverseGeo   = "/geo/1.0/reverse"
	PathGeo          = "/geo/1.0/direct"
)

// Fixture values returned by the default handlers
const (
	ForecastStart    = int64(1700006400) // 2023-11-15 00:00:00 UTC
	ForecastSamples  = 40
	ForecastStepSecs = 3 * 60 * 60
	SunriseUnix      = int64(1699999200) // 2023-11-14 22:00:00 UTC
	SunsetUnix       = int64(1700038800) // 2023-11-15 09:00:00 UTC
	ObservedUnix     = int64(1700020800) // 2023-11-15 04:00:00 UTC
	TimezoneSecs     = int64(19800)      // UTC+5:30
)

type failure struct {
	status int
	body   string
}

// Server is an httptest server speaking the OpenWeather wire format.
// It records every request it receives.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*url.URL
	failures map[string]failure
	bodies   map[string]string
	gates    map[string]chan struct{}
}

// NewServer starts a fake server that is closed when the test ends
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		failures: make(map[string]failure),
		bodies:   make(map[string]string),
		gates:    make(map[string]chan struct{}),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Fail makes path answer with status and body from now on
func (s *Server) Fail(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = failure{status: status, body: body}
}

// Respond overrides the successful body served for path
func (s *Server) Respond(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[path] = body
}

// Hold blocks responses for path until the returned function is called
func (s *Server) Hold(path string) (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gates[path] = gate
	s.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Requests returns the query of every request made to path, in arrival order
func (s *Server) Requests(path string) []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []url.Values
	for _, u := range s.requests {
		if u.Path == path {
			out = append(out, u.Query())
		}
	}
	return out
}

// Count returns the number of requests made to path
func (s *Server) Count(path string) int {
	return len(s.Requests(path))
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL)
	fail, failing := s.failures[r.URL.Path]
	body, overridden := s.bodies[r.URL.Path]
	gate := s.gates[r.URL.Path]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")

	if r.URL.Query().Get("appid") != APIKey {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"cod":401,"message":"Invalid API key. Please see https://openweathermap.org/faq#error401 for more info."}`)
		return
	}
	if failing {
		w.WriteHeader(fail.status)
		fmt.Fprint(w, fail.body)
		return
	}
	if overridden {
		fmt.Fprint(w, body)
		return
	}

	switch r.URL.Path {
	case PathWeather:
		fmt.Fprint(w, currentWeatherJSON)
	case PathForecast:
		_ = json.NewEncoder(w).Encode(ForecastPayload(ForecastSamples))
	case PathAirPollution:
		fmt.Fprint(w, airPollutionJSON)
	case PathReverseGeo:
		fmt.Fprint(w, reverseGeoJSON)
	case PathGeo:
		fmt.Fprint(w, geoJSON)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"cod":"404","message":"Internal error"}`)
	}
}

// ForecastPayload builds a forecast response with n samples. Sample i has
// temperature i+0.5, max temperature i+0.9 and wind speed 10 m/s.
func ForecastPayload(n int) map[string]any {
	list := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		list = append(list, map[string]any{
			"dt": ForecastStart + int64(i*ForecastStepSecs),
			"main": map[string]any{
				"temp":     float64(i) + 0.5,
				"temp_max": float64(i) + 0.9,
			},
			"weather": []map[string]any{
				{"description": "scattered clouds", "icon": "03d"},
			},
			"wind": map[string]any{"speed": 10.0, "deg": 270},
		})
	}
	return map[string]any{
		"cod":  "200",
		"cnt":  n,
		"list": list,
		"city": map[string]any{"name": "Silchar", "country": "IN", "timezone": TimezoneSecs},
	}
}

var currentWeatherJSON = fmt.Sprintf(`{
	"weather": [{"id": 721, "main": "Haze", "description": "haze", "icon": "50n"}],
	"main": {"temp": 21.78, "feels_like": 21.9, "temp_min": 21.78, "temp_max": 21.78, "pressure": 1014, "humidity": 73},
	"visibility": 3500,
	"wind": {"speed": 0.51, "deg": 0},
	"dt": %d,
	"sys": {"country": "IN", "sunrise": %d, "sunset": %d},
	"timezone": %d,
	"name": "Silchar",
	"cod": 200
}`, ObservedUnix, SunriseUnix, SunsetUnix, TimezoneSecs)

const airPollutionJSON = `{
	"coord": {"lon": 92.7789, "lat": 24.8333},
	"list": [{
		"main": {"aqi": 2},
		"components": {"co": 317.1, "no": 0.01, "no2": 3.81, "o3": 62.23, "so2": 1.3, "pm2_5": 14.567, "pm10": 19.21, "nh3": 2.15},
		"dt": 1700020800
	}]
}`

const reverseGeoJSON = `[
	{"name": "Silchar", "local_names": {"en": "Silchar"}, "lat": 24.8306, "lon": 92.7788, "country": "IN", "state": "Assam"}
]`

const geoJSON = `[
	{"name": "London", "lat": 51.5073219, "lon": -0.1276474, "country": "GB", "state": "England"},
	{"name": "London", "lat": 42.9832406, "lon": -81.243372, "country": "CA", "state": "Ontario"},
	{"name": "London", "lat": 39.8864493, "lon": -83.4482508, "country": "US"}
]`
