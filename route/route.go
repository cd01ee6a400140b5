// Package route parses URL-fragment navigation and dispatches it to the page.
package route

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"weather-page/models"
)

// Route errors
var (
	ErrUnknownRoute = errors.New("unknown route")
	ErrBadQuery     = errors.New("bad route query")
)

// Paths of the two known routes
const (
	PathCurrentLocation = "/current-location"
	PathWeather         = "/weather"
)

// Kind identifies a route variant
type Kind int

const (
	// KindCurrentLocation renders the device position
	KindCurrentLocation Kind = iota + 1
	// KindWeather renders the coordinates carried in the route
	KindWeather
)

func (k Kind) String() string {
	switch k {
	case KindCurrentLocation:
		return "current-location"
	case KindWeather:
		return "weather"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Route is a parsed navigation target. Coords is set for KindWeather only.
type Route struct {
	Kind   Kind
	Coords models.Coordinates
}

// CurrentLocation returns the device-location route
func CurrentLocation() Route {
	return Route{Kind: KindCurrentLocation}
}

// Weather returns the route rendering c
func Weather(c models.Coordinates) Route {
	return Route{Kind: KindWeather, Coords: c}
}

// Fragment renders the route as a URL fragment, e.g. "#/weather?lat=1&lon=2"
func (r Route) Fragment() string {
	return "#" + r.Path()
}

// Path renders the route without the leading "#"
func (r Route) Path() string {
	switch r.Kind {
	case KindCurrentLocation:
		return PathCurrentLocation
	case KindWeather:
		return PathWeather + "?lat=" + strconv.FormatFloat(r.Coords.Lat, 'f', -1, 64) +
			"&lon=" + strconv.FormatFloat(r.Coords.Lon, 'f', -1, 64)
	default:
		return ""
	}
}

// Parse reads a fragment such as "#/weather?lat=24.8&lon=92.7". The "#" is optional.
func Parse(fragment string) (Route, error) {
	path, query, _ := strings.Cut(strings.TrimPrefix(fragment, "#"), "?")

	switch path {
	case PathCurrentLocation:
		return CurrentLocation(), nil
	case PathWeather:
		c, err := parseCoords(query)
		if err != nil {
			return Route{}, err
		}
		return Weather(c), nil
	default:
		return Route{}, fmt.Errorf("%w: %q", ErrUnknownRoute, path)
	}
}

func parseCoords(query string) (models.Coordinates, error) {
	values, err := url.ParseQuery(query)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrBadQuery, err)
	}

	lat, err := parseFloatParam(values, "lat")
	if err != nil {
		return models.Coordinates{}, err
	}
	lon, err := parseFloatParam(values, "lon")
	if err != nil {
		return models.Coordinates{}, err
	}
	return models.Coordinates{Lat: lat, Lon: lon}, nil
}

func parseFloatParam(values url.Values, name string) (float64, error) {
	raw := values.Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s", ErrBadQuery, name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrBadQuery, name, raw)
	}
	return v, nil
}
