package route

import (
	"context"
	"errors"
	"fmt"
	"log"

	"weather-page/models"
)

// ErrLocationUnavailable is returned by a Geolocator that cannot resolve a position
var ErrLocationUnavailable = errors.New("location unavailable")

// DefaultFallback is rendered when the device position cannot be resolved
var DefaultFallback = Weather(models.Coordinates{Lat: 24.833271, Lon: 92.778908})

// Geolocator resolves the device position once per call
type Geolocator interface {
	Locate(ctx context.Context) (models.Coordinates, error)
}

// View is what a dispatched route drives
type View interface {
	// Update renders the page for c. fromDevice is true for the current-location route.
	Update(ctx context.Context, c models.Coordinates, fromDevice bool) error

	// NotFound shows the not-found state
	NotFound(err error)
}

// Navigator changes the current fragment. Implementations are expected to dispatch
// the new fragment the way a hash change would.
type Navigator interface {
	Navigate(ctx context.Context, fragment string) error
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(ctx context.Context, fragment string) error

// Navigate calls f
func (f NavigatorFunc) Navigate(ctx context.Context, fragment string) error {
	return f(ctx, fragment)
}

// Router maps fragments to page updates
type Router struct {
	view     View
	geo      Geolocator
	nav      Navigator
	fallback Route
}

// NewRouter creates a router. fallback must be a KindWeather route.
func NewRouter(view View, geo Geolocator, nav Navigator, fallback Route) *Router {
	return &Router{
		view:     view,
		geo:      geo,
		nav:      nav,
		fallback: fallback,
	}
}

// Start handles the initial fragment: an empty one navigates to the current location
func (r *Router) Start(ctx context.Context, fragment string) error {
	if fragment == "" || fragment == "#" {
		return r.nav.Navigate(ctx, CurrentLocation().Fragment())
	}
	return r.Dispatch(ctx, fragment)
}

// Dispatch parses fragment and runs its route. Unknown routes show the not-found
// state and return the parse error.
func (r *Router) Dispatch(ctx context.Context, fragment string) error {
	rt, err := Parse(fragment)
	if err != nil {
		r.view.NotFound(err)
		return err
	}

	switch rt.Kind {
	case KindCurrentLocation:
		c, err := r.geo.Locate(ctx)
		if err != nil {
			log.Printf("Geolocation failed, falling back to %s: %v", r.fallback.Fragment(), err)
			return r.nav.Navigate(ctx, r.fallback.Fragment())
		}
		return r.view.Update(ctx, c, true)
	case KindWeather:
		return r.view.Update(ctx, rt.Coords, false)
	default:
		err := fmt.Errorf("%w: %s", ErrUnknownRoute, rt.Kind)
		r.view.NotFound(err)
		return err
	}
}

// StaticLocator reports a fixed, configured device position
type StaticLocator struct {
	coords *models.Coordinates
}

// NewStaticLocator creates a locator for c. A nil c always fails with ErrLocationUnavailable.
func NewStaticLocator(c *models.Coordinates) StaticLocator {
	return StaticLocator{coords: c}
}

// Locate returns the configured position
func (s StaticLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return models.Coordinates{}, err
	}
	if s.coords == nil {
		return models.Coordinates{}, ErrLocationUnavailable
	}
	return *s.coords, nil
}
