package datasource

import (
	"context"

	"weather-page/models"
)

// WeatherProvider is an interface for services that can fetch everything a weather page shows
type WeatherProvider interface {
	// CurrentWeather fetches current conditions for a position
	CurrentWeather(ctx context.Context, c models.Coordinates) (models.CurrentWeather, error)

	// Forecast fetches the 5-day/3-hour forecast for a position
	Forecast(ctx context.Context, c models.Coordinates) (models.Forecast, error)

	// AirPollution fetches the current air quality for a position
	AirPollution(ctx context.Context, c models.Coordinates) (models.AirQuality, error)

	// ReverseGeocode resolves a position to place names
	ReverseGeocode(ctx context.Context, c models.Coordinates) ([]models.Location, error)

	// Name returns the provider's name
	Name() string
}

// PlaceSearcher is an interface for services that can resolve free text to places
type PlaceSearcher interface {
	// Search fetches place candidates for a query
	Search(ctx context.Context, query string) ([]models.Location, error)
}

// Verify that the OpenWeatherMap provider implements the required interfaces
var (
	_ WeatherProvider = (*OpenWeatherMapProvider)(nil)
	_ PlaceSearcher   = (*OpenWeatherMapProvider)(nil)
)
