package models

// ForecastSample is a single forecast point at a 3-hour step
type ForecastSample struct {
	Time           int64   `json:"time"`           // Unix UTC
	Temperature    float64 `json:"temperature"`    // in Celsius
	TemperatureMax float64 `json:"temperatureMax"` // in Celsius
	WindSpeed      float64 `json:"windSpeed"`      // in m/s
	WindDeg        int     `json:"windDeg"`        // wind direction in degrees
	Description    string  `json:"description"`
	Icon           string  `json:"icon"`
}

// Forecast is the 5-day/3-hour series for a position
type Forecast struct {
	Timezone int64            `json:"timezone"` // shift from UTC in seconds
	Samples  []ForecastSample `json:"samples"`
}
