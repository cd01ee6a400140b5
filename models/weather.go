package models

// Coordinates is a latitude/longitude pair in decimal degrees
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location is a place returned by forward or reverse geocoding
type Location struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Coordinates returns the position of the location
func (l Location) Coordinates() Coordinates {
	return Coordinates{Lat: l.Lat, Lon: l.Lon}
}

// CurrentWeather is a snapshot of the current conditions at a position
type CurrentWeather struct {
	Temperature float64 `json:"temperature"` // in Celsius
	FeelsLike   float64 `json:"feelsLike"`   // in Celsius
	Humidity    float64 `json:"humidity"`    // percentage
	Pressure    float64 `json:"pressure"`    // in hPa
	Visibility  float64 `json:"visibility"`  // in meters
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Observed    int64   `json:"observed"` // Unix UTC
	Sunrise     int64   `json:"sunrise"`  // Unix UTC
	Sunset      int64   `json:"sunset"`   // Unix UTC
	Timezone    int64   `json:"timezone"` // shift from UTC in seconds
}

// AirQuality is an air pollution snapshot. AQI is on the 1-5 scale.
type AirQuality struct {
	AQI        int                 `json:"aqi"`
	Components PollutantComponents `json:"components"`
}

// PollutantComponents holds concentrations in μg/m3
type PollutantComponents struct {
	CO   float64 `json:"co"`
	NO   float64 `json:"no"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	SO2  float64 `json:"so2"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
	NH3  float64 `json:"nh3"`
}
