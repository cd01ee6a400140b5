package render

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"weather-page/datasource"
	"weather-page/format"
	"weather-page/models"
	"weather-page/page"
)

var (
	silchar = models.Coordinates{Lat: 24.833271, Lon: 92.778908}
	oslo    = models.Coordinates{Lat: 59.9139, Lon: 10.7522}
)

// fakeProvider serves canned data per coordinate and can hold the current-weather
// call for a coordinate until released.
type fakeProvider struct {
	mu    sync.Mutex
	calls map[string]int
	hold  map[models.Coordinates]chan struct{}
	errs  map[string]error
	aqi   int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		calls: make(map[string]int),
		hold:  make(map[models.Coordinates]chan struct{}),
		errs:  make(map[string]error),
		aqi:   2,
	}
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[call]++
	return f.errs[call]
}

func (f *fakeProvider) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[call]
}

func (f *fakeProvider) holdCurrent(c models.Coordinates) func() {
	gate := make(chan struct{})
	f.mu.Lock()
	f.hold[c] = gate
	f.mu.Unlock()
	return func() { close(gate) }
}

func (f *fakeProvider) CurrentWeather(ctx context.Context, c models.Coordinates) (models.CurrentWeather, error) {
	err := f.record("weather")
	f.mu.Lock()
	gate := f.hold[c]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return models.CurrentWeather{}, err
	}
	return models.CurrentWeather{
		Temperature: c.Lat, // lets tests tell which pass wrote the card
		FeelsLike:   20.4,
		Humidity:    73,
		Pressure:    1014,
		Visibility:  3500,
		Description: "haze",
		Icon:        "50n",
		Observed:    time.Date(2023, time.November, 15, 4, 0, 0, 0, time.UTC).Unix(),
		Sunrise:     time.Date(2023, time.November, 14, 23, 50, 0, 0, time.UTC).Unix(),
		Sunset:      time.Date(2023, time.November, 15, 10, 45, 0, 0, time.UTC).Unix(),
		Timezone:    19800,
	}, nil
}

func (f *fakeProvider) ReverseGeocode(ctx context.Context, c models.Coordinates) ([]models.Location, error) {
	if err := f.record("reverse"); err != nil {
		return nil, err
	}
	return []models.Location{{Name: "Silchar", Country: "IN", Lat: c.Lat, Lon: c.Lon}}, nil
}

func (f *fakeProvider) AirPollution(ctx context.Context, c models.Coordinates) (models.AirQuality, error) {
	if err := f.record("air"); err != nil {
		return models.AirQuality{}, err
	}
	f.mu.Lock()
	aqi := f.aqi
	f.mu.Unlock()
	return models.AirQuality{
		AQI:        aqi,
		Components: models.PollutantComponents{PM25: 14.567, SO2: 1.3, NO2: 3.81, O3: 62.23},
	}, nil
}

func (f *fakeProvider) Forecast(ctx context.Context, c models.Coordinates) (models.Forecast, error) {
	if err := f.record("forecast"); err != nil {
		return models.Forecast{}, err
	}
	return forecastOf(40), nil
}

var _ datasource.WeatherProvider = (*fakeProvider)(nil)

func forecastOf(n int) models.Forecast {
	start := time.Date(2023, time.November, 15, 0, 0, 0, 0, time.UTC).Unix()
	fc := models.Forecast{Timezone: 0}
	for i := 0; i < n; i++ {
		fc.Samples = append(fc.Samples, models.ForecastSample{
			Time:           start + int64(i)*3*3600,
			Temperature:    float64(i) + 0.5,
			TemperatureMax: float64(i) + 0.9,
			WindSpeed:      10,
			WindDeg:        270,
			Description:    "clouds",
			Icon:           "03d",
		})
	}
	return fc
}

func TestRenderPopulatesEveryRegion(t *testing.T) {
	prov := newFakeProvider()
	p := page.New(nil)
	r := NewRenderer(prov, p)

	if err := r.Render(context.Background(), silchar, true); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	s := p.Snapshot()
	if s.Loading || !s.Revealed || s.Err != "" {
		t.Fatalf("unexpected page state: %+v", s)
	}
	if !s.LocationButtonDisabled {
		t.Error("location button should be disabled for a device-location pass")
	}
	if s.Current == nil || s.Current.Temperature != 24 || s.Current.Date != "Wednesday 15, Nov" {
		t.Errorf("unexpected current card: %+v", s.Current)
	}
	if s.Location != "Silchar, IN" {
		t.Errorf("location = %q", s.Location)
	}
	h := s.Highlights
	if h == nil {
		t.Fatal("highlights missing")
	}
	if h.AQILevel != "Fair" || h.Visibility != "3.5" || h.FeelsLike != 20 {
		t.Errorf("unexpected highlights: %+v", h)
	}
	if h.Pollutants[0] != (page.Pollutant{Label: "PM2.5", Value: "14.6"}) || h.Pollutants[1].Value != "1.30" {
		t.Errorf("unexpected pollutants: %+v", h.Pollutants)
	}
	// 23:50 UTC + 5:30 is 05:20 local
	if h.Sunrise != "5:20 AM" || h.Sunset != "4:15 PM" {
		t.Errorf("sunrise/sunset = %s/%s", h.Sunrise, h.Sunset)
	}
	if len(s.Hourly) != 8 || len(s.Daily) != 5 {
		t.Errorf("hourly=%d daily=%d, want 8 and 5", len(s.Hourly), len(s.Daily))
	}

	for _, call := range []string{"weather", "reverse", "air", "forecast"} {
		if got := prov.count(call); got != 1 {
			t.Errorf("%s fetched %d times, want 1", call, got)
		}
	}
}

func TestSupersededRenderNeverWrites(t *testing.T) {
	prov := newFakeProvider()
	p := page.New(nil)
	r := NewRenderer(prov, p)

	release := prov.holdCurrent(silchar)
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- r.Render(context.Background(), silchar, false)
	}()

	// Wait until the first pass is blocked in its current-weather fetch.
	deadline := time.Now().Add(2 * time.Second)
	for prov.count("weather") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first render never fetched")
		}
		time.Sleep(time.Millisecond)
	}

	if err := r.Render(context.Background(), oslo, false); err != nil {
		t.Fatalf("second Render failed: %v", err)
	}
	secondSession := p.Snapshot().Session

	release()
	if err := <-firstDone; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("first Render error = %v, want ErrSuperseded", err)
	}

	s := p.Snapshot()
	if s.Session != secondSession || s.Current.Temperature != 59 || !s.Revealed || s.Err != "" {
		t.Errorf("superseded pass wrote the page: %+v", s)
	}
	if got := prov.count("forecast"); got != 1 {
		t.Errorf("forecast fetched %d times, want only the live pass", got)
	}
}

func TestFetchFailureShowsErrorState(t *testing.T) {
	prov := newFakeProvider()
	apiErr := &datasource.APIError{Status: 429, Code: "429", Message: "quota exceeded"}
	prov.errs["air"] = apiErr
	p := page.New(nil)
	r := NewRenderer(prov, p)

	err := r.Render(context.Background(), silchar, false)
	var got *datasource.APIError
	if !errors.As(err, &got) || got != apiErr {
		t.Fatalf("Render error = %v, want the API error", err)
	}

	s := p.Snapshot()
	if s.Loading {
		t.Error("loading indicator left on after failure")
	}
	if s.Err == "" || s.Highlights != nil {
		t.Errorf("unexpected page after failure: %+v", s)
	}
}

func TestCurrentWeatherFailureSkipsTheRest(t *testing.T) {
	prov := newFakeProvider()
	prov.errs["weather"] = errors.New("connection refused")
	p := page.New(nil)

	if err := NewRenderer(prov, p).Render(context.Background(), silchar, false); err == nil {
		t.Fatal("expected an error")
	}
	for _, call := range []string{"reverse", "air", "forecast"} {
		if got := prov.count(call); got != 0 {
			t.Errorf("%s fetched %d times after current weather failed", call, got)
		}
	}
	if s := p.Snapshot(); s.Loading || s.Err == "" {
		t.Errorf("unexpected page: %+v", s)
	}
}

func TestPlaceNameFailureLeavesLabelBlank(t *testing.T) {
	prov := newFakeProvider()
	prov.errs["reverse"] = &datasource.APIError{Status: 404, Code: "404", Message: "not found"}
	p := page.New(nil)

	if err := NewRenderer(prov, p).Render(context.Background(), silchar, false); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	s := p.Snapshot()
	if s.Err != "" || !s.Revealed || s.Loading {
		t.Errorf("unexpected page state: %+v", s)
	}
	if s.Location != "" || s.Current == nil || s.Highlights == nil || len(s.Daily) != 5 {
		t.Errorf("regions not populated around the blank label: %+v", s)
	}
}

func TestUnknownAQIFailsTheRender(t *testing.T) {
	prov := newFakeProvider()
	prov.aqi = 7
	p := page.New(nil)

	err := NewRenderer(prov, p).Render(context.Background(), silchar, false)
	if !errors.Is(err, format.ErrUnknownAQI) {
		t.Fatalf("Render error = %v, want ErrUnknownAQI", err)
	}
	if s := p.Snapshot(); s.Highlights != nil || s.Err == "" {
		t.Errorf("unexpected page: %+v", s)
	}
}

func TestNotFoundSupersedesInFlightRender(t *testing.T) {
	prov := newFakeProvider()
	p := page.New(nil)
	r := NewRenderer(prov, p)

	release := prov.holdCurrent(silchar)
	done := make(chan error, 1)
	go func() {
		done <- r.Render(context.Background(), silchar, false)
	}()
	deadline := time.Now().Add(2 * time.Second)
	for prov.count("weather") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("render never fetched")
		}
		time.Sleep(time.Millisecond)
	}

	r.NotFound(errors.New("unknown route"))
	release()

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Render error = %v, want ErrSuperseded", err)
	}
	if s := p.Snapshot(); !s.NotFound || s.Current != nil {
		t.Errorf("late completion overwrote the not-found state: %+v", s)
	}
}

func TestDailyStripIndices(t *testing.T) {
	fc := forecastOf(40)
	daily := DailyStrip(fc)
	if len(daily) != 5 {
		t.Fatalf("expected 5 days, got %d", len(daily))
	}
	for i, idx := range []int{7, 15, 23, 31, 39} {
		if want := format.Degrees(fc.Samples[idx].TemperatureMax); daily[i].TemperatureMax != want {
			t.Errorf("day %d max = %d, want sample %d (%d)", i, daily[i].TemperatureMax, idx, want)
		}
	}
	// sample 7 is 2023-11-15 21:00 UTC
	if daily[0].Weekday != "Wednesday" || daily[0].DayMonth != "15 Nov" {
		t.Errorf("unexpected first day: %+v", daily[0])
	}
	if daily[4].Weekday != "Sunday" || daily[4].DayMonth != "19 Nov" {
		t.Errorf("unexpected last day: %+v", daily[4])
	}

	if got := DailyStrip(forecastOf(7)); len(got) != 0 {
		t.Errorf("7 samples gave %d days, want 0", len(got))
	}
}

func TestHourlyStrip(t *testing.T) {
	hourly := HourlyStrip(forecastOf(40))
	if len(hourly) != 8 {
		t.Fatalf("expected 8 slots, got %d", len(hourly))
	}
	first := hourly[0]
	if first.Hour != "12 AM" || first.WindKmh != 36 || first.WindRotation != 90 || first.Temperature != 0 {
		t.Errorf("unexpected first slot: %+v", first)
	}
	if hourly[7].Hour != "9 PM" {
		t.Errorf("last slot hour = %q, want 9 PM", hourly[7].Hour)
	}

	if got := HourlyStrip(forecastOf(3)); len(got) != 3 {
		t.Errorf("3 samples gave %d slots", len(got))
	}
}
