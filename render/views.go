package render

import (
	"strconv"
	"time"

	"weather-page/format"
	"weather-page/models"
	"weather-page/page"
)

// Forecast strip shape: 8 samples of 3 hours cover a day
const (
	hourlySlots  = 8
	dailyFirst   = 7
	dailyStride  = 8
	pollutantSig = 3
)

// NewCurrentCard builds the "now" card
func NewCurrentCard(cw models.CurrentWeather) page.CurrentCard {
	return page.CurrentCard{
		Temperature: format.Degrees(cw.Temperature),
		Icon:        cw.Icon,
		Description: cw.Description,
		Date:        format.Date(cw.Observed, cw.Timezone),
	}
}

// LocationLabel renders "<name>, <country>"
func LocationLabel(l models.Location) string {
	return l.Name + ", " + l.Country
}

// NewHighlights builds the highlights region. An AQI outside 1-5 is an error.
func NewHighlights(cw models.CurrentWeather, aq models.AirQuality) (page.Highlights, error) {
	level, err := format.AQIText(aq.AQI)
	if err != nil {
		return page.Highlights{}, err
	}

	return page.Highlights{
		Pollutants: []page.Pollutant{
			{Label: "PM2.5", Value: format.Precision(aq.Components.PM25, pollutantSig)},
			{Label: "SO2", Value: format.Precision(aq.Components.SO2, pollutantSig)},
			{Label: "NO2", Value: format.Precision(aq.Components.NO2, pollutantSig)},
			{Label: "O3", Value: format.Precision(aq.Components.O3, pollutantSig)},
		},
		AQI:        aq.AQI,
		AQILevel:   level.Level,
		AQIMessage: level.Message,
		Sunrise:    format.Time(cw.Sunrise, cw.Timezone),
		Sunset:     format.Time(cw.Sunset, cw.Timezone),
		Humidity:   strconv.FormatFloat(cw.Humidity, 'f', -1, 64),
		Pressure:   strconv.FormatFloat(cw.Pressure, 'f', -1, 64),
		Visibility: format.Kilometers(cw.Visibility),
		FeelsLike:  format.Degrees(cw.FeelsLike),
	}, nil
}

// HourlyStrip takes the first 8 samples, roughly the next 24 hours
func HourlyStrip(fc models.Forecast) []page.HourlySlot {
	n := min(len(fc.Samples), hourlySlots)
	slots := make([]page.HourlySlot, 0, n)
	for _, s := range fc.Samples[:n] {
		slots = append(slots, page.HourlySlot{
			Hour:         format.Hours(s.Time, fc.Timezone),
			Icon:         s.Icon,
			Description:  s.Description,
			Temperature:  format.Degrees(s.Temperature),
			WindKmh:      format.Degrees(format.MpsToKmh(s.WindSpeed)),
			WindRotation: s.WindDeg - 180,
		})
	}
	return slots
}

// DailyStrip takes every 8th sample starting at index 7, one per day at about the
// same hour. Dates are read in UTC, as the API's dt_txt is.
func DailyStrip(fc models.Forecast) []page.DailySlot {
	var slots []page.DailySlot
	for i := dailyFirst; i < len(fc.Samples); i += dailyStride {
		s := fc.Samples[i]
		t := time.Unix(s.Time, 0).UTC()
		slots = append(slots, page.DailySlot{
			Icon:           s.Icon,
			Description:    s.Description,
			TemperatureMax: format.Degrees(s.TemperatureMax),
			Weekday:        format.WeekdayNames[t.Weekday()],
			DayMonth:       format.DayMonth(t),
		})
	}
	return slots
}
