package format

import (
	"errors"
	"fmt"
)

// ErrUnknownAQI is returned for an index outside the 1-5 scale
var ErrUnknownAQI = errors.New("unknown air quality index")

// AQILevel is the badge text and tooltip for an air quality index
type AQILevel struct {
	Level   string
	Message string
}

// aqiLevels is the published badge table, wording included.
var aqiLevels = map[int]AQILevel{
	1: {
		Level:   "Good",
		Message: "Air quality is considered satisfactory, and air pollution poses little or no risk",
	},
	2: {
		Level:   "Fair",
		Message: "Air quality is acceptable; however, for some pollutants there may be a moderate health consern for a very small number of people who are unusally sensitive to air pollution",
	},
	3: {
		Level:   "Moderate",
		Message: "Members of sensitive group may experience health effects. The general public is not likely to be affected",
	},
	4: {
		Level:   "Poor",
		Message: "Everyone may begin to experience health effects; member of sensitive groups may experience more serious health effects",
	},
	5: {
		Level:   "Very Poor",
		Message: "Health warnings to emergency conditions. The entire population is more likely to be affected",
	},
}

// AQIText maps an index on the 1-5 scale to its level
func AQIText(index int) (AQILevel, error) {
	level, ok := aqiLevels[index]
	if !ok {
		return AQILevel{}, fmt.Errorf("%w: %d", ErrUnknownAQI, index)
	}
	return level, nil
}
