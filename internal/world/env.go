package world

import "fmt"

// Biome names a terrain/vegetation class. Spawn points carry one; spawn
// rules whitelist them.
type Biome string

const (
	BiomeMeadow   Biome = "meadow"
	BiomeForest   Biome = "forest"
	BiomeRiver    Biome = "river"
	BiomeMountain Biome = "mountain"
)

// Weather is the engine-wide weather condition for the current tick.
type Weather int

const (
	WeatherClear Weather = iota
	WeatherCloudy
	WeatherRain
	WeatherStorm
	WeatherSnow
	WeatherFog

	weatherCount
)

var weatherNames = [weatherCount]string{"clear", "cloudy", "rain", "storm", "snow", "fog"}

func (w Weather) String() string {
	if w < 0 || w >= weatherCount {
		return fmt.Sprintf("weather(%d)", int(w))
	}
	return weatherNames[w]
}

// AllWeathers returns every weather condition in enum order.
func AllWeathers() []Weather {
	out := make([]Weather, weatherCount)
	for i := range out {
		out[i] = Weather(i)
	}
	return out
}

func ParseWeather(name string) (Weather, error) {
	for i, n := range weatherNames {
		if n == name {
			return Weather(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weather %q", name)
}

// Season of the simulated year.
type Season int

const (
	SeasonSpring Season = iota
	SeasonSummer
	SeasonAutumn
	SeasonWinter

	seasonCount
)

var seasonNames = [seasonCount]string{"spring", "summer", "autumn", "winter"}

func (s Season) String() string {
	if s < 0 || s >= seasonCount {
		return fmt.Sprintf("season(%d)", int(s))
	}
	return seasonNames[s]
}

func ParseSeason(name string) (Season, error) {
	for i, n := range seasonNames {
		if n == name {
			return Season(i), nil
		}
	}
	return 0, fmt.Errorf("unknown season %q", name)
}

// TimeOfDay is the coarse daypart derived from the sim clock.
type TimeOfDay int

const (
	TimeDawn TimeOfDay = iota
	TimeDay
	TimeDusk
	TimeNight

	timeOfDayCount
)

var timeOfDayNames = [timeOfDayCount]string{"dawn", "day", "dusk", "night"}

func (t TimeOfDay) String() string {
	if t < 0 || t >= timeOfDayCount {
		return fmt.Sprintf("timeofday(%d)", int(t))
	}
	return timeOfDayNames[t]
}

func ParseTimeOfDay(name string) (TimeOfDay, error) {
	for i, n := range timeOfDayNames {
		if n == name {
			return TimeOfDay(i), nil
		}
	}
	return 0, fmt.Errorf("unknown time of day %q", name)
}

// TimeOfDayForHour maps an hour 0-23 onto a daypart.
func TimeOfDayForHour(hour int) TimeOfDay {
	switch {
	case hour >= 5 && hour < 8:
		return TimeDawn
	case hour >= 8 && hour < 18:
		return TimeDay
	case hour >= 18 && hour < 21:
		return TimeDusk
	default:
		return TimeNight
	}
}
