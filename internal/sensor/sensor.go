// Package sensor produces plausible sensor readings for the simulation.
package sensor

import (
	"math"
	"math/rand/v2"
	"sync"
)

// Profile bounds and shapes the readings of one kind of sensor.
type Profile struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Noise    float64 `json:"noise"`
	Decimals int     `json:"decimals"`
	Default  float64 `json:"default"`
	Unit     string  `json:"unit"`
}

// FallbackValue is the initial reading of a sensor with no profile.
const FallbackValue = 25

var profiles = map[string]Profile{
	"temp-humidity-sensor": {Min: -10, Max: 50, Noise: 2, Decimals: 1, Default: 25, Unit: "°C"},
	"light-sensor":         {Min: 0, Max: 1000, Noise: 50, Decimals: 0, Default: 500, Unit: "lux"},
	"sound-sensor":         {Min: 0, Max: 120, Noise: 10, Decimals: 0, Default: 40, Unit: "dB"},
	"infrared-sensor":      {Min: 0, Max: 1, Noise: 0, Decimals: 0, Default: 0, Unit: ""},
}

// Profiles returns a copy of the built-in profiles keyed by definition id.
func Profiles() map[string]Profile {
	out := make(map[string]Profile, len(profiles))
	for k, v := range profiles {
		out[k] = v
	}
	return out
}

// ProfileFor returns the profile for a sensor definition.
func ProfileFor(definitionID string) (Profile, bool) {
	p, ok := profiles[definitionID]
	return p, ok
}

// InitialValue is the reading a freshly placed sensor starts with.
func InitialValue(definitionID string) float64 {
	if p, ok := profiles[definitionID]; ok {
		return p.Default
	}
	return FallbackValue
}

// RandSource yields uniform values in [0, 1). *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

// Next perturbs current by a uniform delta in [-Noise, +Noise], clamps the
// result to [Min, Max] and rounds it to Decimals places.
func Next(current float64, p Profile, rnd RandSource) float64 {
	delta := (rnd.Float64()*2 - 1) * p.Noise
	v := math.Min(p.Max, math.Max(p.Min, current+delta))
	return round(v, p.Decimals)
}

func round(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

// Fluctuator applies Next with a shared random source. It is safe for
// concurrent use.
type Fluctuator struct {
	mu  sync.Mutex
	rnd RandSource
}

// NewFluctuator returns a Fluctuator seeded for reproducible output.
func NewFluctuator(seed uint64) *Fluctuator {
	return &Fluctuator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewFluctuatorWithSource wraps an existing random source.
func NewFluctuatorWithSource(rnd RandSource) *Fluctuator {
	return &Fluctuator{rnd: rnd}
}

// Next returns the next reading for a sensor of the given definition.
// Sensors without a profile keep their current value.
func (f *Fluctuator) Next(definitionID string, current float64) float64 {
	p, ok := profiles[definitionID]
	if !ok {
		return current
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return Next(current, p, f.rnd)
}
