package sensor

import (
	"math"
	"math/rand"

	"codeberg.org/vasker/fleetsim/internal/errors"
	"codeberg.org/vasker/fleetsim/internal/logger"
)

const (
	// Anomaly excursions start at a uniform multiple of the noise sigma and
	// decay geometrically back toward baseline over the cooldown window.
	anomalyMinScale = 3.0
	anomalyMaxScale = 5.0
	anomalyDecay    = 0.6
)

// NewState initializes per-instance state for one sensor. The randomness
// comes from the caller's source so fleets are reproducible for a fixed seed.
func NewState(spec Spec, rng *rand.Rand) State {
	if spec.Domain == Binary {
		initial := float64(rng.Intn(2))
		if spec.Safety {
			initial = 1
		}

		return State{Baseline: initial, Value: initial}
	}

	baseline := spec.Min + rng.Float64()*(spec.Max-spec.Min)

	return State{Baseline: baseline, Value: round2(baseline)}
}

// Next advances one sensor by one tick of dt seconds and returns the updated
// state together with the emitted value. The state is passed and returned by
// value; the model itself holds nothing.
//
// Continuous sensors drift by a bounded random walk with optional trend, plus
// a decaying anomaly offset. Binary sensors flip state instead; safety
// sensors trip to 0 and recover once the cooldown expires. Anomalies never
// re-trigger while a cooldown is active.
func Next(state State, spec Spec, rng *rand.Rand, dt float64) (State, float64) {
	if spec.Domain == Binary {
		return nextBinary(state, spec, rng)
	}

	return nextContinuous(state, spec, rng, dt)
}

func nextContinuous(state State, spec Spec, rng *rand.Rand, dt float64) (State, float64) {
	state.Baseline = clamp(state.Baseline+spec.Trend*dt+rng.NormFloat64()*spec.Noise, spec.Min, spec.Max)

	if state.Cooldown > 0 {
		state.Offset *= anomalyDecay
		state.Cooldown--
		if state.Cooldown == 0 {
			state.Offset = 0
		}
	} else if spec.AnomalyProb > 0 && rng.Float64() < spec.AnomalyProb {
		magnitude := (anomalyMinScale + rng.Float64()*(anomalyMaxScale-anomalyMinScale)) * spec.Noise
		if rng.Float64() < 0.5 {
			magnitude = -magnitude
		}
		state.Offset = magnitude
		state.Cooldown = spec.CooldownTicks
	}

	value := state.Baseline + state.Offset
	if math.IsNaN(value) || math.IsInf(value, 0) {
		// A non-finite value is a model defect. Clamp to mid-range and
		// reset rather than propagate.
		logger.ErrorWithCode(errors.New().WithData(errors.ErrGeneration, string(spec.Name))).
			Float64("value", value).
			Msg("non-finite sensor value clamped")
		state.Baseline = (spec.Min + spec.Max) / 2
		state.Offset = 0
		state.Cooldown = 0
		value = state.Baseline
	}

	state.Value = round2(clamp(value, spec.Min, spec.Max))

	return state, state.Value
}

func nextBinary(state State, spec Spec, rng *rand.Rand) (State, float64) {
	if state.Cooldown > 0 {
		state.Cooldown--
		if state.Cooldown == 0 && spec.Safety {
			state.Baseline = 1
		}
	} else if spec.AnomalyProb > 0 && rng.Float64() < spec.AnomalyProb {
		if spec.Safety {
			state.Baseline = 0
		} else {
			state.Baseline = 1 - state.Baseline
		}
		state.Cooldown = spec.CooldownTicks
	}

	state.Value = state.Baseline

	return state, state.Value
}

func clamp(value, minValue, maxValue float64) float64 {
	if value < minValue {
		return minValue
	}

	if value > maxValue {
		return maxValue
	}

	return value
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
