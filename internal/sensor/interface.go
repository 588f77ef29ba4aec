package sensor

// Domain describes the numeric domain a sensor emits values in.
type Domain int

const (
	// Continuous sensors emit floats within [Min, Max].
	Continuous Domain = iota
	// Binary sensors emit 0 or 1 only.
	Binary
)

// Kind identifies a sensor type. The string value doubles as the telemetry
// key for readings of that type.
type Kind string

// Spec holds the immutable behavioural parameters for one sensor type.
// Specs are defined once per (machine-type, sensor-type) combination in the
// catalog and never mutated at runtime.
type Spec struct {
	Name          Kind
	Unit          string
	Min           float64
	Max           float64
	Noise         float64 // gaussian sigma applied per tick, in sensor units
	Trend         float64 // baseline drift per second, in sensor units
	AnomalyProb   float64 // per-tick trigger probability
	CooldownTicks int     // ticks an anomaly takes to decay
	Domain        Domain
	Safety        bool // binary sensor that rests in the safe (1) state
}

// State is the mutable per-instance state of one sensor on one machine.
// It is exclusively owned by that machine instance and mutated only by its
// own generation step.
type State struct {
	Baseline float64 // current drifting baseline; stable 0/1 state for binary
	Offset   float64 // active anomaly excursion, decays toward zero
	Cooldown int     // remaining decay ticks; no re-trigger while nonzero
	Value    float64 // last emitted value
}

// Reading is an immutable value object produced fresh each tick.
type Reading struct {
	MachineID string  `json:"machine_id"`
	Sensor    string  `json:"sensor"`
	Unit      string  `json:"unit"`
	Value     float64 `json:"value"`
	Timestamp int64   `json:"ts"` // unix milliseconds
}

// Overrides carries optional per-sensor-type parameter overrides from
// configuration. Zero maps mean no overrides.
type Overrides struct {
	Noise   map[Kind]float64
	Anomaly map[Kind]float64
}

// Apply returns a copy of spec with any configured overrides applied.
func (o Overrides) Apply(spec Spec) Spec {
	if v, ok := o.Noise[spec.Name]; ok && v >= 0 {
		spec.Noise = v
	}
	if v, ok := o.Anomaly[spec.Name]; ok && v >= 0 && v <= 1 {
		spec.AnomalyProb = v
	}

	return spec
}
