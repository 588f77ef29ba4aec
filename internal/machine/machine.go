package machine

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"codeberg.org/vasker/fleetsim/internal/errors"
	"codeberg.org/vasker/fleetsim/internal/sensor"
)

// Type tags one of the supported machine classes.
type Type string

const (
	Mixer          Type = "MIXER"
	CNCMachine     Type = "CNC_MACHINE"
	HydraulicPress Type = "HYDRAULIC_PRESS"
	ConveyorSystem Type = "CONVEYOR_SYSTEM"
	PumpSystem     Type = "PUMP_SYSTEM"
)

// Types lists all machine classes in their canonical fleet order.
var Types = []Type{Mixer, CNCMachine, HydraulicPress, ConveyorSystem, PumpSystem}

// typeSensors declares the fixed sensor complement of each machine class,
// in emission order. The set is fully populated at instance creation and
// never changes afterwards.
var typeSensors = map[Type][]sensor.Kind{
	Mixer: {
		sensor.RTDPT100,
		sensor.ThermocoupleKType,
		sensor.InfraredTemp,
		sensor.PiezoAccelerometer,
		sensor.RotaryEncoder,
		sensor.Gyroscope,
		sensor.IndustrialMicrophone,
		sensor.CapacitiveLevel,
		sensor.UltrasonicLevel,
		sensor.CurrentTransformer,
		sensor.PowerMeter,
	},
	CNCMachine: {
		sensor.RTDPT100,
		sensor.ThermocoupleJType,
		sensor.ThermalImaging,
		sensor.MEMSAccelerometer,
		sensor.ProximityProbe,
		sensor.StrainGauge,
		sensor.LinearEncoder,
		sensor.AbsoluteEncoder,
		sensor.LVDT,
		sensor.PressureTransducer,
		sensor.ElectromagneticFlow,
		sensor.DifferentialPressure,
		sensor.FloatLevelSwitch,
		sensor.CapacitiveLevel,
		sensor.LaserDistance,
		sensor.Photoelectric,
		sensor.AcousticEmission,
	},
	HydraulicPress: {
		sensor.StrainGaugePressure,
		sensor.PiezoPressure,
		sensor.BourdonTubeGauge,
		sensor.RTDPT100,
		sensor.Thermistor,
		sensor.BimetallicTempSwitch,
		sensor.LVDT,
		sensor.MagnetostrictivePosition,
		sensor.LimitSwitch,
		sensor.LoadCell,
		sensor.StrainGauge,
		sensor.PiezoForce,
		sensor.IndustrialAccelerometer,
		sensor.VelocitySensor,
	},
	ConveyorSystem: {
		sensor.Tachometer,
		sensor.HallEffect,
		sensor.IncrementalEncoder,
		sensor.Photoelectric,
		sensor.InductiveProximity,
		sensor.LaserScanner,
		sensor.UltrasonicSensor,
		sensor.BeltScaleLoadCell,
		sensor.StrainGauge,
		sensor.EmergencyStop,
		sensor.LightCurtain,
		sensor.SafetyMat,
	},
	PumpSystem: {
		sensor.ElectromagneticFlow,
		sensor.TurbineFlow,
		sensor.UltrasonicFlow,
		sensor.BourdonPressureGauge,
		sensor.DiaphragmPressure,
		sensor.DifferentialPressure,
		sensor.RadarLevel,
		sensor.HydrostaticLevel,
		sensor.FloatLevelSwitch,
		sensor.RTDPT100,
		sensor.MEMSAccelerometer,
		sensor.ProximityProbe,
	},
}

// ParseType validates a machine type string, e.g. from the CLI filter flag.
func ParseType(raw string) (Type, error) {
	typ := Type(raw)
	if _, ok := typeSensors[typ]; !ok {
		return "", errors.New().WithData(errors.ErrInvalidMachineType, raw)
	}

	return typ, nil
}

// SensorKinds returns the declared sensor complement for a machine class.
func SensorKinds(typ Type) []sensor.Kind {
	kinds := typeSensors[typ]
	out := make([]sensor.Kind, len(kinds))
	copy(out, kinds)

	return out
}

// Payload bundles all readings of one machine for one tick.
type Payload struct {
	DeviceID  string
	Type      Type
	Timestamp int64 // unix milliseconds
	Readings  []sensor.Reading
	Values    map[string]float64
}

// Instance is one virtual machine. It exclusively owns the sensor states it
// was created with; Tick is the only mutator and must not be called
// concurrently for the same instance.
type Instance struct {
	ID     string
	Type   Type
	specs  []sensor.Spec
	states []sensor.State
	rng    *rand.Rand
}

// NewInstance creates a machine with the full sensor set its type declares.
// Index is 1-based and becomes part of the device ID (MIXER_001). Each
// instance derives its own rand source from the fleet seed and its ID, so
// instances can tick in parallel while staying reproducible.
func NewInstance(typ Type, index int, seed int64, overrides sensor.Overrides) (*Instance, error) {
	errFactory := errors.New()

	kinds, ok := typeSensors[typ]
	if !ok {
		return nil, errFactory.WithData(errors.ErrInvalidMachineType, string(typ))
	}
	if index < 1 {
		return nil, errFactory.WithData(errors.ErrInvalidArgument, "machine index must be >= 1")
	}

	id := fmt.Sprintf("%s_%03d", typ, index)
	rng := rand.New(rand.NewSource(derivedSeed(seed, id)))

	m := &Instance{
		ID:     id,
		Type:   typ,
		specs:  make([]sensor.Spec, 0, len(kinds)),
		states: make([]sensor.State, 0, len(kinds)),
		rng:    rng,
	}

	for _, kind := range kinds {
		spec, err := sensor.Lookup(kind)
		if err != nil {
			return nil, err
		}
		spec = overrides.Apply(spec)
		m.specs = append(m.specs, spec)
		m.states = append(m.states, sensor.NewState(spec, rng))
	}

	return m, nil
}

// Tick advances every sensor of the machine by dt seconds and assembles the
// payload for this tick. Sensors are evaluated in declaration order and
// evolve independently.
//
// Extension point: a correlated-anomaly policy (e.g. high vibration raising
// temperature) would hook in here, between the per-sensor steps and payload
// assembly, without reshaping Spec or State.
func (m *Instance) Tick(ts time.Time, dt float64) Payload {
	tsMillis := ts.UnixMilli()
	readings := make([]sensor.Reading, 0, len(m.specs))
	values := make(map[string]float64, len(m.specs))

	for i, spec := range m.specs {
		state, value := sensor.Next(m.states[i], spec, m.rng, dt)
		m.states[i] = state

		readings = append(readings, sensor.Reading{
			MachineID: m.ID,
			Sensor:    string(spec.Name),
			Unit:      spec.Unit,
			Value:     value,
			Timestamp: tsMillis,
		})
		values[string(spec.Name)] = value
	}

	return Payload{
		DeviceID:  m.ID,
		Type:      m.Type,
		Timestamp: tsMillis,
		Readings:  readings,
		Values:    values,
	}
}

// Specs returns the machine's sensor specs in declaration order.
func (m *Instance) Specs() []sensor.Spec {
	specs := make([]sensor.Spec, len(m.specs))
	copy(specs, m.specs)

	return specs
}

func derivedSeed(seed int64, id string) int64 {
	h := fnv.New64a()
	h.Write([]byte(id))

	return seed ^ int64(h.Sum64())
}
