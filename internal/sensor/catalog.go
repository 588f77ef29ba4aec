package sensor

import "codeberg.org/vasker/fleetsim/internal/errors"

// Sensor kinds. The string values are the keys used in telemetry payloads.
const (
	// Temperature
	RTDPT100             Kind = "RTD_PT100"
	ThermocoupleKType    Kind = "THERMOCOUPLE_K_TYPE"
	ThermocoupleJType    Kind = "THERMOCOUPLE_J_TYPE"
	InfraredTemp         Kind = "INFRARED_TEMP"
	Thermistor           Kind = "THERMISTOR"
	BimetallicTempSwitch Kind = "BIMETALLIC_TEMP_SWITCH"
	ThermalImaging       Kind = "THERMAL_IMAGING"

	// Vibration and motion
	PiezoAccelerometer      Kind = "PIEZOELECTRIC_ACCELEROMETER"
	RotaryEncoder           Kind = "ROTARY_ENCODER"
	Gyroscope               Kind = "GYROSCOPE"
	MEMSAccelerometer       Kind = "MEMS_ACCELEROMETER"
	ProximityProbe          Kind = "PROXIMITY_PROBE"
	StrainGauge             Kind = "STRAIN_GAUGE"
	IndustrialAccelerometer Kind = "INDUSTRIAL_ACCELEROMETER"
	VelocitySensor          Kind = "VELOCITY_SENSOR"

	// Audio
	IndustrialMicrophone Kind = "INDUSTRIAL_MICROPHONE"
	AcousticEmission     Kind = "ACOUSTIC_EMISSION"

	// Level
	CapacitiveLevel  Kind = "CAPACITIVE_LEVEL"
	UltrasonicLevel  Kind = "ULTRASONIC_LEVEL"
	FloatLevelSwitch Kind = "FLOAT_LEVEL_SWITCH"
	RadarLevel       Kind = "RADAR_LEVEL"
	HydrostaticLevel Kind = "HYDROSTATIC_LEVEL"

	// Power and electrical
	CurrentTransformer Kind = "CURRENT_TRANSFORMER"
	PowerMeter         Kind = "POWER_METER"

	// Position and distance
	LinearEncoder            Kind = "LINEAR_ENCODER"
	AbsoluteEncoder          Kind = "ABSOLUTE_ENCODER"
	LVDT                     Kind = "LVDT"
	MagnetostrictivePosition Kind = "MAGNETOSTRICTIVE_POSITION"
	LimitSwitch              Kind = "LIMIT_SWITCH"
	LaserDistance            Kind = "LASER_DISTANCE"
	Photoelectric            Kind = "PHOTOELECTRIC"

	// Pressure and flow
	PressureTransducer   Kind = "PRESSURE_TRANSDUCER"
	ElectromagneticFlow  Kind = "ELECTROMAGNETIC_FLOW"
	DifferentialPressure Kind = "DIFFERENTIAL_PRESSURE"
	StrainGaugePressure  Kind = "STRAIN_GAUGE_PRESSURE"
	PiezoPressure        Kind = "PIEZOELECTRIC_PRESSURE"
	BourdonTubeGauge     Kind = "BOURDON_TUBE_GAUGE"
	BourdonPressureGauge Kind = "BOURDON_PRESSURE_GAUGE"
	DiaphragmPressure    Kind = "DIAPHRAGM_PRESSURE"
	TurbineFlow          Kind = "TURBINE_FLOW"
	UltrasonicFlow       Kind = "ULTRASONIC_FLOW"

	// Force and load
	LoadCell          Kind = "LOAD_CELL"
	PiezoForce        Kind = "PIEZOELECTRIC_FORCE"
	BeltScaleLoadCell Kind = "BELT_SCALE_LOAD_CELL"

	// Speed
	Tachometer         Kind = "TACHOMETER"
	HallEffect         Kind = "HALL_EFFECT"
	IncrementalEncoder Kind = "INCREMENTAL_ENCODER"

	// Detection
	InductiveProximity Kind = "INDUCTIVE_PROXIMITY"
	LaserScanner       Kind = "LASER_SCANNER"
	UltrasonicSensor   Kind = "ULTRASONIC_SENSOR"

	// Safety
	EmergencyStop Kind = "EMERGENCY_STOP"
	LightCurtain  Kind = "LIGHT_CURTAIN"
	SafetyMat     Kind = "SAFETY_MAT"
)

const (
	defaultNoiseFraction = 0.025 // sigma as a fraction of the declared range
	defaultAnomalyProb   = 0.01
	defaultToggleProb    = 0.05 // non-safety binary sensors change state more often
	defaultSafetyProb    = 0.01 // safety trips are rare
	defaultCooldownTicks = 5
)

// continuous builds a Spec for a float-valued sensor. Noise defaults to a
// fixed fraction of the declared range.
func continuous(name Kind, unit string, minVal, maxVal, trend float64) Spec {
	return Spec{
		Name:          name,
		Unit:          unit,
		Min:           minVal,
		Max:           maxVal,
		Noise:         (maxVal - minVal) * defaultNoiseFraction,
		Trend:         trend,
		AnomalyProb:   defaultAnomalyProb,
		CooldownTicks: defaultCooldownTicks,
		Domain:        Continuous,
	}
}

// binary builds a Spec for a 0/1 switch sensor.
func binary(name Kind) Spec {
	return Spec{
		Name:          name,
		Unit:          "binary",
		Min:           0,
		Max:           1,
		AnomalyProb:   defaultToggleProb,
		CooldownTicks: defaultCooldownTicks,
		Domain:        Binary,
	}
}

// safety builds a Spec for a binary sensor that rests in the safe (1) state
// and trips to 0 only while an anomaly is active.
func safety(name Kind) Spec {
	spec := binary(name)
	spec.AnomalyProb = defaultSafetyProb
	spec.Safety = true

	return spec
}

var catalog = buildCatalog()

func buildCatalog() map[Kind]Spec {
	specs := []Spec{
		// Temperature sensors drift slowly upward while the machine runs.
		continuous(RTDPT100, "°C", 20, 80, 0.02),
		continuous(ThermocoupleKType, "°C", 25, 90, 0.02),
		continuous(ThermocoupleJType, "°C", 20, 85, 0.02),
		continuous(InfraredTemp, "°C", 22, 78, 0.02),
		continuous(Thermistor, "°C", 25, 75, 0.02),
		continuous(BimetallicTempSwitch, "°C", 30, 70, 0.02),
		continuous(ThermalImaging, "°C", 20, 95, 0.02),

		continuous(PiezoAccelerometer, "mm/s", 0.1, 15, 0),
		continuous(RotaryEncoder, "RPM", 50, 2000, 0),
		continuous(Gyroscope, "rad/s", 0.01, 5, 0),
		continuous(MEMSAccelerometer, "mm/s²", 0.05, 10, 0),
		continuous(ProximityProbe, "mm", 0.5, 5, 0),
		continuous(StrainGauge, "µε", 10, 500, 0),
		continuous(IndustrialAccelerometer, "mm/s²", 0.2, 20, 0),
		continuous(VelocitySensor, "mm/s", 0.5, 25, 0),

		continuous(IndustrialMicrophone, "dB", 50, 95, 0),
		continuous(AcousticEmission, "dB", 40, 90, 0),

		// Tank levels drain slowly between refills.
		continuous(CapacitiveLevel, "%", 10, 90, -0.01),
		continuous(UltrasonicLevel, "%", 5, 95, -0.01),
		continuous(RadarLevel, "%", 0, 100, -0.01),
		continuous(HydrostaticLevel, "%", 5, 95, -0.01),

		continuous(CurrentTransformer, "A", 5, 80, 0),
		continuous(PowerMeter, "kW", 50, 200, 0),

		continuous(LinearEncoder, "mm", 0, 1000, 0),
		continuous(AbsoluteEncoder, "degrees", 0, 360, 0),
		continuous(LVDT, "mm", 0, 100, 0),
		continuous(MagnetostrictivePosition, "mm", 0, 500, 0),
		continuous(LaserDistance, "mm", 10, 5000, 0),

		continuous(PressureTransducer, "bar", 0, 100, 0),
		continuous(ElectromagneticFlow, "L/min", 5, 200, 0),
		continuous(DifferentialPressure, "bar", 0, 25, 0),
		continuous(StrainGaugePressure, "bar", 0, 150, 0),
		continuous(PiezoPressure, "bar", 5, 120, 0),
		continuous(BourdonTubeGauge, "bar", 0, 100, 0),
		continuous(BourdonPressureGauge, "bar", 0, 100, 0),
		continuous(DiaphragmPressure, "bar", 0, 50, 0),
		continuous(TurbineFlow, "L/min", 10, 300, 0),
		continuous(UltrasonicFlow, "L/min", 5, 250, 0),

		continuous(LoadCell, "kg", 0, 5000, 0),
		continuous(PiezoForce, "N", 0, 10000, 0),
		continuous(BeltScaleLoadCell, "kg", 0, 2000, 0),

		continuous(Tachometer, "RPM", 0, 3000, 0),
		continuous(IncrementalEncoder, "pulses/rev", 0, 5000, 0),

		continuous(LaserScanner, "mm", 50, 10000, 0),
		continuous(UltrasonicSensor, "mm", 100, 5000, 0),

		binary(FloatLevelSwitch),
		binary(LimitSwitch),
		binary(Photoelectric),
		binary(HallEffect),
		binary(InductiveProximity),

		safety(EmergencyStop),
		safety(LightCurtain),
		safety(SafetyMat),
	}

	m := make(map[Kind]Spec, len(specs))
	for _, spec := range specs {
		m[spec.Name] = spec
	}

	return m
}

// Lookup returns the catalog Spec for the given sensor kind.
func Lookup(kind Kind) (Spec, error) {
	spec, ok := catalog[kind]
	if !ok {
		return Spec{}, errors.New().WithData(errors.ErrUnknownSensor, string(kind))
	}

	return spec, nil
}
