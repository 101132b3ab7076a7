package onboard

import (
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/CodedInternet/gotrifan/calcs"
	"github.com/Masterminds/semver"
	"gopkg.in/yaml.v2"
)

// CONFIG_VERSION is the range of config file versions this build understands.
const CONFIG_VERSION = "~1"

type TrifanConfig struct {
	Version   string         `yaml:"version"`
	Timing    TimingConfig   `yaml:"timing"`
	Setpoints SetpointConfig `yaml:"setpoints"`
	Limits    LimitConfig    `yaml:"limits"`
	Model     ModelConfig    `yaml:"model"`
}

type TimingConfig struct {
	Simulation  time.Duration `yaml:"simulation"`
	StatusLog   time.Duration `yaml:"status_log"`
	LandingPoll time.Duration `yaml:"landing_poll"`
	Telemetry   time.Duration `yaml:"telemetry"`
}

type SetpointConfig struct {
	Takeoff      int           `yaml:"takeoff"`
	Stable       int           `yaml:"stable"`
	ThrottleStep int           `yaml:"throttle_step"`
	TiltStep     int           `yaml:"tilt_step"`
	ElevonStep   int           `yaml:"elevon_step"`
	Bands        []LandingBand `yaml:"bands"`
}

// Range is an inclusive [Min, Max] interval in degrees.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

func (r Range) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// LimitConfig bounds the incremental nudge commands only. Absolute setpoints
// are applied as given.
type LimitConfig struct {
	Tilt       Range `yaml:"tilt"`
	Elevon     Range `yaml:"elevon"`
	MotorFloor int   `yaml:"motor_floor"`
}

type ModelConfig struct {
	ClimbGain       float64 `yaml:"climb_gain"`
	LiftRatio       float64 `yaml:"lift_ratio"`
	ElevonGain      float64 `yaml:"elevon_gain"`
	InitialAltitude float64 `yaml:"initial_altitude"`
}

func DefaultConfig() TrifanConfig {
	return TrifanConfig{
		Version: "1.0.0",
		Timing: TimingConfig{
			Simulation:  SIM_INTERVAL,
			StatusLog:   3 * time.Second,
			LandingPoll: LANDING_POLL,
			Telemetry:   time.Second / 2,
		},
		Setpoints: SetpointConfig{
			Takeoff:      3500,
			Stable:       3000,
			ThrottleStep: 250,
			TiltStep:     10,
			ElevonStep:   3,
			Bands: []LandingBand{
				{Above: 50, Speed: 2500},
				{Above: 20, Speed: 2750},
				{Above: 0, Speed: 2900},
			},
		},
		Limits: LimitConfig{
			Tilt:       Range{Min: TILT_HOVER, Max: TILT_FORWARD},
			Elevon:     Range{Min: 0, Max: 90},
			MotorFloor: 0,
		},
		Model: ModelConfig{
			ClimbGain:  0.01,
			LiftRatio:  1,
			ElevonGain: 0.01,
		},
	}
}

// ParseConfig overlays data on the defaults and validates the result.
func ParseConfig(data []byte) (config TrifanConfig, err error) {
	config = DefaultConfig()
	if err = yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("unable to unmarshal yaml: %w", err)
	}

	err = config.Validate()
	return
}

// LoadConfig reads filename. A missing file yields the defaults.
func LoadConfig(filename string) (config TrifanConfig, err error) {
	data, err := ioutil.ReadFile(filename)
	if os.IsNotExist(err) {
		config = DefaultConfig()
		return config, config.Validate()
	}
	if err != nil {
		return config, fmt.Errorf("unable to read yaml file: %w", err)
	}

	return ParseConfig(data)
}

func (c TrifanConfig) Validate() error {
	version, err := semver.NewVersion(c.Version)
	if err != nil {
		return fmt.Errorf("config version %q: %w", c.Version, err)
	}
	constraint, err := semver.NewConstraint(CONFIG_VERSION)
	if err != nil {
		return err
	}
	if !constraint.Check(version) {
		return fmt.Errorf("unable to use config version %s - require %s", c.Version, CONFIG_VERSION)
	}

	timings := map[string]time.Duration{
		"simulation":   c.Timing.Simulation,
		"status_log":   c.Timing.StatusLog,
		"landing_poll": c.Timing.LandingPoll,
		"telemetry":    c.Timing.Telemetry,
	}
	for name, d := range timings {
		if d <= 0 {
			return fmt.Errorf("timing %s must be positive, got %v", name, d)
		}
	}

	if len(c.Setpoints.Bands) == 0 {
		return fmt.Errorf("at least one landing band must be configured")
	}
	for _, b := range c.Setpoints.Bands {
		if b.Above < 0 || b.Speed < 0 {
			return fmt.Errorf("invalid landing band %+v", b)
		}
	}

	for name, r := range map[string]Range{"tilt": c.Limits.Tilt, "elevon": c.Limits.Elevon} {
		if r.Min > r.Max {
			return fmt.Errorf("invalid %s limits: min=%d max=%d", name, r.Min, r.Max)
		}
	}

	if c.Model.InitialAltitude < 0 {
		return fmt.Errorf("initial altitude must not be negative")
	}

	return nil
}

func (c TrifanConfig) Airframe() calcs.Airframe {
	return calcs.Airframe{
		ClimbGain:   c.Model.ClimbGain,
		LiftRatio:   c.Model.LiftRatio,
		ElevonGain:  c.Model.ElevonGain,
		StableSpeed: float64(c.Setpoints.Stable),
	}
}
