package robot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the hardware configuration
type Config struct {
	Drive DriveConfig `json:"drive" yaml:"drive"`
	Link  LinkConfig  `json:"link" yaml:"link"`

	// InvertPitch flips the IMU pitch so that climbing reads positive.
	InvertPitch bool `json:"invert_pitch" yaml:"invert_pitch"`
}

// DriveConfig describes the two wheel servos on a feetech bus
type DriveConfig struct {
	Port    string `json:"port" yaml:"port"`
	LeftID  int    `json:"left_id" yaml:"left_id"`
	RightID int    `json:"right_id" yaml:"right_id"`

	// StepsPerUnit converts level speed units into servo velocity steps/s.
	StepsPerUnit float64 `json:"steps_per_unit,omitempty" yaml:"steps_per_unit,omitempty"`
	TrimLeft     float64 `json:"trim_left,omitempty" yaml:"trim_left,omitempty"`
	TrimRight    float64 `json:"trim_right,omitempty" yaml:"trim_right,omitempty"`
	// Reverse swaps forward and backward, e.g. for a board mounted backwards.
	Reverse bool `json:"reverse,omitempty" yaml:"reverse,omitempty"`
}

// LinkConfig describes the serial sensor link
type LinkConfig struct {
	Port     string `json:"port" yaml:"port"`
	BaudRate int    `json:"baud_rate,omitempty" yaml:"baud_rate,omitempty"`
}

// DefaultConfig returns the configuration of a stock robot.
func DefaultConfig() Config {
	return Config{
		Drive: DriveConfig{
			LeftID:       1,
			RightID:      2,
			StepsPerUnit: 40,
		},
		Link: LinkConfig{
			BaudRate: 115200,
		},
		InvertPitch: true,
	}
}

// IsConfigured returns true if both drive and sensor ports are set
func (c *Config) IsConfigured() bool {
	return c.Drive.Port != "" && c.Link.Port != ""
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFile decodes a JSON or YAML file (by extension) into v. Fields absent
// from the file keep the values already in v.
func LoadFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if isYAML(path) {
		err = yaml.Unmarshal(data, v)
	} else {
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// SaveFile encodes v as JSON or YAML (by extension) into path.
func SaveFile(path string, v any) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
