// Package level lists the levels and demos, lets the operator pick one with
// the touch pads and runs it.
package level

import (
	"fmt"
	"os"
	"strings"

	"github.com/gwillem/alvik/pkg/behavior"
	"github.com/gwillem/alvik/pkg/robot"
)

// Config is the robot configuration plus per-level tuning.
type Config struct {
	robot.Config `yaml:",inline"`

	WallFollow behavior.WallFollowConfig `json:"wall_follow" yaml:"wall_follow"`
	Balance    behavior.BalanceConfig    `json:"balance" yaml:"balance"`
	Tiles      behavior.TileConfig       `json:"tiles" yaml:"tiles"`
}

// DefaultConfig returns stock hardware settings and competition tuning.
func DefaultConfig() Config {
	return Config{
		Config:     robot.DefaultConfig(),
		WallFollow: behavior.DefaultWallFollowConfig(),
		Balance:    behavior.DefaultBalanceConfig(),
		Tiles:      behavior.DefaultTileConfig(),
	}
}

// LoadConfig reads path over the defaults. A missing file yields the
// defaults, and zero tuning values read from the file are defaulted too.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if !exists(path) {
		return cfg, nil
	}
	if err := robot.LoadFile(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.Drive.StepsPerUnit == 0 {
		c.Drive.StepsPerUnit = robot.DefaultConfig().Drive.StepsPerUnit
	}
	c.WallFollow = c.WallFollow.WithDefaults()
	c.Balance = c.Balance.WithDefaults()
	c.Tiles = c.Tiles.WithDefaults()
	return c
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Level is one entry of the menu.
type Level struct {
	Key   string
	Title string
	// Light is the LED colour shown while the level is selected.
	Light robot.Light
	// Demo entries are runnable but not offered by the on-robot chooser.
	Demo bool
	New  func(cfg Config) behavior.Behavior
}

var registry = []Level{
	{
		Key: "level_1_no_way_out", Title: "No Way Out", Light: robot.LightGo,
		New: func(cfg Config) behavior.Behavior { return behavior.NewWallFollow(cfg.WallFollow) },
	},
	{
		Key: "level_2_perfect_balance", Title: "Perfect Balance", Light: robot.LightOrange,
		New: func(cfg Config) behavior.Behavior { return behavior.NewBalance(cfg.Balance) },
	},
	{
		Key: "level_3_wrong_exit", Title: "Wrong Exit", Light: robot.LightWarn,
		New: func(cfg Config) behavior.Behavior { return behavior.NewTileRoundTrip(cfg.Tiles) },
	},
	{
		Key: "hand_follower", Title: "Hand Follower", Light: robot.LightWait, Demo: true,
		New: func(Config) behavior.Behavior { return behavior.NewHandFollower() },
	},
	{
		Key: "line_follower", Title: "Line Follower", Light: robot.LightWait, Demo: true,
		New: func(Config) behavior.Behavior { return behavior.NewLineFollower() },
	},
	{
		Key: "make_it_blink", Title: "Make It Blink", Light: robot.LightWait, Demo: true,
		New: func(Config) behavior.Behavior { return behavior.NewBlinkDemo() },
	},
	{
		Key: "make_it_move", Title: "Make It Move", Light: robot.LightWait, Demo: true,
		New: func(Config) behavior.Behavior { return behavior.NewDrivePattern() },
	},
}

// All returns every level and demo in menu order.
func All() []Level {
	return append([]Level(nil), registry...)
}

// Menu returns the competition levels only.
func Menu() []Level {
	var out []Level
	for _, l := range registry {
		if !l.Demo {
			out = append(out, l)
		}
	}
	return out
}

// Lookup finds a level by key, by a unique key prefix ("level_2") or by
// its number ("2").
func Lookup(name string) (Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Level{}, fmt.Errorf("empty level name")
	}
	if !strings.HasPrefix(name, "level_") && len(name) == 1 && name[0] >= '1' && name[0] <= '9' {
		name = "level_" + name
	}
	var found []Level
	for _, l := range registry {
		if l.Key == name {
			return l, nil
		}
		if strings.HasPrefix(l.Key, name) {
			found = append(found, l)
		}
	}
	switch len(found) {
	case 0:
		return Level{}, fmt.Errorf("unknown level %q", name)
	case 1:
		return found[0], nil
	default:
		return Level{}, fmt.Errorf("ambiguous level %q", name)
	}
}
