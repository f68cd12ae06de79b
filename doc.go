// Package alvik provides reactive navigation levels for a small two-wheeled robot.
//
// The robot follows walls out of a maze, drives over a tilting balance beam
// and stops in the middle and at the end, and finds its way back to the one
// colour tile it crossed only once. All levels share a small engine: sensor
// normalisation, debounced edge events and a pause/resume supervisor driven
// by the OK and CANCEL touch buttons.
//
// # Installation
//
//	go install github.com/gwillem/alvik/cmd/alvik@latest
//
// # Usage
//
// Detect the wheel servos and the sensor link once:
//
//	alvik setup
//
// Then pick a level from the menu, or start one directly:
//
//	alvik menu
//	alvik run level_3
//	alvik run --sim level_2
//
// # Configuration
//
// Settings live in alvik.json, or in a .yaml/.yml file given with --config.
// Level tuning sits under wall_follow, balance and tiles; a missing or zero
// value takes the built-in default. Durations are written differently per
// format: YAML takes Go duration strings ("20ms", "1.5s"), JSON takes
// integer nanoseconds (20000000).
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/alvik: CLI with setup, info, run and menu commands
//   - pkg/sensor: distance frames, pitch estimation and colour input scaling
//   - pkg/debounce: hysteresis counters for edge events
//   - pkg/color: hue/brightness buckets for floor tiles
//   - pkg/robot: hardware contracts, configuration and the feetech wheel drive
//   - pkg/pause: pause/resume supervisor
//   - pkg/behavior: level state machines and the tick runner
//   - pkg/level: level registry, button chooser and loader
//   - pkg/link: serial JSON sensor link
//   - pkg/sim: simulated robot and courses
//   - pkg/logx: structured logging setup
package alvik
