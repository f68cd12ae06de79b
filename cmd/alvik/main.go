package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Config   string `short:"c" long:"config" default:"alvik.json" description:"Configuration file (.json or .yaml)"`
	LogLevel string `long:"log-level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" description:"Log level"`

	Setup SetupCommand `command:"setup" description:"Find the wheel servos and the sensor link"`
	Info  InfoCommand  `command:"info" description:"List serial ports and servos"`
	Run   RunCommand   `command:"run" description:"Run one level"`
	Menu  MenuCommand  `command:"menu" description:"Pick a level and run it, repeatedly"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "Alvik - reactive navigation levels for a two-wheeled robot"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
