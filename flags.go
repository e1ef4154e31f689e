package main

import "github.com/urfave/cli"

var (
	bpm       float64
	beats     int
	length    int
	portName  string
	steps     int
	debugMode bool
	listPorts bool
)

var runFlags = []cli.Flag{
	cli.Float64Flag{
		Name:        "bpm, b",
		Usage:       "tempo in beats per minute (clamped to 40-600)",
		EnvVar:      "STEPCLOCK_BPM",
		Destination: &bpm,
		Value:       120,
	},
	cli.IntFlag{
		Name:        "beats",
		Usage:       "beats per measure (clamped to 1-24)",
		Destination: &beats,
		Value:       4,
	},
	cli.IntFlag{
		Name:        "length",
		Usage:       "beat length as a fraction of a whole note (snapped to a divisor of 16)",
		Destination: &length,
		Value:       4,
	},
	cli.StringFlag{
		Name:        "port, p",
		Usage:       "MIDI out port for step triggers (overrides config)",
		EnvVar:      "STEPCLOCK_PORT",
		Destination: &portName,
	},
	cli.IntFlag{
		Name:        "steps, n",
		Usage:       "stop after this many steps (0 runs until interrupted)",
		Destination: &steps,
	},
	cli.BoolFlag{
		Name:        "list-ports",
		Usage:       "list available MIDI out ports and exit",
		Destination: &listPorts,
	},
	cli.BoolFlag{
		Name:        "debug",
		Usage:       "write a debug log to ~/.config/stepclock/debug.log",
		Destination: &debugMode,
	},
}
