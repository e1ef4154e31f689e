package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"stepclock/clock"
	"stepclock/config"
	"stepclock/debug"
	"stepclock/midi"
)

var version = "dev"

func main() {
	app := cli.NewApp()
	app.Name = "stepclock"
	app.Usage = "drift-corrected sixteenth-note clock for MIDI step sequencing"
	app.Version = version
	app.Flags = runFlags
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Printf("stepclock: %s\n", err.Error())
		os.Exit(1)
	}
}

func run(_ *cli.Context) error {
	if listPorts {
		for _, name := range midi.Ports() {
			fmt.Println(name)
		}
		return nil
	}

	if debugMode {
		if err := debug.Enable(); err != nil {
			return err
		}
		defer debug.Disable()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if portName != "" && portName != cfg.Output.PortName {
		// Remember the chosen port for the next run, the way controller
		// configs are saved.
		cfg.Output.PortName = portName
		if err := cfg.Save(); err != nil {
			debug.Log("config", "save failed: %v", err)
		}
	}

	var out *midi.Output
	if cfg.Output.PortName != "" {
		out = midi.NewOutput(cfg.Output.PortName, cfg.Output.Channel, cfg.Output.Note, cfg.Output.Velocity)
		defer midi.Close()
	}

	countStep, done := stepLimiter(steps)

	// The one scheduler for the process; every consumer below shares this
	// handle.
	sched := clock.New(nil, func() {
		if out != nil {
			if err := out.SendStep(); err != nil {
				debug.Log("midi", "send failed: %v", err)
			}
		}
		countStep()
	})

	if err := sched.SetTempo(bpm); err != nil {
		return err
	}
	if err := sched.SetTimeSignature(float64(beats), float64(length)); err != nil {
		return err
	}

	fmt.Printf("stepclock %g BPM %s, step %v\n", sched.BPM(), sched.TimeSignature(), sched.StepInterval())
	if out == nil {
		fmt.Println("no MIDI port configured - running silent (use --port or --list-ports)")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sched.Play()
	select {
	case <-sigChan:
	case <-done:
	}
	sched.Stop()

	return nil
}

// stepLimiter returns a per-step callback and a channel that signals once
// limit steps have run (limit <= 0 never signals). The channel is buffered:
// the first tick fires synchronously inside Play, before anyone is receiving,
// and that signal must not be dropped.
func stepLimiter(limit int) (func(), <-chan struct{}) {
	done := make(chan struct{}, 1)
	count := 0
	return func() {
		count++
		if limit > 0 && count >= limit {
			select {
			case done <- struct{}{}:
			default:
			}
		}
	}, done
}
