package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// Output sends step triggers to a MIDI out port. Ports are opened lazily by
// name and cached, so a port that appears after startup still works.
type Output struct {
	portName string
	channel  uint8 // 0-based MIDI channel
	note     uint8
	velocity uint8

	senders   map[string]func(gomidi.Message) error
	sendersMu sync.RWMutex
}

// NewOutput creates an output for the given port. channel is the 1-16 user
// facing number.
func NewOutput(portName string, channel, note, velocity int) *Output {
	return &Output{
		portName: portName,
		channel:  uint8(channel - 1),
		note:     uint8(note),
		velocity: uint8(velocity),
		senders:  make(map[string]func(gomidi.Message) error),
	}
}

// SendStep emits one trigger (note on + note off) on the configured port.
func (o *Output) SendStep() error {
	sender := o.getSender(o.portName)
	if sender == nil {
		return fmt.Errorf("midi port %q not available", o.portName)
	}
	if err := sender(gomidi.NoteOn(o.channel, o.note, o.velocity)); err != nil {
		return err
	}
	return sender(gomidi.NoteOff(o.channel, o.note))
}

// getSender returns a sender for the given port name, lazily opening it
func (o *Output) getSender(portName string) func(gomidi.Message) error {
	if portName == "" {
		return nil
	}

	o.sendersMu.RLock()
	if sender, ok := o.senders[portName]; ok {
		o.sendersMu.RUnlock()
		return sender
	}
	o.sendersMu.RUnlock()

	o.sendersMu.Lock()
	defer o.sendersMu.Unlock()

	// Double-check after acquiring write lock
	if sender, ok := o.senders[portName]; ok {
		return sender
	}

	for _, port := range gomidi.GetOutPorts() {
		if port.String() == portName {
			sender, err := gomidi.SendTo(port)
			if err != nil {
				return nil
			}
			o.senders[portName] = sender
			return sender
		}
	}
	return nil
}

// Ports returns the names of all available MIDI out ports.
func Ports() []string {
	outs := gomidi.GetOutPorts()
	names := make([]string, 0, len(outs))
	for _, p := range outs {
		names = append(names, p.String())
	}
	return names
}

// Close releases the MIDI driver and all open ports.
func Close() {
	gomidi.CloseDriver()
}
