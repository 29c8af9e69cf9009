package midi

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// DINBaud is the MIDI 1.0 DIN serial rate.
const DINBaud = 31250

// Serial lists serial devices usable as a raw MIDI output
// (UART-to-DIN adapters, microcontrollers running a MIDI sketch).
type Serial struct {
	Baud int
	// Only, when set, skips enumeration and offers just this device.
	Only string
}

// OutPorts returns one Port per serial device.
func (s Serial) OutPorts() ([]Port, error) {
	baud := s.Baud
	if baud <= 0 {
		baud = DINBaud
	}
	if s.Only != "" {
		return []Port{&serialPort{name: s.Only, baud: baud}}, nil
	}

	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("serial: list ports: %w", err)
	}
	ports := make([]Port, 0, len(names))
	for _, n := range names {
		ports = append(ports, &serialPort{name: n, baud: baud})
	}
	return ports, nil
}

type serialPort struct {
	name string
	baud int
	port serial.Port
}

func (p *serialPort) Name() string {
	return p.name
}

func (p *serialPort) Open() error {
	sp, err := serial.Open(p.name, &serial.Mode{BaudRate: p.baud})
	if err != nil {
		return fmt.Errorf("serial: open %s at %d baud: %w", p.name, p.baud, err)
	}
	p.port = sp
	return nil
}

func (p *serialPort) Send(msg []byte) error {
	if p.port == nil {
		return fmt.Errorf("serial: %s not open", p.name)
	}
	n, err := p.port.Write(msg)
	if err != nil {
		return err
	}
	if n != len(msg) {
		return fmt.Errorf("serial: short write %d/%d: %w", n, len(msg), io.ErrShortWrite)
	}
	return nil
}

func (p *serialPort) Close() error {
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}
