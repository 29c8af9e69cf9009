package midi

import (
	"errors"
	"fmt"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // registers the rtmidi driver
)

// ErrScanTimeout is returned when the driver does not answer a port scan in time.
var ErrScanTimeout = errors.New("MIDI port scan timed out")

const defaultScanTimeout = 3 * time.Second

// RtMIDI lists output ports of the registered gomidi driver (rtmidi).
type RtMIDI struct {
	Timeout time.Duration
}

// OutPorts scans with a timeout; CoreMIDI can hang.
// Fix on macOS: sudo killall coreaudiod midiserver
func (r RtMIDI) OutPorts() ([]Port, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultScanTimeout
	}

	ch := make(chan gomidi.OutPorts, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case outs := <-ch:
		ports := make([]Port, 0, len(outs))
		for _, o := range outs {
			ports = append(ports, &rtmidiPort{out: o})
		}
		return ports, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w after %s", ErrScanTimeout, timeout)
	}
}

// OpenVirtual creates an rtmidi virtual output port that other programs can
// subscribe to, and returns it as an open Conn. Not supported on Windows.
func OpenVirtual(name string) (*Conn, error) {
	drv, ok := drivers.Get().(*rtmididrv.Driver)
	if !ok {
		return nil, fmt.Errorf("virtual port %q: rtmididrv driver not available", name)
	}
	out, err := drv.OpenVirtualOut(name)
	if err != nil {
		return nil, fmt.Errorf("virtual port %q: %w", name, err)
	}
	return Open(&rtmidiPort{out: out, virtual: true})
}

// CloseDriver releases the registered driver. Call once at exit.
func CloseDriver() {
	gomidi.CloseDriver()
}

type rtmidiPort struct {
	out     drivers.Out
	virtual bool
}

func (p *rtmidiPort) Name() string {
	return p.out.String()
}

func (p *rtmidiPort) Open() error {
	if p.virtual {
		return nil // opened on creation
	}
	return p.out.Open()
}

func (p *rtmidiPort) Send(msg []byte) error {
	return p.out.Send(msg)
}

func (p *rtmidiPort) Close() error {
	return p.out.Close()
}
