package midi

import "strings"

// Port is an addressable output endpoint on a MIDI backend.
type Port interface {
	Name() string
	Open() error
	Send(msg []byte) error
	Close() error
}

// PortLister enumerates the output ports a backend currently exposes.
type PortLister interface {
	OutPorts() ([]Port, error)
}

// PortNames returns the names of ports, in order.
func PortNames(ports []Port) []string {
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.Name()
	}
	return names
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
