package ddc

import "strconv"

// Bus builds ddcutil argument vectors addressed to a single I2C bus.
type Bus struct {
	// Command is the ddcutil invocation prefix, e.g. ["sudo", "ddcutil"].
	Command []string
	// ID is the I2C bus number passed with --bus.
	ID string
}

// GetVCP returns the argv that reads a VCP feature.
func (b Bus) GetVCP(feature string) []string {
	return b.build("getvcp", feature)
}

// SetVCP returns the argv that writes value to a VCP feature.
func (b Bus) SetVCP(feature string, value int) []string {
	return b.build("setvcp", feature, strconv.Itoa(value))
}

func (b Bus) build(args ...string) []string {
	argv := make([]string, 0, len(b.Command)+len(args)+2)
	argv = append(argv, b.Command...)
	argv = append(argv, args...)
	return append(argv, "--bus", b.ID)
}
