// Package ddc understands the text output of ddcutil and builds its invocations.
package ddc

import (
	"regexp"
	"strconv"
)

// PowerState is the display power mode reported by VCP feature 0xd6.
type PowerState string

const (
	PowerOn  PowerState = "on"
	PowerOff PowerState = "off"
)

// IsOn reports whether the display is powered on.
func (p PowerState) IsOn() bool {
	return p == PowerOn
}

func (p PowerState) String() string {
	return string(p)
}

var (
	// e.g. "VCP code 0xd6 (Power mode): DPM: On,  DPMS: Off (sl=0x01)"
	powerPattern = regexp.MustCompile(`DPM:\s*(On|Off)`)

	// e.g. "VCP code 0x10 (Brightness): current value =   100, max value =   100"
	brightnessPattern = regexp.MustCompile(`current value\s*=\s*(\d+)`)
)

// ParsePower extracts the power mode from getvcp output.
// ok is false when the output does not contain a recognizable power mode.
func ParsePower(text string) (state PowerState, ok bool) {
	m := powerPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	if m[1] == "On" {
		return PowerOn, true
	}
	return PowerOff, true
}

// ParseBrightness extracts the current value from getvcp output.
// The value is returned as reported, without range checks.
func ParseBrightness(text string) (value int, ok bool) {
	m := brightnessPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}
