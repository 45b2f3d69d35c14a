package ddc

import (
	"reflect"
	"testing"
)

func TestParsePower(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   PowerState
		wantOK bool
	}{
		{
			name:   "on",
			text:   "VCP code 0xd6 (Power mode): DPM: On,  DPMS: Off (sl=0x01)",
			want:   PowerOn,
			wantOK: true,
		},
		{
			name:   "off",
			text:   "VCP code 0xd6 (Power mode): DPM: Off, DPMS: Off (sl=0x04)",
			want:   PowerOff,
			wantOK: true,
		},
		{
			name:   "no space after marker",
			text:   "DPM:On",
			want:   PowerOn,
			wantOK: true,
		},
		{
			name: "garbage",
			text: "garbage",
		},
		{
			name: "case sensitive",
			text: "DPM: on",
		},
		{
			name: "empty",
			text: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePower(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ParsePower(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParsePower(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseBrightness(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   int
		wantOK bool
	}{
		{
			name:   "full scale",
			text:   "current value =   100, max value =   100",
			want:   100,
			wantOK: true,
		},
		{
			name:   "ddcutil line",
			text:   "VCP code 0x10 (Brightness                    ): current value =    42, max value =   100",
			want:   42,
			wantOK: true,
		},
		{
			name:   "zero",
			text:   "current value = 0, max value = 100",
			want:   0,
			wantOK: true,
		},
		{
			name:   "out of range is not clamped",
			text:   "current value = 250, max value = 255",
			want:   250,
			wantOK: true,
		},
		{
			name: "no marker",
			text: "Display not found",
		},
		{
			name: "overflow",
			text: "current value = 99999999999999999999999",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseBrightness(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ParseBrightness(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseBrightness(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestBus(t *testing.T) {
	b := Bus{Command: []string{"sudo", "ddcutil"}, ID: "20"}

	if got, want := b.GetVCP("d6"), []string{"sudo", "ddcutil", "getvcp", "d6", "--bus", "20"}; !reflect.DeepEqual(got, want) {
		t.Errorf("GetVCP() = %v, want %v", got, want)
	}
	if got, want := b.SetVCP("10", 55), []string{"sudo", "ddcutil", "setvcp", "10", "55", "--bus", "20"}; !reflect.DeepEqual(got, want) {
		t.Errorf("SetVCP() = %v, want %v", got, want)
	}

	// building must not alias the shared prefix
	first := b.GetVCP("d6")
	_ = b.GetVCP("10")
	if first[3] != "d6" {
		t.Errorf("GetVCP() result changed after another call: %v", first)
	}
}
