package meta

import (
	"fmt"
	"math"
	"strings"
)

// Defaults are the fallback values used when a photo lacks an EXIF field.
var Defaults = CaptureMetadata{
	DeviceModel:  "iPhone",
	FocalLength:  "24mm",
	Aperture:     "ƒ/1.8",
	ShutterSpeed: "1/120s",
	ISO:          "ISO 100",
}

// WithDefaults returns a copy of m with every blank field replaced by its fallback.
// It is meant to run once, where metadata enters the system.
func (m CaptureMetadata) WithDefaults() CaptureMetadata {
	m.DeviceModel = orDefault(m.DeviceModel, Defaults.DeviceModel)
	m.FocalLength = orDefault(m.FocalLength, Defaults.FocalLength)
	m.Aperture = orDefault(m.Aperture, Defaults.Aperture)
	m.ShutterSpeed = orDefault(m.ShutterSpeed, Defaults.ShutterSpeed)
	m.ISO = orDefault(m.ISO, Defaults.ISO)
	return m
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// FocalLength formats a focal length in millimeters, e.g. "24mm".
func FocalLength(mm float64) string {
	if !usable(mm) {
		return ""
	}
	return fmt.Sprintf("%dmm", int(mm))
}

// Aperture formats an f-number, e.g. "ƒ/1.8".
func Aperture(fnumber float64) string {
	if !usable(fnumber) {
		return ""
	}
	return fmt.Sprintf("ƒ/%.1f", fnumber)
}

// ShutterSpeed formats an exposure time in seconds, e.g. "1/120s" or "2s".
func ShutterSpeed(seconds float64) string {
	if !usable(seconds) {
		return ""
	}
	if seconds >= 1 {
		return fmt.Sprintf("%ds", int(seconds))
	}
	return fmt.Sprintf("1/%ds", int(math.Round(1/seconds)))
}

// ISO formats a sensitivity value, e.g. "ISO 100".
func ISO(n int64) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("ISO %d", n)
}
