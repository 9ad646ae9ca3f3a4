// Package meta formats photo capture metadata for display on a frame.
package meta

import (
	"strings"
)

// TitlePrefix precedes the device model on the title line.
const TitlePrefix = "Shot on "

// Weight is a font weight for a run of text.
type Weight int

const (
	Regular Weight = iota
	Bold
)

func (w Weight) String() string {
	if w == Bold {
		return "bold"
	}
	return "regular"
}

// Run is a piece of text rendered with a single weight.
type Run struct {
	Text   string
	Weight Weight
}

// RichText is a sequence of runs measured and drawn as one visual unit.
type RichText []Run

// String returns the plain text of all runs.
func (t RichText) String() string {
	var sb strings.Builder
	for _, r := range t {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// CaptureMetadata holds presentation-ready capture details for one photo.
type CaptureMetadata struct {
	DeviceModel  string
	FocalLength  string
	Aperture     string
	ShutterSpeed string
	ISO          string
}

// Title returns the formatted title line.
func (m CaptureMetadata) Title() RichText {
	return FormatTitle(m.DeviceModel)
}

// Specs returns the formatted specs line.
func (m CaptureMetadata) Specs() string {
	return FormatSpecs(m.FocalLength, m.Aperture, m.ShutterSpeed, m.ISO)
}

// FormatTitle returns "Shot on " in a regular weight followed by the device model in bold.
func FormatTitle(deviceModel string) RichText {
	return RichText{
		{Text: TitlePrefix, Weight: Regular},
		{Text: deviceModel, Weight: Bold},
	}
}

// FormatSpecs joins the exposure fields with single spaces, in a fixed order.
func FormatSpecs(focalLength, aperture, shutterSpeed, iso string) string {
	return strings.Join([]string{focalLength, aperture, shutterSpeed, iso}, " ")
}
