package player

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownQuality is returned when a quality tier is not one of Qualities
	ErrUnknownQuality = errors.New("unknown quality")
	// ErrUnsupportedSpeed is returned when a playback rate is not one of Speeds
	ErrUnsupportedSpeed = errors.New("unsupported playback speed")
)

// Quality is a simulated playback quality tier.  There is no adaptive bitrate manifest behind it: each tier maps to
// the same base source with a quality query parameter, and it is up to the server to honour it.
type Quality string

const (
	QualityAuto Quality = "auto"
	Quality1080 Quality = "1080"
	Quality720  Quality = "720"
	Quality480  Quality = "480"
	Quality240  Quality = "240"
)

// Qualities lists every tier in the order they are offered to the user
var Qualities = []Quality{QualityAuto, Quality1080, Quality720, Quality480, Quality240}

// Speeds lists every supported playback rate in ascending order
var Speeds = []float64{0.5, 0.75, 1, 1.25, 1.5, 2}

// ParseQuality converts user input such as "720", "720p" or "Auto" into a Quality
func ParseQuality(s string) (Quality, error) {
	normalised := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "p")
	for _, q := range Qualities {
		if string(q) == normalised {
			return q, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownQuality, s)
}

// Valid reports whether q is one of the known tiers
func (q Quality) Valid() bool {
	for _, known := range Qualities {
		if q == known {
			return true
		}
	}
	return false
}

// Label returns the display name of the tier, e.g. "Auto" or "720p"
func (q Quality) Label() string {
	if q == QualityAuto {
		return "Auto"
	}
	return string(q) + "p"
}

// SourceFor derives the source URL for this tier from the base source.  Auto uses the base unchanged.
func (q Quality) SourceFor(base string) string {
	if q == QualityAuto || q == "" {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "quality=" + string(q)
}

// ValidSpeed reports whether rate is one of Speeds
func ValidSpeed(rate float64) bool {
	for _, s := range Speeds {
		if s == rate {
			return true
		}
	}
	return false
}

// NextSpeed returns the next faster supported rate, or the fastest rate if already there
func NextSpeed(rate float64) float64 {
	for _, s := range Speeds {
		if s > rate {
			return s
		}
	}
	return Speeds[len(Speeds)-1]
}

// PrevSpeed returns the next slower supported rate, or the slowest rate if already there
func PrevSpeed(rate float64) float64 {
	for i := len(Speeds) - 1; i >= 0; i-- {
		if Speeds[i] < rate {
			return Speeds[i]
		}
	}
	return Speeds[0]
}

// SpeedLabel formats a playback rate the way it is offered to the user, e.g. "1.25x"
func SpeedLabel(rate float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", rate), "0"), ".") + "x"
}
