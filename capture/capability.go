package capture

import (
	"fmt"
	"sort"
	"strings"
)

// Capability is a capture mode advertised by a device.
type Capability struct {
	Width     int
	Height    int
	FrameRate float64
}

// Returns the string representation of this Capability (e.g. 1280x720@30)
func (c Capability) String() string {
	return fmt.Sprintf("%dx%d@%g", c.Width, c.Height, c.FrameRate)
}

// Area returns the pixel area of the capability.
func (c Capability) Area() int {
	return c.Width * c.Height
}

// IsEmpty checks if the capability is empty (both width and height are zero).
func (c Capability) IsEmpty() bool {
	return c.Width == 0 && c.Height == 0
}

// ResolutionPreset is a labeled resolution bucket used to filter and rank
// device capabilities. A zero max bound means unbounded.
type ResolutionPreset struct {
	Label     string
	MinWidth  int
	MinHeight int
	MaxWidth  int
	MaxHeight int
}

// Contains reports whether the capability's dimensions fall inside the bucket.
func (p ResolutionPreset) Contains(c Capability) bool {
	if c.Width < p.MinWidth || c.Height < p.MinHeight {
		return false
	}
	if p.MaxWidth > 0 && c.Width > p.MaxWidth {
		return false
	}
	if p.MaxHeight > 0 && c.Height > p.MaxHeight {
		return false
	}
	return true
}

func PresetSD() ResolutionPreset {
	return ResolutionPreset{Label: "sd", MinWidth: 560, MinHeight: 400, MaxWidth: 1024, MaxHeight: 600}
}
func PresetHD() ResolutionPreset {
	return ResolutionPreset{Label: "hd", MinWidth: 1240, MinHeight: 700, MaxWidth: 1300, MaxHeight: 760}
}
func PresetFullHD() ResolutionPreset {
	return ResolutionPreset{Label: "full-hd", MinWidth: 1900, MinHeight: 1060, MaxWidth: 1940, MaxHeight: 1100}
}

// PresetAny is the catch-all preset with an unbounded range.
func PresetAny() ResolutionPreset {
	return ResolutionPreset{Label: "any"}
}

// ParsePreset converts a preset label into a ResolutionPreset.
func ParsePreset(label string) (ResolutionPreset, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "sd", "480p":
		return PresetSD(), nil
	case "hd", "720p":
		return PresetHD(), nil
	case "full-hd", "fullhd", "1080p":
		return PresetFullHD(), nil
	case "any", "":
		return PresetAny(), nil
	default:
		return ResolutionPreset{}, fmt.Errorf("unsupported resolution preset: %s", label)
	}
}

// ResolveCapability selects the best capture mode from a device's advertised
// capability list for the given preset bucket. Capabilities outside the bucket
// are filtered out; if nothing matches, the full list is ranked instead so a
// device that cannot satisfy the bucket still yields a usable mode. Candidates
// are ranked by area, then frame rate. Returns false only for an empty list.
func ResolveCapability(caps []Capability, preset ResolutionPreset) (Capability, bool) {
	if len(caps) == 0 {
		return Capability{}, false
	}

	filtered := make([]Capability, 0, len(caps))
	for _, c := range caps {
		if preset.Contains(c) {
			filtered = append(filtered, c)
		}
	}

	// Degrade gracefully: an unmatched bucket falls back to the full list.
	if len(filtered) == 0 {
		filtered = append(filtered, caps...)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Area() != filtered[j].Area() {
			return filtered[i].Area() > filtered[j].Area()
		}
		return filtered[i].FrameRate > filtered[j].FrameRate
	})

	return filtered[0], true
}
