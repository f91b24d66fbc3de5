package interp

import (
	"math"
	"slices"
	"strings"
)

// Func maps linear progress in [0,1] to eased progress. Curves may
// overshoot in between but always map 0 to 0 and 1 to 1.
type Func func(t float64) float64

// DefaultEasing is used for unknown curve names.
const DefaultEasing = "ease-in-out"

var easings = map[string]Func{
	"linear": func(t float64) float64 { return t },
	"ease-in": func(t float64) float64 {
		return t * t * t
	},
	"ease-out": func(t float64) float64 {
		return 1 - math.Pow(1-t, 3)
	},
	"ease-in-out": func(t float64) float64 {
		if t < 0.5 {
			return 4 * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 3)/2
	},
	"ease-out-back": func(t float64) float64 {
		const c1 = 1.70158
		const c3 = c1 + 1
		return 1 + c3*math.Pow(t-1, 3) + c1*math.Pow(t-1, 2)
	},
}

// Lookup returns the named curve. Names are case-insensitive.
func Lookup(name string) (Func, bool) {
	f, ok := easings[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// Easing returns the named curve, or DefaultEasing when name is unknown.
func Easing(name string) Func {
	if f, ok := Lookup(name); ok {
		return f
	}
	return easings[DefaultEasing]
}

// Names lists the known curves in sorted order.
func Names() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
