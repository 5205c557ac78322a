package demes

import "strconv"

// trimFloat renders a float64 the way the HDM/MDM textual forms want it:
// the shortest round-trippable representation, no forced decimal point.
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
