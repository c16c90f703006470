package metrics

import (
	"sort"

	gometrics "github.com/armon/go-metrics"
)

// Value represents a metric value as a float64.
type Value float64

// Dimension represents metric dimensions as key-value pairs, exported as
// Prometheus labels.
type Dimension map[string]string

// labels converts d to go-metrics labels in key order so that series
// identity does not depend on map iteration.
func (d Dimension) labels() []gometrics.Label {
	if len(d) == 0 {
		return nil
	}
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]gometrics.Label, 0, len(keys))
	for _, k := range keys {
		out = append(out, gometrics.Label{Name: k, Value: d[k]})
	}
	return out
}
