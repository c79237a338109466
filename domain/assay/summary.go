package assay

import (
	"github.com/montanaflynn/stats"
)

// Summary holds descriptive statistics over a channel vector or a batch
// of scalar observations. Convenience for orchestration-side sanity
// checks; never consumed by the simulation itself.
type Summary struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes descriptive statistics over values. Empty input
// yields a zero Summary.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	data := stats.Float64Data(values)
	mean, _ := stats.Mean(data)
	sd, _ := stats.StandardDeviationSample(data)
	median, _ := stats.Median(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	return Summary{
		N:      len(values),
		Mean:   mean,
		StdDev: sd,
		Median: median,
		Min:    min,
		Max:    max,
	}
}

// ChannelVector flattens an observation's channels in canonical order.
func (o Observation) ChannelVector() []float64 {
	if len(o.Channels) == 0 {
		return nil
	}
	out := make([]float64, 0, len(o.Channels))
	for _, ch := range Channels() {
		if v, ok := o.Channels[ch]; ok {
			out = append(out, v)
		}
	}
	return out
}
