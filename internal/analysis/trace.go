package analysis

// Summary describes a load trace.
type Summary struct {
	Samples   int
	Min       int
	Max       int
	Mean      float64
	Amplitude int
}

func Summarize(loads []int) Summary {
	if len(loads) == 0 {
		return Summary{}
	}

	s := Summary{Samples: len(loads), Min: loads[0], Max: loads[0]}
	total := 0
	for _, l := range loads {
		s.Min = min(s.Min, l)
		s.Max = max(s.Max, l)
		total += l
	}
	s.Mean = float64(total) / float64(len(loads))
	s.Amplitude = s.Max - s.Min
	return s
}

// Repeat concatenates laps copies of one lap of a loop's loads.
func Repeat(lap []int, laps int) []int {
	out := make([]int, 0, len(lap)*max(laps, 0))
	for i := 0; i < laps; i++ {
		out = append(out, lap...)
	}
	return out
}
