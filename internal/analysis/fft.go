package analysis

import (
	"math"
	"math/cmplx"
)

func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n%2 != 0 {
		panic("fft requires power of 2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)

	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

// PowerSpectrum removes the mean from loads, zero-pads them to a power of
// two and returns the magnitude of bins 0 through len(padded)/2. Bin k
// corresponds to a period of len(padded)/k steps.
func PowerSpectrum(loads []int) []float64 {
	if len(loads) == 0 {
		return nil
	}

	mean := Summarize(loads).Mean
	n := 1
	for n < len(loads) {
		n <<= 1
	}
	data := make([]float64, n)
	for i, l := range loads {
		data[i] = float64(l) - mean
	}

	fft := FFT(data)
	ps := make([]float64, len(fft)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}

// DominantPeriod returns the period, in steps, of the strongest non-constant
// component of loads. A flat trace has period 1.
func DominantPeriod(loads []int) int {
	ps := PowerSpectrum(loads)
	best, bestMag := 0, 1e-9
	for k := 1; k < len(ps); k++ {
		if ps[k] > bestMag {
			best, bestMag = k, ps[k]
		}
	}
	if best == 0 {
		return 1
	}
	return int(math.Round(float64(2*(len(ps)-1)) / float64(best)))
}
