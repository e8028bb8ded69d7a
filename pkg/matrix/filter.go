// Package matrix scans key switch matrices.
package matrix

// Noise parameters of Filter.
const (
	StateSigma float32 = 2.0
	NoiseSigma float32 = 10.0
)

// Filter smooths noisy samples of one matrix cell with a recursive
// Gaussian estimator. The zero value is ready to use.
type Filter struct {
	mean     float32
	variance float32
	seeded   bool
}

// Predict feeds an observation and returns the new estimate.
func (f *Filter) Predict(obs float32) float32 {
	if !f.seeded {
		f.mean, f.variance, f.seeded = obs, StateSigma, true
		return f.mean
	}
	priorMean, priorVariance := f.mean, f.variance+NoiseSigma
	gain := priorVariance / (priorVariance + StateSigma)
	f.mean = priorMean + gain*(obs-priorMean)
	f.variance = (1 - gain) * priorVariance
	return f.mean
}

// Estimate returns the current mean and variance.
func (f *Filter) Estimate() (mean, variance float32) {
	return f.mean, f.variance
}

// Reset forgets the state, the next observation seeds the filter.
func (f *Filter) Reset() {
	*f = Filter{}
}

// DefaultDebounceSize is the number of samples voted by a Debouncer.
const DefaultDebounceSize = 3

// Debouncer votes on the most recent samples of one cell.
type Debouncer struct {
	buf []bool
	pos int
}

// NewDebouncer creates a Debouncer with n slots.
func NewDebouncer(n int) *Debouncer {
	if n <= 0 {
		n = DefaultDebounceSize
	}
	return &Debouncer{buf: make([]bool, n)}
}

// Update pushes a sample, overwriting the oldest one, and returns true
// when at least half of the slots are set.
func (d *Debouncer) Update(val bool) bool {
	d.buf[d.pos] = val
	d.pos = (d.pos + 1) % len(d.buf)
	var sum int
	for _, v := range d.buf {
		if v {
			sum++
		}
	}
	return sum*2 >= len(d.buf)
}
