package core

// WindowedMean keeps the mean of the last N samples. Mean reports 0 until the
// window has filled once. Not safe for concurrent use.
type WindowedMean struct {
	values []float64
	added  int
	next   int
	mean   float64
	dirty  bool
}

// NewWindowedMean returns a mean over size samples (at least 1).
func NewWindowedMean(size int) *WindowedMean {
	if size < 1 {
		size = 1
	}
	return &WindowedMean{values: make([]float64, size), dirty: true}
}

// HasEnoughData reports whether the window has been filled.
func (m *WindowedMean) HasEnoughData() bool {
	return m.added >= len(m.values)
}

// Add records a sample, replacing the oldest one once the window is full.
func (m *WindowedMean) Add(v float64) {
	m.added++
	m.values[m.next] = v
	m.next = (m.next + 1) % len(m.values)
	m.dirty = true
}

// Mean returns the mean of the window, or 0 before it has filled.
func (m *WindowedMean) Mean() float64 {
	if !m.HasEnoughData() {
		return 0
	}
	if m.dirty {
		var sum float64
		for _, v := range m.values {
			sum += v
		}
		m.mean = sum / float64(len(m.values))
		m.dirty = false
	}
	return m.mean
}

// Latest returns the most recently added sample.
func (m *WindowedMean) Latest() float64 {
	if m.added == 0 {
		return 0
	}
	return m.values[(m.next-1+len(m.values))%len(m.values)]
}

// Clear drops every sample.
func (m *WindowedMean) Clear() {
	for i := range m.values {
		m.values[i] = 0
	}
	m.added = 0
	m.next = 0
	m.dirty = true
}
