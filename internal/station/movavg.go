package station

// MovingAverage smooths noisy readings over a fixed circular buffer.
// Used on the light percentage, whose simulated noise is the largest.
type MovingAverage struct {
	buf   []float64
	count int
	idx   int
}

// NewMovingAverage creates a filter over the last size values.
// Sizes below one fall back to three.
func NewMovingAverage(size int) *MovingAverage {
	if size <= 0 {
		size = 3
	}
	return &MovingAverage{buf: make([]float64, size)}
}

// Add pushes a value, overwriting the oldest once the buffer is full.
func (m *MovingAverage) Add(v float64) {
	m.buf[m.idx] = v
	m.idx = (m.idx + 1) % len(m.buf)
	if m.count < len(m.buf) {
		m.count++
	}
}

// Avg returns the average of the buffered values and whether any exist.
func (m *MovingAverage) Avg() (float64, bool) {
	if m.count == 0 {
		return 0, false
	}
	var sum float64
	for i := 0; i < m.count; i++ {
		sum += m.buf[i]
	}
	return sum / float64(m.count), true
}
