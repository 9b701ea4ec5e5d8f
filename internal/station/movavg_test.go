package station

import "testing"

func TestMovingAverageEmpty(t *testing.T) {
	m := NewMovingAverage(3)

	if _, ok := m.Avg(); ok {
		t.Error("Avg() on empty filter reported a value")
	}
}

func TestMovingAveragePartialFill(t *testing.T) {
	m := NewMovingAverage(5)
	m.Add(10)
	m.Add(20)

	avg, ok := m.Avg()
	if !ok {
		t.Fatal("Avg() reported no value after two samples")
	}
	if avg != 15 {
		t.Errorf("Avg() = %v, want 15", avg)
	}
}

func TestMovingAverageEvictsOldest(t *testing.T) {
	m := NewMovingAverage(3)
	for _, v := range []float64{100, 10, 20, 30} {
		m.Add(v)
	}

	avg, _ := m.Avg()
	if avg != 20 {
		t.Errorf("Avg() after eviction = %v, want 20", avg)
	}
}

func TestMovingAverageDefaultsSmallSizes(t *testing.T) {
	m := NewMovingAverage(0)
	for _, v := range []float64{1, 2, 3, 4} {
		m.Add(v)
	}

	avg, _ := m.Avg()
	if avg != 3 {
		t.Errorf("Avg() with fallback window = %v, want 3", avg)
	}
}
