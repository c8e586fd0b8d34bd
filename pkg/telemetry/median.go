package telemetry

// MedianAvg throws out the highest and the lowest of the last N values and
// averages the rest.
type MedianAvg struct {
	data    []int
	counter int
	filled  bool
}

// NewMedianAvg creates a filter over n values, n must be at least 3.
func NewMedianAvg(n int) *MedianAvg {
	if n < 3 {
		panic("median average needs at least 3 values")
	}
	return &MedianAvg{data: make([]int, n)}
}

// Add adds a value, it returns 0 when a complete cycle of N values has
// been added.
func (f *MedianAvg) Add(v int) int {
	f.data[f.counter] = v
	f.counter = (f.counter + 1) % len(f.data)
	if f.counter == 0 {
		f.filled = true
	}
	return f.counter
}

// Filled tells if N values have been added since the last Clear.
func (f *MedianAvg) Filled() bool {
	return f.filled
}

// Clear resets the filter.
func (f *MedianAvg) Clear() {
	for n := range f.data {
		f.data[n] = 0
	}
	f.counter, f.filled = 0, false
}

// Value calculates the average.
func (f *MedianAvg) Value() int {
	minIdx, maxIdx := 0, len(f.data)-1
	if f.data[minIdx] > f.data[maxIdx] {
		minIdx, maxIdx = maxIdx, minIdx
	}
	for n, v := range f.data {
		if v < f.data[minIdx] {
			minIdx = n
		}
		if v > f.data[maxIdx] {
			maxIdx = n
		}
	}
	var sum int
	for n, v := range f.data {
		if n != minIdx && n != maxIdx {
			sum += v
		}
	}
	return sum / (len(f.data) - 2)
}
