package indicator

// window keeps the last max samples in insertion order; once full, each Add
// evicts the oldest sample.
type window struct {
	max int
	buf []float64
}

func newWindow(max int) *window {
	if max <= 0 {
		max = 1
	}
	return &window{max: max, buf: make([]float64, 0, max)}
}

func (w *window) Add(v float64) {
	if len(w.buf) == w.max {
		copy(w.buf, w.buf[1:])
		w.buf = w.buf[:w.max-1]
	}
	w.buf = append(w.buf, v)
}

func (w *window) Len() int {
	return len(w.buf)
}

func (w *window) Full() bool {
	return len(w.buf) == w.max
}

func (w *window) Max() float64 {
	if len(w.buf) == 0 {
		return 0
	}
	m := w.buf[0]
	for _, v := range w.buf[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func (w *window) Min() float64 {
	if len(w.buf) == 0 {
		return 0
	}
	m := w.buf[0]
	for _, v := range w.buf[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func (w *window) Sum() float64 {
	s := 0.0
	for _, v := range w.buf {
		s += v
	}
	return s
}
