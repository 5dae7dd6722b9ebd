package history

// window is a fixed-capacity FIFO ring buffer. Pushing into a full window
// evicts the oldest entry; push is O(1).
type window[T any] struct {
	data  []T
	head  int
	count int
	size  int
}

func newWindow[T any](size int) *window[T] {
	return &window[T]{
		data: make([]T, size),
		size: size,
	}
}

// push appends a value, evicting the oldest once the window is full.
func (w *window[T]) push(value T) {
	w.data[w.head] = value
	w.head = (w.head + 1) % w.size
	if w.count < w.size {
		w.count++
	}
}

// last returns the most recent value.
func (w *window[T]) last() (T, bool) {
	var zero T
	if w.count == 0 {
		return zero, false
	}
	return w.data[(w.head-1+w.size)%w.size], true
}

// tail returns the last count values in chronological order (oldest first).
func (w *window[T]) tail(count int) []T {
	if count <= 0 || w.count == 0 {
		return nil
	}
	if count > w.count {
		count = w.count
	}

	result := make([]T, count)

	// head points to the next write position, so the most recent value is
	// at head-1; we want count values ending there.
	start := (w.head - count + w.size) % w.size
	for i := 0; i < count; i++ {
		result[i] = w.data[(start+i)%w.size]
	}

	return result
}

// all returns every stored value in chronological order.
func (w *window[T]) all() []T {
	return w.tail(w.count)
}

// len returns the number of stored values.
func (w *window[T]) len() int {
	return w.count
}
