package grid

// mustMatch panics when two operands of an elementwise operation differ in size.
func mustMatch[T any](a, b *Grid[T]) {
	if !SameSize(a, b) {
		panic("grid: elementwise operation on grids of different dimensions")
	}
}

// Add returns a+b elementwise.
func Add[T Number](a, b *Grid[T]) *Grid[T] {
	mustMatch(a, b)
	out := New[T](a.height, a.width)
	for i := range a.data {
		out.data[i] = a.data[i] + b.data[i]
	}
	return out
}

// Sub returns a-b elementwise.
func Sub[T Number](a, b *Grid[T]) *Grid[T] {
	mustMatch(a, b)
	out := New[T](a.height, a.width)
	for i := range a.data {
		out.data[i] = a.data[i] - b.data[i]
	}
	return out
}

// Mul returns a*b elementwise.
func Mul[T Number](a, b *Grid[T]) *Grid[T] {
	mustMatch(a, b)
	out := New[T](a.height, a.width)
	for i := range a.data {
		out.data[i] = a.data[i] * b.data[i]
	}
	return out
}

// Scale returns a*s for every element.
func Scale[T Number](a *Grid[T], s T) *Grid[T] {
	out := New[T](a.height, a.width)
	for i := range a.data {
		out.data[i] = a.data[i] * s
	}
	return out
}

// AddInPlace accumulates b into a.
func AddInPlace[T Number](a, b *Grid[T]) {
	mustMatch(a, b)
	for i := range a.data {
		a.data[i] += b.data[i]
	}
}

// Sum adds every element in row-major order.
//
// The summation order is sequential, so results may differ from a parallel
// reduction by floating-point round-off.
func Sum[T Number](a *Grid[T]) T {
	var s T
	for _, v := range a.data {
		s += v
	}
	return s
}

// MinMax returns the smallest and largest element. An empty grid yields zeros.
func MinMax[T Number](a *Grid[T]) (minVal, maxVal T) {
	if len(a.data) == 0 {
		return minVal, maxVal
	}
	minVal, maxVal = a.data[0], a.data[0]
	for _, v := range a.data[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}
