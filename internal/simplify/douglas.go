// Package simplify reduces polygon vertex counts within a tolerance and
// repairs the result to a topologically valid ring set.
package simplify

import "math"

// ringSimplify runs Douglas-Peucker over a closed flat XY ring. The ring is
// anchored at its first vertex and at the vertex farthest from it, so closure
// never degenerates the baseline. The returned ring is closed. Tolerance is
// in the units of the ring's coordinate system; callers must not reuse a
// pixel-space tolerance on geographic coordinates.
func ringSimplify(flat []float64, tolerance float64) []float64 {
	n := len(flat)/2 - 1 // distinct vertices, ignoring the closing duplicate
	if n < 4 || tolerance <= 0 {
		out := make([]float64, len(flat))
		copy(out, flat)
		return out
	}

	split := 1
	var maxDist float64
	for i := 1; i < n; i++ {
		d := math.Hypot(flat[i*2]-flat[0], flat[i*2+1]-flat[1])
		if d > maxDist {
			maxDist = d
			split = i
		}
	}

	keep := make([]bool, n+1)
	keep[0], keep[split], keep[n] = true, true, true
	douglasPeucker(flat, 0, split, tolerance, keep)
	douglasPeucker(flat, split, n, tolerance, keep)

	out := make([]float64, 0, len(flat))
	for i := 0; i <= n; i++ {
		if keep[i] {
			out = append(out, flat[i*2], flat[i*2+1])
		}
	}
	return out
}

func douglasPeucker(flat []float64, i, j int, tolerance float64, keep []bool) {
	if j <= i+1 {
		return
	}
	var maxDist float64
	farthest := -1
	for k := i + 1; k < j; k++ {
		d := perpDistance(flat[k*2], flat[k*2+1], flat[i*2], flat[i*2+1], flat[j*2], flat[j*2+1])
		if d > maxDist {
			maxDist = d
			farthest = k
		}
	}
	if farthest >= 0 && maxDist > tolerance {
		keep[farthest] = true
		douglasPeucker(flat, i, farthest, tolerance, keep)
		douglasPeucker(flat, farthest, j, tolerance, keep)
	}
}

// perpDistance is the distance from point p to the segment ab.
func perpDistance(px, py, ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	len2 := dx*dx + dy*dy
	if len2 == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / len2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(px-(ax+t*dx), py-(ay+t*dy))
}
