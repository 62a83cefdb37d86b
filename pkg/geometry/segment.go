package geometry

// PointSegmentDistance returns the shortest distance from p to the closed
// segment a-b. The projection parameter is clamped to [0,1], so the nearest
// point may be one of the endpoints.
func PointSegmentDistance(p, a, b Point2D) float64 {
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		// Degenerate segment.
		return p.Distance(a)
	}

	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	nearest := a.Add(ab.Scale(t))
	return p.Distance(nearest)
}

// NearestPointOnSegment returns the point on the closed segment a-b nearest
// to p.
func NearestPointOnSegment(p, a, b Point2D) Point2D {
	ab := b.Sub(a)
	lenSq := ab.X*ab.X + ab.Y*ab.Y
	if lenSq == 0 {
		return a
	}

	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(ab.Scale(t))
}
