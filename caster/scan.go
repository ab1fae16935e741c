package caster

// IntersectSegments returns the closest intersection between the ray and the
// segments. Segments that can't be evaluated are reported as faults.
func IntersectSegments(r Ray, segments []Segment) (*Intersection, Faults) {
	var closest *Intersection
	var faults Faults

	for i, s := range segments {
		hit, err := IntersectSegment(r, s)
		if err != nil {
			faults = append(faults, Fault{
				Shape: ShapeSegment,
				Index: i,
				Err:   err,
			})
			continue
		}

		closest = ChooseClosest(closest, hit)
	}

	return closest, faults
}

// IntersectCircles returns the closest intersection between the ray and the
// circles. Circles that can't be evaluated are reported as faults.
func IntersectCircles(r Ray, circles []Circle, accuracy float64) (*Intersection, Faults) {
	var closest *Intersection
	var faults Faults

	for i, c := range circles {
		hit, err := IntersectCircle(r, c, accuracy, 0)
		if err != nil {
			faults = append(faults, Fault{
				Shape: ShapeCircle,
				Index: i,
				Err:   err,
			})
			continue
		}

		closest = ChooseClosest(closest, hit)
	}

	return closest, faults
}

// Intersect returns the closest intersection between the ray and all the
// shapes of the scene.
func Intersect(r Ray, scene Scene, accuracy float64) (*Intersection, Faults) {
	segmentHit, faults := IntersectSegments(r, scene.Segments)
	circleHit, circleFaults := IntersectCircles(r, scene.Circles, accuracy)

	return ChooseClosest(segmentHit, circleHit), append(faults, circleFaults...)
}
