package caster

// ChooseClosest returns the intersection closest to the ray origin. Nil
// intersections are ignored and ties are resolved in favor of first.
func ChooseClosest(first *Intersection, second *Intersection) *Intersection {
	switch {
	case first == nil:
		return second

	case second == nil:
		return first

	case first.Len > second.Len:
		return second

	default:
		return first
	}
}
