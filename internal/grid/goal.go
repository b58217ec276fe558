package grid

// ExceedsGoal reports whether adding candidate hours to a day already
// holding dayTotal would pass the configured daily goal. Advisory only;
// it never blocks a submit.
func ExceedsGoal(candidate, dayTotal, goal float64) bool {
	return candidate > 0 && dayTotal+candidate > goal
}
