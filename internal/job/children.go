package job

// ProcessChildren walks job's children, running processFn on each (which
// recurses into grandchildren), and propagates cancellation top-down: if
// parentCancelled is true, every processed child is forced into
// StateCancelled regardless of what processFn produced. Returns the
// updated children slice and whether every child has reached StateComplete
// (vacuously true for a childless job). Grounded on original_source's
// systems/job/children.rs process_job_children, adapted from its
// (children_json, all_children_complete_conditioned_on_non_cancelled_and_
// non_empty) return shape to a plain completeness flag the caller combines
// with its own empty-check.
func ProcessChildren(children []*Job, parentCancelled bool, processFn func(child *Job) *Job) ([]*Job, bool) {
	if len(children) == 0 {
		return children, true
	}

	out := make([]*Job, len(children))
	allComplete := true
	for i, child := range children {
		processed := processFn(child)
		if parentCancelled {
			processed.State = StateCancelled
		}
		out[i] = processed
		if processed.State != StateComplete {
			allComplete = false
		}
	}
	return out, allComplete
}
