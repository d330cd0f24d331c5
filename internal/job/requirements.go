package job

// RequirementsAreEmptyOrZero reports whether requirements is empty or every
// entry has amount zero (auto-satisfied), grounded on
// original_source's systems/job/requirements.rs
// requirements_are_empty_or_zero.
func RequirementsAreEmptyOrZero(requirements []ResourceAmount) bool {
	if len(requirements) == 0 {
		return true
	}
	for _, r := range requirements {
		if r.Amount != 0 {
			return false
		}
	}
	return true
}

// IsReservedResourcesEmpty reports whether job has no reserved resources,
// grounded on requirements.rs's is_reserved_resources_empty.
func IsReservedResourcesEmpty(j *Job) bool {
	return len(j.ReservedResources) == 0
}

// ReservedStockpileIsUnset reports whether job has no reserved stockpile
// entity, grounded on requirements.rs's
// reserved_stockpile_is_none_or_not_int.
func ReservedStockpileIsUnset(j *Job) bool {
	return j.ReservedStockpile == nil
}

// AreRequirementsMet reports whether, for every requirement kind, the
// delivered total is at least the required amount. Missing kinds in
// delivered count as zero. Grounded on
// original_source's systems/job/states/transitions.rs are_requirements_met.
func AreRequirementsMet(requirements, delivered []ResourceAmount) bool {
	deliveredByKind := make(map[string]float64, len(delivered))
	for _, d := range delivered {
		deliveredByKind[d.Kind] += d.Amount
	}
	for _, req := range requirements {
		if deliveredByKind[req.Kind] < req.Amount {
			return false
		}
	}
	return true
}
