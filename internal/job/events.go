package job

import "github.com/ashfall-games/simcore/internal/eventbus"

// EmitJobEvent publishes a job's current state to the shared "job_events"
// bus and the per-event-name bus, with payload {entity, job_type, state,
// progress, assigned_to, ...extra}, grounded on original_source's
// systems/job/system/events.rs emit_job_event.
func EmitJobEvent(buses *eventbus.Registry, eventName string, j *Job, extra map[string]interface{}) {
	payload := map[string]interface{}{
		"entity":   j.ID,
		"job_type": j.JobType,
		"state":    j.State,
		"progress": j.Progress,
	}
	if j.AssignedTo != nil {
		payload["assigned_to"] = *j.AssignedTo
	}
	for k, v := range extra {
		payload[k] = v
	}

	eventbus.GetOrCreateBus[map[string]interface{}](buses, "job_events").Send(payload)
	eventbus.GetOrCreateBus[map[string]interface{}](buses, eventName).Send(payload)
}
