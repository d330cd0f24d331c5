package job

import (
	"strings"
	"sync"

	"github.com/ashfall-games/simcore/internal/ecs"
)

// Handler processes one tick of in_progress work for a job type. It may
// return a replacement job whose State overrides the default transition
// logic (e.g. StateFailed on error, or StateDelivering via NeedsDelivery),
// or an error, which Process turns into StateFailed with FailureReason set.
type Handler func(world *ecs.World, agentID, jobID ecs.EntityID, j *Job) (*Job, error)

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
}

// HandlerRegistry maps normalized job_type names to Handlers, grounded on
// original_source's systems/job/job_handler_registry.rs. Name
// normalization (trim, lowercase, spaces to underscores) is identical
// across Register and Get.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewHandlerRegistry creates an empty handler registry.
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]Handler)}
}

// Register installs handler under jobType's normalized key, replacing any
// existing handler for that key. Plugins and the scripting bridge both
// register through this method.
func (r *HandlerRegistry) Register(jobType string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[normalizeKey(jobType)] = handler
}

// Get returns the handler registered for jobType's normalized key.
func (r *HandlerRegistry) Get(jobType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[normalizeKey(jobType)]
	return h, ok
}

// Keys returns every registered normalized job type name.
func (r *HandlerRegistry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		out = append(out, k)
	}
	return out
}
