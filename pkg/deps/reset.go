package deps

import "reflect"

// resetTracker remembers, per component, the last observed value of each
// resetOn field. A component's bound value is cleared only when a watched
// field actually changed between two observations; the first observation
// records a baseline and never triggers. Because the clear targets the
// component's own key (never a watched field) and equal writes are deduped by
// the store, the clear cannot re-trigger itself.
type resetTracker struct {
	prev map[string]map[string]any
}

func newResetTracker() *resetTracker {
	return &resetTracker{prev: make(map[string]map[string]any)}
}

// observe returns the subset of fields whose value changed since the last
// observation for componentID, updating the baseline either way.
func (t *resetTracker) observe(componentID string, fields []string, data map[string]any) []string {
	if len(fields) == 0 {
		return nil
	}

	baseline, seen := t.prev[componentID]
	current := make(map[string]any, len(fields))
	for _, field := range fields {
		current[field] = data[field]
	}
	t.prev[componentID] = current

	if !seen {
		return nil
	}

	var changed []string
	for _, field := range fields {
		if !reflect.DeepEqual(baseline[field], current[field]) {
			changed = append(changed, field)
		}
	}
	return changed
}

// forget drops the baseline for a component, typically on form reload.
func (t *resetTracker) forget(componentID string) {
	delete(t.prev, componentID)
}
