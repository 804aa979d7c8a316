package routing

// Task identifiers of the built-in evaluation tasks.
const (
	TaskMetadata   = "metadata"
	TaskEditorial  = "editorial"
	TaskCompliance = "compliance"
	TaskAccuracy   = "accuracy"
	TaskEmptyTag   = "emptytag"
)

// DefaultRules mirror the production triage policy: pages under the Health
// Information Library ("healthy-lifestyle" paths) additionally run the
// empty-tag check; everything else runs the four standard tasks.
func DefaultRules() []Rule {
	standard := []string{TaskMetadata, TaskEditorial, TaskCompliance, TaskAccuracy}

	return []Rule{
		{
			Label:   "hil",
			Pattern: "healthy-lifestyle",
			Tasks:   append(append([]string{}, standard...), TaskEmptyTag),
		},
		{
			Label:   "standard",
			Pattern: "",
			Tasks:   standard,
		},
	}
}
