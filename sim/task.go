package sim

import "fmt"

// Task is an atomic unit of work of a given type within a case. Tasks are
// created by the Problem, owned by the engine for the duration of their
// lifecycle, and handed to planners and reporters as read-only values.
type Task struct {
	ID     int64
	CaseID int64
	Type   string

	// Data holds problem-defined fields (predictions, class labels, optimal
	// resources). The kernel never inspects it; planners and predicters may.
	Data map[string]any
}

func (t *Task) String() string {
	return fmt.Sprintf("%s(%d)_%d", t.Type, t.CaseID, t.ID)
}

// DataFloat returns a numeric data field, or 0 if absent or non-numeric.
func (t *Task) DataFloat(key string) float64 {
	switch v := t.Data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// DataString returns a string data field, or "" if absent or non-string.
func (t *Task) DataString(key string) string {
	if v, ok := t.Data[key].(string); ok {
		return v
	}
	return ""
}

// Assignment is a planning decision: process Task on Resource starting at
// Moment. Moment is normally the planning instant but may lie in the future.
type Assignment struct {
	Task     *Task
	Resource string
	Moment   float64
}

func (a Assignment) String() string {
	return fmt.Sprintf("%v->%s@%.2f", a.Task, a.Resource, a.Moment)
}
