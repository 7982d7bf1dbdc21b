package sim

import (
	"testing"
)

func TestTaskState_Lifecycle(t *testing.T) {
	// GIVEN an activated task
	s := NewTaskState()
	task := &Task{ID: 1, CaseID: 7, Type: "T"}
	if err := s.Activate(task); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if !s.IsUnassigned(1) {
		t.Error("activated task not unassigned")
	}

	// WHEN it is assigned and completed
	if err := s.MarkAssigned(task, "R1", 3); err != nil {
		t.Fatalf("MarkAssigned: %v", err)
	}
	if s.IsUnassigned(1) {
		t.Error("assigned task still reported unassigned")
	}
	if err := s.Complete(task); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	// THEN the case has no live tasks left
	if !s.CaseClosed(7) {
		t.Error("case with no live tasks not closed")
	}
	if s.CompletedCount() != 1 {
		t.Errorf("CompletedCount: got %d, want 1", s.CompletedCount())
	}
}

func TestTaskState_CaseStaysOpenWithLiveSuccessor(t *testing.T) {
	// GIVEN a case whose first task completes but reveals a successor
	s := NewTaskState()
	first := &Task{ID: 1, CaseID: 7, Type: "T1"}
	succ := &Task{ID: 2, CaseID: 7, Type: "T2"}
	if err := s.Activate(first); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := s.MarkAssigned(first, "R1", 0); err != nil {
		t.Fatalf("MarkAssigned: %v", err)
	}
	if err := s.Complete(first); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := s.Activate(succ); err != nil {
		t.Fatalf("Activate successor: %v", err)
	}

	// THEN the case is not closed until the successor completes too
	if s.CaseClosed(7) {
		t.Error("case closed while successor is live")
	}
	if err := s.MarkAssigned(succ, "R2", 1); err != nil {
		t.Fatalf("MarkAssigned successor: %v", err)
	}
	if err := s.Complete(succ); err != nil {
		t.Fatalf("Complete successor: %v", err)
	}
	if !s.CaseClosed(7) {
		t.Error("case not closed after last task completed")
	}
}

func TestTaskState_DoubleActivate(t *testing.T) {
	s := NewTaskState()
	task := &Task{ID: 1, CaseID: 7, Type: "T"}
	if err := s.Activate(task); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := s.Activate(task); err == nil {
		t.Error("double Activate: want error")
	}
}

func TestTaskState_AssignUnknownTask(t *testing.T) {
	s := NewTaskState()
	if err := s.MarkAssigned(&Task{ID: 9, CaseID: 1}, "R1", 0); err == nil {
		t.Error("MarkAssigned on never-activated task: want error")
	}
}

func TestTaskState_CompleteUnassignedTask(t *testing.T) {
	s := NewTaskState()
	task := &Task{ID: 1, CaseID: 7, Type: "T"}
	if err := s.Activate(task); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := s.Complete(task); err == nil {
		t.Error("Complete on unassigned task: want error")
	}
}

func TestTaskState_Unassigned_ActivationOrder(t *testing.T) {
	s := NewTaskState()
	for i := int64(1); i <= 3; i++ {
		if err := s.Activate(&Task{ID: i, CaseID: i, Type: "T"}); err != nil {
			t.Fatalf("Activate: %v", err)
		}
	}

	got := s.Unassigned()
	for i, task := range got {
		if task.ID != int64(i+1) {
			t.Fatalf("unassigned order: got %v at %d, want id %d", task, i, i+1)
		}
	}
}

func TestTaskState_CheckConsistency(t *testing.T) {
	s := NewTaskState()
	task := &Task{ID: 1, CaseID: 7, Type: "T"}
	if err := s.Activate(task); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := s.MarkAssigned(task, "R1", 0); err != nil {
		t.Fatalf("MarkAssigned: %v", err)
	}
	if err := s.CheckConsistency(); err != nil {
		t.Errorf("CheckConsistency on sound state: %v", err)
	}
}
