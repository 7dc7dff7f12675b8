package solver

import (
	"context"
	"testing"
	"time"

	"github.com/vtakaj/ShiftAgent-sub000/pkg/models"
)

var monday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func testSolver() *Greedy {
	return &Greedy{TimeBudget: 2 * time.Second, MaxPasses: 20, Seed: 1}
}

func TestSolveAssignsCompatibleEmployee(t *testing.T) {
	amy := &models.Employee{ID: "e1", Name: "Amy", Skills: []string{"nurse"}}
	bob := &models.Employee{ID: "e2", Name: "Bob", Skills: []string{"cook"}}
	shift := &models.Shift{ID: "day_1", Start: monday, End: monday.Add(8 * time.Hour), RequiredSkills: []string{"nurse"}}
	s := &models.Schedule{Employees: []*models.Employee{amy, bob}, Shifts: []*models.Shift{shift}}

	result, err := testSolver().Solve(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := result.ShiftByID("day_1")
	if got.Employee == nil || got.Employee.ID != "e1" {
		t.Errorf("expected day_1 assigned to e1, got %+v", got.Employee)
	}
	if !result.Score.Feasible() {
		t.Errorf("expected feasible score, got %+v", result.Score)
	}
}

func TestSolveDoesNotMutateInput(t *testing.T) {
	amy := &models.Employee{ID: "e1", Name: "Amy", Skills: []string{"nurse"}}
	shift := &models.Shift{ID: "day_1", Start: monday, End: monday.Add(8 * time.Hour), RequiredSkills: []string{"nurse"}}
	s := &models.Schedule{Employees: []*models.Employee{amy}, Shifts: []*models.Shift{shift}}

	_, err := testSolver().Solve(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shift.Employee != nil {
		t.Error("solver must not mutate the input schedule")
	}
}

func TestSolveRespectsPinnedAndLocked(t *testing.T) {
	amy := &models.Employee{ID: "e1", Name: "Amy", Skills: []string{"nurse"}}
	bob := &models.Employee{ID: "e2", Name: "Bob", Skills: []string{"nurse"}}

	pinned := &models.Shift{ID: "day_1", Start: monday, End: monday.Add(8 * time.Hour), RequiredSkills: []string{"nurse"}, Employee: bob, Pinned: true}
	locked := &models.Shift{ID: "day_2", Start: monday.AddDate(0, 0, 1), End: monday.AddDate(0, 0, 1).Add(8 * time.Hour), RequiredSkills: []string{"nurse"}, Employee: bob}
	locked.Lock("ops", "confirmed")
	open := &models.Shift{ID: "day_3", Start: monday.AddDate(0, 0, 2), End: monday.AddDate(0, 0, 2).Add(8 * time.Hour), RequiredSkills: []string{"nurse"}}

	s := &models.Schedule{Employees: []*models.Employee{amy, bob}, Shifts: []*models.Shift{pinned, locked, open}}

	result, err := testSolver().Solve(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := result.ShiftByID("day_1").Employee; got == nil || got.ID != "e2" {
		t.Errorf("pinned shift moved: %+v", got)
	}
	if got := result.ShiftByID("day_2").Employee; got == nil || got.ID != "e2" {
		t.Errorf("locked shift moved: %+v", got)
	}
	if got := result.ShiftByID("day_3").Employee; got == nil {
		t.Error("expected open shift to be filled")
	}
}

func TestSolveAvoidsOverlap(t *testing.T) {
	amy := &models.Employee{ID: "e1", Name: "Amy", Skills: []string{"nurse"}}
	s1 := &models.Shift{ID: "day_1", Start: monday, End: monday.Add(4 * time.Hour), RequiredSkills: []string{"nurse"}}
	s2 := &models.Shift{ID: "day_2", Start: monday.Add(2 * time.Hour), End: monday.Add(6 * time.Hour), RequiredSkills: []string{"nurse"}}
	s := &models.Schedule{Employees: []*models.Employee{amy}, Shifts: []*models.Shift{s1, s2}}

	result, err := testSolver().Solve(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assigned := result.AssignedCount()
	if assigned != 1 {
		t.Errorf("expected exactly 1 shift assignable without overlap, got %d", assigned)
	}
	if result.Score.Hard != 0 {
		t.Errorf("expected no hard violations, got %d", result.Score.Hard)
	}
}

func TestSolveBestEffortOnInfeasible(t *testing.T) {
	amy := &models.Employee{ID: "e1", Name: "Amy", Skills: []string{"cook"}}
	shift := &models.Shift{ID: "day_1", Start: monday, End: monday.Add(8 * time.Hour), RequiredSkills: []string{"nurse"}}
	s := &models.Schedule{Employees: []*models.Employee{amy}, Shifts: []*models.Shift{shift}}

	result, err := testSolver().Solve(context.Background(), s)
	if err != nil {
		t.Fatalf("solver must return best-effort, not an error: %v", err)
	}
	if result == nil {
		t.Fatal("solver must always return a schedule")
	}
	if result.ShiftByID("day_1").Employee != nil {
		t.Error("no feasible candidate exists; shift should stay unassigned")
	}
}

func TestScoreSchedule(t *testing.T) {
	amy := &models.Employee{ID: "e1", Name: "Amy", Skills: []string{"cook"}}
	bad := &models.Shift{ID: "day_1", Start: monday, End: monday.Add(8 * time.Hour), RequiredSkills: []string{"nurse"}, Employee: amy}
	empty := &models.Shift{ID: "day_2", Start: monday.AddDate(0, 0, 1), End: monday.AddDate(0, 0, 1).Add(8 * time.Hour), RequiredSkills: []string{"nurse"}}
	s := &models.Schedule{Employees: []*models.Employee{amy}, Shifts: []*models.Shift{bad, empty}}

	score := ScoreSchedule(s)
	if score.Hard != 1 {
		t.Errorf("expected 1 hard violation (missing skill), got %d", score.Hard)
	}
	if score.Medium != 1 {
		t.Errorf("expected 1 medium penalty (unassigned shift), got %d", score.Medium)
	}
}
