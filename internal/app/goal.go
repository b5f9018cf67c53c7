package app

import (
	"github.com/alexanderramin/ambitions/internal/domain"
)

// GoalView is the outward shape of a goal: the record with its child
// summaries as stored, plus the parent backlink when the parent resolves.
type GoalView struct {
	Goal     *domain.Goal
	Parent   *domain.ParentLink
	Warnings []Warning
}

// HasWarnings reports whether any secondary failure accompanied the result.
func (v *GoalView) HasWarnings() bool { return v != nil && len(v.Warnings) > 0 }

// TransitionRequest asks to move a goal to a new status. Status is kept raw so
// malformed values are reported as validation errors.
type TransitionRequest struct {
	GoalID         string
	Status         string
	Comment        string
	RequesterEmail string
}

// CreateGoalInput carries the caller-provided fields of a new goal.
type CreateGoalInput struct {
	Title        string
	Description  string
	Type         domain.GoalType
	Status       domain.GoalStatus
	OwnerID      string
	ParentID     string
	Progress     int
	Achievements []domain.Achievement
	Actions      []domain.Action
}

// GoalPatch is a partial edit. Nil fields are left unchanged. Status and goal
// type are deliberately absent: status only moves through transitions.
type GoalPatch struct {
	Title        *string
	Description  *string
	Progress     *int
	Achievements *[]domain.Achievement
	Actions      *[]domain.Action
}

// Empty reports whether the patch changes nothing.
func (p GoalPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Progress == nil &&
		p.Achievements == nil && p.Actions == nil
}

// ReconcileReport summarizes a full rebuild of ladder summaries.
type ReconcileReport struct {
	GoalsScanned     int
	ParentsRewritten int
	SummariesAdded   int
	SummariesUpdated int
	SummariesRemoved int
	LinksIndexed     int
	DanglingParents  []string
	Warnings         []Warning
}
