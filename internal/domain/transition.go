package domain

import "fmt"

// Actor describes the requester's relationship to the goal being moved.
type Actor struct {
	IsOwner   bool
	IsManager bool
}

func (a Actor) has(r Role) bool {
	switch r {
	case RoleOwner:
		return a.IsOwner
	case RoleManager:
		return a.IsManager
	case RoleOwnerOrManager:
		return a.IsOwner || a.IsManager
	}
	return false
}

// TransitionRule is one legal edge of the goal lifecycle.
type TransitionRule struct {
	From     GoalStatus
	To       GoalStatus
	Required Role
}

// transitionTable is the complete set of legal moves. There are no self-loops:
// resubmitting the current status is never legal.
var transitionTable = []TransitionRule{
	{GoalDraft, GoalAwaitingApproval, RoleOwner},
	{GoalDraft, GoalArchived, RoleOwner},
	{GoalAwaitingApproval, GoalApproved, RoleManager},
	{GoalAwaitingApproval, GoalDraft, RoleManager},
	{GoalAwaitingApproval, GoalArchived, RoleOwnerOrManager},
	{GoalApproved, GoalArchived, RoleOwner},
	{GoalApproved, GoalCompleted, RoleOwner},
	{GoalArchived, GoalDraft, RoleOwner},
}

// TransitionRules returns a copy of the legal transition table.
func TransitionRules() []TransitionRule {
	return append([]TransitionRule(nil), transitionTable...)
}

// LegalTargets returns the statuses reachable from `from` in one step,
// regardless of actor.
func LegalTargets(from GoalStatus) []GoalStatus {
	var out []GoalStatus
	for _, r := range transitionTable {
		if r.From == from {
			out = append(out, r.To)
		}
	}
	return out
}

func lookupRule(from, to GoalStatus) (TransitionRule, bool) {
	for _, r := range transitionTable {
		if r.From == from && r.To == to {
			return r, true
		}
	}
	return TransitionRule{}, false
}

type DenialReason string

const (
	DenyInvalidTransition DenialReason = "invalid_transition"
	DenyForbiddenRole     DenialReason = "forbidden_role"
)

// TransitionDenial explains why the policy rejected a move.
type TransitionDenial struct {
	Reason   DenialReason
	From     GoalStatus
	To       GoalStatus
	Required Role
}

func (d *TransitionDenial) Error() string {
	if d.Reason == DenyForbiddenRole {
		return fmt.Sprintf("transition %s -> %s requires role %s", d.From, d.To, d.Required)
	}
	return fmt.Sprintf("transition %s -> %s is not allowed", d.From, d.To)
}

// EvaluateTransition decides whether actor may move a goal from `from` to `to`.
// It returns nil on allow and a *TransitionDenial otherwise.
func EvaluateTransition(from, to GoalStatus, actor Actor) error {
	rule, ok := lookupRule(from, to)
	if !ok {
		return &TransitionDenial{Reason: DenyInvalidTransition, From: from, To: to}
	}
	if !actor.has(rule.Required) {
		return &TransitionDenial{Reason: DenyForbiddenRole, From: from, To: to, Required: rule.Required}
	}
	return nil
}
