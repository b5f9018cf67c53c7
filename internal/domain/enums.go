package domain

type GoalStatus string

const (
	GoalDraft            GoalStatus = "draft"
	GoalAwaitingApproval GoalStatus = "awaiting_approval"
	GoalApproved         GoalStatus = "approved"
	GoalCompleted        GoalStatus = "completed"
	GoalArchived         GoalStatus = "archived"
)

// GoalStatuses lists every status in lifecycle order.
var GoalStatuses = []GoalStatus{
	GoalDraft,
	GoalAwaitingApproval,
	GoalApproved,
	GoalCompleted,
	GoalArchived,
}

// ValidGoalStatuses is the canonical set of accepted status strings.
var ValidGoalStatuses = map[string]bool{
	"draft": true, "awaiting_approval": true, "approved": true,
	"completed": true, "archived": true,
}

// ParseGoalStatus returns the status named by s, or false if s is not one of
// the five lifecycle values.
func ParseGoalStatus(s string) (GoalStatus, bool) {
	if !ValidGoalStatuses[s] {
		return "", false
	}
	return GoalStatus(s), true
}

// StatusNames returns the status values as plain strings, in lifecycle order.
func StatusNames() []string {
	names := make([]string, len(GoalStatuses))
	for i, s := range GoalStatuses {
		names[i] = string(s)
	}
	return names
}

type GoalType string

const (
	GoalBusiness             GoalType = "business"
	GoalManagerEffectiveness GoalType = "manager_effectiveness"
	GoalPersonalGrowth       GoalType = "personal_growth_and_development"
)

// ValidGoalTypes is the canonical set of accepted goal type strings.
var ValidGoalTypes = map[string]bool{
	"business":                        true,
	"manager_effectiveness":           true,
	"personal_growth_and_development": true,
}

// Role names an actor capability checked by the transition policy.
type Role string

const (
	RoleOwner          Role = "owner"
	RoleManager        Role = "manager"
	RoleOwnerOrManager Role = "owner_or_manager"
)
