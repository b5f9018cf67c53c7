package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ambitions/internal/domain"
)

// importableStatuses are the statuses a goal may be created in. Anything
// later in the lifecycle has to go through transitions.
var importableStatuses = map[string]bool{
	"":                                  true,
	string(domain.GoalDraft):            true,
	string(domain.GoalAwaitingApproval): true,
}

// ValidateImportSchema checks the import schema for errors before anything is
// written. Returns a slice of all validation errors found.
func ValidateImportSchema(schema *ImportSchema) []error {
	var errs []error

	if len(schema.People) == 0 && len(schema.Goals) == 0 {
		errs = append(errs, fmt.Errorf("import file defines no people and no goals"))
	}

	personRefs := make(map[string]bool)
	errs = append(errs, validatePeople(schema.People, personRefs)...)

	goalRefs := make(map[string]bool)
	errs = append(errs, validateGoals(schema.Goals, goalRefs)...)

	return errs
}

func validatePeople(people []PersonImport, refs map[string]bool) []error {
	var errs []error
	emails := make(map[string]bool)

	for i, p := range people {
		prefix := fmt.Sprintf("people[%d]", i)
		if p.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if refs[p.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref %q is duplicated", prefix, p.Ref))
		}

		email := domain.NormalizeEmail(p.Email)
		if !strings.Contains(email, "@") {
			errs = append(errs, fmt.Errorf("%s.email %q is not a valid address", prefix, p.Email))
		} else if emails[email] {
			errs = append(errs, fmt.Errorf("%s.email %q is duplicated", prefix, p.Email))
		}
		emails[email] = true

		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		}

		switch {
		case p.ManagerRef != "" && p.ManagerEmail != "":
			errs = append(errs, fmt.Errorf("%s: set manager_ref or manager_email, not both", prefix))
		case p.ManagerRef != "" && p.ManagerRef == p.Ref:
			errs = append(errs, fmt.Errorf("%s.manager_ref: person cannot manage themselves", prefix))
		case p.ManagerRef != "" && !refs[p.ManagerRef]:
			errs = append(errs, fmt.Errorf("%s.manager_ref %q must name an earlier person", prefix, p.ManagerRef))
		}

		if p.Ref != "" {
			refs[p.Ref] = true
		}
	}
	return errs
}

func validateGoals(goals []GoalImport, refs map[string]bool) []error {
	var errs []error

	for i, g := range goals {
		prefix := fmt.Sprintf("goals[%d]", i)
		if g.Ref == "" {
			errs = append(errs, fmt.Errorf("%s.ref is required", prefix))
		} else if refs[g.Ref] {
			errs = append(errs, fmt.Errorf("%s.ref %q is duplicated", prefix, g.Ref))
		}
		if strings.TrimSpace(g.Title) == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", prefix))
		}
		if !domain.ValidGoalTypes[g.GoalType] {
			errs = append(errs, fmt.Errorf("%s.goal_type: invalid value %q", prefix, g.GoalType))
		}
		if !importableStatuses[g.Status] {
			errs = append(errs, fmt.Errorf("%s.status: %q cannot be imported (use draft or awaiting_approval)", prefix, g.Status))
		}
		if g.Progress < 0 || g.Progress > 100 {
			errs = append(errs, fmt.Errorf("%s.progress %d must be between 0 and 100", prefix, g.Progress))
		}
		if !strings.Contains(g.OwnerEmail, "@") {
			errs = append(errs, fmt.Errorf("%s.owner_email %q is not a valid address", prefix, g.OwnerEmail))
		}

		switch {
		case g.ParentRef != "" && g.ParentID != "":
			errs = append(errs, fmt.Errorf("%s: set parent_ref or parent_id, not both", prefix))
		case g.ParentRef != "" && g.ParentRef == g.Ref:
			errs = append(errs, fmt.Errorf("%s.parent_ref: goal cannot be its own parent", prefix))
		case g.ParentRef != "" && !refs[g.ParentRef]:
			errs = append(errs, fmt.Errorf("%s.parent_ref %q must name an earlier goal", prefix, g.ParentRef))
		}

		if g.Ref != "" {
			refs[g.Ref] = true
		}
	}
	return errs
}
