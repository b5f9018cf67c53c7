package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/alexanderramin/ambitions/internal/service"
)

// Result reports what an import wrote. GoalIDs and PersonIDs map file refs to
// the ids that were assigned.
type Result struct {
	PeopleCreated  int
	PeopleExisting int
	GoalsCreated   int
	PersonIDs      map[string]string
	GoalIDs        map[string]string
	Warnings       []app.Warning
}

// Importer writes a validated schema through the services, so goals are
// attached to their parents exactly as if they were created one by one.
type Importer struct {
	people service.PersonService
	goals  service.GoalService
}

func New(people service.PersonService, goals service.GoalService) *Importer {
	return &Importer{people: people, goals: goals}
}

// Import validates schema and then creates people and goals in file order.
// People whose email is already registered are reused. Import is not atomic:
// on failure the returned Result describes what was written before the error.
func (im *Importer) Import(ctx context.Context, schema *ImportSchema) (*Result, error) {
	if errs := ValidateImportSchema(schema); len(errs) > 0 {
		return nil, fmt.Errorf("invalid import file: %w", errors.Join(errs...))
	}

	res := &Result{
		PersonIDs: make(map[string]string),
		GoalIDs:   make(map[string]string),
	}
	for _, p := range schema.People {
		if err := im.importPerson(ctx, p, res); err != nil {
			return res, fmt.Errorf("person %s: %w", p.Ref, err)
		}
	}
	for _, g := range schema.Goals {
		if err := im.importGoal(ctx, g, res); err != nil {
			return res, fmt.Errorf("goal %s: %w", g.Ref, err)
		}
	}
	return res, nil
}

func (im *Importer) importPerson(ctx context.Context, p PersonImport, res *Result) error {
	existing, err := im.people.GetByEmail(ctx, p.Email)
	if err == nil {
		res.PersonIDs[p.Ref] = existing.ID
		res.PeopleExisting++
		return nil
	}
	if !app.IsCode(err, app.ErrNotFound) {
		return err
	}

	person := &domain.Person{
		Email:     p.Email,
		Name:      p.Name,
		AvatarURL: p.AvatarURL,
	}
	switch {
	case p.ManagerRef != "":
		id := res.PersonIDs[p.ManagerRef]
		person.ManagerID = &id
	case p.ManagerEmail != "":
		manager, err := im.people.GetByEmail(ctx, p.ManagerEmail)
		if err != nil {
			return fmt.Errorf("resolving manager %s: %w", p.ManagerEmail, err)
		}
		person.ManagerID = &manager.ID
	}

	if err := im.people.Add(ctx, person); err != nil {
		return err
	}
	res.PersonIDs[p.Ref] = person.ID
	res.PeopleCreated++
	return nil
}

func (im *Importer) importGoal(ctx context.Context, g GoalImport, res *Result) error {
	parentID := g.ParentID
	if g.ParentRef != "" {
		parentID = res.GoalIDs[g.ParentRef]
	}

	view, err := im.goals.Create(ctx, app.CreateGoalInput{
		Title:        g.Title,
		Description:  g.Description,
		Type:         domain.GoalType(g.GoalType),
		Status:       domain.GoalStatus(g.Status),
		ParentID:     parentID,
		Progress:     g.Progress,
		Achievements: g.Achievements,
		Actions:      g.Actions,
	}, g.OwnerEmail)
	if err != nil {
		return err
	}
	res.GoalIDs[g.Ref] = view.Goal.ID
	res.GoalsCreated++
	res.Warnings = append(res.Warnings, view.Warnings...)
	return nil
}
