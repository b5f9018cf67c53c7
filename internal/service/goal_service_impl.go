package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/alexanderramin/ambitions/internal/repository"
	"github.com/google/uuid"
)

type goalService struct {
	store     repository.Store
	locks     *KeyedLocker
	hierarchy HierarchyService
	assembler Assembler
	opts      options
	logger    *slog.Logger
}

func NewGoalService(
	store repository.Store,
	locks *KeyedLocker,
	hierarchy HierarchyService,
	assembler Assembler,
	opts ...Option,
) GoalService {
	o := buildOptions(opts)
	return &goalService{
		store:     store,
		locks:     locks,
		hierarchy: hierarchy,
		assembler: assembler,
		opts:      o,
		logger:    o.logger,
	}
}

// initialStatuses are the only statuses a goal may be created in.
var initialStatuses = []string{string(domain.GoalDraft), string(domain.GoalAwaitingApproval)}

func (s *goalService) Create(ctx context.Context, in app.CreateGoalInput, creatorEmail string) (view *app.GoalView, err error) {
	startedAt := time.Now()
	fields := map[string]any{"parent_id": in.ParentID}
	defer func() { observe(ctx, s.opts.observer, "create-goal", startedAt, fields, &err) }()

	repos := s.store.Repos()
	creator, err := s.requirePerson(ctx, repos.People, creatorEmail)
	if err != nil {
		return nil, err
	}
	ownerID := domain.CoalesceStr(in.OwnerID, creator.ID)
	if ownerID != creator.ID {
		return nil, app.ForbiddenError(domain.RoleOwner, "goals can only be created by their owner")
	}

	status := domain.GoalStatus(domain.CoalesceStr(string(in.Status), string(domain.GoalDraft)))
	if status != domain.GoalDraft && status != domain.GoalAwaitingApproval {
		return nil, &app.GoalError{
			Code:        app.ErrValidation,
			Field:       "status",
			Message:     fmt.Sprintf("goals start as %s", strings.Join(initialStatuses, " or ")),
			ValidValues: initialStatuses,
		}
	}
	if !domain.ValidGoalTypes[string(in.Type)] {
		return nil, app.ValidationError("goalType", "goal type %q is not one of business, manager_effectiveness, personal_growth_and_development", in.Type)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, app.ValidationError("title", "title is required")
	}
	if in.Progress < 0 || in.Progress > 100 {
		return nil, app.ValidationError("progress", "progress %d must be between 0 and 100", in.Progress)
	}

	now := s.opts.clock()
	goal := &domain.Goal{
		ID:           uuid.New().String(),
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Status:       status,
		Type:         in.Type,
		OwnerID:      ownerID,
		Progress:     in.Progress,
		Achievements: in.Achievements,
		Actions:      in.Actions,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.ParentID != "" {
		parentID := in.ParentID
		goal.ParentID = &parentID
	}
	if err := goal.Validate(); err != nil {
		return nil, app.ValidationError("goal", "%v", err)
	}
	fields["goal_id"] = goal.ID

	unlock, err := s.locks.Lock(ctx, goal.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		return r.Goals.Create(ctx, goal)
	})
	if err != nil {
		return nil, app.StorageError("creating goal", err)
	}

	ctx = context.WithoutCancel(ctx)
	warnings := s.hierarchy.Attach(ctx, goal)
	fields["warnings"] = len(warnings)
	view = s.assembler.Assemble(ctx, goal)
	view.Warnings = warnings
	return view, nil
}

func (s *goalService) Edit(ctx context.Context, id string, patch app.GoalPatch, editorEmail string) (view *app.GoalView, err error) {
	startedAt := time.Now()
	fields := map[string]any{"goal_id": id}
	defer func() { observe(ctx, s.opts.observer, "edit-goal", startedAt, fields, &err) }()

	if strings.TrimSpace(id) == "" {
		return nil, app.ValidationError("id", "goal id is required")
	}
	if patch.Empty() {
		return nil, app.ValidationError("patch", "nothing to update")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, app.ValidationError("title", "title cannot be blank")
	}
	if patch.Progress != nil && (*patch.Progress < 0 || *patch.Progress > 100) {
		return nil, app.ValidationError("progress", "progress %d must be between 0 and 100", *patch.Progress)
	}

	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	repos := s.store.Repos()
	goal, err := loadGoal(ctx, repos.Goals, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, repos.People, goal, editorEmail); err != nil {
		return nil, err
	}

	if patch.Title != nil {
		goal.Title = strings.TrimSpace(*patch.Title)
	}
	goal.Description = domain.StrFromPtrWithDefault(goal.Description, patch.Description)
	goal.Progress = domain.IntFromPtrWithDefault(goal.Progress, patch.Progress)
	if patch.Achievements != nil {
		goal.Achievements = *patch.Achievements
	}
	if patch.Actions != nil {
		goal.Actions = *patch.Actions
	}
	goal.UpdatedAt = s.opts.clock()

	err = s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		return r.Goals.Update(ctx, goal)
	})
	if repository.IsNotFound(err) {
		return nil, app.NotFoundError("goal", id, err)
	}
	if err != nil {
		return nil, app.StorageError("saving goal", err)
	}

	ctx = context.WithoutCancel(ctx)
	warnings := s.hierarchy.Propagate(ctx, goal)
	fields["warnings"] = len(warnings)
	view = s.assembler.Assemble(ctx, goal)
	view.Warnings = warnings
	return view, nil
}

func (s *goalService) Get(ctx context.Context, id string) (*app.GoalView, error) {
	if strings.TrimSpace(id) == "" {
		return nil, app.ValidationError("id", "goal id is required")
	}
	goal, err := loadGoal(ctx, s.store.Repos().Goals, id)
	if err != nil {
		return nil, err
	}
	return s.assembler.Assemble(ctx, goal), nil
}

func (s *goalService) List(ctx context.Context, filter app.GoalListFilter) ([]*app.GoalView, error) {
	if filter.Status != "" && !domain.ValidGoalStatuses[string(filter.Status)] {
		return nil, app.InvalidStatusError(string(filter.Status))
	}
	goals, err := s.store.Repos().Goals.List(ctx, repository.GoalFilter{
		OwnerID:  filter.OwnerID,
		Status:   filter.Status,
		ParentID: filter.ParentID,
	})
	if err != nil {
		return nil, app.StorageError("listing goals", err)
	}
	views := make([]*app.GoalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, s.assembler.Assemble(ctx, g))
	}
	return views, nil
}

// Delete removes a goal owned by the requester. Its summary is dropped from
// every parent. Goals laddered under it keep their parentId and lose the
// backlink; they are logged so an operator can re-home them.
func (s *goalService) Delete(ctx context.Context, id string, requesterEmail string) (warnings []app.Warning, err error) {
	startedAt := time.Now()
	fields := map[string]any{"goal_id": id}
	defer func() { observe(ctx, s.opts.observer, "delete-goal", startedAt, fields, &err) }()

	if strings.TrimSpace(id) == "" {
		return nil, app.ValidationError("id", "goal id is required")
	}

	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	repos := s.store.Repos()
	goal, err := loadGoal(ctx, repos.Goals, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, repos.People, goal, requesterEmail); err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		return r.Goals.Delete(ctx, id)
	})
	if repository.IsNotFound(err) {
		return nil, app.NotFoundError("goal", id, err)
	}
	if err != nil {
		return nil, app.StorageError("deleting goal", err)
	}

	ctx = context.WithoutCancel(ctx)
	warnings = s.hierarchy.Detach(ctx, id)
	fields["warnings"] = len(warnings)

	orphans, err := repos.Goals.List(ctx, repository.GoalFilter{ParentID: id})
	if err != nil {
		s.logger.WarnContext(ctx, "listing goals laddered under deleted goal", "goal_id", id, "error", err)
		return warnings, nil
	}
	for _, o := range orphans {
		s.logger.WarnContext(ctx, "goal now references a deleted parent",
			"goal_id", o.ID, "parent_id", id)
	}
	fields["orphaned_children"] = len(orphans)
	return warnings, nil
}

func (s *goalService) requirePerson(ctx context.Context, people repository.PersonRepo, email string) (*domain.Person, error) {
	if strings.TrimSpace(email) == "" {
		return nil, app.ValidationError("requester", "requester email is required")
	}
	p, err := people.GetByEmail(ctx, email)
	if repository.IsNotFound(err) {
		return nil, app.ForbiddenError(domain.RoleOwner, "%s is not in the people directory", email)
	}
	if err != nil {
		return nil, app.StorageError("resolving requester", err)
	}
	return p, nil
}

func (s *goalService) requireOwner(ctx context.Context, people repository.PersonRepo, goal *domain.Goal, email string) error {
	ok, err := ownerMatches(ctx, people, goal.OwnerID, email)
	if err != nil {
		return err
	}
	if !ok {
		return app.ForbiddenError(domain.RoleOwner, "only the owner may change goal %s", goal.ID)
	}
	return nil
}
