package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/alexanderramin/ambitions/internal/repository"
)

type lifecycleService struct {
	store     repository.Store
	locks     *KeyedLocker
	approver  Approver
	hierarchy HierarchyService
	assembler Assembler
	opts      options
	logger    *slog.Logger
}

func NewLifecycleService(
	store repository.Store,
	locks *KeyedLocker,
	approver Approver,
	hierarchy HierarchyService,
	assembler Assembler,
	opts ...Option,
) LifecycleService {
	o := buildOptions(opts)
	return &lifecycleService{
		store:     store,
		locks:     locks,
		approver:  approver,
		hierarchy: hierarchy,
		assembler: assembler,
		opts:      o,
		logger:    o.logger,
	}
}

// Transition applies one status change. Request and policy failures are
// detected before anything is written. Once the goal itself is saved the
// call succeeds; parent summaries that could not be rewritten come back as
// warnings on the view.
func (s *lifecycleService) Transition(ctx context.Context, req app.TransitionRequest) (view *app.GoalView, err error) {
	startedAt := time.Now()
	fields := map[string]any{
		"goal_id": req.GoalID,
		"to":      req.Status,
	}
	defer func() { observe(ctx, s.opts.observer, "transition", startedAt, fields, &err) }()

	if strings.TrimSpace(req.GoalID) == "" {
		return nil, app.ValidationError("id", "goal id is required")
	}
	to, ok := domain.ParseGoalStatus(req.Status)
	if !ok {
		return nil, app.InvalidStatusError(req.Status)
	}

	unlock, err := s.locks.Lock(ctx, req.GoalID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	repos := s.store.Repos()
	goal, err := loadGoal(ctx, repos.Goals, req.GoalID)
	if err != nil {
		return nil, err
	}
	from := goal.Status
	fields["from"] = string(from)

	actor, err := s.resolveActor(ctx, repos, goal, req.RequesterEmail)
	if err != nil {
		return nil, err
	}
	fields["is_owner"] = actor.IsOwner
	fields["is_manager"] = actor.IsManager

	if err := domain.EvaluateTransition(from, to, actor); err != nil {
		var denial *domain.TransitionDenial
		if errors.As(err, &denial) {
			return nil, app.FromDenial(denial)
		}
		return nil, err
	}

	goal.Status = to
	goal.UpdatedAt = s.opts.clock()
	err = s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		return r.Goals.Update(ctx, goal)
	})
	if repository.IsNotFound(err) {
		return nil, app.NotFoundError("goal", goal.ID, err)
	}
	if err != nil {
		return nil, app.StorageError("saving goal", err)
	}
	if req.Comment != "" {
		s.logger.InfoContext(ctx, "transition comment",
			"goal_id", goal.ID, "from", string(from), "to", string(to), "comment", req.Comment)
	}

	// The child is committed; finish the parent rewrite even if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	warnings := s.hierarchy.Propagate(ctx, goal)
	fields["warnings"] = len(warnings)

	view = s.assembler.Assemble(ctx, goal)
	view.Warnings = warnings
	return view, nil
}

// resolveActor works out the requester's relationship to goal. Ownership is a
// directory email match; the manager role comes from the approver.
func (s *lifecycleService) resolveActor(ctx context.Context, repos repository.Repos, goal *domain.Goal, email string) (domain.Actor, error) {
	var actor domain.Actor
	isOwner, err := ownerMatches(ctx, repos.People, goal.OwnerID, email)
	if err != nil {
		return actor, err
	}
	actor.IsOwner = isOwner

	if s.approver != nil && strings.TrimSpace(email) != "" {
		ok, err := s.approver.CanApprove(ctx, email, goal.OwnerID)
		if err != nil {
			return actor, app.StorageError("resolving approver", err)
		}
		actor.IsManager = ok
	}
	return actor, nil
}
