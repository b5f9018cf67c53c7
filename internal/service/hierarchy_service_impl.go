package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/alexanderramin/ambitions/internal/repository"
)

type hierarchyService struct {
	store    repository.Store
	locks    *KeyedLocker
	logger   *slog.Logger
	observer UseCaseObserver
}

func NewHierarchyService(store repository.Store, locks *KeyedLocker, opts ...Option) HierarchyService {
	o := buildOptions(opts)
	return &hierarchyService{
		store:    store,
		locks:    locks,
		logger:   o.logger,
		observer: o.observer,
	}
}

// Attach adds child's summary to its declared parent and indexes the link.
// A parent that does not exist leaves the child unladdered; that is logged,
// not reported.
func (s *hierarchyService) Attach(ctx context.Context, child *domain.Goal) []app.Warning {
	if !child.HasParent() {
		return nil
	}
	parentID := *child.ParentID

	err := s.rewriteParent(ctx, parentID, func(ctx context.Context, r repository.Repos, parent *domain.Goal) (bool, error) {
		summary, err := summarize(ctx, r.People, child)
		if err != nil {
			return false, fmt.Errorf("summarizing %s: %w", child.ID, err)
		}
		if parent.MirrorChild(summary) == 0 {
			parent.Children = append(parent.Children, summary)
		}
		if err := r.Ladder.Link(ctx, child.ID, parentID); err != nil {
			return false, err
		}
		return true, nil
	})
	if repository.IsNotFound(err) {
		s.logger.WarnContext(ctx, "declared parent goal does not exist; goal left unladdered",
			"goal_id", child.ID, "parent_id", parentID)
		return nil
	}
	if err != nil {
		return []app.Warning{s.syncFailed(ctx, child.ID, parentID, err)}
	}
	return nil
}

// Propagate rewrites every summary of goal held by a parent. The ladder index
// supplies the parents; a declared parent missing from the index (an earlier
// attach that failed) is attached now.
func (s *hierarchyService) Propagate(ctx context.Context, goal *domain.Goal) []app.Warning {
	parents, err := s.store.Repos().Ladder.ParentsOf(ctx, goal.ID)
	if err != nil {
		return []app.Warning{s.syncFailed(ctx, goal.ID, "", fmt.Errorf("looking up parents: %w", err))}
	}

	var warnings []app.Warning
	declaredLinked := false
	for _, parentID := range parents {
		if goal.HasParent() && parentID == *goal.ParentID {
			declaredLinked = true
		}
		err := s.rewriteParent(ctx, parentID, func(ctx context.Context, r repository.Repos, parent *domain.Goal) (bool, error) {
			summary, err := summarize(ctx, r.People, goal)
			if err != nil {
				return false, fmt.Errorf("summarizing %s: %w", goal.ID, err)
			}
			if parent.MirrorChild(summary) == 0 {
				s.logger.WarnContext(ctx, "ladder index points at parent without a summary",
					"goal_id", goal.ID, "parent_id", parentID)
				return false, nil
			}
			return true, nil
		})
		if repository.IsNotFound(err) {
			continue
		}
		if err != nil {
			warnings = append(warnings, s.syncFailed(ctx, goal.ID, parentID, err))
		}
	}

	if goal.HasParent() && !declaredLinked {
		warnings = append(warnings, s.Attach(ctx, goal)...)
	}
	return warnings
}

// Detach removes childID's summary from every parent holding it.
func (s *hierarchyService) Detach(ctx context.Context, childID string) []app.Warning {
	parents, err := s.store.Repos().Ladder.ParentsOf(ctx, childID)
	if err != nil {
		return []app.Warning{s.syncFailed(ctx, childID, "", fmt.Errorf("looking up parents: %w", err))}
	}

	var warnings []app.Warning
	for _, parentID := range parents {
		err := s.rewriteParent(ctx, parentID, func(ctx context.Context, r repository.Repos, parent *domain.Goal) (bool, error) {
			removed := parent.RemoveChild(childID)
			if err := r.Ladder.Unlink(ctx, childID, parentID); err != nil {
				return false, err
			}
			return removed > 0, nil
		})
		if repository.IsNotFound(err) {
			continue
		}
		if err != nil {
			warnings = append(warnings, s.syncFailed(ctx, childID, parentID, err))
		}
	}
	return warnings
}

// rewriteParent locks parentID, loads it in a transaction, lets mutate edit
// it and writes it back when mutate reports a change. Returned errors wrap
// repository.ErrNotFound when the parent is gone.
func (s *hierarchyService) rewriteParent(
	ctx context.Context,
	parentID string,
	mutate func(ctx context.Context, r repository.Repos, parent *domain.Goal) (bool, error),
) error {
	unlock, err := s.locks.Lock(ctx, parentID)
	if err != nil {
		return err
	}
	defer unlock()

	return s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		parent, err := r.Goals.GetByID(ctx, parentID)
		if err != nil {
			return err
		}
		changed, err := mutate(ctx, r, parent)
		if err != nil || !changed {
			return err
		}
		return r.Goals.Update(ctx, parent)
	})
}

func (s *hierarchyService) syncFailed(ctx context.Context, childID, parentID string, err error) app.Warning {
	s.logger.WarnContext(ctx, "hierarchy sync failed; parent summary is stale",
		"code", string(app.ErrHierarchySyncFailed),
		"goal_id", childID,
		"parent_id", parentID,
		"error", err,
	)
	return app.SyncWarning(childID, parentID, err)
}

// Reconcile rebuilds every children list from the authoritative child
// records, then rebuilds the ladder index to match. Child membership comes
// from each child's parentId.
func (s *hierarchyService) Reconcile(ctx context.Context) (_ *app.ReconcileReport, err error) {
	startedAt := time.Now()
	report := &app.ReconcileReport{}
	fields := map[string]any{}
	defer func() {
		fields["goals_scanned"] = report.GoalsScanned
		fields["parents_rewritten"] = report.ParentsRewritten
		fields["warnings"] = len(report.Warnings)
		observe(ctx, s.observer, "reconcile", startedAt, fields, &err)
	}()

	all, err := s.store.Repos().Goals.List(ctx, repository.GoalFilter{})
	if err != nil {
		return nil, app.StorageError("listing goals", err)
	}
	report.GoalsScanned = len(all)

	exists := make(map[string]bool, len(all))
	for _, g := range all {
		exists[g.ID] = true
	}
	// List is ordered by creation, so each expected list is too.
	expected := make(map[string][]string)
	var links []repository.LadderLink
	for _, g := range all {
		if !g.HasParent() {
			continue
		}
		if !exists[*g.ParentID] {
			report.DanglingParents = append(report.DanglingParents, g.ID)
			s.logger.WarnContext(ctx, "goal references a missing parent",
				"goal_id", g.ID, "parent_id", *g.ParentID)
			continue
		}
		expected[*g.ParentID] = append(expected[*g.ParentID], g.ID)
		links = append(links, repository.LadderLink{ChildID: g.ID, ParentID: *g.ParentID})
	}

	for _, g := range all {
		if len(g.Children) == 0 && len(expected[g.ID]) == 0 {
			continue
		}
		var delta reconcileDelta
		err := s.rewriteParent(ctx, g.ID, func(ctx context.Context, r repository.Repos, parent *domain.Goal) (bool, error) {
			var err error
			delta, err = rebuildChildren(ctx, r, parent, expected[parent.ID])
			return delta.changed(), err
		})
		if repository.IsNotFound(err) {
			continue
		}
		if err != nil {
			report.Warnings = append(report.Warnings, s.syncFailed(ctx, "", g.ID, err))
			continue
		}
		if delta.changed() {
			report.ParentsRewritten++
		}
		report.SummariesAdded += delta.added
		report.SummariesUpdated += delta.updated
		report.SummariesRemoved += delta.removed
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, r repository.Repos) error {
		return r.Ladder.Replace(ctx, links)
	})
	if err != nil {
		return report, app.StorageError("rebuilding ladder index", err)
	}
	report.LinksIndexed = len(links)
	return report, nil
}

type reconcileDelta struct {
	added, updated, removed int
}

func (d reconcileDelta) changed() bool {
	return d.added+d.updated+d.removed > 0
}

// rebuildChildren recomputes parent.Children from freshly loaded child
// records. Surviving entries keep their position; new ones are appended in
// creation order.
func rebuildChildren(ctx context.Context, r repository.Repos, parent *domain.Goal, childIDs []string) (reconcileDelta, error) {
	var d reconcileDelta
	want := make(map[string]bool, len(childIDs))
	for _, id := range childIDs {
		want[id] = true
	}

	fresh := make(map[string]domain.LadderSummary, len(childIDs))
	for _, id := range childIDs {
		child, err := r.Goals.GetByID(ctx, id)
		if repository.IsNotFound(err) {
			delete(want, id)
			continue
		}
		if err != nil {
			return d, fmt.Errorf("loading child %s: %w", id, err)
		}
		summary, err := summarize(ctx, r.People, child)
		if err != nil {
			return d, fmt.Errorf("summarizing %s: %w", id, err)
		}
		fresh[id] = summary
	}

	rebuilt := make([]domain.LadderSummary, 0, len(fresh))
	emitted := make(map[string]bool, len(fresh))
	for _, existing := range parent.Children {
		if !want[existing.ID] || emitted[existing.ID] {
			d.removed++
			continue
		}
		summary := fresh[existing.ID]
		if !sameSummary(existing, summary) {
			d.updated++
		}
		rebuilt = append(rebuilt, summary)
		emitted[existing.ID] = true
	}
	for _, id := range childIDs {
		if !want[id] || emitted[id] {
			continue
		}
		rebuilt = append(rebuilt, fresh[id])
		emitted[id] = true
		d.added++
	}

	if d.changed() {
		parent.Children = rebuilt
	}
	return d, nil
}
