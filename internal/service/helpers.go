package service

import (
	"context"
	"strings"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/alexanderramin/ambitions/internal/repository"
)

// loadGoal fetches a goal and maps store failures onto the error taxonomy.
func loadGoal(ctx context.Context, goals repository.GoalRepo, id string) (*domain.Goal, error) {
	g, err := goals.GetByID(ctx, id)
	if repository.IsNotFound(err) {
		return nil, app.NotFoundError("goal", id, err)
	}
	if err != nil {
		return nil, app.StorageError("loading goal", err)
	}
	return g, nil
}

// ownerMatches reports whether email belongs to the directory entry of ownerID.
// An owner missing from the directory matches nobody.
func ownerMatches(ctx context.Context, people repository.PersonRepo, ownerID, email string) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, nil
	}
	owner, err := people.GetByID(ctx, ownerID)
	if repository.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, app.StorageError("resolving goal owner", err)
	}
	return domain.SameEmail(owner.Email, email), nil
}

// summarize builds the ladder summary of g, filling the display name and
// avatar from the owner's directory entry when there is one.
func summarize(ctx context.Context, people repository.PersonRepo, g *domain.Goal) (domain.LadderSummary, error) {
	owner, err := people.GetByID(ctx, g.OwnerID)
	if repository.IsNotFound(err) {
		return g.Summarize(nil), nil
	}
	if err != nil {
		return domain.LadderSummary{}, err
	}
	return g.Summarize(owner), nil
}

// sameSummary compares summaries field by field, using time.Equal for stamps.
func sameSummary(a, b domain.LadderSummary) bool {
	return a.ID == b.ID &&
		a.Title == b.Title &&
		a.Status == b.Status &&
		a.Type == b.Type &&
		a.Description == b.Description &&
		a.OwnerID == b.OwnerID &&
		a.UserName == b.UserName &&
		a.AvatarURL == b.AvatarURL &&
		a.Progress == b.Progress &&
		a.CreatedAt.Equal(b.CreatedAt) &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}
