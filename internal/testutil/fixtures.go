package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/google/uuid"
)

var testPersonCounter atomic.Int64

// Person options
type PersonOption func(*domain.Person)

func WithManager(managerID string) PersonOption {
	return func(p *domain.Person) {
		p.ManagerID = &managerID
	}
}

func WithAvatar(url string) PersonOption {
	return func(p *domain.Person) {
		p.AvatarURL = url
	}
}

func WithPersonID(id string) PersonOption {
	return func(p *domain.Person) {
		p.ID = id
	}
}

// NewTestPerson builds a directory entry whose email is derived from name
// (e.g. "Alice" -> "alice@example.com").
func NewTestPerson(name string, opts ...PersonOption) *domain.Person {
	local := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	if local == "" {
		local = fmt.Sprintf("person%d", testPersonCounter.Add(1))
	}
	p := &domain.Person{
		ID:        uuid.New().String(),
		Email:     local + "@example.com",
		Name:      name,
		AvatarURL: "https://avatars.example.com/" + local + ".png",
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Goal options
type GoalOption func(*domain.Goal)

func WithStatus(s domain.GoalStatus) GoalOption {
	return func(g *domain.Goal) {
		g.Status = s
	}
}

func WithGoalType(t domain.GoalType) GoalOption {
	return func(g *domain.Goal) {
		g.Type = t
	}
}

func WithParent(id string) GoalOption {
	return func(g *domain.Goal) {
		g.ParentID = &id
	}
}

func WithGoalID(id string) GoalOption {
	return func(g *domain.Goal) {
		g.ID = id
	}
}

func WithProgress(p int) GoalOption {
	return func(g *domain.Goal) {
		g.Progress = p
	}
}

func WithDescription(d string) GoalOption {
	return func(g *domain.Goal) {
		g.Description = d
	}
}

func WithChildren(children ...domain.LadderSummary) GoalOption {
	return func(g *domain.Goal) {
		g.Children = append(g.Children, children...)
	}
}

func NewTestGoal(ownerID, title string, opts ...GoalOption) *domain.Goal {
	now := time.Now().UTC()
	g := &domain.Goal{
		ID:        uuid.New().String(),
		Title:     title,
		Status:    domain.GoalDraft,
		Type:      domain.GoalBusiness,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}
