package domain

import (
	"fmt"
	"strings"
	"time"
)

// Achievement is a measurable sub-item of a goal. It is carried along with the
// goal record and never inspected by the lifecycle engine.
type Achievement struct {
	Title    string `json:"title"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

// Action is a concrete step towards a goal.
type Action struct {
	Title  string `json:"title"`
	Status string `json:"status"`
}

// Goal is the authoritative record of an ambition.
type Goal struct {
	ID           string
	Title        string
	Description  string
	Status       GoalStatus
	Type         GoalType
	OwnerID      string
	ParentID     *string
	Progress     int
	Achievements []Achievement
	Actions      []Action

	// Children holds the ladder summaries of goals nested under this one.
	// It is derived data; the child records are the source of truth.
	Children []LadderSummary

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LadderSummary is the lightweight copy of a child goal kept on its parent.
type LadderSummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Status      GoalStatus `json:"status"`
	Type        GoalType   `json:"goalType,omitempty"`
	Description string     `json:"description,omitempty"`
	OwnerID     string     `json:"ownerId"`
	UserName    string     `json:"userName"`
	AvatarURL   string     `json:"avatarUrl"`
	Progress    int        `json:"progress"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ParentLink is the minimal backlink shown on a laddered goal.
type ParentLink struct {
	ID    string
	Title string
}

// HasParent reports whether the goal is laddered under another goal.
func (g *Goal) HasParent() bool {
	return g.ParentID != nil && *g.ParentID != ""
}

// Validate checks the fields every persisted goal must satisfy.
func (g *Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if !ValidGoalTypes[string(g.Type)] {
		return fmt.Errorf("goal type %q is not one of business, manager_effectiveness, personal_growth_and_development", g.Type)
	}
	if !ValidGoalStatuses[string(g.Status)] {
		return fmt.Errorf("status %q is not a valid goal status", g.Status)
	}
	if g.OwnerID == "" {
		return fmt.Errorf("owner is required")
	}
	if g.Progress < 0 || g.Progress > 100 {
		return fmt.Errorf("progress %d must be between 0 and 100", g.Progress)
	}
	if g.HasParent() && *g.ParentID == g.ID {
		return fmt.Errorf("goal cannot be its own parent")
	}
	return nil
}

// Summarize builds the ladder summary of g. owner supplies the display name
// and avatar; a nil owner leaves them blank.
func (g *Goal) Summarize(owner *Person) LadderSummary {
	s := LadderSummary{
		ID:          g.ID,
		Title:       g.Title,
		Status:      g.Status,
		Type:        g.Type,
		Description: g.Description,
		OwnerID:     g.OwnerID,
		Progress:    g.Progress,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
	if owner != nil {
		s.UserName = owner.Name
		s.AvatarURL = owner.AvatarURL
	}
	return s
}

// ChildIndex returns the position of the summary for childID, or -1.
func (g *Goal) ChildIndex(childID string) int {
	for i, c := range g.Children {
		if c.ID == childID {
			return i
		}
	}
	return -1
}

// MirrorChild overwrites every summary of s.ID with s, keeping its position.
// CreatedAt is kept from the existing entry. Returns the number of entries
// rewritten.
func (g *Goal) MirrorChild(s LadderSummary) int {
	n := 0
	for i := range g.Children {
		if g.Children[i].ID != s.ID {
			continue
		}
		created := g.Children[i].CreatedAt
		g.Children[i] = s
		if !created.IsZero() {
			g.Children[i].CreatedAt = created
		}
		n++
	}
	return n
}

// RemoveChild drops every summary of childID and reports how many were removed.
func (g *Goal) RemoveChild(childID string) int {
	kept := g.Children[:0]
	removed := 0
	for _, c := range g.Children {
		if c.ID == childID {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	g.Children = kept
	return removed
}

// Clone returns a deep copy of g so callers can mutate it without aliasing
// slices held by a store.
func (g *Goal) Clone() *Goal {
	c := *g
	if g.ParentID != nil {
		p := *g.ParentID
		c.ParentID = &p
	}
	c.Achievements = append([]Achievement(nil), g.Achievements...)
	c.Actions = append([]Action(nil), g.Actions...)
	c.Children = append([]LadderSummary(nil), g.Children...)
	return &c
}
