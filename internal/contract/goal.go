// Package contract defines the JSON shapes exchanged over the HTTP API and
// printed by the CLI's --json output, and converts them to and from the app
// layer types.
package contract

import (
	"time"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/domain"
)

// StatusPatchRequest is the body of PATCH /goals/{id}/status. Status is a
// plain string so unknown values reach validation instead of failing decode.
type StatusPatchRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

// ToTransition builds the use-case request for goal id on behalf of email.
func (r StatusPatchRequest) ToTransition(id, email string) app.TransitionRequest {
	return app.TransitionRequest{
		GoalID:         id,
		Status:         r.Status,
		Comment:        r.Comment,
		RequesterEmail: email,
	}
}

type CreateGoalRequest struct {
	Title        string               `json:"title"`
	Description  string               `json:"description,omitempty"`
	GoalType     string               `json:"goalType"`
	Status       string               `json:"status,omitempty"`
	OwnerID      string               `json:"ownerId,omitempty"`
	ParentID     string               `json:"parentId,omitempty"`
	Progress     int                  `json:"progress,omitempty"`
	Achievements []domain.Achievement `json:"achievements,omitempty"`
	Actions      []domain.Action      `json:"actions,omitempty"`
}

func (r CreateGoalRequest) ToInput() app.CreateGoalInput {
	return app.CreateGoalInput{
		Title:        r.Title,
		Description:  r.Description,
		Type:         domain.GoalType(r.GoalType),
		Status:       domain.GoalStatus(r.Status),
		OwnerID:      r.OwnerID,
		ParentID:     r.ParentID,
		Progress:     r.Progress,
		Achievements: r.Achievements,
		Actions:      r.Actions,
	}
}

// EditGoalRequest is the body of PATCH /goals/{id}. Absent fields are kept.
type EditGoalRequest struct {
	Title        *string               `json:"title,omitempty"`
	Description  *string               `json:"description,omitempty"`
	Progress     *int                  `json:"progress,omitempty"`
	Achievements *[]domain.Achievement `json:"achievements,omitempty"`
	Actions      *[]domain.Action      `json:"actions,omitempty"`
}

func (r EditGoalRequest) ToPatch() app.GoalPatch {
	return app.GoalPatch{
		Title:        r.Title,
		Description:  r.Description,
		Progress:     r.Progress,
		Achievements: r.Achievements,
		Actions:      r.Actions,
	}
}

type ParentResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type WarningResponse struct {
	Code     string `json:"code"`
	GoalID   string `json:"goalId"`
	ParentID string `json:"parentId,omitempty"`
	Message  string `json:"message"`
}

// GoalResponse is the assembled goal view. Children are the stored ladder
// summaries; Parent is present only when the parent resolves.
type GoalResponse struct {
	ID           string                 `json:"id"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	Status       domain.GoalStatus      `json:"status"`
	GoalType     domain.GoalType        `json:"goalType"`
	OwnerID      string                 `json:"ownerId"`
	ParentID     string                 `json:"parentId,omitempty"`
	Progress     int                    `json:"progress"`
	Achievements []domain.Achievement   `json:"achievements"`
	Actions      []domain.Action        `json:"actions"`
	Children     []domain.LadderSummary `json:"children"`
	Parent       *ParentResponse        `json:"parent,omitempty"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
	Warnings     []WarningResponse      `json:"warnings,omitempty"`
}

// FromView converts an assembled view. Nil lists are emitted as [].
func FromView(v *app.GoalView) GoalResponse {
	g := v.Goal
	resp := GoalResponse{
		ID:           g.ID,
		Title:        g.Title,
		Description:  g.Description,
		Status:       g.Status,
		GoalType:     g.Type,
		OwnerID:      g.OwnerID,
		Progress:     g.Progress,
		Achievements: nonNil(g.Achievements),
		Actions:      nonNil(g.Actions),
		Children:     nonNil(g.Children),
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
		Warnings:     FromWarnings(v.Warnings),
	}
	if g.HasParent() {
		resp.ParentID = *g.ParentID
	}
	if v.Parent != nil {
		resp.Parent = &ParentResponse{ID: v.Parent.ID, Title: v.Parent.Title}
	}
	return resp
}

func FromViews(views []*app.GoalView) []GoalResponse {
	out := make([]GoalResponse, 0, len(views))
	for _, v := range views {
		out = append(out, FromView(v))
	}
	return out
}

func FromWarnings(ws []app.Warning) []WarningResponse {
	if len(ws) == 0 {
		return nil
	}
	out := make([]WarningResponse, len(ws))
	for i, w := range ws {
		out[i] = WarningResponse{
			Code:     string(w.Code),
			GoalID:   w.GoalID,
			ParentID: w.ParentID,
			Message:  w.Message,
		}
	}
	return out
}

// DeleteResponse acknowledges a delete and carries any parent sync warnings.
type DeleteResponse struct {
	ID       string            `json:"id"`
	Deleted  bool              `json:"deleted"`
	Warnings []WarningResponse `json:"warnings,omitempty"`
}

type ReconcileResponse struct {
	GoalsScanned     int               `json:"goalsScanned"`
	ParentsRewritten int               `json:"parentsRewritten"`
	SummariesAdded   int               `json:"summariesAdded"`
	SummariesUpdated int               `json:"summariesUpdated"`
	SummariesRemoved int               `json:"summariesRemoved"`
	LinksIndexed     int               `json:"linksIndexed"`
	DanglingParents  []string          `json:"danglingParents,omitempty"`
	Warnings         []WarningResponse `json:"warnings,omitempty"`
}

func FromReconcile(r *app.ReconcileReport) ReconcileResponse {
	return ReconcileResponse{
		GoalsScanned:     r.GoalsScanned,
		ParentsRewritten: r.ParentsRewritten,
		SummariesAdded:   r.SummariesAdded,
		SummariesUpdated: r.SummariesUpdated,
		SummariesRemoved: r.SummariesRemoved,
		LinksIndexed:     r.LinksIndexed,
		DanglingParents:  r.DanglingParents,
		Warnings:         FromWarnings(r.Warnings),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
