package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/domain"
)

func TestStatusPatchRequest_KeepsRawStatus(t *testing.T) {
	var req StatusPatchRequest
	require.NoError(t, json.Unmarshal([]byte(`{"status":"APPROVED","comment":"lgtm"}`), &req))

	tr := req.ToTransition("g1", "mona@example.com")
	assert.Equal(t, "g1", tr.GoalID)
	assert.Equal(t, "APPROVED", tr.Status)
	assert.Equal(t, "lgtm", tr.Comment)
	assert.Equal(t, "mona@example.com", tr.RequesterEmail)
}

func TestEditGoalRequest_AbsentFieldsStayNil(t *testing.T) {
	var req EditGoalRequest
	require.NoError(t, json.Unmarshal([]byte(`{"progress":0}`), &req))

	patch := req.ToPatch()
	require.NotNil(t, patch.Progress)
	assert.Equal(t, 0, *patch.Progress)
	assert.Nil(t, patch.Title)
	assert.Nil(t, patch.Actions)
	assert.False(t, patch.Empty())
}

func TestCreateGoalRequest_ToInput(t *testing.T) {
	req := CreateGoalRequest{Title: "Grow revenue", GoalType: "business", ParentID: "p1", Progress: 10}
	in := req.ToInput()
	assert.Equal(t, domain.GoalBusiness, in.Type)
	assert.Equal(t, domain.GoalStatus(""), in.Status)
	assert.Equal(t, "p1", in.ParentID)
	assert.Equal(t, 10, in.Progress)
}

func TestFromView_ShapesJSON(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	parent := "p1"
	view := &app.GoalView{
		Goal: &domain.Goal{
			ID: "g1", Title: "Ship", Status: domain.GoalApproved, Type: domain.GoalBusiness,
			OwnerID: "alice", ParentID: &parent, CreatedAt: now, UpdatedAt: now,
		},
		Parent: &domain.ParentLink{ID: "p1", Title: "Company"},
		Warnings: []app.Warning{
			app.SyncWarning("g1", "p1", errors.New("locked")),
		},
	}

	raw, err := json.Marshal(FromView(view))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "approved", decoded["status"])
	assert.Equal(t, "business", decoded["goalType"])
	assert.Equal(t, "p1", decoded["parentId"])
	assert.Equal(t, map[string]any{"id": "p1", "title": "Company"}, decoded["parent"])
	assert.Equal(t, []any{}, decoded["children"])
	assert.Equal(t, []any{}, decoded["actions"])

	warnings := decoded["warnings"].([]any)
	require.Len(t, warnings, 1)
	w := warnings[0].(map[string]any)
	assert.Equal(t, "hierarchy_sync_failed", w["code"])
	assert.Equal(t, "p1", w["parentId"])
}

func TestFromView_OmitsMissingParentAndWarnings(t *testing.T) {
	dangling := "gone"
	resp := FromView(&app.GoalView{Goal: &domain.Goal{ID: "g1", ParentID: &dangling}})
	assert.Equal(t, "gone", resp.ParentID)
	assert.Nil(t, resp.Parent)
	assert.Nil(t, resp.Warnings)
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorBody
	}{
		{
			name: "invalid status lists valid values",
			err:  app.InvalidStatusError("done"),
			want: ErrorBody{
				Code:        "validation_error",
				Field:       "status",
				ValidValues: domain.StatusNames(),
			},
		},
		{
			name: "illegal pair",
			err: app.FromDenial(&domain.TransitionDenial{
				From: domain.GoalDraft, To: domain.GoalCompleted, Reason: domain.DenyInvalidTransition,
			}),
			want: ErrorBody{Code: "invalid_transition", From: "draft", To: "completed"},
		},
		{
			name: "role denial names the role",
			err: app.FromDenial(&domain.TransitionDenial{
				From: domain.GoalAwaitingApproval, To: domain.GoalApproved,
				Reason: domain.DenyForbiddenRole, Required: domain.RoleManager,
			}),
			want: ErrorBody{
				Code: "forbidden_role", From: "awaiting_approval", To: "approved", RequiredRole: "manager",
			},
		},
		{
			name: "storage is opaque",
			err:  app.StorageError("updating goal", errors.New("database is locked")),
			want: ErrorBody{Code: CodeInternal, Message: GenericErrorMessage},
		},
		{
			name: "untyped is opaque",
			err:  fmt.Errorf("wrapped: %w", errors.New("boom")),
			want: ErrorBody{Code: CodeInternal, Message: GenericErrorMessage},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err).Error
			if tt.want.Message == "" {
				assert.NotEmpty(t, got.Message)
				got.Message = ""
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromError_StorageNeverLeaks(t *testing.T) {
	body := FromError(app.StorageError("updating goal", errors.New("/var/lib/ambitions.db: locked")))
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "/var/lib")
}
