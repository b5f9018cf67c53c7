package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoalService_Create(t *testing.T) {
	eachStore(t, func(t *testing.T, f *fixture) {
		view, err := f.svc.Goals.Create(context.Background(), app.CreateGoalInput{
			Title:        "  Grow ARR  ",
			Description:  "Enterprise focus",
			Type:         domain.GoalBusiness,
			Status:       domain.GoalAwaitingApproval,
			Progress:     10,
			Achievements: []domain.Achievement{{Title: "First deal", Status: "open"}},
		}, f.alice.Email)
		require.NoError(t, err)

		g := view.Goal
		assert.NotEmpty(t, g.ID)
		assert.Equal(t, "Grow ARR", g.Title)
		assert.Equal(t, f.alice.ID, g.OwnerID)
		assert.Equal(t, domain.GoalAwaitingApproval, g.Status)
		assert.Equal(t, g.CreatedAt, g.UpdatedAt)
		assert.Nil(t, view.Parent)
		assert.Equal(t, g, f.reload(t, g.ID))
	})
}

func TestGoalService_CreateValidation(t *testing.T) {
	f := newMemFixture(t)
	ctx := context.Background()
	valid := app.CreateGoalInput{Title: "Grow ARR", Type: domain.GoalBusiness}

	tests := []struct {
		name  string
		edit  func(in *app.CreateGoalInput)
		email string
		code  app.ErrorCode
		field string
	}{
		{"completed start", func(in *app.CreateGoalInput) { in.Status = domain.GoalCompleted }, "", app.ErrValidation, "status"},
		{"approved start", func(in *app.CreateGoalInput) { in.Status = domain.GoalApproved }, "", app.ErrValidation, "status"},
		{"bad type", func(in *app.CreateGoalInput) { in.Type = "sales" }, "", app.ErrValidation, "goalType"},
		{"blank title", func(in *app.CreateGoalInput) { in.Title = "   " }, "", app.ErrValidation, "title"},
		{"progress", func(in *app.CreateGoalInput) { in.Progress = 150 }, "", app.ErrValidation, "progress"},
		{"no requester", func(in *app.CreateGoalInput) {}, " ", app.ErrValidation, "requester"},
		{"unknown requester", func(in *app.CreateGoalInput) {}, "stranger@example.com", app.ErrForbiddenRole, ""},
		{"someone else's goal", func(in *app.CreateGoalInput) { in.OwnerID = f.bob.ID }, "", app.ErrForbiddenRole, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.edit(&in)
			email := f.alice.Email
			if tc.email != "" {
				email = tc.email
			}
			_, err := f.svc.Goals.Create(ctx, in, email)
			var ge *app.GoalError
			require.True(t, errors.As(err, &ge), "got %v", err)
			assert.Equal(t, tc.code, ge.Code)
			assert.Equal(t, tc.field, ge.Field)
		})
	}

	views, err := f.svc.Goals.List(ctx, app.GoalListFilter{})
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestGoalService_List(t *testing.T) {
	eachStore(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		parent := f.createGoal(t, f.mona, "Division growth", "")
		a := f.createGoal(t, f.alice, "Grow ARR", parent.ID)
		f.createGoal(t, f.bob, "Cut churn", "")
		_, err := f.transition(a.ID, domain.GoalAwaitingApproval, f.alice)
		require.NoError(t, err)

		all, err := f.svc.Goals.List(ctx, app.GoalListFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		laddered, err := f.svc.Goals.List(ctx, app.GoalListFilter{ParentID: parent.ID})
		require.NoError(t, err)
		require.Len(t, laddered, 1)
		assert.Equal(t, a.ID, laddered[0].Goal.ID)
		require.NotNil(t, laddered[0].Parent)
		assert.Equal(t, parent.ID, laddered[0].Parent.ID)

		waiting, err := f.svc.Goals.List(ctx, app.GoalListFilter{Status: domain.GoalAwaitingApproval})
		require.NoError(t, err)
		assert.Len(t, waiting, 1)

		_, err = f.svc.Goals.List(ctx, app.GoalListFilter{Status: "pending"})
		assert.True(t, app.IsCode(err, app.ErrValidation))
	})
}

func TestGoalService_GetIncludesChildrenAndBacklink(t *testing.T) {
	eachStore(t, func(t *testing.T, f *fixture) {
		parent := f.createGoal(t, f.mona, "Division growth", "")
		child := f.createGoal(t, f.alice, "Grow ARR", parent.ID)

		view, err := f.svc.Goals.Get(context.Background(), parent.ID)
		require.NoError(t, err)
		require.Len(t, view.Goal.Children, 1)
		assert.Equal(t, child.ID, view.Goal.Children[0].ID)
		assert.Nil(t, view.Parent)

		view, err = f.svc.Goals.Get(context.Background(), child.ID)
		require.NoError(t, err)
		assert.Equal(t, &domain.ParentLink{ID: parent.ID, Title: "Division growth"}, view.Parent)

		_, err = f.svc.Goals.Get(context.Background(), "missing")
		assert.True(t, app.IsCode(err, app.ErrNotFound))
	})
}

func TestPersonService_Add(t *testing.T) {
	eachStore(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		mgr := f.mona.ID
		p := &domain.Person{Email: " Zoe@Example.com ", Name: "Zoe", ManagerID: &mgr}
		require.NoError(t, f.svc.People.Add(ctx, p))
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "zoe@example.com", p.Email)

		reports, err := f.svc.People.ListReports(ctx, f.mona.ID)
		require.NoError(t, err)
		assert.Len(t, reports, 2)

		err = f.svc.People.Add(ctx, &domain.Person{Email: "zoe@example.com", Name: "Zoe again"})
		assert.True(t, app.IsCode(err, app.ErrValidation))

		ghost := "nobody"
		err = f.svc.People.Add(ctx, &domain.Person{Email: "x@example.com", Name: "X", ManagerID: &ghost})
		assert.True(t, app.IsCode(err, app.ErrValidation))

		_, err = f.svc.People.GetByEmail(ctx, "missing@example.com")
		assert.True(t, app.IsCode(err, app.ErrNotFound))
	})
}
