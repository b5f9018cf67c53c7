package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMinimalSchema() *ImportSchema {
	return &ImportSchema{
		People: []PersonImport{
			{Ref: "mona", Email: "mona@example.com", Name: "Mona"},
			{Ref: "alice", Email: "alice@example.com", Name: "Alice", ManagerRef: "mona"},
		},
		Goals: []GoalImport{
			{Ref: "company", OwnerEmail: "mona@example.com", Title: "Company goal", GoalType: "business"},
			{Ref: "team", ParentRef: "company", OwnerEmail: "alice@example.com", Title: "Team goal", GoalType: "business"},
		},
	}
}

func TestValidateImportSchema_ValidMinimal(t *testing.T) {
	assert.Empty(t, ValidateImportSchema(validMinimalSchema()))
}

func TestValidateImportSchema_Empty(t *testing.T) {
	errs := ValidateImportSchema(&ImportSchema{})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no people and no goals")
}

func TestValidateImportSchema_PersonErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *ImportSchema)
		want   string
	}{
		{"missing ref", func(s *ImportSchema) { s.People[0].Ref = "" }, "people[0].ref is required"},
		{"duplicate ref", func(s *ImportSchema) { s.People[1].Ref = "mona" }, `people[1].ref "mona" is duplicated`},
		{"bad email", func(s *ImportSchema) { s.People[0].Email = "mona" }, "people[0].email"},
		{"duplicate email ignores case", func(s *ImportSchema) { s.People[1].Email = "MONA@example.com" }, "is duplicated"},
		{"missing name", func(s *ImportSchema) { s.People[0].Name = " " }, "people[0].name is required"},
		{"forward manager ref", func(s *ImportSchema) { s.People[0].ManagerRef = "alice" }, "must name an earlier person"},
		{"self manager", func(s *ImportSchema) { s.People[0].ManagerRef = "mona" }, "cannot manage themselves"},
		{"both manager fields", func(s *ImportSchema) { s.People[1].ManagerEmail = "x@example.com" }, "not both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validMinimalSchema()
			tt.mutate(s)
			errs := ValidateImportSchema(s)
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0].Error(), tt.want)
		})
	}
}

func TestValidateImportSchema_GoalErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *ImportSchema)
		want   string
	}{
		{"missing title", func(s *ImportSchema) { s.Goals[0].Title = "" }, "goals[0].title is required"},
		{"bad type", func(s *ImportSchema) { s.Goals[0].GoalType = "stretch" }, `goal_type: invalid value "stretch"`},
		{"approved cannot be imported", func(s *ImportSchema) { s.Goals[0].Status = "approved" }, "cannot be imported"},
		{"progress out of range", func(s *ImportSchema) { s.Goals[1].Progress = 101 }, "between 0 and 100"},
		{"missing owner", func(s *ImportSchema) { s.Goals[0].OwnerEmail = "" }, "owner_email"},
		{"forward parent ref", func(s *ImportSchema) {
			s.Goals[0].ParentRef = "team"
		}, "must name an earlier goal"},
		{"self parent", func(s *ImportSchema) { s.Goals[1].ParentRef = "team" }, "its own parent"},
		{"both parent fields", func(s *ImportSchema) { s.Goals[1].ParentID = "abc" }, "not both"},
		{"duplicate ref", func(s *ImportSchema) { s.Goals[1].Ref = "company"; s.Goals[1].ParentRef = "" }, "is duplicated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validMinimalSchema()
			tt.mutate(s)
			errs := ValidateImportSchema(s)
			require.NotEmpty(t, errs)
			assert.Contains(t, errs[0].Error(), tt.want)
		})
	}
}

func TestValidateImportSchema_CollectsAllErrors(t *testing.T) {
	s := validMinimalSchema()
	s.People[0].Name = ""
	s.Goals[0].Title = ""
	s.Goals[1].GoalType = ""
	assert.Len(t, ValidateImportSchema(s), 3)
}

func TestParseImportSchema_YAMLAndJSON(t *testing.T) {
	yamlDoc := `
people:
  - ref: mona
    email: mona@example.com
    name: Mona
goals:
  - ref: company
    owner_email: mona@example.com
    title: Company goal
    goal_type: business
    achievements:
      - title: First deal
        status: open
        progress: 20
`
	fromYAML, err := ParseImportSchema([]byte(yamlDoc), ".YML")
	require.NoError(t, err)

	jsonDoc := `{"people":[{"ref":"mona","email":"mona@example.com","name":"Mona"}],
		"goals":[{"ref":"company","owner_email":"mona@example.com","title":"Company goal","goal_type":"business",
		"achievements":[{"title":"First deal","status":"open","progress":20}]}]}`
	fromJSON, err := ParseImportSchema([]byte(jsonDoc), ".json")
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromYAML)
	require.Len(t, fromYAML.Goals[0].Achievements, 1)
	assert.Equal(t, 20, fromYAML.Goals[0].Achievements[0].Progress)
}

func TestParseImportSchema_Malformed(t *testing.T) {
	_, err := ParseImportSchema([]byte("goals: [unclosed"), ".yaml")
	assert.Error(t, err)
	_, err = ParseImportSchema([]byte("{"), ".json")
	assert.Error(t, err)
}
