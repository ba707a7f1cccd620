package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/interview-prep/internal/models"
)

func TestNormalizeProfile(t *testing.T) {
	n := NewResponseNormalizer()

	tests := []struct {
		name     string
		text     string
		wantKind ErrorKind
		validate func(*testing.T, *models.Profile)
	}{
		{
			name: "complete profile",
			text: `{
				"name": "Jane Doe",
				"email": "jane@example.com",
				"phone": null,
				"links": ["https://github.com/jane"],
				"location": "Berlin",
				"top_skills": ["Go", "Distributed systems"],
				"technical_skills": ["Go", "PostgreSQL"],
				"experience": ["Backend Engineer @ Acme (2020-2024) - Built billing APIs"],
				"education": ["BSc Computer Science, TU Berlin (2016-2020)"],
				"projects": ["Resume parser - Go - 1k users"],
				"target_roles": ["Backend Engineer"]
			}`,
			validate: func(t *testing.T, p *models.Profile) {
				require.NotNil(t, p.Name)
				assert.Equal(t, "Jane Doe", *p.Name)
				assert.Nil(t, p.Phone)
				assert.Equal(t, []string{"https://github.com/jane"}, p.Links)
				assert.Equal(t, []string{"Backend Engineer @ Acme (2020-2024) - Built billing APIs"}, p.Experience)
				assert.Equal(t, []string{"Backend Engineer"}, p.TargetRoles)
			},
		},
		{
			name: "missing keys default to null and empty lists",
			text: `{"name": "Jane"}`,
			validate: func(t *testing.T, p *models.Profile) {
				assert.Nil(t, p.Email)
				assert.NotNil(t, p.Links)
				assert.Empty(t, p.Links)
				assert.NotNil(t, p.Projects)
				assert.NotNil(t, p.TargetRoles)
			},
		},
		{
			name: "null lists and blank entries are cleaned",
			text: `{"links": null, "top_skills": ["  Go ", "", null], "email": "  "}`,
			validate: func(t *testing.T, p *models.Profile) {
				assert.Equal(t, []string{}, p.Links)
				assert.Equal(t, []string{"Go"}, p.TopSkills)
				assert.Nil(t, p.Email)
			},
		},
		{
			name: "extra keys are ignored and aliases applied",
			text: `{"summary": "ignored", "Top Skills": ["Go"]}`,
			validate: func(t *testing.T, p *models.Profile) {
				assert.Equal(t, []string{"Go"}, p.TopSkills)
			},
		},
		{
			name: "code fence is stripped",
			text: "```json\n{\"name\": \"Jane\"}\n```",
			validate: func(t *testing.T, p *models.Profile) {
				require.NotNil(t, p.Name)
				assert.Equal(t, "Jane", *p.Name)
			},
		},
		{
			name:     "invalid JSON",
			text:     `{"name": "Jane"`,
			wantKind: KindMalformedModelOutput,
		},
		{
			name:     "string where a list is expected",
			text:     `{"experience": "Backend Engineer @ Acme"}`,
			wantKind: KindSchemaViolation,
		},
		{
			name:     "number where a string is expected",
			text:     `{"name": 42}`,
			wantKind: KindSchemaViolation,
		},
		{
			name:     "top level array",
			text:     `[{"name": "Jane"}]`,
			wantKind: KindSchemaViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := n.NormalizeProfile(tt.text)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, KindOf(err))
				assert.Nil(t, profile)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, profile)
			if tt.validate != nil {
				tt.validate(t, profile)
			}
		})
	}
}

func TestNormalizeProfile_SerializesEveryField(t *testing.T) {
	profile, err := NewResponseNormalizer().NormalizeProfile(`{}`)
	require.NoError(t, err)

	b, err := json.Marshal(profile)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	for _, key := range []string{"name", "email", "phone", "location"} {
		v, ok := out[key]
		assert.True(t, ok, key)
		assert.Nil(t, v, key)
	}
	for _, key := range []string{"links", "top_skills", "technical_skills", "experience", "education", "projects", "target_roles"} {
		assert.Equal(t, []any{}, out[key], key)
	}
}

func TestNormalizeQuestions_WorkExperienceAlias(t *testing.T) {
	text := `{
		"Education": [],
		"Work Experience": [
			{"item": "Backend Engineer @ Acme", "hr_questions": ["Why Acme?"], "technical_questions": ["How did you shard billing?"]},
			{"item": "Intern @ Initech", "hr_questions": [], "technical_questions": []}
		],
		"Projects": [],
		"Skills": [],
		"Leadership": []
	}`

	set, err := NewResponseNormalizer().NormalizeQuestions(text)
	require.NoError(t, err)

	want := []models.QAItem{
		{Item: "Backend Engineer @ Acme", HRQuestions: []string{"Why Acme?"}, TechnicalQuestions: []string{"How did you shard billing?"}},
		{Item: "Intern @ Initech", HRQuestions: []string{}, TechnicalQuestions: []string{}},
	}
	assert.Equal(t, want, set.WorkExperience)

	b, err := json.Marshal(set)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.NotContains(t, out, "Work Experience")
	assert.Contains(t, out, "Work_Experience")
}

func TestNormalizeQuestions_CanonicalKeyWins(t *testing.T) {
	text := `{
		"Work_Experience": [{"item": "canonical"}],
		"Work Experience": [{"item": "alias"}]
	}`

	set, err := NewResponseNormalizer().NormalizeQuestions(text)
	require.NoError(t, err)
	require.Len(t, set.WorkExperience, 1)
	assert.Equal(t, "canonical", set.WorkExperience[0].Item)
}

func TestNormalizeQuestions_MissingSections(t *testing.T) {
	set, err := NewResponseNormalizer().NormalizeQuestions(`{"Skills": [{"item": "Go", "technical_questions": ["Explain channels"]}]}`)
	require.NoError(t, err)

	assert.Equal(t, []models.QAItem{}, set.Education)
	assert.Equal(t, []models.QAItem{}, set.WorkExperience)
	assert.Equal(t, []models.QAItem{}, set.Projects)
	assert.Equal(t, []models.QAItem{}, set.Leadership)
	require.Len(t, set.Skills, 1)
	assert.Equal(t, []string{}, set.Skills[0].HRQuestions)
	assert.Equal(t, []string{"Explain channels"}, set.Skills[0].TechnicalQuestions)
}

func TestNormalizeQuestions_Errors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantKind ErrorKind
	}{
		{name: "not JSON", text: "Here are your questions:", wantKind: KindMalformedModelOutput},
		{name: "section is a string", text: `{"Projects": "none"}`, wantKind: KindSchemaViolation},
		{name: "item without label", text: `{"Projects": [{"hr_questions": []}]}`, wantKind: KindSchemaViolation},
		{name: "questions are not strings", text: `{"Skills": [{"item": "Go", "hr_questions": [1, 2]}]}`, wantKind: KindSchemaViolation},
		{name: "null document", text: `null`, wantKind: KindSchemaViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResponseNormalizer().NormalizeQuestions(tt.text)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))
		})
	}
}

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `{"a": 1}`, want: `{"a": 1}`},
		{in: "```json\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{in: "```\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{in: "  ```JSON\n{\"a\": 1}```  ", want: `{"a": 1}`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanJSONBlock(tt.in))
	}
}
