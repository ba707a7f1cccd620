package services

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"alfredoptarigan/interview-prep/internal/models"
)

// Key alias tables map spellings the model is known to emit onto canonical keys.
// A canonical key already present in the output wins over its aliases.
var (
	profileKeyAliases = map[string]string{
		"Top Skills":       "top_skills",
		"Technical Skills": "technical_skills",
		"Target Roles":     "target_roles",
	}
	questionKeyAliases = map[string]string{
		"Work Experience": "Work_Experience",
		"work_experience": "Work_Experience",
		"WorkExperience":  "Work_Experience",
		"education":       "Education",
		"projects":        "Projects",
		"skills":          "Skills",
		"leadership":      "Leadership",
	}
)

const nullableStringList = `{"type": ["array", "null"], "items": {"type": ["string", "null"]}}`

var profileSchema = mustCompileSchema(`{
  "type": "object",
  "properties": {
    "name": {"type": ["string", "null"]},
    "email": {"type": ["string", "null"]},
    "phone": {"type": ["string", "null"]},
    "location": {"type": ["string", "null"]},
    "links": ` + nullableStringList + `,
    "top_skills": ` + nullableStringList + `,
    "technical_skills": ` + nullableStringList + `,
    "experience": ` + nullableStringList + `,
    "education": ` + nullableStringList + `,
    "projects": ` + nullableStringList + `,
    "target_roles": ` + nullableStringList + `
  }
}`)

const qaSection = `{
  "type": ["array", "null"],
  "items": {
    "type": "object",
    "required": ["item"],
    "properties": {
      "item": {"type": "string"},
      "hr_questions": ` + nullableStringList + `,
      "technical_questions": ` + nullableStringList + `
    }
  }
}`

var questionSetSchema = mustCompileSchema(`{
  "type": "object",
  "properties": {
    "Education": ` + qaSection + `,
    "Work_Experience": ` + qaSection + `,
    "Projects": ` + qaSection + `,
    "Skills": ` + qaSection + `,
    "Leadership": ` + qaSection + `
  }
}`)

func mustCompileSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("invalid JSON schema: %v", err))
	}
	return s
}

type ResponseNormalizer interface {
	NormalizeProfile(text string) (*models.Profile, error)
	NormalizeQuestions(text string) (*models.QuestionSet, error)
}

type responseNormalizer struct{}

func NewResponseNormalizer() ResponseNormalizer {
	return &responseNormalizer{}
}

// NormalizeProfile implements ResponseNormalizer.
func (n *responseNormalizer) NormalizeProfile(text string) (*models.Profile, error) {
	doc, err := decodeModelObject(text, profileKeyAliases, profileSchema)
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := remarshal(doc, &profile); err != nil {
		return nil, NewError(KindSchemaViolation, "model output does not match the profile schema", err)
	}

	profile.Name = cleanOptional(profile.Name)
	profile.Email = cleanOptional(profile.Email)
	profile.Phone = cleanOptional(profile.Phone)
	profile.Location = cleanOptional(profile.Location)
	for _, l := range []*[]string{
		&profile.Links,
		&profile.TopSkills,
		&profile.TechnicalSkills,
		&profile.Experience,
		&profile.Education,
		&profile.Projects,
		&profile.TargetRoles,
	} {
		*l = cleanList(*l)
	}
	profile.EnsureLists()

	return &profile, nil
}

// NormalizeQuestions implements ResponseNormalizer.
func (n *responseNormalizer) NormalizeQuestions(text string) (*models.QuestionSet, error) {
	doc, err := decodeModelObject(text, questionKeyAliases, questionSetSchema)
	if err != nil {
		return nil, err
	}

	var set models.QuestionSet
	if err := remarshal(doc, &set); err != nil {
		return nil, NewError(KindSchemaViolation, "model output does not match the question schema", err)
	}

	for _, section := range []*[]models.QAItem{&set.Education, &set.WorkExperience, &set.Projects, &set.Skills, &set.Leadership} {
		for i := range *section {
			item := &(*section)[i]
			item.Item = strings.TrimSpace(item.Item)
			item.HRQuestions = cleanList(item.HRQuestions)
			item.TechnicalQuestions = cleanList(item.TechnicalQuestions)
		}
	}
	set.EnsureSections()

	return &set, nil
}

// decodeModelObject parses untrusted model output into a generic object,
// renames aliased keys and validates the result against schema.
func decodeModelObject(text string, aliases map[string]string, schema *gojsonschema.Schema) (map[string]any, error) {
	var raw any
	if err := json.Unmarshal([]byte(CleanJSONBlock(text)), &raw); err != nil {
		return nil, NewError(KindMalformedModelOutput, "model returned invalid JSON", err)
	}

	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, NewError(KindSchemaViolation, fmt.Sprintf("model returned %s, expected a JSON object", jsonKind(raw)), nil)
	}

	applyKeyAliases(doc, aliases)

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, NewError(KindSchemaViolation, "could not validate model output", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			msgs = append(msgs, fmt.Sprintf("%s: %s", field, desc.Description()))
		}
		return nil, NewError(KindSchemaViolation, "model output does not match schema: "+strings.Join(msgs, "; "), nil)
	}

	return doc, nil
}

func applyKeyAliases(doc map[string]any, aliases map[string]string) {
	for _, alias := range slices.Sorted(maps.Keys(aliases)) {
		canonical := aliases[alias]
		v, ok := doc[alias]
		if !ok {
			continue
		}
		delete(doc, alias)
		if _, exists := doc[canonical]; !exists {
			doc[canonical] = v
		}
	}
}

func remarshal(doc map[string]any, v any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func cleanOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "an array"
	case string:
		return "a string"
	case float64:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// CleanJSONBlock removes a markdown code fence around a JSON payload.
// Models sometimes add one even in JSON mode.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	// Drop a language tag such as "json" on the opening fence line.
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := strings.TrimSpace(text[:idx])
		if !strings.ContainsAny(firstLine, "{[ ") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
