package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"alfredoptarigan/interview-prep/internal/models"
)

// DefaultMaxResumeChars bounds how much resume text is embedded in a prompt.
const DefaultMaxResumeChars = 30000

type PromptBuilder struct {
	maxResumeChars int
}

func NewPromptBuilder(maxResumeChars int) *PromptBuilder {
	if maxResumeChars <= 0 {
		maxResumeChars = DefaultMaxResumeChars
	}
	return &PromptBuilder{maxResumeChars: maxResumeChars}
}

const parseSystemPrompt = `You are a strict resume parser. ` +
	`Return JSON only. Never invent facts that are not written in the resume.`

// BuildParseMessages creates the system and user messages for resume parsing.
func (pb *PromptBuilder) BuildParseMessages(resumeText string) []Message {
	user := fmt.Sprintf(`Parse the resume below and return STRICT JSON matching exactly this shape:

{
  "name": "..." or null,
  "email": "..." or null,
  "phone": "..." or null,
  "links": ["https://...", "..."],
  "location": "..." or null,
  "top_skills": ["...", "..."],
  "technical_skills": ["...", "..."],
  "experience": ["Role @ Company (Dates) - every bullet for this role, joined with '; '", "..."],
  "education": ["Degree, School (Dates) - honors, coursework", "..."],
  "projects": ["Project - tech stack - every bullet for this project", "..."],
  "target_roles": ["Software Engineer", "..."]
}

Rules:
- Preserve the content of every bullet point. Do not summarize or shorten it.
- Never infer or guess missing data. Use null for unknown strings and [] for unknown lists.
- If the resume repeats a section under the same name, merge the entries into one list.
- Each list entry is one line of plain text. Trim whitespace.
- Return only the JSON object, with no markdown and no commentary.

Resume:
"""
%s
"""`, pb.Truncate(resumeText))

	return []Message{
		{Role: RoleSystem, Content: parseSystemPrompt},
		{Role: RoleUser, Content: user},
	}
}

type QuestionParams struct {
	Profile       models.Profile
	Role          string
	Company       string
	InterviewType models.InterviewType
	PerItem       int
	RawText       string
}

// QuestionCounts returns the per-item behavioral and technical question
// limits for an interview type.
func QuestionCounts(interviewType models.InterviewType, perItem int) (behavioral, technical int) {
	if perItem <= 0 {
		perItem = models.DefaultPerItem
	}
	switch interviewType {
	case models.InterviewBehavioral:
		return perItem, 1
	default:
		return perItem, perItem
	}
}

const questionsSystemPrompt = `You are an experienced interviewer preparing a candidate-specific interview. ` +
	`Every question must be grounded in the candidate's own resume. Return JSON only.`

// BuildQuestionsMessages creates the system and user messages for question generation.
func (pb *PromptBuilder) BuildQuestionsMessages(p QuestionParams) ([]Message, error) {
	profile := p.Profile
	profile.EnsureLists()
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}

	behavioral, technical := QuestionCounts(p.InterviewType, p.PerItem)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Target role: %s\n", p.Role))
	if p.Company != "" {
		sb.WriteString(fmt.Sprintf("Company: %s\n", p.Company))
	}
	sb.WriteString(fmt.Sprintf("Interview type: %s\n\n", p.InterviewType))

	sb.WriteString("CANDIDATE PROFILE (JSON):\n")
	sb.Write(profileJSON)
	sb.WriteString("\n\n")

	if strings.TrimSpace(p.RawText) != "" {
		sb.WriteString("RAW RESUME TEXT:\n\"\"\"\n")
		sb.WriteString(pb.Truncate(p.RawText))
		sb.WriteString("\n\"\"\"\n")
		sb.WriteString("When a question checks the credibility of a claim, quote the literal phrasing from the raw resume text rather than the profile summary.\n\n")
	}

	sb.WriteString("TASK:\n")
	sb.WriteString("Group the resume into the sections Education, Work_Experience, Projects, Skills and Leadership. ")
	sb.WriteString("Create one item per degree, job, project, skill group or leadership role, labelled with the same wording the resume uses.\n")
	sb.WriteString(fmt.Sprintf("For each item write at most %d behavioral (HR) questions in \"hr_questions\" and at most %d technical questions in \"technical_questions\".\n", behavioral, technical))

	switch p.InterviewType {
	case models.InterviewBehavioral:
		sb.WriteString("Focus on behavior, motivation, collaboration and conflict. Keep technical questions light.\n")
	case models.InterviewEngineeringManager:
		sb.WriteString("This is an engineering manager interview. Across the questions for each item you MUST cover leadership and people management, technical strategy and trade-offs, and handling ambiguity.\n")
	default:
		sb.WriteString("Balance behavioral and technical depth.\n")
	}
	sb.WriteString(fmt.Sprintf("Tailor every question to the %s role", p.Role))
	if p.Company != "" {
		sb.WriteString(fmt.Sprintf(" at %s", p.Company))
	}
	sb.WriteString(".\n\n")

	sb.WriteString(`Return STRICT JSON with exactly these five keys:

{
  "Education": [ITEM, ...],
  "Work_Experience": [ITEM, ...],
  "Projects": [ITEM, ...],
  "Skills": [ITEM, ...],
  "Leadership": [ITEM, ...]
}

where every ITEM is:

{
  "item": "resume item label",
  "hr_questions": ["...", "..."],
  "technical_questions": ["...", "..."]
}

Rules:
- Always include all five keys. Use [] for a section that does not apply.
- Use [] for a question list that does not apply to an item.
- Do not invent resume items that are not in the profile or resume text.
- Return only the JSON object, with no markdown and no commentary.`)

	return []Message{
		{Role: RoleSystem, Content: questionsSystemPrompt},
		{Role: RoleUser, Content: sb.String()},
	}, nil
}

// Truncate cuts text to the configured number of runes.
func (pb *PromptBuilder) Truncate(text string) string {
	if utf8.RuneCountInString(text) <= pb.maxResumeChars {
		return text
	}
	runes := []rune(text)
	return string(runes[:pb.maxResumeChars])
}
