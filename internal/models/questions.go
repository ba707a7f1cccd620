package models

type InterviewType string

const (
	InterviewBehavioral         InterviewType = "Behavioral"
	InterviewEngineeringManager InterviewType = "Engineering Manager"
	InterviewMixed              InterviewType = "Mixed"
)

const DefaultPerItem = 4

func (t InterviewType) Valid() bool {
	switch t {
	case InterviewBehavioral, InterviewEngineeringManager, InterviewMixed:
		return true
	}
	return false
}

// QAItem pairs one resume item with the questions generated for it.
type QAItem struct {
	Item               string   `json:"item"`
	HRQuestions        []string `json:"hr_questions"`
	TechnicalQuestions []string `json:"technical_questions"`
}

// QuestionSet groups generated questions by resume section. All five
// sections are always present in the serialized form.
type QuestionSet struct {
	Education      []QAItem `json:"Education"`
	WorkExperience []QAItem `json:"Work_Experience"`
	Projects       []QAItem `json:"Projects"`
	Skills         []QAItem `json:"Skills"`
	Leadership     []QAItem `json:"Leadership"`
}

func (q *QuestionSet) EnsureSections() {
	for _, s := range []*[]QAItem{&q.Education, &q.WorkExperience, &q.Projects, &q.Skills, &q.Leadership} {
		if *s == nil {
			*s = []QAItem{}
		}
		for i := range *s {
			item := &(*s)[i]
			if item.HRQuestions == nil {
				item.HRQuestions = []string{}
			}
			if item.TechnicalQuestions == nil {
				item.TechnicalQuestions = []string{}
			}
		}
	}
}

type GenerateQuestionsRequest struct {
	Profile       Profile       `json:"profile"`
	Role          string        `json:"role" validate:"required,notblank"`
	Company       *string       `json:"company,omitempty"`
	InterviewType InterviewType `json:"interview_type" validate:"omitempty,interview_type"`
	RawText       *string       `json:"raw_text,omitempty"`
	PerItem       *int          `json:"per_item,omitempty" validate:"omitempty,min=1,max=10"`
}

// ApplyDefaults fills interview_type and per_item when the caller left them out.
func (r *GenerateQuestionsRequest) ApplyDefaults() {
	if r.InterviewType == "" {
		r.InterviewType = InterviewMixed
	}
	if r.PerItem == nil {
		n := DefaultPerItem
		r.PerItem = &n
	}
}
