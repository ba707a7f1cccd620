package models

// Profile is the normalized view of a parsed resume. List fields are never
// nil once a Profile leaves the normalizer so they serialize as [].
type Profile struct {
	Name            *string  `json:"name"`
	Email           *string  `json:"email"`
	Phone           *string  `json:"phone"`
	Location        *string  `json:"location"`
	Links           []string `json:"links"`
	TopSkills       []string `json:"top_skills"`
	TechnicalSkills []string `json:"technical_skills"`
	Experience      []string `json:"experience"`
	Education       []string `json:"education"`
	Projects        []string `json:"projects"`
	TargetRoles     []string `json:"target_roles"`
}

// EnsureLists replaces nil list fields with empty slices.
func (p *Profile) EnsureLists() {
	for _, l := range []*[]string{
		&p.Links,
		&p.TopSkills,
		&p.TechnicalSkills,
		&p.Experience,
		&p.Education,
		&p.Projects,
		&p.TargetRoles,
	} {
		if *l == nil {
			*l = []string{}
		}
	}
}

type ParseResponse struct {
	Profile    Profile `json:"profile"`
	TokensUsed *int    `json:"tokens_used"`
}
