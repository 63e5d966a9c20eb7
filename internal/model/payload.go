package model

import (
	"nextstep-cv/internal/domain"
	"nextstep-cv/internal/form"
)

// PayloadVersion identifies the key set below. The generation service
// matches on these exact names, so any change here is a new version.
const PayloadVersion = "2025-01"

// GenerationPayload is the body posted to the generation endpoint. Field
// order matches the order the service has always received.
type GenerationPayload struct {
	FullName            string                 `json:"Full Name"`
	Email               string                 `json:"Email"`
	LinkedIn            string                 `json:"LinkedIn"`
	GitHub              string                 `json:"GitHub"`
	ProfessionalSummary string                 `json:"Professional Summary"`
	Projects            []domain.Project       `json:"Projects"`
	Experiences         []domain.Experience    `json:"Experiences"`
	Certifications      []domain.Certification `json:"Certifications"`
	Education           []domain.Education     `json:"Education"`
	TechnicalSkills     []string               `json:"TechnicalSkills"`
	SoftSkills          []string               `json:"SoftSkills"`
	Activities          string                 `json:"Activities"`
}

func NewPayload(f *form.Form) GenerationPayload {
	return GenerationPayload{
		FullName:            f.Profile.FullName,
		Email:               f.Profile.Email,
		LinkedIn:            f.Profile.LinkedIn,
		GitHub:              f.Profile.GitHub,
		ProfessionalSummary: f.Profile.Summary,
		Projects:            f.Projects.Items(),
		Experiences:         f.Experiences.Items(),
		Certifications:      f.Certifications.Items(),
		Education:           f.Education.Items(),
		TechnicalSkills:     skillStrings(f.TechnicalSkills.Items()),
		SoftSkills:          skillStrings(f.SoftSkills.Items()),
		Activities:          "",
	}
}

func skillStrings(skills []domain.Skill) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		out = append(out, string(s))
	}
	return out
}
