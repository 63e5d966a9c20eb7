package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when a form field name does not exist on the
// record being edited.
var ErrUnknownField = errors.New("unknown field")

func unknownField(kind, field string) error {
	return fmt.Errorf("%s.%s: %w", kind, field, ErrUnknownField)
}

// Profile holds the scalar part of a resume.
type Profile struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Summary  string `json:"summary"`
	LinkedIn string `json:"linkedIn"`
	GitHub   string `json:"github"`
}

func (p *Profile) Set(field, value string) error {
	switch field {
	case "fullName":
		p.FullName = value
	case "email":
		p.Email = value
	case "summary":
		p.Summary = value
	case "linkedIn":
		p.LinkedIn = value
	case "github":
		p.GitHub = value
	default:
		return unknownField("profile", field)
	}
	return nil
}

type Project struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TechStack   string `json:"techStack"`
	Link        string `json:"link"`
}

func (p Project) WithField(field, value string) (Project, error) {
	switch field {
	case "title":
		p.Title = value
	case "description":
		p.Description = value
	case "techStack":
		p.TechStack = value
	case "link":
		p.Link = value
	default:
		return p, unknownField("project", field)
	}
	return p, nil
}

type Experience struct {
	CompanyName string `json:"companyName"`
	JobTitle    string `json:"jobTitle"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

func (e Experience) WithField(field, value string) (Experience, error) {
	switch field {
	case "companyName":
		e.CompanyName = value
	case "jobTitle":
		e.JobTitle = value
	case "duration":
		e.Duration = value
	case "description":
		e.Description = value
	default:
		return e, unknownField("experience", field)
	}
	return e, nil
}

type Certification struct {
	Title  string `json:"title"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

func (c Certification) WithField(field, value string) (Certification, error) {
	switch field {
	case "title":
		c.Title = value
	case "issuer":
		c.Issuer = value
	case "date":
		c.Date = value
	default:
		return c, unknownField("certification", field)
	}
	return c, nil
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Duration    string `json:"duration"`
}

func (e Education) WithField(field, value string) (Education, error) {
	switch field {
	case "degree":
		e.Degree = value
	case "institution":
		e.Institution = value
	case "duration":
		e.Duration = value
	default:
		return e, unknownField("education", field)
	}
	return e, nil
}

// Skill is a bare string. Its only field is "value".
type Skill string

func (s Skill) WithField(field, value string) (Skill, error) {
	if field != "value" {
		return s, unknownField("skill", field)
	}
	return Skill(value), nil
}
