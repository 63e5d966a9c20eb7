package form

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"nextstep-cv/internal/domain"
)

const (
	SectionProjects        = "projects"
	SectionExperiences     = "experiences"
	SectionCertifications  = "certifications"
	SectionEducation       = "education"
	SectionTechnicalSkills = "technicalSkills"
	SectionSoftSkills      = "softSkills"

	profilePrefix = "profile"

	// MaxEntries caps how many entries a posted section may claim.
	MaxEntries = 100
)

var (
	ErrUnknownSection = errors.New("unknown section")
	ErrBadAction      = errors.New("malformed form action")
	ErrTooManyEntries = errors.New("section is full")
)

// Sections lists section names in display order.
var Sections = []string{
	SectionProjects,
	SectionExperiences,
	SectionCertifications,
	SectionEducation,
	SectionTechnicalSkills,
	SectionSoftSkills,
}

type section interface {
	Len() int
	CanRemove() bool
	Append()
	RemoveAt(i int) error
	UpdateField(i int, field, value string) error
	resize(n int)
}

// Form is the in-progress resume draft.
type Form struct {
	Profile         domain.Profile
	Projects        *Collection[domain.Project]
	Experiences     *Collection[domain.Experience]
	Certifications  *Collection[domain.Certification]
	Education       *Collection[domain.Education]
	TechnicalSkills *Collection[domain.Skill]
	SoftSkills      *Collection[domain.Skill]
}

func New() *Form {
	return &Form{
		Projects:        NewCollection(func() domain.Project { return domain.Project{} }),
		Experiences:     NewCollection(func() domain.Experience { return domain.Experience{} }),
		Certifications:  NewCollection(func() domain.Certification { return domain.Certification{} }),
		Education:       NewCollection(func() domain.Education { return domain.Education{} }),
		TechnicalSkills: NewCollection(func() domain.Skill { return "" }),
		SoftSkills:      NewCollection(func() domain.Skill { return "" }),
	}
}

func (f *Form) section(name string) (section, error) {
	switch name {
	case SectionProjects:
		return f.Projects, nil
	case SectionExperiences:
		return f.Experiences, nil
	case SectionCertifications:
		return f.Certifications, nil
	case SectionEducation:
		return f.Education, nil
	case SectionTechnicalSkills:
		return f.TechnicalSkills, nil
	case SectionSoftSkills:
		return f.SoftSkills, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownSection)
}

func (f *Form) Append(name string) error {
	s, err := f.section(name)
	if err != nil {
		return err
	}
	if s.Len() >= MaxEntries {
		return fmt.Errorf("%q has %d entries: %w", name, s.Len(), ErrTooManyEntries)
	}
	s.Append()
	return nil
}

func (f *Form) RemoveAt(name string, i int) error {
	s, err := f.section(name)
	if err != nil {
		return err
	}
	return s.RemoveAt(i)
}

func (f *Form) UpdateField(name string, i int, field, value string) error {
	s, err := f.section(name)
	if err != nil {
		return err
	}
	return s.UpdateField(i, field, value)
}

// Apply runs an editing action posted by the form's buttons:
// "append:<section>" or "remove:<section>:<index>".
func (f *Form) Apply(action string) error {
	parts := strings.Split(action, ":")
	switch {
	case len(parts) == 2 && parts[0] == "append":
		return f.Append(parts[1])
	case len(parts) == 3 && parts[0] == "remove":
		i, err := strconv.Atoi(parts[2])
		if err != nil {
			return fmt.Errorf("%q: %w", action, ErrBadAction)
		}
		return f.RemoveAt(parts[1], i)
	}
	return fmt.Errorf("%q: %w", action, ErrBadAction)
}

// ParseValues rebuilds a draft from posted form values. Keys are
// "profile.<field>", "<section>.len" and "<section>.<index>.<field>".
// Unknown keys are ignored so unrelated inputs (buttons, tokens) can share
// the form. The returned draft is never nil: a section claiming more than
// MaxEntries is cut to MaxEntries and reported as ErrTooManyEntries, with
// every value that fits still filled in.
func ParseValues(values url.Values) (*Form, error) {
	f := New()
	var errs []error

	for _, name := range Sections {
		n, err := strconv.Atoi(values.Get(name + ".len"))
		if err != nil || n < 1 {
			continue
		}
		if n > MaxEntries {
			errs = append(errs, fmt.Errorf("%s has %d entries, limit is %d: %w", name, n, MaxEntries, ErrTooManyEntries))
			n = MaxEntries
		}
		s, _ := f.section(name)
		s.resize(n)
	}

	for key, vs := range values {
		if len(vs) == 0 {
			continue
		}
		value := vs[0]
		parts := strings.SplitN(key, ".", 3)

		if len(parts) == 2 && parts[0] == profilePrefix {
			// unknown profile fields are dropped like any other stray key
			_ = f.Profile.Set(parts[1], value)
			continue
		}
		if len(parts) != 3 {
			continue
		}
		s, err := f.section(parts[0])
		if err != nil {
			continue
		}
		i, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		if err := s.UpdateField(i, parts[2], value); err != nil {
			if errors.Is(err, domain.ErrUnknownField) || errors.Is(err, ErrIndexOutOfRange) {
				continue
			}
			errs = append(errs, err)
		}
	}
	return f, errors.Join(errs...)
}
