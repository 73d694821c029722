package builder

import (
	"errors"
	"fmt"

	"resume-builder/resume/model"
)

var (
	ErrInvalidMutation = errors.New("invalid mutation")
	ErrUnknownField    = errors.New("unknown field")
)

// Mutation is one edit applied to the editable snapshot. The set is closed:
// SetScalar, SetNestedField, ReplaceObject, SetListItemField,
// ReplaceListItem, ReplaceList.
type Mutation interface {
	Target() model.Section
	apply(r model.Resume) (model.Resume, error)
}

// SetScalar replaces a string section (summary, profilePhoto).
type SetScalar struct {
	Section model.Section
	Value   string
}

// SetNestedField sets one field of an object section (personalDetail).
type SetNestedField struct {
	Section model.Section
	Field   string
	Value   string
}

// ReplaceObject replaces an object section (personalDetail) wholesale. Keys
// missing from Value are reset to empty.
type ReplaceObject struct {
	Section model.Section
	Value   any
}

// SetListItemField sets one field of a list entry. Index may equal the list
// length, which appends an empty entry first.
type SetListItemField struct {
	Section model.Section
	Index   int
	Field   string
	Value   string
}

// ReplaceListItem replaces the entry at Index, or appends when Index equals
// the list length. Skills take a string, the record lists take an object.
type ReplaceListItem struct {
	Section model.Section
	Index   int
	Value   any
}

// ReplaceList replaces a list section wholesale. Skills also accept a
// newline or comma separated string.
type ReplaceList struct {
	Section model.Section
	Value   any
}

func (m SetScalar) Target() model.Section        { return m.Section }
func (m SetNestedField) Target() model.Section   { return m.Section }
func (m ReplaceObject) Target() model.Section    { return m.Section }
func (m SetListItemField) Target() model.Section { return m.Section }
func (m ReplaceListItem) Target() model.Section  { return m.Section }
func (m ReplaceList) Target() model.Section      { return m.Section }

func (m SetScalar) apply(r model.Resume) (model.Resume, error) {
	switch m.Section {
	case model.SectionSummary:
		r.Summary = m.Value
	case model.SectionProfilePhoto:
		r.ProfilePhoto = m.Value
	default:
		return r, fmt.Errorf("%w: %s is not a scalar section", ErrInvalidMutation, m.Section)
	}
	return r, nil
}

func (m SetNestedField) apply(r model.Resume) (model.Resume, error) {
	if m.Section != model.SectionPersonalDetail {
		return r, fmt.Errorf("%w: %s is not an object section", ErrInvalidMutation, m.Section)
	}
	if err := setPersonalField(&r.PersonalDetail, m.Field, m.Value); err != nil {
		return r, err
	}
	return r, nil
}

func (m ReplaceObject) apply(r model.Resume) (model.Resume, error) {
	if m.Section != model.SectionPersonalDetail {
		return r, fmt.Errorf("%w: %s is not an object section", ErrInvalidMutation, m.Section)
	}
	switch m.Value.(type) {
	case map[string]any, map[string]string, model.PersonalDetail, nil:
	default:
		return r, fmt.Errorf("%w: personalDetail must be an object", ErrInvalidMutation)
	}
	return r.WithSection(m.Section, m.Value)
}

// checkIndex accepts an existing position or the next free one.
func checkIndex(index, n int) error {
	if index < 0 {
		return fmt.Errorf("%w: negative index", ErrInvalidMutation)
	}
	if index > n {
		return fmt.Errorf("%w: %d (list has %d entries)", ErrInvalidIndex, index, n)
	}
	return nil
}

func (m SetListItemField) apply(r model.Resume) (model.Resume, error) {
	switch m.Section {
	case model.SectionExperience:
		if err := checkIndex(m.Index, len(r.Experience)); err != nil {
			return r, err
		}
		if m.Index == len(r.Experience) {
			r.Experience = append(r.Experience, model.EmptyExperience())
		}
		return r, setExperienceField(&r.Experience[m.Index], m.Field, m.Value)
	case model.SectionEducationDetail:
		if err := checkIndex(m.Index, len(r.EducationDetail)); err != nil {
			return r, err
		}
		if m.Index == len(r.EducationDetail) {
			r.EducationDetail = append(r.EducationDetail, model.EmptyEducation())
		}
		return r, setEducationField(&r.EducationDetail[m.Index], m.Field, m.Value)
	default:
		return r, fmt.Errorf("%w: %s has no record entries", ErrInvalidMutation, m.Section)
	}
}

func (m ReplaceListItem) apply(r model.Resume) (model.Resume, error) {
	switch m.Section {
	case model.SectionSkills:
		skill, ok := m.Value.(string)
		if !ok {
			return r, fmt.Errorf("%w: skill must be a string", ErrInvalidMutation)
		}
		if err := checkIndex(m.Index, len(r.Skills)); err != nil {
			return r, err
		}
		if m.Index == len(r.Skills) {
			r.Skills = append(r.Skills, skill)
		} else {
			r.Skills[m.Index] = skill
		}
		return r, nil
	case model.SectionExperience, model.SectionEducationDetail:
		switch m.Value.(type) {
		case map[string]any, model.Experience, model.Education:
		default:
			return r, fmt.Errorf("%w: entry must be an object", ErrInvalidMutation)
		}
		list := recordEntries(r, m.Section)
		if err := checkIndex(m.Index, len(list)); err != nil {
			return r, err
		}
		if m.Index == len(list) {
			list = append(list, m.Value)
		} else {
			list[m.Index] = m.Value
		}
		return r.WithSection(m.Section, list)
	default:
		return r, fmt.Errorf("%w: %s is not a list section", ErrInvalidMutation, m.Section)
	}
}

// recordEntries copies a record list into the untyped form Normalize reads,
// so one entry can be swapped for a map.
func recordEntries(r model.Resume, s model.Section) []any {
	var list []any
	switch s {
	case model.SectionExperience:
		list = make([]any, len(r.Experience), len(r.Experience)+1)
		for i, e := range r.Experience {
			list[i] = e
		}
	case model.SectionEducationDetail:
		list = make([]any, len(r.EducationDetail), len(r.EducationDetail)+1)
		for i, e := range r.EducationDetail {
			list[i] = e
		}
	}
	return list
}

func (m ReplaceList) apply(r model.Resume) (model.Resume, error) {
	if !m.Section.IsList() {
		return r, fmt.Errorf("%w: %s is not a list section", ErrInvalidMutation, m.Section)
	}
	switch m.Value.(type) {
	case []any, []string, []model.Experience, []model.Education, nil:
	case string:
		if m.Section != model.SectionSkills {
			return r, fmt.Errorf("%w: only skills accept a string", ErrInvalidMutation)
		}
	default:
		return r, fmt.Errorf("%w: list value expected", ErrInvalidMutation)
	}
	return r.WithSection(m.Section, m.Value)
}

func setPersonalField(p *model.PersonalDetail, field, value string) error {
	switch field {
	case "name":
		p.Name = value
	case "email":
		p.Email = value
	case "phone":
		p.Phone = value
	case "address":
		p.Address = value
	default:
		return fmt.Errorf("%w: personalDetail.%s", ErrUnknownField, field)
	}
	return nil
}

func setExperienceField(e *model.Experience, field, value string) error {
	switch field {
	case "company":
		e.Company = value
	case "position":
		e.Position = value
	case "startDate":
		e.StartDate = value
	case "endDate":
		e.EndDate = value
	case "description":
		e.Description = value
	default:
		return fmt.Errorf("%w: experience.%s", ErrUnknownField, field)
	}
	return nil
}

func setEducationField(e *model.Education, field, value string) error {
	switch field {
	case "institution":
		e.Institution = value
	case "course":
		e.Course = value
	case "level":
		e.Level = value
	case "result":
		e.Result = value
	case "startDate":
		e.StartDate = value
	case "endDate":
		e.EndDate = value
	default:
		return fmt.Errorf("%w: educationDetail.%s", ErrUnknownField, field)
	}
	return nil
}

// DecodeMutation maps the positional (section, value, index, field) input
// shape onto a typed mutation:
//
//	skills with an index     -> ReplaceListItem
//	index and field          -> SetListItemField
//	field only               -> SetNestedField
//	neither, personalDetail  -> ReplaceObject
//	neither, list section    -> ReplaceList
//	neither, scalar section  -> SetScalar
func DecodeMutation(section string, value any, index *int, field string) (Mutation, error) {
	s, err := model.ParseSection(section)
	if err != nil {
		return nil, err
	}
	switch {
	case s == model.SectionSkills && index != nil:
		return ReplaceListItem{Section: s, Index: *index, Value: value}, nil
	case index != nil && field != "":
		str, err := stringValue(value)
		if err != nil {
			return nil, err
		}
		return SetListItemField{Section: s, Index: *index, Field: field, Value: str}, nil
	case index != nil:
		return ReplaceListItem{Section: s, Index: *index, Value: value}, nil
	case field != "":
		str, err := stringValue(value)
		if err != nil {
			return nil, err
		}
		return SetNestedField{Section: s, Field: field, Value: str}, nil
	case s == model.SectionPersonalDetail:
		return ReplaceObject{Section: s, Value: value}, nil
	case s.IsList():
		return ReplaceList{Section: s, Value: value}, nil
	default:
		str, err := stringValue(value)
		if err != nil {
			return nil, err
		}
		return SetScalar{Section: s, Value: str}, nil
	}
}

func stringValue(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	default:
		return "", fmt.Errorf("%w: string value expected", ErrInvalidMutation)
	}
}

// MutationRequest is the wire form of a mutation. Kind selects the command;
// when it is empty the positional shape is decoded with DecodeMutation.
type MutationRequest struct {
	Kind    string `json:"kind,omitempty"`
	Section string `json:"section"`
	Field   string `json:"field,omitempty"`
	Index   *int   `json:"index,omitempty"`
	Value   any    `json:"value"`
}

// Mutation converts the request into a typed command.
func (req MutationRequest) Mutation() (Mutation, error) {
	if req.Kind == "" {
		return DecodeMutation(req.Section, req.Value, req.Index, req.Field)
	}
	s, err := model.ParseSection(req.Section)
	if err != nil {
		return nil, err
	}
	index := func() (int, error) {
		if req.Index == nil {
			return 0, fmt.Errorf("%w: %s needs an index", ErrInvalidMutation, req.Kind)
		}
		return *req.Index, nil
	}
	switch req.Kind {
	case "setScalar":
		str, err := stringValue(req.Value)
		if err != nil {
			return nil, err
		}
		return SetScalar{Section: s, Value: str}, nil
	case "setNestedField":
		str, err := stringValue(req.Value)
		if err != nil {
			return nil, err
		}
		return SetNestedField{Section: s, Field: req.Field, Value: str}, nil
	case "replaceObject":
		return ReplaceObject{Section: s, Value: req.Value}, nil
	case "setListItemField":
		i, err := index()
		if err != nil {
			return nil, err
		}
		str, err := stringValue(req.Value)
		if err != nil {
			return nil, err
		}
		return SetListItemField{Section: s, Index: i, Field: req.Field, Value: str}, nil
	case "replaceListItem":
		i, err := index()
		if err != nil {
			return nil, err
		}
		return ReplaceListItem{Section: s, Index: i, Value: req.Value}, nil
	case "replaceList":
		return ReplaceList{Section: s, Value: req.Value}, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidMutation, req.Kind)
	}
}
