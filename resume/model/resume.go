package model

import "time"

// Resume is the normalized resume document. List fields are never nil once
// the value has gone through Normalize or Normalized.
type Resume struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	UserEmail       string         `json:"userEmail"`
	TemplateID      string         `json:"templateId"`
	TemplateName    string         `json:"templateName"`
	EditName        string         `json:"editName"`
	ProfilePhoto    string         `json:"profilePhoto"`
	PersonalDetail  PersonalDetail `json:"personalDetail"`
	Summary         string         `json:"summary"`
	Experience      []Experience   `json:"experience"`
	EducationDetail []Education    `json:"educationDetail"`
	Skills          []string       `json:"skills"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

type PersonalDetail struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type Experience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

type Education struct {
	Institution string `json:"institution"`
	Course      string `json:"course"`
	Level       string `json:"level"`
	Result      string `json:"result"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// Default is the skeleton every loaded document is overlaid onto.
func Default() Resume {
	return Resume{
		Experience:      []Experience{},
		EducationDetail: []Education{},
		Skills:          []string{},
	}
}

// EmptyExperience is the record appended by "add experience".
func EmptyExperience() Experience { return Experience{} }

// EmptyEducation is the record appended by "add education".
func EmptyEducation() Education { return Education{} }

// Normalized returns a deep copy of r with nil lists replaced by empty ones.
func (r Resume) Normalized() Resume {
	out := r
	out.Experience = append([]Experience{}, r.Experience...)
	out.EducationDetail = append([]Education{}, r.EducationDetail...)
	out.Skills = append([]string{}, r.Skills...)
	return out
}

// Clone is an alias of Normalized for call sites that only want a copy.
func (r Resume) Clone() Resume { return r.Normalized() }

// IsZero reports whether r carries no identity and no content.
func (r Resume) IsZero() bool {
	return r.ID == "" && r.UserID == "" && r.TemplateID == "" && r.Summary == "" &&
		r.PersonalDetail == (PersonalDetail{}) && len(r.Experience) == 0 &&
		len(r.EducationDetail) == 0 && len(r.Skills) == 0 && r.ProfilePhoto == ""
}

// SectionValue returns the value persisted for s. An empty profile photo is
// nil so the stored field reads as null.
func (r Resume) SectionValue(s Section) (any, error) {
	n := r.Normalized()
	switch s {
	case SectionProfilePhoto:
		if n.ProfilePhoto == "" {
			return nil, nil
		}
		return n.ProfilePhoto, nil
	case SectionPersonalDetail:
		return n.PersonalDetail, nil
	case SectionSummary:
		return n.Summary, nil
	case SectionExperience:
		return n.Experience, nil
	case SectionEducationDetail:
		return n.EducationDetail, nil
	case SectionSkills:
		return n.Skills, nil
	default:
		return nil, ErrUnknownSection
	}
}

// WithSection returns a copy of r whose section s is replaced by value,
// normalized the same way a stored document would be.
func (r Resume) WithSection(s Section, value any) (Resume, error) {
	if s.Step() < 0 {
		return Resume{}, ErrUnknownSection
	}
	doc := r.Document()
	doc[string(s)] = value
	return Normalize(doc), nil
}

// Document renders r in stored-document shape.
func (r Resume) Document() map[string]any {
	n := r.Normalized()
	doc := map[string]any{
		"id":              n.ID,
		"userId":          n.UserID,
		"userEmail":       n.UserEmail,
		"templateId":      n.TemplateID,
		"templateName":    n.TemplateName,
		"editName":        n.EditName,
		"profilePhoto":    nil,
		"personalDetail":  n.PersonalDetail,
		"summary":         n.Summary,
		"experience":      n.Experience,
		"educationDetail": n.EducationDetail,
		"skills":          n.Skills,
	}
	if n.ProfilePhoto != "" {
		doc["profilePhoto"] = n.ProfilePhoto
	}
	if !n.CreatedAt.IsZero() {
		doc["createdAt"] = n.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !n.UpdatedAt.IsZero() {
		doc["updatedAt"] = n.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return doc
}
