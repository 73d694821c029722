package model

import (
	"errors"
	"fmt"
)

// Section is one of the top-level resume fields saved independently.
type Section string

const (
	SectionProfilePhoto    Section = "profilePhoto"
	SectionPersonalDetail  Section = "personalDetail"
	SectionSummary         Section = "summary"
	SectionExperience      Section = "experience"
	SectionEducationDetail Section = "educationDetail"
	SectionSkills          Section = "skills"
)

// ErrUnknownSection is returned for names outside the six sections.
var ErrUnknownSection = errors.New("unknown section")

var orderedSections = [...]Section{
	SectionProfilePhoto,
	SectionPersonalDetail,
	SectionSummary,
	SectionExperience,
	SectionEducationDetail,
	SectionSkills,
}

// StepCount is the number of builder steps, one per section.
const StepCount = len(orderedSections)

// Sections returns the sections in step order.
func Sections() []Section {
	out := make([]Section, len(orderedSections))
	copy(out, orderedSections[:])
	return out
}

// SectionAt maps a step index to its section.
func SectionAt(step int) (Section, bool) {
	if step < 0 || step >= len(orderedSections) {
		return "", false
	}
	return orderedSections[step], true
}

// ParseSection validates a section name.
func ParseSection(name string) (Section, error) {
	for _, s := range orderedSections {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSection, name)
}

// Step is the index of s in step order, or -1.
func (s Section) Step() int {
	for i, candidate := range orderedSections {
		if candidate == s {
			return i
		}
	}
	return -1
}

// IsList reports whether the section holds an ordered list.
func (s Section) IsList() bool {
	return s == SectionExperience || s == SectionEducationDetail || s == SectionSkills
}

// HasEntryTemplate reports whether AddEntry can append an empty record.
func (s Section) HasEntryTemplate() bool {
	return s == SectionExperience || s == SectionEducationDetail
}
