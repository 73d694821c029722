package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Normalize overlays a possibly partial stored document onto Default.
// personalDetail merges key by key; list fields are taken only when the
// stored value is a list (skills also accepts a delimited string).
// Normalize(Normalize(d).Document()) equals Normalize(d).
func Normalize(doc map[string]any) Resume {
	r := Default()
	if doc == nil {
		return r
	}

	r.ID = stringField(doc, "id")
	r.UserID = stringField(doc, "userId")
	r.UserEmail = stringField(doc, "userEmail")
	r.TemplateID = stringField(doc, "templateId")
	r.TemplateName = stringField(doc, "templateName")
	r.EditName = stringField(doc, "editName")
	r.ProfilePhoto = stringField(doc, "profilePhoto")
	r.Summary = stringField(doc, "summary")
	r.CreatedAt = timeField(doc, "createdAt")
	r.UpdatedAt = timeField(doc, "updatedAt")

	r.PersonalDetail = mergePersonalDetail(r.PersonalDetail, doc["personalDetail"])
	if list, ok := experienceList(doc["experience"]); ok {
		r.Experience = list
	}
	if list, ok := educationList(doc["educationDetail"]); ok {
		r.EducationDetail = list
	}
	if list, ok := skillsList(doc["skills"]); ok {
		r.Skills = list
	}
	return r
}

// ParseSkills splits the legacy delimited skills string on newlines and
// commas, trimming each entry and dropping empty ones.
func ParseSkills(raw string) []string {
	out := []string{}
	for _, line := range strings.Split(raw, "\n") {
		for _, part := range strings.Split(line, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func mergePersonalDetail(base PersonalDetail, raw any) PersonalDetail {
	switch v := raw.(type) {
	case PersonalDetail:
		return v
	case *PersonalDetail:
		if v != nil {
			return *v
		}
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return mergePersonalDetail(base, m)
	case map[string]any:
		if _, ok := v["name"]; ok {
			base.Name = asString(v["name"])
		}
		if _, ok := v["email"]; ok {
			base.Email = asString(v["email"])
		}
		if _, ok := v["phone"]; ok {
			base.Phone = asString(v["phone"])
		}
		if _, ok := v["address"]; ok {
			base.Address = asString(v["address"])
		}
	}
	return base
}

func experienceList(raw any) ([]Experience, bool) {
	switch v := raw.(type) {
	case []Experience:
		return append([]Experience{}, v...), true
	case []map[string]any:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return experienceList(items)
	case []any:
		out := make([]Experience, 0, len(v))
		for _, item := range v {
			out = append(out, experienceFrom(item))
		}
		return out, true
	}
	return nil, false
}

func experienceFrom(raw any) Experience {
	switch v := raw.(type) {
	case Experience:
		return v
	case map[string]any:
		return Experience{
			Company:     asString(v["company"]),
			Position:    asString(v["position"]),
			StartDate:   asString(v["startDate"]),
			EndDate:     asString(v["endDate"]),
			Description: asString(v["description"]),
		}
	}
	return EmptyExperience()
}

func educationList(raw any) ([]Education, bool) {
	switch v := raw.(type) {
	case []Education:
		return append([]Education{}, v...), true
	case []map[string]any:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return educationList(items)
	case []any:
		out := make([]Education, 0, len(v))
		for _, item := range v {
			out = append(out, educationFrom(item))
		}
		return out, true
	}
	return nil, false
}

func educationFrom(raw any) Education {
	switch v := raw.(type) {
	case Education:
		return v
	case map[string]any:
		return Education{
			Institution: asString(v["institution"]),
			Course:      asString(v["course"]),
			Level:       asString(v["level"]),
			Result:      asString(v["result"]),
			StartDate:   asString(v["startDate"]),
			EndDate:     asString(v["endDate"]),
		}
	}
	return EmptyEducation()
}

func skillsList(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case string:
		return ParseSkills(v), true
	case []string:
		return append([]string{}, v...), true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, asString(item))
		}
		return out, true
	}
	return nil, false
}

func stringField(doc map[string]any, key string) string {
	return asString(doc[key])
}

// asString keeps strings, prints numbers and booleans, and maps anything
// else (nil, objects, lists) to "".
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int, int32, int64, bool:
		return fmt.Sprint(s)
	}
	return ""
}

func timeField(doc map[string]any, key string) time.Time {
	switch v := doc[key].(type) {
	case time.Time:
		return v.UTC()
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
