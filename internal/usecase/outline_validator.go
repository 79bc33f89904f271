package usecase

import (
	"fmt"
	"strings"

	"podcast-orchestrator/internal/domain"
)

// placeholderTerms is the denylist matched case-insensitively as substrings
// against every string leaf of an outline.
var placeholderTerms = []string{
	"string",
	"placeholder",
	"tbd",
	"todo",
	"lorem",
	"insert",
	"example text",
	"sample text",
	"your title",
	"title here",
	"section title",
}

// Field-specific minimum lengths. Anything not listed uses minLenGeneric.
const (
	minLenID       = 3
	minLenTitle    = 8
	minLenKeyPoint = 8
	minLenGeneric  = 5
)

// Floors on the list-valued fields. A section with fewer key points than this
// is planning filler, not content.
const (
	minKeyPoints    = 3
	minKeyTakeaways = 2
)

// OutlineValidator rejects outlines whose fields look like unfilled template
// text. It fails fast on the first violation rather than accumulating all.
type OutlineValidator struct{}

// NewOutlineValidator creates a validator instance (stateless).
func NewOutlineValidator() OutlineValidator {
	return OutlineValidator{}
}

// Validate walks overview, every section, and finalThoughts, checking each
// string leaf against the placeholder denylist and its minimum length.
// Duration-vocabulary values are exempt even when they would otherwise trip a
// rule. Returns *domain.PlaceholderContentError on the first violation.
func (v OutlineValidator) Validate(outline *domain.PodcastOutline) error {
	if outline == nil {
		return &domain.PlaceholderContentError{Field: "outline", Reason: "outline is missing"}
	}

	checks := []struct {
		field  string
		value  string
		minLen int
	}{
		{"overview.title", outline.Overview.Title, minLenTitle},
		{"overview.description", outline.Overview.Description, minLenGeneric},
		{"overview.totalDuration", outline.Overview.TotalDuration, minLenGeneric},
		{"overview.targetAudience", outline.Overview.TargetAudience, minLenGeneric},
		{"overview.tone", outline.Overview.Tone, minLenGeneric},
	}
	for _, c := range checks {
		if err := v.checkField(c.field, c.value, c.minLen); err != nil {
			return err
		}
	}

	if len(outline.Sections) < domain.MinSections {
		return &domain.PlaceholderContentError{
			Field:  "sections",
			Reason: fmt.Sprintf("outline needs at least %d sections, got %d", domain.MinSections, len(outline.Sections)),
		}
	}

	for i, section := range outline.Sections {
		prefix := fmt.Sprintf("sections[%d]", i)
		if err := v.checkField(prefix+".id", section.ID, minLenID); err != nil {
			return err
		}
		if err := v.checkField(prefix+".title", section.Title, minLenTitle); err != nil {
			return err
		}
		if err := v.checkField(prefix+".description", section.Description, minLenGeneric); err != nil {
			return err
		}
		if err := v.checkField(prefix+".duration", section.Duration, minLenGeneric); err != nil {
			return err
		}
		if len(section.KeyPoints) < minKeyPoints {
			return &domain.PlaceholderContentError{
				Field:  prefix + ".keyPoints",
				Reason: fmt.Sprintf("section needs at least %d key points, got %d", minKeyPoints, len(section.KeyPoints)),
			}
		}
		for j, point := range section.KeyPoints {
			if err := v.checkField(fmt.Sprintf("%s.keyPoints[%d]", prefix, j), point, minLenKeyPoint); err != nil {
				return err
			}
		}
	}

	ft := outline.FinalThoughts
	if err := v.checkField("finalThoughts.title", ft.Title, minLenTitle); err != nil {
		return err
	}
	if err := v.checkField("finalThoughts.description", ft.Description, minLenGeneric); err != nil {
		return err
	}
	if len(ft.KeyTakeaways) < minKeyTakeaways {
		return &domain.PlaceholderContentError{
			Field:  "finalThoughts.keyTakeaways",
			Reason: fmt.Sprintf("closing block needs at least %d takeaways, got %d", minKeyTakeaways, len(ft.KeyTakeaways)),
		}
	}
	for j, takeaway := range ft.KeyTakeaways {
		if err := v.checkField(fmt.Sprintf("finalThoughts.keyTakeaways[%d]", j), takeaway, minLenKeyPoint); err != nil {
			return err
		}
	}

	return nil
}

func (v OutlineValidator) checkField(field, value string, minLen int) error {
	trimmed := strings.TrimSpace(value)

	// Duration strings like "3 minutes" would trip the "string"-style checks
	// below; the vocabulary itself is the validation.
	if domain.IsDurationString(trimmed) {
		return nil
	}

	if len(trimmed) < minLen {
		return &domain.PlaceholderContentError{
			Field:  field,
			Value:  value,
			Reason: fmt.Sprintf("shorter than minimum length %d", minLen),
		}
	}

	lower := strings.ToLower(trimmed)
	for _, term := range placeholderTerms {
		if strings.Contains(lower, term) {
			return &domain.PlaceholderContentError{
				Field:  field,
				Value:  value,
				Reason: fmt.Sprintf("contains placeholder term %q", term),
			}
		}
	}

	return nil
}
