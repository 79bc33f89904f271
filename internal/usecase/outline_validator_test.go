package usecase_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-orchestrator/internal/domain"
	"podcast-orchestrator/internal/usecase"
)

func validOutline() *domain.PodcastOutline {
	outline := &domain.PodcastOutline{
		Overview: domain.OutlineOverview{
			Title:          "The AI Revolution in Healthcare",
			Description:    "How machine learning is reshaping diagnosis and care",
			TotalDuration:  "12 minutes",
			TargetAudience: "healthcare professionals",
			Tone:           "informative and warm",
		},
		FinalThoughts: domain.FinalThoughts{
			Title:       "Where this leaves us",
			Description: "Closing reflections on adoption and trust",
			Duration:    "2 minutes",
			KeyTakeaways: []string{
				"Diagnostic models augment clinicians rather than replace them",
				"Regulation is catching up to deployed systems",
			},
		},
	}
	for i := 0; i < domain.MinSections; i++ {
		outline.Sections = append(outline.Sections, domain.OutlineSection{
			ID:          fmt.Sprintf("section-%d", i+1),
			Title:       fmt.Sprintf("Clinical application area %d", i+1),
			Description: "A concrete area where models already see daily use",
			Duration:    domain.SectionDuration,
			KeyPoints: []string{
				"Real deployments in radiology reading rooms",
				"Measured accuracy against specialist panels",
				"Open questions around liability and sign-off",
			},
		})
	}
	return outline
}

func TestOutlineValidator_AcceptsRealContent(t *testing.T) {
	assert.NoError(t, usecase.NewOutlineValidator().Validate(validOutline()))
}

func TestOutlineValidator_NilOutline(t *testing.T) {
	err := usecase.NewOutlineValidator().Validate(nil)

	var placeholder *domain.PlaceholderContentError
	require.ErrorAs(t, err, &placeholder)
	assert.Equal(t, "outline", placeholder.Field)
}

func TestOutlineValidator_PlaceholderTerms(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *domain.PodcastOutline)
		field  string
	}{
		{
			"schema echo in title",
			func(o *domain.PodcastOutline) { o.Overview.Title = "string" },
			"overview.title",
		},
		{
			"title here template",
			func(o *domain.PodcastOutline) { o.Sections[0].Title = "Your Title Here!" },
			"sections[0].title",
		},
		{
			"lorem in description",
			func(o *domain.PodcastOutline) { o.Overview.Description = "Lorem ipsum dolor sit amet" },
			"overview.description",
		},
		{
			"todo in key point",
			func(o *domain.PodcastOutline) { o.Sections[1].KeyPoints[0] = "TODO fill in later" },
			"sections[1].keyPoints[0]",
		},
		{
			"placeholder in takeaway",
			func(o *domain.PodcastOutline) { o.FinalThoughts.KeyTakeaways[0] = "A placeholder takeaway" },
			"finalThoughts.keyTakeaways[0]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outline := validOutline()
			tt.mutate(outline)

			err := usecase.NewOutlineValidator().Validate(outline)
			var placeholder *domain.PlaceholderContentError
			require.ErrorAs(t, err, &placeholder)
			assert.Equal(t, tt.field, placeholder.Field)
		})
	}
}

func TestOutlineValidator_MinimumLengths(t *testing.T) {
	outline := validOutline()
	outline.Sections[0].Title = "Short"

	err := usecase.NewOutlineValidator().Validate(outline)
	var placeholder *domain.PlaceholderContentError
	require.ErrorAs(t, err, &placeholder)
	assert.Equal(t, "sections[0].title", placeholder.Field)
	assert.Contains(t, placeholder.Reason, "minimum length")
}

func TestOutlineValidator_TooFewKeyPoints(t *testing.T) {
	outline := validOutline()
	outline.Sections[1].KeyPoints = outline.Sections[1].KeyPoints[:2]

	err := usecase.NewOutlineValidator().Validate(outline)
	var placeholder *domain.PlaceholderContentError
	require.ErrorAs(t, err, &placeholder)
	assert.Equal(t, "sections[1].keyPoints", placeholder.Field)
	assert.Contains(t, placeholder.Reason, "at least 3 key points")
}

func TestOutlineValidator_TooFewTakeaways(t *testing.T) {
	outline := validOutline()
	outline.FinalThoughts.KeyTakeaways = outline.FinalThoughts.KeyTakeaways[:1]

	err := usecase.NewOutlineValidator().Validate(outline)
	var placeholder *domain.PlaceholderContentError
	require.ErrorAs(t, err, &placeholder)
	assert.Equal(t, "finalThoughts.keyTakeaways", placeholder.Field)
}

func TestOutlineValidator_TooFewSections(t *testing.T) {
	outline := validOutline()
	outline.Sections = outline.Sections[:2]

	err := usecase.NewOutlineValidator().Validate(outline)
	var placeholder *domain.PlaceholderContentError
	require.ErrorAs(t, err, &placeholder)
	assert.Equal(t, "sections", placeholder.Field)
}

func TestOutlineValidator_DurationVocabularyExempt(t *testing.T) {
	outline := validOutline()
	outline.Sections[0].Duration = "3 minutes"
	outline.Overview.TotalDuration = "12-15 minutes"
	outline.FinalThoughts.Duration = "30 seconds"

	assert.NoError(t, usecase.NewOutlineValidator().Validate(outline))
}
