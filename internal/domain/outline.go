package domain

import "regexp"

// PodcastOutline is the planning artifact produced before any dialogue is
// written: an overview, at least three body sections, and a closing block.
type PodcastOutline struct {
	Overview      OutlineOverview  `json:"overview"`
	Sections      []OutlineSection `json:"sections"`
	FinalThoughts FinalThoughts    `json:"finalThoughts"`
}

// OutlineOverview summarizes the whole episode.
type OutlineOverview struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	TotalDuration  string `json:"totalDuration"`
	TargetAudience string `json:"targetAudience"`
	Tone           string `json:"tone"`
}

// OutlineSection is one topical planning unit. SearchContext and Script are
// attached as the pipeline progresses; they are additive-only.
type OutlineSection struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Duration      string           `json:"duration"`
	KeyPoints     []string         `json:"keyPoints"`
	SearchContext []SearchResponse `json:"searchContext,omitempty"`
	Script        string           `json:"script,omitempty"`
}

// FinalThoughts closes the episode; it carries takeaways instead of key points.
type FinalThoughts struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Duration     string   `json:"duration"`
	KeyTakeaways []string `json:"keyTakeaways"`
	Script       string   `json:"script,omitempty"`
}

// durationPattern matches the accepted duration vocabulary: "3 minutes",
// "12-15 minutes", "30 seconds". Values matching it are exempt from the
// placeholder and minimum-length rules.
var durationPattern = regexp.MustCompile(`^\d+(-\d+)?\s+(minutes?|seconds?)$`)

// IsDurationString reports whether s belongs to the accepted duration vocabulary.
func IsDurationString(s string) bool {
	return durationPattern.MatchString(s)
}

// MinSections is the smallest outline the pipeline accepts.
const MinSections = 3

// SectionDuration is the fixed planning duration for body sections.
const SectionDuration = "3 minutes"
