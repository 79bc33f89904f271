package usecase

import (
	"fmt"
	"strings"

	"podcast-orchestrator/internal/domain"
)

// maxSourceChars caps how much of the original content is embedded in a
// per-section drafting prompt.
const maxSourceChars = 1500

// PromptBuilder renders the chat messages for each pipeline stage.
type PromptBuilder struct {
	hostA string
	hostB string
}

// NewPromptBuilder creates a builder bound to the two canonical host names.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{hostA: domain.HostA, hostB: domain.HostB}
}

// BuildOutlinePrompt renders the outline-stage messages. When plainJSON is
// set (the fallback path after a structured-output failure) the prompt spells
// out the exact JSON shape and demands valid JSON only.
func (b *PromptBuilder) BuildOutlinePrompt(content, instructions string, plainJSON bool) []domain.Message {
	var sys strings.Builder
	sys.WriteString("You are a podcast producer planning a two-host episode.\n")
	sys.WriteString("Create a multi-section outline for the provided content.\n")
	sys.WriteString("Rules:\n")
	sys.WriteString(fmt.Sprintf("- At least %d body sections, each planned for %q.\n", domain.MinSections, domain.SectionDuration))
	sys.WriteString("- Every section needs an id, a specific title, a description, and at least 3 concrete key points.\n")
	sys.WriteString("- Close with a finalThoughts block carrying keyTakeaways instead of keyPoints.\n")
	sys.WriteString("- Fill every field with real content about the material. Never emit template text such as \"string\" or \"title here\".\n")
	if plainJSON {
		sys.WriteString("\nRespond with valid JSON only, no prose, no markdown fences, exactly this shape:\n")
		sys.WriteString(outlineShapeExample)
	}

	var user strings.Builder
	user.WriteString("Content:\n")
	user.WriteString(content)
	if strings.TrimSpace(instructions) != "" {
		user.WriteString("\n\nListener instructions:\n")
		user.WriteString(instructions)
	}

	return []domain.Message{
		{Role: "system", Content: sys.String()},
		{Role: "user", Content: user.String()},
	}
}

const outlineShapeExample = `{
  "overview": {"title": "...", "description": "...", "totalDuration": "12-15 minutes", "targetAudience": "...", "tone": "..."},
  "sections": [{"id": "section-1", "title": "...", "description": "...", "duration": "3 minutes", "keyPoints": ["...", "...", "..."]}],
  "finalThoughts": {"title": "...", "description": "...", "duration": "3 minutes", "keyTakeaways": ["...", "...", "..."]}
}`

// BuildSectionPrompt renders the drafting messages for one body section,
// embedding up to maxSourceChars of the original content plus any search
// context accumulated during enrichment.
func (b *PromptBuilder) BuildSectionPrompt(section domain.OutlineSection, sourceContent string) []domain.Message {
	var sys strings.Builder
	sys.WriteString("You draft podcast dialogue in a tiki-taka style: quick, reactive back-and-forth between two hosts.\n")
	sys.WriteString("Write the dialogue for ONE section of the episode.\n")
	sys.WriteString("Rules:\n")
	sys.WriteString("- Mark each line with \"A:\" or \"B:\" for the two hosts.\n")
	sys.WriteString("- Cover every key point of the section.\n")
	sys.WriteString(fmt.Sprintf("- Target roughly %s of spoken dialogue.\n", section.Duration))
	sys.WriteString("- No stage directions, no headings, dialogue only.\n")

	var user strings.Builder
	fmt.Fprintf(&user, "Section %q: %s\n", section.Title, section.Description)
	user.WriteString("Key points:\n")
	for _, p := range section.KeyPoints {
		user.WriteString("- " + p + "\n")
	}
	writeSearchContext(&user, section.SearchContext)
	writeSourceExcerpt(&user, sourceContent)

	return []domain.Message{
		{Role: "system", Content: sys.String()},
		{Role: "user", Content: user.String()},
	}
}

// BuildFinalThoughtsPrompt renders the drafting messages for the closing
// block. The final thoughts wrap the episode, so the prompt carries the
// takeaways and the titles of everything already covered.
func (b *PromptBuilder) BuildFinalThoughtsPrompt(ft domain.FinalThoughts, covered []string, sourceContent string) []domain.Message {
	var sys strings.Builder
	sys.WriteString("You draft podcast dialogue in a tiki-taka style: quick, reactive back-and-forth between two hosts.\n")
	sys.WriteString("Write the CLOSING dialogue of the episode.\n")
	sys.WriteString("Rules:\n")
	sys.WriteString("- Mark each line with \"A:\" or \"B:\" for the two hosts.\n")
	sys.WriteString("- Recap the key takeaways and end warmly.\n")
	sys.WriteString("- No stage directions, dialogue only.\n")

	var user strings.Builder
	fmt.Fprintf(&user, "Closing block %q: %s\n", ft.Title, ft.Description)
	user.WriteString("Key takeaways:\n")
	for _, t := range ft.KeyTakeaways {
		user.WriteString("- " + t + "\n")
	}
	if len(covered) > 0 {
		user.WriteString("Sections already covered:\n")
		for _, title := range covered {
			user.WriteString("- " + title + "\n")
		}
	}
	writeSourceExcerpt(&user, sourceContent)

	return []domain.Message{
		{Role: "system", Content: sys.String()},
		{Role: "user", Content: user.String()},
	}
}

// BuildCompilePrompt renders the compilation messages that merge every drafted
// section script into one continuous two-host script. When plainJSON is set
// the prompt carries an inline JSON-shape example instead of relying on
// structured output.
func (b *PromptBuilder) BuildCompilePrompt(outline *domain.PodcastOutline, plainJSON bool) []domain.Message {
	var sys strings.Builder
	sys.WriteString("You are a podcast script editor merging drafted section dialogues into one final script.\n")
	sys.WriteString("Rules:\n")
	fmt.Fprintf(&sys, "- Speaker \"A\" is %s and speaker \"B\" is %s; use those names in every line's speaker field.\n", b.hostA, b.hostB)
	sys.WriteString("- Preserve EVERY exchange from the drafted sections in their original order. You may add transitions between sections but never drop dialogue.\n")
	sys.WriteString("- Attach a short voice-style instruction to every line (for example \"warm and curious\", \"energetic\").\n")
	if plainJSON {
		sys.WriteString("\nRespond with valid JSON only, exactly this shape:\n")
		sys.WriteString(compiledShapeExample)
	}

	var user strings.Builder
	fmt.Fprintf(&user, "Episode: %s\n%s\nEstimated duration: %s\n\n",
		outline.Overview.Title, outline.Overview.Description, outline.Overview.TotalDuration)
	for i, section := range outline.Sections {
		fmt.Fprintf(&user, "=== Section %d: %s ===\n%s\n\n", i+1, section.Title, section.Script)
	}
	fmt.Fprintf(&user, "=== Final thoughts: %s ===\n%s\n", outline.FinalThoughts.Title, outline.FinalThoughts.Script)

	return []domain.Message{
		{Role: "system", Content: sys.String()},
		{Role: "user", Content: user.String()},
	}
}

const compiledShapeExample = `{
  "podcast": {
    "title": "...",
    "description": "...",
    "estimatedDuration": "12-15 minutes",
    "speakers": {"A": "Rachel", "B": "Mike"},
    "script": [{"speaker": "Rachel", "text": "...", "instruction": "warm and curious"}]
  }
}`

func writeSearchContext(sb *strings.Builder, responses []domain.SearchResponse) {
	if len(responses) == 0 {
		return
	}
	sb.WriteString("\nBackground research:\n")
	for _, resp := range responses {
		if resp.Answer != "" {
			fmt.Fprintf(sb, "- [%s] %s\n", resp.Query, resp.Answer)
		}
		for _, r := range resp.Results {
			fmt.Fprintf(sb, "- %s: %s\n", r.Title, r.Content)
		}
	}
}

func writeSourceExcerpt(sb *strings.Builder, content string) {
	excerpt := content
	if len(excerpt) > maxSourceChars {
		excerpt = excerpt[:maxSourceChars]
	}
	if strings.TrimSpace(excerpt) == "" {
		return
	}
	sb.WriteString("\nOriginal content excerpt:\n")
	sb.WriteString(excerpt)
	sb.WriteString("\n")
}

// OutlineResponseFormat is the structured-output schema descriptor for the
// outline stage, passed through to the chat endpoint verbatim.
func OutlineResponseFormat() map[string]interface{} {
	section := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"id":          map[string]interface{}{"type": "string"},
			"title":       map[string]interface{}{"type": "string"},
			"description": map[string]interface{}{"type": "string"},
			"duration":    map[string]interface{}{"type": "string"},
			"keyPoints": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
		"required": []string{"id", "title", "description", "duration", "keyPoints"},
	}
	finalThoughts := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"id":          map[string]interface{}{"type": "string"},
			"title":       map[string]interface{}{"type": "string"},
			"description": map[string]interface{}{"type": "string"},
			"duration":    map[string]interface{}{"type": "string"},
			"keyTakeaways": map[string]interface{}{
				"type":  "array",
				"items": map[string]interface{}{"type": "string"},
			},
		},
		"required": []string{"title", "description", "keyTakeaways"},
	}
	return jsonSchemaFormat("podcast_outline", map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"overview": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title":          map[string]interface{}{"type": "string"},
					"description":    map[string]interface{}{"type": "string"},
					"totalDuration":  map[string]interface{}{"type": "string"},
					"targetAudience": map[string]interface{}{"type": "string"},
					"tone":           map[string]interface{}{"type": "string"},
				},
				"required": []string{"title", "description", "totalDuration", "targetAudience", "tone"},
			},
			"sections": map[string]interface{}{
				"type":  "array",
				"items": section,
			},
			"finalThoughts": finalThoughts,
		},
		"required": []string{"overview", "sections", "finalThoughts"},
	})
}

// CompiledScriptResponseFormat is the structured-output schema descriptor for
// the compilation stage.
func CompiledScriptResponseFormat() map[string]interface{} {
	line := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"speaker":     map[string]interface{}{"type": "string"},
			"text":        map[string]interface{}{"type": "string"},
			"instruction": map[string]interface{}{"type": "string"},
		},
		"required": []string{"speaker", "text", "instruction"},
	}
	return jsonSchemaFormat("compiled_script", map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"podcast": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title":             map[string]interface{}{"type": "string"},
					"description":       map[string]interface{}{"type": "string"},
					"estimatedDuration": map[string]interface{}{"type": "string"},
					"speakers": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"A": map[string]interface{}{"type": "string"},
							"B": map[string]interface{}{"type": "string"},
						},
						"required": []string{"A", "B"},
					},
					"script": map[string]interface{}{
						"type":  "array",
						"items": line,
					},
				},
				"required": []string{"title", "description", "estimatedDuration", "speakers", "script"},
			},
		},
		"required": []string{"podcast"},
	})
}

func jsonSchemaFormat(name string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type": "json_schema",
		"json_schema": map[string]interface{}{
			"name":   name,
			"schema": schema,
		},
	}
}
