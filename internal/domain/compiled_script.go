package domain

// Host identities every compiled script is normalized to. Generic "A:"/"B:"
// markers in drafted dialogue map onto these two speakers.
const (
	HostA = "Rachel"
	HostB = "Mike"
)

// CompiledScript is the final artifact: one continuous two-host dialogue with
// a voice-style instruction attached to every line.
type CompiledScript struct {
	Podcast CompiledPodcast `json:"podcast"`
}

// CompiledPodcast carries episode metadata plus the ordered dialogue.
type CompiledPodcast struct {
	Title             string       `json:"title"`
	Description       string       `json:"description"`
	EstimatedDuration string       `json:"estimatedDuration"`
	Speakers          Speakers     `json:"speakers"`
	Script            []ScriptLine `json:"script"`
}

// Speakers names the two canonical hosts.
type Speakers struct {
	A string `json:"A"`
	B string `json:"B"`
}

// ScriptLine is one utterance. Speaker is always one of the two host names;
// Instruction is the TTS voice-style hint for the line.
type ScriptLine struct {
	Speaker     string `json:"speaker"`
	Text        string `json:"text"`
	Instruction string `json:"instruction"`
}

// TotalTextLength sums the dialogue text across all lines. Used to check the
// content-preservation invariant against the drafted section scripts.
func (s *CompiledScript) TotalTextLength() int {
	total := 0
	for _, line := range s.Podcast.Script {
		total += len(line.Text)
	}
	return total
}
