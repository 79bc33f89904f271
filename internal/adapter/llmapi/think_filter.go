package llmapi

import "strings"

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// thinkFilter suppresses <think>...</think> spans in a token stream where the
// tags may straddle network chunks. Content before an open tag is flushed
// immediately; content inside a span is withheld and discarded once the close
// tag arrives. A span left unclosed at end of stream was not a well-formed
// tag pair, so its withheld content is released by Flush. No emitted text
// ever contains a partial open tag.
type thinkFilter struct {
	pending  strings.Builder // text not yet classified (may end in a partial tag)
	withheld strings.Builder // text inside a possibly-unclosed think span
	inThink  bool
}

// Feed processes one incoming chunk and returns the text safe to emit now.
func (f *thinkFilter) Feed(chunk string) string {
	var out strings.Builder
	f.pending.WriteString(chunk)

	for {
		buf := f.pending.String()
		if f.inThink {
			if idx := strings.Index(buf, thinkClose); idx >= 0 {
				// Well-formed span completed: drop everything withheld.
				f.withheld.Reset()
				f.inThink = false
				f.pending.Reset()
				f.pending.WriteString(buf[idx+len(thinkClose):])
				continue
			}
			// Keep only the suffix that could still become the close tag.
			keep := partialSuffix(buf, thinkClose)
			f.withheld.WriteString(buf[:len(buf)-len(keep)])
			f.pending.Reset()
			f.pending.WriteString(keep)
			return out.String()
		}

		if idx := strings.Index(buf, thinkOpen); idx >= 0 {
			out.WriteString(buf[:idx])
			f.inThink = true
			f.pending.Reset()
			f.pending.WriteString(buf[idx+len(thinkOpen):])
			continue
		}

		// Emit everything except a trailing partial open tag.
		keep := partialSuffix(buf, thinkOpen)
		out.WriteString(buf[:len(buf)-len(keep)])
		f.pending.Reset()
		f.pending.WriteString(keep)
		return out.String()
	}
}

// Flush returns whatever remains at end of stream: a partial tag that never
// completed, plus any content withheld behind an unclosed open tag.
func (f *thinkFilter) Flush() string {
	var out strings.Builder
	if f.inThink {
		out.WriteString(f.withheld.String())
		out.WriteString(f.pending.String())
	} else {
		out.WriteString(f.pending.String())
	}
	f.withheld.Reset()
	f.pending.Reset()
	f.inThink = false
	return out.String()
}

// partialSuffix returns the longest proper suffix of s that is a prefix of tag.
func partialSuffix(s, tag string) string {
	max := len(tag) - 1
	if max > len(s) {
		max = len(s)
	}
	for n := max; n > 0; n-- {
		if strings.HasPrefix(tag, s[len(s)-n:]) {
			return s[len(s)-n:]
		}
	}
	return ""
}
