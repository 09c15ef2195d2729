package graph

import (
	"strings"

	"github.com/hupe1980/askdocs/message"
	"github.com/hupe1980/askdocs/tool"
)

// FallbackAnswer is returned when the turn produced no usable assistant text.
const FallbackAnswer = "Sorry, I could not generate an answer. Please try rephrasing your question."

// finalize derives the user-facing answer and the turn-scoped citations from
// the accumulated history.
func (g *Graph) finalize(state *State) {
	state.Answer = extractAnswer(state.History)
	state.Sources = extractCitations(state.History, state.Answer)
	g.logger.Info("graph.finalized", "sources", len(state.Sources))
}

// extractAnswer returns the text of the last tool-free assistant message.
// Assistant messages that carry tool calls are intermediate reasoning, not
// answers.
func extractAnswer(hist []message.Message) string {
	for i := len(hist) - 1; i >= 0; i-- {
		a, ok := hist[i].(message.Assistant)
		if !ok || a.HasToolCalls() {
			continue
		}
		if strings.TrimSpace(a.Text) == "" {
			continue
		}
		return a.Text
	}
	return FallbackAnswer
}

// extractCitations scans tool results backward from the end of the history,
// stopping at the last human message so only this turn's retrievals are
// considered. A document is admitted only when its normalized file name
// actually appears in the answer text; the model is instructed to cite file
// names, so absence means the document was not used.
func extractCitations(hist []message.Message, answer string) []Citation {
	citations := []Citation{}
	answerLower := strings.ToLower(answer)
	seen := map[citationKey]struct{}{}

	for i := len(hist) - 1; i >= 0; i-- {
		if _, ok := hist[i].(message.Human); ok {
			break
		}
		tr, ok := hist[i].(message.ToolResult)
		if !ok {
			continue
		}
		payload := tool.DecodePayload(tr.Content)
		if payload.Error != "" {
			continue
		}
		for _, doc := range payload.Value {
			name := cleanDocumentName(doc.Source)
			if name == "" {
				name = cleanDocumentName(doc.Title)
			}
			if name == "" {
				continue
			}
			if !strings.Contains(answerLower, strings.ToLower(name)) {
				continue
			}
			key := citationKey{name: strings.ToLower(name), page: pageKey(doc.Page)}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			url := doc.URL
			if url == "" {
				url = "#"
			}
			citations = append(citations, Citation{
				Title: name + ".pdf",
				Page:  doc.Page,
				URL:   url,
			})
		}
	}
	return citations
}

type citationKey struct {
	name string
	page int
}

func pageKey(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}

// cleanDocumentName reduces a source path to a bare document name: the last
// path segment with any .pdf or .docx extension removed.
func cleanDocumentName(source string) string {
	name := strings.TrimSpace(source)
	if name == "" {
		return ""
	}
	if idx := strings.LastIndexAny(name, "/\\"); idx >= 0 {
		name = name[idx+1:]
	}
	lower := strings.ToLower(name)
	for _, ext := range []string{".pdf", ".docx"} {
		if strings.HasSuffix(lower, ext) {
			name = name[:len(name)-len(ext)]
			break
		}
	}
	return strings.TrimSpace(name)
}
