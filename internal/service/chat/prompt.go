package chat

import (
	"fmt"
	"strings"

	"github.com/sandevgo/docqa/internal/core"
)

const systemInstructions = `You are a helpful assistant that answers questions using only the provided document context.

Rules:
- Answer based solely on the context below. Do not use outside knowledge.
- If the context does not contain the answer, say so plainly instead of guessing.
- When citing facts, mention which document they come from.
- Keep answers concise and factual.`

const noContextInstructions = `You are a helpful assistant. No relevant documents were found for this question. Tell the user that nothing in the uploaded documents answers their question, and suggest they rephrase or upload relevant documents.`

// buildSystemPrompt assembles the system message from retrieved chunks. Each
// chunk is labelled with its source document; the combined context is capped
// at maxContextChars, cutting at a block boundary where possible.
func buildSystemPrompt(results []core.SearchResult, maxContextChars int) core.Message {
	if len(results) == 0 {
		return core.Message{Role: core.RoleSystem, Content: noContextInstructions}
	}

	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("[Document: %s]\n%s", r.DocumentTitle, r.Content))
	}

	context := strings.Join(blocks, "\n\n")
	if maxContextChars > 0 && len([]rune(context)) > maxContextChars {
		context = truncateContext(blocks, maxContextChars)
	}

	return core.Message{
		Role:    core.RoleSystem,
		Content: systemInstructions + "\n\nContext:\n\n" + context,
	}
}

// truncateContext keeps whole blocks while they fit, then hard-truncates the
// first block that overflows.
func truncateContext(blocks []string, maxChars int) string {
	var sb strings.Builder
	used := 0

	for _, block := range blocks {
		blockLen := len([]rune(block))
		sep := 0
		if sb.Len() > 0 {
			sep = 2
		}

		if used+sep+blockLen > maxChars {
			remaining := maxChars - used - sep
			if remaining > 0 {
				if sep > 0 {
					sb.WriteString("\n\n")
				}
				runes := []rune(block)
				sb.WriteString(strings.TrimSpace(string(runes[:remaining])))
			}
			break
		}

		if sep > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(block)
		used += sep + blockLen
	}

	return sb.String()
}
