package agent

// Accumulate folds one streamed chunk into the running accumulated message.
// Providers emit tool-call arguments as streaming JSON fragments keyed by
// call ID and text as arbitrary chunks; Accumulate is the only place that
// knows how to stitch them back together without losing ordering.
//
//   - TextPart: concatenated into the last existing TextPart when adjacent,
//     otherwise appended as a new part.
//   - ToolCallPart: merged into the existing call sharing its non-empty ID
//     (new Name/Arguments win when non-empty, otherwise the existing value
//     is kept); absent a matching ID, appended as a new call.
//   - every other part kind: appended unchanged.
func Accumulate(existing Message, chunk Message) Message {
	for _, part := range chunk.Parts {
		switch p := part.(type) {
		case TextPart:
			existing.Parts = accumulateText(existing.Parts, p)
		case ToolCallPart:
			existing.Parts = accumulateToolCall(existing.Parts, p)
		default:
			existing.Parts = append(existing.Parts, part)
		}
	}
	return existing
}

func accumulateText(parts []Part, next TextPart) []Part {
	if len(parts) > 0 {
		if last, ok := parts[len(parts)-1].(TextPart); ok {
			parts[len(parts)-1] = TextPart{Text: last.Text + next.Text}
			return parts
		}
	}
	return append(parts, next)
}

func accumulateToolCall(parts []Part, next ToolCallPart) []Part {
	if next.ID != "" {
		for i, part := range parts {
			call, ok := part.(ToolCallPart)
			if !ok || call.ID != next.ID {
				continue
			}
			if next.Name != "" {
				call.Name = next.Name
			}
			if len(next.Arguments) > 0 {
				call.Arguments = next.Arguments
			}
			parts[i] = call
			return parts
		}
	}
	return append(parts, next)
}

// Consolidate performs the final pass over an accumulated message: all
// TextParts (in order) collapse into a single TextPart, non-text parts keep
// their original relative order, and any empty TextPart is dropped.
func Consolidate(accumulated Message) Message {
	var text string
	var hasText bool
	var rest []Part
	for _, part := range accumulated.Parts {
		if t, ok := part.(TextPart); ok {
			text += t.Text
			hasText = true
			continue
		}
		rest = append(rest, part)
	}
	out := Message{Role: accumulated.Role, Metadata: accumulated.Metadata}
	if hasText && text != "" {
		out.Parts = append(out.Parts, TextPart{Text: text})
	}
	out.Parts = append(out.Parts, rest...)
	return out
}
