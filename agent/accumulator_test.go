package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulate_ConcatenatesAdjacentText(t *testing.T) {
	existing := Message{Role: RoleModel}
	existing = Accumulate(existing, Message{Parts: []Part{TextPart{Text: "Hel"}}})
	existing = Accumulate(existing, Message{Parts: []Part{TextPart{Text: "lo"}}})

	assert.Equal(t, "Hello", existing.Text())
	assert.Len(t, existing.Parts, 1)
}

func TestAccumulate_MergesToolCallByID(t *testing.T) {
	existing := Message{Role: RoleModel}
	existing = Accumulate(existing, Message{Parts: []Part{ToolCallPart{ID: "call_1", Name: "search"}}})
	existing = Accumulate(existing, Message{Parts: []Part{ToolCallPart{ID: "call_1", Arguments: map[string]any{"q": "go"}}}})

	calls := existing.ToolCalls()
	assert.Len(t, calls, 1)
	assert.Equal(t, "search", calls[0].Name)
	assert.Equal(t, "go", calls[0].Arguments["q"])
}

func TestAccumulate_AppendsToolCallWithoutMatchingID(t *testing.T) {
	existing := Message{Role: RoleModel}
	existing = Accumulate(existing, Message{Parts: []Part{ToolCallPart{ID: "call_1", Name: "search"}}})
	existing = Accumulate(existing, Message{Parts: []Part{ToolCallPart{ID: "call_2", Name: "weather"}}})

	assert.Len(t, existing.ToolCalls(), 2)
}

func TestAccumulate_AppendsOtherPartKindsUnchanged(t *testing.T) {
	existing := Message{Role: RoleModel}
	link := LinkPart{URI: "https://example.com/file.pdf"}
	existing = Accumulate(existing, Message{Parts: []Part{link}})

	assert.Equal(t, []Part{link}, existing.Parts)
}

func TestConsolidate_CollapsesTextAndDropsEmpty(t *testing.T) {
	msg := Message{
		Role: RoleModel,
		Parts: []Part{
			TextPart{Text: "a"},
			ToolCallPart{ID: "call_1", Name: "search"},
			TextPart{Text: "b"},
			TextPart{Text: ""},
		},
	}
	out := Consolidate(msg)

	assert.Equal(t, "ab", out.Text())
	assert.Len(t, out.ToolCalls(), 1)
}

func TestConsolidate_Idempotent(t *testing.T) {
	msg := Message{Role: RoleModel, Parts: []Part{TextPart{Text: "hello"}, ToolCallPart{ID: "c1", Name: "t"}}}
	once := Consolidate(msg)
	twice := Consolidate(once)

	assert.Equal(t, once.Text(), twice.Text())
	assert.Equal(t, once.ToolCalls(), twice.ToolCalls())
}

func TestValidateAlternation_AcceptsSystemUserModel(t *testing.T) {
	history := []Message{System("sp"), User("hi"), Model("hello")}
	assert.NoError(t, ValidateAlternation(history))
}

func TestValidateAlternation_RejectsConsecutiveSameRole(t *testing.T) {
	history := []Message{User("hi"), User("again")}
	assert.Error(t, ValidateAlternation(history))
}

func TestValidateAlternation_RejectsSystemNotFirst(t *testing.T) {
	history := []Message{User("hi"), System("late")}
	assert.Error(t, ValidateAlternation(history))
}
