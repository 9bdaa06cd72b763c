package explain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiHistory(t *testing.T) {
	history := []Turn{
		{Role: RoleAssistant, Text: "欢迎来到 GPU Nexus。"},
		{Role: RoleUser, Text: "什么是 SM？"},
		{Role: RoleAssistant, Text: "流式多处理器。"},
	}

	got := geminiHistory(history)
	require.Len(t, got, 2)
	assert.Equal(t, "user", got[0].Role)
	assert.Equal(t, "什么是 SM？", got[0].Parts[0].Text)
	assert.Equal(t, "model", got[1].Role)
}

func TestGeminiHistoryEmpty(t *testing.T) {
	assert.Empty(t, geminiHistory(nil))
	assert.Empty(t, geminiHistory([]Turn{{Role: RoleAssistant, Text: "hi"}}))
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), GeminiConfig{})
	assert.Error(t, err)
}
