package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoockh/videoinsight/internal/models"
)

func msg(sender, text string) models.ChatMessage {
	return models.ChatMessage{Sender: sender, Text: text}
}

func TestReduceHistoryDropsSystemMessages(t *testing.T) {
	full := []models.ChatMessage{
		msg(models.SenderSystem, "video uploaded"),
		msg(models.SenderUser, "what happens?"),
		msg(models.SenderAI, "a cat runs across the yard"),
		msg(models.SenderSystem, "analysis complete"),
	}

	out := ReduceHistory(full)
	require.Len(t, out, 2)
	assert.Equal(t, "user", out[0].Role)
	assert.Equal(t, "what happens?", out[0].Parts[0].Text)
	assert.Equal(t, "model", out[1].Role)
	assert.Equal(t, "a cat runs across the yard", out[1].Parts[0].Text)
}

func TestReduceHistoryKeepsLastFiveAfterFiltering(t *testing.T) {
	full := []models.ChatMessage{
		msg(models.SenderUser, "m1"),
		msg(models.SenderAI, "m2"),
		msg(models.SenderSystem, "sys1"),
		msg(models.SenderUser, "m3"),
		msg(models.SenderAI, "m4"),
		msg(models.SenderUser, "m5"),
		msg(models.SenderSystem, "sys2"),
		msg(models.SenderAI, "m6"),
		msg(models.SenderUser, "m7"),
	}

	out := ReduceHistory(full)
	require.Len(t, out, 5)

	wantTexts := []string{"m3", "m4", "m5", "m6", "m7"}
	wantRoles := []string{"user", "model", "user", "model", "user"}
	for i := range out {
		require.Len(t, out[i].Parts, 1)
		assert.Equal(t, wantTexts[i], out[i].Parts[0].Text)
		assert.Equal(t, wantRoles[i], out[i].Role)
	}
}

func TestReduceHistoryMapsUnknownSendersToModel(t *testing.T) {
	out := ReduceHistory([]models.ChatMessage{
		msg("error", "something went wrong"),
		msg("assistant", "hello"),
	})
	require.Len(t, out, 2)
	assert.Equal(t, "model", out[0].Role)
	assert.Equal(t, "model", out[1].Role)
}

func TestReduceHistoryLeavesInputIntact(t *testing.T) {
	full := []models.ChatMessage{
		msg(models.SenderSystem, "sys"),
		msg(models.SenderUser, "q1"),
		msg(models.SenderAI, "a1"),
	}
	snapshot := make([]models.ChatMessage, len(full))
	copy(snapshot, full)

	first := ReduceHistory(full)
	second := ReduceHistory(full)

	assert.Equal(t, snapshot, full)
	assert.Equal(t, first, second)
}

func TestReduceHistoryEmptyLog(t *testing.T) {
	assert.Empty(t, ReduceHistory(nil))
	assert.Empty(t, ReduceHistory([]models.ChatMessage{msg(models.SenderSystem, "only noise")}))
}
