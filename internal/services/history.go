package services

import (
	"github.com/yoockh/videoinsight/internal/models"
	"github.com/yoockh/videoinsight/internal/providers/gemini"
)

// historyWindow caps how many log entries reach the provider on each chat
// turn. Fixed bound, not configurable per call.
const historyWindow = 5

const (
	roleUser  = "user"
	roleModel = "model"
)

// ReduceHistory derives the provider context from the full session log:
// informational "system" entries are dropped, only the most recent
// historyWindow entries survive in their original order, and every sender
// other than "user" collapses onto the "model" role.
func ReduceHistory(full []models.ChatMessage) []gemini.Content {
	kept := make([]models.ChatMessage, 0, len(full))
	for _, m := range full {
		if m.Sender == models.SenderSystem {
			continue
		}
		kept = append(kept, m)
	}
	if len(kept) > historyWindow {
		kept = kept[len(kept)-historyWindow:]
	}

	out := make([]gemini.Content, 0, len(kept))
	for _, m := range kept {
		role := roleModel
		if m.Sender == models.SenderUser {
			role = roleUser
		}
		out = append(out, gemini.Content{Role: role, Parts: []gemini.Part{{Text: m.Text}}})
	}
	return out
}
