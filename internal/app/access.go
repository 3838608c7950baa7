package app

import "github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"

// CanAccess reports whether userID is a member of channel. Membership is the
// only authorization rule for channel-scoped reads and writes.
func CanAccess(channel *model.Channel, userID string) bool {
	if channel == nil || userID == "" {
		return false
	}
	for _, member := range channel.Members {
		if member.ID == userID {
			return true
		}
	}
	return false
}
