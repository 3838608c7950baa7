package app

const (
	DailyAIChatLimit     = 3
	MaxMessageLength     = 1000
	MaxChannelNameLength = 50
	MaxDescriptionLength = 200
	DefaultHistoryLimit  = 50
)
