package model

// All lists every table the service migrates at startup.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Credential{},
		&Channel{},
		&ChannelMember{},
		&Message{},
		&AIChatRecord{},
	}
}
