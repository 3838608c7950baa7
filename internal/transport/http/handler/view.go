package handler

import (
	"time"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"
)

// Views are the wire shapes. Member and sender summaries never carry email.

type userView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type userSummaryView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type channelView struct {
	ID          string            `json:"id"`
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	ChannelType string            `json:"channelType"`
	Members     []userSummaryView `json:"members"`
}

type messageView struct {
	ID        uint            `json:"id"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"createdAt"`
	Sender    userSummaryView `json:"sender"`
	ChannelID string          `json:"channelId"`
}

type aiChatRecordView struct {
	ID        uint      `json:"id"`
	Request   string    `json:"request"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserView(u *model.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email}
}

func toUserSummaries(users []model.User) []userSummaryView {
	out := make([]userSummaryView, 0, len(users))
	for _, u := range users {
		out = append(out, userSummaryView{ID: u.ID, Name: u.Name})
	}
	return out
}

func toChannelView(ch *model.Channel) channelView {
	return channelView{
		ID:          ch.ID,
		Name:        ch.Name,
		Description: ch.Description,
		ChannelType: ch.ChannelType,
		Members:     toUserSummaries(ch.Members),
	}
}

func toChannelViews(channels []model.Channel) []channelView {
	out := make([]channelView, 0, len(channels))
	for i := range channels {
		out = append(out, toChannelView(&channels[i]))
	}
	return out
}

func toMessageView(m *model.Message) messageView {
	view := messageView{
		ID:        m.ID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		Sender:    userSummaryView{ID: m.SenderID},
		ChannelID: m.ChannelID,
	}
	if m.Sender != nil {
		view.Sender.Name = m.Sender.Name
	}
	return view
}

func toMessageViews(messages []model.Message) []messageView {
	out := make([]messageView, 0, len(messages))
	for i := range messages {
		out = append(out, toMessageView(&messages[i]))
	}
	return out
}

func toAIChatRecordView(r *model.AIChatRecord) aiChatRecordView {
	return aiChatRecordView{ID: r.ID, Request: r.Request, Response: r.Response, CreatedAt: r.CreatedAt}
}

func toAIChatRecordViews(records []model.AIChatRecord) []aiChatRecordView {
	out := make([]aiChatRecordView, 0, len(records))
	for i := range records {
		out = append(out, toAIChatRecordView(&records[i]))
	}
	return out
}
