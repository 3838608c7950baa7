package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChannelsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamchat",
		Name:      "channels_created_total",
		Help:      "Channels created, by channel type.",
	}, []string{"type"})

	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "teamchat",
		Name:      "messages_sent_total",
		Help:      "Messages appended to any channel.",
	})

	AccessDenied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "teamchat",
		Name:      "channel_access_denied_total",
		Help:      "Channel-scoped requests rejected because the caller is not a member.",
	})

	HistoryCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamchat",
		Name:      "history_cache_lookups_total",
		Help:      "Message history cache lookups, by result.",
	}, []string{"result"})

	AIChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "teamchat",
		Name:      "ai_chat_requests_total",
		Help:      "AI assistant requests, by outcome.",
	}, []string{"outcome"})
)
