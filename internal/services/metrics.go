package services

import "github.com/prometheus/client_golang/prometheus"

var (
	loginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_login_attempts_total",
			Help: "Login attempts by outcome (success, invalid, error).",
		},
		[]string{"outcome"},
	)

	registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_registrations_total",
			Help: "Registration attempts by outcome (success, conflict, invalid, error).",
		},
		[]string{"outcome"},
	)

	directChatsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_direct_chats_created_total",
		Help: "Direct chats created.",
	})

	messagesPosted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_messages_posted_total",
		Help: "Messages stored, including first messages of new chats.",
	})
)

func init() {
	prometheus.MustRegister(loginAttempts, registrations, directChatsCreated, messagesPosted)
}
