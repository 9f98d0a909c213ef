package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movein_messages_sent_total",
			Help: "Total number of messages sent",
		},
	)

	messagesReadTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movein_messages_read_total",
			Help: "Total number of messages flipped to read",
		},
	)

	listingsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movein_listings_created_total",
			Help: "Total number of listings created",
		},
	)

	reviewsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movein_reviews_created_total",
			Help: "Total number of reviews created",
		},
	)

	// signups by method: password or google
	signupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movein_signups_total",
			Help: "Total number of accounts created by sign-up method",
		},
		[]string{"method"},
	)
)
