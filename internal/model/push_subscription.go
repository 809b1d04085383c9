package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Topics []*AlertTopic `gorm:"many2many:subscription_topic_mapping;"`
}

// AlertTopic is a class of alert a subscription can opt into.
type AlertTopic struct {
	Name string `gorm:"primaryKey;size:64"`
}

const (
	TopicOccupancyHigh   = "occupancy_high"
	TopicOccupancyNormal = "occupancy_normal"
)

// KnownTopics lists the topics the alerting pipeline emits.
var KnownTopics = []string{TopicOccupancyHigh, TopicOccupancyNormal}
