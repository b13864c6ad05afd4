package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriberStatus — состояние подписки на рассылку проекта.
type SubscriberStatus string

const (
	SubscriberSubscribed   SubscriberStatus = "subscribed"
	SubscriberUnsubscribed SubscriberStatus = "unsubscribed"
	SubscriberPending      SubscriberStatus = "pending"
	SubscriberBounced      SubscriberStatus = "bounced"
)

// Subscriber — подписчик рассылки; пара (ProjectID, Email) уникальна.
type Subscriber struct {
	ID        uuid.UUID
	ProjectID uuid.UUID
	Email     string
	Name      string
	Status    SubscriberStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
