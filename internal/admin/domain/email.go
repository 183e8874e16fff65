package domain

import "time"

type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "PENDING"
	DeliverySent    DeliveryStatus = "SENT"
	DeliveryFailed  DeliveryStatus = "FAILED"
)

func (s DeliveryStatus) Valid() bool {
	return s == DeliveryPending || s == DeliverySent || s == DeliveryFailed
}

// EmailDelivery records one attempt to hand an email to the provider.
type EmailDelivery struct {
	ID                string
	Recipient         string
	Subject           string
	Template          string
	Status            DeliveryStatus
	ProviderMessageID string
	Error             string
	CreatedAt         time.Time
	SentAt            *time.Time
}
