package models

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organizationId"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	IsActive       bool      `json:"isActive"`
}

type CreateMessageRequest struct {
	Title   string `json:"title" validate:"notblank,min=3,max=200"`
	Content string `json:"content" validate:"notblank,min=10,max=1000"`
}

type UpdateMessageRequest struct {
	Title   string `json:"title" validate:"notblank,min=3,max=200"`
	Content string `json:"content" validate:"notblank,min=10,max=1000"`
}
