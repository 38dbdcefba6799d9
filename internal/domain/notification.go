package domain

import "time"

// Notification is a site-wide announcement managed by admins.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	Title          string    `json:"title" dynamodbav:"title"`
	Message        string    `json:"message" dynamodbav:"message"`
	Link           *string   `json:"link,omitempty" dynamodbav:"link"`
	Active         bool      `json:"active" dynamodbav:"active"`
	CreatedBy      string    `json:"createdBy" dynamodbav:"created_by"`
	CreatedAt      time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

type CreateNotificationRequest struct {
	Title   string  `json:"title" validate:"required,max=120"`
	Message string  `json:"message" validate:"required,max=2000"`
	Link    *string `json:"link" validate:"omitempty,url"`
}
