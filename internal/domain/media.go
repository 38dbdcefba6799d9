package domain

import "time"

// Media is an image uploaded by an admin for use on the site.
type Media struct {
	MediaID    string    `json:"id" dynamodbav:"media_id"`
	Object     string    `json:"object" dynamodbav:"object"`
	URL        string    `json:"url" dynamodbav:"url"`
	Name       string    `json:"name" dynamodbav:"name"`
	Type       string    `json:"type" dynamodbav:"type"`
	Size       int64     `json:"size" dynamodbav:"size"`
	Hash       string    `json:"hash" dynamodbav:"hash"`
	UploadedBy string    `json:"uploadedBy" dynamodbav:"uploaded_by"`
	CreatedAt  time.Time `json:"createdAt" dynamodbav:"created_at"`
}
