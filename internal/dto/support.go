package dto

import (
	"time"

	"github.com/qodirovs/finance_tracker_app/internal/core/domain"
)

// PostSupportMessageRequest appends a message to the support thread.
type PostSupportMessageRequest struct {
	Body string `json:"body" binding:"required,max=4000"`
}

// SupportMessageResponse defines the data returned for one thread entry.
type SupportMessageResponse struct {
	MessageID    string    `json:"messageID"`
	Body         string    `json:"body"`
	IsAdminReply bool      `json:"isAdminReply"`
	IsRead       bool      `json:"isRead"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SupportThreadResponse wraps a page of the thread with the next-page token.
type SupportThreadResponse struct {
	Messages  []SupportMessageResponse `json:"messages"`
	NextToken *string                  `json:"nextToken,omitempty"`
}

// UnreadCountResponse reports unread admin replies for the user.
type UnreadCountResponse struct {
	Unread int `json:"unread"`
}

// ToSupportMessageResponse converts a domain.SupportMessage to its DTO
func ToSupportMessageResponse(m *domain.SupportMessage) SupportMessageResponse {
	return SupportMessageResponse{
		MessageID:    m.MessageID,
		Body:         m.Body,
		IsAdminReply: m.IsAdminReply,
		IsRead:       m.IsRead,
		CreatedAt:    m.CreatedAt,
	}
}

// ToSupportThreadResponse converts a page of messages to the thread DTO
func ToSupportThreadResponse(messages []domain.SupportMessage, nextToken *string) SupportThreadResponse {
	res := SupportThreadResponse{
		Messages:  make([]SupportMessageResponse, len(messages)),
		NextToken: nextToken,
	}
	for i := range messages {
		res.Messages[i] = ToSupportMessageResponse(&messages[i])
	}
	return res
}
