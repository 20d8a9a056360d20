package domain

// SupportMessage is one entry in a user's support thread. Admin replies set
// IsAdminReply; IsRead tracks whether the receiving side has seen the message.
type SupportMessage struct {
	MessageID    string `json:"messageID"` // Primary Key (e.g., UUID)
	UserID       string `json:"userID"`    // Thread owner, also for admin replies
	Body         string `json:"body"`
	IsAdminReply bool   `json:"isAdminReply"`
	IsRead       bool   `json:"isRead"`
	AuditFields
}
