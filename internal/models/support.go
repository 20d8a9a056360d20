package models

// SupportMessage represents a support_messages table row.
type SupportMessage struct {
	MessageID    string `db:"message_id"` // Primary Key (e.g., UUID)
	UserID       string `db:"user_id"`
	Body         string `db:"body"`
	IsAdminReply bool   `db:"is_admin_reply"`
	IsRead       bool   `db:"is_read"`
	AuditFields
}
