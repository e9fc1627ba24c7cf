package entity

import "time"

// AuditLog records a security relevant account event
type AuditLog struct {
	ID        int64
	UserID    string
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
	CreatedAt time.Time
}

const (
	AuditRegister       = "register"
	AuditLogin          = "login"
	AuditLogout         = "logout"
	AuditPasswordChange = "password_change"
	AuditPasswordReset  = "password_reset"
	AuditEmailVerified  = "email_verified"
	AuditAvatarReplace  = "avatar_replace"
	AuditAccountDelete  = "account_delete"
)
