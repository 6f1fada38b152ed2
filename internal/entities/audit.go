package entities

import "time"

type AuthAction string

const (
	AuthActionRegister       AuthAction = "register"
	AuthActionLogin          AuthAction = "login"
	AuthActionLogout         AuthAction = "logout"
	AuthActionPasswordChange AuthAction = "password_change"
	AuthActionDelete         AuthAction = "delete"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuthEvent records the outcome of an authentication-related operation.
type AuthEvent struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    string      `gorm:"index;size:36" json:"user_id"`
	Username  string      `gorm:"size:64" json:"username"`
	Action    AuthAction  `gorm:"index;size:50" json:"action"`
	Status    AuditStatus `gorm:"size:20" json:"status"`
	IPAddress string      `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent string      `gorm:"size:500" json:"user_agent,omitempty"`
	ErrorMsg  string      `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt time.Time   `gorm:"index" json:"created_at"`
}

func (AuthEvent) TableName() string {
	return "auth_events"
}
