package user

import "time"

const (
	EventUserRegistered       = "UserRegistered"
	EventUserLoggedIn         = "UserLoggedIn"
	EventUserLoggedOut        = "UserLoggedOut"
	EventUserProfileUpdated   = "UserProfileUpdated"
	EventUserPasswordChanged  = "UserPasswordChanged"
	EventUserVIPGranted       = "UserVIPGranted"
	EventUserVIPRevoked       = "UserVIPRevoked"
	EventUserAddedToGroup     = "UserAddedToGroup"
	EventUserRemovedFromGroup = "UserRemovedFromGroup"
	EventUserDeactivated      = "UserDeactivated"
)

type UserRegistered struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Location     string    `json:"location,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

type UserLoggedIn struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	LoggedAt  time.Time `json:"logged_at"`
}

type UserLoggedOut struct {
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	LoggedAt  time.Time `json:"logged_at"`
}

type UserProfileUpdated struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserPasswordChanged struct {
	UserID       string    `json:"user_id"`
	PasswordHash string    `json:"password_hash"`
	ChangedAt    time.Time `json:"changed_at"`
}

// UserVIPGranted marks the account as VIP for promotion eligibility
type UserVIPGranted struct {
	UserID    string    `json:"user_id"`
	GrantedAt time.Time `json:"granted_at"`
}

type UserVIPRevoked struct {
	UserID    string    `json:"user_id"`
	RevokedAt time.Time `json:"revoked_at"`
}

// UserAddedToGroup puts the account in a customer group that
// promotions can target
type UserAddedToGroup struct {
	UserID  string    `json:"user_id"`
	GroupID string    `json:"group_id"`
	AddedAt time.Time `json:"added_at"`
}

type UserRemovedFromGroup struct {
	UserID    string    `json:"user_id"`
	GroupID   string    `json:"group_id"`
	RemovedAt time.Time `json:"removed_at"`
}

type UserDeactivated struct {
	UserID        string    `json:"user_id"`
	DeactivatedAt time.Time `json:"deactivated_at"`
}
