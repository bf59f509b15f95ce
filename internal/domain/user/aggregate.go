package user

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/bookshop-event-driven/internal/auth"
	"github.com/example/bookshop-event-driven/internal/domain/aggregate"
	"github.com/example/bookshop-event-driven/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "User"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("email is required")
	ErrInvalidName        = errors.New("name is required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDeactivated    = errors.New("user account is deactivated")
)

// User represents a user aggregate. VIP, Location and GroupIDs feed
// promotion eligibility checks.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Location     string    `json:"location,omitempty"`
	VIP          bool      `json:"vip"`
	GroupIDs     []string  `json:"group_ids,omitempty"`
	IsActive     bool      `json:"is_active"`
	RegisteredAt time.Time `json:"registered_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Version      int       `json:"version"`
}

func (u *User) GetID() string    { return u.ID }
func (u *User) GetVersion() int  { return u.Version }
func (u *User) SetVersion(v int) { u.Version = v }

// InGroup reports whether the user belongs to the given group
func (u *User) InGroup(groupID string) bool {
	for _, id := range u.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}

// ApplyEvent applies a single stored event to the user state
func (u *User) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventUserRegistered:
		var data UserRegistered
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		u.ID = data.UserID
		u.Email = data.Email
		u.PasswordHash = data.PasswordHash
		u.Name = data.Name
		u.Role = data.Role
		u.Location = data.Location
		u.IsActive = true
		u.RegisteredAt = data.RegisteredAt
		u.UpdatedAt = data.RegisteredAt
	case EventUserProfileUpdated:
		var data UserProfileUpdated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		u.Name = data.Name
		u.Location = data.Location
		u.UpdatedAt = data.UpdatedAt
	case EventUserPasswordChanged:
		var data UserPasswordChanged
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		u.PasswordHash = data.PasswordHash
		u.UpdatedAt = data.ChangedAt
	case EventUserVIPGranted:
		var data UserVIPGranted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		u.VIP = true
		u.UpdatedAt = data.GrantedAt
	case EventUserVIPRevoked:
		var data UserVIPRevoked
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		u.VIP = false
		u.UpdatedAt = data.RevokedAt
	case EventUserAddedToGroup:
		var data UserAddedToGroup
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if !u.InGroup(data.GroupID) {
			u.GroupIDs = append(u.GroupIDs, data.GroupID)
		}
		u.UpdatedAt = data.AddedAt
	case EventUserRemovedFromGroup:
		var data UserRemovedFromGroup
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		kept := u.GroupIDs[:0]
		for _, id := range u.GroupIDs {
			if id != data.GroupID {
				kept = append(kept, id)
			}
		}
		u.GroupIDs = kept
		u.UpdatedAt = data.RemovedAt
	case EventUserDeactivated:
		var data UserDeactivated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		u.IsActive = false
		u.UpdatedAt = data.DeactivatedAt
	}
	u.Version = event.Version
	return nil
}

// Service handles user domain operations
type Service struct {
	eventStore store.EventStoreInterface
}

// NewService creates a new user service
func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func (s *Service) load(ctx context.Context, userID string) (*User, error) {
	u, found, err := aggregate.LoadAggregate(ctx, s.eventStore, userID, func() *User {
		return &User{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Get returns the current state of a user
func (s *Service) Get(ctx context.Context, userID string) (*User, error) {
	return s.load(ctx, userID)
}

// Register creates a new user
func (s *Service) Register(ctx context.Context, email, password, name, location string) (*User, error) {
	return s.RegisterWithRole(ctx, email, password, name, location, "customer")
}

// RegisterAdmin creates a new admin user
func (s *Service) RegisterAdmin(ctx context.Context, email, password, name string) (*User, error) {
	return s.RegisterWithRole(ctx, email, password, name, "", "admin")
}

// RegisterWithRole creates a new user with a specific role
func (s *Service) RegisterWithRole(ctx context.Context, email, password, name, location, role string) (*User, error) {
	if email == "" {
		return nil, ErrInvalidEmail
	}
	if name == "" {
		return nil, ErrInvalidName
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	userID := uuid.New().String()
	now := time.Now()

	event := UserRegistered{
		UserID:       userID,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
		Location:     location,
		RegisteredAt: now,
	}

	_, err = s.eventStore.Append(ctx, userID, AggregateType, EventUserRegistered, event)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:           userID,
		Email:        email,
		Name:         name,
		Role:         role,
		Location:     location,
		IsActive:     true,
		RegisteredAt: now,
		UpdatedAt:    now,
	}, nil
}

// RecordLogin records a user login event
func (s *Service) RecordLogin(ctx context.Context, userID, sessionID, ipAddress, userAgent string) error {
	event := UserLoggedIn{
		UserID:    userID,
		SessionID: sessionID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		LoggedAt:  time.Now(),
	}

	_, err := s.eventStore.Append(ctx, userID, AggregateType, EventUserLoggedIn, event)
	return err
}

// RecordLogout records a user logout event
func (s *Service) RecordLogout(ctx context.Context, userID, sessionID string) error {
	event := UserLoggedOut{
		UserID:    userID,
		SessionID: sessionID,
		LoggedAt:  time.Now(),
	}

	_, err := s.eventStore.Append(ctx, userID, AggregateType, EventUserLoggedOut, event)
	return err
}

// UpdateProfile updates user profile information
func (s *Service) UpdateProfile(ctx context.Context, userID, name, location string) error {
	if name == "" {
		return ErrInvalidName
	}

	events := s.eventStore.GetEvents(userID)
	if len(events) == 0 {
		return ErrUserNotFound
	}

	event := UserProfileUpdated{
		UserID:    userID,
		Name:      name,
		Location:  location,
		UpdatedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, userID, AggregateType, EventUserProfileUpdated, event)
	return err
}

// ChangePassword changes user password
func (s *Service) ChangePassword(ctx context.Context, userID, newPassword string) error {
	events := s.eventStore.GetEvents(userID)
	if len(events) == 0 {
		return ErrUserNotFound
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	event := UserPasswordChanged{
		UserID:       userID,
		PasswordHash: passwordHash,
		ChangedAt:    time.Now(),
	}

	_, err = s.eventStore.Append(ctx, userID, AggregateType, EventUserPasswordChanged, event)
	return err
}

// GrantVIP marks the user as VIP
func (s *Service) GrantVIP(ctx context.Context, userID string) error {
	events := s.eventStore.GetEvents(userID)
	if len(events) == 0 {
		return ErrUserNotFound
	}

	event := UserVIPGranted{
		UserID:    userID,
		GrantedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, userID, AggregateType, EventUserVIPGranted, event)
	return err
}

// RevokeVIP removes the VIP flag
func (s *Service) RevokeVIP(ctx context.Context, userID string) error {
	events := s.eventStore.GetEvents(userID)
	if len(events) == 0 {
		return ErrUserNotFound
	}

	event := UserVIPRevoked{
		UserID:    userID,
		RevokedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, userID, AggregateType, EventUserVIPRevoked, event)
	return err
}

// AddToGroup puts the user in a customer group
func (s *Service) AddToGroup(ctx context.Context, userID, groupID string) error {
	events := s.eventStore.GetEvents(userID)
	if len(events) == 0 {
		return ErrUserNotFound
	}

	event := UserAddedToGroup{
		UserID:  userID,
		GroupID: groupID,
		AddedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, userID, AggregateType, EventUserAddedToGroup, event)
	return err
}

// RemoveFromGroup takes the user out of a customer group
func (s *Service) RemoveFromGroup(ctx context.Context, userID, groupID string) error {
	events := s.eventStore.GetEvents(userID)
	if len(events) == 0 {
		return ErrUserNotFound
	}

	event := UserRemovedFromGroup{
		UserID:    userID,
		GroupID:   groupID,
		RemovedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, userID, AggregateType, EventUserRemovedFromGroup, event)
	return err
}

// Deactivate disables the user account
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	events := s.eventStore.GetEvents(userID)
	if len(events) == 0 {
		return ErrUserNotFound
	}

	event := UserDeactivated{
		UserID:        userID,
		DeactivatedAt: time.Now(),
	}

	_, err := s.eventStore.Append(ctx, userID, AggregateType, EventUserDeactivated, event)
	return err
}
