package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Shazidulislam/final-project-plant-server/internal/docstore"
	"github.com/Shazidulislam/final-project-plant-server/internal/events"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrInvalidRole = errors.New("invalid role")
)

type Service struct {
	Users  docstore.Collection
	Events *events.Emitter
	Now    func() time.Time
}

func (s *Service) now() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return now().UTC().Format(timeLayout)
}

// UpsertOnLogin inserts a first-time user as a customer, or refreshes
// last_login for a known email. A concurrent first login that loses the
// unique-email race takes the refresh path.
func (s *Service) UpsertOnLogin(ctx context.Context, user docstore.Document) (LoginResult, error) {
	email := user.String("email")
	ts := s.now()

	_, err := s.Users.FindOne(ctx, docstore.Document{"email": email})
	switch {
	case err == nil:
		return s.touch(ctx, email, ts)
	case !errors.Is(err, docstore.ErrNotFound):
		return LoginResult{}, fmt.Errorf("find user %s: %w", email, err)
	}

	doc := user.Clone()
	doc["role"] = string(RoleCustomer)
	doc["create_at"] = ts
	doc["last_login"] = ts
	res, err := s.Users.InsertOne(ctx, doc)
	if errors.Is(err, docstore.ErrDuplicate) {
		return s.touch(ctx, email, ts)
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("insert user %s: %w", email, err)
	}
	return LoginResult{Inserted: &res}, nil
}

func (s *Service) touch(ctx context.Context, email, ts string) (LoginResult, error) {
	res, err := s.Users.UpdateOne(ctx, docstore.Document{"email": email},
		docstore.Update{Set: docstore.Document{"last_login": ts}}, true)
	if err != nil {
		return LoginResult{}, fmt.Errorf("touch user %s: %w", email, err)
	}
	return LoginResult{Updated: &res}, nil
}

func (s *Service) Role(ctx context.Context, email string) (Role, error) {
	u, err := s.Users.FindOne(ctx, docstore.Document{"email": email})
	if errors.Is(err, docstore.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find user %s: %w", email, err)
	}
	return Role(u.String("role")), nil
}

// IsAdmin reports whether email belongs to a stored admin. Unknown users are
// not admins.
func (s *Service) IsAdmin(ctx context.Context, email string) (bool, error) {
	role, err := s.Role(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return role == RoleAdmin, nil
}

// UpdateRole sets the role and marks the account verified, creating the
// user if the email is unknown.
func (s *Service) UpdateRole(ctx context.Context, email string, role Role) (docstore.UpdateResult, error) {
	if !role.Valid() {
		return docstore.UpdateResult{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	res, err := s.Users.UpdateOne(ctx, docstore.Document{"email": email},
		docstore.Update{Set: docstore.Document{"role": string(role), "status": StatusVerified}}, true)
	if err != nil {
		return res, fmt.Errorf("update role of %s: %w", email, err)
	}
	s.Events.Emit(ctx, events.TopicUserRoleChanged, events.EventUserRoleChanged, email, events.UserRoleChangedPayload{
		Email:  email,
		Role:   string(role),
		Status: StatusVerified,
	})
	return res, nil
}

// RequestSeller marks an existing user as awaiting seller approval.
func (s *Service) RequestSeller(ctx context.Context, email string) (docstore.UpdateResult, error) {
	res, err := s.Users.UpdateOne(ctx, docstore.Document{"email": email},
		docstore.Update{Set: docstore.Document{"status": StatusRequested}}, false)
	if err != nil {
		return res, fmt.Errorf("request seller for %s: %w", email, err)
	}
	if res.MatchedCount > 0 {
		s.Events.Emit(ctx, events.TopicUserRoleChanged, events.EventUserRoleChanged, email, events.UserRoleChangedPayload{
			Email:  email,
			Status: StatusRequested,
		})
	}
	return res, nil
}

// ListOthers returns every user except the caller.
func (s *Service) ListOthers(ctx context.Context, callerEmail string) ([]docstore.Document, error) {
	out, err := s.Users.FindExcept(ctx, "email", callerEmail)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}
