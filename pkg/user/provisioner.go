package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	idmerrors "github.com/tendant/wms-superadmin/pkg/errors"
	"github.com/tendant/wms-superadmin/pkg/supabase"
	"github.com/tendant/wms-superadmin/pkg/utils"
)

var (
	ErrEmptyEmail    = errors.New("email cannot be empty")
	ErrEmptyPassword = errors.New("password cannot be empty")
)

// AuthAdmin is the part of the auth admin API the provisioner needs
type AuthAdmin interface {
	CreateUser(ctx context.Context, params supabase.CreateUserRequest) (*supabase.User, error)
	FindUserByEmail(ctx context.Context, email string) (*supabase.User, error)
}

// EnsureUserParams describes the auth user to create or locate
type EnsureUserParams struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// EnsureUserResult is the resolved auth user
type EnsureUserResult struct {
	ID      uuid.UUID
	Email   string
	Created bool
}

// UserProvisioner creates auth users, falling back to a lookup when the email is taken
type UserProvisioner struct {
	admin AuthAdmin
}

func NewUserProvisioner(admin AuthAdmin) *UserProvisioner {
	return &UserProvisioner{
		admin: admin,
	}
}

// EnsureUser creates the auth user described by params. When the email already
// exists the existing user is looked up and returned with Created=false. Any other
// failure is returned as is and must be treated as fatal by the caller.
func (p *UserProvisioner) EnsureUser(ctx context.Context, params EnsureUserParams) (EnsureUserResult, error) {
	email := strings.TrimSpace(params.Email)
	if email == "" {
		return EnsureUserResult{}, ErrEmptyEmail
	}
	if params.Password == "" {
		return EnsureUserResult{}, ErrEmptyPassword
	}

	created, err := p.admin.CreateUser(ctx, supabase.CreateUserRequest{
		Email:        email,
		Password:     params.Password,
		EmailConfirm: true,
		UserMetadata: map[string]interface{}{
			"nome":    params.FirstName,
			"cognome": params.LastName,
		},
	})
	if err == nil {
		slog.Info("Auth user created", "email", utils.MaskEmail(email), "user_id", created.ID)
		return toResult(created, true)
	}

	if !IsDuplicate(err) {
		slog.Error("Failed to create auth user", "email", utils.MaskEmail(email), "status", idmerrors.StatusCode(err), "err", err)
		return EnsureUserResult{}, fmt.Errorf("failed to create auth user: %w", err)
	}

	slog.Info("Auth user already exists, looking it up", "email", utils.MaskEmail(email))
	existing, err := p.admin.FindUserByEmail(ctx, email)
	if err != nil {
		slog.Error("Failed to look up existing auth user", "email", utils.MaskEmail(email), "err", err)
		return EnsureUserResult{}, fmt.Errorf("failed to look up existing auth user: %w", err)
	}
	return toResult(existing, false)
}

// IsDuplicate reports whether err is the auth API rejecting an email that is already registered
func IsDuplicate(err error) bool {
	return idmerrors.IsStatus(err, http.StatusUnprocessableEntity, http.StatusConflict)
}

func toResult(u *supabase.User, created bool) (EnsureUserResult, error) {
	id, err := uuid.Parse(u.ID)
	if err != nil {
		return EnsureUserResult{}, idmerrors.Wrapf(err, idmerrors.ErrCodeInvalidResponse, "auth user id %q is not a UUID", u.ID)
	}
	return EnsureUserResult{
		ID:      id,
		Email:   u.Email,
		Created: created,
	}, nil
}
