package role

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	idmerrors "github.com/tendant/wms-superadmin/pkg/errors"
)

var (
	ErrEmptyRoleCode = errors.New("role code cannot be empty")
)

// RoleService provides methods for role management
type RoleService struct {
	repo RoleRepository
}

func NewRoleService(repo RoleRepository) *RoleService {
	return &RoleService{
		repo: repo,
	}
}

// EnsureRole makes sure the role with the given code exists. existed reports that
// the backend answered with a conflict, meaning the row was already there.
func (s *RoleService) EnsureRole(ctx context.Context, code, description string) (existed bool, err error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return false, ErrEmptyRoleCode
	}

	err = s.repo.UpsertRole(ctx, Role{Code: code, Description: description})
	if err == nil {
		slog.Info("Role ensured", "role", code)
		return false, nil
	}
	if idmerrors.IsStatus(err, http.StatusConflict) {
		slog.Info("Role already exists", "role", code)
		return true, nil
	}

	slog.Warn("Failed to ensure role", "role", code, "status", idmerrors.StatusCode(err), "err", err)
	return false, err
}
