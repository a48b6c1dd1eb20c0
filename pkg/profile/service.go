package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	idmerrors "github.com/tendant/wms-superadmin/pkg/errors"
	"github.com/tendant/wms-superadmin/pkg/supabase"
)

// Table is the record table holding user profiles
const Table = "utenti_profilo"

var (
	ErrNilUserID     = errors.New("user id cannot be nil")
	ErrEmptyRoleCode = errors.New("role code cannot be empty")
)

// Profile links an auth user to a role
type Profile struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"nome"`
	LastName  string    `json:"cognome"`
	RoleCode  string    `json:"ruolo_codice"`
}

// ProfileRepository defines the interface for profile storage operations
type ProfileRepository interface {
	// UpsertProfile inserts the profile or updates the row with the same id
	UpsertProfile(ctx context.Context, profile Profile) error
}

// RecordUpserter is the part of the record API the repository needs
type RecordUpserter interface {
	Upsert(ctx context.Context, table string, row interface{}, opts supabase.UpsertOptions) error
}

// RestProfileRepository implements ProfileRepository over the record API
type RestProfileRepository struct {
	client RecordUpserter
}

// NewRestProfileRepository creates a new RestProfileRepository
func NewRestProfileRepository(client RecordUpserter) *RestProfileRepository {
	return &RestProfileRepository{
		client: client,
	}
}

// UpsertProfile implements ProfileRepository.UpsertProfile
func (r *RestProfileRepository) UpsertProfile(ctx context.Context, profile Profile) error {
	if err := r.client.Upsert(ctx, Table, profile, supabase.UpsertOptions{OnConflict: []string{"id"}}); err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", profile.ID, err)
	}
	return nil
}

// ProfileService provides profile-related operations
type ProfileService struct {
	repository ProfileRepository
}

// NewProfileService creates a new ProfileService with the given repository
func NewProfileService(repository ProfileRepository) *ProfileService {
	return &ProfileService{
		repository: repository,
	}
}

// UpsertProfile creates or updates the profile of the user, pointing it at roleCode
func (s *ProfileService) UpsertProfile(ctx context.Context, profile Profile) error {
	if profile.ID == uuid.Nil {
		return ErrNilUserID
	}
	profile.RoleCode = strings.TrimSpace(profile.RoleCode)
	if profile.RoleCode == "" {
		return ErrEmptyRoleCode
	}

	if err := s.repository.UpsertProfile(ctx, profile); err != nil {
		slog.Error("Failed to upsert profile", "user_id", profile.ID, "status", idmerrors.StatusCode(err), "body", idmerrors.ResponseBody(err), "err", err)
		return err
	}

	slog.Info("Profile upserted", "user_id", profile.ID, "role", profile.RoleCode)
	return nil
}
