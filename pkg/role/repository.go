package role

import (
	"context"
	"fmt"

	"github.com/tendant/wms-superadmin/pkg/supabase"
)

// Table is the record table holding roles
const Table = "ruoli"

// Role is a row of the roles table
type Role struct {
	Code        string `json:"codice"`
	Description string `json:"descrizione"`
}

// RoleRepository defines the interface for role storage operations
type RoleRepository interface {
	// UpsertRole inserts the role or updates the row with the same code
	UpsertRole(ctx context.Context, role Role) error
}

// RecordUpserter is the part of the record API the repository needs
type RecordUpserter interface {
	Upsert(ctx context.Context, table string, row interface{}, opts supabase.UpsertOptions) error
}

// RestRoleRepository implements RoleRepository over the record API
type RestRoleRepository struct {
	client RecordUpserter
}

// NewRestRoleRepository creates a new RestRoleRepository
func NewRestRoleRepository(client RecordUpserter) *RestRoleRepository {
	return &RestRoleRepository{
		client: client,
	}
}

// UpsertRole implements RoleRepository.UpsertRole
func (r *RestRoleRepository) UpsertRole(ctx context.Context, role Role) error {
	if err := r.client.Upsert(ctx, Table, role, supabase.UpsertOptions{OnConflict: []string{"codice"}}); err != nil {
		return fmt.Errorf("failed to upsert role %s: %w", role.Code, err)
	}
	return nil
}
