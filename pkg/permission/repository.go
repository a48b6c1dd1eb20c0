package permission

import (
	"context"
	"fmt"

	"github.com/tendant/wms-superadmin/pkg/supabase"
)

// Table is the record table holding per tab grants
const Table = "ruoli_tab_abilitate"

// Grant is a row of the grants table
type Grant struct {
	RoleCode string `json:"ruolo_codice"`
	Tab      string `json:"tab_nome"`
	CanView  bool   `json:"permesso_vista"`
	CanEdit  bool   `json:"permesso_modifica"`
}

// PermissionRepository defines the interface for grant storage operations
type PermissionRepository interface {
	UpsertGrant(ctx context.Context, grant Grant) error
	FindGrantsByRole(ctx context.Context, roleCode string) ([]Grant, error)
}

// RecordClient is the part of the record API the repository needs
type RecordClient interface {
	Upsert(ctx context.Context, table string, row interface{}, opts supabase.UpsertOptions) error
	Select(ctx context.Context, table string, filter supabase.Filter, out interface{}) error
}

// RestPermissionRepository implements PermissionRepository over the record API
type RestPermissionRepository struct {
	client RecordClient
}

func NewRestPermissionRepository(client RecordClient) *RestPermissionRepository {
	return &RestPermissionRepository{
		client: client,
	}
}

func (r *RestPermissionRepository) UpsertGrant(ctx context.Context, grant Grant) error {
	opts := supabase.UpsertOptions{OnConflict: []string{"ruolo_codice", "tab_nome"}}
	if err := r.client.Upsert(ctx, Table, grant, opts); err != nil {
		return fmt.Errorf("failed to grant %s to %s: %w", grant.Tab, grant.RoleCode, err)
	}
	return nil
}

func (r *RestPermissionRepository) FindGrantsByRole(ctx context.Context, roleCode string) ([]Grant, error) {
	var grants []Grant
	err := r.client.Select(ctx, Table, supabase.Filter{
		Columns: []string{"ruolo_codice", "tab_nome", "permesso_vista", "permesso_modifica"},
		Eq:      map[string]string{"ruolo_codice": roleCode},
	}, &grants)
	if err != nil {
		return nil, fmt.Errorf("failed to read grants of %s: %w", roleCode, err)
	}
	return grants, nil
}
