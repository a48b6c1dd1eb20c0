package permission

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	idmerrors "github.com/tendant/wms-superadmin/pkg/errors"
	"github.com/tendant/wms-superadmin/pkg/supabase"
	"github.com/tendant/wms-superadmin/pkg/supabase/supabasetest"
)

// MockPermissionRepository is a mock implementation of PermissionRepository for testing
type MockPermissionRepository struct {
	grants  map[string]Grant
	failTab map[string]error
	findErr error
	upserts []string
}

func NewMockPermissionRepository() *MockPermissionRepository {
	return &MockPermissionRepository{
		grants:  make(map[string]Grant),
		failTab: make(map[string]error),
	}
}

func (m *MockPermissionRepository) UpsertGrant(ctx context.Context, grant Grant) error {
	m.upserts = append(m.upserts, grant.Tab)
	if err := m.failTab[grant.Tab]; err != nil {
		return err
	}
	m.grants[grant.RoleCode+"/"+grant.Tab] = grant
	return nil
}

func (m *MockPermissionRepository) FindGrantsByRole(ctx context.Context, roleCode string) ([]Grant, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []Grant
	for _, g := range m.grants {
		if g.RoleCode == roleCode {
			out = append(out, g)
		}
	}
	return out, nil
}

func TestCatalog(t *testing.T) {
	tabs := Catalog()
	require.Len(t, tabs, 14)
	assert.Equal(t, TabFornitori, tabs[0])
	assert.Equal(t, TabNotifiche, tabs[13])

	tabs[0] = "changed"
	assert.Equal(t, TabFornitori, Catalog()[0])
}

func TestGrantAll(t *testing.T) {
	repo := NewMockPermissionRepository()
	service := NewPermissionService(repo)

	summary, err := service.GrantAll(context.Background(), "ADMIN")
	require.NoError(t, err)

	assert.Equal(t, Catalog(), repo.upserts)
	assert.Equal(t, 14, summary.Granted())
	assert.Empty(t, summary.Failed())
	for _, g := range repo.grants {
		assert.True(t, g.CanView)
		assert.True(t, g.CanEdit)
	}
}

func TestGrantAllContinuesPastFailures(t *testing.T) {
	repo := NewMockPermissionRepository()
	repo.failTab[TabArticoli] = idmerrors.FromResponse("upsert ruoli_tab_abilitate", http.StatusInternalServerError, nil)
	repo.failTab[TabOrdini] = errors.New("connection reset")
	repo.failTab[TabRuoli] = idmerrors.FromResponse("upsert ruoli_tab_abilitate", http.StatusConflict, nil)

	summary, err := NewPermissionService(repo).GrantAll(context.Background(), "ADMIN")
	require.NoError(t, err)

	assert.Len(t, repo.upserts, 14, "every tab must be attempted")
	assert.Equal(t, 12, summary.Granted())

	failed := summary.Failed()
	require.Len(t, failed, 2)
	assert.Equal(t, TabArticoli, failed[0].Tab)
	assert.Equal(t, TabOrdini, failed[1].Tab)

	for _, r := range summary.Results {
		if r.Tab == TabRuoli {
			assert.True(t, r.AlreadyExisted)
			assert.NoError(t, r.Err)
		}
	}
}

func TestGrantAllValidation(t *testing.T) {
	repo := NewMockPermissionRepository()

	_, err := NewPermissionService(repo).GrantAll(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyRoleCode)

	_, err = NewPermissionService(repo, WithCatalog(nil)).GrantAll(context.Background(), "ADMIN")
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	assert.Empty(t, repo.upserts)
}

func TestVerify(t *testing.T) {
	repo := NewMockPermissionRepository()
	repo.grants["ADMIN/"+TabFornitori] = Grant{RoleCode: "ADMIN", Tab: TabFornitori, CanView: true, CanEdit: true}
	repo.grants["ADMIN/"+TabArticoli] = Grant{RoleCode: "ADMIN", Tab: TabArticoli, CanView: true, CanEdit: false}
	repo.grants["OTHER/"+TabMagazzini] = Grant{RoleCode: "OTHER", Tab: TabMagazzini, CanView: true, CanEdit: true}

	service := NewPermissionService(repo, WithCatalog([]string{TabFornitori, TabArticoli, TabMagazzini}))
	report, err := service.Verify(context.Background(), "ADMIN")
	require.NoError(t, err)

	assert.False(t, report.OK())
	assert.Equal(t, []string{TabMagazzini}, report.Missing)
	assert.Equal(t, []string{TabArticoli}, report.Incomplete)
}

func TestVerifyReadError(t *testing.T) {
	repo := NewMockPermissionRepository()
	repo.findErr = errors.New("boom")

	_, err := NewPermissionService(repo).Verify(context.Background(), "ADMIN")
	assert.Error(t, err)
}

func TestRestPermissionRepository(t *testing.T) {
	server := supabasetest.NewServer(t)
	client, err := supabase.NewClient(server.URL, server.ServiceRoleKey())
	require.NoError(t, err)
	service := NewPermissionService(NewRestPermissionRepository(client))
	ctx := context.Background()

	// A second pass must not add rows
	for i := 0; i < 2; i++ {
		summary, err := service.GrantAll(ctx, "ADMIN")
		require.NoError(t, err)
		assert.Equal(t, 14, summary.Granted())
	}

	rows := server.Rows(Table)
	require.Len(t, rows, 14)
	for _, row := range rows {
		assert.Equal(t, "ADMIN", row["ruolo_codice"])
		assert.Equal(t, true, row["permesso_vista"])
		assert.Equal(t, true, row["permesso_modifica"])
	}

	report, err := service.Verify(ctx, "ADMIN")
	require.NoError(t, err)
	assert.True(t, report.OK())

	for _, req := range server.Requests() {
		if req.Method == http.MethodPost {
			assert.Equal(t, "on_conflict=ruolo_codice%2Ctab_nome", req.RawQuery)
		}
	}
}
