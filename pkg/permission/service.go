package permission

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
	ErrEmptyCatalog  = errors.New("tab catalog cannot be empty")
)

// GrantResult is the outcome of granting one tab
type GrantResult struct {
	Tab            string
	AlreadyExisted bool
	Err            error
}

// GrantSummary collects the outcome of GrantAll
type GrantSummary struct {
	Results []GrantResult
}

// Granted counts tabs whose grant was written or already present
func (s GrantSummary) Granted() int {
	n := 0
	for _, r := range s.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the results that ended in an error
func (s GrantSummary) Failed() []GrantResult {
	var failed []GrantResult
	for _, r := range s.Results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// VerifyReport lists tabs whose grant is absent or incomplete after read-back
type VerifyReport struct {
	Missing    []string
	Incomplete []string
}

// OK reports whether every tab has a full grant
func (r VerifyReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Incomplete) == 0
}

// PermissionService grants a role view and edit rights on a catalog of tabs
type PermissionService struct {
	repo    PermissionRepository
	catalog []string
}

// Option configures a PermissionService
type Option func(*PermissionService)

// WithCatalog replaces the default tab catalog
func WithCatalog(tabs []string) Option {
	return func(s *PermissionService) {
		s.catalog = tabs
	}
}

func NewPermissionService(repo PermissionRepository, opts ...Option) *PermissionService {
	s := &PermissionService{
		repo:    repo,
		catalog: Catalog(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the tabs the service grants
func (s *PermissionService) Catalog() []string {
	return s.catalog
}

// GrantAll grants view and edit on every catalog tab to roleCode. A failed tab is
// recorded and the next one is still attempted. Nothing is rolled back.
func (s *PermissionService) GrantAll(ctx context.Context, roleCode string) (GrantSummary, error) {
	roleCode = strings.TrimSpace(roleCode)
	if roleCode == "" {
		return GrantSummary{}, ErrEmptyRoleCode
	}
	if len(s.catalog) == 0 {
		return GrantSummary{}, ErrEmptyCatalog
	}

	summary := GrantSummary{Results: make([]GrantResult, 0, len(s.catalog))}
	for _, tab := range s.catalog {
		res := GrantResult{Tab: tab}
		err := s.repo.UpsertGrant(ctx, Grant{RoleCode: roleCode, Tab: tab, CanView: true, CanEdit: true})
		switch {
		case err == nil:
		case idmerrors.IsStatus(err, http.StatusConflict):
			res.AlreadyExisted = true
		default:
			slog.Warn("Failed to grant tab", "role", roleCode, "tab", tab, "status", idmerrors.StatusCode(err), "err", err)
			res.Err = err
		}
		summary.Results = append(summary.Results, res)
	}

	slog.Info("Tab grants processed", "role", roleCode, "granted", summary.Granted(), "failed", len(summary.Failed()))
	return summary, nil
}

// Verify reads the grants of roleCode back and reports catalog tabs that are
// missing or lack one of the two flags
func (s *PermissionService) Verify(ctx context.Context, roleCode string) (VerifyReport, error) {
	roleCode = strings.TrimSpace(roleCode)
	if roleCode == "" {
		return VerifyReport{}, ErrEmptyRoleCode
	}

	grants, err := s.repo.FindGrantsByRole(ctx, roleCode)
	if err != nil {
		slog.Warn("Failed to read grants back", "role", roleCode, "err", err)
		return VerifyReport{}, err
	}

	byTab := make(map[string]Grant, len(grants))
	for _, g := range grants {
		byTab[g.Tab] = g
	}

	var report VerifyReport
	for _, tab := range s.catalog {
		g, ok := byTab[tab]
		switch {
		case !ok:
			report.Missing = append(report.Missing, tab)
		case !g.CanView || !g.CanEdit:
			report.Incomplete = append(report.Incomplete, tab)
		}
	}

	if !report.OK() {
		slog.Warn("Grant verification found gaps", "role", roleCode, "missing", report.Missing, "incomplete", report.Incomplete)
	}
	return report, nil
}
