package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	idmerrors "github.com/tendant/wms-superadmin/pkg/errors"
	"github.com/tendant/wms-superadmin/pkg/permission"
	"github.com/tendant/wms-superadmin/pkg/profile"
	"github.com/tendant/wms-superadmin/pkg/role"
	"github.com/tendant/wms-superadmin/pkg/user"
	"github.com/tendant/wms-superadmin/pkg/utils"
)

// DefaultPasswordLength is used when no password is configured and no length is given
const DefaultPasswordLength = 20

// Step names in execution order
const (
	StepUser        = "user"
	StepRole        = "role"
	StepProfile     = "profile"
	StepPermissions = "permissions"
	StepVerify      = "verify"
)

// StepStatus is the outcome of one bootstrap step
type StepStatus string

const (
	StepSucceeded      StepStatus = "succeeded"
	StepAlreadyExisted StepStatus = "already_existed"
	StepFailed         StepStatus = "failed"
)

// StepResult records how one step ended
type StepResult struct {
	Name   string
	Status StepStatus
	Err    error
}

// AdminBootstrapConfig contains configuration for bootstrapping the super admin
type AdminBootstrapConfig struct {
	// Admin user identity (from ADMIN_EMAIL, ADMIN_PASSWORD, ADMIN_FIRST_NAME, ADMIN_LAST_NAME)
	AdminEmail     string
	AdminPassword  string
	AdminFirstName string
	AdminLastName  string

	// Role assigned to the admin (from ADMIN_ROLE_CODE, ADMIN_ROLE_DESCRIPTION)
	AdminRoleCode        string
	AdminRoleDescription string

	// Length of the generated password when AdminPassword is empty
	PasswordLength int

	// Service dependencies
	UserProvisioner   *user.UserProvisioner
	RoleService       *role.RoleService
	ProfileService    *profile.ProfileService
	PermissionService *permission.PermissionService

	// Progress receives one line per step start and end. Nil discards it.
	Progress io.Writer
}

// AdminBootstrapResult contains the result of the bootstrap
type AdminBootstrapResult struct {
	// Auth user
	UserID      uuid.UUID
	Email       string
	UserCreated bool // false when the email was already registered

	// Password is only populated if it was generated and the user was created by this run
	Password        string
	PasswordFromEnv bool

	RoleCode    string
	RoleExisted bool

	Grants       permission.GrantSummary
	Verification permission.VerifyReport

	Steps []StepResult
}

// Succeeded reports whether no step failed
func (r *AdminBootstrapResult) Succeeded() bool {
	return len(r.FailedSteps()) == 0
}

// FailedSteps returns the steps that ended in failure
func (r *AdminBootstrapResult) FailedSteps() []StepResult {
	var failed []StepResult
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			failed = append(failed, s)
		}
	}
	return failed
}

// Step returns the result of the named step, if it ran
func (r *AdminBootstrapResult) Step(name string) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Name == name {
			return s, true
		}
	}
	return StepResult{}, false
}

func (r *AdminBootstrapResult) record(name string, status StepStatus, err error) {
	r.Steps = append(r.Steps, StepResult{Name: name, Status: status, Err: err})
}

// BootstrapSuperAdmin creates or locates the admin auth user, ensures the admin role,
// links the user profile to it and grants the role every tab.
//
// Only the user step is fatal. When it fails the returned error is non-nil, no record
// call has been made, and the result still carries the failed step. Later steps
// record their failures in the result and the run goes on.
func BootstrapSuperAdmin(ctx context.Context, cfg AdminBootstrapConfig) (*AdminBootstrapResult, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid bootstrap configuration: %w", err)
	}

	out := cfg.Progress
	if out == nil {
		out = io.Discard
	}

	result := &AdminBootstrapResult{
		Email:           strings.TrimSpace(cfg.AdminEmail),
		RoleCode:        strings.TrimSpace(cfg.AdminRoleCode),
		PasswordFromEnv: cfg.AdminPassword != "",
	}

	slog.Info("Starting super admin bootstrap", "email", utils.MaskEmail(result.Email), "role", result.RoleCode)

	password := cfg.AdminPassword
	if password == "" {
		length := cfg.PasswordLength
		if length <= 0 {
			length = DefaultPasswordLength
		}
		generated, err := utils.GeneratePassword(length)
		if err != nil {
			result.record(StepUser, StepFailed, err)
			return result, fmt.Errorf("failed to generate admin password: %w", err)
		}
		password = generated
	}

	// User
	fmt.Fprintln(out, "🔐 Creating auth user...")
	userRes, err := cfg.UserProvisioner.EnsureUser(ctx, user.EnsureUserParams{
		Email:     result.Email,
		Password:  password,
		FirstName: cfg.AdminFirstName,
		LastName:  cfg.AdminLastName,
	})
	if err != nil {
		fmt.Fprintf(out, "❌ Auth user could not be created: %v\n", err)
		if body := idmerrors.ResponseBody(err); body != "" {
			fmt.Fprintf(out, "   Details: %s\n", body)
		}
		result.record(StepUser, StepFailed, err)
		return result, fmt.Errorf("failed to provision admin user: %w", err)
	}

	result.UserID = userRes.ID
	result.UserCreated = userRes.Created
	if userRes.Created {
		fmt.Fprintf(out, "✅ Auth user created: %s\n", userRes.ID)
		result.record(StepUser, StepSucceeded, nil)
		if !result.PasswordFromEnv {
			result.Password = password
		}
	} else {
		fmt.Fprintf(out, "⚠️  Auth user already exists: %s\n", userRes.ID)
		result.record(StepUser, StepAlreadyExisted, nil)
	}

	// Role
	fmt.Fprintf(out, "\n🏷️  Ensuring role %s...\n", result.RoleCode)
	existed, err := cfg.RoleService.EnsureRole(ctx, result.RoleCode, cfg.AdminRoleDescription)
	switch {
	case err != nil:
		fmt.Fprintf(out, "⚠️  Role could not be ensured: %v\n", err)
		result.record(StepRole, StepFailed, err)
	case existed:
		fmt.Fprintln(out, "✅ Role already exists")
		result.RoleExisted = true
		result.record(StepRole, StepAlreadyExisted, nil)
	default:
		fmt.Fprintln(out, "✅ Role ensured")
		result.record(StepRole, StepSucceeded, nil)
	}

	// Profile
	fmt.Fprintln(out, "\n👤 Upserting user profile...")
	err = cfg.ProfileService.UpsertProfile(ctx, profile.Profile{
		ID:        result.UserID,
		FirstName: cfg.AdminFirstName,
		LastName:  cfg.AdminLastName,
		RoleCode:  result.RoleCode,
	})
	if err != nil {
		fmt.Fprintf(out, "❌ Profile could not be upserted: %v\n", err)
		if body := idmerrors.ResponseBody(err); body != "" {
			fmt.Fprintf(out, "   Details: %s\n", body)
		}
		result.record(StepProfile, StepFailed, err)
	} else {
		fmt.Fprintln(out, "✅ Profile created/updated")
		result.record(StepProfile, StepSucceeded, nil)
	}

	// Permissions
	fmt.Fprintln(out, "\n🔑 Granting tab permissions...")
	grants, err := cfg.PermissionService.GrantAll(ctx, result.RoleCode)
	result.Grants = grants
	switch {
	case err != nil:
		fmt.Fprintf(out, "❌ Permissions could not be granted: %v\n", err)
		result.record(StepPermissions, StepFailed, err)
	case len(grants.Failed()) > 0:
		for _, f := range grants.Failed() {
			fmt.Fprintf(out, "⚠️  Permission %s failed: %v\n", f.Tab, f.Err)
		}
		fmt.Fprintf(out, "⚠️  %d/%d permissions granted to %s\n", grants.Granted(), len(grants.Results), result.RoleCode)
		result.record(StepPermissions, StepFailed, fmt.Errorf("%d of %d tab grants failed", len(grants.Failed()), len(grants.Results)))
	default:
		fmt.Fprintf(out, "✅ %d permissions granted to %s\n", grants.Granted(), result.RoleCode)
		result.record(StepPermissions, StepSucceeded, nil)
	}

	// Verify
	fmt.Fprintln(out, "\n🔎 Verifying permissions...")
	report, err := cfg.PermissionService.Verify(ctx, result.RoleCode)
	result.Verification = report
	switch {
	case err != nil:
		fmt.Fprintf(out, "⚠️  Permissions could not be read back: %v\n", err)
		result.record(StepVerify, StepFailed, err)
	case !report.OK():
		fmt.Fprintf(out, "⚠️  Missing: %s  Incomplete: %s\n", joinOrNone(report.Missing), joinOrNone(report.Incomplete))
		result.record(StepVerify, StepFailed, fmt.Errorf("%d tabs missing, %d incomplete", len(report.Missing), len(report.Incomplete)))
	default:
		fmt.Fprintln(out, "✅ All permissions verified")
		result.record(StepVerify, StepSucceeded, nil)
	}

	slog.Info("Super admin bootstrap finished",
		"user_id", result.UserID,
		"user_created", result.UserCreated,
		"failed_steps", len(result.FailedSteps()))

	return result, nil
}

// validateConfig validates the bootstrap configuration
func validateConfig(cfg AdminBootstrapConfig) error {
	if strings.TrimSpace(cfg.AdminEmail) == "" {
		return fmt.Errorf("admin email is required")
	}

	if strings.TrimSpace(cfg.AdminRoleCode) == "" {
		return fmt.Errorf("admin role code is required")
	}

	if cfg.UserProvisioner == nil {
		return fmt.Errorf("UserProvisioner is required")
	}

	if cfg.RoleService == nil {
		return fmt.Errorf("RoleService is required")
	}

	if cfg.ProfileService == nil {
		return fmt.Errorf("ProfileService is required")
	}

	if cfg.PermissionService == nil {
		return fmt.Errorf("PermissionService is required")
	}

	if len(cfg.PermissionService.Catalog()) == 0 {
		return fmt.Errorf("permission catalog is empty")
	}

	return nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
