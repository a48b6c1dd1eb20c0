package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tendant/wms-superadmin/pkg/bootstrap"
	"github.com/tendant/wms-superadmin/pkg/config"
	"github.com/tendant/wms-superadmin/pkg/permission"
	"github.com/tendant/wms-superadmin/pkg/profile"
	"github.com/tendant/wms-superadmin/pkg/role"
	"github.com/tendant/wms-superadmin/pkg/supabase"
	"github.com/tendant/wms-superadmin/pkg/user"
)

// Exit codes
const (
	exitOK            = 0
	exitFailure       = 1
	exitPartialStrict = 2
)

const (
	envFileFlag = "env-file"
	strictFlag  = "strict"
)

// exitError carries the process exit code out of the command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and maps its outcome to an exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	// Flag and argument errors
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitFailure
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-super-admin",
		Short: "Provision the super admin user, role and tab permissions",
		Long: `Provision the warehouse super admin against a Supabase project.

The command creates (or finds) the auth user, ensures the admin role, links the
user profile to it and grants the role view and edit rights on every tab.
Running it again is safe.

Configuration is read from the environment, after loading .env (or --env-file):
  SUPABASE_URL, SUPABASE_SERVICE_ROLE_KEY, ADMIN_EMAIL     required
  ADMIN_PASSWORD                                           generated when unset
  ADMIN_FIRST_NAME, ADMIN_LAST_NAME, ADMIN_ROLE_CODE,
  ADMIN_ROLE_DESCRIPTION, ADMIN_PASSWORD_LENGTH,
  BOOTSTRAP_REQUEST_TIMEOUT, BOOTSTRAP_STRICT, LOG_LEVEL   optional

Exit codes: 0 done, 1 invalid configuration or user provisioning failed,
2 a later step failed and strict mode is on.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString(envFileFlag)
			var strict *bool
			if cmd.Flags().Changed(strictFlag) {
				v, _ := cmd.Flags().GetBool(strictFlag)
				strict = &v
			}
			return runBootstrap(cmd.Context(), envFile, strict, stdout, stderr)
		},
	}

	cmd.Flags().String(envFileFlag, "", "dotenv file to load before reading the environment (default .env when present)")
	cmd.Flags().Bool(strictFlag, false, "exit with code 2 when any non-fatal step fails (overrides BOOTSTRAP_STRICT)")
	return cmd
}

func runBootstrap(ctx context.Context, envFile string, strict *bool, stdout, stderr io.Writer) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, nil)))

	cfg, err := config.LoadBootstrapConfig(envFile)
	if err != nil {
		fmt.Fprintf(stdout, "❌ %v\n", err)
		return &exitError{code: exitFailure, err: err}
	}
	if strict != nil {
		cfg.Strict = *strict
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	if err := cfg.Validate(time.Now()); err != nil {
		fmt.Fprintln(stdout, "❌ Invalid configuration:")
		fmt.Fprintf(stdout, "   %s\n", strings.ReplaceAll(err.Error(), "\n", "\n   "))
		slog.Error("Invalid configuration", "err", err)
		return &exitError{code: exitFailure, err: err}
	}
	slog.Info("Configuration loaded", "config", cfg)

	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.ServiceRoleKey, supabase.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		fmt.Fprintf(stdout, "❌ %v\n", err)
		return &exitError{code: exitFailure, err: err}
	}

	border := strings.Repeat("=", 80)
	fmt.Fprintln(stdout, border)
	fmt.Fprintln(stdout, "🚀 CREATE SUPER ADMIN")
	fmt.Fprintln(stdout, border)
	fmt.Fprintf(stdout, "Email: %s\n", cfg.AdminEmail)
	fmt.Fprintf(stdout, "Role:  %s\n", cfg.AdminRoleCode)
	fmt.Fprintln(stdout, border)

	result, err := bootstrap.BootstrapSuperAdmin(ctx, bootstrap.AdminBootstrapConfig{
		AdminEmail:           cfg.AdminEmail,
		AdminPassword:        cfg.AdminPassword,
		AdminFirstName:       cfg.AdminFirstName,
		AdminLastName:        cfg.AdminLastName,
		AdminRoleCode:        cfg.AdminRoleCode,
		AdminRoleDescription: cfg.AdminRoleDescription,
		PasswordLength:       cfg.PasswordLength,
		UserProvisioner:      user.NewUserProvisioner(client),
		RoleService:          role.NewRoleService(role.NewRestRoleRepository(client)),
		ProfileService:       profile.NewProfileService(profile.NewRestProfileRepository(client)),
		PermissionService:    permission.NewPermissionService(permission.NewRestPermissionRepository(client)),
		Progress:             stdout,
	})

	bootstrap.PrintBootstrapResult(stdout, result)
	bootstrap.LogBootstrapSummary(result)

	if err != nil {
		slog.Error("Super admin bootstrap failed", "err", err)
		return &exitError{code: exitFailure, err: err}
	}

	if !result.Succeeded() {
		if cfg.Strict {
			return &exitError{code: exitPartialStrict, err: fmt.Errorf("%d bootstrap steps failed", len(result.FailedSteps()))}
		}
		slog.Warn("Super admin bootstrap completed with errors", "failed_steps", len(result.FailedSteps()))
		return nil
	}

	fmt.Fprintln(stdout, "🔑 You can now sign in to the application!")
	return nil
}
