package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// PrintBootstrapResult writes a human readable summary of the bootstrap to w
func PrintBootstrapResult(w io.Writer, result *AdminBootstrapResult) {
	if result == nil {
		return
	}

	title := "SUPER ADMIN BOOTSTRAP COMPLETED"
	if !result.Succeeded() {
		title = "SUPER ADMIN BOOTSTRAP COMPLETED WITH ERRORS"
	}
	if step, ok := result.Step(StepUser); ok && step.Status == StepFailed {
		title = "SUPER ADMIN BOOTSTRAP FAILED"
	}

	printSectionHeader(w, title)
	printUserSection(w, result)
	printRoleSection(w, result)
	printStepsSection(w, result)
	printSecurityWarnings(w, result)
	printSectionFooter(w)
}

// printSectionHeader prints a formatted section header
func printSectionHeader(w io.Writer, title string) {
	border := strings.Repeat("=", 80)
	fmt.Fprintf(w, "\n%s\n", border)
	fmt.Fprintf(w, "🚀 %s\n", title)
	fmt.Fprintf(w, "%s\n", border)
}

// printSectionFooter prints a formatted section footer
func printSectionFooter(w io.Writer) {
	border := strings.Repeat("=", 80)
	fmt.Fprintf(w, "%s\n\n", border)
}

func printUserSection(w io.Writer, result *AdminBootstrapResult) {
	fmt.Fprintln(w, "\n👤 Admin User:")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	fmt.Fprintf(w, "  Email:     %s\n", result.Email)
	if step, ok := result.Step(StepUser); ok && step.Status == StepFailed {
		fmt.Fprintf(w, "  Status:    ❌ Not provisioned\n")
		return
	}
	fmt.Fprintf(w, "  User ID:   %s\n", result.UserID)
	if result.UserCreated {
		fmt.Fprintf(w, "  Status:    ✨ Created\n")
	} else {
		fmt.Fprintf(w, "  Status:    ✓ Already existed\n")
	}

	switch {
	case result.PasswordFromEnv:
		fmt.Fprintf(w, "  Password:  (configured via ADMIN_PASSWORD environment variable)\n")
	case result.Password != "":
		fmt.Fprintf(w, "  Password:  %s\n", result.Password)
	default:
		fmt.Fprintf(w, "  Password:  (unchanged, the existing password still applies)\n")
	}
}

func printRoleSection(w io.Writer, result *AdminBootstrapResult) {
	fmt.Fprintln(w, "\n📋 Admin Role:")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	fmt.Fprintf(w, "  Code:      %s\n", result.RoleCode)
	if len(result.Grants.Results) > 0 {
		fmt.Fprintf(w, "  Tabs:      %d/%d granted (view + edit)\n", result.Grants.Granted(), len(result.Grants.Results))
	}
}

func printStepsSection(w io.Writer, result *AdminBootstrapResult) {
	fmt.Fprintln(w, "\n🧾 Steps:")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, step := range result.Steps {
		fmt.Fprintf(w, "  %s %-12s %s\n", statusMarker(step.Status), step.Name, step.Status)
		if step.Err != nil {
			fmt.Fprintf(w, "     %v\n", step.Err)
		}
	}
	for _, f := range result.Grants.Failed() {
		fmt.Fprintf(w, "     tab %s: %v\n", f.Tab, f.Err)
	}
	if len(result.Verification.Missing) > 0 {
		fmt.Fprintf(w, "     missing tabs: %s\n", strings.Join(result.Verification.Missing, ", "))
	}
	if len(result.Verification.Incomplete) > 0 {
		fmt.Fprintf(w, "     incomplete tabs: %s\n", strings.Join(result.Verification.Incomplete, ", "))
	}
}

func statusMarker(status StepStatus) string {
	switch status {
	case StepSucceeded:
		return "✅"
	case StepAlreadyExisted:
		return "✓ "
	default:
		return "❌"
	}
}

// printSecurityWarnings prints important security warnings
func printSecurityWarnings(w io.Writer, result *AdminBootstrapResult) {
	if result.Password == "" && !result.PasswordFromEnv {
		return
	}

	fmt.Fprintln(w, "\n⚠️  SECURITY REMINDERS:")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	if result.PasswordFromEnv {
		fmt.Fprintln(w, "  • Admin password was set via environment variable")
		fmt.Fprintln(w, "  • Ensure ADMIN_PASSWORD is removed from .env after first login")
	} else {
		fmt.Fprintln(w, "  • THIS PASSWORD WILL NOT BE DISPLAYED AGAIN - SAVE IT NOW!")
		fmt.Fprintln(w, "  • Store credentials in a secure password manager")
	}
	fmt.Fprintln(w, "  • Change the password after logging in for the first time")
	fmt.Fprintln(w, "  • Keep SUPABASE_SERVICE_ROLE_KEY out of shell history and version control")
}

// LogBootstrapSummary logs a concise summary using slog (for structured logging)
func LogBootstrapSummary(result *AdminBootstrapResult) {
	if result == nil {
		return
	}

	failed := make([]string, 0)
	for _, s := range result.FailedSteps() {
		failed = append(failed, s.Name)
	}

	// Log without sensitive information (password)
	slog.Info("Super admin bootstrap summary",
		"user_id", result.UserID,
		"user_created", result.UserCreated,
		"role", result.RoleCode,
		"tabs_granted", result.Grants.Granted(),
		"tabs_total", len(result.Grants.Results),
		"failed_steps", failed,
		"password_from_env", result.PasswordFromEnv,
	)
}
