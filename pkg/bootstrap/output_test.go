package bootstrap

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/tendant/wms-superadmin/pkg/permission"
)

func TestPrintBootstrapResult(t *testing.T) {
	result := &AdminBootstrapResult{
		UserID:      uuid.New(),
		Email:       testEmail,
		UserCreated: true,
		Password:    "Generated-Pass-123",
		RoleCode:    "ADMIN",
		Steps: []StepResult{
			{Name: StepUser, Status: StepSucceeded},
			{Name: StepRole, Status: StepSucceeded},
		},
	}

	var buf bytes.Buffer
	PrintBootstrapResult(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "SUPER ADMIN BOOTSTRAP COMPLETED\n")
	assert.Contains(t, out, result.UserID.String())
	assert.Contains(t, out, "Generated-Pass-123")
	assert.Contains(t, out, "WILL NOT BE DISPLAYED AGAIN")
}

func TestPrintBootstrapResultWithErrors(t *testing.T) {
	result := &AdminBootstrapResult{
		UserID:   uuid.New(),
		Email:    testEmail,
		RoleCode: "ADMIN",
		Grants: permission.GrantSummary{Results: []permission.GrantResult{
			{Tab: permission.TabFornitori},
			{Tab: permission.TabArticoli, Err: errors.New("upsert failed")},
		}},
		Steps: []StepResult{
			{Name: StepUser, Status: StepAlreadyExisted},
			{Name: StepPermissions, Status: StepFailed, Err: errors.New("1 of 2 tab grants failed")},
		},
	}

	var buf bytes.Buffer
	PrintBootstrapResult(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "COMPLETED WITH ERRORS")
	assert.Contains(t, out, "1/2 granted")
	assert.Contains(t, out, "tab Articoli: upsert failed")
	assert.Contains(t, out, "existing password still applies")
	assert.NotContains(t, out, "SECURITY REMINDERS")
}

func TestPrintBootstrapResultHidesConfiguredPassword(t *testing.T) {
	result := &AdminBootstrapResult{
		UserID:          uuid.New(),
		Email:           testEmail,
		UserCreated:     true,
		PasswordFromEnv: true,
		RoleCode:        "ADMIN",
		Steps:           []StepResult{{Name: StepUser, Status: StepSucceeded}},
	}

	var buf bytes.Buffer
	PrintBootstrapResult(&buf, result)

	assert.Contains(t, buf.String(), "configured via ADMIN_PASSWORD")
}

func TestPrintBootstrapResultUserFailed(t *testing.T) {
	result := &AdminBootstrapResult{
		Email: testEmail,
		Steps: []StepResult{{Name: StepUser, Status: StepFailed, Err: errors.New("boom")}},
	}

	var buf bytes.Buffer
	PrintBootstrapResult(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "BOOTSTRAP FAILED")
	assert.Contains(t, out, "Not provisioned")
	assert.NotContains(t, out, uuid.Nil.String())
}

func TestPrintBootstrapResultNil(t *testing.T) {
	var buf bytes.Buffer
	PrintBootstrapResult(&buf, nil)
	assert.Empty(t, buf.String())
}
