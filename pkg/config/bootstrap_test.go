package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func signKey(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-jwt-secret"))
	require.NoError(t, err)
	return token
}

func serviceKey(t *testing.T) string {
	return signKey(t, jwt.MapClaims{
		"iss":  "supabase",
		"ref":  "testproject",
		"role": ServiceRole,
		"exp":  testNow.Add(24 * time.Hour).Unix(),
	})
}

func validConfig(t *testing.T) *BootstrapConfig {
	return &BootstrapConfig{
		SupabaseURL:    "https://testproject.supabase.co",
		ServiceRoleKey: serviceKey(t),
		RequestTimeout: 30 * time.Second,
		AdminEmail:     "admin@example.com",
		AdminFirstName: "Super",
		AdminLastName:  "Admin",
		AdminRoleCode:  "ADMIN",
		PasswordLength: 20,
		LogLevel:       "info",
	}
}

func TestLoadBootstrapConfigDefaults(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://testproject.supabase.co/ ")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", " sb_secret_abc ")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")

	cfg, err := LoadBootstrapConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://testproject.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, "sb_secret_abc", cfg.ServiceRoleKey)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "ADMIN", cfg.AdminRoleCode)
	assert.Equal(t, "Amministratore", cfg.AdminRoleDescription)
	assert.Equal(t, 20, cfg.PasswordLength)
	assert.False(t, cfg.Strict)
	assert.False(t, cfg.PasswordFromEnv())
	assert.NoError(t, cfg.Validate(testNow))
}

func TestLoadBootstrapConfigFromEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "bootstrap.env")
	require.NoError(t, os.WriteFile(envFile, []byte("BOOTSTRAP_TEST_ONLY_VALUE=from-file\nADMIN_ROLE_DESCRIPTION=Root\n"), 0o600))
	t.Setenv("ADMIN_ROLE_DESCRIPTION", "from-env")
	t.Cleanup(func() { os.Unsetenv("BOOTSTRAP_TEST_ONLY_VALUE") })

	cfg, err := LoadBootstrapConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "from-file", os.Getenv("BOOTSTRAP_TEST_ONLY_VALUE"))
	// real environment wins over the file
	assert.Equal(t, "from-env", cfg.AdminRoleDescription)
}

func TestLoadBootstrapConfigMissingEnvFile(t *testing.T) {
	_, err := LoadBootstrapConfig(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadBootstrapConfigBadDuration(t *testing.T) {
	t.Setenv("BOOTSTRAP_REQUEST_TIMEOUT", "soon")

	_, err := LoadBootstrapConfig("")
	assert.Error(t, err)
}

func TestValidateServiceKey(t *testing.T) {
	testCases := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "service role jwt", key: serviceKey(t)},
		{name: "opaque secret key", key: "sb_secret_0123456789abcdef"},
		{name: "missing", key: "", wantErr: true},
		{name: "placeholder", key: "your-service-role-key", wantErr: true},
		{name: "publishable key", key: "sb_publishable_0123456789", wantErr: true},
		{name: "anon jwt", key: signKey(t, jwt.MapClaims{"role": "anon"}), wantErr: true},
		{name: "expired jwt", key: signKey(t, jwt.MapClaims{"role": ServiceRole, "exp": testNow.Add(-time.Minute).Unix()}), wantErr: true},
		{name: "malformed jwt", key: "not.a.jwt", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.ServiceRoleKey = tc.key

			err := cfg.Validate(testNow)
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.True(t, verrs.HasField("SUPABASE_SERVICE_ROLE_KEY"), verrs.Error())
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := &BootstrapConfig{
		SupabaseURL:   "ftp://example.com",
		AdminEmail:    "not-an-email",
		AdminPassword: "short",
		LogLevel:      "loud",
	}

	err := cfg.Validate(testNow)
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	for _, field := range []string{
		"SUPABASE_URL",
		"SUPABASE_SERVICE_ROLE_KEY",
		"BOOTSTRAP_REQUEST_TIMEOUT",
		"ADMIN_EMAIL",
		"ADMIN_PASSWORD",
		"ADMIN_FIRST_NAME",
		"ADMIN_LAST_NAME",
		"ADMIN_ROLE_CODE",
		"ADMIN_PASSWORD_LENGTH",
		"LOG_LEVEL",
	} {
		assert.True(t, verrs.HasField(field), "expected error for %s", field)
	}
	assert.Contains(t, err.Error(), "configuration validation failed:")
}

func TestInspectServiceKey(t *testing.T) {
	info, verr := InspectServiceKey("key", serviceKey(t), testNow)
	require.Nil(t, verr)

	assert.True(t, info.IsJWT)
	assert.Equal(t, ServiceRole, info.Role)
	assert.Equal(t, "testproject", info.ProjectRef)
	require.NotNil(t, info.ExpiresAt)
	assert.Equal(t, testNow.Add(24*time.Hour).Unix(), info.ExpiresAt.Unix())

	info, verr = InspectServiceKey("key", "sb_secret_abc", testNow)
	require.Nil(t, verr)
	assert.False(t, info.IsJWT)
}

func TestLogValueHidesSecrets(t *testing.T) {
	cfg := validConfig(t)
	cfg.AdminPassword = "S3cret-Passw0rd!"

	rendered := cfg.LogValue().String()

	assert.NotContains(t, rendered, cfg.ServiceRoleKey)
	assert.NotContains(t, rendered, cfg.AdminPassword)
	assert.Contains(t, rendered, "testproject.supabase.co")
}

func TestSlogLevel(t *testing.T) {
	cfg := validConfig(t)

	cfg.LogLevel = "debug"
	assert.Equal(t, "DEBUG", cfg.SlogLevel().String())

	cfg.LogLevel = "bogus"
	assert.Equal(t, "INFO", cfg.SlogLevel().String())
}
