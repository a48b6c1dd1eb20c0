// Package config loads and validates the bootstrap configuration.
//
// Configuration comes from environment variables read with cleanenv struct tags. An
// optional dotenv file is loaded first with godotenv; variables already set in the
// environment are never overridden by the file.
//
//	cfg, err := config.LoadBootstrapConfig("")
//	if err != nil {
//		return err
//	}
//	if err := cfg.Validate(time.Now()); err != nil {
//		// every problem is listed, nothing has touched the network yet
//		return err
//	}
//
// # Environment Variables
//
//	SUPABASE_URL                 project base URL (required)
//	SUPABASE_SERVICE_ROLE_KEY    service role JWT or secret key (required)
//	ADMIN_EMAIL                  super admin email (required)
//	ADMIN_PASSWORD               super admin password (optional, generated when unset)
//	ADMIN_FIRST_NAME             default "Super"
//	ADMIN_LAST_NAME              default "Admin"
//	ADMIN_ROLE_CODE              default "ADMIN"
//	ADMIN_ROLE_DESCRIPTION       default "Amministratore"
//	ADMIN_PASSWORD_LENGTH        generated password length, default 20
//	BOOTSTRAP_REQUEST_TIMEOUT    per request timeout, default 30s
//	BOOTSTRAP_STRICT             non-zero exit when a best-effort step fails
//	LOG_LEVEL                    debug, info, warn or error
//
// # Service Credential
//
// The credential has no default. Empty values and well known placeholders are
// rejected. When the key is a JWT its claims are read without verifying the signature:
// the role claim must be service_role and the token must not be expired. Opaque secret
// keys are accepted, publishable keys are not.
//
// # Validation
//
// Validators follow a collect-then-report pattern:
//
//	return config.Validate(
//		func() config.ValidationErrors {
//			return config.CollectErrors(
//				config.RequireValidURL("SUPABASE_URL", c.SupabaseURL),
//				config.RequireValidEmail("ADMIN_EMAIL", c.AdminEmail),
//			)
//		},
//	)
package config
