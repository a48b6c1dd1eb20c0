package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ServiceRole is the role claim carried by a service role JWT
const ServiceRole = "service_role"

// PlaceholderServiceKeys are sample values from docs and templates that are never a
// working credential
var PlaceholderServiceKeys = []string{
	"your-service-role-key",
	"your_service_role_key",
	"<service-role-key>",
	"changeme",
}

// publishableKeyPrefix marks the client-side key format; it never has admin access
const publishableKeyPrefix = "sb_publishable_"

// ServiceKeyInfo describes what could be read from a service credential without
// verifying its signature
type ServiceKeyInfo struct {
	// IsJWT is false for opaque secret keys
	IsJWT      bool
	Role       string
	ProjectRef string
	ExpiresAt  *time.Time
}

// InspectServiceKey checks that key looks like an administrative credential.
// JWT keys must carry role=service_role and must not be expired. Opaque keys are
// accepted unless they use the publishable prefix.
func InspectServiceKey(field, key string, now time.Time) (ServiceKeyInfo, *ValidationError) {
	var info ServiceKeyInfo

	if strings.HasPrefix(key, publishableKeyPrefix) {
		return info, &ValidationError{Field: field, Message: "is a publishable key, a secret or service role key is required"}
	}

	if strings.Count(key, ".") != 2 {
		return info, nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return info, &ValidationError{Field: field, Message: fmt.Sprintf("malformed JWT: %v", err)}
	}
	info.IsJWT = true
	info.Role, _ = claims["role"].(string)
	info.ProjectRef, _ = claims["ref"].(string)

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return info, &ValidationError{Field: field, Message: fmt.Sprintf("invalid exp claim: %v", err)}
	}
	if exp != nil {
		t := exp.Time
		info.ExpiresAt = &t
	}

	if info.Role != ServiceRole {
		return info, &ValidationError{Field: field, Message: fmt.Sprintf("role claim must be %q, got %q", ServiceRole, info.Role)}
	}
	if info.ExpiresAt != nil && !info.ExpiresAt.After(now) {
		return info, &ValidationError{Field: field, Message: fmt.Sprintf("expired at %s", info.ExpiresAt.UTC().Format(time.RFC3339))}
	}

	return info, nil
}
