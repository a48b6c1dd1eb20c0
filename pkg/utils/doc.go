// Package utils provides small helpers shared by the bootstrap packages.
//
// All random values come from crypto/rand.
//
//	// One-time admin password
//	password, err := utils.GeneratePassword(20)
//
//	// Safe email for log lines
//	slog.Info("Creating user", "email", utils.MaskEmail(email))
package utils
