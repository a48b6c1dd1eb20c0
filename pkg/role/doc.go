// Package role ensures the administrative role row exists.
//
// Roles live in the "ruoli" table keyed by "codice". EnsureRole upserts the row
// with merge-duplicates semantics, so a second run updates the description in
// place. A 409 from the backend is reported as "already existed" rather than an
// error.
//
//	repo := role.NewRestRoleRepository(client)
//	service := role.NewRoleService(repo)
//	existed, err := service.EnsureRole(ctx, "ADMIN", "Amministratore")
package role
