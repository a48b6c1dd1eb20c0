// Package permission grants the admin role full access to every application tab.
//
// Each tab of the catalog gets one row in "ruoli_tab_abilitate" keyed by
// (ruolo_codice, tab_nome) with permesso_vista and permesso_modifica set. GrantAll
// keeps going past failed tabs and returns one result per tab. Verify reads the
// rows back to find tabs that are missing or only partly granted.
//
//	service := permission.NewPermissionService(permission.NewRestPermissionRepository(client))
//	summary, err := service.GrantAll(ctx, "ADMIN")
//	report, err := service.Verify(ctx, "ADMIN")
package permission
