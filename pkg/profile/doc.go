// Package profile links the auth user to its role through the "utenti_profilo" table.
//
// The profile row shares its primary key with the auth user id and is upserted on
// that key, so rerunning the bootstrap only refreshes names and role code.
package profile
