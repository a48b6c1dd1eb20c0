// Package user provisions the auth user of the super admin.
//
// UserProvisioner.EnsureUser creates the user with a confirmed email. If the auth
// API answers that the email is already registered (422, or 409 on some versions)
// the existing user is looked up by email instead, so running the bootstrap twice
// resolves to the same id.
//
//	provisioner := user.NewUserProvisioner(client)
//	res, err := provisioner.EnsureUser(ctx, user.EnsureUserParams{
//		Email:     "admin@example.com",
//		Password:  password,
//		FirstName: "Super",
//		LastName:  "Admin",
//	})
//	if err != nil {
//		// nothing else can run without a user id
//	}
package user
