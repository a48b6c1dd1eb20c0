// Package errors provides structured errors with error codes for wms-superadmin.
//
// Remote calls against the backend return *Error values built by FromResponse, which
// keep the HTTP status and response body as details so callers can branch on expected
// statuses (a 409 from a record upsert, a 422 from a duplicate user) without parsing
// messages:
//
//	err := client.Upsert(ctx, "ruoli", row, opts)
//	if errors.IsStatus(err, http.StatusConflict) {
//		// row already there
//	}
//
//	// Details are available for reporting
//	fmt.Println(errors.StatusCode(err), errors.ResponseBody(err))
//
// Error codes are coarse and derived from the status (see MapHTTPStatusToErrorCode).
// Provisioning specific codes such as ErrCodeUserNotFound are set by the packages that
// own those conditions.
//
// Standard wrapping keeps working: errors.Is and errors.As from the standard library
// see through *Error via Unwrap.
package errors
