package supabase

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	idmerrors "github.com/tendant/wms-superadmin/pkg/errors"
)

// DefaultPerPage is the page size used when walking the user list
const DefaultPerPage = 50

// maxUserPages bounds FindUserByEmail on very large projects
const maxUserPages = 1000

// User is an auth user as returned by the admin API
type User struct {
	ID               string                 `json:"id"`
	Email            string                 `json:"email"`
	EmailConfirmedAt *time.Time             `json:"email_confirmed_at,omitempty"`
	UserMetadata     map[string]interface{} `json:"user_metadata,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

// CreateUserRequest is the admin create user payload
type CreateUserRequest struct {
	Email        string                 `json:"email"`
	Password     string                 `json:"password"`
	EmailConfirm bool                   `json:"email_confirm"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// ListUsersParams filters and pages the admin user list
type ListUsersParams struct {
	Email   string
	Page    int
	PerPage int
}

type listUsersResponse struct {
	Users []User `json:"users"`
}

// CreateUser creates an auth user through the admin API
func (c *Client) CreateUser(ctx context.Context, params CreateUserRequest) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodPost, authAdminUsersPath, nil, params)
	if err != nil {
		return nil, err
	}

	var user User
	if err := c.do(req, "create user", &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, idmerrors.New(idmerrors.ErrCodeInvalidResponse, "create user response has no id")
	}
	return &user, nil
}

// ListUsers returns one page of auth users. The email filter is passed to the API but
// not every server version applies it, so callers must still compare emails.
func (c *Client) ListUsers(ctx context.Context, params ListUsersParams) ([]User, error) {
	query := url.Values{}
	if params.Email != "" {
		query.Set("email", params.Email)
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(params.PerPage))
	}

	req, err := c.newRequest(ctx, http.MethodGet, authAdminUsersPath, query, nil)
	if err != nil {
		return nil, err
	}

	var resp listUsersResponse
	if err := c.do(req, "list users", &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// FindUserByEmail walks the user list until it finds a user whose email matches
// (case-insensitive). It returns an ErrCodeUserNotFound error when there is none.
func (c *Client) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	for page := 1; page <= maxUserPages; page++ {
		users, err := c.ListUsers(ctx, ListUsersParams{Email: email, Page: page, PerPage: DefaultPerPage})
		if err != nil {
			return nil, err
		}

		for i := range users {
			if strings.EqualFold(users[i].Email, email) {
				return &users[i], nil
			}
		}

		if len(users) < DefaultPerPage {
			break
		}
	}

	return nil, idmerrors.Newf(idmerrors.ErrCodeUserNotFound, "no auth user with email %s", email)
}
