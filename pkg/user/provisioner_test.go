package user

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	idmerrors "github.com/tendant/wms-superadmin/pkg/errors"
	"github.com/tendant/wms-superadmin/pkg/supabase"
	"github.com/tendant/wms-superadmin/pkg/supabase/supabasetest"
)

// MockAuthAdmin is a mock implementation of the AuthAdmin interface
type MockAuthAdmin struct {
	mock.Mock
}

func (m *MockAuthAdmin) CreateUser(ctx context.Context, params supabase.CreateUserRequest) (*supabase.User, error) {
	args := m.Called(ctx, params)
	if u := args.Get(0); u != nil {
		return u.(*supabase.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthAdmin) FindUserByEmail(ctx context.Context, email string) (*supabase.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*supabase.User), args.Error(1)
	}
	return nil, args.Error(1)
}

var testParams = EnsureUserParams{
	Email:     "admin@example.com",
	Password:  "S3cret-Passw0rd!",
	FirstName: "Super",
	LastName:  "Admin",
}

func TestEnsureUserCreates(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	admin := new(MockAuthAdmin)
	admin.On("CreateUser", ctx, supabase.CreateUserRequest{
		Email:        "admin@example.com",
		Password:     "S3cret-Passw0rd!",
		EmailConfirm: true,
		UserMetadata: map[string]interface{}{"nome": "Super", "cognome": "Admin"},
	}).Return(&supabase.User{ID: id.String(), Email: "admin@example.com"}, nil)

	res, err := NewUserProvisioner(admin).EnsureUser(ctx, testParams)
	require.NoError(t, err)

	assert.Equal(t, id, res.ID)
	assert.True(t, res.Created)
	admin.AssertExpectations(t)
	admin.AssertNotCalled(t, "FindUserByEmail", mock.Anything, mock.Anything)
}

func TestEnsureUserDuplicateFallsBackToLookup(t *testing.T) {
	for _, status := range []int{http.StatusUnprocessableEntity, http.StatusConflict} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			ctx := context.Background()
			id := uuid.New()
			admin := new(MockAuthAdmin)
			admin.On("CreateUser", ctx, mock.Anything).
				Return(nil, idmerrors.FromResponse("create user", status, []byte(`{"error_code":"email_exists"}`)))
			admin.On("FindUserByEmail", ctx, "admin@example.com").
				Return(&supabase.User{ID: id.String(), Email: "admin@example.com"}, nil)

			res, err := NewUserProvisioner(admin).EnsureUser(ctx, testParams)
			require.NoError(t, err)

			assert.Equal(t, id, res.ID)
			assert.False(t, res.Created)
			admin.AssertExpectations(t)
		})
	}
}

func TestEnsureUserFatalErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(m *MockAuthAdmin)
		check func(t *testing.T, err error)
	}{
		{
			name: "server error",
			setup: func(m *MockAuthAdmin) {
				m.On("CreateUser", ctx, mock.Anything).
					Return(nil, idmerrors.FromResponse("create user", http.StatusInternalServerError, []byte("boom")))
			},
			check: func(t *testing.T, err error) {
				assert.Equal(t, http.StatusInternalServerError, idmerrors.StatusCode(err))
				assert.Equal(t, "boom", idmerrors.ResponseBody(err))
			},
		},
		{
			name: "duplicate but lookup finds nothing",
			setup: func(m *MockAuthAdmin) {
				m.On("CreateUser", ctx, mock.Anything).
					Return(nil, idmerrors.FromResponse("create user", http.StatusUnprocessableEntity, nil))
				m.On("FindUserByEmail", ctx, "admin@example.com").
					Return(nil, idmerrors.New(idmerrors.ErrCodeUserNotFound, "no auth user"))
			},
			check: func(t *testing.T, err error) {
				assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeUserNotFound))
			},
		},
		{
			name: "id is not a uuid",
			setup: func(m *MockAuthAdmin) {
				m.On("CreateUser", ctx, mock.Anything).
					Return(&supabase.User{ID: "42", Email: "admin@example.com"}, nil)
			},
			check: func(t *testing.T, err error) {
				assert.True(t, idmerrors.IsCode(err, idmerrors.ErrCodeInvalidResponse))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admin := new(MockAuthAdmin)
			tt.setup(admin)

			_, err := NewUserProvisioner(admin).EnsureUser(ctx, testParams)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestEnsureUserRequiresEmailAndPassword(t *testing.T) {
	admin := new(MockAuthAdmin)
	p := NewUserProvisioner(admin)

	_, err := p.EnsureUser(context.Background(), EnsureUserParams{Email: "  ", Password: "x"})
	assert.ErrorIs(t, err, ErrEmptyEmail)

	_, err = p.EnsureUser(context.Background(), EnsureUserParams{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrEmptyPassword)

	admin.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestEnsureUserAgainstBackend(t *testing.T) {
	server := supabasetest.NewServer(t)
	client, err := supabase.NewClient(server.URL, server.ServiceRoleKey())
	require.NoError(t, err)
	p := NewUserProvisioner(client)
	ctx := context.Background()

	first, err := p.EnsureUser(ctx, testParams)
	require.NoError(t, err)
	assert.True(t, first.Created)

	params := testParams
	params.Email = "ADMIN@example.com"
	second, err := p.EnsureUser(ctx, params)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.ID, second.ID)

	assert.Len(t, server.Users(), 1)
}
