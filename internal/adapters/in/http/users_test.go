package http_test

import (
	"net/http"
	"testing"
	"time"

	httpadapter "exportdocs/internal/adapters/in/http"
	"exportdocs/internal/core/application/usecases/commands"
	"exportdocs/internal/core/application/usecases/queries"
	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/user"
	"exportdocs/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateUserPassesActorAndRole(t *testing.T) {
	f := newFixture(t)
	created, err := user.NewUser(kernel.NewUUID(), "packer", "Desk Packer", "password123", user.Role{Admin: true})
	require.NoError(t, err)

	f.users.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreateUserCommand) bool {
		return cmd.ActorID() == f.clerk.ID() && !cmd.IsBootstrap() &&
			cmd.Username() == "packer" && cmd.Role().Admin && !cmd.Role().Superuser
	})).Return(created, nil)

	rec := f.do(http.MethodPost, "/api/users",
		`{"username": "packer", "name": "Desk Packer", "password": "password123", "is_admin": true}`, true)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decode[httpadapter.UserResponse](t, rec)
	assert.Equal(t, "packer", resp.Username)
	assert.True(t, resp.IsAdmin)
	assert.NotContains(t, rec.Body.String(), "password")
	f.users.AssertExpectations(t)
}

func TestCreateUserErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"short password", `{"username": "packer", "name": "Desk Packer", "password": "short"}`, nil, http.StatusBadRequest},
		{"missing name", `{"username": "packer", "password": "password123"}`, nil, http.StatusBadRequest},
		{"forbidden", `{"username": "packer", "name": "Desk Packer", "password": "password123"}`, commands.ErrActorIsNotAuthorized, http.StatusForbidden},
		{"taken", `{"username": "packer", "name": "Desk Packer", "password": "password123"}`, ports.ErrDuplicateUsername, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.users.On("Handle", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := f.do(http.MethodPost, "/api/users", tt.body, true)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.err == nil {
				f.users.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	listed := []queries.UserSummary{{ID: f.clerk.ID(), Username: "clerk", Name: "Nok Clerk", CreatedAt: time.Now()}}
	f.accounts.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.ListUsersQuery) bool {
		return q.ActorID() == f.clerk.ID()
	})).Return(listed, nil)

	rec := f.do(http.MethodGet, "/api/users", "", true)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[[]httpadapter.UserResponse](t, rec)
	require.Len(t, resp, 1)
	assert.Equal(t, "clerk", resp[0].Username)
}

func TestListUsersByClerkIsForbidden(t *testing.T) {
	f := newFixture(t)
	f.accounts.On("Handle", mock.Anything, mock.Anything).Return(nil, queries.ErrActorIsNotAdministrator)

	rec := f.do(http.MethodGet, "/api/users", "", true)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestResetUserPassword(t *testing.T) {
	target := kernel.NewUUID()

	tests := []struct {
		name       string
		path       string
		body       string
		err        error
		wantStatus int
	}{
		{"reset", target.String(), `{"new_password": "new-password"}`, nil, http.StatusNoContent},
		{"forbidden", target.String(), `{"new_password": "new-password"}`, commands.ErrActorIsNotAuthorized, http.StatusForbidden},
		{"short password", target.String(), `{"new_password": "short"}`, nil, http.StatusBadRequest},
		{"malformed id", "not-a-uuid", `{"new_password": "new-password"}`, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.resetter.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ResetUserPasswordCommand) bool {
				return cmd.ActorID() == f.clerk.ID() && cmd.UserID() == target && cmd.NewPassword() == "new-password"
			})).Return(tt.err)

			rec := f.do(http.MethodPost, "/api/users/"+tt.path+"/password", tt.body, true)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestDeleteUser(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"own account", commands.ErrCannotDeleteOwnAccount, http.StatusConflict},
		{"last administrator", commands.ErrLastAdministrator, http.StatusConflict},
		{"forbidden", commands.ErrActorIsNotAuthorized, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			target := kernel.NewUUID()
			f.deleter.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.DeleteUserCommand) bool {
				return cmd.ActorID() == f.clerk.ID() && cmd.UserID() == target
			})).Return(tt.err)

			rec := f.do(http.MethodDelete, "/api/users/"+target.String(), "", true)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			f.deleter.AssertExpectations(t)
		})
	}
}

func TestChangePassword(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		called     bool
	}{
		{"changed", `{"current_password": "password123", "new_password": "new-password", "confirm_password": "new-password"}`, nil, http.StatusNoContent, true},
		{"wrong current password", `{"current_password": "nope", "new_password": "new-password", "confirm_password": "new-password"}`, commands.ErrCurrentPasswordIsWrong, http.StatusBadRequest, true},
		{"mismatched confirmation", `{"current_password": "password123", "new_password": "new-password", "confirm_password": "other-password"}`, nil, http.StatusBadRequest, false},
		{"missing confirmation", `{"current_password": "password123", "new_password": "new-password"}`, nil, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.changer.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ChangePasswordCommand) bool {
				return cmd.UserID() == f.clerk.ID()
			})).Return(tt.err)

			rec := f.do(http.MethodPost, "/api/me/password", tt.body, true)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if !tt.called {
				f.changer.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestUserRoutesRequireCredentials(t *testing.T) {
	f := newFixture(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/users"},
		{http.MethodPost, "/api/me/password"},
		{http.MethodDelete, "/api/users/" + kernel.NewUUID().String()},
		{http.MethodGet, "/api/contacts"},
	} {
		rec := f.do(route.method, route.path, "", false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, route.path)
	}
}

func TestListContactsQueryParameters(t *testing.T) {
	testCases := []struct {
		name    string
		query   string
		kind    queries.ContactKind
		page    int
		perPage int
	}{
		{name: "no parameters", query: "", kind: queries.ContactKindAll, page: 1, perPage: queries.DefaultPerPage},
		{name: "senders", query: "?type=sender", kind: queries.ContactKindSender, page: 1, perPage: queries.DefaultPerPage},
		{name: "receivers second page", query: "?type=receiver&page=2&per_page=5", kind: queries.ContactKindReceiver, page: 2, perPage: 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.contacts.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.ListContactsQuery) bool {
				return q.Kind() == tc.kind && q.Page() == tc.page && q.PerPage() == tc.perPage
			})).Return(queries.ContactPage{
				Items:      []queries.ContactEntry{{Kind: queries.ContactKindSender, Name: "Somchai Export", Mobile: "0812345678"}},
				Page:       tc.page,
				PerPage:    tc.perPage,
				Total:      1,
				TotalPages: 1,
			}, nil)

			rec := f.do(http.MethodGet, "/api/contacts"+tc.query, "", true)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			resp := decode[httpadapter.ContactPageResponse](t, rec)
			require.Len(t, resp.Items, 1)
			assert.Equal(t, "sender", resp.Items[0].Type)
			assert.Equal(t, "Somchai Export", resp.Items[0].Name)
			f.contacts.AssertExpectations(t)
		})
	}
}

func TestListContactsRejectsInvalidParameters(t *testing.T) {
	for _, query := range []string{"?type=supplier", "?page=0", "?per_page=500", "?page=two"} {
		t.Run(query, func(t *testing.T) {
			f := newFixture(t)

			rec := f.do(http.MethodGet, "/api/contacts"+query, "", true)

			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			f.contacts.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
		})
	}
}
