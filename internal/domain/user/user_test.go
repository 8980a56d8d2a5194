package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	u, err := NewUser(CreateParams{
		ID:           "u1",
		Email:        "  Admin@Cabins.Test ",
		Name:         "Admin",
		PasswordHash: "hash",
		Roles:        []Role{"ADMIN", "admin", "staff"},
		CreatedAt:    now,
	})
	require.NoError(t, err)
	assert.Equal(t, "admin@cabins.test", u.Email)
	assert.Equal(t, []Role{RoleAdmin, RoleStaff}, u.Roles)
	assert.True(t, u.HasRole(RoleAdmin))
	assert.Equal(t, now, u.CreatedAt)
}

func TestNewUserValidation(t *testing.T) {
	base := CreateParams{ID: "u1", Email: "a@b.c", Name: "A", PasswordHash: "h"}
	tests := []struct {
		name   string
		mutate func(p *CreateParams)
		want   error
	}{
		{name: "id", mutate: func(p *CreateParams) { p.ID = " " }, want: ErrIDRequired},
		{name: "email", mutate: func(p *CreateParams) { p.Email = "" }, want: ErrEmailRequired},
		{name: "hash", mutate: func(p *CreateParams) { p.PasswordHash = "" }, want: ErrPasswordHashMissing},
		{name: "name", mutate: func(p *CreateParams) { p.Name = "" }, want: ErrNameRequired},
		{name: "role", mutate: func(p *CreateParams) { p.Roles = []Role{"guest"} }, want: ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			_, err := NewUser(p)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDefaultRoleIsStaff(t *testing.T) {
	u, err := NewUser(CreateParams{ID: "u1", Email: "a@b.c", Name: "A", PasswordHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, []Role{RoleStaff}, u.Roles)
	assert.False(t, u.HasRole(RoleAdmin))
}
