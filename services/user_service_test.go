package services_test

import (
	"testing"

	"hotel-reservation/services"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewUserService(db)

	user, err := svc.Register(services.RegisterInput{
		FullName: "Grace H",
		Username: "grace",
		Email:    "grace@example.com",
		Password: "s3cret",
	})
	require.NoError(t, err)
	require.False(t, user.IsAdmin)

	got, err := svc.Authenticate("grace", "s3cret")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	// Email works as the login identifier too.
	_, err = svc.Authenticate("grace@example.com", "s3cret")
	require.NoError(t, err)

	_, err = svc.Authenticate("grace", "wrong")
	require.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = svc.Authenticate("nobody", "s3cret")
	require.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	svc := services.NewUserService(db)

	in := services.RegisterInput{
		FullName: "First",
		Username: "dup",
		Email:    "dup@example.com",
		Password: "pw",
	}
	_, err := svc.Register(in)
	require.NoError(t, err)

	in.Email = "other@example.com"
	_, err = svc.Register(in)
	require.ErrorIs(t, err, services.ErrUsernameTaken)
}
