package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"mebelmart-backend/internal/auth"
	"mebelmart-backend/internal/domain"
	"mebelmart-backend/internal/repository"
)

func setupUS(t *testing.T) *UserService {
	t.Helper()
	return NewUserService(
		repository.NewMemoryStore().Users(),
		auth.NewHasher(bcrypt.MinCost),
		auth.NewTokens("test-secret", time.Hour),
	)
}

func register(t *testing.T, us *UserService, email string) {
	t.Helper()
	err := us.Register(context.Background(), RegisterInput{
		Username: "Budi", Email: email, Password: "rahasia", FullName: "Budi Santoso",
	})
	require.NoError(t, err, "register %s", email)
}

func TestUser_RegisterDuplicateEmailAnyCase(t *testing.T) {
	us := setupUS(t)
	register(t, us, "Budi@Example.com")
	err := us.Register(context.Background(), RegisterInput{
		Username: "other", Email: "budi@EXAMPLE.com", Password: "x", FullName: "Other",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUser_RegisterDuplicateUsername(t *testing.T) {
	us := setupUS(t)
	register(t, us, "a@example.com")
	err := us.Register(context.Background(), RegisterInput{
		Username: "BUDI", Email: "b@example.com", Password: "x", FullName: "B",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUser_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	us := setupUS(t)
	cases := []RegisterInput{
		{Password: "x", FullName: "A"},
		{Email: "a@x.io", FullName: "A"},
		{Email: "a@x.io", Password: "x"},
		{Email: "a@x.io", Password: "x", FullName: "A", Role: "superuser"},
	}
	for i, in := range cases {
		assert.ErrorIs(t, us.Register(ctx, in), ErrValidation, "case %d", i)
	}
}

func TestUser_RegisterDefaults(t *testing.T) {
	ctx := context.Background()
	us := setupUS(t)
	require.NoError(t, us.Register(ctx, RegisterInput{Email: "Siti@Mail.com", Password: "pw", FullName: "Siti"}))

	res, err := us.Login(ctx, "siti@mail.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "siti", res.User.Username)
	assert.Equal(t, domain.RoleCustomer, res.User.Role)
	assert.Equal(t, "siti@mail.com", res.User.Email)
}

func TestUser_LoginSanitizedWithToken(t *testing.T) {
	ctx := context.Background()
	us := setupUS(t)
	register(t, us, "budi@example.com")

	res, err := us.Login(ctx, "BUDI@example.com", "rahasia")
	require.NoError(t, err)
	assert.Empty(t, res.User.Password, "password hash leaked")
	assert.NotEmpty(t, res.Token)

	me, err := us.Get(ctx, res.User.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", me.Email)
	assert.Empty(t, me.Password)
}

func TestUser_LoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	us := setupUS(t)
	register(t, us, "budi@example.com")

	_, wrongPassword := us.Login(ctx, "budi@example.com", "nope")
	_, unknownEmail := us.Login(ctx, "ghost@example.com", "rahasia")
	require.ErrorIs(t, wrongPassword, ErrUnauthorized)
	require.ErrorIs(t, unknownEmail, ErrUnauthorized)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestUser_ListUsersHidesPasswords(t *testing.T) {
	ctx := context.Background()
	us := setupUS(t)
	register(t, us, "a@example.com")
	require.NoError(t, us.Register(ctx, RegisterInput{Username: "b", Email: "b@example.com", Password: "x", FullName: "B"}))

	users, err := us.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.Password, "password leaked for %s", u.Email)
	}
}
