package auth

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core/principal"
)

type principalGetterMock map[string]principal.Principal

func (m principalGetterMock) GetByUsername(_ context.Context, uname string) (principal.Principal, error) {
	if p, ok := m[uname]; ok {
		return p, nil
	}
	return principal.Principal{}, principal.ErrNotFound
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	alice := principal.Principal{ID: 1, Username: "alice", Role: principal.RoleProfessor}
	require.NoError(t, alice.SetPassword("pw1"))

	tokens, err := NewTokenService("Academia", "secret", "HS256", 0)
	require.NoError(t, err)
	svc := NewService(principalGetterMock{"alice": alice}, tokens)

	_, err = svc.Login(ctx, "zed", "pw1")
	assert.Equal(t, ErrAuthenticationFailed, errors.Cause(err))

	_, err = svc.Login(ctx, "alice", "nope")
	assert.Equal(t, ErrAuthenticationFailed, errors.Cause(err))

	token, err := svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	claims, err := svc.Tokens().Decode(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, principal.RoleProfessor, claims.Role)
}
