package jwt

import (
	"testing"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_AccessTokenClaims(t *testing.T) {
	svc := NewJWTService("test-secret-key-for-jwt", "1h")

	token, expiresAt, err := svc.GenerateAccessToken(user.Actor{EmployeeID: "E001", Role: user.RoleHOD})
	require.NoError(t, err)
	assert.NotZero(t, expiresAt)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	role, _ := decoded.Get("role")
	assert.Equal(t, "HOD", role)
	id, _ := decoded.Get("employee_id")
	assert.Equal(t, "E001", id)
}

func TestJWTService_SSEToken(t *testing.T) {
	svc := NewJWTService("test-secret-key-for-jwt", "1h")

	token, expiresIn, err := svc.GenerateSSEToken("E001")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	id, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "E001", id)

	access, _, err := svc.GenerateAccessToken(user.Actor{EmployeeID: "E001", Role: user.RoleEmployee})
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.Error(t, err, "access token is not an SSE token")
}

func TestJWTService_InvalidDuration(t *testing.T) {
	svc := NewJWTService("secret", "soon")
	_, _, err := svc.GenerateAccessToken(user.Actor{EmployeeID: "E001", Role: user.RoleEmployee})
	assert.Error(t, err)
}
