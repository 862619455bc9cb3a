package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konelease/leasing-workflow/internal/model"
)

func TestParseRoundTrip(t *testing.T) {
	parser := NewParser("test-secret")
	principal := model.Principal{
		UserID:   uuid.New(),
		Role:     model.RoleFinancier,
		FullName: "Frans Rahoittaja",
		Email:    "frans@example.com",
	}

	token, err := parser.Sign(principal, *jwt.NewNumericDate(time.Now().Add(time.Hour)))
	require.NoError(t, err)

	parsed, err := parser.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, principal, parsed)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signer := NewParser("secret-a")
	token, err := signer.Sign(model.Principal{
		UserID: uuid.New(),
		Role:   model.RoleCustomer,
	}, *jwt.NewNumericDate(time.Now().Add(time.Hour)))
	require.NoError(t, err)

	_, err = NewParser("secret-b").Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	parser := NewParser("test-secret")
	token, err := parser.Sign(model.Principal{
		UserID: uuid.New(),
		Role:   model.RoleCustomer,
	}, *jwt.NewNumericDate(time.Now().Add(-time.Minute)))
	require.NoError(t, err)

	_, err = parser.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsUnknownRole(t *testing.T) {
	parser := NewParser("test-secret")
	token, err := parser.Sign(model.Principal{
		UserID: uuid.New(),
		Role:   "AUDITOR",
	}, *jwt.NewNumericDate(time.Now().Add(time.Hour)))
	require.NoError(t, err)

	_, err = parser.Parse(token)
	assert.Error(t, err)
}
