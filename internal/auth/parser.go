package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/konelease/leasing-workflow/internal/model"
)

// Parser validates HMAC-signed access tokens and extracts the Principal.
type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

type claims struct {
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

func (p *Parser) Parse(token string) (model.Principal, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return model.Principal{}, err
	}
	if !parsed.Valid {
		return model.Principal{}, fmt.Errorf("invalid token")
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return model.Principal{}, fmt.Errorf("invalid subject: %w", err)
	}
	role := model.Role(c.Role)
	switch role {
	case model.RoleCustomer, model.RoleFinancier, model.RoleAdmin:
	default:
		return model.Principal{}, fmt.Errorf("unknown role %q", c.Role)
	}

	return model.Principal{
		UserID:   userID,
		Role:     role,
		FullName: c.FullName,
		Email:    c.Email,
	}, nil
}

// Sign issues a token for a principal. Used by tests and local tooling; the
// production identity provider issues real tokens.
func (p *Parser) Sign(principal model.Principal, expiresAt jwt.NumericDate) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role:     string(principal.Role),
		FullName: principal.FullName,
		Email:    principal.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID.String(),
			ExpiresAt: &expiresAt,
		},
	})
	return token.SignedString(p.secret)
}
