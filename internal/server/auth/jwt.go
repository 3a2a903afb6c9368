// Package auth turns bearer tokens issued by the identity provider into the
// Identity values that every file operation takes as its first argument.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/orgdrive/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered JWT claims plus the caller's organization
// memberships.
type Claims struct {
	jwt.RegisteredClaims
	OrgIDs []string `json:"org_ids,omitempty"`
}

// Identity is the resolved caller. The zero value is the anonymous caller.
type Identity struct {
	// TokenIdentifier is the stable external id, "issuer|subject" when the
	// token names an issuer and the bare subject otherwise.
	TokenIdentifier string
	Subject         string
	OrgIDs          []string
	Authenticated   bool
}

// Anonymous returns the unauthenticated identity.
func Anonymous() Identity {
	return Identity{}
}

// TokenIdentifier joins issuer and subject the way identities are keyed in
// the users table.
func TokenIdentifier(issuer, subject string) string {
	if issuer == "" {
		return subject
	}
	return issuer + "|" + subject
}

// GenerateToken mints an HS256 token for subject. Used by tests and by the
// client's development login.
func GenerateToken(issuer, subject string, orgIDs []string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		OrgIDs: orgIDs,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Parse validates tokenString and returns the identity it carries. When
// issuer is non-empty the token's iss claim must match it. Every failure is
// reported as common.ErrInvalidToken wrapping the parser error.
func Parse(tokenString string, secretKey []byte, issuer string) (Identity, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return Identity{}, common.ErrInvalidToken
	}

	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: %w", common.ErrInvalidToken, errors.New("missing subject"))
	}

	return Identity{
		TokenIdentifier: TokenIdentifier(claims.Issuer, claims.Subject),
		Subject:         claims.Subject,
		OrgIDs:          claims.OrgIDs,
		Authenticated:   true,
	}, nil
}
