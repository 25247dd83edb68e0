package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials is what the sync engine needs from the auth layer: the bearer
// token for gateway requests and the user id for the push channel handshake.
type Credentials struct {
	Token  string
	UserID string
}

// Provider hands out the current credentials. Token storage and refresh are
// outside this module; implementations just return whatever is current.
type Provider interface {
	Credentials() (Credentials, error)
}

// StaticProvider returns fixed credentials from configuration. When UserID is
// empty but a token is present, the user id is extracted from the token claims.
type StaticProvider struct {
	token  string
	userID string
}

func NewStaticProvider(token, userID string) (*StaticProvider, error) {
	if userID == "" && token != "" {
		extracted, err := UserIDFromToken(token)
		if err != nil {
			return nil, fmt.Errorf("failed to extract user id from token: %w", err)
		}
		userID = extracted
	}
	return &StaticProvider{token: token, userID: userID}, nil
}

func (p *StaticProvider) Credentials() (Credentials, error) {
	if p.userID == "" {
		return Credentials{}, fmt.Errorf("no user id configured")
	}
	return Credentials{Token: p.token, UserID: p.userID}, nil
}

// UserIDFromToken extracts the user id claim from a JWT without verifying the
// signature. The client never holds the signing secret; the server validates
// the token on every request, this is only for the ws auth frame.
func UserIDFromToken(tokenStr string) (string, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenMalformed
	}

	if userID, ok := claims["user_id"].(string); ok && userID != "" {
		return userID, nil
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub, nil
	}

	return "", fmt.Errorf("token carries no user id claim")
}
