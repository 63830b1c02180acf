// Package auth verifies bearer tokens minted by the identity service. This
// service never issues tokens; it only checks the signature and resolves the
// subject to an active user.
package auth

import (
	"context"
	"errors"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/huaxuan-books/bookstore/internal/users"
)

var ErrInvalidToken = errors.New("invalid token")

type Verifier struct {
	Secret []byte
	Users  users.Store
}

// Verify checks the HS256 signature and standard claims, then loads the
// subject. Unknown or deactivated users fail verification.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*users.User, error) {
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return v.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}

	sub, err := tok.Claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	u, err := v.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !u.IsActive {
		return nil, ErrInvalidToken
	}
	return u, nil
}
