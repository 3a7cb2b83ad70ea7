package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/ioann7/api-yatube/config"

	"github.com/golang-jwt/jwt/v4"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("token is invalid or expired")

type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func IssueTokens(userID uint64) (pair TokenPair, err error) {
	if pair.Access, err = issueToken(userID, TokenTypeAccess, config.JWT_ACCESS_TTL); err != nil {
		return
	}
	pair.Refresh, err = issueToken(userID, TokenTypeRefresh, config.JWT_REFRESH_TTL)
	return
}

func IssueAccessToken(userID uint64) (string, error) {
	return issueToken(userID, TokenTypeAccess, config.JWT_ACCESS_TTL)
}

func issueToken(userID uint64, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatUint(userID, 10),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWT_SECRET))
}

// ParseToken validates signature, expiry and type and returns the user ID
func ParseToken(tokenString, tokenType string) (uint64, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(config.JWT_SECRET), nil
	})
	if err != nil || !token.Valid || claims.TokenType != tokenType {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
