package util

import (
	"errors"
	"log/slog"

	"github.com/golang-jwt/jwt"
)

func parseToken(secret string, tokenString string) (jwt.MapClaims, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		slog.Warn("token validation failed", "error", err)
		return nil, false
	}
	if !token.Valid {
		slog.Warn("token is expired")
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		slog.Warn("failed to read token claims")
		return nil, false
	}
	return claims, true
}

// IsValidGatewayToken checks the token the chat sidecar presents when it
// connects to the engine websocket.
func IsValidGatewayToken(secret string, tokenString string) bool {
	claims, ok := parseToken(secret, tokenString)
	if !ok {
		return false
	}
	return claims["role"] == "GATEWAY"
}

// IsValidOperatorToken checks the token required by the status API.
func IsValidOperatorToken(secret string, tokenString string) bool {
	claims, ok := parseToken(secret, tokenString)
	if !ok {
		return false
	}
	return claims["role"] == "OPERATOR"
}
