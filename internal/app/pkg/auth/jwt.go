package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleOperator 运维人员角色，唯一允许手动完成捐赠的身份
const RoleOperator = "operator"

var (
	ErrMissingSecret = errors.New("admin jwt secret is not configured")
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrNotOperator   = errors.New("token does not carry the operator role")
)

// OperatorClaims 运维令牌声明
type OperatorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer 签发与校验运维令牌
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer 创建签发器，secret 为空时所有操作返回 ErrMissingSecret
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue 为 operator 签发 HS256 令牌
func (i *TokenIssuer) Issue(operator string) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrMissingSecret
	}
	if operator == "" {
		return "", errors.New("operator name is required")
	}

	now := time.Now()
	claims := OperatorClaims{
		Role: RoleOperator,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify 校验令牌并返回 operator 名称
func (i *TokenIssuer) Verify(tokenString string) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrMissingSecret
	}

	var claims OperatorClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.Role != RoleOperator {
		return "", ErrNotOperator
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
