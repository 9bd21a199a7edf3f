package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/fenggwsx/ReminderBot/internal/config"
)

// ErrRegistrationDisabled is returned when no signing secret is configured.
var ErrRegistrationDisabled = errors.New("registration codes are disabled")

// Claims identifies the chat that asked to be registered.
type Claims struct {
	ChatID   int64  `json:"cid"`
	ChatName string `json:"cname"`
	jwt.RegisteredClaims
}

// NewRegistrationCode signs a code the chat owner can approve from the CLI.
func NewRegistrationCode(cfg config.RegistrationConfig, chatID int64, chatName string) (string, error) {
	if cfg.Secret == "" {
		return "", ErrRegistrationDisabled
	}
	now := time.Now()
	claims := Claims{
		ChatID:   chatID,
		ChatName: chatName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.Expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    cfg.Issuer,
			Subject:   strconv.FormatInt(chatID, 10),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ParseRegistrationCode validates code and extracts its claims.
func ParseRegistrationCode(cfg config.RegistrationConfig, code string) (*Claims, error) {
	if cfg.Secret == "" {
		return nil, ErrRegistrationDisabled
	}
	token, err := jwt.ParseWithClaims(code, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(cfg.Issuer))
	if err != nil {
		return nil, errors.Wrap(err, "parse registration code")
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}
