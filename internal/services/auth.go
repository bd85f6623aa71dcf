package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/fitpilot/fitpilot-backend/internal/pkg/errors"
	"github.com/fitpilot/fitpilot-backend/internal/platform/ctxutil"
	"github.com/fitpilot/fitpilot-backend/internal/platform/logger"
)

// AuthService verifies bearer tokens minted by the account service. Tokens are
// HS256 with the user uuid as subject.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	IssueAccessToken(userID uuid.UUID) (string, error)
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey string
	accessTTL    time.Duration
	now          func() time.Time
}

func NewAuthService(log *logger.Logger, jwtSecretKey string, accessTTL time.Duration) AuthService {
	serviceLog := log.With("service", "AuthService")
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &authService{log: serviceLog, jwtSecretKey: jwtSecretKey, accessTTL: accessTTL, now: time.Now}
}

// IssueAccessToken is used by local tooling and tests; production tokens come
// from the account service with the same secret.
func (as *authService) IssueAccessToken(userID uuid.UUID) (string, error) {
	if as.jwtSecretKey == "" {
		return "", errors.New("jwt secret not configured")
	}
	now := as.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, fmt.Errorf("%w: missing token", pkgerrors.ErrUnauthorized)
	}
	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(as.now))
	parsedToken, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("%w: parse token: %v", pkgerrors.ErrUnauthorized, err)
	}
	if !parsedToken.Valid {
		return ctx, fmt.Errorf("%w: invalid or expired token", pkgerrors.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("%w: invalid user id in token", pkgerrors.ErrUnauthorized)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: userID}), nil
}
