package service

import (
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/tarsit/tarsit-api/internal/models"
	appErrors "github.com/tarsit/tarsit-api/pkg/errors"
)

// AuthConfig holds the settings needed to verify access tokens issued by the Tarsit auth service.
type AuthConfig struct {
	AccessTokenSecret string
	Issuer            string
	Audience          []string
}

// AuthService validates bearer tokens. Tokens are issued elsewhere; this service never signs.
type AuthService struct {
	config AuthConfig
	parser *jwt.Parser
	logger *zap.Logger
}

// NewAuthService constructs the token validator.
func NewAuthService(config AuthConfig, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if len(config.Audience) > 0 {
		// any one listed audience is enough
		opts = append(opts, jwt.WithAudience(config.Audience...))
	}
	return &AuthService{config: config, parser: jwt.NewParser(opts...), logger: logger}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := s.parser.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		s.logger.Debug("rejected access token", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.Caller() == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}
