package middleware

import (
	"strings"

	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/service"
	"pvb-admin/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware trusts bearer tokens issued by the upstream identity provider.
type AuthMiddleware struct {
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtSvc, logger: logger}
}

// Auth requires a valid token and stores the caller identity in the request context.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return utils.ErrorResponse(c, apperrors.ErrEmptyAuthHeader, m.logger)
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return utils.ErrorResponse(c, apperrors.ErrInvalidAuthHeader, m.logger)
		}

		claims, err := m.jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			m.logger.Warn("token rejected", zap.Error(err), zap.String("ip", c.RealIP()))
			return utils.ErrorResponse(c, err, m.logger)
		}

		identity := utils.Identity{Email: claims.Email, Name: claims.Name, Role: claims.Role}
		c.SetRequest(c.Request().WithContext(utils.ContextWithIdentity(c.Request().Context(), identity)))

		return next(c)
	}
}

// OptionalAuth stores the caller identity when a valid bearer token is sent and
// lets anonymous or badly authenticated requests through unchanged.
func (m *AuthMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		scheme, token, found := strings.Cut(c.Request().Header.Get("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return next(c)
		}
		claims, err := m.jwtService.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			m.logger.Debug("ignoring invalid optional token", zap.Error(err))
			return next(c)
		}
		identity := utils.Identity{Email: claims.Email, Name: claims.Name, Role: claims.Role}
		c.SetRequest(c.Request().WithContext(utils.ContextWithIdentity(c.Request().Context(), identity)))
		return next(c)
	}
}

// RequireAdmin must run after Auth.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, err := utils.GetIdentityFromCtx(c.Request().Context())
		if err != nil {
			return utils.ErrorResponse(c, apperrors.ErrUnauthorized, m.logger)
		}
		if !identity.IsAdmin() {
			m.logger.Warn("admin route denied", zap.String("email", identity.Email), zap.String("path", c.Path()))
			return utils.ErrorResponse(c, apperrors.ErrForbidden, m.logger)
		}
		return next(c)
	}
}
