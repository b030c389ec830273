package services

import (
	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"

	"github.com/82deutschmark/Disavowed/shared"
)

// AuthMiddleware resolves the caller's identity. Accounts authenticate with
// a bearer token; guests identify themselves with the X-Player-ID header
// issued at session creation.
type AuthMiddleware struct {
	context.DefaultService

	jwtSvc *JWTService
}

const AUTH_MIDDLEWARE_SVC = "auth"

func (svc AuthMiddleware) Id() string {
	return AUTH_MIDDLEWARE_SVC
}

func (svc *AuthMiddleware) Configure(ctx *context.Context) error {
	svc.jwtSvc = ctx.Service(JWT_SVC).(*JWTService)
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthMiddleware) Start() error {
	return nil
}

// RequiredAuth admits only bearer-token requests.
func (svc *AuthMiddleware) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := svc.jwtSvc.ExtractTokenFromHeader(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return shared.NewUnauthorizedError(err, "Unauthorized")
		}

		userID, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil || userID == "" {
			return shared.NewUnauthorizedError(err, "Invalid JWT token")
		}

		c.Locals(shared.UserID, userID)
		c.Locals(shared.PlayerID, "user_"+userID)
		return c.Next()
	}
}

// PlayerContext admits both account holders and guests. A valid bearer token
// wins over the guest header when both are present.
func (svc *AuthMiddleware) PlayerContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
			token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
			if err != nil {
				return shared.NewUnauthorizedError(err, "Unauthorized")
			}
			userID, err := svc.jwtSvc.VerifyJWTToken(token)
			if err != nil || userID == "" {
				return shared.NewUnauthorizedError(err, "Invalid JWT token")
			}
			c.Locals(shared.UserID, userID)
			c.Locals(shared.PlayerID, "user_"+userID)
			return c.Next()
		}

		playerID := c.Get(shared.PlayerHeader)
		if playerID == "" {
			return shared.NewUnauthorizedError(nil, "Player identity required")
		}
		c.Locals(shared.PlayerID, playerID)
		return c.Next()
	}
}
