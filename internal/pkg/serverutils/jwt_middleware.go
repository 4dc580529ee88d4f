package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JwtMiddleware guards the ingestion endpoints. When no secret is
// configured the deployment is treated as open (local development, batch
// indexing against a private network) and requests pass through.
func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret == "" {
			return ctx.Next()
		}

		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("unauthorized", "Missing token"))
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("unauthorized", "Invalid token"))
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			ctx.Locals("subject", claims["sub"])
		}
		return ctx.Next()
	}
}
