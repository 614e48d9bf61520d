package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newProtectedApp(secret string) *fiber.App {
	app := fiber.New()
	app.Use(JWTProtected(secret))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"role":    c.Locals("user_role"),
		})
	})
	return app
}

func TestJWTProtectedSetsIdentity(t *testing.T) {
	app := newProtectedApp("secret")
	token := signToken(t, "secret", jwt.MapClaims{"sub": float64(42), "role": "Teacher"})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTProtectedRejectsMissingHeader(t *testing.T) {
	app := newProtectedApp("secret")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTProtectedRejectsWrongSecret(t *testing.T) {
	app := newProtectedApp("secret")
	token := signToken(t, "other-secret", jwt.MapClaims{"sub": float64(42)})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestExtractUserIDFromClaims(t *testing.T) {
	id := extractUserIDFromClaims(jwt.MapClaims{"user_id": "17"})
	require.NotNil(t, id)
	require.Equal(t, uint(17), *id)

	require.Nil(t, extractUserIDFromClaims(jwt.MapClaims{"sub": "not-a-number"}))
}

func TestExtractUserRoleFromClaims(t *testing.T) {
	require.Equal(t, "admin", extractUserRoleFromClaims(jwt.MapClaims{"role": " Admin "}))
	require.Equal(t, "teacher", extractUserRoleFromClaims(jwt.MapClaims{"roles": []interface{}{"Teacher", "student"}}))
	require.Empty(t, extractUserRoleFromClaims(jwt.MapClaims{}))
}
