package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func signToken(t *testing.T, secret string, sub any, exp time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(exp).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/test", AuthRequired(testSecret), func(c *fiber.Ctx) error {
		id, _ := UserID(c)
		return c.JSON(fiber.Map{"userID": id})
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID uint
	}{
		{"string subject", "Bearer " + signToken(t, testSecret, "123", time.Hour), http.StatusOK, 123},
		{"numeric subject", "Bearer " + signToken(t, testSecret, 42, time.Hour), http.StatusOK, 42},
		{"missing header", "", http.StatusUnauthorized, 0},
		{"basic scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, 0},
		{"expired token", "Bearer " + signToken(t, testSecret, "123", -time.Hour), http.StatusUnauthorized, 0},
		{"wrong secret", "Bearer " + signToken(t, "another-secret", "123", time.Hour), http.StatusUnauthorized, 0},
		{"non numeric subject", "Bearer " + signToken(t, testSecret, "alice", time.Hour), http.StatusUnauthorized, 0},
		{"zero subject", "Bearer " + signToken(t, testSecret, "0", time.Hour), http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.expectedStatus == http.StatusOK {
				assert.EqualValues(t, tt.expectedUserID, body["userID"])
			} else {
				assert.Equal(t, "UNAUTHORIZED", body["code"])
				assert.NotEmpty(t, body["message"])
			}
		})
	}
}
