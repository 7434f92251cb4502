package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"neetprep/backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "testsecret", JWTTTL: time.Hour}
}

// extract runs ExtractUserIDFromToken inside a fiber handler with the given
// Authorization header.
func extract(t *testing.T, cfg *config.Config, header string) (uint, error) {
	t.Helper()
	var (
		id  uint
		err error
	)
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		id, err = ExtractUserIDFromToken(c, cfg)
		return c.SendStatus(fiber.StatusOK)
	})
	req := httptest.NewRequest("GET", "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	_, testErr := app.Test(req)
	require.NoError(t, testErr)
	return id, err
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateJWTToken(42, cfg)
	require.NoError(t, err)

	id, err := extract(t, cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	id, err = extract(t, cfg, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestTokenRejected(t *testing.T) {
	cfg := testConfig()

	_, err := extract(t, cfg, "")
	assert.Error(t, err)

	other := &config.Config{JWTSecret: "othersecret", JWTTTL: time.Hour}
	token, err := GenerateJWTToken(1, other)
	require.NoError(t, err)
	_, err = extract(t, cfg, token)
	assert.Error(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := expired.SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)
	_, err = extract(t, cfg, signed)
	assert.Error(t, err)
}

func TestSubjectID(t *testing.T) {
	assert.Equal(t, "17", SubjectID(17))
}
