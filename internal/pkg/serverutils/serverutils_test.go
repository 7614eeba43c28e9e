package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"marketing-assistant-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Message string `json:"message" validate:"required"`
	URL     string `json:"url" validate:"omitempty,url"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Message: "hi"}))

	err := ValidateRequest(sampleRequest{URL: "nope"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "message is required", verr.Errors["message"])
	assert.Equal(t, "url must be a valid URL", verr.Errors["url"])
	assert.Equal(t, "message is required, url must be a valid URL", err.Error())
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&ValidationError{Errors: map[string]string{"a": "b"}}, 400},
		{apperror.NewInputError("url", "invalid"), 400},
		{apperror.ErrEmptyInput, 400},
		{&json.SyntaxError{}, 400},
		{fiber.NewError(fiber.StatusUnprocessableEntity, "x"), 422},
		{errors.New("boom"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusCode(tt.err), tt.err.Error())
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/bad", func(ctx *fiber.Ctx) error { return apperror.NewInputError("message", "is required") })

	resp, err := app.Test(httptest.NewRequest("GET", "/bad", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var out BaseResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.False(t, out.Success)
	assert.Equal(t, "message: is required", out.Message)
}

func TestJwtMiddleware(t *testing.T) {
	const secret = "test-secret"
	app := fiber.New()
	app.Get("/private", JwtMiddleware(secret), func(ctx *fiber.Ctx) error {
		return ctx.SendString(ctx.Locals("user_id").(string))
	})

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "admin-1", string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/private", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	bad := httptest.NewRequest("GET", "/private", nil)
	bad.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(bad)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
