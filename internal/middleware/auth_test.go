package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"alive-chat/internal/auth"
	"alive-chat/internal/mocks"
)

func setupAuthRouter(validator auth.TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(validator))
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(CtxUserID)})
	})
	return r
}

func TestAuthMiddlewareSetsDisplayID(t *testing.T) {
	validator := new(mocks.TokenValidatorMock)
	validator.On("ValidateToken", mock.Anything, "token-1").
		Return(auth.User{ID: "u-1", Email: "ana@example.com"}, nil).Once()
	router := setupAuthRouter(validator)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer token-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ana"`)
	validator.AssertExpectations(t)
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	router := setupAuthRouter(new(mocks.TokenValidatorMock))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	router := setupAuthRouter(new(mocks.TokenValidatorMock))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	validator := new(mocks.TokenValidatorMock)
	validator.On("ValidateToken", mock.Anything, "bad").
		Return(auth.User{}, auth.ErrInvalidToken).Once()
	router := setupAuthRouter(validator)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	validator.AssertExpectations(t)
}
