package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("secret")

func hmacKeyfunc(token *jwt.Token) (any, error) {
	return testSecret, nil
}

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	return token
}

// serve runs the auth middleware followed by handler and returns the user it saw.
func serve(t *testing.T, app *App, authorization string, mws ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, *AppUser) {
	t.Helper()
	e := echo.New()
	var seen *AppUser
	handler := func(c echo.Context) error {
		seen = c.(*AppContext).User
		return c.NoContent(http.StatusNoContent)
	}
	chain := append([]echo.MiddlewareFunc{AppContextMiddleware(app), AuthMiddleware}, mws...)
	e.GET("/", handler, chain...)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	rec, user := serve(t, &App{}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, user)

	rec, _ = serve(t, &App{}, "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_MasterKey(t *testing.T) {
	app := &App{MasterAPIKey: "master", MasterUserID: "7", MasterUserRole: "admin"}

	rec, user := serve(t, app, "Bearer master")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, "7", user.UserID)
	assert.ElementsMatch(t, allPermissions, user.Permissions)

	rec, _ = serve(t, app, "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_MasterKeyNeedsUser(t *testing.T) {
	rec, _ := serve(t, &App{MasterAPIKey: "master"}, "Bearer master")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_JWT(t *testing.T) {
	app := &App{Key: hmacKeyfunc}

	token := sign(t, jwt.MapClaims{
		"id":          float64(42),
		"role":        "user",
		"permissions": []any{PermissionGraphView},
	})
	rec, user := serve(t, app, "Bearer "+token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "42", user.UserID)
	assert.Equal(t, "user", user.Role)
	assert.Equal(t, []string{PermissionGraphView}, user.Permissions)
}

func TestAuthMiddleware_AdminGetsAllPermissions(t *testing.T) {
	token := sign(t, jwt.MapClaims{"id": "abc", "role": "admin"})
	rec, user := serve(t, &App{Key: hmacKeyfunc}, "Bearer "+token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "abc", user.UserID)
	assert.ElementsMatch(t, allPermissions, user.Permissions)
}

func TestAuthMiddleware_InvalidJWT(t *testing.T) {
	rec, _ := serve(t, &App{Key: hmacKeyfunc}, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := sign(t, jwt.MapClaims{"role": "user"})
	rec, _ = serve(t, &App{Key: hmacKeyfunc}, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid user ID"}`, rec.Body.String())

	rec, _ = serve(t, &App{}, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	token := sign(t, jwt.MapClaims{"id": "u", "permissions": []any{PermissionGraphView}})
	app := &App{Key: hmacKeyfunc}

	rec, _ := serve(t, app, "Bearer "+token, RequirePermission(PermissionGraphView))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = serve(t, app, "Bearer "+token, RequirePermission(PermissionGraphDelete))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Forbidden: missing permission graph.delete"}`, rec.Body.String())
}

func TestHasPermission(t *testing.T) {
	assert.False(t, HasPermission(nil, PermissionGraphView))
	assert.True(t, HasPermission(&AppUser{Permissions: []string{PermissionGraphView}}, PermissionGraphView))
	assert.False(t, HasPermission(&AppUser{}, PermissionGraphView))
}
