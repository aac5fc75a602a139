package middleware

import (
	"github.com/OFFIS-RIT/scholargraph/internal/pipeline"
	"github.com/OFFIS-RIT/scholargraph/internal/queue"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type AppUser struct {
	UserID      string
	Role        string
	Permissions []string
}

// App holds the long lived dependencies shared by all requests. Queue and
// Key may be nil when async builds or JWT authentication are not configured.
type App struct {
	Pipeline       *pipeline.Pipeline
	Queue          queue.Publisher
	Key            jwt.Keyfunc
	MasterAPIKey   string
	MasterUserID   string
	MasterUserRole string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
