package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func studentRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if !getSession(ctx).IsStudent() {
			return ctx.Redirect(http.StatusFound, "/register")
		}
		return next(ctx)
	}
}

func staffRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if !getSession(ctx).Staff {
			return ctx.Redirect(http.StatusFound, "/staff-login")
		}
		return next(ctx)
	}
}
