package echoweb

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/flavorsense/flavorsense/core"
)

var (
	notFoundText    = "Page not found (404)."
	serverErrorText = "Something went wrong on our end (500). Please try again."
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = fmt.Sprint(origErr.Message)
		case *core.ValidationError:
			code = http.StatusBadRequest
			message = origErr.Message()
		default: // any other error is a server error
			code = http.StatusInternalServerError
		}

		if code >= http.StatusInternalServerError {
			args := []interface{}{errors.Wrap(err, ctx.Request().URL.Path)}
			if sess := getSession(ctx); sess.IsStudent() {
				args = append(args, sess.Student())
			}
			logger.Error(http.StatusText(code), args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		// Send response
		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			switch {
			case code == http.StatusNotFound:
				err = renderAuthPage(ctx, code, authPage{Show: showRegister, Error: notFoundText})
			case code >= http.StatusInternalServerError:
				err = renderAuthPage(ctx, code, authPage{Show: showRegister, Error: serverErrorText})
			default:
				err = ctx.JSON(code, echo.Map{"error": message})
			}
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

// validationMessage returns the user-facing message of err if it is a validation error.
func validationMessage(err error) (string, bool) {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return verr.Message(), true
	}
	return "", false
}
