package echoweb

import (
	"io"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/flavorsense/flavorsense/core"
	"github.com/flavorsense/flavorsense/core/menu"
	"github.com/flavorsense/flavorsense/core/rating"
	"github.com/flavorsense/flavorsense/core/review"
	"github.com/flavorsense/flavorsense/core/student"
)

type studentWeb struct {
	svc        *student.Service
	reviews    *review.Service
	ratings    *rating.Store
	menu       *menu.Board
	sessions   *sessionManager
	validate   *validator.Validate
	translator ut.Translator
}

func registerStudentRoutes(e *echo.Echo, web *studentWeb) {
	e.GET("/", web.index)
	e.GET("/register", web.registerForm)
	e.POST("/register", web.register)
	e.POST("/student-login", web.login)
	e.GET("/logout", web.logout)
	e.GET("/ratings/:date", web.ratingsForDate)

	// student endpoints
	e.GET("/student", web.dashboard, studentRequired)
	e.POST("/rate", web.rate, studentRequired)
}

// Handlers

func (web *studentWeb) index(ctx echo.Context) error {
	if getSession(ctx).IsStudent() {
		return ctx.Redirect(http.StatusFound, "/student")
	}
	return ctx.Redirect(http.StatusFound, "/register")
}

func (web *studentWeb) registerForm(ctx echo.Context) error {
	if getSession(ctx).IsStudent() {
		return ctx.Redirect(http.StatusFound, "/student")
	}
	return renderAuthPage(ctx, http.StatusOK, authPage{Show: showRegister})
}

func (web *studentWeb) register(ctx echo.Context) error {
	sess := getSession(ctx)
	if sess.IsStudent() {
		return ctx.Redirect(http.StatusFound, "/student")
	}

	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	st, err := web.svc.Register(data)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			return renderAuthPage(ctx, http.StatusOK, authPage{
				Show:  showRegister,
				Error: msg,
				Name:  core.CleanString(data.Name),
				Email: core.CleanString(data.Email, true /* lower */),
			})
		}
		return errors.Wrap(err, "registering student")
	}

	sess.StudentEmail, sess.StudentName = st.Email, st.Name
	if err = web.sessions.save(ctx, sess); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/student")
}

func (web *studentWeb) login(ctx echo.Context) error {
	var creds student.Credentials
	if err := ctx.Bind(&creds); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}

	st, err := web.svc.Authenticate(creds)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			return renderAuthPage(ctx, http.StatusOK, authPage{
				Show:  showLogin,
				Error: msg,
				Email: core.CleanString(creds.Email, true /* lower */),
			})
		}
		return errors.Wrap(err, "authenticating student")
	}

	sess := getSession(ctx)
	sess.StudentEmail, sess.StudentName = st.Email, st.Name
	if err = web.sessions.save(ctx, sess); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/student")
}

func (web *studentWeb) logout(ctx echo.Context) error {
	sess := getSession(ctx)
	sess.StudentEmail, sess.StudentName = "", ""
	if err := web.sessions.save(ctx, sess); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/register")
}

func (web *studentWeb) dashboard(ctx echo.Context) error {
	sess := getSession(ctx)
	return ctx.Render(http.StatusOK, "student", studentPage{
		Name:  sess.StudentName,
		Email: sess.StudentEmail,
		Menu:  web.menu.Get(),
		Today: core.Today(review.NowFunc()),
	})
}

func (web *studentWeb) rate(ctx echo.Context) error {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading rating body")
	}

	sub, err := rating.ParseSubmission(web.validate, web.translator, body)
	if err != nil {
		return err // validation errors are answered as 400 {"error": msg}
	}
	if err = web.ratings.Record(sub.Date, sub.Item, sub.Rating); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "rating", Error: err.Error()})
	}
	if err = web.reviews.MarkTodayReviewed(getSession(ctx).StudentEmail); err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Rating saved",
		"item":    sub.Item,
		"rating":  sub.Rating,
	})
}

func (web *studentWeb) ratingsForDate(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, web.ratings.ForDate(ctx.Param("date")))
}
