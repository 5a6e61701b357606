package echoweb

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/flavorsense/flavorsense/core"
	"github.com/flavorsense/flavorsense/core/menu"
	"github.com/flavorsense/flavorsense/core/reminder"
	"github.com/flavorsense/flavorsense/core/review"
)

var invalidStaffCredsText = "Invalid username or password."

type (
	staffWeb struct {
		creds     core.StaffConfig
		reviews   *review.Service
		menu      *menu.Board
		reminders *reminder.Dispatcher
		sessions  *sessionManager
	}

	staffCredentials struct {
		Username string `form:"username"`
		Password string `form:"password"`
	}
)

func registerStaffRoutes(e *echo.Echo, web *staffWeb) {
	e.GET("/staff-login", web.loginForm)
	e.POST("/staff-login", web.login)
	e.GET("/staff-logout", web.logout)

	// staff endpoints
	e.GET("/staff-dashboard", web.dashboard, staffRequired)
	e.POST("/update-menu", web.updateMenu, staffRequired)
	e.POST("/send-reminders", web.sendReminders, staffRequired)
}

// checkCredentials compares both fields in constant time.
func (web *staffWeb) checkCredentials(creds staffCredentials) bool {
	userOK := subtle.ConstantTimeCompare([]byte(creds.Username), []byte(web.creds.Username))
	passOK := subtle.ConstantTimeCompare([]byte(creds.Password), []byte(web.creds.Password))
	return userOK&passOK == 1
}

func (web *staffWeb) renderDashboard(ctx echo.Context, message string, menuUpdated bool) error {
	rows, err := web.reviews.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying reviews")
	}
	return ctx.Render(http.StatusOK, "staff_dashboard", dashboardPage{
		Menu:        web.menu.Get(),
		Reviews:     rows,
		TodayIndex:  review.WeekdayIndex(review.NowFunc()),
		Message:     message,
		MenuUpdated: menuUpdated,
	})
}

// Handlers

func (web *staffWeb) loginForm(ctx echo.Context) error {
	if getSession(ctx).Staff {
		return ctx.Redirect(http.StatusFound, "/staff-dashboard")
	}
	return ctx.Render(http.StatusOK, "staff_login", staffLoginPage{})
}

func (web *staffWeb) login(ctx echo.Context) error {
	sess := getSession(ctx)
	if sess.Staff {
		return ctx.Redirect(http.StatusFound, "/staff-dashboard")
	}

	var creds staffCredentials
	if err := ctx.Bind(&creds); err != nil {
		return errors.Wrap(err, "binding to staffCredentials")
	}
	creds.Username = core.CleanString(creds.Username)

	if !web.checkCredentials(creds) {
		return ctx.Render(http.StatusOK, "staff_login", staffLoginPage{Error: invalidStaffCredsText, Username: creds.Username})
	}

	sess.Staff = true
	if err := web.sessions.save(ctx, sess); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/staff-dashboard")
}

func (web *staffWeb) logout(ctx echo.Context) error {
	sess := getSession(ctx)
	sess.Staff = false
	if err := web.sessions.save(ctx, sess); err != nil {
		return err
	}
	return ctx.Redirect(http.StatusFound, "/staff-login")
}

func (web *staffWeb) dashboard(ctx echo.Context) error {
	return web.renderDashboard(ctx, "", false)
}

func (web *staffWeb) updateMenu(ctx echo.Context) error {
	var data menu.Update
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to menu.Update")
	}
	web.menu.Update(data)
	return web.renderDashboard(ctx, "", true)
}

func (web *staffWeb) sendReminders(ctx echo.Context) error {
	sum, err := web.reminders.SendReminders()
	if err != nil {
		return errors.Wrap(err, "sending reminders")
	}
	return web.renderDashboard(ctx, sum.String(), false)
}
