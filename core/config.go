package core

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	defaultSecretKey = "change-me-in-production"
	defaultStaffPass = "changeme123"
)

// DotEnvFiles are loaded (if they exist) before the environment is read.
// Variables already set in the environment are never overridden.
var DotEnvFiles = []string{"email.env", ".env"}

type (
	Config struct {
		Env          string
		Build        string
		AppName      string
		Debug        bool
		SecretKey    string
		RollbarToken string
		LogLevel     string

		Server  ServerConfig
		Staff   StaffConfig
		Email   EmailConfig
		Storage StorageConfig
		Menu    MenuConfig
	}

	ServerConfig struct {
		Host            string
		Port            int
		ShutdownTimeout time.Duration
		SessionMaxAge   time.Duration
		SecureCookies   bool
	}

	StaffConfig struct {
		Username string
		Password string
	}

	EmailConfig struct {
		Backend        string // smtp | sendgrid | console
		Host           string
		Port           int
		User           string
		Password       string
		From           string
		SendgridApiKey string
		Timeout        time.Duration
	}

	StorageConfig struct {
		Backend     string // csv | memory
		StudentsCSV string
		ReviewsCSV  string
	}

	MenuConfig struct {
		Breakfast string
		Lunch     string
		Dinner    string
	}
)

// Address returns the listen address of the web server.
func (sc ServerConfig) Address() string {
	return net.JoinHostPort(sc.Host, strconv.Itoa(sc.Port))
}

// HasCredentials reports whether SMTP credentials are configured.
func (ec EmailConfig) HasCredentials() bool {
	return ec.User != "" && ec.Password != ""
}

// UsesDefaultSecrets reports whether the session key or the staff password were left at their defaults.
func (c *Config) UsesDefaultSecrets() bool {
	return c.SecretKey == defaultSecretKey || c.Staff.Password == defaultStaffPass
}

// NewConfig loads the dot-env files then reads the configuration from the environment.
func NewConfig() (*Config, error) {
	if err := loadDotEnv(DotEnvFiles...); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("env", "DEV")
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Flavorsense")
	v.SetDefault("debug", false)
	v.SetDefault("secretKey", defaultSecretKey)
	v.SetDefault("rollbarToken", "")
	v.SetDefault("logLevel", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.shutdownTimeout", 15*time.Second)
	v.SetDefault("server.sessionMaxAge", 31*24*time.Hour)
	v.SetDefault("server.secureCookies", false)

	v.SetDefault("staff.username", "staff")
	v.SetDefault("staff.password", defaultStaffPass)

	v.SetDefault("email.backend", "smtp")
	v.SetDefault("email.host", "smtp.gmail.com")
	v.SetDefault("email.port", 587)
	v.SetDefault("email.user", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.sendgridApiKey", "")
	v.SetDefault("email.timeout", 30*time.Second)

	v.SetDefault("storage.backend", "csv")
	v.SetDefault("storage.studentsCSV", "students.csv")
	v.SetDefault("storage.reviewsCSV", "reviews.csv")

	v.SetDefault("menu.breakfast", "Idli, Sambar")
	v.SetDefault("menu.lunch", "Rice, Dal, Curry")
	v.SetDefault("menu.dinner", "Chapathi, Paneer")

	for key, env := range map[string]string{
		"env":                    "ENV",
		"build":                  "BUILD",
		"debug":                  "DEBUG",
		"secretKey":              "FLAVORSENSE_SECRET",
		"rollbarToken":           "ROLLBAR_TOKEN",
		"logLevel":               "LOG_LEVEL",
		"server.host":            "HOST",
		"server.port":            "PORT",
		"server.shutdownTimeout": "SHUTDOWN_TIMEOUT",
		"server.sessionMaxAge":   "SESSION_MAX_AGE",
		"server.secureCookies":   "SECURE_COOKIES",
		"staff.username":         "STAFF_USER",
		"staff.password":         "STAFF_PASS",
		"email.backend":          "EMAIL_BACKEND",
		"email.host":             "EMAIL_HOST",
		"email.port":             "EMAIL_PORT",
		"email.user":             "EMAIL_USER",
		"email.password":         "EMAIL_PASS",
		"email.from":             "EMAIL_FROM",
		"email.sendgridApiKey":   "SENDGRID_API_KEY",
		"email.timeout":          "EMAIL_TIMEOUT",
		"storage.backend":        "STORAGE_BACKEND",
		"storage.studentsCSV":    "STUDENTS_CSV",
		"storage.reviewsCSV":     "REVIEWS_CSV",
		"menu.breakfast":         "MENU_BREAKFAST",
		"menu.lunch":             "MENU_LUNCH",
		"menu.dinner":            "MENU_DINNER",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.Wrapf(err, "binding %s", env)
		}
	}

	conf := &Config{
		Env:          strings.ToUpper(v.GetString("env")),
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		Debug:        v.GetBool("debug"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		LogLevel:     strings.ToLower(v.GetString("logLevel")),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			SessionMaxAge:   v.GetDuration("server.sessionMaxAge"),
			SecureCookies:   v.GetBool("server.secureCookies"),
		},
		Staff: StaffConfig{
			Username: v.GetString("staff.username"),
			Password: v.GetString("staff.password"),
		},
		Email: EmailConfig{
			Backend:        strings.ToLower(v.GetString("email.backend")),
			Host:           v.GetString("email.host"),
			Port:           v.GetInt("email.port"),
			User:           v.GetString("email.user"),
			Password:       v.GetString("email.password"),
			From:           v.GetString("email.from"),
			SendgridApiKey: v.GetString("email.sendgridApiKey"),
			Timeout:        v.GetDuration("email.timeout"),
		},
		Storage: StorageConfig{
			Backend:     strings.ToLower(v.GetString("storage.backend")),
			StudentsCSV: v.GetString("storage.studentsCSV"),
			ReviewsCSV:  v.GetString("storage.reviewsCSV"),
		},
		Menu: MenuConfig{
			Breakfast: v.GetString("menu.breakfast"),
			Lunch:     v.GetString("menu.lunch"),
			Dinner:    v.GetString("menu.dinner"),
		},
	}
	if conf.Email.From == "" {
		conf.Email.From = conf.Email.User
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Errorf("config: invalid port %d", c.Server.Port)
	}
	switch c.Email.Backend {
	case "smtp", "sendgrid", "console":
	default:
		return errors.Errorf("config: unknown email backend %q", c.Email.Backend)
	}
	switch c.Storage.Backend {
	case "csv", "memory":
	default:
		return errors.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	if c.Server.SessionMaxAge <= 0 {
		return errors.Errorf("config: SESSION_MAX_AGE must be positive, got %s", c.Server.SessionMaxAge)
	}
	if c.SecretKey == "" {
		return errors.New("config: FLAVORSENSE_SECRET must not be empty")
	}
	return nil
}

// loadDotEnv loads the given files if they exist (ignores them if they do not).
func loadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return errors.Wrapf(err, "config.godotenv(%s)", path)
			}
		} else if !os.IsNotExist(err) {
			return errors.Wrapf(err, "config.os.Stat(%s)", path)
		}
	}
	return nil
}
