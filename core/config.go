package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName      string
		Build        string
		Env          string
		Debug        bool
		TestMode     bool
		SecretKey    string
		WorkDir      string
		RollbarToken string

		Server        serverConfig
		Database      databaseConfig
		Classroom     classroomConfig
		Notifications notificationsConfig
		Dashboard     dashboardConfig
	}

	serverConfig struct {
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
		DisableReqLogs     bool
	}

	databaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	classroomConfig struct {
		BaseURL  string // empty: Google's default endpoint
		Location *time.Location
	}

	notificationsConfig struct {
		SendgridApiKey    string
		SendgridHost      string
		DefaultFromEmail  string
		DiscordWebhookURL string
		TelegramBotToken  string
		TelegramApiURL    string
	}

	dashboardConfig struct {
		DataMode          string
		CoordinatorEmails []string
	}
)

func (c databaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c notificationsConfig) FromAddress() mail.Address {
	addr, err := mail.ParseAddress(c.DefaultFromEmail)
	if err != nil {
		return mail.Address{Address: c.DefaultFromEmail}
	}
	return *addr
}

// NewConfig loads the app configuration from the environment,
// prefixed with the value of ENV: DEV (local; default), TEST, QA, PROD.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("APP_NAME", "Semillero Insights")
	v.SetDefault("BUILD", "develop")
	v.SetDefault("DEBUG", true)
	v.SetDefault("SECRET_KEY", "s3mill3r0-d1g1t4l(dev)#not-for-prod!")
	v.SetDefault("ROLLBAR_TOKEN", "")

	v.SetDefault("SERVER_HOST", ":8000")
	v.SetDefault("SERVER_DEBUG_HOST", ":4000")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second)
	v.SetDefault("SERVER_JWT_EXPIRATION_DELTA", 7*24*time.Hour)
	v.SetDefault("SERVER_DISABLE_REQ_LOGS", false)

	v.SetDefault("DATABASE_ENGINE", "postgres")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_NAME", "insights")
	v.SetDefault("DATABASE_USER", "insights")
	v.SetDefault("DATABASE_PASSWORD", "insights")
	v.SetDefault("DATABASE_ADMIN_USER", "postgres")
	v.SetDefault("DATABASE_ADMIN_PASSWORD", "postgres")
	v.SetDefault("DATABASE_DISABLE_TLS", true)

	v.SetDefault("CLASSROOM_BASE_URL", "")
	v.SetDefault("CLASSROOM_TIME_ZONE", "UTC")

	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("SENDGRID_HOST", "https://api.sendgrid.com")
	v.SetDefault("DEFAULT_FROM_EMAIL", "Semillero Digital <noreply@semillerodigital.org>")
	v.SetDefault("DISCORD_WEBHOOK_URL", "")
	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.SetDefault("TELEGRAM_API_URL", "https://api.telegram.org")

	v.SetDefault("DASHBOARD_DATA_MODE", "real")
	v.SetDefault("DASHBOARD_COORDINATOR_EMAILS", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("TEST_MODE", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	wd := Getwd()
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	loc, err := time.LoadLocation(v.GetString("CLASSROOM_TIME_ZONE"))
	if err != nil {
		log.Fatalf("config.LoadLocation(%s): %v", v.GetString("CLASSROOM_TIME_ZONE"), err)
	}

	return &Config{
		AppName:      v.GetString("APP_NAME"),
		Build:        v.GetString("BUILD"),
		Env:          env,
		Debug:        v.GetBool("DEBUG"),
		TestMode:     v.GetBool("TEST_MODE"),
		SecretKey:    v.GetString("SECRET_KEY"),
		WorkDir:      wd,
		RollbarToken: v.GetString("ROLLBAR_TOKEN"),
		Server: serverConfig{
			Host:               v.GetString("SERVER_HOST"),
			DebugHost:          v.GetString("SERVER_DEBUG_HOST"),
			ShutdownTimeout:    v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			JWTExpirationDelta: v.GetDuration("SERVER_JWT_EXPIRATION_DELTA"),
			DisableReqLogs:     v.GetBool("SERVER_DISABLE_REQ_LOGS"),
		},
		Database: databaseConfig{
			Engine:        v.GetString("DATABASE_ENGINE"),
			Host:          v.GetString("DATABASE_HOST"),
			Port:          v.GetString("DATABASE_PORT"),
			Name:          v.GetString("DATABASE_NAME"),
			User:          v.GetString("DATABASE_USER"),
			Password:      v.GetString("DATABASE_PASSWORD"),
			AdminUser:     v.GetString("DATABASE_ADMIN_USER"),
			AdminPassword: v.GetString("DATABASE_ADMIN_PASSWORD"),
			DisableTLS:    v.GetBool("DATABASE_DISABLE_TLS"),
		},
		Classroom: classroomConfig{
			BaseURL:  v.GetString("CLASSROOM_BASE_URL"),
			Location: loc,
		},
		Notifications: notificationsConfig{
			SendgridApiKey:    v.GetString("SENDGRID_API_KEY"),
			SendgridHost:      v.GetString("SENDGRID_HOST"),
			DefaultFromEmail:  v.GetString("DEFAULT_FROM_EMAIL"),
			DiscordWebhookURL: v.GetString("DISCORD_WEBHOOK_URL"),
			TelegramBotToken:  v.GetString("TELEGRAM_BOT_TOKEN"),
			TelegramApiURL:    v.GetString("TELEGRAM_API_URL"),
		},
		Dashboard: dashboardConfig{
			DataMode:          v.GetString("DASHBOARD_DATA_MODE"),
			CoordinatorEmails: splitList(v.GetString("DASHBOARD_COORDINATOR_EMAILS")),
		},
	}
}

// NewTestConfig returns a Config suitable for tests: no dotenv lookup, no external credentials.
func NewTestConfig() *Config {
	return &Config{
		AppName:   "Semillero Insights",
		Build:     "test",
		Env:       "TEST",
		TestMode:  true,
		SecretKey: "secret",
		Server: serverConfig{
			ShutdownTimeout:    time.Second,
			JWTExpirationDelta: 10 * time.Minute,
			DisableReqLogs:     true,
		},
		Classroom: classroomConfig{Location: time.UTC},
		Notifications: notificationsConfig{
			DefaultFromEmail: "Semillero Digital <noreply@localhost>",
		},
		Dashboard: dashboardConfig{
			DataMode:          "real",
			CoordinatorEmails: []string{"coordinador@semillerodigital.org"},
		},
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = CleanString(item, true /* lower */); item != "" {
			out = append(out, item)
		}
	}
	return out
}
