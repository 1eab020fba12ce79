package core

import (
	"log"
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
		Debug    bool
		TestMode bool
		Env      string
		Build    string

		AppName             string
		SecretKey           string
		FrontendURL         string
		FeedbackEmail       string
		ExtendedHoursOrgKey string
		DefaultFromEmail    mail.Address

		SendgridAPIKey string
		RollbarToken   string

		Server   ServerConfig
		Database DatabaseConfig
	}

	ServerConfig struct {
		Host            string
		Addr            string
		DebugAddr       string
		ShutdownTimeout time.Duration

		// token lifetimes; organizations get a shorter session
		UserJWTExpirationDelta time.Duration
		OrgJWTExpirationDelta  time.Duration
	}

	DatabaseConfig struct {
		Engine     string
		Name       string
		User       string
		Password   string
		Host       string
		Port       string
		DisableTLS bool
	}
)

func (dbc DatabaseConfig) Address() string {
	return dbc.Host + ":" + dbc.Port
}

// NewConfig loads the app configuration from defaults, an optional
// config/.env.<env> file and environment variables (in increasing precedence).
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Student Service Diary")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "wb0fn$=yj#2*a&9(qmz+7^e!dh4@u5xr_c3%gk6p)svt8lo1i")
	v.SetDefault("frontendUrl", "http://localhost:3000")
	v.SetDefault("feedbackEmail", "lchelle.best@gmail.com")
	v.SetDefault("extendedHoursOrgKey", "HEO77")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":5000")
	v.SetDefault("serverDebugAddr", ":5001")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("userJwtExpirationDelta", 8*time.Hour)
	v.SetDefault("orgJwtExpirationDelta", 2*time.Hour)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "servicediary")
	v.SetDefault("dbUser", "servicediary")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbDisableTls", true)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetDefault("testMode", env == "TEST")
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		Env:      env,
		Build:    v.GetString("build"),

		AppName:             v.GetString("appName"),
		SecretKey:           v.GetString("secretKey"),
		FrontendURL:         v.GetString("frontendUrl"),
		FeedbackEmail:       v.GetString("feedbackEmail"),
		ExtendedHoursOrgKey: v.GetString("extendedHoursOrgKey"),
		DefaultFromEmail:    mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},

		SendgridAPIKey: v.GetString("sendgridApiKey"),
		RollbarToken:   v.GetString("rollbarToken"),

		Server: ServerConfig{
			Host:                   v.GetString("serverHost"),
			Addr:                   v.GetString("serverAddr"),
			DebugAddr:              v.GetString("serverDebugAddr"),
			ShutdownTimeout:        v.GetDuration("serverShutdownTimeout"),
			UserJWTExpirationDelta: v.GetDuration("userJwtExpirationDelta"),
			OrgJWTExpirationDelta:  v.GetDuration("orgJwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:     v.GetString("dbEngine"),
			Name:       v.GetString("dbName"),
			User:       v.GetString("dbUser"),
			Password:   v.GetString("dbPassword"),
			Host:       v.GetString("dbHost"),
			Port:       v.GetString("dbPort"),
			DisableTLS: v.GetBool("dbDisableTls"),
		},
	}
}
