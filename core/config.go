package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kat-co/vala"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Addr                      string
		DebugAddr                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		PasswordResetTimeoutDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	AttendanceConfig struct {
		CodeTTL    time.Duration
		CodeLength int
	}

	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		Build    string

		AppName         string
		SecretKey       []byte
		FrontendBaseURL string
		DefaultFromName string
		DefaultFromAddr string
		SendgridAPIKey  string
		RollbarToken    string

		Server     ServerConfig
		Database   DatabaseConfig
		Attendance AttendanceConfig
	}
)

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromAddr}
}

func (dc DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%s", dc.Host, dc.Port)
}

// NewConfig loads the app configuration from the environment.
// An optional `config/.env.<env>` file is loaded first if present.
func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "Conductor")
	conf.SetDefault("secretKey", "x18^qnp0)t*b+sa(fdz&uoxh2(h!x)#*c2(#yg4h^$ce09=mg1")
	conf.SetDefault("frontendBaseUrl", "http://localhost:3000")
	conf.SetDefault("defaultFromName", "Conductor")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")

	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddr", ":8000")
	conf.SetDefault("serverDebugAddr", ":8001")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("jwtExpirationDelta", 10*time.Minute)
	conf.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	conf.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	conf.SetDefault("databaseEngine", "postgres")
	conf.SetDefault("databaseName", "conductor")
	conf.SetDefault("databaseUser", "conductor")
	conf.SetDefault("databasePassword", "conductor")
	conf.SetDefault("databaseAdminUser", "")
	conf.SetDefault("databaseAdminPassword", "")
	conf.SetDefault("databaseHost", "localhost")
	conf.SetDefault("databasePort", "5432")
	conf.SetDefault("databaseDisableTls", true)

	conf.SetDefault("attendanceCodeTtl", 5*time.Minute)
	conf.SetDefault("attendanceCodeLength", 6)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	c := &Config{
		Debug:    conf.GetBool("debug") && env != "PROD",
		TestMode: env == "TEST",
		Env:      env,
		Build:    conf.GetString("build"),

		AppName:         conf.GetString("appName"),
		SecretKey:       []byte(conf.GetString("secretKey")),
		FrontendBaseURL: conf.GetString("frontendBaseUrl"),
		DefaultFromName: conf.GetString("defaultFromName"),
		DefaultFromAddr: conf.GetString("defaultFromEmail"),
		SendgridAPIKey:  conf.GetString("sendgridApiKey"),
		RollbarToken:    conf.GetString("rollbarToken"),

		Server: ServerConfig{
			Host:                      conf.GetString("serverHost"),
			Addr:                      conf.GetString("serverAddr"),
			DebugAddr:                 conf.GetString("serverDebugAddr"),
			ShutdownTimeout:           conf.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),
			PasswordResetTimeoutDelta: conf.GetDuration("passwordResetTimeoutDelta"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("databaseEngine"),
			Name:          conf.GetString("databaseName"),
			User:          conf.GetString("databaseUser"),
			Password:      conf.GetString("databasePassword"),
			AdminUser:     conf.GetString("databaseAdminUser"),
			AdminPassword: conf.GetString("databaseAdminPassword"),
			Host:          conf.GetString("databaseHost"),
			Port:          conf.GetString("databasePort"),
			DisableTLS:    conf.GetBool("databaseDisableTls"),
		},
		Attendance: AttendanceConfig{
			CodeTTL:    conf.GetDuration("attendanceCodeTtl"),
			CodeLength: conf.GetInt("attendanceCodeLength"),
		},
	}

	err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(string(c.SecretKey), "secretKey"),
		vala.StringNotEmpty(c.Database.Engine, "databaseEngine"),
		vala.StringNotEmpty(c.Database.Name, "databaseName"),
		vala.GreaterThan(int(c.Attendance.CodeTTL), 0, "attendanceCodeTtl"),
		vala.GreaterThan(c.Attendance.CodeLength, 3, "attendanceCodeLength"),
	).Check()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}
