package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Env          string
		Build        string
		Debug        bool
		TestMode     bool
		AppName      string
		SecretKey    string
		RollbarToken string
		JWT          JWTConfig
		Server       ServerConfig
		Database     DatabaseConfig
	}

	JWTConfig struct {
		Algorithm string
		Lifetime  time.Duration
	}

	ServerConfig struct {
		Host               string
		Address            string
		CORSOrigins        []string
		ShutdownTimeout    time.Duration
		DisableRequestLogs bool
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		Path          string // sqlite only
	}
)

// Address returns the postgres "host:port".
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NewConfig loads the configuration for the current ENV (DEV by default).
// Values are read from the environment, prefixed with the ENV name (e.g. DEV_SECRET_KEY),
// after loading config/.env.<env> when it exists.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("app_name", "Academia")
	v.SetDefault("secret_key", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("rollbar_token", "")
	v.SetDefault("jwt.algorithm", "HS256")
	v.SetDefault("jwt.expiration_days", 2)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.cors_origins", "http://localhost:3000")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.disable_request_logs", false)
	v.SetDefault("db.engine", "sqlite")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "academia")
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.admin_user", "")
	v.SetDefault("db.admin_password", "")
	v.SetDefault("db.disable_tls", false)
	v.SetDefault("db.path", "academia.db")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("test_mode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(configDir(), ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Build:        v.GetString("build"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("test_mode"),
		AppName:      v.GetString("app_name"),
		SecretKey:    v.GetString("secret_key"),
		RollbarToken: v.GetString("rollbar_token"),
		JWT: JWTConfig{
			Algorithm: strings.ToUpper(v.GetString("jwt.algorithm")),
			Lifetime:  time.Duration(v.GetInt("jwt.expiration_days")) * 24 * time.Hour,
		},
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Address:            v.GetString("server.address"),
			CORSOrigins:        SplitList(v.GetString("server.cors_origins")),
			ShutdownTimeout:    v.GetDuration("server.shutdown_timeout"),
			DisableRequestLogs: v.GetBool("server.disable_request_logs"),
		},
		Database: DatabaseConfig{
			Engine:        strings.ToLower(v.GetString("db.engine")),
			Host:          v.GetString("db.host"),
			Port:          v.GetInt("db.port"),
			Name:          v.GetString("db.name"),
			User:          v.GetString("db.user"),
			Password:      v.GetString("db.password"),
			AdminUser:     v.GetString("db.admin_user"),
			AdminPassword: v.GetString("db.admin_password"),
			DisableTLS:    v.GetBool("db.disable_tls"),
			Path:          v.GetString("db.path"),
		},
	}
}

// configDir returns $CONFIG_DIR, or ./config.
func configDir() string {
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		return dir
	}
	return "config"
}
