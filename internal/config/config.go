package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TokenConfig struct {
	AccessSecret     string
	AccessExpiresIn  time.Duration
	RefreshSecret    string
	RefreshExpiresIn time.Duration
}

type GoogleConfig struct {
	ClientID          string `yaml:"client_id"`
	ClientSecret      string `yaml:"client_secret"`
	RedirectURI       string `yaml:"redirect_uri"`
	ClientRedirectURI string `yaml:"client_redirect_uri"` // front-end URL tokens are appended to
}

type AdminConfig struct {
	Name        string `yaml:"name"`
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	PhoneNumber string `yaml:"phone_number"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
}

type Config struct {
	Server struct {
		Port int
	}
	Database struct {
		DSN string
	}
	Token  TokenConfig
	OTP    struct{ ExpiresIn time.Duration }
	Email  EmailConfig
	Google GoogleConfig
	Admin  AdminConfig
}

// rawConfig mirrors the yaml file; durations come in as "15m"-style strings.
type rawConfig struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Token struct {
		AccessSecret     string `yaml:"access_secret"`
		AccessExpiresIn  string `yaml:"access_expires_in"`
		RefreshSecret    string `yaml:"refresh_secret"`
		RefreshExpiresIn string `yaml:"refresh_expires_in"`
	} `yaml:"token"`
	OTP struct {
		ExpiresIn string `yaml:"expires_in"`
	} `yaml:"otp"`
	Email  EmailConfig  `yaml:"email"`
	Google GoogleConfig `yaml:"google"`
	Admin  AdminConfig  `yaml:"admin"`
}

// LoadConfig reads config/config.yaml. ${VAR} references in the file are
// expanded from the environment before parsing, so secrets never need to be
// committed.
func LoadConfig() *Config {
	data, err := os.ReadFile("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &raw); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	cfg := &Config{}
	cfg.Server.Port = raw.Server.Port
	cfg.Database.DSN = raw.Database.DSN
	cfg.Token = TokenConfig{
		AccessSecret:     raw.Token.AccessSecret,
		AccessExpiresIn:  parseDuration(raw.Token.AccessExpiresIn, 15*time.Minute),
		RefreshSecret:    raw.Token.RefreshSecret,
		RefreshExpiresIn: parseDuration(raw.Token.RefreshExpiresIn, 30*24*time.Hour),
	}
	cfg.OTP.ExpiresIn = parseDuration(raw.OTP.ExpiresIn, 5*time.Minute)
	cfg.Email = raw.Email
	cfg.Google = raw.Google
	cfg.Admin = raw.Admin
	return cfg
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		panic("Invalid duration in config.yaml: " + s)
	}
	return d
}
