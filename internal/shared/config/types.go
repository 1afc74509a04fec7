package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host                string   `mapstructure:"host"`
	Port                int      `mapstructure:"port"`
	Mode                string   `mapstructure:"mode"`
	BaseURL             string   `mapstructure:"base_url"`
	AllowedOrigins      []string `mapstructure:"allowed_origins"`
	FrontendCallbackURL string   `mapstructure:"frontend_callback_url"`
	OnboardingPath      string   `mapstructure:"onboarding_path"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs in release mode.
// Controls cookie Secure among other things.
func (s *ServerConfig) IsProduction() bool {
	return s.Mode == "release"
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type CookieConfig struct {
	Domain   string `mapstructure:"domain"`
	Path     string `mapstructure:"path"`
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"same_site"`
}

type AuthConfig struct {
	JWT    JWTConfig    `mapstructure:"jwt"`
	Cookie CookieConfig `mapstructure:"cookie"`
}

type GitHubOAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

type OAuthConfig struct {
	GitHub GitHubOAuthConfig `mapstructure:"github"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// SyncConfig tunes the access sync worker. TTLs deliberately target minutes,
// not hours: a stale "allowed" entry is a security defect while a stale
// "denied" is only an availability one.
type SyncConfig struct {
	CacheTTLMinutes        int `mapstructure:"cache_ttl_minutes"`
	RefreshIntervalMinutes int `mapstructure:"refresh_interval_minutes"`
	OnDemandTimeoutSeconds int `mapstructure:"on_demand_timeout_seconds"`
	BackoffInitialSeconds  int `mapstructure:"backoff_initial_seconds"`
	BackoffMaxSeconds      int `mapstructure:"backoff_max_seconds"`
	MaxRetries             int `mapstructure:"max_retries"`
}

func (s *SyncConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLMinutes) * time.Minute
}

func (s *SyncConfig) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshIntervalMinutes) * time.Minute
}

func (s *SyncConfig) OnDemandTimeout() time.Duration {
	return time.Duration(s.OnDemandTimeoutSeconds) * time.Second
}

func (s *SyncConfig) BackoffInitial() time.Duration {
	return time.Duration(s.BackoffInitialSeconds) * time.Second
}

func (s *SyncConfig) BackoffMax() time.Duration {
	return time.Duration(s.BackoffMaxSeconds) * time.Second
}
