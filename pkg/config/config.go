package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/newtonbotics"
	ConfigFileName    = "admin.yml"
	DefaultEnvFile    = ".env"

	DefaultBackendURL = "http://localhost:3005"
	DefaultAdminEmail = "admin@newtonbotics.com"

	// Development-only fallbacks. InsecureDefaults reports when any of them is in use.
	devAccessTokenSecret  = "newtonbotics-dev-access-secret"
	devRefreshTokenSecret = "newtonbotics-dev-refresh-secret"
	devAdminPassword      = "admin123"

	masked = "********"
)

// ValidDirectories lists the supported user directory backends
var ValidDirectories = []string{"static", "postgres"}

// ValidLogLevels lists the accepted log_level values
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// AdminConfig holds all admin panel API settings
type AdminConfig struct {
	// Environment is "development" or "production"
	Environment string `yaml:"environment" json:"environment"`

	// BindAddress and Port form the HTTP listen address
	BindAddress string `yaml:"bind_address" json:"bind_address"`
	Port        string `yaml:"port" json:"port"`

	// BackendURL is the base URL of the upstream API every proxy route talks to
	BackendURL string `yaml:"backend_url" json:"backend_url"`

	// BackendTimeout is the outbound call timeout in seconds, 0 disables it
	BackendTimeout int `yaml:"backend_timeout" json:"backend_timeout"`

	AccessTokenSecret  string `yaml:"access_token_secret" json:"-"`
	RefreshTokenSecret string `yaml:"refresh_token_secret" json:"-"`

	// Token lifetimes in seconds
	AccessTokenTTL  int `yaml:"access_token_ttl" json:"access_token_ttl"`
	RefreshTokenTTL int `yaml:"refresh_token_ttl" json:"refresh_token_ttl"`

	TokenIssuer string `yaml:"token_issuer" json:"token_issuer"`

	// AllowedOrigins is the CORS allow-list for the browser panel
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`

	AdminEmail        string `yaml:"admin_email" json:"admin_email"`
	AdminPassword     string `yaml:"admin_password" json:"-"`
	AdminPasswordHash string `yaml:"admin_password_hash" json:"-"`

	// Directory selects the user directory backend (static or postgres)
	Directory   string `yaml:"directory" json:"directory"`
	DatabaseURL string `yaml:"database_url" json:"-"`

	AuditEnabled     bool   `yaml:"audit_enabled" json:"audit_enabled"`
	AuditDatabaseURL string `yaml:"audit_database_url" json:"-"`

	LogLevel  string `yaml:"log_level" json:"log_level"`
	LogFormat string `yaml:"log_format" json:"log_format"`

	// ShutdownTimeout is the graceful shutdown window in seconds
	ShutdownTimeout int `yaml:"shutdown_timeout" json:"shutdown_timeout"`

	// sources tracks where each value came from
	sources map[string]string

	configFilePath string
}

// envConfig mirrors AdminConfig for the environment layer. Pointer fields stay nil
// when the variable is unset so the source of each value can be tracked.
type envConfig struct {
	Environment        *string  `env:"ADMIN_ENVIRONMENT"`
	BindAddress        *string  `env:"BIND_ADDRESS"`
	Port               *string  `env:"PORT"`
	BackendURL         *string  `env:"BACKEND_URL"`
	PublicBackendURL   *string  `env:"NEXT_PUBLIC_BACKEND_URL"`
	APIBaseURL         *string  `env:"API_BASE_URL"`
	BackendTimeout     *int     `env:"BACKEND_TIMEOUT"`
	AccessTokenSecret  *string  `env:"JWT_SECRET"`
	RefreshTokenSecret *string  `env:"JWT_REFRESH_SECRET"`
	AccessTokenTTL     *int     `env:"ACCESS_TOKEN_TTL"`
	RefreshTokenTTL    *int     `env:"REFRESH_TOKEN_TTL"`
	TokenIssuer        *string  `env:"TOKEN_ISSUER"`
	AllowedOrigins     []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	AdminEmail         *string  `env:"ADMIN_EMAIL"`
	AdminPassword      *string  `env:"ADMIN_PASSWORD"`
	AdminPasswordHash  *string  `env:"ADMIN_PASSWORD_HASH"`
	Directory          *string  `env:"ADMIN_DIRECTORY"`
	DatabaseURL        *string  `env:"DATABASE_URL"`
	AuditEnabled       *bool    `env:"ADMIN_AUDIT_ENABLED"`
	AuditDatabaseURL   *string  `env:"AUDIT_DATABASE_URL"`
	LogLevel           *string  `env:"LOG_LEVEL"`
	LogFormat          *string  `env:"LOG_FORMAT"`
	ShutdownTimeout    *int     `env:"SHUTDOWN_TIMEOUT"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

var (
	globalConfig *AdminConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *AdminConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Set replaces the global configuration
func Set(cfg *AdminConfig) {
	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
}

// Reload reloads the configuration from file and environment. The previous
// configuration stays active when the new one fails to load or validate.
func Reload() (*AdminConfig, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	Set(cfg)
	return cfg, nil
}

func newDefault() *AdminConfig {
	return &AdminConfig{
		Environment:     "development",
		BindAddress:     "0.0.0.0",
		Port:            "3000",
		BackendURL:      DefaultBackendURL,
		BackendTimeout:  0,
		AccessTokenTTL:  24 * 60 * 60,
		RefreshTokenTTL: 7 * 24 * 60 * 60,
		TokenIssuer:     "newtonbotics-admin",
		AllowedOrigins:  []string{"http://localhost:3000"},
		AdminEmail:      DefaultAdminEmail,
		Directory:       "static",
		AuditEnabled:    true,
		LogLevel:        "info",
		LogFormat:       "json",
		ShutdownTimeout: 10,
		sources:         make(map[string]string),
	}
}

// Load loads configuration from the config file, the .env file and the environment.
// Environment variables take precedence over file values.
func Load() (*AdminConfig, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("ADMIN_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig AdminConfig
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		var flags fileFlags
		if err := yaml.Unmarshal(data, &flags); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig, flags)
	}

	envFile := os.Getenv("ADMIN_ENV_FILE")
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadDotEnv copies variables from a .env file into the process environment
// without overriding anything that is already set.
func loadDotEnv(path string) error {
	envMap, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	for k, v := range envMap {
		if _, exists := os.LookupEnv(k); !exists {
			_ = os.Setenv(k, v)
		}
	}
	return nil
}

func attributeNames() []string {
	return []string{
		"environment", "bind_address", "port", "backend_url", "backend_timeout",
		"access_token_secret", "refresh_token_secret", "access_token_ttl",
		"refresh_token_ttl", "token_issuer", "allowed_origins", "admin_email",
		"admin_password", "admin_password_hash", "directory", "database_url",
		"audit_enabled", "audit_database_url", "log_level", "log_format",
		"shutdown_timeout",
	}
}

// fileFlags holds the boolean file attributes whose zero value is a valid
// setting, so an explicit false can be told apart from an absent key.
type fileFlags struct {
	AuditEnabled *bool `yaml:"audit_enabled"`
}

func (c *AdminConfig) applyFileConfig(file *AdminConfig, flags fileFlags) {
	setString := func(name string, dst *string, val string) {
		if val != "" {
			*dst = val
			c.sources[name] = "file"
		}
	}
	setInt := func(name string, dst *int, val int) {
		if val != 0 {
			*dst = val
			c.sources[name] = "file"
		}
	}

	setString("environment", &c.Environment, file.Environment)
	setString("bind_address", &c.BindAddress, file.BindAddress)
	setString("port", &c.Port, file.Port)
	setString("backend_url", &c.BackendURL, file.BackendURL)
	setInt("backend_timeout", &c.BackendTimeout, file.BackendTimeout)
	setString("access_token_secret", &c.AccessTokenSecret, file.AccessTokenSecret)
	setString("refresh_token_secret", &c.RefreshTokenSecret, file.RefreshTokenSecret)
	setInt("access_token_ttl", &c.AccessTokenTTL, file.AccessTokenTTL)
	setInt("refresh_token_ttl", &c.RefreshTokenTTL, file.RefreshTokenTTL)
	setString("token_issuer", &c.TokenIssuer, file.TokenIssuer)
	if len(file.AllowedOrigins) > 0 {
		c.AllowedOrigins = file.AllowedOrigins
		c.sources["allowed_origins"] = "file"
	}
	setString("admin_email", &c.AdminEmail, file.AdminEmail)
	setString("admin_password", &c.AdminPassword, file.AdminPassword)
	setString("admin_password_hash", &c.AdminPasswordHash, file.AdminPasswordHash)
	setString("directory", &c.Directory, file.Directory)
	setString("database_url", &c.DatabaseURL, file.DatabaseURL)
	if flags.AuditEnabled != nil {
		c.AuditEnabled = *flags.AuditEnabled
		c.sources["audit_enabled"] = "file"
	}
	setString("audit_database_url", &c.AuditDatabaseURL, file.AuditDatabaseURL)
	setString("log_level", &c.LogLevel, file.LogLevel)
	setString("log_format", &c.LogFormat, file.LogFormat)
	setInt("shutdown_timeout", &c.ShutdownTimeout, file.ShutdownTimeout)
}

func (c *AdminConfig) applyEnvConfig() error {
	var e envConfig
	if err := env.Parse(&e); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setString := func(name string, dst *string, val *string) {
		if val != nil && *val != "" {
			*dst = *val
			c.sources[name] = "environment"
		}
	}
	setInt := func(name string, dst *int, val *int) {
		if val != nil {
			*dst = *val
			c.sources[name] = "environment"
		}
	}

	setString("environment", &c.Environment, e.Environment)
	setString("bind_address", &c.BindAddress, e.BindAddress)
	setString("port", &c.Port, e.Port)

	// Legacy variable names are honoured in increasing order of precedence.
	setString("backend_url", &c.BackendURL, e.APIBaseURL)
	setString("backend_url", &c.BackendURL, e.PublicBackendURL)
	setString("backend_url", &c.BackendURL, e.BackendURL)

	setInt("backend_timeout", &c.BackendTimeout, e.BackendTimeout)
	setString("access_token_secret", &c.AccessTokenSecret, e.AccessTokenSecret)
	setString("refresh_token_secret", &c.RefreshTokenSecret, e.RefreshTokenSecret)
	setInt("access_token_ttl", &c.AccessTokenTTL, e.AccessTokenTTL)
	setInt("refresh_token_ttl", &c.RefreshTokenTTL, e.RefreshTokenTTL)
	setString("token_issuer", &c.TokenIssuer, e.TokenIssuer)
	if origins := trimAll(e.AllowedOrigins); len(origins) > 0 {
		c.AllowedOrigins = origins
		c.sources["allowed_origins"] = "environment"
	}
	setString("admin_email", &c.AdminEmail, e.AdminEmail)
	setString("admin_password", &c.AdminPassword, e.AdminPassword)
	setString("admin_password_hash", &c.AdminPasswordHash, e.AdminPasswordHash)
	setString("directory", &c.Directory, e.Directory)
	setString("database_url", &c.DatabaseURL, e.DatabaseURL)
	if e.AuditEnabled != nil {
		c.AuditEnabled = *e.AuditEnabled
		c.sources["audit_enabled"] = "environment"
	}
	setString("audit_database_url", &c.AuditDatabaseURL, e.AuditDatabaseURL)
	setString("log_level", &c.LogLevel, e.LogLevel)
	setString("log_format", &c.LogFormat, e.LogFormat)
	setInt("shutdown_timeout", &c.ShutdownTimeout, e.ShutdownTimeout)

	return nil
}

// ConfigFilePath returns the path to the config file
func (c *AdminConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *AdminConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// BackendBaseURL is the single accessor for the upstream base URL. It never
// returns a trailing slash.
func (c *AdminConfig) BackendBaseURL() string {
	base := strings.TrimSpace(c.BackendURL)
	if base == "" {
		base = DefaultBackendURL
	}
	return strings.TrimRight(base, "/")
}

// BackendCallTimeout returns the outbound call timeout, 0 meaning none
func (c *AdminConfig) BackendCallTimeout() time.Duration {
	return time.Duration(c.BackendTimeout) * time.Second
}

// AccessSecret returns the access token secret, falling back to the development default
func (c *AdminConfig) AccessSecret() string {
	if c.AccessTokenSecret == "" {
		return devAccessTokenSecret
	}
	return c.AccessTokenSecret
}

// RefreshSecret returns the refresh token secret, falling back to the development default
func (c *AdminConfig) RefreshSecret() string {
	if c.RefreshTokenSecret == "" {
		return devRefreshTokenSecret
	}
	return c.RefreshTokenSecret
}

// AdminPlainPassword returns the configured plain password, falling back to the
// development default. It is only consulted when no password hash is configured.
func (c *AdminConfig) AdminPlainPassword() string {
	if c.AdminPassword == "" {
		return devAdminPassword
	}
	return c.AdminPassword
}

// AccessTTL returns the access token lifetime
func (c *AdminConfig) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenTTL) * time.Second
}

// RefreshTTL returns the refresh token lifetime
func (c *AdminConfig) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTL) * time.Second
}

// ShutdownWindow returns the graceful shutdown timeout
func (c *AdminConfig) ShutdownWindow() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// Addr returns the HTTP listen address
func (c *AdminConfig) Addr() string {
	return c.BindAddress + ":" + c.Port
}

// IsProduction reports whether the server runs in production mode
func (c *AdminConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// InsecureDefaults lists the secret attributes that fell back to a development default
func (c *AdminConfig) InsecureDefaults() []string {
	var names []string
	if c.AccessTokenSecret == "" {
		names = append(names, "access_token_secret")
	}
	if c.RefreshTokenSecret == "" {
		names = append(names, "refresh_token_secret")
	}
	if c.Directory == "static" && c.AdminPasswordHash == "" && c.AdminPassword == "" {
		names = append(names, "admin_password")
	}
	return names
}

// Validate validates the configuration
func (c *AdminConfig) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid port: %q", c.Port)
	}

	u, err := url.Parse(c.BackendBaseURL())
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid backend_url: %q", c.BackendURL)
	}

	if c.BackendTimeout < 0 {
		return fmt.Errorf("backend_timeout must not be negative")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token ttl values must be positive")
	}
	if c.AccessSecret() == c.RefreshSecret() {
		return fmt.Errorf("access_token_secret and refresh_token_secret must differ")
	}

	if !contains(ValidDirectories, c.Directory) {
		return fmt.Errorf("invalid directory: %s", c.Directory)
	}
	if c.Directory == "postgres" && c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required for the postgres directory")
	}

	if !contains(ValidLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	if c.IsProduction() {
		if insecure := c.InsecureDefaults(); len(insecure) > 0 {
			return fmt.Errorf("production mode requires explicit values for: %s", strings.Join(insecure, ", "))
		}
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources.
// Secret values are masked.
func (c *AdminConfig) Attributes() []Attribute {
	secret := func(v string) string {
		if v == "" {
			return ""
		}
		return masked
	}
	return []Attribute{
		{Name: "environment", Value: c.Environment, Source: c.Source("environment")},
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "port", Value: c.Port, Source: c.Source("port")},
		{Name: "backend_url", Value: c.BackendBaseURL(), Source: c.Source("backend_url")},
		{Name: "backend_timeout", Value: strconv.Itoa(c.BackendTimeout), Source: c.Source("backend_timeout")},
		{Name: "access_token_secret", Value: secret(c.AccessTokenSecret), Source: c.Source("access_token_secret")},
		{Name: "refresh_token_secret", Value: secret(c.RefreshTokenSecret), Source: c.Source("refresh_token_secret")},
		{Name: "access_token_ttl", Value: strconv.Itoa(c.AccessTokenTTL), Source: c.Source("access_token_ttl")},
		{Name: "refresh_token_ttl", Value: strconv.Itoa(c.RefreshTokenTTL), Source: c.Source("refresh_token_ttl")},
		{Name: "token_issuer", Value: c.TokenIssuer, Source: c.Source("token_issuer")},
		{Name: "allowed_origins", Value: strings.Join(c.AllowedOrigins, ","), Source: c.Source("allowed_origins")},
		{Name: "admin_email", Value: c.AdminEmail, Source: c.Source("admin_email")},
		{Name: "admin_password", Value: secret(c.AdminPassword), Source: c.Source("admin_password")},
		{Name: "admin_password_hash", Value: secret(c.AdminPasswordHash), Source: c.Source("admin_password_hash")},
		{Name: "directory", Value: c.Directory, Source: c.Source("directory")},
		{Name: "database_url", Value: secret(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
		{Name: "audit_database_url", Value: secret(c.AuditDatabaseURL), Source: c.Source("audit_database_url")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "log_format", Value: c.LogFormat, Source: c.Source("log_format")},
		{Name: "shutdown_timeout", Value: strconv.Itoa(c.ShutdownTimeout), Source: c.Source("shutdown_timeout")},
	}
}

// FormatText returns a text representation of the configuration
func (c *AdminConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *AdminConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func trimAll(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
