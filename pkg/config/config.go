package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Perfiles de ejecución soportados (APP_ENV).
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// devJWTSecret solo se usa en development cuando JWT_SECRET no está definido.
const devJWTSecret = "dev-secret-key-change-in-production"

// testJWTSecret secreto fijo del perfil testing.
const testJWTSecret = "test-secret-key"

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App    AppConfig
	DB     DBConfig
	JWT    JWTConfig
	HTTP   HTTPConfig
	Mail   MailConfig
	Upload UploadConfig
	Voting VotingConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env     string // development, production, testing
	Name    string
	BaseURL string // usado para construir enlaces en correos (confirmación, invitación)
}

// IsTesting indica si el perfil usa el almacén en memoria.
func (c AppConfig) IsTesting() bool { return c.Env == EnvTesting }

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool // aplica migraciones embebidas al arrancar la API

	// Pool de conexiones
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	// ForceIPv4 resuelve el host solo a IPv4 (contenedores sin red IPv6).
	ForceIPv4       bool
	ApplicationName string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
// ProxyHeader solo se respeta cuando la petición llega desde una IP de TrustedProxies.
type HTTPConfig struct {
	Host           string
	Port           int
	CORSOrigins    string
	ProxyHeader    string
	TrustedProxies []string
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MailConfig servidor SMTP saliente. Server vacío = correos solo se registran en el log.
type MailConfig struct {
	Server        string
	Port          int
	Username      string
	Password      string
	UseTLS        bool
	DefaultSender string
}

// Enabled indica si hay un servidor SMTP configurado.
func (c MailConfig) Enabled() bool { return c.Server != "" }

// UploadConfig almacenamiento local de fotos de candidatos.
type UploadConfig struct {
	Dir           string
	MaxPhotoBytes int64
}

// VotingConfig políticas de votación y registro.
type VotingConfig struct {
	LegacyEnabled            bool   // habilita /api/voting/public/* (email + token de papeleta)
	BallotSecret             string // secreto HMAC del token de papeleta
	RequireEmailConfirmation bool   // registro crea cuentas inactivas hasta confirmar
	ConfirmationTTLHours     int
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, DB_PORT, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:     strings.ToLower(getString(v, "APP_ENV", EnvDevelopment)),
			Name:    getString(v, "APP_NAME", "encuestas-api"),
			BaseURL: strings.TrimRight(getString(v, "APP_BASE_URL", "http://localhost:8080"), "/"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "encuestas"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE", false),

			MaxConns:        int32(getInt(v, "DB_MAX_CONNS", 10)),
			MinConns:        int32(getInt(v, "DB_MIN_CONNS", 1)),
			MaxConnLifetime: time.Duration(getInt(v, "DB_MAX_CONN_LIFETIME_MINUTES", 60)) * time.Minute,
			MaxConnIdleTime: time.Duration(getInt(v, "DB_MAX_CONN_IDLE_MINUTES", 15)) * time.Minute,
			ForceIPv4:       getBool(v, "DB_FORCE_IPV4", false),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 24*60),
			Issuer:     getString(v, "JWT_ISSUER", "encuestas-api"),
		},
		HTTP: HTTPConfig{
			Host:           getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:           getInt(v, "HTTP_PORT", 8080),
			CORSOrigins:    getString(v, "HTTP_CORS_ORIGINS", "*"),
			ProxyHeader:    getString(v, "HTTP_PROXY_HEADER", ""),
			TrustedProxies: getList(v, "HTTP_TRUSTED_PROXIES"),
		},
		Mail: MailConfig{
			Server:        getString(v, "MAIL_SERVER", ""),
			Port:          getInt(v, "MAIL_PORT", 587),
			Username:      getString(v, "MAIL_USERNAME", ""),
			Password:      getString(v, "MAIL_PASSWORD", ""),
			UseTLS:        getBool(v, "MAIL_USE_TLS", true),
			DefaultSender: getString(v, "MAIL_DEFAULT_SENDER", "noreply@encuestas.com"),
		},
		Upload: UploadConfig{
			Dir:           getString(v, "UPLOAD_DIR", "./uploads"),
			MaxPhotoBytes: int64(getInt(v, "UPLOAD_MAX_PHOTO_MB", 5)) * 1024 * 1024,
		},
		Voting: VotingConfig{
			LegacyEnabled:            getBool(v, "VOTING_LEGACY_ENABLED", true),
			BallotSecret:             getString(v, "VOTING_BALLOT_SECRET", ""),
			RequireEmailConfirmation: getBool(v, "AUTH_REQUIRE_EMAIL_CONFIRMATION", false),
			ConfirmationTTLHours:     getInt(v, "AUTH_CONFIRMATION_TTL_HOURS", 24),
		},
	}

	if err := cfg.applyProfile(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyProfile completa secretos según el perfil y rechaza configuraciones inseguras.
func (c *Config) applyProfile() error {
	switch c.App.Env {
	case EnvTesting:
		if c.JWT.Secret == "" {
			c.JWT.Secret = testJWTSecret
		}
	case EnvProduction:
		if c.JWT.Secret == "" {
			return errors.New("config: JWT_SECRET es obligatorio en production")
		}
	case EnvDevelopment:
		if c.JWT.Secret == "" {
			c.JWT.Secret = devJWTSecret
		}
	default:
		return fmt.Errorf("config: APP_ENV desconocido %q", c.App.Env)
	}
	if c.Voting.BallotSecret == "" {
		c.Voting.BallotSecret = c.JWT.Secret
	}
	if c.Voting.ConfirmationTTLHours <= 0 {
		c.Voting.ConfirmationTTLHours = 24
	}
	if c.DB.ApplicationName == "" {
		c.DB.ApplicationName = c.App.Name
	}
	if c.DB.MaxConns <= 0 {
		c.DB.MaxConns = 10
	}
	if c.DB.MinConns < 0 {
		c.DB.MinConns = 0
	}
	if c.DB.MinConns > c.DB.MaxConns {
		c.DB.MinConns = c.DB.MaxConns
	}
	if c.HTTP.ProxyHeader != "" && len(c.HTTP.TrustedProxies) == 0 {
		return errors.New("config: HTTP_PROXY_HEADER requiere HTTP_TRUSTED_PROXIES")
	}
	return nil
}

// UsesDevSecret indica si se arrancó con el secreto de desarrollo por defecto.
func (c *Config) UsesDevSecret() bool { return c.JWT.Secret == devJWTSecret }

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

// getList lista separada por comas; vacíos descartados.
func getList(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v.GetString(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		switch val := v.Get(key).(type) {
		case bool:
			return val
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(val))
			if err != nil {
				return def
			}
			return b
		default:
			return v.GetBool(key)
		}
	}
	return def
}
