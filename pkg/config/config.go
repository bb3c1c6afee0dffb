package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	Store     StoreConfig
	Mongo     MongoConfig
	DB        DBConfig
	Local     LocalConfig
	Rates     RatesConfig
	Scheduler SchedulerConfig
	Sync      SyncConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// Backends remotos soportados para el almacén de documentos.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// StoreConfig selecciona el almacén de documentos remoto.
type StoreConfig struct {
	Backend string // mongo | postgres | memory
}

// MongoConfig conexión a MongoDB.
type MongoConfig struct {
	URI      string
	Database string
}

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

// LocalConfig espejo local persistente (SQLite).
type LocalConfig struct {
	Path string // ruta del archivo; ":memory:" para pruebas
}

// RatesConfig fuente HTTP externa de tasas de cambio.
type RatesConfig struct {
	BaseURL        string
	Token          string
	Monitor        string
	MaxRetries     int
	TimeoutSeconds int
}

// Timeout devuelve el timeout HTTP como duración.
func (c RatesConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SchedulerConfig tareas programadas. RateSpec vacío desactiva la adquisición diaria.
type SchedulerConfig struct {
	RateSpec string
}

// SyncConfig parámetros del motor de sincronización.
type SyncConfig struct {
	CommitTimeoutSeconds int
}

// CommitTimeout devuelve el timeout de los commits en segundo plano.
func (c SyncConfig) CommitTimeout() time.Duration {
	return time.Duration(c.CommitTimeoutSeconds) * time.Second
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, STORE_BACKEND, MONGO_URI, RATES_TOKEN, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return FromViper(v)
}

// FromViper construye la configuración a partir de una instancia de Viper ya poblada.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "contabilidad-api"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getString(v, "STORE_BACKEND", StoreMemory)),
		},
		Mongo: MongoConfig{
			URI:      getString(v, "MONGO_URI", "mongodb://localhost:27017"),
			Database: getString(v, "MONGO_DATABASE", "contabilidad"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "contabilidad"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		Local: LocalConfig{
			Path: getString(v, "LOCAL_STORE_PATH", "contabilidad.db"),
		},
		Rates: RatesConfig{
			BaseURL:        getString(v, "RATES_BASE_URL", "https://pydolarve.org/api/v2/dollar/history"),
			Token:          getString(v, "RATES_TOKEN", ""),
			Monitor:        getString(v, "RATES_MONITOR", "usd"),
			MaxRetries:     getInt(v, "RATES_MAX_RETRIES", 5),
			TimeoutSeconds: getInt(v, "RATES_TIMEOUT_SECONDS", 10),
		},
		Scheduler: SchedulerConfig{
			RateSpec: getString(v, "SCHEDULER_RATE_SPEC", "0 9 * * *"),
		},
		Sync: SyncConfig{
			CommitTimeoutSeconds: getInt(v, "SYNC_COMMIT_TIMEOUT_SECONDS", 15),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "contabilidad-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
	}

	switch cfg.Store.Backend {
	case StoreMongo, StorePostgres, StoreMemory:
	default:
		return nil, fmt.Errorf("config: STORE_BACKEND inválido %q (mongo|postgres|memory)", cfg.Store.Backend)
	}
	if cfg.Rates.MaxRetries < 0 {
		return nil, fmt.Errorf("config: RATES_MAX_RETRIES no puede ser negativo")
	}
	return cfg, nil
}

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
			n, err := strconv.Atoi(v.GetString(key))
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
