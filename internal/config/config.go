package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config es la configuración raíz del servicio.
type Config struct {
	App       string          `yaml:"app" env:"APP_NAME" env-default:"cic-consultas"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Auth      AuthConfig      `yaml:"auth"`
	IPLookup  IPLookupConfig  `yaml:"iplookup"`
	Consultas ConsultasConfig `yaml:"consultas"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"             env:"PORT"                    env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	Swagger         bool          `yaml:"swagger"          env:"SERVER_SWAGGER"          env-default:"true"`
}

// DatabaseConfig: si DSN está vacío se usan los repos in-memory (modo dev).
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"               env:"DB_DSN"`
	MaxConns        int32         `yaml:"max_conns"         env:"DB_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"         env:"DB_MIN_CONNS"          env-default:"2"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"DB_MAX_CONN_LIFETIME"  env-default:"30m"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle"     env:"DB_MAX_CONN_IDLE_TIME" env-default:"5m"`
	AutoMigrate     bool          `yaml:"auto_migrate"      env:"DB_AUTO_MIGRATE"       env-default:"false"`
}

// RedisConfig: si Addr está vacío el guard por consulta es in-process.
type RedisConfig struct {
	Addr     string        `yaml:"addr"      env:"REDIS_ADDR"`
	Password string        `yaml:"password"  env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db"        env:"REDIS_DB"        env-default:"0"`
	LockTTL  time.Duration `yaml:"lock_ttl"  env:"REDIS_LOCK_TTL"  env-default:"15s"`
}

// KafkaConfig: si Brokers está vacío los eventos sólo se loguean.
type KafkaConfig struct {
	Brokers string `yaml:"brokers" env:"KAFKA_BROKERS"`
	Topic   string `yaml:"topic"   env:"KAFKA_TOPIC"   env-default:"cic.consultas.eventos"`
}

type AuthConfig struct {
	// JWTSecret vacío => modo dev con headers X-Debug-*.
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	JWTIssuer string `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER" env-default:"cic"`
}

type IPLookupConfig struct {
	// Mode: request (IP del cliente HTTP) | ipify (servicio externo).
	Mode    string        `yaml:"mode"     env:"IPLOOKUP_MODE"     env-default:"request"`
	BaseURL string        `yaml:"base_url" env:"IPLOOKUP_BASE_URL" env-default:"https://api.ipify.org"`
	Timeout time.Duration `yaml:"timeout"  env:"IPLOOKUP_TIMEOUT"  env-default:"3s"`
}

type ConsultasConfig struct {
	PageSize int `yaml:"page_size" env:"CONSULTAS_PAGE_SIZE" env-default:"25"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// Load lee la config desde CONFIG_PATH (YAML) si existe; si no, desde ENV + defaults.
// Prioridad: ENV > YAML > env-default.
func Load() (*Config, error) {
	var cfg Config

	path := strings.TrimSpace(os.Getenv("CONFIG_PATH"))
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port fuera de rango (%d)", c.Server.Port)
	}
	if c.Consultas.PageSize <= 0 || c.Consultas.PageSize > 200 {
		return fmt.Errorf("consultas.page_size debe estar entre 1 y 200 (got %d)", c.Consultas.PageSize)
	}
	switch c.IPLookup.Mode {
	case "request", "ipify":
	default:
		return fmt.Errorf("iplookup.mode inválido: %q", c.IPLookup.Mode)
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return errors.New("auth.jwt_secret debe tener al menos 32 caracteres")
	}
	return nil
}

// KafkaBrokers devuelve la lista de brokers (CSV en env).
func (c KafkaConfig) KafkaBrokers() []string {
	out := make([]string, 0)
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
