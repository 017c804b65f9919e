package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type SettlementConfig struct {
	Env           string `yaml:"env" env:"SETTLEMENT_ENV" env-default:"local"`
	HTTPServer    `yaml:"http_server"`
	OrderDB       `yaml:"order_db"`
	LogConfig     `yaml:"log_config"`
	KafkaService  `yaml:"kafka-service"`
	Approval      `yaml:"approval"`
	Stripe        `yaml:"stripe"`
	PaymentIntent `yaml:"payment_intent"`
	Admin         `yaml:"admin"`
	Notifier      `yaml:"notifier"`
}

type HTTPServer struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type OrderDB struct {
	// Driver is "postgres" or "memory".
	Driver         string `yaml:"driver" env:"ORDER_DB_DRIVER" env-default:"postgres"`
	Dsn            string `yaml:"dsn" env:"ORDER_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"ORDER_DB_MIGRATIONS_PATH"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type KafkaService struct {
	Enabled bool   `yaml:"enabled" env:"KAFKA_ENABLED" env-default:"false"`
	Host    string `yaml:"host" env:"KAFKA_HOST"`
	Port    string `yaml:"port" env:"KAFKA_PORT"`
	Topic   string `yaml:"topic" env:"KAFKA_TOPIC" env-default:"order-events"`
}

type Approval struct {
	Secret              string    `yaml:"secret" env:"ORDER_APPROVAL_SECRET"`
	PreviousSecrets     []string  `yaml:"previous_secrets" env:"ORDER_APPROVAL_PREVIOUS_SECRETS" env-separator:","`
	PreviousValidUntil  time.Time `yaml:"previous_valid_until" env:"ORDER_APPROVAL_PREVIOUS_VALID_UNTIL"`
	BaseURL             string    `yaml:"base_url" env:"ORDER_APPROVAL_BASE_URL" env-default:"http://localhost:8080/"`
	ApprovedURL         string    `yaml:"approved_url" env:"ORDER_APPROVAL_APPROVED_URL" env-default:"http://localhost:8080/order-approved/"`
	AlreadyCompletedURL string    `yaml:"already_completed_url" env:"ORDER_APPROVAL_ALREADY_COMPLETED_URL" env-default:"http://localhost:8080/?approve_result=already_completed"`
}

type Stripe struct {
	SecretKey     string `yaml:"secret_key" env:"QP_STRIPE_SECRET"`
	WebhookSecret string `yaml:"webhook_secret" env:"QP_STRIPE_WEBHOOK_SECRET"`
}

type PaymentIntent struct {
	DefaultCurrency string        `yaml:"default_currency" env:"QP_DEFAULT_CURRENCY" env-default:"USD"`
	Source          string        `yaml:"source" env-default:"quick-pickup"`
	NonceSecret     string        `yaml:"nonce_secret" env:"QP_NONCE_SECRET"`
	NonceTTL        time.Duration `yaml:"nonce_ttl" env:"QP_NONCE_TTL" env-default:"12h"`
}

type Admin struct {
	Token string `yaml:"token" env:"SETTLEMENT_ADMIN_TOKEN"`
}

// Notifier receives order events over HTTP, e.g. the mailer that sends
// approval links.
type Notifier struct {
	CallbackURL string        `yaml:"callback_url" env:"ORDER_EVENTS_CALLBACK_URL"`
	Timeout     time.Duration `yaml:"timeout" env-default:"5s"`
}

func (c *SettlementConfig) ListenAddr() string {
	return fmt.Sprintf("%s:%s", c.HTTPServer.Host, c.HTTPServer.Port)
}

func (c *SettlementConfig) KafkaBrokers() []string {
	return []string{fmt.Sprintf("%s:%s", c.KafkaService.Host, c.KafkaService.Port)}
}

// Load reads the YAML file at path, applies env overrides and defaults.
// An empty path reads the environment only.
func Load(path string) (*SettlementConfig, error) {
	var cfg SettlementConfig
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env config: %w", err)
		}
		return &cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return &cfg, nil
}

func MustLoad() *SettlementConfig {
	// Processing env config variable and file
	cfg, err := Load(os.Getenv("SETTLEMENT_CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load config: %v\n", err)
	}
	return cfg
}
