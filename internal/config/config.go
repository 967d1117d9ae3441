package config

import (
	"flag"
	"fmt"
	"github.com/ilyakaznacheev/cleanenv"
	"os"
	"time"
)

const (
	EnvDev   = "dev"
	EnvLocal = "local"
	EnvProd  = "prod"
)

type Config struct {
	Env         string        `yaml:"env" env:"ENV" env-default:"local"`
	StoragePath string        `yaml:"storage_path" env:"STORAGE_PATH"`
	TokenTTL    time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"720h"`
	HTTP        HTTPConfig    `yaml:"http"`
	JWT         JWTConfig     `yaml:"jwt"`
	Vault       VaultConfig   `yaml:"vault"`
	Redis       RedisConfig   `yaml:"redis"`
	Mail        MailConfig    `yaml:"mail"`
}

type HTTPConfig struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":5000"`
	BasePath    string        `yaml:"base_path" env:"HTTP_BASE_PATH" env-default:"/api"`
	Timeout     time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// JWTConfig holds HMAC secret used to sign session tokens.
// Ignored when Vault.Address is set, the secret is read from Vault then
type JWTConfig struct {
	Secret string `yaml:"secret" env:"JWT_SECRET"`
}

type VaultConfig struct {
	Address      string        `yaml:"address" env:"VAULT_ADDR"`
	Token        string        `yaml:"token" env:"VAULT_TOKEN"`
	RoleIDPath   string        `yaml:"role_id_path" env-default:"./secrets/role_id.txt"`
	SecretIDPath string        `yaml:"secret_id_path" env-default:"./secrets/secret_id.txt"`
	MountPath    string        `yaml:"mount_path" env-default:"secret"`
	SecretPath   string        `yaml:"secret_path" env-default:"todosome/jwt"`
	SecretKey    string        `yaml:"secret_key" env-default:"secret"`
	Timeout      time.Duration `yaml:"timeout" env-default:"30s"`
}

type RedisConfig struct {
	Enabled    bool          `yaml:"enabled" env:"REDIS_ENABLED"`
	Host       string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port       int           `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password   string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB         int           `yaml:"db"`
	ProfileTTL time.Duration `yaml:"profile_ttl" env-default:"10m"`
}

type MailConfig struct {
	// Driver is one of: smtp, grpc, log
	Driver       string        `yaml:"driver" env:"MAIL_DRIVER" env-default:"log"`
	From         string        `yaml:"from" env:"MAIL_FROM"`
	FrontendURL  string        `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:5173"`
	TemplatePath string        `yaml:"template_path" env-default:"mail/template.json"`
	Timeout      time.Duration `yaml:"timeout" env-default:"5s"`
	SMTP         SMTPConfig    `yaml:"smtp"`
	GRPC         MailGRPC      `yaml:"grpc"`
}

type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	User     string `yaml:"user" env:"SMTP_USER"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
}

type MailGRPC struct {
	Address string `yaml:"address" env:"MAIL_GRPC_ADDRESS"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(path string) *Config {
	if path == "" {
		panic("config path is empty")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("config path does not exist: " + path)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		panic(err)
	}

	if err := cfg.validate(); err != nil {
		panic(err)
	}

	return &cfg
}

// signup waits for the mail inside the request, so the send must end before the server drops the response
func (c *Config) validate() error {
	if c.Mail.Timeout >= c.HTTP.Timeout {
		return fmt.Errorf("mail.timeout (%s) must be less than http.timeout (%s)", c.Mail.Timeout, c.HTTP.Timeout)
	}
	return nil
}

// Priority: flag > env > default
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
