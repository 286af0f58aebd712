package utils

import (
	"os"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Account is a pre-provisioned login. The ledger has no sign-up flow.
type Account struct {
	ID           string `yaml:"id"`
	Email        string `yaml:"email"`
	DisplayName  string `yaml:"display_name"`
	Role         string `yaml:"role"`
	PasswordHash string `yaml:"password_hash"`
}

type Config struct {
	// Server
	AppPort string `yaml:"APP_PORT"`
	AppURL  string `yaml:"APP_URL"`

	// Store configuration
	StoreDriver     string `yaml:"STORE_DRIVER"`
	StoreQuotaBytes string `yaml:"STORE_QUOTA_BYTES"`
	SQLitePath      string `yaml:"SQLITE_PATH"`

	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`

	// JWT
	JWTSecret string `yaml:"JWT_SECRET"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`

	// AWS S3 configuration
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`

	// Volunteer task catalog
	TaskCatalogPath string `yaml:"TASK_CATALOG_PATH"`

	Accounts []Account `yaml:"ACCOUNTS"`
}

var (
	config     Config
	configOnce sync.Once
)

func (c *Config) fields() map[string]*string {
	return map[string]*string{
		"APP_PORT":           &c.AppPort,
		"APP_URL":            &c.AppURL,
		"STORE_DRIVER":       &c.StoreDriver,
		"STORE_QUOTA_BYTES":  &c.StoreQuotaBytes,
		"SQLITE_PATH":        &c.SQLitePath,
		"DB_USER":            &c.DBUser,
		"DB_NAME":            &c.DBName,
		"DB_PASSWORD":        &c.DBPassword,
		"DB_PORT":            &c.DBPort,
		"DB_HOST":            &c.DBHost,
		"JWT_SECRET":         &c.JWTSecret,
		"SMTP_HOST":          &c.SMTPHost,
		"SMTP_PORT":          &c.SMTPPort,
		"SMTP_SENDER_NAME":   &c.SMTPSenderName,
		"SMTP_AUTH_EMAIL":    &c.SMTPAuthEmail,
		"SMTP_AUTH_PASSWORD": &c.SMTPAuthPassword,
		"AWS_S3_BUCKET":      &c.AWSS3Bucket,
		"AWS_S3_REGION":      &c.AWSS3Region,
		"AWS_ACCESS_KEY":     &c.AWSAccessKey,
		"AWS_SECRET_KEY":     &c.AWSSecretKey,
		"TASK_CATALOG_PATH":  &c.TaskCatalogPath,
	}
}

// LoadConfig reads config.yaml, then lets .env and the process environment
// override any scalar key. Missing files are not fatal.
func LoadConfig() {
	configOnce.Do(func() {
		config = readConfig("config.yaml", ".env")
	})
}

func readConfig(yamlPath string, envPaths ...string) Config {
	var c Config

	file, err := os.ReadFile(yamlPath)
	if err != nil {
		log.Warnf("Error reading YAML file: %s", err)
	} else if err := yaml.Unmarshal(file, &c); err != nil {
		log.Errorf("Error parsing YAML file: %s", err)
	}

	if err := godotenv.Load(envPaths...); err != nil && !os.IsNotExist(err) {
		log.Warnf("Error loading env file: %s", err)
	}

	for key, field := range c.fields() {
		if value, ok := os.LookupEnv(key); ok {
			*field = value
		}
	}
	return c
}

func GetConfig(key string) string {
	LoadConfig()
	field, ok := config.fields()[key]
	if !ok {
		return ""
	}
	return *field
}

// GetConfigInt64 returns fallback when key is unset or not a number.
func GetConfigInt64(key string, fallback int64) int64 {
	raw := GetConfig(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Warnf("config %s=%q is not a number, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func GetAccounts() []Account {
	LoadConfig()
	return config.Accounts
}
