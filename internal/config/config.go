package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Mail      MailConfig      `mapstructure:"mail"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port   string `mapstructure:"port"`
	AppURL string `mapstructure:"app_url"` // public frontend URL used in email links
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

// GatewayConfig holds the payment gateway credentials. KeySecret signs
// checkout payments; WebhookSecret signs server-to-server webhooks and may be
// left empty to disable webhook processing.
type GatewayConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	KeyID         string `mapstructure:"key_id"`
	KeySecret     string `mapstructure:"key_secret"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	Currency      string `mapstructure:"currency"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

type MailConfig struct {
	Provider     string `mapstructure:"provider"` // smtp or plunk
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     string `mapstructure:"smtp_port"`
	SMTPUsername string `mapstructure:"smtp_username"`
	SMTPPassword string `mapstructure:"smtp_password"`
	From         string `mapstructure:"from"`
	PlunkAPIKey  string `mapstructure:"plunk_api_key"`
	PlunkAPIURL  string `mapstructure:"plunk_api_url"`
}

type SchedulerConfig struct {
	OutboxIntervalSeconds int `mapstructure:"outbox_interval_seconds"`
	AlertIntervalMinutes  int `mapstructure:"alert_interval_minutes"`
}

type UploadsConfig struct {
	Dir     string `mapstructure:"dir"`
	BaseURL string `mapstructure:"base_url"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/projecthub")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.app_url", "http://localhost:3000")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "projecthub")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("jwt.secret", "")
	viper.SetDefault("jwt.ttl_hours", 168)
	viper.SetDefault("gateway.base_url", "https://api.razorpay.com")
	viper.SetDefault("gateway.currency", "INR")
	viper.SetDefault("redis.addr", "127.0.0.1:6379")
	viper.SetDefault("mail.provider", "smtp")
	viper.SetDefault("scheduler.outbox_interval_seconds", 15)
	viper.SetDefault("scheduler.alert_interval_minutes", 10)
	viper.SetDefault("uploads.dir", "public/uploads")
	viper.SetDefault("uploads.base_url", "http://localhost:8080/uploads")
	viper.SetDefault("log.level", "info")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("config: no config file loaded, using env and defaults: %v", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Fatalf("config: unmarshal failed: %v", err)
	}
	return &cfg
}
