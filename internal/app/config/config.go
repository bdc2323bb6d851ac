package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultPath 默认配置文件路径，可被 HOPELY_CONFIG 覆盖
const DefaultPath = "config/config.yaml"

// Config 应用配置
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	MySQL   MySQLConfig   `mapstructure:"mysql"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Lmstfy  LmstfyConfig  `mapstructure:"lmstfy"`
	Payment PaymentConfig `mapstructure:"payment"`
	Admin   AdminConfig   `mapstructure:"admin"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
	NodeID   int64  `mapstructure:"node_id"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type MySQLConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LmstfyConfig 通知重试队列配置
type LmstfyConfig struct {
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	Namespace        string `mapstructure:"namespace"`
	Token            string `mapstructure:"token"`
	NotifyRetryQueue string `mapstructure:"notify_retry_queue"`
}

// PaymentConfig 支付网关（PayHere 协议）配置
type PaymentConfig struct {
	MerchantID        string `mapstructure:"merchant_id"`
	MerchantSecret    string `mapstructure:"merchant_secret"`
	Sandbox           bool   `mapstructure:"sandbox"`
	SuccessStatusCode string `mapstructure:"success_status_code"`
	BypassSignature   string `mapstructure:"bypass_signature"`
	TestOrderPrefix   string `mapstructure:"test_order_prefix"`
	Currency          string `mapstructure:"currency"`
	ReturnURL         string `mapstructure:"return_url"`
	CancelURL         string `mapstructure:"cancel_url"`
	NotifyURL         string `mapstructure:"notify_url"`
	Country           string `mapstructure:"country"`
}

// AdminConfig 运维令牌配置
type AdminConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "hopely")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.node_id", 1)
	v.SetDefault("server.port", "8080")
	v.SetDefault("mysql.dsn", "")
	v.SetDefault("mysql.max_open_conns", 20)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("lmstfy.host", "")
	v.SetDefault("lmstfy.port", 7777)
	v.SetDefault("lmstfy.namespace", "hopely")
	v.SetDefault("lmstfy.token", "")
	v.SetDefault("lmstfy.notify_retry_queue", "payment_notify_retry")
	v.SetDefault("payment.merchant_id", "")
	v.SetDefault("payment.merchant_secret", "")
	v.SetDefault("payment.sandbox", true)
	v.SetDefault("payment.success_status_code", "2")
	v.SetDefault("payment.bypass_signature", "BYPASS_FOR_TEST")
	v.SetDefault("payment.test_order_prefix", "TEST_ORDER")
	v.SetDefault("payment.currency", "LKR")
	v.SetDefault("payment.return_url", "")
	v.SetDefault("payment.cancel_url", "")
	v.SetDefault("payment.notify_url", "")
	v.SetDefault("payment.country", "Sri Lanka")
	v.SetDefault("admin.jwt_secret", "")
	v.SetDefault("admin.token_ttl", 12*time.Hour)
}

// Load 从配置文件加载配置，HOPELY_ 前缀的环境变量覆盖文件中的值
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HOPELY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// 兼容旧部署里的网关变量名
	_ = v.BindEnv("payment.merchant_secret", "HOPELY_PAYMENT_MERCHANT_SECRET", "PAYHERE_MERCHANT_SECRET")
	_ = v.BindEnv("payment.sandbox", "HOPELY_PAYMENT_SANDBOX", "PAYHERE_SANDBOX")
	_ = v.BindEnv("payment.merchant_id", "HOPELY_PAYMENT_MERCHANT_ID", "PAYHERE_MERCHANT_ID")

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	return &cfg, nil
}

// LoadDefault 加载默认配置文件路径
func LoadDefault() (*Config, error) {
	if path := os.Getenv("HOPELY_CONFIG"); path != "" {
		return Load(path)
	}
	return Load(DefaultPath)
}

// Validate 验证配置完整性
// merchant_secret 不在此校验：缺失时仅签名相关请求失败（ConfigurationError）
func (c *Config) Validate() error {
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql dsn is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis addr is required")
	}
	if c.Lmstfy.Host == "" {
		return fmt.Errorf("lmstfy host is required")
	}
	if c.Lmstfy.NotifyRetryQueue == "" {
		return fmt.Errorf("lmstfy notify_retry_queue is required")
	}
	if c.Payment.SuccessStatusCode == "" {
		return fmt.Errorf("payment success_status_code is required")
	}
	if c.App.NodeID < 0 || c.App.NodeID > 1023 {
		return fmt.Errorf("app node_id must be within 0-1023")
	}
	return nil
}

// IsProduction 是否生产环境
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
