package bootstrap

import (
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config 是所有服务共享的配置结构，从 YAML 文件加载。
type Config struct {
	Infra struct {
		Mysql struct {
			DSN string `yaml:"dsn"`
		} `yaml:"mysql"`
		Redis struct {
			Addrs string `yaml:"addrs"` // 逗号分隔
		} `yaml:"redis"`
		Kafka struct {
			Brokers []string `yaml:"brokers"`
		} `yaml:"kafka"`
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Zookeeper struct {
			Servers []string `yaml:"servers"`
		} `yaml:"zookeeper"`
		Nacos struct {
			ServerAddrs string `yaml:"server_addrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
	} `yaml:"infra"`

	Gateways struct {
		PaymentURL string `yaml:"payment_url"` // 支付网关（创建/查询 PaymentIntent）
		CarrierURL string `yaml:"carrier_url"` // 承运商网关（面单/轨迹）
		MailURL    string `yaml:"mail_url"`    // 邮件投递网关
	} `yaml:"gateways"`

	App struct {
		// 退货窗口（自然日），随配置下发而不是写死在代码里
		ReturnWindowDays int `yaml:"return_window_days"`
		// 退货资格策略表达式（CEL），可由运营在不发版的情况下调整
		ReturnPolicyExpr string `yaml:"return_policy_expr"`
		DefaultCarrier   string `yaml:"default_carrier"`
	} `yaml:"app"`
}

var (
	currentConfig Config
	configOnce    sync.Once
)

// Init 加载配置，所有服务在 main 的最开始调用一次。
// 配置文件路径取自 CONFIG_PATH，缺省为 ./configs/config.yaml。
func Init() {
	configOnce.Do(func() {
		path := getEnv("CONFIG_PATH", "configs/config.yaml")
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to read config file")
		}
		if err := yaml.Unmarshal(data, &currentConfig); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("failed to parse config file")
		}
		applyDefaults(&currentConfig)
	})
}

// GetCurrentConfig 返回当前配置
func GetCurrentConfig() Config {
	return currentConfig
}

func applyDefaults(cfg *Config) {
	if cfg.Infra.Jaeger.Endpoint == "" {
		cfg.Infra.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces")
	}
	if len(cfg.Infra.Kafka.Brokers) == 0 {
		cfg.Infra.Kafka.Brokers = []string{getEnv("KAFKA_BROKERS", "localhost:9092")}
	}
	if cfg.Infra.Redis.Addrs == "" {
		cfg.Infra.Redis.Addrs = getEnv("REDIS_ADDRS", "localhost:6379")
	}
	if cfg.Infra.Nacos.ServerAddrs == "" {
		cfg.Infra.Nacos.ServerAddrs = getEnv("NACOS_SERVER_ADDRS", "localhost:8848")
	}
	if cfg.App.ReturnWindowDays == 0 {
		cfg.App.ReturnWindowDays = 30
	}
	if cfg.App.ReturnPolicyExpr == "" {
		cfg.App.ReturnPolicyExpr = "daysSinceDelivery <= 30.0"
	}
	if cfg.App.DefaultCarrier == "" {
		cfg.App.DefaultCarrier = "ups"
	}
}

// getEnv 从环境变量中读取配置，带缺省值
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
