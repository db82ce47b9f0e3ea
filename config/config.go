package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/joripage/matching-engine/pkg/api"
	redis_wrapper "github.com/joripage/matching-engine/pkg/infra/redis"
	kafkawrapper "github.com/joripage/matching-engine/pkg/kafka_wrapper"
	"github.com/joripage/matching-engine/pkg/oms"
	riskrule "github.com/joripage/matching-engine/pkg/oms/risk_rule"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	ServiceName string                     `yaml:"service_name"`
	LogLevel    string                     `yaml:"log_level"`
	Processor   *oms.Config                `yaml:"processor"`
	HTTP        *api.ServerConfig          `yaml:"http"`
	Risk        *RiskConfig                `yaml:"risk"`
	Redis       *redis_wrapper.RedisConfig `yaml:"redis"`
	Kafka       *kafkawrapper.DLQConfig    `yaml:"kafka"`
}

type RiskConfig struct {
	PriceLimits  map[string]riskrule.PriceLimit `yaml:"price_limits"`
	TickSizeFile string                         `yaml:"tick_size_file"`
}

// Load load config from file and environment variables. A .env file in the
// working directory is applied first; an empty path falls back to
// CONFIG_FILE, and with neither set the defaults are returned.
func Load(filePath string) (*AppConfig, error) {
	_ = godotenv.Load()

	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	sugar := zap.S().With("func", "config.Load", "filePath", filePath)
	sugar.Debug("Load config...")

	cfg := &AppConfig{}
	if len(filePath) > 0 {
		configBytes, err := os.ReadFile(filePath)
		if err != nil {
			sugar.Error("Failed to load config file")
			return nil, err
		}
		configBytes = []byte(os.ExpandEnv(string(configBytes)))

		if err := yaml.Unmarshal(configBytes, cfg); err != nil {
			sugar.Error("Failed to parse config file")
			return nil, fmt.Errorf("parse %s: %w", filePath, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sugar.Debugf("config: %+v", cfg)
	return cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "matching-engine"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Processor == nil {
		c.Processor = &oms.Config{}
	}
	c.Processor.ApplyDefaults()
	if c.HTTP == nil {
		c.HTTP = &api.ServerConfig{}
	}
	c.HTTP.ApplyDefaults()
	if c.Risk == nil {
		c.Risk = &RiskConfig{}
	}
	if c.Redis != nil {
		c.Redis.ApplyDefaults()
	}
}

func (c *AppConfig) Validate() error {
	if err := c.Processor.Validate(); err != nil {
		return fmt.Errorf("processor: %w", err)
	}
	for symbol, limit := range c.Risk.PriceLimits {
		if limit.Floor > limit.Ceil {
			return fmt.Errorf("risk: price limit for %s has floor %v above ceil %v", symbol, limit.Floor, limit.Ceil)
		}
	}
	if c.Kafka != nil && len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka: dlq_topic is required when brokers are set")
	}
	return nil
}

// RiskRules builds the configured pre-trade checks.
func (c *AppConfig) RiskRules() ([]riskrule.RiskRule, error) {
	var rules []riskrule.RiskRule
	if len(c.Risk.PriceLimits) > 0 {
		rules = append(rules, riskrule.NewLimitPriceRule(c.Risk.PriceLimits))
	}
	if c.Risk.TickSizeFile != "" {
		rule, err := riskrule.NewTickSizeRuleFromFile(c.Risk.TickSizeFile)
		if err != nil {
			return nil, fmt.Errorf("load tick sizes: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
