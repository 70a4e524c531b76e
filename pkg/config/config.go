package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Log         struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Server struct {
		Enabled         bool          `yaml:"enabled" default:"true"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		RunOnStart      bool          `yaml:"run_on_start" default:"false"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	MarketData struct {
		Provider   string        `yaml:"provider" default:"finnhub" validate:"oneof=finnhub clickhouse"`
		BaseURL    string        `yaml:"base_url" default:"https://finnhub.io/api/v1"`
		APIKey     string        `yaml:"api_key"`
		Period     string        `yaml:"period" default:"1y"`
		Timeout    time.Duration `yaml:"timeout" default:"15s"`
		RatePerSec float64       `yaml:"rate_per_sec" default:"1" validate:"gt=0"`
		Burst      int           `yaml:"burst" default:"5" validate:"gte=1"`
		RetryMax   int           `yaml:"retry_max" default:"2" validate:"gte=0"`
		BackoffMin time.Duration `yaml:"backoff_min" default:"200ms"`
		BackoffMax time.Duration `yaml:"backoff_max" default:"3s"`
	} `yaml:"market_data"`
	Benchmark struct {
		Symbol string `yaml:"symbol" default:"^NSEI" validate:"required"`
		Period string `yaml:"period" default:"1y"`
	} `yaml:"benchmark"`
	Financials struct {
		Enabled      bool   `yaml:"enabled" default:"true"`
		SymbolSuffix string `yaml:"symbol_suffix" default:".NS"`
	} `yaml:"financials"`
	Model struct {
		Type       string        `yaml:"type" default:"file" validate:"oneof=file http"`
		Path       string        `yaml:"path" default:"config/model.json"`
		ServiceURL string        `yaml:"service_url"`
		Timeout    time.Duration `yaml:"timeout" default:"3s"`
	} `yaml:"model"`
	Ranking struct {
		UniverseFile    string        `yaml:"universe_file" default:"universe/smallcap_250.csv"`
		Symbols         []string      `yaml:"symbols"`
		TopN            int           `yaml:"top_n" default:"5" validate:"gte=1"`
		MinHistory      int           `yaml:"min_history" default:"100" validate:"gte=1"`
		Workers         int           `yaml:"workers" default:"4" validate:"gte=1"`
		SymbolTimeout   time.Duration `yaml:"symbol_timeout" default:"30s"`
		BearishMinScore int           `yaml:"bearish_min_score" default:"8" validate:"gte=0,lte=10"`
	} `yaml:"ranking"`
	Liquidity struct {
		Lookback       int     `yaml:"lookback" default:"20" validate:"gte=1"`
		MinPrice       float64 `yaml:"min_price" default:"20"`
		MinAvgTurnover float64 `yaml:"min_avg_turnover" default:"10000000"`
	} `yaml:"liquidity"`
	Cache struct {
		Type  string        `yaml:"type" default:"memory" validate:"oneof=none memory redis"`
		TTL   time.Duration `yaml:"ttl" default:"6h"`
		Redis struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db" default:"0"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled" default:"false"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"swingrank"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled" default:"false"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"swingrank.picks"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=gzip snappy lz4 zstd"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"kafka"`
	Notify struct {
		GreenAPI struct {
			Enabled     bool          `yaml:"enabled" default:"false"`
			Host        string        `yaml:"host" default:"7105.api.greenapi.com"`
			InstanceID  string        `yaml:"instance_id"`
			APIToken    string        `yaml:"api_token"`
			TargetPhone string        `yaml:"target_phone"`
			Timeout     time.Duration `yaml:"timeout" default:"15s"`
		} `yaml:"greenapi"`
	} `yaml:"notify"`
	Report struct {
		Enabled   bool   `yaml:"enabled" default:"true"`
		OutputDir string `yaml:"output_dir" default:"output"`
	} `yaml:"report"`
}

var validate = validator.New()

// Default returns a configuration with every default applied and no file read.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides it with environment
// variables. A .env file in the working directory is honoured when present.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.MarketData.APIKey = v
	}
	if v := os.Getenv("UNIVERSE"); v != "" {
		c.Ranking.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("TOP_N"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Ranking.TopN = n
		}
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		c.Model.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("GREENAPI_INSTANCE_ID"); v != "" {
		c.Notify.GreenAPI.InstanceID = v
	}
	if v := os.Getenv("GREENAPI_API_TOKEN"); v != "" {
		c.Notify.GreenAPI.APIToken = v
	}
	if v := os.Getenv("GREENAPI_TARGET_PHONE"); v != "" {
		c.Notify.GreenAPI.TargetPhone = v
	}
	if v := os.Getenv("GREENAPI_HOST"); v != "" {
		c.Notify.GreenAPI.Host = v
	}
}

// Validate checks field rules and cross-section requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.MarketData.Provider == "finnhub" && c.MarketData.APIKey == "" {
		return fmt.Errorf("market_data.api_key is required for provider finnhub")
	}
	if c.MarketData.Provider == "clickhouse" && !c.ClickHouse.Enabled {
		return fmt.Errorf("market_data.provider clickhouse requires clickhouse.enabled")
	}
	if c.Model.Type == "http" && c.Model.ServiceURL == "" {
		return fmt.Errorf("model.service_url is required for model type http")
	}
	if c.Model.Type == "file" && c.Model.Path == "" {
		return fmt.Errorf("model.path is required for model type file")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Ranking.UniverseFile == "" && len(c.Ranking.Symbols) == 0 {
		return fmt.Errorf("ranking.universe_file or ranking.symbols is required")
	}
	return nil
}
