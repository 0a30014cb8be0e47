package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"AlbionPulse/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Backend struct {
		Type         string        `yaml:"type"`
		BatchSize    int           `yaml:"batch_size"`
		BatchTimeout time.Duration `yaml:"batch_timeout"`
	} `yaml:"backend"`
	Kafka struct {
		Brokers       []string `yaml:"brokers"`
		QuotesTopic   string   `yaml:"quotes_topic"`
		KillsTopic    string   `yaml:"kills_topic"`
		GoldTopic     string   `yaml:"gold_topic"`
		RequiredAcks  int      `yaml:"required_acks"`
		Compression   string   `yaml:"compression"`
		Producer      struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Cache struct {
		VolatileTTL time.Duration `yaml:"volatile_ttl"`
		StandardTTL time.Duration `yaml:"standard_ttl"`
		StableTTL   time.Duration `yaml:"stable_ttl"`
		MaxEntries  int           `yaml:"max_entries"`
	} `yaml:"cache"`
	Albion struct {
		PriceAPIURL    string        `yaml:"price_api_url"`
		GoldAPIURL     string        `yaml:"gold_api_url"`
		Region         string        `yaml:"region"`
		Cities         []string      `yaml:"cities"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		RateLimit      float64       `yaml:"rate_limit"`
		RateBurst      int           `yaml:"rate_burst"`
	} `yaml:"albion"`
	Ingest struct {
		WebSocketURL   string        `yaml:"websocket_url"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		Topics         []string      `yaml:"topics"`
	} `yaml:"ingest"`
	Outlier struct {
		Threshold float64 `yaml:"threshold"`
	} `yaml:"outlier"`
	Scanner struct {
		SalesTaxRate    float64 `yaml:"sales_tax_rate"`
		SetupFeeRate    float64 `yaml:"setup_fee_rate"`
		TransportRate   float64 `yaml:"transport_rate"`
		DefaultDistance float64 `yaml:"default_distance"`
		MinProfit       float64 `yaml:"min_profit"`
		MinROI          float64 `yaml:"min_roi"`
		MaxResults      int     `yaml:"max_results"`
		Engine          string  `yaml:"engine"`
	} `yaml:"scanner"`
	Aggregation struct {
		Interval time.Duration `yaml:"interval"`
		Lookback time.Duration `yaml:"lookback"`
	} `yaml:"aggregation"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("ALBION_PRICE_API_URL"); v != "" {
		c.Albion.PriceAPIURL = v
	}
	if v := os.Getenv("ALBION_CITIES"); v != "" {
		c.Albion.Cities = strings.Split(v, ",")
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("INGEST_WEBSOCKET_URL"); v != "" {
		c.Ingest.WebSocketURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Redis.Host = host
		if ok {
			c.Redis.Port = util.ParseIntDefault(port, c.Redis.Port)
		}
		c.Redis.Enabled = true
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("SCANNER_MIN_ROI"); v != "" {
		c.Scanner.MinROI = util.ParseFloatDefault(v, c.Scanner.MinROI)
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type == "" {
		return fmt.Errorf("backend.type is required")
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return fmt.Errorf("backend.type must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if len(c.Albion.Cities) == 0 {
		return fmt.Errorf("albion.cities cannot be empty")
	}
	if c.Albion.PriceAPIURL == "" {
		return fmt.Errorf("albion.price_api_url is required")
	}
	if c.Scanner.SalesTaxRate < 0 || c.Scanner.SalesTaxRate >= 1 {
		return fmt.Errorf("scanner.sales_tax_rate must be in [0, 1)")
	}
	if c.Scanner.SetupFeeRate < 0 || c.Scanner.SetupFeeRate >= 1 {
		return fmt.Errorf("scanner.setup_fee_rate must be in [0, 1)")
	}
	return nil
}
