// Package core provides the ShelfSense relocation engine and its operations.
package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/shelfsense/shelfsense-go/pkg/logging"
	"github.com/shelfsense/shelfsense-go/pkg/metrics"
	"github.com/shelfsense/shelfsense-go/pkg/planner"
	"github.com/shelfsense/shelfsense-go/pkg/scoring"
)

// Config contains the complete configuration of an Engine.
//
// It includes settings for:
//   - Data tables (where the input and output tables live)
//   - Memory (the decision log backend)
//   - Scoring (weight vectors and the hot/cold classification policy)
//   - Planner (capacity slack and anti-thrash knobs)
//   - Alerts and simulation (optional supplements)
//   - Logging
//
// Example:
//
//	config := core.DefaultConfig()
//	config.Memory = core.MemoryConfig{
//	    Provider: "sqlite",
//	    Config: map[string]interface{}{
//	        "db_path": "./shelfsense.db",
//	    },
//	}
//	engine, err := core.NewEngine(config)
type Config struct {
	// Data locates the input and output tables.
	Data DataConfig `json:"data" yaml:"data"`

	// Memory selects the decision log backend.
	Memory MemoryConfig `json:"memory" yaml:"memory"`

	// Scoring contains the weight vectors and the zone classifier.
	Scoring ScoringConfig `json:"scoring" yaml:"scoring"`

	// Planner contains the assignment planner knobs.
	Planner PlannerConfig `json:"planner" yaml:"planner"`

	// Alerts contains stock and sales decline thresholds.
	Alerts AlertsConfig `json:"alerts" yaml:"alerts"`

	// Simulation contains the what-if placement factors.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Logging configures the global logger.
	Logging logging.Config `json:"logging" yaml:"logging"`
}

// DataConfig locates the tables the engine reads and writes.
//
// File names are joined to Dir (inputs) or InsightsDir (outputs) unless they
// are absolute paths.
type DataConfig struct {
	// Dir holds the input tables. Default: data
	Dir string `json:"dir" yaml:"dir" validate:"required"`

	// InsightsDir holds the output tables. Default: insights
	InsightsDir string `json:"insights_dir" yaml:"insights_dir" validate:"required"`

	Movements string `json:"movements" yaml:"movements" validate:"required"`
	Layout    string `json:"layout" yaml:"layout" validate:"required"`
	Online    string `json:"online" yaml:"online" validate:"required"`
	Sales     string `json:"sales" yaml:"sales" validate:"required"`
	Stock     string `json:"stock" yaml:"stock" validate:"required"`
	Insights  string `json:"insights" yaml:"insights" validate:"required"`
	Plan      string `json:"plan" yaml:"plan" validate:"required"`

	// StockAlerts is the output of the stock alert report.
	StockAlerts string `json:"stock_alerts" yaml:"stock_alerts" validate:"required"`

	// Pairs lists complementary products. Optional; without it the
	// complementary signal is 0.
	Pairs string `json:"pairs" yaml:"pairs"`

	// SyntheticSalesMin and SyntheticSalesMax bound the placeholder sales
	// generated when the sales table is missing.
	SyntheticSalesMin float64 `json:"synthetic_sales_min" yaml:"synthetic_sales_min" validate:"gte=0"`
	SyntheticSalesMax float64 `json:"synthetic_sales_max" yaml:"synthetic_sales_max" validate:"gtfield=SyntheticSalesMin"`

	// SyntheticSalesSeed makes placeholder sales reproducible.
	SyntheticSalesSeed int64 `json:"synthetic_sales_seed" yaml:"synthetic_sales_seed"`
}

// MemoryConfig contains configuration for the decision log backend.
//
// Supported providers: json, sqlite, postgres, oceanbase (alias mysql), none
//
// Example:
//
//	memoryConfig := core.MemoryConfig{
//	    Provider: "postgres",
//	    Config: map[string]interface{}{
//	        "host":     "localhost",
//	        "port":     5432,
//	        "user":     "postgres",
//	        "password": "secret",
//	        "db_name":  "shelfsense",
//	    },
//	}
type MemoryConfig struct {
	// Provider is the backend name.
	Provider string `json:"provider" yaml:"provider" validate:"omitempty,oneof=json sqlite postgres oceanbase mysql none"`

	// Config contains provider-specific configuration.
	// For json: path
	// For SQLite: db_path, table_name
	// For OceanBase/MySQL: host, port, user, password, db_name, table_name
	// For PostgreSQL: host, port, user, password, db_name, table_name, ssl_mode
	Config map[string]interface{} `json:"config" yaml:"config"`

	// PendingHours is how long a planned move awaits its outcome. Default: 24
	PendingHours float64 `json:"pending_hours" yaml:"pending_hours" validate:"gte=0"`
}

// ScoringConfig contains the scoring model settings.
type ScoringConfig struct {
	// Weights is the relocation score weight vector; it must sum to 1.0.
	Weights scoring.Weights `json:"weights" yaml:"weights"`

	// ZoneWeights is the zone desirability weight vector; it must sum to 1.0.
	ZoneWeights scoring.ZoneWeights `json:"zone_weights" yaml:"zone_weights"`

	// Classifier is the hot/cold classification policy.
	Classifier metrics.Classifier `json:"classifier" yaml:"classifier"`

	// SeasonalMultiplier scales normalized online views into the seasonal
	// signal. 0 turns the signal off. Default: 1
	SeasonalMultiplier float64 `json:"seasonal_multiplier" yaml:"seasonal_multiplier" validate:"gte=0"`
}

// PlannerConfig contains the assignment planner knobs.
type PlannerConfig struct {
	// Slack is added to a zone's occupant count to get its capacity. Default: 5
	Slack int `json:"slack" yaml:"slack" validate:"gte=0"`

	// AntiThrashDays is the anti-thrash window in days. Default: 7
	AntiThrashDays float64 `json:"anti_thrash_days" yaml:"anti_thrash_days" validate:"gte=0"`

	// ImprovementRatio scales the previous move's sales snapshot. Default: 0.5
	ImprovementRatio float64 `json:"improvement_ratio" yaml:"improvement_ratio" validate:"gte=0"`

	// TopN limits a run to the N highest-scoring products (0 = all).
	TopN int `json:"top_n" yaml:"top_n" validate:"gte=0"`

	// OnlyUpgrades restricts destinations to zones more desirable than the
	// current one.
	OnlyUpgrades bool `json:"only_upgrades" yaml:"only_upgrades"`
}

// AlertsConfig contains thresholds of the stock and sales decline reports.
type AlertsConfig struct {
	// LowStockThreshold flags products at or below this stock. Default: 10
	LowStockThreshold int `json:"low_stock_threshold" yaml:"low_stock_threshold" validate:"gte=0"`

	// DeclineWindowDays is the recent window of the decline report. Default: 30
	DeclineWindowDays float64 `json:"decline_window_days" yaml:"decline_window_days" validate:"gt=0"`

	// DeclineDropPct flags products whose sales dropped by more than this
	// fraction. Default: 0.2
	DeclineDropPct float64 `json:"decline_drop_pct" yaml:"decline_drop_pct" validate:"gte=0"`
}

// SimulationConfig contains the factors of the what-if placement estimate.
type SimulationConfig struct {
	// EntranceZones is how many of the busiest zones count as entrance zones.
	// Default: 3
	EntranceZones int `json:"entrance_zones" yaml:"entrance_zones" validate:"gte=0"`

	// ImpulseBonus multiplies the estimate for moves into an entrance zone.
	// Default: 1.1
	ImpulseBonus float64 `json:"impulse_bonus" yaml:"impulse_bonus" validate:"gte=0"`

	// ColdPenalty multiplies the estimate for moves into a Cold zone.
	// Default: 0.8
	ColdPenalty float64 `json:"cold_penalty" yaml:"cold_penalty" validate:"gte=0"`

	// PremiumProducts get PremiumBonus on top when moved to an entrance zone.
	PremiumProducts []string `json:"premium_products,omitempty" yaml:"premium_products,omitempty"`

	// PremiumBonus defaults to 1.1.
	PremiumBonus float64 `json:"premium_bonus" yaml:"premium_bonus" validate:"gte=0"`
}

// DefaultConfig returns a configuration with every default applied: tables
// under data/ and insights/, a JSON decision log under agent_memory/ and the
// default weight vectors.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir:               "data",
			InsightsDir:       "insights",
			Movements:         "movements.csv",
			Layout:            "store_layout.csv",
			Online:            "online_product_performance.csv",
			Sales:             "pos_sales.csv",
			Stock:             "stock_levels.csv",
			Insights:          "final_product_insights.csv",
			Plan:              "relocation_plan.csv",
			StockAlerts:       "stock_alerts.csv",
			Pairs:             "product_pairs.csv",
			SyntheticSalesMin: metrics.DefaultSyntheticMin,
			SyntheticSalesMax: metrics.DefaultSyntheticMax,
		},
		Memory: MemoryConfig{
			Provider: "json",
			Config: map[string]interface{}{
				"path": filepath.Join("agent_memory", "decision_log.json"),
			},
			PendingHours: 24,
		},
		Scoring: ScoringConfig{
			Weights:     scoring.DefaultWeights(),
			ZoneWeights: scoring.DefaultZoneWeights(),
			Classifier:  metrics.DefaultClassifier(),

			SeasonalMultiplier: 1,
		},
		Planner: PlannerConfig{
			Slack:            metrics.DefaultSlack,
			AntiThrashDays:   7,
			ImprovementRatio: planner.DefaultImprovementRatio,
		},
		Alerts: AlertsConfig{
			LowStockThreshold: metrics.DefaultLowStockThreshold,
			DeclineWindowDays: 30,
			DeclineDropPct:    0.2,
		},
		Simulation: SimulationConfig{
			EntranceZones: 3,
			ImpulseBonus:  1.1,
			ColdPenalty:   0.8,
			PremiumBonus:  1.1,
		},
		Logging: logging.DefaultConfig(),
	}
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// The function:
//  1. Searches for .env or .env.example files (up to 5 directory levels up)
//  2. Loads environment variables from the found file
//  3. Applies the variables over DefaultConfig
//
// Supported environment variables:
//   - SHELFSENSE_DATA_DIR, SHELFSENSE_INSIGHTS_DIR
//   - MEMORY_PROVIDER (json, sqlite, postgres, oceanbase, mysql, none)
//   - MEMORY_JSON_PATH
//   - SQLITE_PATH, SQLITE_TABLE
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD, POSTGRES_DATABASE, POSTGRES_TABLE, POSTGRES_SSLMODE
//   - OCEANBASE_HOST, OCEANBASE_PORT, OCEANBASE_USER, OCEANBASE_PASSWORD, OCEANBASE_DATABASE, OCEANBASE_TABLE
//   - ZONE_CLASSIFIER (mean, median, tiered), ZONE_HOT_CUTOFF, ZONE_WARM_CUTOFF
//   - SEASONAL_MULTIPLIER, SHELFSENSE_PAIRS_FILE
//   - PLANNER_SLACK, PLANNER_ANTI_THRASH_DAYS, PLANNER_IMPROVEMENT_RATIO, PLANNER_PENDING_HOURS, PLANNER_TOP_N, PLANNER_ONLY_UPGRADES
//   - SYNTHETIC_SALES_SEED, SYNTHETIC_SALES_MIN, SYNTHETIC_SALES_MAX
//   - LOW_STOCK_THRESHOLD, DECLINE_WINDOW_DAYS, DECLINE_DROP_PCT
//   - LOG_LEVEL, LOG_FORMAT
//
// Returns a Config instance, or an error if a numeric variable cannot be parsed.
//
// Example:
//
//	config, err := core.LoadConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
func LoadConfigFromEnv() (*Config, error) {
	// Use FindEnvFile to locate .env file (supports upward search)
	envPath, found := FindEnvFile()
	if found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	cfg := DefaultConfig()
	p := envParser{}

	cfg.Data.Dir = getEnvOrDefault("SHELFSENSE_DATA_DIR", cfg.Data.Dir)
	cfg.Data.InsightsDir = getEnvOrDefault("SHELFSENSE_INSIGHTS_DIR", cfg.Data.InsightsDir)
	cfg.Data.SyntheticSalesSeed = p.getInt64("SYNTHETIC_SALES_SEED", cfg.Data.SyntheticSalesSeed)
	cfg.Data.SyntheticSalesMin = p.getFloat("SYNTHETIC_SALES_MIN", cfg.Data.SyntheticSalesMin)
	cfg.Data.SyntheticSalesMax = p.getFloat("SYNTHETIC_SALES_MAX", cfg.Data.SyntheticSalesMax)
	cfg.Data.Pairs = getEnvOrDefault("SHELFSENSE_PAIRS_FILE", cfg.Data.Pairs)

	provider := strings.ToLower(getEnvOrDefault("MEMORY_PROVIDER", cfg.Memory.Provider))
	cfg.Memory.Provider = provider
	switch provider {
	case "json":
		cfg.Memory.Config = map[string]interface{}{
			"path": getEnvOrDefault("MEMORY_JSON_PATH", filepath.Join("agent_memory", "decision_log.json")),
		}
	case "sqlite":
		cfg.Memory.Config = map[string]interface{}{
			"db_path":    getEnvOrDefault("SQLITE_PATH", "./shelfsense.db"),
			"table_name": getEnvOrDefault("SQLITE_TABLE", "decision_log"),
		}
	case "postgres":
		cfg.Memory.Config = map[string]interface{}{
			"host":       getEnvOrDefault("POSTGRES_HOST", "localhost"),
			"port":       p.getInt("POSTGRES_PORT", 5432),
			"user":       getEnvOrDefault("POSTGRES_USER", "postgres"),
			"password":   os.Getenv("POSTGRES_PASSWORD"),
			"db_name":    getEnvOrDefault("POSTGRES_DATABASE", "shelfsense"),
			"table_name": getEnvOrDefault("POSTGRES_TABLE", "decision_log"),
			"ssl_mode":   getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
		}
	case "oceanbase", "mysql":
		cfg.Memory.Config = map[string]interface{}{
			"host":       getEnvOrDefault("OCEANBASE_HOST", "127.0.0.1"),
			"port":       p.getInt("OCEANBASE_PORT", 2881),
			"user":       getEnvOrDefault("OCEANBASE_USER", "root@sys"),
			"password":   os.Getenv("OCEANBASE_PASSWORD"),
			"db_name":    getEnvOrDefault("OCEANBASE_DATABASE", "shelfsense"),
			"table_name": getEnvOrDefault("OCEANBASE_TABLE", "decision_log"),
		}
	case "none":
		cfg.Memory.Config = nil
	}
	cfg.Memory.PendingHours = p.getFloat("PLANNER_PENDING_HOURS", cfg.Memory.PendingHours)

	cfg.Scoring.Classifier.Policy = metrics.Policy(getEnvOrDefault("ZONE_CLASSIFIER", string(cfg.Scoring.Classifier.Policy)))
	cfg.Scoring.Classifier.HotCutoff = p.getFloat("ZONE_HOT_CUTOFF", cfg.Scoring.Classifier.HotCutoff)
	cfg.Scoring.Classifier.WarmCutoff = p.getFloat("ZONE_WARM_CUTOFF", cfg.Scoring.Classifier.WarmCutoff)
	cfg.Scoring.SeasonalMultiplier = p.getFloat("SEASONAL_MULTIPLIER", cfg.Scoring.SeasonalMultiplier)

	cfg.Planner.Slack = p.getInt("PLANNER_SLACK", cfg.Planner.Slack)
	cfg.Planner.AntiThrashDays = p.getFloat("PLANNER_ANTI_THRASH_DAYS", cfg.Planner.AntiThrashDays)
	cfg.Planner.ImprovementRatio = p.getFloat("PLANNER_IMPROVEMENT_RATIO", cfg.Planner.ImprovementRatio)
	cfg.Planner.TopN = p.getInt("PLANNER_TOP_N", cfg.Planner.TopN)
	cfg.Planner.OnlyUpgrades = p.getBool("PLANNER_ONLY_UPGRADES", cfg.Planner.OnlyUpgrades)

	cfg.Alerts.LowStockThreshold = p.getInt("LOW_STOCK_THRESHOLD", cfg.Alerts.LowStockThreshold)
	cfg.Alerts.DeclineWindowDays = p.getFloat("DECLINE_WINDOW_DAYS", cfg.Alerts.DeclineWindowDays)
	cfg.Alerts.DeclineDropPct = p.getFloat("DECLINE_DROP_PCT", cfg.Alerts.DeclineDropPct)

	cfg.Logging.Level = getEnvOrDefault("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnvOrDefault("LOG_FORMAT", cfg.Logging.Format)

	if p.err != nil {
		return nil, NewEngineError("LoadConfigFromEnv", fmt.Errorf("%w: %v", ErrInvalidConfig, p.err))
	}
	return cfg, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
//
// Parameters:
//   - envPath: Path to the .env file
//
// Returns a Config instance, or an error if loading fails.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file. Fields absent from
// the file keep their DefaultConfig values.
//
// Parameters:
//   - path: Path to the JSON configuration file
//
// Returns a Config instance, or an error if loading or parsing fails.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewEngineError("LoadConfigFromJSON", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, NewEngineError("LoadConfigFromJSON", fmt.Errorf("%w: %v", ErrInvalidConfig, err))
	}

	return config, nil
}

// LoadConfigFromYAML loads configuration from a YAML file. Fields absent from
// the file keep their DefaultConfig values.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns a Config instance, or an error if loading or parsing fails.
func LoadConfigFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewEngineError("LoadConfigFromYAML", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, NewEngineError("LoadConfigFromYAML", fmt.Errorf("%w: %v", ErrInvalidConfig, err))
	}

	return config, nil
}

// LoadConfig picks the loader by file extension: .json, .yaml/.yml or a .env
// file. An empty path loads from the environment.
func LoadConfig(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case "":
		if path == "" {
			return LoadConfigFromEnv()
		}
		return LoadConfigFromEnvFile(path)
	case ".json":
		return LoadConfigFromJSON(path)
	case ".yaml", ".yml":
		return LoadConfigFromYAML(path)
	default:
		return LoadConfigFromEnvFile(path)
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration.
//
// Checks that:
//   - every struct tag constraint holds (required paths, non-negative knobs)
//   - both weight vectors are non-negative and sum to 1.0
//   - the classifier policy is known and its cutoffs are ordered
//
// Returns an error wrapping ErrInvalidConfig if validation fails, nil otherwise.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return NewEngineError("Validate", fmt.Errorf("%w: %v", ErrInvalidConfig, err))
	}
	if err := c.Scoring.Weights.Validate(); err != nil {
		return NewEngineError("Validate", fmt.Errorf("%w: %v", ErrInvalidConfig, err))
	}
	if err := c.Scoring.ZoneWeights.Validate(); err != nil {
		return NewEngineError("Validate", fmt.Errorf("%w: %v", ErrInvalidConfig, err))
	}
	if err := c.Scoring.Classifier.Validate(); err != nil {
		return NewEngineError("Validate", fmt.Errorf("%w: %v", ErrInvalidConfig, err))
	}
	return nil
}

// PlannerPolicy converts the planner settings into a planner.Policy.
func (c *Config) PlannerPolicy() planner.Policy {
	return planner.Policy{
		AntiThrashWindow: days(c.Planner.AntiThrashDays),
		ImprovementRatio: c.Planner.ImprovementRatio,
		TopN:             c.Planner.TopN,
		OnlyUpgrades:     c.Planner.OnlyUpgrades,
	}
}

// DataPath resolves an input table file name against Data.Dir.
func (c *Config) DataPath(name string) string {
	return resolve(c.Data.Dir, name)
}

// InsightsPath resolves an output table file name against Data.InsightsDir.
func (c *Config) InsightsPath(name string) string {
	return resolve(c.Data.InsightsDir, name)
}

func resolve(dir, name string) string {
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

func days(d float64) time.Duration {
	return time.Duration(d * float64(24*time.Hour))
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envParser reads typed environment variables and keeps the first parse error.
type envParser struct {
	err error
}

func (p *envParser) lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func (p *envParser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%s=%q: %v", key, value, err)
	}
}

func (p *envParser) getInt(key string, def int) int {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return i
}

func (p *envParser) getInt64(key string, def int64) int64 {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return i
}

func (p *envParser) getFloat(key string, def float64) float64 {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return f
}

func (p *envParser) getBool(key string, def bool) bool {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return b
}

// FindEnvFile searches for .env or .env.example files.
//
// The search:
//  1. Checks the current directory
//  2. Searches up to 5 directory levels up
//  3. Returns the first .env or .env.example file found
//
// Returns:
//   - path: Path to the found file (empty if not found)
//   - found: True if a file was found, false otherwise
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
