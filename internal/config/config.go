package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Catalog    CatalogConfig    `yaml:"catalog" mapstructure:"catalog"`
	Match      MatchConfig      `yaml:"match" mapstructure:"match"`
	Projection ProjectionConfig `yaml:"projection" mapstructure:"projection"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver         string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL    string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns       int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns       int32  `yaml:"min_conns" mapstructure:"min_conns"`
	ConnectRetries int    `yaml:"connect_retries" mapstructure:"connect_retries"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	CORSOrigins        []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RateLimitRPS       float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst     int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// CatalogConfig points at an optional override for the embedded reference data.
type CatalogConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// MatchConfig holds the fund-match rule weights.
type MatchConfig struct {
	GrowthMultiplier    float64 `yaml:"growth_multiplier" mapstructure:"growth_multiplier"`
	IncomeMultiplier    float64 `yaml:"income_multiplier" mapstructure:"income_multiplier"`
	DefensiveMultiplier float64 `yaml:"defensive_multiplier" mapstructure:"defensive_multiplier"`
	BalancedBonus       float64 `yaml:"balanced_bonus" mapstructure:"balanced_bonus"`
	BalancedTolerance   int     `yaml:"balanced_tolerance" mapstructure:"balanced_tolerance"`
	ESGThreshold        int     `yaml:"esg_threshold" mapstructure:"esg_threshold"`
	ESGMultiplier       float64 `yaml:"esg_multiplier" mapstructure:"esg_multiplier"`
	NonESGBonus         float64 `yaml:"non_esg_bonus" mapstructure:"non_esg_bonus"`
	Normalization       float64 `yaml:"normalization" mapstructure:"normalization"`
	TopN                int     `yaml:"top_n" mapstructure:"top_n"`
}

// Assumption is the return, fee and adviser workload for one investment approach.
type Assumption struct {
	AnnualReturn   float64 `yaml:"annual_return" mapstructure:"annual_return" json:"annual_return"`
	Fee            float64 `yaml:"fee" mapstructure:"fee" json:"fee"`
	HoursPerClient float64 `yaml:"hours_per_client" mapstructure:"hours_per_client" json:"hours_per_client"`
}

// NetReturn is the annual return after fees, in percent.
func (a Assumption) NetReturn() float64 {
	return a.AnnualReturn - a.Fee
}

// ProjectionConfig holds the DFM calculator assumptions and input defaults.
type ProjectionConfig struct {
	DIY      Assumption `yaml:"diy" mapstructure:"diy"`
	Advisory Assumption `yaml:"advisory" mapstructure:"advisory"`
	DFM      Assumption `yaml:"dfm" mapstructure:"dfm"`

	DefaultPrincipal    float64 `yaml:"default_principal" mapstructure:"default_principal"`
	DefaultContribution float64 `yaml:"default_contribution" mapstructure:"default_contribution"`
	DefaultYears        int     `yaml:"default_years" mapstructure:"default_years"`
	DefaultApproach     string  `yaml:"default_approach" mapstructure:"default_approach"`
	DefaultClients      int     `yaml:"default_clients" mapstructure:"default_clients"`
}

// Approaches lists the assumption sets in display order.
var Approaches = []string{"diy", "advisory", "dfm"}

// Approach returns the assumption set for "diy", "advisory" or "dfm".
func (p ProjectionConfig) Approach(name string) (Assumption, bool) {
	switch name {
	case "diy":
		return p.DIY, true
	case "advisory":
		return p.Advisory, true
	case "dfm":
		return p.DFM, true
	}
	return Assumption{}, false
}

// BatchConfig configures bulk scoring.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// SalesforceConfig holds Salesforce JWT auth settings for lead creation.
type SalesforceConfig struct {
	ClientID   string  `yaml:"client_id" mapstructure:"client_id"`
	Username   string  `yaml:"username" mapstructure:"username"`
	KeyPath    string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL   string  `yaml:"login_url" mapstructure:"login_url"`
	LeadSource string  `yaml:"lead_source" mapstructure:"lead_source"`
	RateLimit  float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// Enabled reports whether enough settings are present to create leads.
func (s SalesforceConfig) Enabled() bool {
	return s.ClientID != "" && s.Username != "" && s.KeyPath != ""
}

// Load reads configuration from .env, config file and environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ADVISER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "adviser.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 1)
	v.SetDefault("store.connect_retries", 3)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 20.0)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("server.request_timeout_secs", 15)
	v.SetDefault("catalog.path", "")
	v.SetDefault("batch.max_concurrent", 8)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.lead_source", "Website")
	v.SetDefault("salesforce.rate_limit", 5.0)

	m := DefaultMatchConfig()
	v.SetDefault("match.growth_multiplier", m.GrowthMultiplier)
	v.SetDefault("match.income_multiplier", m.IncomeMultiplier)
	v.SetDefault("match.defensive_multiplier", m.DefensiveMultiplier)
	v.SetDefault("match.balanced_bonus", m.BalancedBonus)
	v.SetDefault("match.balanced_tolerance", m.BalancedTolerance)
	v.SetDefault("match.esg_threshold", m.ESGThreshold)
	v.SetDefault("match.esg_multiplier", m.ESGMultiplier)
	v.SetDefault("match.non_esg_bonus", m.NonESGBonus)
	v.SetDefault("match.normalization", m.Normalization)
	v.SetDefault("match.top_n", m.TopN)

	p := DefaultProjectionConfig()
	for _, name := range Approaches {
		a, _ := p.Approach(name)
		v.SetDefault("projection."+name+".annual_return", a.AnnualReturn)
		v.SetDefault("projection."+name+".fee", a.Fee)
		v.SetDefault("projection."+name+".hours_per_client", a.HoursPerClient)
	}
	v.SetDefault("projection.default_principal", p.DefaultPrincipal)
	v.SetDefault("projection.default_contribution", p.DefaultContribution)
	v.SetDefault("projection.default_years", p.DefaultYears)
	v.SetDefault("projection.default_approach", p.DefaultApproach)
	v.SetDefault("projection.default_clients", p.DefaultClients)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// DefaultMatchConfig returns the reference fund-match weights.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		GrowthMultiplier:    10,
		IncomeMultiplier:    10,
		DefensiveMultiplier: 10,
		BalancedBonus:       25,
		BalancedTolerance:   2,
		ESGThreshold:        2,
		ESGMultiplier:       15,
		NonESGBonus:         10,
		Normalization:       50,
		TopN:                3,
	}
}

// DefaultProjectionConfig returns the reference DFM assumptions and the
// calculator's starting inputs.
func DefaultProjectionConfig() ProjectionConfig {
	return ProjectionConfig{
		DIY:      Assumption{AnnualReturn: 4.5, Fee: 0.30, HoursPerClient: 12},
		Advisory: Assumption{AnnualReturn: 5.5, Fee: 0.75, HoursPerClient: 8},
		DFM:      Assumption{AnnualReturn: 6.5, Fee: 0.65, HoursPerClient: 3},

		DefaultPrincipal:    500_000,
		DefaultContribution: 20_000,
		DefaultYears:        10,
		DefaultApproach:     "advisory",
		DefaultClients:      50,
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
