package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hazyhaar/churn-insights/pkg/api"
	"github.com/hazyhaar/churn-insights/pkg/classify"
	"github.com/hazyhaar/churn-insights/pkg/ingest"
	"github.com/hazyhaar/churn-insights/pkg/member"
	"github.com/hazyhaar/churn-insights/pkg/money"
	"github.com/hazyhaar/churn-insights/pkg/session"
	"gopkg.in/yaml.v3"
)

type config struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
	// Preload is an export file or URL loaded at startup and on SIGHUP.
	Preload string `yaml:"preload"`
	// AllowURLUploads lets API and MCP clients load exports by URL.
	AllowURLUploads bool `yaml:"allow_url_uploads"`

	CSV struct {
		// Delimiter overrides every format's separator; empty keeps each
		// format's own (comma for csv, tab for tsv, sniffed for txt).
		Delimiter string `yaml:"delimiter"`
		Encoding  string `yaml:"encoding"`
	} `yaml:"csv"`

	Thresholds classify.Thresholds `yaml:"thresholds"`

	// Aliases adds header spellings per canonical field name.
	Aliases map[string][]string `yaml:"aliases"`

	Currency struct {
		Symbol string `yaml:"symbol"`
	} `yaml:"currency"`
}

func defaultConfig() config {
	cfg := config{
		Addr:        ":8420",
		MaxUploadMB: 32,
		Thresholds:  classify.DefaultThresholds(),
	}
	cfg.CSV.Encoding = "utf-8"
	cfg.Currency.Symbol = money.DefaultSymbol
	return cfg
}

// parseConfig overlays YAML onto the defaults; keys left out keep them.
func parseConfig(data []byte) (config, error) {
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.MaxUploadMB <= 0 {
		return cfg, fmt.Errorf("max_upload_mb must be positive, got %d", cfg.MaxUploadMB)
	}
	if cfg.Thresholds.MinRiskFactors < 1 || cfg.Thresholds.MinRiskFactors > 4 {
		return cfg, fmt.Errorf("thresholds.min_risk_factors must be between 1 and 4, got %d", cfg.Thresholds.MinRiskFactors)
	}
	if len([]rune(cfg.CSV.Delimiter)) > 1 {
		return cfg, fmt.Errorf("csv.delimiter must be a single character, got %q", cfg.CSV.Delimiter)
	}
	return cfg, nil
}

func loadConfig(path string, logger *slog.Logger) config {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no config file, using defaults", "path", path)
			return defaultConfig()
		}
		logger.Error("read config", "error", err)
		os.Exit(1)
	}
	cfg, err := parseConfig(data)
	if err != nil {
		logger.Error("parse config", "error", err)
		os.Exit(1)
	}
	return cfg
}

func (c config) session(logger *slog.Logger) (session.Config, error) {
	aliases, err := member.DefaultAliases().With(c.Aliases)
	if err != nil {
		return session.Config{}, err
	}
	return session.Config{
		Ingest: ingest.Options{
			Delimiter: c.CSV.Delimiter,
			Encoding:  c.CSV.Encoding,
			Aliases:   aliases,
		},
		Thresholds: c.Thresholds,
		Logger:     logger,
	}, nil
}

func (c config) api(logger *slog.Logger) api.Config {
	return api.Config{
		Logger:          logger,
		Currency:        money.Formatter{Symbol: c.Currency.Symbol},
		MaxUploadBytes:  c.MaxUploadMB << 20,
		AllowURLUploads: c.AllowURLUploads,
	}
}
