// Package config reads run descriptions from JSON, YAML or TOML files.
// YAML and TOML documents are decoded generically and re-encoded as JSON,
// so every format shares the json tags below.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
	"github.com/wdm0006/socioprep/pkg/recipe"
	"github.com/wdm0006/socioprep/pkg/transform/grid"
	"github.com/wdm0006/socioprep/pkg/transform/outliers"
)

type Input struct {
	Path      string `json:"path"`
	Type      string `json:"type"` // csv|jsonl|parquet (default from extension)
	Delimiter string `json:"delimiter"`
	// Raw keeps every column as text until a cleaning step parses it.
	Raw bool `json:"raw"`
}

type Output struct {
	Path      string `json:"path"` // default: processed-data/<stem>_processed.<ext>
	Type      string `json:"type"`
	Delimiter string `json:"delimiter"`
}

type Poverty struct {
	Years       []int  `json:"years"`
	From        int    `json:"from"`
	To          int    `json:"to"`
	SinglePoint string `json:"single_point"` // null|hold
	OutOfRange  string `json:"out_of_range"` // drop|fail
}

type Food struct {
	Missing           string   `json:"missing"` // analyze|drop|impute
	OutlierColumns    []string `json:"outlier_columns"`
	MaxOutlierColumns int      `json:"max_outlier_columns"`
	OutlierMethod     string   `json:"outlier_method"` // iqr|zscore
	Threshold         float64  `json:"threshold"`
	FlagOutliers      bool     `json:"flag_outliers"`
}

// Config describes one run. Recipe selects a built-in pipeline
// ("poverty" or "food_prices"); without it Steps are run in order.
type Config struct {
	Recipe  string            `json:"recipe"`
	Input   Input             `json:"input"`
	Output  Output            `json:"output"`
	Poverty Poverty           `json:"poverty"`
	Food    Food              `json:"food"`
	Steps   []json.RawMessage `json:"steps"`
}

// Load picks the decoder from the file extension.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(b, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes b as "json", "yaml"/"yml" or "toml".
func Parse(b []byte, format string) (*Config, error) {
	var generic any
	switch format {
	case "json", "":
	case "yaml", "yml":
		if err := yaml.Unmarshal(b, &generic); err != nil {
			return nil, err
		}
	case "toml":
		if err := toml.Unmarshal(b, &generic); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (want json|yaml|toml)", format)
	}
	if generic != nil {
		var err error
		if b, err = json.Marshal(generic); err != nil {
			return nil, err
		}
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Delimiter returns the first rune of s, or 0 to let the reader decide.
func Delimiter(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func (c *Config) PovertyOptions(log *slog.Logger) (recipe.PovertyOptions, error) {
	sp, err := grid.ParseSinglePoint(c.Poverty.SinglePoint)
	if err != nil {
		return recipe.PovertyOptions{}, err
	}
	oor, err := grid.ParseOutOfRange(c.Poverty.OutOfRange)
	if err != nil {
		return recipe.PovertyOptions{}, err
	}
	return recipe.PovertyOptions{
		Years:       c.Poverty.Years,
		From:        c.Poverty.From,
		To:          c.Poverty.To,
		SinglePoint: sp,
		OutOfRange:  oor,
		Logger:      log,
	}, nil
}

func (c *Config) FoodOptions(log *slog.Logger) (recipe.FoodOptions, error) {
	ms, err := recipe.ParseMissingStrategy(c.Food.Missing)
	if err != nil {
		return recipe.FoodOptions{}, err
	}
	m, err := outliers.ParseMethod(c.Food.OutlierMethod)
	if err != nil {
		return recipe.FoodOptions{}, err
	}
	return recipe.FoodOptions{
		Missing:           ms,
		OutlierColumns:    c.Food.OutlierColumns,
		MaxOutlierColumns: c.Food.MaxOutlierColumns,
		OutlierMethod:     m,
		Threshold:         c.Food.Threshold,
		FlagOutliers:      c.Food.FlagOutliers,
		Logger:            log,
	}, nil
}

// Pipeline builds the configured pipeline for a table with the given
// column names.
func (c *Config) Pipeline(names []string, log *slog.Logger) (*ds.Pipeline, error) {
	switch strings.ToLower(c.Recipe) {
	case "":
		return BuildPipeline(c.Steps, log)
	case "poverty":
		opt, err := c.PovertyOptions(log)
		if err != nil {
			return nil, err
		}
		return recipe.Poverty(opt), nil
	case "food_prices", "food-prices":
		opt, err := c.FoodOptions(log)
		if err != nil {
			return nil, err
		}
		p, _ := recipe.FoodPrices(names, opt)
		return p, nil
	}
	return nil, fmt.Errorf("unknown recipe %q (want poverty|food_prices)", c.Recipe)
}
