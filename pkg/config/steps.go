package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
	"github.com/wdm0006/socioprep/pkg/transform/clean"
	"github.com/wdm0006/socioprep/pkg/transform/convert"
	"github.com/wdm0006/socioprep/pkg/transform/derive"
	"github.com/wdm0006/socioprep/pkg/transform/grid"
	"github.com/wdm0006/socioprep/pkg/transform/impute"
	"github.com/wdm0006/socioprep/pkg/transform/outliers"
	"github.com/wdm0006/socioprep/pkg/transform/reshape"
	"github.com/wdm0006/socioprep/pkg/transform/standardize"
	"github.com/wdm0006/socioprep/pkg/transform/validate"
)

// target accepts either "column" or "columns".
type target struct {
	Column  string   `json:"column"`
	Columns []string `json:"columns"`
}

func (t target) names() []string {
	if t.Column != "" {
		return append([]string{t.Column}, t.Columns...)
	}
	return t.Columns
}

type bounds struct {
	Column string   `json:"column"`
	Min    *float64 `json:"min"`
	Max    *float64 `json:"max"`
}

func decode(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// BuildPipeline turns a list of single-key step objects into a pipeline.
// Unknown step names are logged and skipped; malformed arguments fail.
func BuildPipeline(steps []json.RawMessage, log *slog.Logger) (*ds.Pipeline, error) {
	if log == nil {
		log = slog.Default()
	}
	p := ds.NewPipeline().WithLogger(log)
	for i, raw := range steps {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		if len(probe) != 1 {
			return nil, fmt.Errorf("steps[%d]: want exactly one step name, got %d keys", i, len(probe))
		}
		for k, v := range probe {
			t, err := buildStep(k, v, log)
			if err != nil {
				return nil, fmt.Errorf("steps[%d] %s: %w", i, k, err)
			}
			if t == nil {
				log.Warn("unknown step ignored", "index", i, "step", k)
				continue
			}
			p.Add(t)
		}
	}
	return p, nil
}

func buildStep(name string, v json.RawMessage, log *slog.Logger) (ds.Transform, error) {
	switch name {
	case "impute_constant":
		var s struct {
			Column string `json:"column"`
			Value  any    `json:"value"`
		}
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		return &impute.Constant{Column: s.Column, Value: s.Value}, nil
	case "impute_mean", "impute_median", "impute_mode":
		var s struct {
			Column string `json:"column"`
		}
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		switch name {
		case "impute_mean":
			return &impute.Mean{Column: s.Column}, nil
		case "impute_median":
			return &impute.Median{Column: s.Column}, nil
		}
		return &impute.Mode{Column: s.Column}, nil
	case "trim", "lower":
		var s target
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		if name == "trim" {
			return &standardize.Trim{Columns: s.names()}, nil
		}
		return &standardize.Lower{Columns: s.names()}, nil
	case "regex_replace":
		var s struct {
			target
			Pattern string `json:"pattern"`
			Replace string `json:"replace"`
		}
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		return &standardize.RegexReplace{Columns: s.names(), Pattern: s.Pattern, Replace: s.Replace}, nil
	case "map_values":
		var s struct {
			target
			Map map[string]string `json:"map"`
		}
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		return &standardize.MapValues{Columns: s.names(), Map: s.Map}, nil
	case "validate_in":
		var s struct {
			Column string   `json:"column"`
			Values []string `json:"values"`
		}
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		return validate.NewInSet(s.Column, s.Values), nil
	case "validate_range":
		var s bounds
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		return &validate.Range{Column: s.Column, Min: s.Min, Max: s.Max}, nil
	case "cap_range":
		var s bounds
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		return &outliers.Cap{Column: s.Column, Min: s.Min, Max: s.Max}, nil
	case "require_columns":
		var s target
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		return &validate.Required{Columns: s.names()}, nil
	case "reshape":
		var s struct {
			Years      []int    `json:"years"`
			IDColumns  []string `json:"id_columns"`
			YearColumn string   `json:"year_column"`
			Columns    []string `json:"columns"`
		}
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		if len(s.Years) == 0 {
			return nil, fmt.Errorf("years is required")
		}
		return &reshape.WideToLong{Years: s.Years, IDColumns: s.IDColumns, YearColumn: s.YearColumn, Columns: s.Columns}, nil
	case "clean_numeric":
		var s struct {
			IDColumns  []string `json:"id_columns"`
			IntColumns []string `json:"int_columns"`
			Separators []string `json:"separators"`
		}
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		return &clean.Numeric{IDColumns: s.IDColumns, IntColumns: s.IntColumns, Separators: s.Separators}, nil
	case "grid_fill":
		var s struct {
			RegionColumn   string `json:"region_column"`
			ProvinceColumn string `json:"province_column"`
			YearColumn     string `json:"year_column"`
			From           int    `json:"from"`
			To             int    `json:"to"`
			SinglePoint    string `json:"single_point"`
			OutOfRange     string `json:"out_of_range"`
		}
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		sp, err := grid.ParseSinglePoint(s.SinglePoint)
		if err != nil {
			return nil, err
		}
		oor, err := grid.ParseOutOfRange(s.OutOfRange)
		if err != nil {
			return nil, err
		}
		return &grid.Interpolate{
			Options: grid.Options{
				RegionColumn:   s.RegionColumn,
				ProvinceColumn: s.ProvinceColumn,
				YearColumn:     s.YearColumn,
				From:           s.From,
				To:             s.To,
				SinglePoint:    sp,
				OutOfRange:     oor,
			},
			Logger: log,
		}, nil
	case "to_time":
		var s struct {
			target
			Layouts []string `json:"layouts"`
		}
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		return &convert.ToTime{Columns: s.names(), Layouts: s.Layouts}, nil
	case "to_int", "to_float", "drop_null":
		var s target
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		switch name {
		case "to_int":
			return &convert.ToInt{Columns: s.names()}, nil
		case "to_float":
			return &convert.ToFloat{Columns: s.names()}, nil
		}
		return &impute.DropNull{Columns: s.names()}, nil
	case "quarter":
		var s struct {
			MonthColumn string `json:"month_column"`
			Output      string `json:"output"`
		}
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		return &derive.Quarter{MonthColumn: s.MonthColumn, Output: s.Output}, nil
	case "year_month":
		var s struct {
			YearColumn  string `json:"year_column"`
			MonthColumn string `json:"month_column"`
			Output      string `json:"output"`
		}
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		return &derive.YearMonth{YearColumn: s.YearColumn, MonthColumn: s.MonthColumn, Output: s.Output}, nil
	case "days_since":
		var s struct {
			Column string `json:"column"`
			Output string `json:"output"`
		}
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		return &derive.DaysSince{Column: s.Column, Output: s.Output}, nil
	case "detect_outliers":
		var s struct {
			target
			Method    string  `json:"method"`
			Threshold float64 `json:"threshold"`
			Flag      bool    `json:"flag"`
		}
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		m, err := outliers.ParseMethod(s.Method)
		if err != nil {
			return nil, err
		}
		return &outliers.Detect{Columns: s.names(), Method: m, Threshold: s.Threshold, Flag: s.Flag, Logger: log}, nil
	case "forward_fill":
		var s struct {
			Columns []string `json:"columns"`
			GroupBy []string `json:"group_by"`
			OrderBy string   `json:"order_by"`
		}
		if err := decode(v, &s); err != nil {
			return nil, err
		}
		return &impute.ForwardFill{Columns: s.Columns, GroupBy: s.GroupBy, OrderBy: s.OrderBy}, nil
	}
	return nil, nil
}
