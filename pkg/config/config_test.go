package config

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	ds "github.com/wdm0006/socioprep/pkg/dataset"
	"github.com/wdm0006/socioprep/pkg/recipe"
	"github.com/wdm0006/socioprep/pkg/transform/grid"
	"github.com/wdm0006/socioprep/pkg/transform/outliers"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestLoadYAML(t *testing.T) {
	cfg, err := Load("testdata/poverty.yaml")
	require.NoError(t, err)
	require.Equal(t, "poverty", cfg.Recipe)
	require.True(t, cfg.Input.Raw)
	require.Equal(t, []int{2018, 2021, 2023}, cfg.Poverty.Years)

	opt, err := cfg.PovertyOptions(quiet)
	require.NoError(t, err)
	require.Equal(t, grid.SinglePointHold, opt.SinglePoint)
	require.Equal(t, 2015, opt.From)
	require.Equal(t, 2025, opt.To)

	p, err := cfg.Pipeline(nil, quiet)
	require.NoError(t, err)
	require.Equal(t, []string{"require_columns", "trim", "reshape_wide_to_long", "clean_numeric", "grid_fill"}, p.Steps())
}

func TestLoadTOML(t *testing.T) {
	cfg, err := Load("testdata/food.toml")
	require.NoError(t, err)
	opt, err := cfg.FoodOptions(quiet)
	require.NoError(t, err)
	require.Equal(t, recipe.MissingImpute, opt.Missing)
	require.Equal(t, outliers.ZScore, opt.OutlierMethod)
	require.Equal(t, 2.5, opt.Threshold)
	require.True(t, opt.FlagOutliers)

	p, err := cfg.Pipeline([]string{"geo_id", "DATES", "year", "month", "rice"}, quiet)
	require.NoError(t, err)
	require.Contains(t, p.Steps(), "forward_fill")
	require.Contains(t, p.Steps(), "detect_outliers")
}

func TestStepsFromJSON(t *testing.T) {
	cfg, err := Load("testdata/steps.json")
	require.NoError(t, err)
	require.Equal(t, ',', Delimiter(cfg.Input.Delimiter))
	require.Equal(t, rune(0), Delimiter(""))

	p, err := cfg.Pipeline(nil, quiet)
	require.NoError(t, err)
	require.Equal(t, []string{"require_columns", "trim", "reshape_wide_to_long", "clean_numeric", "grid_fill", "cap_range"}, p.Steps())

	f := ds.NewFrame(ds.Schema{Columns: []ds.ColumnSchema{
		{Name: "Region", Type: ds.KindString, Nullable: true},
		{Name: "Province", Type: ds.KindString, Nullable: true},
		{Name: "Threshold (2018)", Type: ds.KindString, Nullable: true},
		{Name: "Threshold (2021)", Type: ds.KindString, Nullable: true},
		{Name: "Threshold (2023)", Type: ds.KindString, Nullable: true},
	}})
	f.AppendNullRow()
	for col, v := range map[string]string{
		"Region": "A", "Province": "P1",
		"Threshold (2018)": "100", "Threshold (2021)": "40", "Threshold (2023)": "10",
	} {
		require.NoError(t, f.SetCell(0, col, v))
	}
	out, err := p.Run(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, 11, out.Rows())
	th, _ := out.ColumnByName("Threshold")
	last, _ := ds.Float(th, 10)
	require.Equal(t, 0.0, last, "extrapolated below zero, then capped")
}

func TestBuildPipelineErrors(t *testing.T) {
	raw := func(s string) []json.RawMessage { return []json.RawMessage{json.RawMessage(s)} }

	_, err := BuildPipeline(raw(`{"trim": {"columns": ["a"]}, "lower": {"columns": ["a"]}}`), quiet)
	require.ErrorContains(t, err, "exactly one")

	_, err = BuildPipeline(raw(`{"trim": {"colums": ["a"]}}`), quiet)
	require.ErrorContains(t, err, "trim")

	_, err = BuildPipeline(raw(`{"grid_fill": {"from": 2015, "to": 2025, "single_point": "mean"}}`), quiet)
	require.Error(t, err)

	_, err = BuildPipeline(raw(`{"reshape": {}}`), quiet)
	require.ErrorContains(t, err, "years")

	p, err := BuildPipeline(raw(`{"trim": {"column": "a", "columns": ["b"]}}`), quiet)
	require.NoError(t, err)
	require.Equal(t, []string{"trim"}, p.Steps())
}

func TestParseRejectsUnknownFormat(t *testing.T) {
	_, err := Parse([]byte("x"), "ini")
	require.Error(t, err)

	cfg, err := Parse([]byte(`{"recipe": "census"}`), "json")
	require.NoError(t, err)
	_, err = cfg.Pipeline(nil, quiet)
	require.ErrorContains(t, err, "census")
}
