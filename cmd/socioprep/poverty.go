package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wdm0006/socioprep/pkg/config"
	ds "github.com/wdm0006/socioprep/pkg/dataset"
	"github.com/wdm0006/socioprep/pkg/recipe"
)

func newPovertyCmd(a *app) *cobra.Command {
	var (
		fl         ioFlags
		configPath string
		pv         config.Poverty
	)
	cmd := &cobra.Command{
		Use:   "poverty <input>",
		Short: "Reshape a wide poverty incidence table and fill every province's yearly series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &config.Config{}
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}
			overridePoverty(cmd, &cfg.Poverty, pv)
			opt, err := cfg.PovertyOptions(a.log)
			if err != nil {
				return err
			}
			if opt.From != 0 && opt.To <= opt.From {
				return fmt.Errorf("--to %d must be after --from %d", opt.To, opt.From)
			}
			return a.process(args[0], true, fl, func(*ds.Frame) (*ds.Pipeline, error) {
				return recipe.Poverty(opt), nil
			})
		},
	}
	fl.register(cmd)
	cmd.Flags().StringVar(&configPath, "config", "", "optional config file whose poverty section supplies defaults")
	cmd.Flags().IntSliceVar(&pv.Years, "years", recipe.DefaultPovertyYears, "year suffixes of the wide columns")
	cmd.Flags().IntVar(&pv.From, "from", recipe.DefaultFrom, "first year of the output grid")
	cmd.Flags().IntVar(&pv.To, "to", recipe.DefaultTo, "last year of the output grid")
	cmd.Flags().StringVar(&pv.SinglePoint, "single-point", "null", "series with one observation: null or hold")
	cmd.Flags().StringVar(&pv.OutOfRange, "out-of-range", "drop", "observations outside the grid: drop or fail")
	return cmd
}

// overridePoverty copies explicitly set flags over the config values.
// Unset flags only fill fields the config left empty.
func overridePoverty(cmd *cobra.Command, dst *config.Poverty, fl config.Poverty) {
	pick := func(name string, empty bool) bool { return cmd.Flags().Changed(name) || empty }
	if pick("years", len(dst.Years) == 0) {
		dst.Years = fl.Years
	}
	if pick("from", dst.From == 0) {
		dst.From = fl.From
	}
	if pick("to", dst.To == 0) {
		dst.To = fl.To
	}
	if pick("single-point", dst.SinglePoint == "") {
		dst.SinglePoint = fl.SinglePoint
	}
	if pick("out-of-range", dst.OutOfRange == "") {
		dst.OutOfRange = fl.OutOfRange
	}
}
