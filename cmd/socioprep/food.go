package main

import (
	"github.com/spf13/cobra"

	"github.com/wdm0006/socioprep/pkg/config"
	ds "github.com/wdm0006/socioprep/pkg/dataset"
	"github.com/wdm0006/socioprep/pkg/recipe"
)

func newFoodCmd(a *app) *cobra.Command {
	var (
		fl         ioFlags
		configPath string
		fd         config.Food
	)
	cmd := &cobra.Command{
		Use:     "food-prices <input>",
		Aliases: []string{"food"},
		Short:   "Convert types, handle missing values, flag outliers and add calendar features to a food price table",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &config.Config{}
			if configPath != "" {
				var err error
				if cfg, err = config.Load(configPath); err != nil {
					return err
				}
			}
			f := cmd.Flags()
			if f.Changed("missing") || cfg.Food.Missing == "" {
				cfg.Food.Missing = fd.Missing
			}
			if f.Changed("outlier-method") || cfg.Food.OutlierMethod == "" {
				cfg.Food.OutlierMethod = fd.OutlierMethod
			}
			if f.Changed("threshold") || cfg.Food.Threshold == 0 {
				cfg.Food.Threshold = fd.Threshold
			}
			if f.Changed("outlier-columns") {
				cfg.Food.OutlierColumns = fd.OutlierColumns
			}
			if f.Changed("flag-outliers") {
				cfg.Food.FlagOutliers = fd.FlagOutliers
			}
			opt, err := cfg.FoodOptions(a.log)
			if err != nil {
				return err
			}
			opt.Report = a.stdout
			return a.process(args[0], false, fl, func(in *ds.Frame) (*ds.Pipeline, error) {
				p, _ := recipe.FoodPrices(in.Names(), opt)
				return p, nil
			})
		},
	}
	fl.register(cmd)
	cmd.Flags().StringVar(&configPath, "config", "", "optional config file whose food section supplies defaults")
	cmd.Flags().StringVar(&fd.Missing, "missing", "analyze", "missing values: analyze, drop or impute")
	cmd.Flags().StringVar(&fd.OutlierMethod, "outlier-method", "iqr", "outlier rule: iqr or zscore")
	cmd.Flags().Float64Var(&fd.Threshold, "threshold", 3, "IQR multiplier or z-score cut-off")
	cmd.Flags().StringSliceVar(&fd.OutlierColumns, "outlier-columns", nil, "columns to check; default the first ten food items")
	cmd.Flags().BoolVar(&fd.FlagOutliers, "flag-outliers", false, "add a <column>_outlier flag column")
	return cmd
}
