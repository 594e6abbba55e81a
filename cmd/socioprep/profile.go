package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wdm0006/socioprep/dataio"
	"github.com/wdm0006/socioprep/pkg/config"
	"github.com/wdm0006/socioprep/pkg/groups"
	"github.com/wdm0006/socioprep/pkg/profile"
)

func newProfileCmd(a *app) *cobra.Command {
	var (
		topK      int
		asJSON    bool
		raw       bool
		sample    int
		delimiter string
	)
	cmd := &cobra.Command{
		Use:   "profile <input>",
		Short: "Summarize shape, coverage, missing values and per-column statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := dataio.Load(args[0], dataio.Options{Raw: raw, Delimiter: config.Delimiter(delimiter), Logger: a.log})
			if err != nil {
				return err
			}
			c := profile.NewCollector(f.Schema(), topK)
			c.ConsumeFrame(f)
			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(c.ReportJSON())
			}
			o := profile.NewOverview(f, profile.OverviewOptions{
				GeoColumns: groups.DefaultGeographic,
				YearColumn: "year",
				DateColumn: "DATES",
			})
			if err := o.WriteText(a.stdout); err != nil {
				return err
			}
			if err := groups.Classify(f.Names(), groups.Options{}).WriteText(a.stdout); err != nil {
				return err
			}
			profile.WriteMissing(a.stdout, o.Missing)
			if sample > 0 {
				profile.WriteSample(a.stdout, f, sample)
			}
			_, err = fmt.Fprint(a.stdout, c.ReportText())
			return err
		},
	}
	cmd.Flags().IntVar(&topK, "top", 5, "most frequent values listed per text column")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the column statistics as JSON")
	cmd.Flags().BoolVar(&raw, "raw", false, "read every column as text")
	cmd.Flags().IntVar(&sample, "sample", 5, "print the first N rows (0 disables)")
	cmd.Flags().StringVar(&delimiter, "delimiter", "", "csv delimiter; sniffed when empty")
	return cmd
}
