package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wdm0006/socioprep/pkg/config"
	ds "github.com/wdm0006/socioprep/pkg/dataset"
)

func newRunCmd(a *app) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run [input]",
		Short: "Run the recipe or step list described by a config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			input := cfg.Input.Path
			if len(args) == 1 {
				input = args[0]
			}
			if input == "" {
				return fmt.Errorf("no input: set input.path in %s or pass a path", configPath)
			}
			fl := ioFlags{
				output:       cfg.Output.Path,
				outputFormat: cfg.Output.Type,
				inputFormat:  cfg.Input.Type,
				delimiter:    cfg.Input.Delimiter,
			}
			return a.process(input, cfg.Input.Raw, fl, func(in *ds.Frame) (*ds.Pipeline, error) {
				return cfg.Pipeline(in.Names(), a.log)
			})
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (.json, .yaml or .toml)")
	return cmd
}
