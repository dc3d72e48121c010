package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/autododge/internal/config"
)

var (
	flagConfigCount    int
	flagConfigSeed     int64
	flagConfigJSON     bool
	flagConfigSettings bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print generated run configs",
	Long: `Draw run configs from the selected settings profile and print them.

With --settings-dump the resolved profile itself is printed instead, which
is a convenient starting point for a custom settings file.

Examples:
  autododge config
  autododge config --count 5 --seed 42
  autododge config --json
  autododge config --settings-dump > configs/settings.yaml`,
	Run: runConfig,
}

func init() {
	configCmd.Flags().IntVarP(&flagConfigCount, "count", "n", 1, "Number of configs to generate")
	configCmd.Flags().Int64Var(&flagConfigSeed, "seed", 0, "Generator seed (0 = random based on time)")
	configCmd.Flags().BoolVar(&flagConfigJSON, "json", false, "Print JSON instead of YAML")
	configCmd.Flags().BoolVar(&flagConfigSettings, "settings-dump", false, "Print the resolved settings profile")
}

func runConfig(_ *cobra.Command, _ []string) {
	var out any
	if flagConfigSettings {
		out = config.SettingsTable{Default: settings.Version, Profiles: []config.Settings{settings}}
	} else {
		var rng *rand.Rand
		if flagConfigSeed != 0 {
			rng = rand.New(rand.NewSource(flagConfigSeed))
		}
		gen := config.NewGenerator(settings, rng)

		configs := make([]config.Config, 0, flagConfigCount)
		for range max(flagConfigCount, 1) {
			configs = append(configs, gen.Generate())
		}
		out = configs
		if len(configs) == 1 {
			out = configs[0]
		}
	}

	if err := printStructured(out, flagConfigJSON); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printStructured(v any, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
