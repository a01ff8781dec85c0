package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvandessel/simselect/internal/constants"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Print the configuration after merging the defaults, ~/.simselect/config.yaml,
<root>/.simselect.yaml and SIMSELECT_* environment variables.

The YAML output can be saved as a starting point for either config file.

Examples:
  simselect config
  simselect config --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if e.jsonOut {
				return writeJSON(cmd, e.cfg)
			}

			data, err := yaml.Marshal(e.cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}

			e.out.Muted("# Sources (later wins):")
			e.out.Muted("#   defaults")
			for _, path := range configSources(e.workDir) {
				e.out.Muted("#   " + path)
			}
			e.out.Muted("#   SIMSELECT_* environment")
			e.out.Plain(string(data))
			return nil
		},
	}
}

// configSources lists the config files that exist for workDir.
func configSources(workDir string) []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, constants.UserConfigDir, constants.UserConfigFile))
	}
	paths = append(paths, filepath.Join(workDir, constants.ProjectConfigFile))

	var found []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			found = append(found, p)
		}
	}
	return found
}
