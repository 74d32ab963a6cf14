package commands

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rbb-data/cpisync/am"
	"github.com/rbb-data/cpisync/display"
	"github.com/rbb-data/cpisync/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage cpisync configuration",
	Long: `am - Manage cpisync configuration ("I am")

Configuration sources (later overrides earlier):
1. Built-in defaults
2. System config (/etc/cpisync/config.toml)
3. User config (~/.cpisync/config.toml)
4. Project config (./cpisync.toml, searched upwards)
5. --config file
6. Environment variables (CPISYNC_* prefix, plus API_URL, API_SECRET,
   GENESIS_API_URL, GENESIS_USERNAME and GENESIS_PASSWORD)

Examples:
  cpisync am show                 # Show current configuration
  cpisync am show --format json   # Show configuration in JSON format
  cpisync am validate             # Validate current configuration
  cpisync am where                # List the config files consulted`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective cpisync configuration. The GENESIS username is masked.",
	RunE:  runAmShow,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	RunE:  runAmWhere,
}

var configFormat string

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

// masked returns a copy of cfg safe to print. Secret fields hold
// references, not values, and are shown as is.
func masked(cfg *am.Config) am.Config {
	out := *cfg
	if out.Genesis.Username != "" {
		out.Genesis.Username = "********"
	}
	return out
}

// renderConfig marshals cfg in the given format.
func renderConfig(cfg am.Config, format string) (string, error) {
	switch format {
	case "json":
		data, err := display.MarshalJSON(cfg)
		if err != nil {
			return "", errors.Wrap(err, "failed to marshal config to JSON")
		}
		return string(data) + "\n", nil

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return "", errors.Wrap(err, "failed to marshal config to YAML")
		}
		return "# cpisync configuration\n" + string(data), nil

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return "", errors.Wrap(err, "failed to marshal config to TOML")
		}
		return "# cpisync configuration\n" + string(data), nil

	default:
		return "", errors.Newf("unsupported format: %s (supported: toml, json, yaml)", format)
	}
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	out, err := renderConfig(masked(cfg), configFormat)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	if _, err := loadValidConfig(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(out, "  [DEFAULT]  Built-in defaults")
	for _, source := range am.ConfigSources() {
		status := "missing"
		if source.Exists {
			status = "loaded"
		}
		fmt.Fprintf(out, "  [FILE]     %s (%s)\n", source.Path, status)
	}
	fmt.Fprintln(out, "  [ENV]      CPISYNC_* environment variables")
	return nil
}
