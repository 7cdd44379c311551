package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/estatechat/internal/config"
)

// NewConfigCmd creates the config command and its subcommands
func NewConfigCmd(d *Dependencies) *cobra.Command {
	if d == nil {
		d = NewDependencies()
	}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the configuration in effect: the config file, then .env and
ESTATECHAT_* environment variables, then command-line flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path, _ := config.GetConfigPath()
			fmt.Fprint(d.Stdout, formatConfig(cfg, path))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting in the config file",
		Long:  "Change a setting in the config file. Keys: " + fmt.Sprint(config.Keys()),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(d, args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(d.Stdout, path)
			return nil
		},
	})

	return cmd
}

var configCmd = NewConfigCmd(deps)

// configValues lists the settings in the order of config.Keys
func configValues(cfg config.Config) [][2]string {
	values := map[string]string{
		"api_base_url":      cfg.APIBaseURL,
		"request_timeout":   strconv.Itoa(cfg.RequestTimeout),
		"download_dir":      cfg.DownloadDir,
		"verbose":           strconv.FormatBool(cfg.Verbose),
		"copy_to_clipboard": strconv.FormatBool(cfg.CopyToClipboard),
		"markdown.style":    cfg.Markdown.Style,
	}

	out := make([][2]string, 0, len(values))
	for _, k := range config.Keys() {
		out = append(out, [2]string{k, values[k]})
	}
	return out
}

func formatConfig(cfg config.Config, path string) string {
	keyStyle := lipgloss.NewStyle().Foreground(colorTextDim).Width(20)
	valueStyle := lipgloss.NewStyle().Foreground(colorText)

	out := ""
	if path != "" {
		out += lipgloss.NewStyle().Foreground(colorTextMute).Italic(true).Render("# "+path) + "\n"
	}
	for _, kv := range configValues(cfg) {
		out += keyStyle.Render(kv[0]) + valueStyle.Render(kv[1]) + "\n"
	}
	return out
}

// setConfigValue updates one setting in the config file. Environment and
// flag overrides are not written back.
func setConfigValue(d *Dependencies, key, value string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := config.Set(&cfg, key, value); err != nil {
		return err
	}
	if err := config.SaveConfig(cfg); err != nil {
		return err
	}
	fmt.Fprintln(d.Stdout, successLine(fmt.Sprintf("%s = %s", key, value)))
	return nil
}
