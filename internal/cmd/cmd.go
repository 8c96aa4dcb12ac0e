// Package cmd holds the shtphub command tree.
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/shtp_hub/internal/app"
	"github.com/relabs-tech/shtp_hub/internal/config"
)

const defaultConfigPath = "shtp_hub_config.txt"

var RootCmd = &cobra.Command{
	Use:   "shtphub",
	Short: "SHTP sensor hub reader and MQTT bridge",
	Long: `shtphub reads a BNO08x-class sensor hub over I2C, decodes its SHTP frames
and publishes the reports to MQTT. The console, web and display commands
subscribe to those topics; replay decodes a recorded capture offline.`,
	SilenceUsage: true,
}

// initRuntime loads the configuration file and sets the log level.
func initRuntime(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	if err := config.InitGlobal(path); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return setLogLevel(cmd, config.Get().LogLevel)
}

func setLogLevel(cmd *cobra.Command, name string) error {
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		name = "debug"
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", name, err)
	}
	log.SetLevel(level)
	return nil
}

var ProduceCmd = &cobra.Command{
	Use:        "produce",
	SuggestFor: []string{"prod", "producer"},
	Short:      "read the sensor hub and publish its reports",
	Long: `produce resets the sensor hub, enables the configured reports and publishes
every decoded sample, pose and control event to MQTT.
With --mock a simulated hub is used instead of the I2C device.
When CAPTURE_FILE is set, every received frame is appended to it.`,
	Example: `  shtphub produce --config=/path/to/shtp_hub_config.txt
  shtphub produce --mock --debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initRuntime(cmd); err != nil {
			return err
		}
		mock, _ := cmd.Flags().GetBool("mock")
		return app.RunHubProducer(mock)
	},
}

var ConsoleCmd = &cobra.Command{
	Use:   "console",
	Short: "print published samples, poses and events",
	Long: `console subscribes to the producer topics and prints every message.
With --local the hub is read directly and nothing goes through MQTT;
--mock then selects the simulated hub.`,
	Example: `  shtphub console
  shtphub console --local --mock`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initRuntime(cmd); err != nil {
			return err
		}
		if local, _ := cmd.Flags().GetBool("local"); local {
			mock, _ := cmd.Flags().GetBool("mock")
			return app.RunLocalConsole(mock)
		}
		return app.RunConsoleMQTT()
	},
}

var WebCmd = &cobra.Command{
	Use:   "web",
	Short: "serve the latest sample and pose over HTTP and WebSocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initRuntime(cmd); err != nil {
			return err
		}
		return app.RunWeb()
	},
}

var DisplayCmd = &cobra.Command{
	Use:   "display",
	Short: "show the pose on an SSD1306 OLED",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initRuntime(cmd); err != nil {
			return err
		}
		return app.RunDisplay()
	},
}

var ReplayCmd = &cobra.Command{
	Use:   "replay <capture.jsonl>",
	Short: "decode a recorded capture file",
	Long: `replay feeds the frames of a capture file through the SHTP driver and prints
one JSON line per frame. No configuration file or broker is needed.`,
	Example: `  shtphub replay frames.jsonl`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setLogLevel(cmd, "info"); err != nil {
			return err
		}
		return app.RunReplay(args[0], cmd.OutOrStdout())
	},
}

func getRootCmd() *cobra.Command {
	RootCmd.PersistentFlags().String("config", defaultConfigPath, "configuration file path")
	RootCmd.PersistentFlags().Bool("debug", false, "toggle debug logging")

	ProduceCmd.Flags().Bool("mock", false, "use a simulated sensor hub")
	RootCmd.AddCommand(ProduceCmd)

	ConsoleCmd.Flags().Bool("local", false, "read the hub directly instead of MQTT")
	ConsoleCmd.Flags().Bool("mock", false, "with --local, use a simulated sensor hub")
	RootCmd.AddCommand(ConsoleCmd)
	RootCmd.AddCommand(WebCmd)
	RootCmd.AddCommand(DisplayCmd)
	RootCmd.AddCommand(ReplayCmd)

	return RootCmd
}

func Execute() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
