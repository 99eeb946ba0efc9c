// Command keybridge runs an embedded WebAssembly module behind on-screen
// controls that stand in for keyboard keys.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/keybridge/config"
	"github.com/wippyai/keybridge/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:   "keybridge",
		Short: "Drive an embedded module with on-screen key controls",
		Long: `keybridge loads a WebAssembly module and shows its virtual controls.
Clicking a control sends the mapped key to the module's surface: one-shot
controls send a single key-down and disappear, momentary controls hold the
key for as long as the button is pressed.

Without a terminal, gestures are read from stdin, one per line:
  tap jump
  pointerdown sliding
  pointerup sliding`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, cfgFile)
			if err != nil {
				return err
			}
			headless := cfg.UI.Headless || !isTerminal(os.Stdin) || !isTerminal(os.Stdout)
			return run(cmd.Context(), cfg, headless, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default keybridge.yaml in . or "+config.ConfigDir()+")")
	flags.String("module", "", "module path or http(s) URL")
	flags.String("surface", "", "surface element id")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-file", "", "write the log to this file")
	flags.Bool("headless", false, "read gestures from stdin instead of showing the UI")

	_ = v.BindPFlag("module.path", flags.Lookup("module"))
	_ = v.BindPFlag("surface.id", flags.Lookup("surface"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("logging.file", flags.Lookup("log-file"))
	_ = v.BindPFlag("ui.headless", flags.Lookup("headless"))

	root.AddCommand(newControlsCmd(v, &cfgFile))
	return root
}

func newControlsCmd(v *viper.Viper, cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "controls",
		Short: "List the configured controls",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, *cfgFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "surface %s\n", cfg.Surface.ID)
			for _, c := range cfg.Controls {
				fmt.Fprintf(out, "%-10s %-10s %s\n", c.ID, c.Code, c.Mode)
			}
			return nil
		},
	}
}

func loadConfig(v *viper.Viper, file string) (*config.Config, error) {
	if err := config.Init(v, afero.NewOsFs(), file); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return config.Load(v)
}

func run(ctx context.Context, cfg *config.Config, headless bool, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	// the UI owns the screen; without a log file the TUI shows failures itself
	log := zap.NewNop()
	if headless || cfg.Logging.File != "" {
		var err error
		log, err = logging.New(logging.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			File:   cfg.Logging.File,
		})
		if err != nil {
			return err
		}
	}
	defer func() { _ = log.Sync() }()
	logging.Install(log)

	events := newEventLog(cfg.UI.KeyLogLines)
	var onError func(string, error)
	if !headless {
		onError = func(id string, err error) {
			events.add(errorStyle.Render(id + ": " + err.Error()))
		}
	}

	a, err := newApp(cfg, afero.NewOsFs(), log, onError)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx))

	if headless {
		return runScript(ctx, a, in, out)
	}
	return runTUI(ctx, a, events)
}

type fder interface {
	Fd() uintptr
}

func isTerminal(f any) bool {
	fd, ok := f.(fder)
	return ok && term.IsTerminal(int(fd.Fd()))
}
