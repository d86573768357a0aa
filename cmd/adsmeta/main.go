// Command adsmeta prints the alternate data streams of files, their stream
// counts and summaries, cached digests and the plugin field values.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gophersatwork/adsmeta"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const (
	configFlagName  = "config"
	helperFlagName  = "helper"
	setFlagName     = "set"
	verboseFlagName = "verbose"
	algoFlagName    = "algo"
	delayFlagName   = "delay"
)

// app is the state shared by all subcommands.
type app struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer

	configPath string
	helper     string
	overrides  []string
	verbose    bool

	cfg    *Config
	logger *slog.Logger
	ins    *adsmeta.Inspector

	// newInspector builds the Inspector; tests swap in a fake launcher.
	newInspector func(opts ...adsmeta.Option) (*adsmeta.Inspector, error)
}

func main() {
	a := &app{fs: afero.NewOsFs(), stdout: os.Stdout, stderr: os.Stderr, newInspector: adsmeta.New}
	if err := a.rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "adsmeta",
		Short:         "List NTFS alternate data streams",
		Long:          "adsmeta runs streams.exe or lads.exe and reports the alternate data streams of files.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.ins == nil {
				return nil
			}
			return a.ins.Close()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, configFlagName, "", "config file (default ~/.config/adsmeta/config.json)")
	flags.StringVar(&a.helper, helperFlagName, "", "helper tool: streams or lads")
	flags.StringArrayVar(&a.overrides, setFlagName, nil, "override a config key, e.g. --set ladsPath=C:\\tools\\lads.exe")
	flags.BoolVarP(&a.verbose, verboseFlagName, "v", false, "log debug output")

	root.AddCommand(a.streamsCmd(), a.countCmd(), a.summaryCmd(), a.digestCmd(), a.fieldsCmd())
	return root
}

func (a *app) setup() error {
	cfg, err := loadConfig(a.fs, a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.applyOverrides(a.overrides); err != nil {
		return err
	}
	if a.helper != "" {
		cfg.Helper = a.helper
	}
	if a.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	level, _ := cfg.level()
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	opts, err := cfg.options(a.logger)
	if err != nil {
		return err
	}
	ins, err := a.newInspector(opts...)
	if err != nil {
		return err
	}
	a.ins = ins
	return nil
}

func (a *app) streamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "streams <file>...",
		Short: "List the streams of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				streams, err := a.ins.Streams(name)
				if err != nil {
					return err
				}
				for _, s := range streams {
					fmt.Fprintf(a.stdout, "%s\t%s\t%d\n", name, s.Name, s.Size)
				}
			}
			return nil
		},
	}
}

func (a *app) countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count <file>...",
		Short: "Print the number of streams of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				n, err := a.ins.Count(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "%d\t%s\n", n, name)
			}
			return nil
		},
	}
}

func (a *app) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <file>...",
		Short: "Print a stream summary of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				s, err := a.ins.Summary(name)
				if err != nil {
					return err
				}
				fmt.Fprint(a.stdout, s)
			}
			return nil
		},
	}
}

func (a *app) digestCmd() *cobra.Command {
	var algo string
	cmd := &cobra.Command{
		Use:   "digest <file>...",
		Short: "Print file digests, using and refreshing the cached digest streams",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if algo == "" {
				algo = a.cfg.Digest
			}
			alg, err := adsmeta.ParseAlgorithm(algo)
			if err != nil {
				return err
			}
			for _, name := range args {
				sum, err := a.ins.Digest(name, alg)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "%s  %s\n", sum, name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&algo, algoFlagName, "", "digest algorithm (default from config)")
	return cmd
}

func (a *app) fieldsCmd() *cobra.Command {
	var delay bool
	cmd := &cobra.Command{
		Use:   "fields <file>...",
		Short: "Print every plugin field of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.ins.FieldTable()
			if err != nil {
				return err
			}
			var flags adsmeta.ValueFlags
			if delay {
				flags |= adsmeta.DelayIfSlow
			}
			for _, name := range args {
				for i := 0; i < table.Len(); i++ {
					f, _ := table.Field(i)
					v, status := table.Value(i, name, flags)
					fmt.Fprintf(a.stdout, "%s\t%q\t%s\t%s\n", name, f.Name, statusText(status), formatValue(v))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&delay, delayFlagName, false, "skip slow fields")
	return cmd
}

func statusText(s adsmeta.Status) string {
	switch s {
	case adsmeta.StatusDelayed:
		return "delayed"
	case adsmeta.StatusNoSuchField:
		return "no such field"
	case adsmeta.StatusFileError:
		return "file error"
	case adsmeta.StatusFieldEmpty:
		return "empty"
	}
	return "ok"
}

func formatValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%q", fmt.Sprint(v))
}
