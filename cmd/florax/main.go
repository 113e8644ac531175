package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/florax/florax-dashboard/internal/pkg/application"
	"github.com/florax/florax-dashboard/internal/pkg/infrastructure/logging"
	"github.com/florax/florax-dashboard/internal/pkg/infrastructure/tracing"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const serviceName string = "florax-dashboard"

func main() {
	ctx := context.Background()

	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// cli holds what every subcommand needs once the persistent flags have been
// parsed.
type cli struct {
	in  io.Reader
	out io.Writer
	err io.Writer

	configFile string
	apiURL     string
	verbose    bool

	app     *application.App
	cleanup tracing.CleanupFunc
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, err: errOut, cleanup: func() {}}

	root := &cobra.Command{
		Use:   "florax",
		Short: "FloraX - smart irrigation dashboard",
		Long: `florax signs in to the FloraX backend and shows the zones, sensors,
irrigation logs, alerts, tanks and valves of your gardens.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) { c.cleanup() },
	}

	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVarP(&c.configFile, "config", "c", os.Getenv("FLORAX_CONFIG"), "path to a yaml configuration file")
	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "base address of the FloraX api, overrides configuration")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.forgotPasswordCmd(),
		c.resetPasswordCmd(),
		c.whoamiCmd(),
		c.overviewCmd(),
		c.zonesCmd(),
		c.sensorsCmd(),
		c.irrigationCmd(),
		c.alertsCmd(),
		c.tanksCmd(),
		c.valvesCmd(),
		c.serveCmd(),
	)

	return root
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	level := zerolog.WarnLevel
	if c.verbose {
		level = zerolog.DebugLevel
	}

	ctx, logger := logging.NewConsoleLogger(cmd.Context(), c.err, level)
	logger = logger.With().Str("service", serviceName).Str("version", version()).Logger()
	ctx = logging.NewContextWithLogger(ctx, logger)

	cleanup, err := tracing.Init(ctx, logger, serviceName, version())
	if err != nil {
		logger.Warn().Err(err).Msg("tracing disabled")
	} else {
		c.cleanup = cleanup
	}

	cfg, err := application.Load(c.configFile)
	if err != nil {
		return err
	}

	if c.apiURL != "" {
		cfg.API.BaseURL = c.apiURL
	}

	c.app, err = application.New(ctx, *cfg, c.unauthorized)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	cmd.SetContext(ctx)
	return nil
}

func (c *cli) unauthorized(ctx context.Context) {
	fmt.Fprintln(c.err, "You are not signed in or your session has expired. Run `florax login`.")
}

func version() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	buildSettings := buildInfo.Settings
	infoMap := map[string]string{}
	for _, s := range buildSettings {
		infoMap[s.Key] = s.Value
	}

	sha := infoMap["vcs.revision"]
	if infoMap["vcs.modified"] == "true" {
		sha += "+"
	}

	if sha == "" {
		return "devel"
	}

	return sha
}
