package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gratian-dicu-sv/cleanlogs/internal/logging"
	"github.com/gratian-dicu-sv/cleanlogs/internal/version"
)

// errInfoShown ends a run that only printed version or usage text.
var errInfoShown = errors.New("info shown")

const usageExample = `Usage examples:
  tail -f app.log | cleanlogs
  adb logcat -v time | cleanlogs --show-level
  cleanlogs --output json < session.log > session.jsonl
  cleanlogs --listen 0.0.0.0:9000 "logs/**/*.log"

Then connect to ws://localhost:7777/ws (or open http://localhost:7777/)
to receive every recognized line as it arrives.
`

type options struct {
	cfgFile   string
	showLevel bool
	output    string
	listen    string
	noServer  bool
	pprof     bool
	state     string

	help        bool
	showVersion bool
	showUsage   bool

	log *logging.Config
}

// Execute runs cleanlogs with the process arguments and exits non-zero after
// help, version or usage output, or on error.
func Execute() {
	if code := Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

// Run executes the root command and returns the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts := &options{log: logging.NewConfig()}

	cmd := newRootCmd(opts, stdin)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(context.Background())
	switch {
	case errors.Is(err, errInfoShown):
		return 1
	case err != nil:
		fmt.Fprintln(stderr, err)
		return 1
	case opts.help:
		return 1
	}
	return 0
}

func newRootCmd(opts *options, stdin io.Reader) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "cleanlogs [file patterns...]",
		Short: "cleanlogs — readable structured logs, live",
		Long: `cleanlogs reads application logs from standard input (or follows the given
files), picks out lines shaped like "<time> <level> [<tag>] <message> {json}",
and prints them as "HH:MM:SS | tag ~ message" with one banner per device
change. Every recognized line is also pushed to websocket subscribers.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(v, cmd, opts.cfgFile); err != nil {
				return err
			}
			opts.load(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case opts.showVersion:
				fmt.Fprintln(cmd.OutOrStdout(), version.String())
				return errInfoShown
			case opts.showUsage:
				fmt.Fprint(cmd.OutOrStdout(), usageExample)
				return errInfoShown
			}
			return runPipeline(cmd, args, opts, stdin)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.help, "help", "h", false, "show help")
	flags.BoolVarP(&opts.showVersion, "version", "v", false, "print version")
	flags.BoolVarP(&opts.showUsage, "usage", "u", false, "print usage examples")
	flags.StringVarP(&opts.cfgFile, "config", "c", "", "config file (default: $HOME/.cleanlogs.yaml)")
	flags.BoolVarP(&opts.showLevel, "show-level", "l", false, "include the severity column")
	flags.StringVarP(&opts.output, "output", "o", "text", "console format: text, json")
	flags.StringVar(&opts.listen, "listen", "localhost:7777", "address of the live feed server")
	flags.BoolVar(&opts.noServer, "no-server", false, "do not start the live feed server")
	flags.BoolVar(&opts.pprof, "pprof", false, "serve pprof handlers under /debug/pprof/ on the live feed server")
	flags.StringVar(&opts.state, "state", ".cleanlogs-state.json", "offset checkpoint for followed files (empty disables)")

	opts.log.RegisterFlags(flags)
	cobra.CheckErr(opts.log.RegisterCompletions(cmd))
	cobra.CheckErr(cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions([]string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp)))

	return cmd
}

// initConfig layers the config file and CLEANLOGS_* environment variables
// under the command-line flags.
func initConfig(v *viper.Viper, cmd *cobra.Command, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".cleanlogs")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("cleanlogs")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func (o *options) load(v *viper.Viper) {
	o.showLevel = v.GetBool("show-level")
	o.output = v.GetString("output")
	o.listen = v.GetString("listen")
	o.noServer = v.GetBool("no-server")
	o.pprof = v.GetBool("pprof")
	o.state = v.GetString("state")
	o.log.Level = v.GetString(o.log.Flags.Level)
	o.log.Format = v.GetString(o.log.Flags.Format)
}
