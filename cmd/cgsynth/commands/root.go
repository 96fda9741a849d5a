// Package commands implements the cgsynth command line: queries against the
// compiler-generated routine synthesizer for a program description file.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/stoutes/chapel/internal/config"
	"github.com/stoutes/chapel/internal/errors"
	"github.com/stoutes/chapel/internal/logger"
)

type app struct {
	configPath string
	verbosity  int
	jsonLog    bool
	cfg        *config.Config
}

// NewRootCmd builds the command tree. Each call returns an independent tree
// so tests can run commands side by side.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "cgsynth",
		Short: "Inspect the routines the compiler generates for a program",
		Long: `cgsynth loads a program description (TOML or YAML) and asks the resolver
which routines the compiler would supply implicitly: initializers,
copy-initializers, deinitializers, record assignment and comparison,
accessors on built-in types, field accessors and enum casts.

Examples:
  cgsynth method prog.toml R init
  cgsynth method prog.toml "domain(2)" rank --parenless
  cgsynth binop prog.toml Color "type int" :
  cgsynth field prog.toml R x
  cgsynth survey prog.toml --jobs 8
  cgsynth repl prog.toml`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "configuration file (default: ./cgsynth.toml or ./cgsynth.yaml)")
	root.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "Increase output verbosity (-v info, -vv debug)")
	root.PersistentFlags().BoolVar(&a.jsonLog, "json-log", false, "Emit logs as JSON")

	root.AddCommand(
		newMethodCmd(a),
		newBinopCmd(a),
		newFieldCmd(a),
		newSurveyCmd(a),
		newReplCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := logger.ParseLevel(cfg.Log.Level)
	if a.verbosity > logger.VerbosityUser {
		level = logger.VerbosityToLevel(a.verbosity)
	}
	if err := logger.Initialize(cfg.Log.JSON || a.jsonLog, level); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	if cfg.File != "" {
		logger.Logger.Infow("configuration loaded", "file", cfg.File)
	}
	return nil
}

// Execute runs the command line and returns the process exit status.
func Execute(args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		reportError(root.ErrOrStderr(), err)
		return 1
	}
	return 0
}

// reportError prints err and every hint attached to it.
func reportError(w io.Writer, err error) {
	if w == nil {
		w = os.Stderr
	}
	switch {
	case !errors.IsFatal(err):
		fmt.Fprintf(w, "error: %v\n", err)
	case errors.IsUnimplemented(err):
		fmt.Fprintf(w, "unimplemented: %v\n", err)
	default:
		fmt.Fprintf(w, "internal error: %v\n", err)
	}
	for _, d := range errors.GetAllDetails(err) {
		fmt.Fprintf(w, "  %s\n", d)
	}
	for _, h := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "hint: %s\n", h)
	}
}
