// Command newsroom runs the editorial workflow API and exposes the workflow
// operations as CLI commands.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-newsroom"
	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

// moduleBuilder is swapped in tests.
var moduleBuilder = buildModule

type globalOptions struct {
	configPath string
	logLevel   string
	actorID    string
	actorRole  string
	actorName  string
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "newsroom",
		Short:         "Editorial workflow service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")
	flags.StringVar(&opts.actorID, "actor-id", "", "Actor id recorded on workflow operations")
	flags.StringVar(&opts.actorRole, "actor-role", "", "Actor role used for permission checks")
	flags.StringVar(&opts.actorName, "actor-name", "", "Actor display name")

	cmd.AddCommand(
		serveCmd(opts),
		articleCmd(opts),
		stateCmd(opts),
		transitionCmd(opts),
		lockCmd(opts),
		eventsCmd(opts),
		actionsCmd(opts),
		reconcileCmd(opts),
		tokenCmd(opts),
		versionCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "newsroom version %s (build: %s)\n", Version, BuildTime)
		},
	}
}

func buildModule(opts *globalOptions) (*newsroom.Module, error) {
	cfg, err := newsroom.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if level := strings.TrimSpace(opts.logLevel); level != "" {
		cfg.Logging.Level = level
	}
	module, err := newsroom.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialise newsroom module: %w", err)
	}
	return module, nil
}

// actor returns nil when no identity flags were given so the engine can
// audit the call as Unauthorized.
func (o *globalOptions) actor() *domain.Actor {
	id := strings.TrimSpace(o.actorID)
	role := strings.TrimSpace(o.actorRole)
	if id == "" && role == "" {
		return nil
	}
	return &domain.Actor{ID: id, Role: domain.Role(strings.ToLower(role)), Name: strings.TrimSpace(o.actorName)}
}

func parseArticleID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid article id %q: %w", raw, err)
	}
	return id, nil
}

func printJSON(out io.Writer, payload any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
