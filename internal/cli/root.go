// Package cli implements the storycards command-line client.
//
// Every command talks to a running server through internal/client. The
// server URL and the bearer token live in a small YAML file written by
// `storycards login`.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sakif/story-cards/internal/client"
	"github.com/sakif/story-cards/internal/config"
)

// RootCmd is the top-level command.
var RootCmd = NewRootCmd()

// errNotLoggedIn is returned by commands that need a token when none is saved.
var errNotLoggedIn = errors.New("not logged in: run `storycards login` first")

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	apiURL     string
	format     string
}

// NewRootCmd builds a fresh command tree. Tests use it so flag state never
// leaks between runs.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "storycards",
		Short:         "Browse and curate story cards",
		Long:          "A terminal client for the story-cards server: stories, transcripts, and the card gallery.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Client config file (default: $STORYCARDS_CLIENT_CONFIG or <user config dir>/storycards/client.yaml)")
	root.PersistentFlags().StringVar(&g.apiURL, "api-url", "", "Server URL (overrides the config file)")
	root.PersistentFlags().StringVarP(&g.format, "format", "f", "text", "Output format: json or text")

	root.AddCommand(
		newLoginCmd(g),
		newLogoutCmd(g),
		newWhoamiCmd(g),
		newStoriesCmd(g),
		newStoryCmd(g),
		newCardsCmd(g),
		newRegenerateCmd(g),
		newGalleryCmd(g),
	)
	return root
}

// Execute runs RootCmd and prints the error the way the rest of the CLI does.
func Execute() int {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (g *globals) path() (string, error) {
	if g.configPath != "" {
		return g.configPath, nil
	}
	if env := os.Getenv("STORYCARDS_CLIENT_CONFIG"); env != "" {
		return env, nil
	}
	return config.DefaultClientPath()
}

// load reads the client config and applies --api-url.
func (g *globals) load() (*config.ClientConfig, string, error) {
	path, err := g.path()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadClient(path)
	if err != nil {
		return nil, "", err
	}
	if g.apiURL != "" {
		cfg.APIURL = g.apiURL
	}
	return cfg, path, nil
}

// authed returns a client carrying the saved token.
func (g *globals) authed() (*client.Client, error) {
	cfg, _, err := g.load()
	if err != nil {
		return nil, err
	}
	if cfg.Token == "" {
		return nil, errNotLoggedIn
	}
	return client.New(cfg.APIURL, cfg.Token), nil
}

func (g *globals) jsonOutput() bool { return g.format == "json" }

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}
