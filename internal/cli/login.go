package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/story-cards/internal/client"
	"github.com/sakif/story-cards/internal/config"
)

func newLoginCmd(g *globals) *cobra.Command {
	var (
		email, password, name string
		register              bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in (or register) and remember the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("STORYCARDS_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and --password (or $STORYCARDS_PASSWORD) are required")
			}

			cfg, path, err := g.load()
			if err != nil {
				return err
			}
			c := client.New(cfg.APIURL, "")

			var res *client.AuthResult
			if register {
				res, err = c.Register(cmd.Context(), email, password, name)
			} else {
				res, err = c.Login(cmd.Context(), email, password)
			}
			if err != nil {
				return err
			}

			cfg.Token = res.Token
			if err := config.SaveClient(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", res.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	cmd.Flags().StringVar(&name, "name", "", "Display name (with --register)")
	cmd.Flags().BoolVar(&register, "register", false, "Create the account first")
	return cmd
}

func newLogoutCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := g.load()
			if err != nil {
				return err
			}
			cfg.Token = ""
			if err := config.SaveClient(path, cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.authed()
			if err != nil {
				return err
			}
			user, err := c.Me(cmd.Context())
			if err != nil {
				return err
			}
			if g.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), user)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.DisplayName, user.Email)
			return nil
		},
	}
}
