package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sakif/story-cards/internal/client"
	"github.com/sakif/story-cards/internal/gallery"
	"github.com/sakif/story-cards/internal/model"
)

func newCardsCmd(g *globals) *cobra.Command {
	var (
		archived bool
		page     int
	)

	cmd := &cobra.Command{
		Use:   "cards <storyID>",
		Short: "Print one page of a story's cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storyID, err := parseID(args[0], "story")
			if err != nil {
				return err
			}
			c, err := g.authed()
			if err != nil {
				return err
			}
			gal, err := c.Gallery(cmd.Context(), storyID)
			if err != nil {
				return err
			}
			if g.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), gal)
			}

			o := gallery.New(nil)
			o.Open()
			o.SetCollections(gal.Active, gal.Archived)
			if archived {
				o.SetViewMode(gallery.ViewArchived)
			}
			for range page - 1 {
				o.NextPage()
			}
			printPage(cmd.OutOrStdout(), o)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&archived, "archived", "a", false, "Show archived cards")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number (1-based, clamped to the last page)")
	return cmd
}

func printPage(w io.Writer, o *gallery.Overlay) {
	fmt.Fprintf(w, "%d active, %d archived, %d locked\n", o.ActiveCount(), o.ArchivedCount(), o.LockedCount())
	if o.Len() == 0 {
		if o.ViewMode() == gallery.ViewArchived {
			fmt.Fprintln(w, "No archived cards.")
		} else {
			fmt.Fprintln(w, "No cards yet. Run `storycards regenerate <storyID>`.")
		}
		return
	}
	for _, s := range o.Visible() {
		printCard(w, s)
	}
	if o.ShowPagination() {
		fmt.Fprintln(w, o.PageLabel())
	}
}

func printCard(w io.Writer, s model.Snippet) {
	lock := " "
	if s.IsLocked {
		lock = "*"
	}
	fmt.Fprintf(w, "%s %-4d %s [%s / %s]\n", lock, s.ID, s.Title, s.Theme.OrDefault().Label(), s.Phase.OrDefault().Label())
	fmt.Fprintf(w, "       %s\n", s.Content)
}

func newRegenerateCmd(g *globals) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "regenerate <storyID>",
		Short: "Replace a story's unlocked cards with freshly generated ones",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storyID, err := parseID(args[0], "story")
			if err != nil {
				return err
			}
			c, err := g.authed()
			if err != nil {
				return err
			}
			gal, err := c.Gallery(cmd.Context(), storyID)
			if err != nil {
				return err
			}

			// The overlay owns the "are you sure" rule; --yes answers it.
			start := false
			o := gallery.New(gallery.Funcs{OnGenerate: func() { start = true }})
			o.Open()
			o.SetCollections(gal.Active, gal.Archived)
			if o.RequestRegenerate() == gallery.RegenerateConfirming {
				if !yes {
					fmt.Fprintln(cmd.OutOrStdout(), o.RegenerateSummary().Message())
					return errors.New("pass --yes to regenerate")
				}
				o.ConfirmRegenerate()
			}
			if !start {
				return nil
			}

			res, err := c.Regenerate(cmd.Context(), storyID)
			if err != nil {
				return err
			}
			return printGenerateResult(cmd.OutOrStdout(), res, g.jsonOutput())
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Replace unlocked cards without asking")
	return cmd
}

func printGenerateResult(w io.Writer, res *client.GenerateResult, asJSON bool) error {
	if asJSON {
		if err := printJSON(w, res); err != nil {
			return err
		}
	}
	if !res.Success {
		return errors.New(res.Error)
	}
	if !asJSON {
		fmt.Fprintf(w, "Generated %s with %s, archived %d\n", gallery.Cards(res.Count), res.Model, res.Archived)
	}
	return nil
}
