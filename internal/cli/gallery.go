package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sakif/story-cards/internal/gallery"
	"github.com/sakif/story-cards/internal/tui"
)

func newGalleryCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "gallery <storyID>",
		Short: "Open the interactive card gallery",
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

			story, gal, err := c.StoryWithGallery(cmd.Context(), storyID)
			if err != nil {
				return err
			}

			m := tui.New(cmd.Context(), c, *story, gal)
			p := tea.NewProgram(m,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("gallery: %w", err)
			}

			o := m.Overlay()
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s active (%d locked), %d archived\n",
				story.Title, gallery.Cards(o.ActiveCount()), o.LockedCount(), o.ArchivedCount())
			return nil
		},
	}
}
