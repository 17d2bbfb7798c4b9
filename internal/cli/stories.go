package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/story-cards/internal/model"
)

func newStoriesCmd(g *globals) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "stories",
		Short: "List your stories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.authed()
			if err != nil {
				return err
			}
			stories, err := c.ListStories(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			if g.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), stories)
			}
			if len(stories) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stories yet. Create one with `storycards story create <title>`.")
				return nil
			}
			for _, s := range stories {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", s.ID, s.Title)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Max results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Skip this many stories")
	return cmd
}

// newStoryCmd groups the commands that change a single story.
func newStoryCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Create a story or add to its transcript",
	}
	cmd.AddCommand(newStoryCreateCmd(g), newStorySayCmd(g))
	return cmd
}

func newStoryCreateCmd(g *globals) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Start a new story",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := g.authed()
			if err != nil {
				return err
			}
			story, err := c.CreateStory(cmd.Context(), strings.Join(args, " "), description)
			if err != nil {
				return err
			}
			if g.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), story)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created story %d: %s\n", story.ID, story.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Short description")
	return cmd
}

// newStorySayCmd appends a transcript message. Cards are generated from the
// transcript, so a story needs at least one message before `regenerate`.
func newStorySayCmd(g *globals) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "say <storyID> <text...>",
		Short: "Add a message to a story's transcript",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			storyID, err := parseID(args[0], "story")
			if err != nil {
				return err
			}
			r := model.Role(role)
			if !r.Valid() {
				return fmt.Errorf("invalid role %q: use user or assistant", role)
			}
			c, err := g.authed()
			if err != nil {
				return err
			}
			msg, err := c.AddMessage(cmd.Context(), storyID, r, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if g.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), msg)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added message %d to story %d\n", msg.ID, storyID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", string(model.RoleUser), "Speaker: user or assistant")
	return cmd
}
