package cmd

import (
	"github.com/spf13/cobra"

	"github.com/greenhouse/greenhouse-cli/internal/jobboard"
	"github.com/greenhouse/greenhouse-cli/internal/urlparse"
)

func newEmbedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Print HTML snippets that embed the job board in a page",
	}
	cmd.AddCommand(newEmbedSnippetCmd("board", "Board container followed by the embed script", false,
		func(e *jobboard.Embed, _ []string, _ string) string { return e.EmbedJobBoard() }))
	cmd.AddCommand(newEmbedSnippetCmd("script", "Embed script tag only", false,
		func(e *jobboard.Embed, _ []string, _ string) string { return e.ScriptTag() }))
	cmd.AddCommand(newEmbedSnippetCmd("link", "Link to the hosted job board", true,
		func(e *jobboard.Embed, _ []string, text string) string { return e.LinkToJobBoard(text) }))

	apply := newEmbedSnippetCmd("apply-link <job-id|url>", "Link to a job's hosted application form", true,
		func(e *jobboard.Embed, args []string, text string) string { return e.LinkToJobApplication(args[0], text) })
	apply.Args = cobra.ExactArgs(1)
	cmd.AddCommand(apply)
	return cmd
}

type snippetFunc func(e *jobboard.Embed, args []string, text string) string

func newEmbedSnippetCmd(use, short string, withText bool, render snippetFunc) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			boardToken := ""
			if len(args) > 0 {
				ref, err := urlparse.ParseJob(args[0])
				if err != nil {
					return err
				}
				boardToken = ref.BoardToken
				args = []string{ref.JobID}
			}
			client, err := getClient(cmd, boardToken)
			if err != nil {
				return err
			}
			embed, err := client.Embed()
			if err != nil {
				return err
			}
			html := render(embed, args, text)
			if isStructured(cmd) {
				return printJSON(cmd, map[string]string{"html": html})
			}
			_, err = cmd.OutOrStdout().Write([]byte(html + "\n"))
			return err
		}),
	}
	if withText {
		cmd.Flags().StringVar(&text, "text", "", "Link text")
	}
	return cmd
}
