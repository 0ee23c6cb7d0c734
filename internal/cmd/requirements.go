package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/greenhouse/greenhouse-cli/internal/application"
	"github.com/greenhouse/greenhouse-cli/internal/urlparse"
)

// maxConcurrentLookups bounds parallel Job Board requests.
const maxConcurrentLookups = 4

type jobRequirements struct {
	JobID    string                     `json:"job_id"`
	Board    string                     `json:"board"`
	Required application.RequiredFields `json:"required"`
}

func newRequirementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "requirements <job-id|url>...",
		Aliases: []string{"req"},
		Short:   "List the required application questions of jobs",
		Long: strings.TrimSpace(`
List each job's required questions and the field names that answer them.
A question is answered when any one of its field names is given to "apply".
Results are cached for a few minutes (GREENHOUSE_NO_CACHE=1 disables this).`),
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			refs := make([]*urlparse.JobRef, len(args))
			for i, arg := range args {
				ref, err := urlparse.ParseJob(arg)
				if err != nil {
					return err
				}
				refs[i] = ref
			}

			// Services are built up front so credentials load once per board.
			services := map[string]*application.Service{}
			boards := map[string]string{}
			for _, ref := range refs {
				if _, ok := services[ref.BoardToken]; ok {
					continue
				}
				client, err := getClient(cmd, ref.BoardToken)
				if err != nil {
					return err
				}
				apps, err := client.Applications()
				if err != nil {
					return err
				}
				services[ref.BoardToken] = apps
				boards[ref.BoardToken] = client.Options().BoardToken
			}

			results := make([]jobRequirements, len(refs))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(maxConcurrentLookups)
			for i, ref := range refs {
				i, ref := i, ref
				g.Go(func() error {
					required, err := services[ref.BoardToken].RequiredFields(ctx, ref.JobID)
					if err != nil {
						return err
					}
					results[i] = jobRequirements{JobID: ref.JobID, Board: boards[ref.BoardToken], Required: required}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if isStructured(cmd) {
				if len(results) == 1 {
					return printJSON(cmd, results[0])
				}
				return printJSON(cmd, results)
			}
			for i, r := range results {
				if i > 0 {
					printIfNotQuiet(cmd, "\n")
				}
				printIfNotQuiet(cmd, "Job %s (%s)\n", r.JobID, r.Board)
				if len(r.Required) == 0 {
					printIfNotQuiet(cmd, "  No required questions\n")
					continue
				}
				f := newFormatter(cmd)
				for _, field := range r.Required {
					f.Row("", field.Label, strings.Join(field.Names, " | "))
				}
				if err := f.EndTable(); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}
