package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/greenhouse/greenhouse-cli/internal/cli"
	"github.com/greenhouse/greenhouse-cli/internal/jobboard"
	"github.com/greenhouse/greenhouse-cli/internal/skill"
	"github.com/greenhouse/greenhouse-cli/internal/urlparse"
	"github.com/greenhouse/greenhouse-cli/internal/validation"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "board",
		Aliases: []string{"b"},
		Short:   "Browse the public Job Board",
		Long:    "Read the board summary, jobs, departments and offices of a Greenhouse job board. Only a board token is needed.",
	}
	cmd.AddCommand(newBoardInfoCmd())
	cmd.AddCommand(newBoardJobsCmd())
	cmd.AddCommand(newBoardJobCmd())
	cmd.AddCommand(newBoardFindCmd())
	cmd.AddCommand(newBoardDepartmentsCmd())
	cmd.AddCommand(newBoardDepartmentCmd())
	cmd.AddCommand(newBoardOfficesCmd())
	cmd.AddCommand(newBoardOfficeCmd())
	cmd.AddCommand(newBoardSkillCmd())
	return cmd
}

// getBoard returns the Job Board service, preferring boardToken over the
// configured board.
func getBoard(cmd *cobra.Command, boardToken string) (*jobboard.Service, error) {
	client, err := getClient(cmd, boardToken)
	if err != nil {
		return nil, err
	}
	return client.JobBoard()
}

func newBoardInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the board name and description",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			board, err := getBoard(cmd, "")
			if err != nil {
				return err
			}
			summary, err := board.FetchBoard(cmd.Context())
			if err != nil {
				return err
			}
			if isStructured(cmd) {
				return printJSON(cmd, summary)
			}
			text, err := jobboard.ContentText(summary.Content)
			if err != nil {
				return err
			}
			printIfNotQuiet(cmd, "%s\n", summary.Name)
			if text != "" {
				printIfNotQuiet(cmd, "\n%s\n", text)
			}
			return nil
		}),
	}
}

func newBoardJobsCmd() *cobra.Command {
	var (
		content      bool
		updatedSince string
	)

	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"ls"},
		Short:   "List open jobs",
		Example: strings.TrimSpace(`
  greenhouse board jobs --board vaulttec
  greenhouse board jobs --updated-since 7d -o csv`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			var since time.Time
			if updatedSince != "" {
				t, err := cli.ParseSince(updatedSince, time.Now())
				if err != nil {
					return fmt.Errorf("invalid --updated-since: %w", err)
				}
				since = t
			}

			board, err := getBoard(cmd, "")
			if err != nil {
				return err
			}
			jobs, err := board.ListJobs(cmd.Context(), content)
			if err != nil {
				return err
			}
			if !since.IsZero() {
				jobs = jobsUpdatedSince(jobs, since)
			}

			if isStructured(cmd) {
				return printJSON(cmd, jobs)
			}
			f := newFormatter(cmd)
			if len(jobs) == 0 {
				f.Empty("No open jobs found")
				return nil
			}
			f.StartTable([]string{"ID", "TITLE", "LOCATION", "UPDATED"})
			for _, j := range jobs {
				f.Row(strconv.FormatInt(j.ID, 10), j.Title, orDash(j.Location.Name), orDash(j.UpdatedAt))
			}
			return f.EndTable()
		}),
	}
	cmd.Flags().BoolVar(&content, "content", false, "Include job descriptions, departments and offices")
	cmd.Flags().StringVar(&updatedSince, "updated-since", "", "Only jobs updated since (e.g. 7d, yesterday, 2026-01-31)")
	return cmd
}

// jobsUpdatedSince keeps jobs whose updated_at is at or after since. Jobs
// without a parsable timestamp are dropped.
func jobsUpdatedSince(jobs []jobboard.Job, since time.Time) []jobboard.Job {
	out := make([]jobboard.Job, 0, len(jobs))
	for _, j := range jobs {
		t, err := time.Parse(time.RFC3339, j.UpdatedAt)
		if err != nil {
			continue
		}
		if !t.Before(since) {
			out = append(out, j)
		}
	}
	return out
}

func newBoardJobCmd() *cobra.Command {
	var (
		questions bool
		pay       bool
	)

	cmd := &cobra.Command{
		Use:   "job <id|url>",
		Short: "Show one job",
		Long:  "Show a job post. The argument may be a job ID or a boards.greenhouse.io job URL, whose board overrides the configured one.",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ref, err := urlparse.ParseJob(args[0])
			if err != nil {
				return err
			}
			board, err := getBoard(cmd, ref.BoardToken)
			if err != nil {
				return err
			}
			job, err := board.FetchJob(cmd.Context(), ref.JobID, jobboard.JobOptions{Questions: questions, PayTransparency: pay})
			if err != nil {
				return err
			}
			if isStructured(cmd) {
				return printJSON(cmd, job)
			}
			return writeJobText(cmd, job)
		}),
	}
	cmd.Flags().BoolVar(&questions, "questions", false, "Include application questions")
	cmd.Flags().BoolVar(&pay, "pay", false, "Include pay transparency ranges")
	return cmd
}

func writeJobText(cmd *cobra.Command, job *jobboard.Job) error {
	f := newFormatter(cmd)
	f.Row("ID:", strconv.FormatInt(job.ID, 10))
	f.Row("Title:", job.Title)
	f.Row("Location:", orDash(job.Location.Name))
	f.Row("Updated:", orDash(job.UpdatedAt))
	f.Row("URL:", orDash(job.AbsoluteURL))
	for _, r := range job.PayInputRanges {
		f.Row("Pay:", fmt.Sprintf("%s %.2f - %.2f %s", r.Title, float64(r.MinCents)/100, float64(r.MaxCents)/100, r.CurrencyType))
	}
	if err := f.EndTable(); err != nil {
		return err
	}

	if job.Content != "" {
		text, err := jobboard.ContentText(job.Content)
		if err != nil {
			return err
		}
		printIfNotQuiet(cmd, "\n%s\n", text)
	}
	if len(job.Questions) > 0 {
		printIfNotQuiet(cmd, "\nQuestions:\n")
		for _, q := range job.Questions {
			marker := " "
			if q.Required {
				marker = "*"
			}
			names := make([]string, len(q.Fields))
			for i, fld := range q.Fields {
				names[i] = fld.Name
			}
			printIfNotQuiet(cmd, "  %s %s [%s]\n", marker, q.Label, strings.Join(names, ", "))
		}
	}
	return nil
}

func newBoardFindCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Find jobs by title",
		Args:  cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1")
			}
			query := strings.Join(args, " ")
			board, err := getBoard(cmd, "")
			if err != nil {
				return err
			}
			if limit == 1 {
				job, err := board.FindJob(cmd.Context(), query)
				if err != nil {
					return err
				}
				if isStructured(cmd) {
					return printJSON(cmd, job)
				}
				printIfNotQuiet(cmd, "%d\t%s\n", job.ID, job.Title)
				return nil
			}

			matches, err := board.SearchJobs(cmd.Context(), query, limit)
			if err != nil {
				return err
			}
			if isStructured(cmd) {
				return printJSON(cmd, matches)
			}
			f := newFormatter(cmd)
			if len(matches) == 0 {
				f.Empty(fmt.Sprintf("No jobs matching %q", query))
				return nil
			}
			f.StartTable([]string{"ID", "TITLE", "SCORE"})
			for _, m := range matches {
				f.Row(strconv.FormatInt(m.ID, 10), m.Name, strconv.Itoa(m.Score))
			}
			return f.EndTable()
		}),
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 1, "Number of matches; 1 returns the best job")
	return cmd
}

func newBoardDepartmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "departments",
		Aliases: []string{"depts"},
		Short:   "List departments with their job counts",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			board, err := getBoard(cmd, "")
			if err != nil {
				return err
			}
			departments, err := board.ListDepartments(cmd.Context())
			if err != nil {
				return err
			}
			if isStructured(cmd) {
				return printJSON(cmd, departments)
			}
			f := newFormatter(cmd)
			if len(departments) == 0 {
				f.Empty("No departments found")
				return nil
			}
			f.StartTable([]string{"ID", "NAME", "JOBS"})
			for _, d := range departments {
				f.Row(strconv.FormatInt(d.ID, 10), d.Name, strconv.Itoa(len(d.Jobs)))
			}
			return f.EndTable()
		}),
	}
}

func newBoardDepartmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "department <id>",
		Short: "Show one department and its jobs",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if _, err := validation.ParseID(args[0], "department ID"); err != nil {
				return err
			}
			board, err := getBoard(cmd, "")
			if err != nil {
				return err
			}
			data, err := board.GetDepartment(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if isStructured(cmd) {
				return printJSON(cmd, json.RawMessage(data))
			}
			var d jobboard.Department
			if err := json.Unmarshal(data, &d); err != nil {
				return fmt.Errorf("decode department: %w", err)
			}
			printIfNotQuiet(cmd, "%d\t%s\n", d.ID, d.Name)
			f := newFormatter(cmd)
			for _, j := range d.Jobs {
				f.Row("", strconv.FormatInt(j.ID, 10), j.Title, orDash(j.Location.Name))
			}
			return f.EndTable()
		}),
	}
}

func newBoardOfficesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "offices",
		Short: "List offices",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			board, err := getBoard(cmd, "")
			if err != nil {
				return err
			}
			offices, err := board.ListOffices(cmd.Context())
			if err != nil {
				return err
			}
			if isStructured(cmd) {
				return printJSON(cmd, offices)
			}
			f := newFormatter(cmd)
			if len(offices) == 0 {
				f.Empty("No offices found")
				return nil
			}
			f.StartTable([]string{"ID", "NAME", "LOCATION", "DEPARTMENTS"})
			for _, o := range offices {
				f.Row(strconv.FormatInt(o.ID, 10), o.Name, orDash(o.Location), strconv.Itoa(len(o.Departments)))
			}
			return f.EndTable()
		}),
	}
}

func newBoardOfficeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "office <id>",
		Short: "Show one office",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if _, err := validation.ParseID(args[0], "office ID"); err != nil {
				return err
			}
			board, err := getBoard(cmd, "")
			if err != nil {
				return err
			}
			data, err := board.GetOffice(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if isStructured(cmd) {
				return printJSON(cmd, json.RawMessage(data))
			}
			var o jobboard.Office
			if err := json.Unmarshal(data, &o); err != nil {
				return fmt.Errorf("decode office: %w", err)
			}
			printIfNotQuiet(cmd, "%d\t%s\t%s\n", o.ID, o.Name, orDash(o.Location))
			f := newFormatter(cmd)
			for _, d := range o.Departments {
				f.Row("", strconv.FormatInt(d.ID, 10), d.Name, strconv.Itoa(len(d.Jobs))+" jobs")
			}
			return f.EndTable()
		}),
	}
}

func newBoardSkillCmd() *cobra.Command {
	var stdout bool

	cmd := &cobra.Command{
		Use:   "skill",
		Short: "Write a board-specific skill file for coding agents",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			board, err := getBoard(cmd, "")
			if err != nil {
				return err
			}
			if stdout {
				data, err := skill.Collect(cmd.Context(), board)
				if err != nil {
					return err
				}
				return skill.Render(cmd.OutOrStdout(), data)
			}
			path, err := skill.GenerateBoardSkill(cmd.Context(), board)
			if err != nil {
				return err
			}
			if isStructured(cmd) {
				return printJSON(cmd, map[string]string{"path": path})
			}
			printIfNotQuiet(cmd, "Wrote %s\n", path)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print the skill instead of writing it")
	return cmd
}
