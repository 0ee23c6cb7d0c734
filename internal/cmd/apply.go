package cmd

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/greenhouse/greenhouse-cli/internal/api"
	"github.com/greenhouse/greenhouse-cli/internal/application"
	"github.com/greenhouse/greenhouse-cli/internal/dryrun"
	"github.com/greenhouse/greenhouse-cli/internal/iocontext"
	"github.com/greenhouse/greenhouse-cli/internal/urlparse"
	"github.com/greenhouse/greenhouse-cli/internal/validation"
)

type applyOptions struct {
	fields         []string
	files          []string
	jsonFields     []string
	skipValidation bool
}

func newApplyCmd() *cobra.Command {
	var opts applyOptions

	cmd := &cobra.Command{
		Use:   "apply <job-id|url>",
		Short: "Submit a candidate application",
		Long: strings.TrimSpace(`
Submit an application to a job as multipart form data.

Before sending, the job's required questions are fetched from the Job Board
and the submission is checked against them; nothing is sent when an answer is
missing. A question is answered when any one of its field names has a value.

Field values:
  -f name=value         a string; "name[]=value" appends to a list
  --json-field name=J   a JSON value (numbers, lists, nested objects)
  --file name=path      a file upload ("-" reads stdin)`),
		Example: strings.TrimSpace(`
  greenhouse apply 127817 --board vaulttec \
    -f first_name=Ada -f last_name=Lovelace -f email=ada@example.com \
    --file resume=./resume.pdf -f question_1042159=https://linkedin.com/in/ada

  # Multi-select answers and a preview of the form parts
  greenhouse apply https://boards.greenhouse.io/vaulttec/jobs/127817 \
    -f question_55[]=Go -f question_55[]=SQL ... --dry-run`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			ref, err := urlparse.ParseJob(args[0])
			if err != nil {
				return err
			}

			fields, closeFiles, err := buildSubmission(iocontext.GetIO(cmd.Context()), ref.JobID, opts)
			defer closeFiles()
			if err != nil {
				return err
			}
			if value, ok := fields.Get("email"); ok {
				if email, ok := value.(string); ok && email != "" {
					if err := validation.ValidateEmailFormat(email); err != nil {
						return err
					}
				}
			}

			client, err := getClient(cmd, ref.BoardToken)
			if err != nil {
				return err
			}
			var appOpts []application.Option
			if opts.skipValidation {
				appOpts = append(appOpts, application.SkipValidation())
			}
			apps, err := client.Applications(appOpts...)
			if err != nil {
				return err
			}

			if dryrun.IsEnabled(cmd.Context()) {
				params, err := apps.Prepare(cmd.Context(), fields)
				if err != nil {
					return err
				}
				target := client.Options().URLs.Application
				if target == "" {
					target = application.DefaultBaseURL
				}
				preview := submissionPreview(target, client.Options().ApplicationAPIKey, params)
				if isStructured(cmd) {
					return printJSON(cmd, preview)
				}
				preview.Write(iocontext.GetIO(cmd.Context()).Out)
				return nil
			}

			resp, err := apps.Submit(cmd.Context(), fields)
			if err != nil {
				return err
			}
			if isStructured(cmd) {
				if len(resp.Body) == 0 {
					return printJSON(cmd, map[string]any{"status": resp.StatusCode, "submitted": true})
				}
				return printJSON(cmd, resp.Body)
			}
			printIfNotQuiet(cmd, "Application submitted for job %s (HTTP %d)\n", ref.JobID, resp.StatusCode)
			return nil
		}),
	}

	cmd.Flags().StringArrayVarP(&opts.fields, "field", "f", nil, "Form field name=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.jsonFields, "json-field", nil, "Form field name=JSON value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.files, "file", nil, "File upload name=path (repeatable)")
	cmd.Flags().BoolVar(&opts.skipValidation, "skip-validation", false, "Send without checking required questions")
	return cmd
}

// buildSubmission assembles the submission fields in flag order: the job id
// first, then -f, --json-field and --file values. The returned func closes
// opened files and is always safe to call.
func buildSubmission(ioStreams *iocontext.IO, jobID string, opts applyOptions) (api.Fields, func(), error) {
	var closers []io.Closer
	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	fields := api.Fields{}.Add("id", jobID)
	lists := map[string]int{}
	appendList := func(name string, value any) {
		if i, ok := lists[name]; ok {
			fields[i].Value = append(fields[i].Value.([]any), value)
			return
		}
		lists[name] = len(fields)
		fields = fields.Add(name, []any{value})
	}

	pairs, err := parseKeyValues("field", opts.fields)
	if err != nil {
		return nil, closeAll, err
	}
	for _, kv := range pairs {
		if name, ok := strings.CutSuffix(kv.Key, "[]"); ok {
			appendList(name, kv.Value)
			continue
		}
		fields = fields.Add(kv.Key, kv.Value)
	}

	pairs, err = parseKeyValues("json-field", opts.jsonFields)
	if err != nil {
		return nil, closeAll, err
	}
	for _, kv := range pairs {
		value, err := api.DecodeJSONValue([]byte(kv.Value))
		if err != nil {
			return nil, closeAll, fmt.Errorf("invalid --json-field %s: %w", kv.Key, err)
		}
		fields = fields.Add(kv.Key, value)
	}

	pairs, err = parseKeyValues("file", opts.files)
	if err != nil {
		return nil, closeAll, err
	}
	for _, kv := range pairs {
		if kv.Value == "-" {
			data, err := io.ReadAll(ioStreams.In)
			if err != nil {
				return nil, closeAll, fmt.Errorf("failed to read --file %s from stdin: %w", kv.Key, err)
			}
			fields = fields.Add(kv.Key, api.NewFile(kv.Key, bytes.NewReader(data)))
			continue
		}
		f, err := os.Open(kv.Value)
		if err != nil {
			return nil, closeAll, fmt.Errorf("failed to open --file %s: %w", kv.Key, err)
		}
		closers = append(closers, f)
		fields = fields.Add(kv.Key, api.NewFile(filepath.Base(kv.Value), f))
	}
	return fields, closeAll, nil
}

func submissionPreview(target, apiKey string, params []api.PostParam) *dryrun.Preview {
	preview := dryrun.NewPreview(http.MethodPost, target)
	preview.Summary = fmt.Sprintf("multipart/form-data with %d parts", len(params))
	if apiKey != "" {
		preview.AddHeader("Authorization", "Basic [redacted]")
	} else {
		preview.Warn("no application API key configured; the request would fail")
	}
	for _, p := range params {
		if p.IsFile() {
			preview.AddPart(p.Name, "@"+p.Filename)
			continue
		}
		preview.AddPart(p.Name, p.Contents)
	}
	return preview
}
