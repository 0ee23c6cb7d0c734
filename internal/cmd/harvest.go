package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/greenhouse/greenhouse-cli/internal/api"
	"github.com/greenhouse/greenhouse-cli/internal/cli"
	"github.com/greenhouse/greenhouse-cli/internal/dryrun"
	"github.com/greenhouse/greenhouse-cli/internal/greenhouse"
	"github.com/greenhouse/greenhouse-cli/internal/harvest"
	"github.com/greenhouse/greenhouse-cli/internal/iocontext"
	"github.com/greenhouse/greenhouse-cli/internal/validation"
)

func newHarvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "harvest",
		Aliases: []string{"hv"},
		Short:   "Call the Harvest API by operation name",
		Long: strings.TrimSpace(`
Call the Greenhouse Harvest API using operation names such as
"getApplications", "getScorecardsForApplication" or "postNoteForCandidate".

The verb prefix picks the HTTP method. The rest names the resources,
innermost first, joined by "For":

  getApplications                     GET applications
  getApplications --id 12             GET applications/12
  getScorecardsForApplication --id 12 GET applications/12/scorecards
  getOffersForApplication --id 12 --second-id 7
                                      GET applications/12/offers/7

Run "greenhouse harvest routes" for endpoints with irregular paths.`),
	}
	cmd.AddCommand(newHarvestCallCmd())
	cmd.AddCommand(newHarvestResolveCmd())
	cmd.AddCommand(newHarvestRoutesCmd())
	return cmd
}

type harvestCallOptions struct {
	id           string
	secondID     string
	params       []string
	headers      []string
	data         string
	version      string
	onBehalfOf   string
	updatedAfter string
	createdAfter string
	includeLinks bool
	all          bool
	maxPages     int
}

// addRequestFlags registers the flags that shape a request; they are shared
// by "call" and "resolve".
func addRequestFlags(cmd *cobra.Command, opts *harvestCallOptions) {
	cmd.Flags().StringVar(&opts.id, "id", "", "Resource ID")
	cmd.Flags().StringVar(&opts.secondID, "second-id", "", "Nested resource ID (generic paths only)")
	cmd.Flags().StringArrayVarP(&opts.params, "param", "p", nil, "Query parameter key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, "Request header Name=value (repeatable)")
	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "JSON request body ('-' reads stdin, '@file' reads a file)")
	cmd.Flags().StringVar(&opts.onBehalfOf, "on-behalf-of", "", "Greenhouse user ID for the On-Behalf-Of header")
	cmd.Flags().StringVar(&opts.updatedAfter, "updated-after", "", "Filter by update time (e.g. 2024-01-02, 7d, yesterday)")
	cmd.Flags().StringVar(&opts.createdAfter, "created-after", "", "Filter by creation time (e.g. 2024-01-02, 7d, yesterday)")
}

// buildParams turns request flags into operation parameters. Reserved keys
// come first, then query parameters in flag order.
func buildParams(ioStreams *iocontext.IO, opts harvestCallOptions, now time.Time) (harvest.Params, error) {
	var params harvest.Params
	if opts.id != "" {
		params = params.Add(harvest.KeyID, opts.id)
	}
	if opts.secondID != "" {
		if opts.id == "" {
			return nil, fmt.Errorf("--second-id requires --id")
		}
		params = params.Add(harvest.KeySecondID, opts.secondID)
	}

	headerPairs, err := parseKeyValues("header", opts.headers)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{}
	for _, kv := range headerPairs {
		headers[kv.Key] = kv.Value
	}
	if opts.onBehalfOf != "" {
		if _, err := validation.ParseID(opts.onBehalfOf, "--on-behalf-of"); err != nil {
			return nil, err
		}
		headers["On-Behalf-Of"] = opts.onBehalfOf
	}
	if len(headers) > 0 {
		params = params.Add(harvest.KeyHeaders, headers)
	}

	if opts.data != "" {
		body, err := ioStreams.ReadInput(opts.data)
		if err != nil {
			return nil, fmt.Errorf("failed to read --data: %w", err)
		}
		if err := validation.ValidateBodySize(body); err != nil {
			return nil, err
		}
		if !json.Valid(body) {
			return nil, fmt.Errorf("--data is not valid JSON")
		}
		params = params.Add(harvest.KeyBody, string(body))
	}

	queryPairs, err := parseKeyValues("param", opts.params)
	if err != nil {
		return nil, err
	}
	for _, kv := range queryPairs {
		switch kv.Key {
		case harvest.KeyID, harvest.KeySecondID, harvest.KeyHeaders, harvest.KeyBody:
			return nil, fmt.Errorf("--param %s is reserved; use --%s", kv.Key, reservedFlag(kv.Key))
		}
		params = params.Add(kv.Key, kv.Value)
	}

	for _, f := range []struct{ name, value string }{
		{"updated_after", opts.updatedAfter},
		{"created_after", opts.createdAfter},
	} {
		if f.value == "" {
			continue
		}
		t, err := cli.ParseSince(f.value, now)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s: %w", strings.ReplaceAll(f.name, "_", "-"), err)
		}
		params = params.Set(f.name, cli.FormatTimestamp(t))
	}
	return params, nil
}

func reservedFlag(key string) string {
	switch key {
	case harvest.KeySecondID:
		return "second-id"
	case harvest.KeyHeaders:
		return "header"
	case harvest.KeyBody:
		return "data"
	default:
		return key
	}
}

// harvestService returns the Harvest service and its versioned API root. In
// dry-run mode a missing API key is reported as a warning instead of an error.
func harvestService(cmd *cobra.Command, version string) (*harvest.Service, string, []string, error) {
	client, err := getClient(cmd, "")
	if err != nil {
		return nil, "", nil, err
	}
	opts := client.Options()
	if version == "" {
		version = opts.HarvestVersion
	}
	base := harvest.BaseURL(opts.URLs.Harvest, version)

	svc, err := client.Harvest(version)
	if err == nil {
		return svc, base, nil, nil
	}
	if !errors.Is(err, greenhouse.ErrMissingHarvestAPIKey) || !dryrun.IsEnabled(cmd.Context()) {
		return nil, "", nil, err
	}
	svc = harvest.NewService(harvest.Config{
		Version:    version,
		BaseURL:    opts.URLs.Harvest,
		OnBehalfOf: opts.OnBehalfOf,
	})
	return svc, base, []string{"no Harvest API key configured; the request would fail"}, nil
}

func newHarvestCallCmd() *cobra.Command {
	var opts harvestCallOptions

	cmd := &cobra.Command{
		Use:   "call <operation>",
		Short: "Resolve an operation and send it",
		Example: strings.TrimSpace(`
  greenhouse harvest call getCandidates -p per_page=100 --updated-after 7d
  greenhouse harvest call getScorecardsForApplication --id 12345
  greenhouse harvest call getJobs --all -o jsonl
  greenhouse harvest call postNoteForCandidate --id 42 --on-behalf-of 4080 \
    -d '{"user_id": 4080, "body": "Strong referral", "visibility": "public"}'`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			operation := strings.TrimSpace(args[0])
			if opts.maxPages < 1 {
				return fmt.Errorf("--max-pages must be at least 1")
			}
			params, err := buildParams(iocontext.GetIO(cmd.Context()), opts, time.Now())
			if err != nil {
				return err
			}
			svc, base, warnings, err := harvestService(cmd, opts.version)
			if err != nil {
				return err
			}
			req, err := svc.Resolve(operation, params)
			if err != nil {
				return err
			}

			if dryrun.IsEnabled(cmd.Context()) {
				preview := harvestPreview(base, req, warnings)
				if isStructured(cmd) {
					return printJSON(cmd, preview)
				}
				preview.Write(iocontext.GetIO(cmd.Context()).Out)
				return nil
			}

			resp, err := svc.Do(cmd.Context(), req)
			if err != nil {
				return err
			}
			if opts.all && req.HTTPMethod() == "GET" {
				return printAllPages(cmd, svc, resp, opts.maxPages)
			}
			return printHarvestResponse(cmd, resp, opts.includeLinks)
		}),
	}

	addRequestFlags(cmd, &opts)
	cmd.Flags().StringVar(&opts.version, "version", "", "Harvest API version (default "+harvest.DefaultVersion+")")
	cmd.Flags().BoolVar(&opts.includeLinks, "include-links", false, "Wrap the response with pagination links and rate limit data")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Follow next links and combine list pages")
	cmd.Flags().IntVar(&opts.maxPages, "max-pages", 100, "Page limit for --all")
	return cmd
}

func harvestPreview(base string, req *harvest.Request, warnings []string) *dryrun.Preview {
	preview := dryrun.NewPreview(req.HTTPMethod(), strings.TrimRight(base, "/")+"/"+req.URL())
	if len(req.Body) > 0 {
		preview.Summary = fmt.Sprintf("JSON body, %d bytes", len(req.Body))
		preview.Body = req.Body
	}
	for _, name := range sortedKeys(req.Headers) {
		preview.AddHeader(name, req.Headers[name])
	}
	for _, w := range warnings {
		preview.Warn("%s", w)
	}
	if req.Method != "get" && !hasOnBehalfOf(req.Headers) {
		preview.Warn("no On-Behalf-Of user; Harvest rejects writes without one")
	}
	return preview
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func hasOnBehalfOf(headers map[string]string) bool {
	for name := range headers {
		if strings.EqualFold(name, "On-Behalf-Of") {
			return true
		}
	}
	return false
}

// responseBody returns a JSON body as raw JSON and anything else as a string.
func responseBody(resp *api.Response) any {
	if len(resp.Body) == 0 {
		return nil
	}
	if json.Valid(resp.Body) {
		return json.RawMessage(resp.Body)
	}
	return string(resp.Body)
}

func printHarvestResponse(cmd *cobra.Command, resp *api.Response, includeLinks bool) error {
	body := responseBody(resp)
	if includeLinks {
		return printJSON(cmd, map[string]any{
			"status":     resp.StatusCode,
			"data":       body,
			"links":      resp.Links,
			"rate_limit": resp.RateLimit.Meta(),
		})
	}
	if body == nil {
		return printJSON(cmd, map[string]any{"status": resp.StatusCode})
	}
	if s, ok := body.(string); ok {
		printIfNotQuiet(cmd, "%s\n", s)
		return nil
	}
	return printJSON(cmd, body)
}

// printAllPages combines the JSON array pages reachable through next links.
func printAllPages(cmd *cobra.Command, svc *harvest.Service, first *api.Response, maxPages int) error {
	var items []json.RawMessage
	resp := first
	for page := 1; ; page++ {
		var batch []json.RawMessage
		if err := json.Unmarshal(resp.Body, &batch); err != nil {
			if page == 1 {
				return printHarvestResponse(cmd, resp, false)
			}
			return fmt.Errorf("page %d is not a JSON array: %w", page, err)
		}
		items = append(items, batch...)

		next := resp.Links.Next
		if next == "" {
			break
		}
		if page >= maxPages {
			_, _ = fmt.Fprintf(iocontext.GetIO(cmd.Context()).ErrOut, "Stopped after %d pages; raise --max-pages to fetch more\n", maxPages)
			break
		}
		var err error
		resp, err = svc.Follow(cmd.Context(), next)
		if err != nil {
			return err
		}
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return printJSON(cmd, items)
}

func newHarvestResolveCmd() *cobra.Command {
	var opts harvestCallOptions

	cmd := &cobra.Command{
		Use:   "resolve <operation>",
		Short: "Print the request an operation resolves to, without credentials",
		Example: strings.TrimSpace(`
  greenhouse harvest resolve getOffersForApplication --id 12 --second-id 7
  greenhouse harvest resolve getCandidates -p page=2 -p per_page=50`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			params, err := buildParams(iocontext.GetIO(cmd.Context()), opts, time.Now())
			if err != nil {
				return err
			}
			req, err := harvest.Resolve(strings.TrimSpace(args[0]), params)
			if err != nil {
				return err
			}
			if isStructured(cmd) {
				return printJSON(cmd, req)
			}
			f := newFormatter(cmd)
			f.Row("Method:", req.HTTPMethod())
			f.Row("URL:", req.URL())
			for _, name := range sortedKeys(req.Headers) {
				f.Row("Header:", name+": "+req.Headers[name])
			}
			if req.Body != "" {
				f.Row("Body:", req.Body)
			}
			return f.EndTable()
		}),
	}
	addRequestFlags(cmd, &opts)
	return cmd
}

type harvestRoute struct {
	Operation     string `json:"operation" csv:"operation"`
	Path          string `json:"path" csv:"path"`
	PathWithoutID string `json:"path_without_id,omitempty" csv:"path_without_id"`
}

func newHarvestRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List operations with irregular paths",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			resolver := harvest.NewResolver(harvest.DefaultRoutes())
			ops := resolver.Operations()
			routes := make([]harvestRoute, 0, len(ops))
			for _, op := range ops {
				route, _ := resolver.Route(op)
				routes = append(routes, harvestRoute{Operation: op, Path: route.Path, PathWithoutID: route.PathWithoutID})
			}
			if isStructured(cmd) {
				return printJSON(cmd, routes)
			}
			f := newFormatter(cmd)
			f.StartTable([]string{"OPERATION", "PATH"})
			for _, r := range routes {
				path := r.Path
				if r.PathWithoutID != "" {
					path += " (" + r.PathWithoutID + " without id)"
				}
				f.Row(r.Operation, path)
			}
			return f.EndTable()
		}),
	}
}
