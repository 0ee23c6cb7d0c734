package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/greenhouse/greenhouse-cli/internal/schema"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schema",
		Aliases: []string{"sc"},
		Short:   "Discover resource schemas",
		Long:    "List and show the fields of Greenhouse resources such as jobs, questions and applications",
		Example: strings.TrimSpace(`
  greenhouse schema list
  greenhouse schema show question
  greenhouse schema show application -o json`),
	}

	cmd.AddCommand(newSchemaListCmd())
	cmd.AddCommand(newSchemaShowCmd())
	return cmd
}

func newSchemaListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List available schemas",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			type schemaSummary struct {
				Name        string `json:"name" csv:"name"`
				Description string `json:"description" csv:"description"`
			}
			names := schema.List()
			summaries := make([]schemaSummary, 0, len(names))
			for _, name := range names {
				s, _ := schema.Get(name)
				summaries = append(summaries, schemaSummary{Name: name, Description: s.Description})
			}
			if isStructured(cmd) {
				return printJSON(cmd, summaries)
			}

			f := newFormatter(cmd)
			if len(summaries) == 0 {
				f.Empty("No schemas registered")
				return nil
			}
			f.StartTable([]string{"RESOURCE", "DESCRIPTION"})
			for _, s := range summaries {
				desc := s.Description
				if len(desc) > 60 {
					desc = desc[:57] + "..."
				}
				f.Row(s.Name, desc)
			}
			return f.EndTable()
		}),
	}
}

func newSchemaShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <resource>",
		Short: "Show the schema of a resource",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			s, err := schema.Get(name)
			if err != nil {
				return fmt.Errorf("schema %q not found; available: %s", name, strings.Join(schema.List(), ", "))
			}
			if isStructured(cmd) {
				return printJSON(cmd, s)
			}
			printSchemaText(cmd.OutOrStdout(), name, s)
			return nil
		}),
	}
}

func printSchemaText(out io.Writer, name string, s *schema.Schema) {
	_, _ = fmt.Fprintf(out, "Schema: %s\n", name)
	_, _ = fmt.Fprintf(out, "Type: %s\n", s.Type)
	if s.Description != "" {
		_, _ = fmt.Fprintf(out, "Description: %s\n", s.Description)
	}
	if len(s.Properties) == 0 {
		return
	}

	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	names := make([]string, 0, len(s.Properties))
	for prop := range s.Properties {
		names = append(names, prop)
	}
	sort.Strings(names)

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Fields:")
	for _, prop := range names {
		printField(out, prop, s.Properties[prop], required[prop], "  ")
	}
}

func printField(out io.Writer, name string, s *schema.Schema, required bool, indent string) {
	marker := ""
	if required {
		marker = " (required)"
	}
	typeName := s.Type
	if s.Items != nil {
		typeName = fmt.Sprintf("array<%s>", s.Items.Type)
	}
	_, _ = fmt.Fprintf(out, "%s%s: %s%s\n", indent, name, typeName, marker)
	if s.Description != "" {
		_, _ = fmt.Fprintf(out, "%s  %s\n", indent, s.Description)
	}
	if len(s.Enum) > 0 {
		_, _ = fmt.Fprintf(out, "%s  Allowed values: %s\n", indent, strings.Join(s.Enum, ", "))
	}
}
