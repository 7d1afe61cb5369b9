package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/shutterbook/simulator/internal/core/api"
	"github.com/shutterbook/simulator/internal/core/httpapi"
	"github.com/shutterbook/simulator/internal/simulator"
	"github.com/shutterbook/simulator/internal/types"
)

// schemaGroup is a set of types published as one JSON Schema document.
type schemaGroup struct {
	Name  string
	Title string
	Types []any
}

var schemaGroups = []schemaGroup{
	{
		Name:  "form-builder",
		Title: "Form builder draft",
		Types: []any{
			types.FormBuilderData{},
			api.AddStepRequest{},
			api.ValidateDraftResponse{},
		},
	},
	{
		Name:  "simulate",
		Title: "Price simulation",
		Types: []any{
			httpapi.SimulateRequest{},
			simulator.Result{},
			httpapi.ErrorResponse{},
		},
	},
}

var schemaCmd = &cobra.Command{
	Use:       "schema [form-builder|simulate]",
	Short:     "Print the JSON Schema of the draft and simulate payloads",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"form-builder", "simulate"},
	RunE:      runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	out := make(map[string]any, len(schemaGroups))
	for _, group := range schemaGroups {
		if len(args) == 1 && args[0] != group.Name {
			continue
		}
		out[group.Name] = groupSchema(group)
	}
	if len(out) == 0 {
		return fmt.Errorf("unknown schema group %q", args[0])
	}

	var doc any = out
	if len(args) == 1 {
		doc = out[args[0]]
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// groupSchema merges the definitions of every type in the group.
func groupSchema(group schemaGroup) map[string]any {
	reflector := &jsonschema.Reflector{}

	definitions := make(map[string]any)
	var roots []string
	for _, t := range group.Types {
		schema := reflector.Reflect(t)
		for name, def := range schema.Definitions {
			definitions[name] = def
		}
		if schema.Ref != "" {
			roots = append(roots, filepath.Base(schema.Ref))
		}
	}
	sort.Strings(roots)

	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"$id":     fmt.Sprintf("https://shutterbook.example/schemas/%s.json", group.Name),
		"title":   group.Title,
		"roots":   roots,
		"$defs":   definitions,
	}
}
