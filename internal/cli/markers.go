package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/toyz/descres/internal/annotations"
	"github.com/toyz/descres/internal/config"
	"github.com/toyz/descres/internal/resolver"
)

func newMarkersCommand() *cobra.Command {
	var attributes bool

	cmd := &cobra.Command{
		Use:   "markers",
		Short: "List the markers the resolver understands",
		Long: `Markers lists every built-in marker with the elements it may be
attached to. Markers without a handler are read by interface
classification when a component-defining marker is processed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeMarkers(cmd.OutOrStdout(), annotations.DefaultRegistry(), attributes)
		},
	}
	cmd.Flags().BoolVarP(&attributes, "attributes", "a", false, "list the attributes of each marker")
	return cmd
}

func writeMarkers(out io.Writer, registry annotations.SchemaRegistry, attributes bool) error {
	handled := make(map[annotations.MarkerType]bool)
	for _, h := range resolver.Handlers(config.Default()) {
		handled[h.Marker] = true
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MARKER\tTARGETS\tROLE\tDESCRIPTION")
	for _, t := range registry.ListTypes() {
		schema, err := registry.GetSchema(t)
		if err != nil {
			return err
		}
		role := "classification"
		switch {
		case t.IsComponentDefining():
			role = "component"
		case handled[t]:
			role = "handler"
		}
		fmt.Fprintf(w, "@%s\t%s\t%s\t%s\n", t, schema.Targets, role, schema.Description)

		if !attributes {
			continue
		}
		names := make([]string, 0, len(schema.Attributes))
		for name := range schema.Attributes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			spec := schema.Attributes[name]
			var notes []string
			if spec.Required {
				notes = append(notes, "required")
			}
			if spec.DefaultValue != nil {
				notes = append(notes, fmt.Sprintf("default %v", spec.DefaultValue))
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", name, spec.Type, strings.Join(notes, ", "), spec.Description)
		}
	}
	return w.Flush()
}
