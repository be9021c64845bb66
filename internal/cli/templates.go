package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/btools-dev/btools/internal/config"
	"github.com/btools-dev/btools/internal/fsutil"
	"github.com/btools-dev/btools/internal/template"
	"github.com/btools-dev/btools/templates"
)

var templatesJSON bool

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available project templates",
	Long: `List the templates "create" can use. Templates are built into the binary
unless templates_dir is set in the config.`,
	Args: cobra.NoArgs,
	RunE: runTemplates,
}

func init() {
	templatesCmd.Flags().BoolVar(&templatesJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(templatesCmd)
}

// templateEntry represents a template for display.
type templateEntry struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Dependencies    []string `json:"dependencies"`
	DevDependencies []string `json:"devDependencies"`
}

// loadTemplates returns the registry and the filesystem its templates are
// read from: the configured templates_dir or the built-in set.
func loadTemplates() (*template.Registry, fsutil.FileSystem, error) {
	if dir := config.TemplatesDir(); dir != "" {
		fs := fsutil.NewOS()
		reg, err := template.LoadRegistry(fs, dir)
		if err != nil {
			return nil, nil, err
		}
		return reg, fs, nil
	}

	fs := fsutil.NewReadOnly(templates.FS)
	reg, err := template.LoadRegistry(fs, ".")
	if err != nil {
		return nil, nil, err
	}
	return reg, fs, nil
}

func runTemplates(cmd *cobra.Command, args []string) error {
	reg, _, err := loadTemplates()
	if err != nil {
		return err
	}

	list := reg.List()
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No templates found.")
		return nil
	}

	entries := make([]templateEntry, 0, len(list))
	for _, t := range list {
		entries = append(entries, templateEntry{
			ID:              t.ID,
			Name:            t.Name,
			Description:     t.Description,
			Dependencies:    t.Dependencies,
			DevDependencies: t.DevDependencies,
		})
	}

	if templatesJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling templates: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Name, e.Description)
	}
	return w.Flush()
}
