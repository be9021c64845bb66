package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/btools-dev/btools/internal/errors"
	"github.com/btools-dev/btools/internal/fsutil"
	"github.com/btools-dev/btools/internal/manifest"
)

var (
	validateRoot       string
	validateSchemaOnly bool
	validateJSONSchema bool
	validateJSON       bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [manifest]",
	Short: "Validate a manifest.json against the Manifest V3 rules",
	Long: `Validate a manifest file (JSON or YAML, default ./manifest.json).

Schema rules are checked first. When they pass, every file the manifest
references is checked under --root (default: the manifest's directory).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateRoot, "root", "", "Directory referenced files are resolved against")
	validateCmd.Flags().BoolVar(&validateSchemaOnly, "schema-only", false, "Skip the referenced-file check")
	validateCmd.Flags().BoolVar(&validateJSONSchema, "json-schema", false, "Also check against the bundled JSON Schema")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output the result as JSON")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := "manifest.json"
	if len(args) == 1 {
		path = args[0]
	}
	root := validateRoot
	if root == "" {
		root = filepath.Dir(path)
	}

	fs := fsutil.NewOS()
	doc, err := manifest.ParseFile(fs, path)
	if err != nil {
		if errors.GetCode(err) == "" {
			return errors.Wrap(errors.CodeValidation, "Cannot parse "+path, err, map[string]any{"path": path})
		}
		return err
	}

	var opts []manifest.Option
	if validateJSONSchema {
		checker, err := manifest.NewJSONSchemaChecker()
		if err != nil {
			return err
		}
		opts = append(opts, manifest.WithSchemaChecker(checker))
	}
	v := manifest.NewValidator(fs, opts...)

	res := v.ValidateWithJSONSchema(doc)
	if res.Valid && !validateSchemaOnly {
		res, err = v.ValidateFiles(cmd.Context(), doc, root)
		if err != nil {
			return err
		}
	}

	if err := printValidation(cmd, path, res); err != nil {
		return err
	}
	if !res.Valid {
		return errors.Validation(
			fmt.Sprintf("%s has %d issue(s)", path, len(res.Issues)),
			map[string]any{"path": path},
		)
	}
	return nil
}

func printValidation(cmd *cobra.Command, path string, res *manifest.ValidationResult) error {
	out := cmd.OutOrStdout()
	if validateJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling validation result: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if res.Valid {
		fmt.Fprintf(out, "%s is valid\n", path)
		return nil
	}
	fmt.Fprintf(out, "%s is invalid:\n", path)
	for _, issue := range res.Issues {
		fmt.Fprintf(out, "  %s: %s\n", issue.Field, issue.Message)
		if issue.Description != "" {
			fmt.Fprintf(out, "    %s\n", issue.Description)
		}
	}
	return nil
}
