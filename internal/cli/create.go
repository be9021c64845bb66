package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/btools-dev/btools/internal/config"
	"github.com/btools-dev/btools/internal/fsutil"
	"github.com/btools-dev/btools/internal/runtime"
	"github.com/btools-dev/btools/internal/scaffold"
)

var (
	createTemplate        string
	createDirectory       string
	createVersion         string
	createDescription     string
	createAuthor          string
	createPermissions     []string
	createHostPermissions []string
	createInstall         bool
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Scaffold a new browser extension project",
	Long: `Create a new Manifest V3 extension project from a template.

The project is rendered into a temporary directory, given a generated
manifest.json and moved to <directory>/<name> once complete.

Examples:
  btools create my-extension
  btools create my-extension --permission storage --permission tabs
  btools create my-extension --directory ~/src --install`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createTemplate, "template", "t", "", "Template id (default from config, then \"vanilla\")")
	createCmd.Flags().StringVarP(&createDirectory, "directory", "d", ".", "Parent directory of the new project")
	createCmd.Flags().StringVar(&createVersion, "version", scaffold.DefaultVersion, "Initial extension version")
	createCmd.Flags().StringVar(&createDescription, "description", scaffold.DefaultDescription, "Extension description")
	createCmd.Flags().StringVar(&createAuthor, "author", "", "Author name (default from config)")
	createCmd.Flags().StringArrayVar(&createPermissions, "permission", nil, "API permission to request (repeatable)")
	createCmd.Flags().StringArrayVar(&createHostPermissions, "host-permission", nil, "Host match pattern to request (repeatable)")
	createCmd.Flags().BoolVar(&createInstall, "install", false, "Run npm install in the new project")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	reg, tplFS, err := loadTemplates()
	if err != nil {
		return err
	}

	opts := scaffold.Options{
		Name:            args[0],
		Template:        createTemplate,
		Directory:       createDirectory,
		Version:         createVersion,
		Description:     createDescription,
		Author:          createAuthor,
		Permissions:     createPermissions,
		HostPermissions: createHostPermissions,
		Install:         createInstall,
	}
	if opts.Template == "" {
		opts.Template = config.DefaultTemplate()
	}
	if opts.Author == "" {
		opts.Author = config.Author()
	}

	s := scaffold.New(reg, tplFS, fsutil.NewOS()).
		WithInstaller(&runtime.Toolchain{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()})

	res, err := s.Create(cmd.Context(), opts)
	if res != nil {
		printCreateResult(cmd, res)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintf(out, "  cd %s\n", res.ProjectPath)
	if !res.Installed {
		fmt.Fprintln(out, "  npm install")
	}
	fmt.Fprintln(out, "  npm run dev")
	return nil
}

func printCreateResult(cmd *cobra.Command, res *scaffold.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created %s extension at %s\n", res.Template.Name, res.ProjectPath)
	for _, f := range res.Files {
		fmt.Fprintf(out, "  %s\n", f)
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "  %s: %s\n", w.Field, w.Message)
		}
	}
}
