package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/btools-dev/btools/internal/errors"
	"github.com/btools-dev/btools/internal/fsutil"
	"github.com/btools-dev/btools/internal/manifest"
)

var (
	genPackage         string
	genName            string
	genVersion         string
	genDescription     string
	genAuthor          string
	genHomepage        string
	genPermissions     []string
	genHostPermissions []string
	genOutput          string
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Work with manifest.json files",
}

var manifestGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a Manifest V3 manifest.json",
	Long: `Generate a manifest.json for the standard project layout (popup.html,
background.js, content.js and icons/).

With --package, name, version, description, author and homepage are read
from package.json; flags given explicitly override those values.

Examples:
  btools manifest generate --name "My Extension" --permission storage
  btools manifest generate --package package.json --output manifest.json`,
	Args: cobra.NoArgs,
	RunE: runManifestGenerate,
}

func init() {
	f := manifestGenerateCmd.Flags()
	f.StringVar(&genPackage, "package", "", "Read metadata from this package.json")
	f.StringVar(&genName, "name", manifest.DefaultName, "Extension name")
	f.StringVar(&genVersion, "version", manifest.DefaultVersion, "Extension version")
	f.StringVar(&genDescription, "description", "", "Extension description")
	f.StringVar(&genAuthor, "author", "", "Author")
	f.StringVar(&genHomepage, "homepage", "", "Homepage URL")
	f.StringArrayVar(&genPermissions, "permission", nil, "API permission to request (repeatable)")
	f.StringArrayVar(&genHostPermissions, "host-permission", nil, "Host match pattern to request (repeatable)")
	f.StringVarP(&genOutput, "output", "o", "", "Write to this file instead of stdout")

	manifestCmd.AddCommand(manifestGenerateCmd)
	rootCmd.AddCommand(manifestCmd)
}

func runManifestGenerate(cmd *cobra.Command, args []string) error {
	fs := fsutil.NewOS()

	var (
		m   *manifest.Manifest
		err error
	)
	if genPackage != "" {
		data, err := fs.ReadFile(genPackage)
		if err != nil {
			return err
		}
		pkg, err := manifest.ParsePackageJSON(data)
		if err != nil {
			return err
		}
		m, err = manifest.GenerateFromPackageJSON(*pkg, generateOverrides(cmd))
		if err != nil {
			return err
		}
	} else {
		m, err = manifest.Generate(manifest.Config{
			Name:            genName,
			Version:         genVersion,
			Description:     genDescription,
			Author:          genAuthor,
			HomepageURL:     genHomepage,
			Permissions:     genPermissions,
			HostPermissions: genHostPermissions,
		})
		if err != nil {
			return err
		}
	}

	data, err := manifest.Encode(m)
	if err != nil {
		return errors.Internal("Failed to encode manifest", err)
	}
	if genOutput == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := fs.WriteFile(genOutput, data); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", genOutput)
	return nil
}

// generateOverrides returns the flags the user set explicitly.
func generateOverrides(cmd *cobra.Command) *manifest.Overrides {
	f := cmd.Flags()
	o := &manifest.Overrides{}
	str := func(name string, v string) *string {
		if f.Changed(name) {
			return &v
		}
		return nil
	}
	o.Name = str("name", genName)
	o.Version = str("version", genVersion)
	o.Description = str("description", genDescription)
	o.Author = str("author", genAuthor)
	o.HomepageURL = str("homepage", genHomepage)
	if f.Changed("permission") {
		o.Permissions = genPermissions
	}
	if f.Changed("host-permission") {
		o.HostPermissions = genHostPermissions
	}
	return o
}
