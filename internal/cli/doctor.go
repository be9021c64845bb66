package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/btools-dev/btools/internal/config"
	"github.com/btools-dev/btools/internal/errors"
	"github.com/btools-dev/btools/internal/runtime"
	"github.com/btools-dev/btools/internal/template"
)

var (
	checkRuntime   bool
	checkTemplates bool
	checkConfig    bool
)

func init() {
	doctorCmd.Flags().BoolVar(&checkRuntime, "check-runtime", false, "Verify node and npm are available")
	doctorCmd.Flags().BoolVar(&checkTemplates, "check-templates", false, "Verify templates load")
	doctorCmd.Flags().BoolVar(&checkConfig, "check-config", false, "Show the config file in use")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment btools depends on",
	Long: `Run diagnostic checks: the config file, the template set and the node/npm
toolchain used by "create --install". Without flags every check runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all := !checkRuntime && !checkTemplates && !checkConfig
		out := cmd.OutOrStdout()
		failed := 0

		if all || checkConfig {
			runConfigCheck(out)
		}
		var reg *template.Registry
		if all || checkTemplates || checkRuntime {
			reg = runTemplatesCheck(out, all || checkTemplates, &failed)
		}
		if all || checkRuntime {
			runRuntimeCheck(cmd, out, reg, &failed)
		}

		if failed > 0 {
			return errors.Build(fmt.Sprintf("%d check(s) failed", failed), nil)
		}
		return nil
	},
}

func runConfigCheck(out io.Writer) {
	fmt.Fprintln(out, "Config check:")
	path := config.FilePath()
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(out, "  [INFO] No config file at %s, using defaults\n", path)
	} else {
		fmt.Fprintf(out, "  [ OK ] Using %s\n", path)
	}
	if dir := config.TemplatesDir(); dir != "" {
		fmt.Fprintf(out, "  [INFO] templates_dir = %s\n", dir)
	}
}

func runTemplatesCheck(out io.Writer, report bool, failed *int) *template.Registry {
	reg, _, err := loadTemplates()
	if !report {
		return reg
	}
	fmt.Fprintln(out, "Templates check:")
	if err != nil {
		fmt.Fprintf(out, "  [FAIL] %v\n", err)
		*failed++
		return nil
	}
	if len(reg.List()) == 0 {
		fmt.Fprintln(out, "  [FAIL] No templates found")
		*failed++
		return reg
	}
	for _, t := range reg.List() {
		fmt.Fprintf(out, "  [ OK ] %s (%s)\n", t.ID, t.Name)
	}
	return reg
}

func runRuntimeCheck(cmd *cobra.Command, out io.Writer, reg *template.Registry, failed *int) {
	fmt.Fprintln(out, "Runtime check:")
	tc := &runtime.Toolchain{}

	v, err := tc.NodeVersion(cmd.Context())
	if err != nil {
		fmt.Fprintf(out, "  [MISS] node: %v\n", err)
		*failed++
	} else {
		fmt.Fprintf(out, "  [ OK ] node %s\n", v)
		if reg != nil {
			for _, t := range reg.List() {
				constraint := t.Engines["node"]
				if constraint == "" {
					continue
				}
				ok, err := runtime.Satisfies(v, constraint)
				switch {
				case err != nil:
					fmt.Fprintf(out, "  [WARN] %s: invalid node constraint %q\n", t.ID, constraint)
				case !ok:
					fmt.Fprintf(out, "  [FAIL] %s requires node %s\n", t.ID, constraint)
					*failed++
				}
			}
		}
	}

	if path, err := exec.LookPath("npm"); err != nil {
		fmt.Fprintln(out, "  [MISS] npm not found")
		*failed++
	} else {
		fmt.Fprintf(out, "  [ OK ] npm found at %s\n", path)
	}
}
