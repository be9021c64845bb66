package runtime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/btools-dev/btools/internal/errors"
	"github.com/btools-dev/btools/internal/logging"
)

// Executable names looked up on PATH.
const (
	NodeBinary = "node"
	NPMBinary  = "npm"
)

// Toolchain delegates to the Node.js toolchain installed on the host.
type Toolchain struct {
	// Stdout and Stderr receive the output of npm; they default to
	// os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// NodeVersion runs `node --version` and parses the result.
func (t *Toolchain) NodeVersion(ctx context.Context) (*semver.Version, error) {
	nodeBin, err := exec.LookPath(NodeBinary)
	if err != nil {
		return nil, errors.Wrap(errors.CodeBuild, "Node.js is required but was not found in PATH", err, nil)
	}

	out, err := exec.CommandContext(ctx, nodeBin, "--version").Output()
	if err != nil {
		return nil, errors.Wrap(errors.CodeBuild, "Failed to run node --version", err, map[string]any{"node": nodeBin})
	}

	v, err := parseSemver(string(out))
	if err != nil {
		return nil, fmt.Errorf("parsing node version %q: %w", strings.TrimSpace(string(out)), err)
	}
	return v, nil
}

// CheckNode verifies the installed Node.js satisfies constraint (for example
// ">=18"). An empty constraint only checks that node is runnable.
func (t *Toolchain) CheckNode(ctx context.Context, constraint string) (*semver.Version, error) {
	v, err := t.NodeVersion(ctx)
	if err != nil {
		return nil, err
	}
	if constraint == "" {
		return v, nil
	}

	ok, err := Satisfies(v, constraint)
	if err != nil {
		return nil, err
	}
	if !ok {
		return v, errors.Build(
			fmt.Sprintf("Node.js %s does not satisfy the required version %s", v, constraint),
			map[string]any{"node": v.String(), "required": constraint},
		)
	}
	return v, nil
}

// Install runs `npm install` in dir.
func (t *Toolchain) Install(ctx context.Context, dir string) error {
	log := logging.GetLogger("runtime")

	npmBin, err := exec.LookPath(NPMBinary)
	if err != nil {
		return errors.Wrap(errors.CodeBuild, "npm is required but was not found in PATH", err, nil)
	}

	stdout := t.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := t.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	var stderrBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, npmBin, "install")
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)

	done := logging.LogOperationStart(log, "npm install")
	defer done()

	if err := cmd.Run(); err != nil {
		return errors.Wrap(errors.CodeBuild, "npm install failed", err, map[string]any{
			"dir":    dir,
			"stderr": lastLines(stderrBuf.String(), 10),
		})
	}
	return nil
}

// Satisfies reports whether v matches the semver constraint.
func Satisfies(v *semver.Version, constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, errors.Validation("Invalid version constraint: "+constraint, map[string]any{"constraint": constraint})
	}
	return c.Check(v), nil
}

// parseSemver strips whitespace and a leading "v" and parses the version.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	return semver.NewVersion(version)
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
