// Package ground invokes the external grounding tool that turns a
// PDDL domain/problem pair into SAS+ text. The tool is treated as an
// opaque process: its stdout is the SAS+ document, a non-zero exit is
// a grounding failure.
package ground

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Ground runs the translator at translatorPath on the given domain and
// problem files and returns the SAS+ text it emits.
func Ground(ctx context.Context, translatorPath, domainPath, problemPath string) (string, error) {
	cmd := exec.CommandContext(ctx, translatorPath, domainPath, problemPath, "--to-stdout")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("grounding %s with %s: %w", problemPath, translatorPath, err)
		}
		return "", fmt.Errorf("grounding %s with %s: %w: %s", problemPath, translatorPath, err, msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}
