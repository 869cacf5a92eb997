// Package plan renders solver solutions in the plan format consumed by
// the VAL validator and handles plan-file writing and validation.
package plan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/planning-framework/pddl2dypdl/pkg/dypdl"
)

// ErrInvalidPlan is returned by Validate when VAL rejects the plan.
var ErrInvalidPlan = errors.New("plan validation failed")

// Render formats a transition sequence as one parenthesized name per
// line. This format is fixed: it is what VAL parses.
func Render(transitions []*dypdl.Transition) string {
	lines := make([]string, len(transitions))
	for i, t := range transitions {
		lines[i] = fmt.Sprintf("(%s)", t.Name())
	}
	return strings.Join(lines, "\n")
}

// Write writes the rendered plan to path.
func Write(path string, transitions []*dypdl.Transition) error {
	if err := os.WriteFile(path, []byte(Render(transitions)), 0o644); err != nil {
		return fmt.Errorf("writing plan to %s: %w", path, err)
	}
	return nil
}

// ValidatorAvailable reports whether the VAL `validate` binary is on
// the PATH.
func ValidatorAvailable() bool {
	_, err := exec.LookPath("validate")
	return err == nil
}

// Validate runs VAL on the written plan file and returns its output.
// A plan VAL rejects yields ErrInvalidPlan.
func Validate(ctx context.Context, domainPath, problemPath, planPath string) (string, error) {
	out, err := exec.CommandContext(ctx, "validate", domainPath, problemPath, planPath).CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, fmt.Errorf("running validate: %w", err)
	}
	if strings.Contains(output, "Failed plans") {
		return output, ErrInvalidPlan
	}
	return output, nil
}
