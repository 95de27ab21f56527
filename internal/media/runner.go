package media

import (
	"context"
	"os/exec"
)

// Runner exécute un binaire externe et renvoie stdout+stderr.
// Remplacé par une implémentation factice dans les tests.
type Runner interface {
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner est le Runner par défaut, basé sur os/exec.
type ExecRunner struct{}

func (ExecRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}
