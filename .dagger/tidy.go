package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dagger/replybot/internal/dagger"
)

// checkUnchanged snapshots files, runs cmd, and fails with the diff if cmd
// rewrote any of them.
func (r *Replybot) checkUnchanged(ctx context.Context, hint string, cmd []string, files ...string) (string, error) {
	ctr := r.goContainer()
	diffs := make([]string, 0, len(files))
	for _, f := range files {
		ctr = ctr.WithExec([]string{"cp", f, f + ".HEAD"})
		diffs = append(diffs, fmt.Sprintf("diff -u %s.HEAD %s", f, f))
	}

	out, err := ctr.
		WithExec(cmd).
		WithExec([]string{"sh", "-c", strings.Join(diffs, " && ")}).
		Stdout(ctx)

	var e *dagger.ExecError
	if errors.As(err, &e) {
		return "", fmt.Errorf("%s\n\n%s", hint, e.Stdout)
	} else if err != nil {
		return "", fmt.Errorf("unexpected error: %w", err)
	}
	return out, nil
}

// CheckGoModTidy fails if "go mod tidy" would change go.mod or go.sum.
//
// +check
func (r *Replybot) CheckGoModTidy(ctx context.Context) (string, error) {
	out, err := r.checkUnchanged(ctx,
		"go.mod or go.sum are not tidy: run 'go mod tidy' and commit the changes",
		[]string{"go", "mod", "tidy"},
		"go.mod", "go.sum",
	)
	if err != nil {
		return "", err
	}
	return "go.mod and go.sum are tidy: " + out, nil
}

// CheckFmt fails if any Go file is not gofmt-clean.
//
// +check
func (r *Replybot) CheckFmt(ctx context.Context) (string, error) {
	out, err := r.goContainer().
		WithExec([]string{"sh", "-c", "gofmt -l $(find . -name '*.go' -not -path './_*' -not -path './.dagger/*')"}).
		Stdout(ctx)
	if err != nil {
		return "", fmt.Errorf("running gofmt: %w", err)
	}
	if files := strings.TrimSpace(out); files != "" {
		return "", fmt.Errorf("files need gofmt:\n%s", files)
	}
	return "all files are gofmt-clean", nil
}
