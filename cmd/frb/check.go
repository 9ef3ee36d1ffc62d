package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fastreckless/frb/internal/orchestrator"
)

type refresher interface {
	Refresh(ctx context.Context)
	Snapshot() orchestrator.State
}

// runCheck performs one refresh without the TUI and prints the result.
func runCheck(ctx context.Context, w io.Writer, orch refresher) error {
	orch.Refresh(ctx)
	s := orch.Snapshot()
	if s.Error != "" {
		fmt.Fprintf(w, "error=%s\n", s.Error)
		return errors.New(s.Error)
	}
	fmt.Fprintf(w, "accounts=%d\n", len(s.Accounts))
	for _, a := range s.Accounts {
		fmt.Fprintf(w, "%s %s\n", a.ID, a.Balance)
	}
	return nil
}
