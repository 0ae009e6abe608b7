// Command orgaudit reports compensation and reporting-line anomalies in a
// workforce hierarchy.
//
//	orgaudit employees.csv
//	orgaudit --format jsonl --min-severity medium staff.csv
//	orgaudit --where 'depth > 6' --diagnostics
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "orgaudit: %v\n", err)
		stop()
		os.Exit(1)
	}
}
