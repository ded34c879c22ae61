package main

import (
	"context"
	"log/slog"
	"os"

	"mailman-admin/cmd/mailman-cli/commands"
	"mailman-admin/lib/serviceutil"
	"mailman-admin/lib/telemetry"
)

func main() {
	telemetry.InitSlog(os.Getenv("MAILMAN_VERBOSE") != "")

	err := telemetry.SetupFromEnv(context.Background(), "mailman-cli")
	if err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to setup telemetry", "err", err)
	}
	defer func() {
		err := telemetry.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to shutdown telemetry", "err", err)
		}
	}()

	commands.ExecuteContext(serviceutil.SignalContext())
}
