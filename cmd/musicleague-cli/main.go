package main

import (
	"context"
	"musicleague-backend/cmd/musicleague-cli/commands"
	"musicleague-backend/lib/telemetry"
	"musicleague-backend/lib/util/serviceutil"
)

func main() {
	ctx := serviceutil.SignalContext()

	tel, err := telemetry.SetupFromEnv(ctx, "musicleague-cli")
	if err != nil {
		serviceutil.Fatal("failed to set up telemetry", err)
	}
	defer tel.Shutdown(context.Background())
	telemetry.InitSlog(true)

	commands.ExecuteContext(ctx)
}
