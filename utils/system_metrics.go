package utils

import (
	"context"
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
)

// GetCPUUsage returns the current CPU usage as a percentage
func GetCPUUsage(ctx context.Context) float64 {
	percentage, err := cpu.PercentWithContext(ctx, time.Second, false)
	if err != nil {
		slog.Warn("failed to sample CPU usage", slog.String("error", err.Error()))
		return 0
	}
	if len(percentage) > 0 {
		return percentage[0]
	}
	return 0
}

// RunSystemCollector samples host metrics every interval until ctx is done.
func RunSystemCollector(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		CPUUsage.Set(GetCPUUsage(ctx))
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
