package main

import (
	"log/slog"
	"time"
)

func main() {
	slog.Info("Starting marker cleanup job")
	start := time.Now()

	retention := conf.CleanUpConfig.MarkerRetention
	if retention <= 0 {
		retention = DEFAULT_MARKER_RETENTION
	}

	olderThan := time.Now().Add(-retention)
	removed, err := enrollmentDBService.DeleteMarkersOlderThan(olderThan)
	if err != nil {
		slog.Error("Failed to delete old status report markers", slog.String("error", err.Error()))
		return
	}

	slog.Info("Marker cleanup job completed",
		slog.Int64("removedMarkers", removed),
		slog.String("olderThan", olderThan.Format(time.RFC3339)),
		slog.String("duration", time.Since(start).String()))
}
