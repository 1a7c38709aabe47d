package statusreporter

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	enrollmentcodec "github.com/panel-framework/panel-backend/pkg/enrollment-codec"
	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
	"github.com/panel-framework/panel-backend/pkg/marketplace"
)

// MarkerStore is the persisted set of already reported fingerprints.
// Append-only: writes are a set-insert, reads are existence checks.
type MarkerStore interface {
	HasMarker(ctx context.Context, fingerprint string) (bool, error)
	SetMarker(ctx context.Context, fingerprint string, projectCode string, status string) error
}

// statusPayload is what gets encrypted and sent to the marketplace; its
// encoding doubles as the dedup fingerprint.
type statusPayload struct {
	ProjectCode string `json:"projectCode"`
	Status      string `json:"status"`
}

// Reporter sends respondent status transitions to the marketplace backends
// at most once per (projectCode, status) fingerprint for the lifetime of the
// marker store.
type Reporter struct {
	codec     *enrollmentcodec.Codec
	store     MarkerStore
	providers *marketplace.Registry

	// Serializes overlapping Report calls within the process; coarse on
	// purpose, reporting is rare and never latency critical.
	mu sync.Mutex
}

func New(codec *enrollmentcodec.Codec, store MarkerStore, providers *marketplace.Registry) *Reporter {
	return &Reporter{
		codec:     codec,
		store:     store,
		providers: providers,
	}
}

// Report records the status transition with the marketplace backend. Already
// reported fingerprints return immediately without a backend call. The
// marker is written only after the backend confirmed the update, so a failed
// call stays retryable.
func (r *Reporter) Report(ctx context.Context, marketplaceName string, projectCode string, status string) error {
	if projectCode == "" {
		return errors.New("projectCode must be defined")
	}
	status = enrollmentTypes.NormalizeStatus(status)

	r.mu.Lock()
	defer r.mu.Unlock()

	fingerprint, err := r.codec.Encode(statusPayload{ProjectCode: projectCode, Status: status})
	if err != nil {
		return err
	}

	reported, err := r.store.HasMarker(ctx, fingerprint)
	if err != nil {
		return err
	}
	if reported {
		slog.Debug("status already reported", slog.String("projectCode", projectCode), slog.String("status", status))
		return nil
	}

	provider, err := r.providers.ProviderFor(marketplaceName)
	if err != nil {
		return err
	}

	if err := provider.UpdateRespondentStatus(ctx, fingerprint); err != nil {
		slog.Error("could not report respondent status",
			slog.String("projectCode", projectCode),
			slog.String("status", status),
			slog.String("error", err.Error()))
		return err
	}

	if err := r.store.SetMarker(ctx, fingerprint, projectCode, status); err != nil {
		// The update went through; a missing marker only risks a duplicate
		// report later, which the backend tolerates.
		slog.Error("could not persist status report marker",
			slog.String("projectCode", projectCode),
			slog.String("error", err.Error()))
	}
	return nil
}
