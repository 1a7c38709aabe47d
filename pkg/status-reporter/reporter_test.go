package statusreporter

import (
	"context"
	"errors"
	"sync"
	"testing"

	enrollmentcodec "github.com/panel-framework/panel-backend/pkg/enrollment-codec"
	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
	"github.com/panel-framework/panel-backend/pkg/marketplace"
)

type inMemoryMarkerStore struct {
	mu      sync.Mutex
	markers map[string]bool
	failSet bool
}

func newInMemoryMarkerStore() *inMemoryMarkerStore {
	return &inMemoryMarkerStore{markers: map[string]bool{}}
}

func (s *inMemoryMarkerStore) HasMarker(ctx context.Context, fingerprint string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markers[fingerprint], nil
}

func (s *inMemoryMarkerStore) SetMarker(ctx context.Context, fingerprint string, projectCode string, status string) error {
	if s.failSet {
		return errors.New("store unavailable")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[fingerprint] = true
	return nil
}

type fakeProvider struct {
	marketplace.ScreeningProvider

	mu          sync.Mutex
	updateCalls []string
	failUpdate  bool
}

func (p *fakeProvider) UpdateRespondentStatus(ctx context.Context, encryptedPayload string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failUpdate {
		return errors.New("backend unavailable")
	}
	p.updateCalls = append(p.updateCalls, encryptedPayload)
	return nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.updateCalls)
}

func newTestReporter(provider *fakeProvider, store MarkerStore) *Reporter {
	registry := marketplace.NewRegistry(map[string]marketplace.ScreeningProvider{
		enrollmentTypes.MARKETPLACE_PROJECTS: provider,
	})
	return New(enrollmentcodec.New("test-secret"), store, registry)
}

func TestReportIdempotency(t *testing.T) {
	provider := &fakeProvider{}
	reporter := newTestReporter(provider, newInMemoryMarkerStore())

	t.Run("first report hits the backend", func(t *testing.T) {
		if err := reporter.Report(context.Background(), "", "P1", "COMPLETED"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if provider.callCount() != 1 {
			t.Errorf("expected 1 backend call, got %d", provider.callCount())
		}
	})

	t.Run("second report is a no-op", func(t *testing.T) {
		if err := reporter.Report(context.Background(), "", "P1", "COMPLETED"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if provider.callCount() != 1 {
			t.Errorf("expected 1 backend call, got %d", provider.callCount())
		}
	})

	t.Run("different status reports again", func(t *testing.T) {
		if err := reporter.Report(context.Background(), "", "P1", "SCREEN_OUT"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if provider.callCount() != 2 {
			t.Errorf("expected 2 backend calls, got %d", provider.callCount())
		}
	})

	t.Run("status synonym shares fingerprint", func(t *testing.T) {
		if err := reporter.Report(context.Background(), "", "P1", "DISQUALIFIED"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if provider.callCount() != 2 {
			t.Errorf("expected 2 backend calls, got %d", provider.callCount())
		}
	})
}

func TestReportFailureStaysRetryable(t *testing.T) {
	provider := &fakeProvider{failUpdate: true}
	store := newInMemoryMarkerStore()
	reporter := newTestReporter(provider, store)

	if err := reporter.Report(context.Background(), "", "P1", "COMPLETED"); err == nil {
		t.Error("should produce error")
	}
	if len(store.markers) != 0 {
		t.Error("marker must not be written on a failed backend call")
	}

	// Retry after the backend recovers must go through.
	provider.failUpdate = false
	if err := reporter.Report(context.Background(), "", "P1", "COMPLETED"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if provider.callCount() != 1 {
		t.Errorf("expected 1 backend call, got %d", provider.callCount())
	}
	if len(store.markers) != 1 {
		t.Error("marker must be written after a confirmed report")
	}
}

func TestReportMarkerWriteFailureDoesNotFailReport(t *testing.T) {
	provider := &fakeProvider{}
	store := newInMemoryMarkerStore()
	store.failSet = true
	reporter := newTestReporter(provider, store)

	if err := reporter.Report(context.Background(), "", "P1", "COMPLETED"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if provider.callCount() != 1 {
		t.Errorf("expected 1 backend call, got %d", provider.callCount())
	}
}

func TestReportConcurrentCallsSerialized(t *testing.T) {
	provider := &fakeProvider{}
	reporter := newTestReporter(provider, newInMemoryMarkerStore())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = reporter.Report(context.Background(), "", "P1", "COMPLETED")
		}()
	}
	wg.Wait()

	if provider.callCount() != 1 {
		t.Errorf("expected exactly 1 backend call, got %d", provider.callCount())
	}
}

func TestReportValidation(t *testing.T) {
	provider := &fakeProvider{}
	reporter := newTestReporter(provider, newInMemoryMarkerStore())

	if err := reporter.Report(context.Background(), "", "", "COMPLETED"); err == nil {
		t.Error("should produce error")
	}
	if err := reporter.Report(context.Background(), "unheard-of", "P1", "COMPLETED"); err == nil {
		t.Error("should produce error")
	}
}
