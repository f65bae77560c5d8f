package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"shopfront/internal/domain"
	"shopfront/internal/fetch"
)

type mockDetailAPI struct {
	calls   atomic.Int64
	get     func(ctx context.Context, productID int64) (*domain.Product, error)
	related func(ctx context.Context, productID int64, limit int) ([]domain.Product, error)
}

func (m *mockDetailAPI) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	m.calls.Add(1)
	if m.get != nil {
		return m.get(ctx, productID)
	}
	return &domain.Product{ID: productID, Name: "Walnut Desk"}, nil
}

func (m *mockDetailAPI) RelatedProducts(ctx context.Context, productID int64, limit int) ([]domain.Product, error) {
	m.calls.Add(1)
	if m.related != nil {
		return m.related(ctx, productID, limit)
	}
	return nil, nil
}

func TestDetail_LoadsProductAndRelated(t *testing.T) {
	mock := &mockDetailAPI{
		related: func(ctx context.Context, productID int64, limit int) ([]domain.Product, error) {
			if limit != 4 {
				t.Errorf("expected related limit 4, got %d", limit)
			}
			return []domain.Product{{ID: 7}, {ID: 8}}, nil
		},
	}
	detail := NewDetail(mock)

	<-detail.Load(context.Background(), "42")

	state, result, err := detail.Snapshot()
	if state != fetch.StateLoaded || err != nil {
		t.Fatalf("expected StateLoaded, got state=%v err=%v", state, err)
	}
	if result.Product == nil || result.Product.ID != 42 {
		t.Errorf("unexpected product: %+v", result.Product)
	}
	if len(result.Related) != 2 {
		t.Errorf("expected 2 related items, got %d", len(result.Related))
	}
}

func TestDetail_MissingRouteIDShortCircuits(t *testing.T) {
	for _, routeID := range []string{"", "abc", "0", "-3"} {
		t.Run("id="+routeID, func(t *testing.T) {
			mock := &mockDetailAPI{}
			detail := NewDetail(mock)

			<-detail.Load(context.Background(), routeID)

			state, _, err := detail.Snapshot()
			if state != fetch.StateErrored {
				t.Errorf("expected StateErrored, got %v", state)
			}
			if err == nil {
				t.Error("expected a missing-identifier error")
			}
			if mock.calls.Load() != 0 {
				t.Errorf("no network call may be made, got %d", mock.calls.Load())
			}
		})
	}
}

func TestDetail_RelatedFailureDegradesToEmptyStrip(t *testing.T) {
	mock := &mockDetailAPI{
		related: func(ctx context.Context, productID int64, limit int) ([]domain.Product, error) {
			return nil, errors.New("recommendation service down")
		},
	}
	detail := NewDetail(mock)

	<-detail.Load(context.Background(), "42")

	state, result, err := detail.Snapshot()
	if state != fetch.StateLoaded || err != nil {
		t.Fatalf("related failure must not fail the page, got state=%v err=%v", state, err)
	}
	if result.Product == nil || len(result.Related) != 0 {
		t.Errorf("expected product with empty related strip, got %+v", result)
	}
}

func TestDetail_ProductFailureFailsThePage(t *testing.T) {
	loadErr := errors.New("not found")
	mock := &mockDetailAPI{
		get: func(ctx context.Context, productID int64) (*domain.Product, error) {
			return nil, loadErr
		},
	}
	detail := NewDetail(mock)

	<-detail.Load(context.Background(), "42")

	state, _, err := detail.Snapshot()
	if state != fetch.StateErrored || !errors.Is(err, loadErr) {
		t.Errorf("expected errored page, got state=%v err=%v", state, err)
	}
}

func TestDetail_RetryRecovers(t *testing.T) {
	var failed atomic.Bool
	mock := &mockDetailAPI{
		get: func(ctx context.Context, productID int64) (*domain.Product, error) {
			if failed.CompareAndSwap(false, true) {
				return nil, errors.New("transient")
			}
			return &domain.Product{ID: productID}, nil
		},
	}
	detail := NewDetail(mock)

	<-detail.Load(context.Background(), "42")
	<-detail.Retry(context.Background(), "42")

	state, result, _ := detail.Snapshot()
	if state != fetch.StateLoaded || result.Product == nil {
		t.Errorf("expected recovery, got state=%v result=%+v", state, result)
	}
}
