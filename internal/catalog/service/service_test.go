package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"circletel_backend/internal/catalog/repository"
	"circletel_backend/internal/catalog/transport"
	"circletel_backend/platform/apperr"
	"circletel_backend/platform/logger"
)

type fakeRepo struct {
	packages  []repository.Package
	listCalls int
	last      repository.ListPackagesParams
}

func (f *fakeRepo) GetPackageByID(_ context.Context, id uuid.UUID) (repository.Package, error) {
	for _, p := range f.packages {
		if p.ID == id {
			return p, nil
		}
	}
	return repository.Package{}, apperr.NotFound("package not found")
}

func (f *fakeRepo) GetPackagesByIDs(_ context.Context, ids []uuid.UUID) ([]repository.Package, error) {
	var out []repository.Package
	for _, id := range ids {
		for _, p := range f.packages {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) ListPackages(_ context.Context, params repository.ListPackagesParams) ([]repository.Package, int, error) {
	f.listCalls++
	f.last = params
	return f.packages, len(f.packages), nil
}

type mapCache struct {
	entries map[string]transport.PackageListResponse
}

func (m *mapCache) Get(_ context.Context, key string, dest any) (bool, error) {
	v, ok := m.entries[key]
	if ok {
		*dest.(*transport.PackageListResponse) = v
	}
	return ok, nil
}

func (m *mapCache) Set(_ context.Context, key string, value any) error {
	m.entries[key] = value.(transport.PackageListResponse)
	return nil
}

func newService() (*Service, *fakeRepo) {
	repo := &fakeRepo{packages: []repository.Package{
		{ID: uuid.New(), Name: "BizFibre 100", ServiceType: "fibre", SpeedDown: 100, SpeedUp: 100, MonthlyPrice: 899, IsActive: true},
		{ID: uuid.New(), Name: "BizLTE 50", ServiceType: "lte", SpeedDown: 50, SpeedUp: 10, MonthlyPrice: 499, IsActive: true},
	}}
	return New(repo, logger.Nop()), repo
}

func TestListPackagesDefaultsAndClamps(t *testing.T) {
	svc, repo := newService()

	result, err := svc.ListPackages(context.Background(), transport.ListPackagesRequest{PageSize: 500, Search: "  fibre "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Page != 1 || result.PageSize != 100 {
		t.Fatalf("expected page 1 size 100, got %d/%d", result.Page, result.PageSize)
	}
	if repo.last.Search != "fibre" || !repo.last.ActiveOnly {
		t.Fatalf("unexpected params %+v", repo.last)
	}
	if result.Total != 2 || result.TotalPages != 1 {
		t.Fatalf("expected 2 items on 1 page, got %d/%d", result.Total, result.TotalPages)
	}
}

func TestListPackagesUsesCache(t *testing.T) {
	svc, repo := newService()
	svc.SetCache(&mapCache{entries: map[string]transport.PackageListResponse{}})

	req := transport.ListPackagesRequest{ServiceType: "fibre"}
	for i := 0; i < 3; i++ {
		if _, err := svc.ListPackages(context.Background(), req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected 1 repository call, got %d", repo.listCalls)
	}

	if _, err := svc.ListPackages(context.Background(), transport.ListPackagesRequest{ServiceType: "lte"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.listCalls != 2 {
		t.Fatalf("expected distinct filters to miss the cache, got %d calls", repo.listCalls)
	}
}

func TestGetPackageByIDNotFound(t *testing.T) {
	svc, _ := newService()
	_, err := svc.GetPackageByID(context.Background(), uuid.New())
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
