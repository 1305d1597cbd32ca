package adapters

import (
	"context"
	"errors"
	"testing"

	catrepo "circletel_backend/internal/catalog/repository"

	"github.com/google/uuid"
)

type fakePackageRepo struct {
	packages []catrepo.Package
	err      error
}

func (f *fakePackageRepo) GetPackageByID(context.Context, uuid.UUID) (catrepo.Package, error) {
	return catrepo.Package{}, errors.New("not used")
}

func (f *fakePackageRepo) GetPackagesByIDs(_ context.Context, ids []uuid.UUID) ([]catrepo.Package, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []catrepo.Package
	for _, id := range ids {
		for _, p := range f.packages {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakePackageRepo) ListPackages(context.Context, catrepo.ListPackagesParams) ([]catrepo.Package, int, error) {
	return nil, 0, errors.New("not used")
}

func TestCatalogPackageReaderSkipsMissingAndInactive(t *testing.T) {
	active := catrepo.Package{ID: uuid.New(), Name: "BizFibre 100", ServiceType: "fibre", SpeedDown: 100, SpeedUp: 100, MonthlyPrice: 899, InstallationPrice: 1500, IsActive: true}
	retired := catrepo.Package{ID: uuid.New(), Name: "BizLTE 10", ServiceType: "lte", MonthlyPrice: 299}
	reader := NewCatalogPackageReader(&fakePackageRepo{packages: []catrepo.Package{active, retired}})

	found, err := reader.GetPackagesByIDs(context.Background(), []uuid.UUID{active.ID, retired.ID, uuid.New()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 package, got %d", len(found))
	}
	got := found[active.ID]
	if got.Name != "BizFibre 100" || got.MonthlyPrice != 899 || got.InstallationPrice != 1500 || got.SpeedDown != 100 {
		t.Fatalf("unexpected snapshot source %+v", got)
	}
}

func TestCatalogPackageReaderWrapsErrors(t *testing.T) {
	cause := errors.New("connection reset")
	reader := NewCatalogPackageReader(&fakePackageRepo{err: cause})

	if _, err := reader.GetPackagesByIDs(context.Background(), []uuid.UUID{uuid.New()}); !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}
