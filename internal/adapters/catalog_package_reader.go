package adapters

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	catrepo "circletel_backend/internal/catalog/repository"
	"circletel_backend/internal/quotes/service"
)

// CatalogPackageReader adapts the catalog repository for the quotes domain.
// It reads the live table, never the listing cache, so line snapshots carry
// current prices.
type CatalogPackageReader struct {
	repo catrepo.Repository
}

// NewCatalogPackageReader creates a new catalog reader adapter.
func NewCatalogPackageReader(repo catrepo.Repository) *CatalogPackageReader {
	return &CatalogPackageReader{repo: repo}
}

// GetPackagesByIDs returns the packages found for ids. Unknown and inactive
// packages are omitted.
func (a *CatalogPackageReader) GetPackagesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]service.CatalogPackage, error) {
	packages, err := a.repo.GetPackagesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("catalog adapter: get packages: %w", err)
	}

	result := make(map[uuid.UUID]service.CatalogPackage, len(packages))
	for _, p := range packages {
		if !p.IsActive {
			continue
		}
		result[p.ID] = service.CatalogPackage{
			ID:                p.ID,
			Name:              p.Name,
			ServiceType:       p.ServiceType,
			SpeedDown:         p.SpeedDown,
			SpeedUp:           p.SpeedUp,
			DataCapGB:         p.DataCapGB,
			MonthlyPrice:      p.MonthlyPrice,
			InstallationPrice: p.InstallationPrice,
		}
	}
	return result, nil
}

// Compile-time check that CatalogPackageReader implements service.CatalogReader.
var _ service.CatalogReader = (*CatalogPackageReader)(nil)
