package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Package is a sellable connectivity service.
type Package struct {
	ID                uuid.UUID `db:"id"`
	Name              string    `db:"name"`
	ServiceType       string    `db:"service_type"`
	SpeedDown         int       `db:"speed_down"`
	SpeedUp           int       `db:"speed_up"`
	DataCapGB         *int      `db:"data_cap_gb"`
	MonthlyPrice      float64   `db:"monthly_price"`
	InstallationPrice float64   `db:"installation_price"`
	Description       *string   `db:"description"`
	IsActive          bool      `db:"is_active"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// ListPackagesParams defines filters for listing packages.
type ListPackagesParams struct {
	Search      string
	ServiceType string
	ActiveOnly  bool
	Offset      int
	Limit       int
}

// Repository defines catalog storage operations.
type Repository interface {
	GetPackageByID(ctx context.Context, id uuid.UUID) (Package, error)
	GetPackagesByIDs(ctx context.Context, ids []uuid.UUID) ([]Package, error)
	ListPackages(ctx context.Context, params ListPackagesParams) ([]Package, int, error)
}
