package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"circletel_backend/platform/apperr"
)

const packageNotFoundMessage = "package not found"

const packageColumns = `id, name, service_type, speed_down, speed_up, data_cap_gb,
	monthly_price, installation_price, description, is_active, created_at, updated_at`

// Repo implements the catalog repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPackage(row rowScanner) (Package, error) {
	var p Package
	err := row.Scan(
		&p.ID, &p.Name, &p.ServiceType, &p.SpeedDown, &p.SpeedUp, &p.DataCapGB,
		&p.MonthlyPrice, &p.InstallationPrice, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// GetPackageByID retrieves a package by ID.
func (r *Repo) GetPackageByID(ctx context.Context, id uuid.UUID) (Package, error) {
	p, err := scanPackage(r.pool.QueryRow(ctx, `SELECT `+packageColumns+` FROM service_packages WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Package{}, apperr.NotFound(packageNotFoundMessage)
		}
		return Package{}, fmt.Errorf("get package: %w", err)
	}
	return p, nil
}

// GetPackagesByIDs retrieves all packages whose id is in ids. Missing ids
// are not an error.
func (r *Repo) GetPackagesByIDs(ctx context.Context, ids []uuid.UUID) ([]Package, error) {
	if len(ids) == 0 {
		return []Package{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT `+packageColumns+` FROM service_packages WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get packages by ids: %w", err)
	}
	defer rows.Close()

	packages := make([]Package, 0, len(ids))
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan package: %w", err)
		}
		packages = append(packages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate packages: %w", err)
	}
	return packages, nil
}

// ListPackages lists packages ordered by type and price.
func (r *Repo) ListPackages(ctx context.Context, params ListPackagesParams) ([]Package, int, error) {
	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}
	var typeParam interface{}
	if params.ServiceType != "" {
		typeParam = params.ServiceType
	}

	baseQuery := `
		FROM service_packages
		WHERE ($1::text IS NULL OR name ILIKE $1 OR description ILIKE $1)
			AND ($2::text IS NULL OR service_type = $2)
			AND ($3::boolean = false OR is_active = true)`
	args := []interface{}{searchParam, typeParam, params.ActiveOnly}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count packages: %w", err)
	}

	query := "SELECT " + packageColumns + " " + baseQuery + `
		ORDER BY service_type ASC, monthly_price ASC, name ASC
		LIMIT $4 OFFSET $5`
	rows, err := r.pool.Query(ctx, query, append(args, params.Limit, params.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list packages: %w", err)
	}
	defer rows.Close()

	packages := make([]Package, 0)
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan package: %w", err)
		}
		packages = append(packages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate packages: %w", err)
	}
	return packages, total, nil
}
