package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"circletel_backend/internal/catalog/repository"
	"circletel_backend/internal/catalog/transport"
	"circletel_backend/platform/logger"
)

// Cache is the read-through store for package listings.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Service provides business logic for the package catalog.
type Service struct {
	repo  repository.Repository
	cache Cache
	log   *logger.Logger
}

// New creates a new catalog service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SetCache enables cache-aside reads for package listings.
func (s *Service) SetCache(cache Cache) {
	s.cache = cache
}

// GetPackageByID retrieves a package by ID.
func (s *Service) GetPackageByID(ctx context.Context, id uuid.UUID) (transport.PackageResponse, error) {
	pkg, err := s.repo.GetPackageByID(ctx, id)
	if err != nil {
		return transport.PackageResponse{}, err
	}
	return toPackageResponse(pkg), nil
}

// ListPackages retrieves packages with search and pagination.
func (s *Service) ListPackages(ctx context.Context, req transport.ListPackagesRequest) (transport.PackageListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	params := repository.ListPackagesParams{
		Search:      strings.TrimSpace(req.Search),
		ServiceType: strings.TrimSpace(req.ServiceType),
		ActiveOnly:  !req.IncludeInactive,
		Offset:      (page - 1) * pageSize,
		Limit:       pageSize,
	}

	key := cacheKey(params)
	if s.cache != nil {
		var cached transport.PackageListResponse
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warn("package cache read failed", "error", err)
		} else if found {
			return cached, nil
		}
	}

	items, total, err := s.repo.ListPackages(ctx, params)
	if err != nil {
		return transport.PackageListResponse{}, err
	}

	result := toPackageListResponse(items, total, page, pageSize)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			s.log.Warn("package cache write failed", "error", err)
		}
	}
	return result, nil
}

func cacheKey(p repository.ListPackagesParams) string {
	return fmt.Sprintf("list:%s:%s:%t:%d:%d", strings.ToLower(p.Search), p.ServiceType, p.ActiveOnly, p.Offset, p.Limit)
}

func toPackageResponse(p repository.Package) transport.PackageResponse {
	return transport.PackageResponse{
		ID:                p.ID,
		Name:              p.Name,
		ServiceType:       p.ServiceType,
		SpeedDown:         p.SpeedDown,
		SpeedUp:           p.SpeedUp,
		DataCapGB:         p.DataCapGB,
		MonthlyPrice:      p.MonthlyPrice,
		InstallationPrice: p.InstallationPrice,
		Description:       p.Description,
		IsActive:          p.IsActive,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toPackageListResponse(items []repository.Package, total, page, pageSize int) transport.PackageListResponse {
	out := make([]transport.PackageResponse, len(items))
	for i, p := range items {
		out[i] = toPackageResponse(p)
	}
	totalPages := (total + pageSize - 1) / pageSize
	return transport.PackageListResponse{
		Items:      out,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
