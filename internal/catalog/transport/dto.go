package transport

import (
	"time"

	"github.com/google/uuid"
)

// ListPackagesRequest filters the package catalog.
type ListPackagesRequest struct {
	Search          string `form:"search" validate:"omitempty,max=100"`
	ServiceType     string `form:"serviceType" validate:"omitempty,max=50"`
	IncludeInactive bool   `form:"includeInactive"`
	Page            int    `form:"page" validate:"omitempty,min=1"`
	PageSize        int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// PackageResponse is a catalog package.
type PackageResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	ServiceType       string    `json:"serviceType"`
	SpeedDown         int       `json:"speedDown"`
	SpeedUp           int       `json:"speedUp"`
	DataCapGB         *int      `json:"dataCapGb,omitempty"`
	MonthlyPrice      float64   `json:"monthlyPrice"`
	InstallationPrice float64   `json:"installationPrice"`
	Description       *string   `json:"description,omitempty"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// PackageListResponse is a page of packages.
type PackageListResponse struct {
	Items      []PackageResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}
