package handler

import (
	"maturitymap/internal/catalog"
	"maturitymap/internal/model"
	"net/http"
)

type categoryInfo struct {
	Category    model.Category `json:"category"`
	Description string         `json:"description"`
}

// CatalogResponse is the static survey content
type CatalogResponse struct {
	Questions         []model.Question         `json:"questions"`
	Categories        []categoryInfo           `json:"categories"`
	OrganizationTypes []model.OrganizationType `json:"organizationTypes"`
}

// CatalogHandler serves the question catalog
type CatalogHandler struct{}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Get handles GET /v1/catalog
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	categories := make([]categoryInfo, 0, len(model.Categories()))
	for _, c := range model.Categories() {
		categories = append(categories, categoryInfo{Category: c, Description: catalog.CategoryDescription(c)})
	}

	writeJSON(w, http.StatusOK, CatalogResponse{
		Questions:         catalog.Questions(),
		Categories:        categories,
		OrganizationTypes: model.OrganizationTypes(),
	})
}
