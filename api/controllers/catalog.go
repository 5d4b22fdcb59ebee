package controllers

import (
	"net/http"

	"github.com/quanty/quanty-backend/api/responses"
	"github.com/quanty/quanty-backend/api/validators"
	"github.com/quanty/quanty-backend/internal/catalog"
	"github.com/quanty/quanty-backend/pkg/logger"
)

// CategoriesList returns the category catalog, optionally filtered by ?difficulty=.
func CategoriesList(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.Categories(r.Context(), validators.QueryString(r, "difficulty", 32))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// ExpertsList returns experts derived from interviews, optionally filtered by ?expertise=.
func ExpertsList(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		experts, err := svc.Experts(r.Context(), validators.QueryString(r, "expertise", 32))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, experts)
	}
}
