package controllers

import (
	"net/http"

	"github.com/quanty/quanty-backend/api/responses"
	"github.com/quanty/quanty-backend/api/validators"
	"github.com/quanty/quanty-backend/internal/questions"
	"github.com/quanty/quanty-backend/pkg/logger"
)

// QuestionsList returns the practice bank filtered by ?category= and ?difficulty=.
func QuestionsList(svc *questions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.List(r.Context(), validators.QueryString(r, "category", 64), validators.QueryString(r, "difficulty", 32))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
