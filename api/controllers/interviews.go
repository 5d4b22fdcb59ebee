package controllers

import (
	"net/http"

	"github.com/quanty/quanty-backend/api/responses"
	"github.com/quanty/quanty-backend/api/validators"
	"github.com/quanty/quanty-backend/internal/interviews"
	"github.com/quanty/quanty-backend/pkg/enums"
	"github.com/quanty/quanty-backend/pkg/logger"
	"github.com/quanty/quanty-backend/pkg/pagination"
)

// InterviewsList serves the public directory with optional category, search and cursor.
func InterviewsList(svc interviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := interviews.ListFilter{
			Category: enums.Category(validators.QueryString(r, "category", 32)),
			Query:    validators.QueryString(r, "q", 200),
			Expert:   validators.QueryString(r, "expert", 120),
			Page: pagination.Params{
				Limit:  limit,
				Cursor: validators.QueryString(r, "cursor", 512),
			},
		}
		if filter.Category == "all" {
			filter.Category = ""
		}

		page, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func InterviewGet(svc interviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		interview, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, interview)
	}
}

// InterviewCreate adds an interview authored by the caller. Content admins only.
func InterviewCreate(svc interviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body interviews.CreateInterviewRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		interview, err := svc.Create(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, interview)
	}
}

func InterviewUpdate(svc interviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body interviews.UpdateInterviewRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		interview, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, interview)
	}
}

func InterviewDelete(svc interviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
