package controllers

import (
	"net/http"

	"github.com/grocerease/grocerease-backend/api/middleware"
	"github.com/grocerease/grocerease-backend/api/responses"
	"github.com/grocerease/grocerease-backend/api/validators"
	"github.com/grocerease/grocerease-backend/internal/employee"
	"github.com/grocerease/grocerease-backend/internal/items"
	"github.com/grocerease/grocerease-backend/internal/search"
	"github.com/grocerease/grocerease-backend/pkg/db/models"
	pkgerrors "github.com/grocerease/grocerease-backend/pkg/errors"
	"github.com/grocerease/grocerease-backend/pkg/logger"
)

// actor returns the employee record RequireEmployee placed on the context.
func actor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*models.User, bool) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Unauthorized("user context missing"))
		return nil, false
	}
	return user, true
}

func EmployeeProducts(svc employee.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := actor(w, r, logg)
		if !ok {
			return
		}
		page, err := svc.Products(r.Context(), user, search.ParamsFromQuery(r.URL.Query()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func EmployeeProduct(svc employee.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := actor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Product(r.Context(), user, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func EmployeeCreateProduct(svc employee.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := actor(w, r, logg)
		if !ok {
			return
		}
		var input items.CreateItemInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.CreateProduct(r.Context(), user, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// EmployeeUpdateStock records a stock status change for an item in the
// employee's store.
func EmployeeUpdateStock(svc employee.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := actor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input employee.StockUpdateInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.UpdateStock(r.Context(), user, id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "Stock status updated successfully", item)
	}
}

func EmployeeHistory(svc employee.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := actor(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		history, err := svc.History(r.Context(), user, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}

func EmployeeProfile(svc employee.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := actor(w, r, logg)
		if !ok {
			return
		}
		profile, err := svc.Profile(r.Context(), user)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func EmployeeStats(svc employee.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := actor(w, r, logg)
		if !ok {
			return
		}
		stats, err := svc.Stats(r.Context(), user)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
