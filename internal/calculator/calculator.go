package calculator

import (
	"errors"
	"net/http"
	"strconv"

	"bread-calculator/internal/apperr"
	"bread-calculator/internal/arithmetic"
	"bread-calculator/internal/auth"
	"bread-calculator/internal/httputil"
	"bread-calculator/internal/logging"
	"bread-calculator/internal/metrics"
	"bread-calculator/internal/models"
	"bread-calculator/internal/storage"
	"bread-calculator/internal/validation"

	"github.com/gorilla/mux"
)

const (
	defaultSkip  = 0
	defaultLimit = 100
)

// CalculationRequest is the body of Add and Edit. Pointers distinguish a
// missing operand from zero.
type CalculationRequest struct {
	A    *float64 `json:"a"`
	B    *float64 `json:"b"`
	Type *string  `json:"type"`
}

type OperandsRequest struct {
	A *float64 `json:"a"`
	B *float64 `json:"b"`
}

type ResultResponse struct {
	Result float64 `json:"result"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (req CalculationRequest) fields() (float64, float64, models.CalculationType, error) {
	switch {
	case req.A == nil:
		return 0, 0, "", apperr.Validation("a: field required")
	case req.B == nil:
		return 0, 0, "", apperr.Validation("b: field required")
	case req.Type == nil:
		return 0, 0, "", apperr.Validation("type: field required")
	}
	return *req.A, *req.B, models.CalculationType(*req.Type), nil
}

func CreateHandler(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFrom(w, r)
		if !ok {
			return
		}

		var req CalculationRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		a, b, calcType, err := req.fields()
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}

		calc, err := store.CreateCalculation(r.Context(), a, b, calcType, owner)
		record(calcType, err)
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}

		logging.FromContext(r.Context()).WithField("calculation_id", calc.ID).Info("calculation created")
		httputil.WriteJSON(w, http.StatusOK, calc)
	}
}

func ListHandler(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFrom(w, r)
		if !ok {
			return
		}

		skip, err := queryInt(r, "skip", defaultSkip)
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		limit, err := queryInt(r, "limit", defaultLimit)
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}

		calcs, err := store.ListCalculations(r.Context(), owner, skip, limit)
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, calcs)
	}
}

func GetHandler(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFrom(w, r)
		if !ok {
			return
		}
		id, err := pathID(r)
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}

		calc, err := store.GetCalculation(r.Context(), id, owner)
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, calc)
	}
}

func UpdateHandler(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFrom(w, r)
		if !ok {
			return
		}
		id, err := pathID(r)
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}

		var req CalculationRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		a, b, calcType, err := req.fields()
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}

		calc, err := store.UpdateCalculation(r.Context(), id, a, b, calcType, owner)
		record(calcType, err)
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, calc)
	}
}

func DeleteHandler(store *storage.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := ownerFrom(w, r)
		if !ok {
			return
		}
		id, err := pathID(r)
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}

		deleted, err := store.DeleteCalculation(r.Context(), id, owner)
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		if !deleted {
			httputil.WriteError(w, r, apperr.NotFound("calculation not found"))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Calculation deleted successfully"})
	}
}

// OperationHandler evaluates a single operation without persisting it.
func OperationHandler(op models.CalculationType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OperandsRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		if req.A == nil {
			httputil.WriteError(w, r, apperr.Validation("a: field required"))
			return
		}
		if req.B == nil {
			httputil.WriteError(w, r, apperr.Validation("b: field required"))
			return
		}

		if err := validation.Calculation(*req.A, *req.B, op); err != nil {
			record(op, err)
			httputil.WriteError(w, r, err)
			return
		}
		result, err := arithmetic.Evaluate(op, *req.A, *req.B)
		switch {
		case err == nil:
		case errors.Is(err, arithmetic.ErrNonFiniteResult):
			err = apperr.Validation("result: out of range for a 64-bit float")
		default:
			err = apperr.Internal("evaluate operation", err)
		}
		record(op, err)
		if err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, ResultResponse{Result: result})
	}
}

func ownerFrom(w http.ResponseWriter, r *http.Request) (*int64, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperr.Authentication("not authenticated"))
		return nil, false
	}
	return &userID, true
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, apperr.Validation("id: must be an integer")
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation("%s: must be a non-negative integer", name)
	}
	return n, nil
}

func record(calcType models.CalculationType, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case apperr.Is(err, apperr.KindValidation):
		outcome = "invalid"
	case apperr.Is(err, apperr.KindNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	label := string(calcType)
	if !calcType.Valid() {
		label = "unknown"
	}
	metrics.RecordCalculation(label, outcome)
}
