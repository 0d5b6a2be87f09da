package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/ghuser/lendingdesk/pkg/auth"
	"github.com/ghuser/lendingdesk/pkg/errhttp"
	"github.com/ghuser/lendingdesk/pkg/httpx"
	appsvcs "github.com/ghuser/lendingdesk/services/lending/application/services"
	"github.com/ghuser/lendingdesk/services/lending/domain/models"
	"github.com/ghuser/lendingdesk/services/lending/domain/repositories"
)

// PenaltyHandler serves penalty lists, payments and the admin report.
type PenaltyHandler struct {
	svc *appsvcs.Services
}

// NewPenaltyHandler returns a PenaltyHandler backed by the given services.
func NewPenaltyHandler(svc *appsvcs.Services) *PenaltyHandler {
	return &PenaltyHandler{svc: svc}
}

// ListMine returns the caller's penalties.
//
//	@Summary	List my penalties
//	@Tags		penalties
//	@Produce	json
//	@Param		status	query		string	false	"Unpaid or Paid"
//	@Success	200		{object}	httpx.Page[PenaltyResponse]
//	@Failure	401		{object}	ErrorResponse
//	@Router		/me/penalties [get]
func (h *PenaltyHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	h.list(w, r, &userID)
}

// List returns all penalties, optionally filtered by ?user_id= and ?status=.
//
//	@Summary	List penalties
//	@Tags		admin
//	@Produce	json
//	@Param		user_id	query		string	false	"Filter by user"
//	@Param		status	query		string	false	"Unpaid or Paid"
//	@Success	200		{object}	httpx.Page[PenaltyResponse]
//	@Router		/admin/penalties [get]
func (h *PenaltyHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := optionalUUID(w, r, "user_id")
	if !ok {
		return
	}
	h.list(w, r, userID)
}

func (h *PenaltyHandler) list(w http.ResponseWriter, r *http.Request, userID *uuid.UUID) {
	opts, page, ok := queryOpts(w, r)
	if !ok {
		return
	}
	f := repositories.PenaltyFilter{QueryOpts: opts, UserID: userID}
	switch s := models.PenaltyStatus(r.URL.Query().Get("status")); s {
	case "":
	case models.PenaltyUnpaid, models.PenaltyPaid:
		f.Status = &s
	default:
		httpx.JSONError(w, http.StatusBadRequest, "status must be Unpaid or Paid")
		return
	}
	pens, total, err := h.svc.Queries.ListPenalties(r.Context(), f)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.WritePage(w, mapAll(pens, toPenaltyResponse), total, page)
}

// Pay marks a penalty as Paid. Paying twice is a no-op.
//
//	@Summary	Pay penalty
//	@Tags		admin
//	@Produce	json
//	@Param		id	path		string	true	"Penalty ID"
//	@Success	200	{object}	PenaltyResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/admin/penalties/{id}/pay [post]
func (h *PenaltyHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	pen, err := h.svc.Lending.PayPenalty(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toPenaltyResponse(pen))
}

// Report returns aggregate counts and amounts.
//
//	@Summary	Lending report
//	@Tags		admin
//	@Produce	json
//	@Success	200	{object}	ReportResponse
//	@Router		/admin/reports [get]
func (h *PenaltyHandler) Report(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Queries.Report(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toReportResponse(rep))
}
