package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/ghuser/lendingdesk/pkg/auth"
	"github.com/ghuser/lendingdesk/pkg/errhttp"
	"github.com/ghuser/lendingdesk/pkg/httpx"
	pkgvalidator "github.com/ghuser/lendingdesk/pkg/validator"
	appsvcs "github.com/ghuser/lendingdesk/services/lending/application/services"
	"github.com/ghuser/lendingdesk/services/lending/domain/models"
	"github.com/ghuser/lendingdesk/services/lending/domain/repositories"
)

// BorrowRequest is the request body for POST /items/{id}/borrow.
type BorrowRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1" example:"1"`
} // @name BorrowRequest

// StatusRequest is the request body for PUT /admin/borrows/{id}/status.
type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Rejected Borrowed Returned Overdue" example:"Returned"`
} // @name StatusRequest

// BorrowHandler serves borrow requests and the admin lifecycle actions.
type BorrowHandler struct {
	svc *appsvcs.Services
}

// NewBorrowHandler returns a BorrowHandler backed by the given services.
func NewBorrowHandler(svc *appsvcs.Services) *BorrowHandler {
	return &BorrowHandler{svc: svc}
}

// Request records a Pending borrow of an item by the caller.
//
//	@Summary	Request to borrow an item
//	@Tags		borrows
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Item ID"
//	@Param		request	body		BorrowRequest	true	"Quantity"
//	@Success	201		{object}	BorrowResponse
//	@Failure	401		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse	"Not enough stock"
//	@Router		/items/{id}/borrow [post]
func (h *BorrowHandler) Request(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	itemID, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[BorrowRequest](w, r)
	if !ok {
		return
	}
	b, err := h.svc.Lending.RequestBorrow(r.Context(), userID, itemID, req.Quantity)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toBorrowResponse(b))
}

// ListMine returns the caller's borrows.
//
//	@Summary	List my borrows
//	@Tags		borrows
//	@Produce	json
//	@Param		status	query		string	false	"Filter by status"
//	@Param		limit	query		int		false	"Page size (max 200)"
//	@Param		offset	query		int		false	"Page offset"
//	@Success	200		{object}	httpx.Page[BorrowResponse]
//	@Failure	401		{object}	ErrorResponse
//	@Router		/me/borrows [get]
func (h *BorrowHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	h.list(w, r, &userID)
}

// List returns all borrows, optionally filtered by ?user_id= and ?status=.
//
//	@Summary	List borrows
//	@Tags		admin
//	@Produce	json
//	@Param		user_id	query		string	false	"Filter by user"
//	@Param		status	query		string	false	"Filter by status"
//	@Param		limit	query		int		false	"Page size (max 200)"
//	@Param		offset	query		int		false	"Page offset"
//	@Success	200		{object}	httpx.Page[BorrowResponse]
//	@Router		/admin/borrows [get]
func (h *BorrowHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := optionalUUID(w, r, "user_id")
	if !ok {
		return
	}
	h.list(w, r, userID)
}

func (h *BorrowHandler) list(w http.ResponseWriter, r *http.Request, userID *uuid.UUID) {
	opts, page, ok := queryOpts(w, r)
	if !ok {
		return
	}
	f := repositories.BorrowFilter{QueryOpts: opts, UserID: userID}
	if s := r.URL.Query().Get("status"); s != "" {
		st, err := models.ParseStatus(s)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.Status = &st
	}
	borrows, total, err := h.svc.Queries.ListBorrows(r.Context(), f)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.WritePage(w, mapAll(borrows, toBorrowResponse), total, page)
}

// Approve moves a Pending borrow to Borrowed.
//
//	@Summary	Approve borrow
//	@Tags		admin
//	@Produce	json
//	@Param		id	path		string	true	"Borrow ID"
//	@Success	200	{object}	BorrowResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse	"Not enough stock or not Pending"
//	@Router		/admin/borrows/{id}/approve [post]
func (h *BorrowHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.svc.Lending.Approve)
}

// Reject closes a Pending borrow.
//
//	@Summary	Reject borrow
//	@Tags		admin
//	@Produce	json
//	@Param		id	path		string	true	"Borrow ID"
//	@Success	200	{object}	BorrowResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse
//	@Router		/admin/borrows/{id}/reject [post]
func (h *BorrowHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.svc.Lending.Reject)
}

// Return closes a Borrowed or Overdue borrow and settles its penalty.
//
//	@Summary	Return borrow
//	@Tags		admin
//	@Produce	json
//	@Param		id	path		string	true	"Borrow ID"
//	@Success	200	{object}	BorrowResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse	"Not active"
//	@Router		/admin/borrows/{id}/return [post]
func (h *BorrowHandler) Return(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.svc.Lending.Return)
}

// CancelOverdue reverts an Overdue borrow to Returned and deletes its penalty.
//
//	@Summary	Cancel overdue
//	@Tags		admin
//	@Produce	json
//	@Param		id	path		string	true	"Borrow ID"
//	@Success	200	{object}	BorrowResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse	"Not overdue"
//	@Router		/admin/borrows/{id}/cancel-overdue [post]
func (h *BorrowHandler) CancelOverdue(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, h.svc.Lending.CancelOverdue)
}

// UpdateStatus applies a generic administrative status change.
//
//	@Summary	Update borrow status
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string			true	"Borrow ID"
//	@Param		request	body		StatusRequest	true	"Target status"
//	@Success	200		{object}	BorrowResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse	"Invalid transition or not enough stock"
//	@Router		/admin/borrows/{id}/status [put]
func (h *BorrowHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[StatusRequest](w, r)
	if !ok {
		return
	}
	b, err := h.svc.Lending.TransitionStatus(r.Context(), id, models.Status(req.Status))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toBorrowResponse(b))
}

// Sweep runs the overdue sweep now, for everyone or for ?user_id=.
//
//	@Summary	Run overdue sweep
//	@Tags		admin
//	@Produce	json
//	@Param		user_id	query		string	false	"Only this user's borrows"
//	@Success	200		{object}	SweepResponse
//	@Failure	500		{object}	ErrorResponse
//	@Router		/admin/borrows/sweep [post]
func (h *BorrowHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	userID, ok := optionalUUID(w, r, "user_id")
	if !ok {
		return
	}
	n, err := h.svc.Sweeper.Sweep(r.Context(), userID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, SweepResponse{Marked: n})
}

func (h *BorrowHandler) act(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID) (*models.Borrow, error)) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	b, err := fn(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toBorrowResponse(b))
}
