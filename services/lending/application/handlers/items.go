package handlers

import (
	"net/http"

	"github.com/ghuser/lendingdesk/pkg/errhttp"
	"github.com/ghuser/lendingdesk/pkg/httpx"
	pkgvalidator "github.com/ghuser/lendingdesk/pkg/validator"
	appsvcs "github.com/ghuser/lendingdesk/services/lending/application/services"
	"github.com/ghuser/lendingdesk/services/lending/domain/models"
	"github.com/ghuser/lendingdesk/services/lending/domain/repositories"
)

// ItemRequest is the request body for creating or replacing an item.
type ItemRequest struct {
	SerialNumber string `json:"serial_number" validate:"required,max=50,serial" example:"DRL-0042"`
	Name         string `json:"name"          validate:"required,max=100" example:"Cordless Drill"`
	ItemType     string `json:"item_type"     validate:"required,max=50"  example:"Tool"`
	Condition    string `json:"condition"     validate:"omitempty,oneof=Available Borrowed 'Under Maintenance' Lost" example:"Available"`
	Stock        int    `json:"stock"         validate:"gte=0"            example:"3"`
} // @name ItemRequest

// ConditionRequest is the request body for PUT /admin/items/{id}/condition.
type ConditionRequest struct {
	Condition string `json:"condition" validate:"required,oneof=Available Borrowed 'Under Maintenance' Lost" example:"Under Maintenance"`
} // @name ConditionRequest

// ItemHandler serves the item catalogue endpoints.
type ItemHandler struct {
	svc *appsvcs.Services
}

// NewItemHandler returns an ItemHandler backed by the given services.
func NewItemHandler(svc *appsvcs.Services) *ItemHandler {
	return &ItemHandler{svc: svc}
}

// List returns items. Non-admin browsing passes ?in_stock=true.
//
//	@Summary	List items
//	@Tags		items
//	@Produce	json
//	@Param		in_stock	query		bool	false	"Only items with stock > 0"
//	@Param		limit		query		int		false	"Page size (max 200)"
//	@Param		offset		query		int		false	"Page offset"
//	@Success	200			{object}	httpx.Page[ItemResponse]
//	@Failure	400			{object}	ErrorResponse
//	@Router		/items [get]
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, page, ok := queryOpts(w, r)
	if !ok {
		return
	}
	f := repositories.ItemFilter{QueryOpts: opts, InStockOnly: r.URL.Query().Get("in_stock") == "true"}
	items, total, err := h.svc.Items.List(r.Context(), f)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.WritePage(w, mapAll(items, toItemResponse), total, page)
}

// Get returns one item, served from the Redis cache when warm.
//
//	@Summary	Get item
//	@Tags		items
//	@Produce	json
//	@Param		id	path		string	true	"Item ID"
//	@Success	200	{object}	ItemResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/{id} [get]
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := h.svc.Items.GetByID(r.Context(), id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

// Create adds an item to the catalogue.
//
//	@Summary	Create item
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		request	body		ItemRequest	true	"Item"
//	@Success	201		{object}	ItemResponse
//	@Failure	409		{object}	ErrorResponse	"Serial number already in use"
//	@Failure	422		{object}	ErrorResponse
//	@Router		/admin/items [post]
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[ItemRequest](w, r)
	if !ok {
		return
	}
	item, err := h.svc.Items.Create(r.Context(), req.input())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toItemResponse(item))
}

// Update replaces an item's editable fields.
//
//	@Summary	Update item
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string		true	"Item ID"
//	@Param		request	body		ItemRequest	true	"Item"
//	@Success	200		{object}	ItemResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/admin/items/{id} [put]
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[ItemRequest](w, r)
	if !ok {
		return
	}
	item, err := h.svc.Items.Update(r.Context(), id, req.input())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

// Delete removes an item that has no open borrows.
//
//	@Summary	Delete item
//	@Tags		admin
//	@Param		id	path	string	true	"Item ID"
//	@Success	204
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse	"Item has open borrows"
//	@Router		/admin/items/{id} [delete]
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Items.Delete(r.Context(), id); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.NoContent(w)
}

// SetCondition overrides an item's condition without touching stock.
//
//	@Summary	Set item condition
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Item ID"
//	@Param		request	body		ConditionRequest	true	"Condition"
//	@Success	200		{object}	ItemResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/admin/items/{id}/condition [put]
func (h *ItemHandler) SetCondition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	req, ok := pkgvalidator.ValidateRequest[ConditionRequest](w, r)
	if !ok {
		return
	}
	item, err := h.svc.Lending.SetItemCondition(r.Context(), id, models.Condition(req.Condition))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}

func (r *ItemRequest) input() appsvcs.ItemInput {
	return appsvcs.ItemInput{
		SerialNumber: r.SerialNumber,
		Name:         r.Name,
		ItemType:     r.ItemType,
		Condition:    r.Condition,
		Stock:        r.Stock,
	}
}
