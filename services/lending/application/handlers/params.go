package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/lendingdesk/pkg/httpx"
	"github.com/ghuser/lendingdesk/services/lending/domain/repositories"
)

// pathID parses the {id} URL parameter, writing 400 when it is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// queryOpts reads ?limit=&offset= into repository options, writing 400 on
// malformed values.
func queryOpts(w http.ResponseWriter, r *http.Request) (repositories.QueryOpts, httpx.Paging, bool) {
	page, err := httpx.ParsePaging(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, err.Error())
		return repositories.QueryOpts{}, page, false
	}
	return repositories.QueryOpts{Limit: page.Limit, Offset: page.Offset}, page, true
}

// optionalUUID parses an optional UUID query parameter.
func optionalUUID(w http.ResponseWriter, r *http.Request, name string) (*uuid.UUID, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, name+" must be a UUID")
		return nil, false
	}
	return &id, true
}
