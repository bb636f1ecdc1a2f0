package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/kimhsiao/addressbook/internal/models"
	"github.com/kimhsiao/addressbook/internal/services"
)

// defaultRecentDays is used when GET /api/contacts/recent has no days parameter.
const defaultRecentDays = 7

// ContactHandler handles contact operations.
type ContactHandler struct {
	contacts services.ContactManager
	location *time.Location
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(contacts services.ContactManager) *ContactHandler {
	return &ContactHandler{contacts: contacts, location: time.Local}
}

type contactRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Location  string `json:"location"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

func (req contactRequest) contact() *models.Contact {
	return services.CreateFromFields(req.FirstName, req.LastName, req.Location, req.Phone, req.Email)
}

type deleteRequest struct {
	IDs []int64 `json:"ids"`
}

// ListContacts handles GET /api/contacts.
//
// Optional query parameters: q (search term), filter and value (filter kind
// and argument), sort (field name). Search is applied first, then the filter,
// then the sort.
func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var sortField services.SortField
	if raw := query.Get("sort"); raw != "" {
		field, err := services.ParseSortField(raw)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		sortField = field
	}
	var filterKind services.FilterKind
	if raw := query.Get("filter"); raw != "" {
		kind, err := services.ParseFilterKind(raw)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		filterKind = kind
	}

	contacts, err := h.contacts.ListContacts(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	if term := query.Get("q"); term != "" {
		contacts = services.Search(contacts, term)
	}
	if filterKind != "" {
		contacts = services.Filter(contacts, filterKind, query.Get("value"))
	}
	if sortField != "" {
		contacts = services.Sort(contacts, sortField)
	}
	if contacts == nil {
		contacts = []*models.Contact{}
	}

	respondWithJSON(w, http.StatusOK, contacts)
}

// CreateContact handles POST /api/contacts.
func (h *ContactHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	c := req.contact()
	if _, err := h.contacts.AddContact(r.Context(), c); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, c)
}

// GetContact handles GET /api/contacts/{id}.
func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.contacts.GetContact(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

// UpdateContact handles PUT /api/contacts/{id}.
func (h *ContactHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existing, err := h.contacts.GetContact(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	existing.SetFields(req.contact().Fields())

	if err := h.contacts.UpdateContact(r.Context(), existing); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, existing)
}

// DeleteContact handles DELETE /api/contacts/{id}.
func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary := h.contacts.DeleteContacts(r.Context(), []int64{id})
	if summary.Failed > 0 {
		respondWithJSON(w, http.StatusInternalServerError, summary)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteContacts handles POST /api/contacts/delete with a JSON list of ids.
// Every id is attempted; the response reports per-id failures.
func (h *ContactHandler) DeleteContacts(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		respondWithError(w, http.StatusBadRequest, "ids is required")
		return
	}

	summary := h.contacts.DeleteContacts(r.Context(), req.IDs)
	status := http.StatusOK
	switch {
	case summary.Deleted == 0:
		status = http.StatusInternalServerError
	case summary.Failed > 0:
		status = http.StatusPartialContent
	}
	respondWithJSON(w, status, summary)
}

// DuplicateContact handles POST /api/contacts/{id}/duplicate.
func (h *ContactHandler) DuplicateContact(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.contacts.DuplicateContact(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, c)
}

// RecentContacts handles GET /api/contacts/recent?days=N.
func (h *ContactHandler) RecentContacts(w http.ResponseWriter, r *http.Request) {
	days := defaultRecentDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
		days = n
	}

	contacts, err := h.contacts.RecentlyModified(r.Context(), days)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if contacts == nil {
		contacts = []*models.Contact{}
	}
	respondWithJSON(w, http.StatusOK, contacts)
}

// ContactsInRange handles GET /api/contacts/range?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *ContactHandler) ContactsInRange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start, end, err := services.ParseDateRange(query.Get("start"), query.Get("end"), h.location)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	contacts, err := h.contacts.CreatedBetween(r.Context(), start, end)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if contacts == nil {
		contacts = []*models.Contact{}
	}
	respondWithJSON(w, http.StatusOK, contacts)
}
