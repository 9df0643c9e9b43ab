package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/g1000/portal/internal/repository"
	"github.com/g1000/portal/internal/service"
)

// OpportunityHandler handles the public opportunity listing.
type OpportunityHandler struct {
	projects *service.ProjectService
}

// NewOpportunityHandler creates a new OpportunityHandler.
func NewOpportunityHandler(projects *service.ProjectService) *OpportunityHandler {
	return &OpportunityHandler{projects: projects}
}

// List retrieves open opportunities with filters and pagination. Multi-value
// filters (industry, skills) accept comma-separated values and match on
// intersection.
func (h *OpportunityHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.OpportunityFilter{
		Search:           q.Get("search"),
		Industries:       splitCSV(q.Get("industry")),
		Skills:           splitCSV(q.Get("skills")),
		CompensationType: q.Get("compensationType"),
		Page:             atoiDefault(q.Get("page"), 1),
		PerPage:          atoiDefault(q.Get("perPage"), 20),
	}
	if d := atoiDefault(q.Get("duration"), 0); d > 0 {
		filter.MaxDurationWeeks = d
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 20
	}

	opportunities, total, err := h.projects.ListOpportunities(r.Context(), filter)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteList(w, http.StatusOK, opportunities, PaginationMeta{
		Page:    filter.Page,
		PerPage: filter.PerPage,
		Total:   total,
		HasNext: filter.Page*filter.PerPage < total,
	})
}

// Get retrieves the public detail view of one opportunity.
func (h *OpportunityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "projectID")
	if err != nil {
		WriteError(w, err)
		return
	}

	opportunity, err := h.projects.GetOpportunity(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, opportunity)
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
