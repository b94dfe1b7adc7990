package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/visitor-leads/internal/export"
	"github.com/sells-group/visitor-leads/internal/model"
	"github.com/sells-group/visitor-leads/internal/store"
	"github.com/sells-group/visitor-leads/pkg/ipgeo"
)

const maxBodyBytes = 1 << 20

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type resolveRequest struct {
	Organization string `json:"organization"`
	IP           string `json:"ip"`
}

type visitorRequest struct {
	IP string `json:"ip"`
	// Organization skips geolocation when set.
	Organization string `json:"organization,omitempty"`
}

type leadList struct {
	Leads []model.Lead `json:"leads"`
	Total int          `json:"total"`
}

// RosterEntry is the public summary of a roster company.
type RosterEntry struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Industry string   `json:"industry"`
	Aliases  []string `json:"aliases"`
	Contacts int      `json:"contacts"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.CountLeads(r.Context())
	if err != nil {
		zap.L().Error("api: health count", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "leads": n})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.pipeline.Resolver().Resolve(req.Organization, req.IP))
}

func (s *Server) handleVisitor(w http.ResponseWriter, r *http.Request) {
	var req visitorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.IP = strings.TrimSpace(req.IP)
	if req.IP == "" {
		writeError(w, http.StatusBadRequest, "ip is required")
		return
	}

	var (
		lead *model.Lead
		err  error
	)
	if req.Organization != "" {
		lead, err = s.pipeline.ProcessVisitor(r.Context(), model.Visitor{IP: req.IP, Organization: req.Organization})
	} else {
		lead, err = s.pipeline.Process(r.Context(), req.IP)
	}
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, ipgeo.ErrNoOrganization):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, ipgeo.ErrLookupFailed):
			status = http.StatusBadRequest
		}
		zap.L().Warn("api: process visitor failed", zap.String("ip", req.IP), zap.Error(err))
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func leadFilter(r *http.Request) (store.LeadFilter, error) {
	q := r.URL.Query()
	f := store.LeadFilter{Category: q.Get("category")}
	if v := q.Get("matched"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, eris.Errorf("invalid matched %q", v)
		}
		f.MatchedOnly = b
	}
	for name, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, eris.Errorf("invalid %s %q", name, v)
		}
		*dst = n
	}
	return f, nil
}

func contactFilter(r *http.Request) export.ContactFilter {
	q := r.URL.Query()
	return export.ContactFilter{
		Name:       q.Get("name"),
		Department: q.Get("department"),
		Seniority:  model.Seniority(q.Get("seniority")),
	}
}

func (s *Server) listLeads(w http.ResponseWriter, r *http.Request) ([]model.Lead, bool) {
	f, err := leadFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	leads, err := s.store.ListLeads(r.Context(), f)
	if err != nil {
		zap.L().Error("api: list leads", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list leads failed")
		return nil, false
	}
	return leads, true
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	leads, ok := s.listLeads(w, r)
	if !ok {
		return
	}
	total, err := s.store.CountLeads(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "count leads failed")
		return
	}
	writeJSON(w, http.StatusOK, leadList{Leads: leads, Total: total})
}

func (s *Server) handleClearLeads(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.ClearLeads(r.Context())
	if err != nil {
		zap.L().Error("api: clear leads", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "clear leads failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) lead(w http.ResponseWriter, r *http.Request) (*model.Lead, bool) {
	ip := chi.URLParam(r, "ip")
	lead, err := s.store.GetLead(r.Context(), ip)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no lead for ip "+ip)
		return nil, false
	}
	if err != nil {
		zap.L().Error("api: get lead", zap.String("ip", ip), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "get lead failed")
		return nil, false
	}
	return lead, true
}

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	if lead, ok := s.lead(w, r); ok {
		writeJSON(w, http.StatusOK, lead)
	}
}

func attachment(w http.ResponseWriter, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
}

func (s *Server) handleContactsCSV(w http.ResponseWriter, r *http.Request) {
	lead, ok := s.lead(w, r)
	if !ok {
		return
	}
	attachment(w, "text/csv", export.FileName("zoominfo_contacts", lead.Result.Company.Name, "csv"))
	if err := export.WriteContactsCSV(w, []model.Lead{*lead}, contactFilter(r)); err != nil {
		zap.L().Error("api: write contacts csv", zap.Error(err))
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	leads, ok := s.listLeads(w, r)
	if !ok {
		return
	}
	attachment(w, xlsxContentType, "visitor_leads.xlsx")
	if err := export.WriteXLSX(w, leads, contactFilter(r)); err != nil {
		zap.L().Error("api: write xlsx", zap.Error(err))
	}
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	leads, ok := s.listLeads(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	if err := export.WriteGeoJSON(w, leads); err != nil {
		zap.L().Error("api: write geojson", zap.Error(err))
	}
}

func (s *Server) handleRoster(w http.ResponseWriter, _ *http.Request) {
	companies := s.pipeline.Resolver().Roster().Companies
	out := make([]RosterEntry, 0, len(companies))
	for _, c := range companies {
		out = append(out, RosterEntry{
			Key:      c.Key,
			Name:     c.Profile.Name,
			Category: c.Category,
			Industry: c.Profile.Industry,
			Aliases:  c.Aliases,
			Contacts: len(c.Contacts),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
