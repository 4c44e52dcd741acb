package api

import (
	"net/http"

	"github.com/dgallion1/edufin/internal/facility"
	"github.com/dgallion1/edufin/internal/registry"
	"github.com/dgallion1/edufin/internal/report"
)

const suggestionLimit = 5

func (s *Server) handleRegistryMatch(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		jsonError(w, "name query parameter is required", http.StatusBadRequest)
		return
	}

	idx := s.orchestrator.Index()
	enrollment := idx.Match(name)
	resp := map[string]any{
		"name":       name,
		"identity":   facility.Classify(name),
		"enrollment": enrollment,
		"matched":    enrollment.Valid,
	}
	if !enrollment.Valid {
		suggestions := idx.Suggest(name, suggestionLimit)
		if suggestions == nil {
			suggestions = []string{}
		}
		resp["suggestions"] = suggestions
	}
	writeJSON(w, resp)
}

type areaSummary struct {
	Slug  string                 `json:"slug"`
	Label string                 `json:"label"`
	Rows  int                    `json:"rows"`
	Kinds []registry.KindSummary `json:"kinds"`
}

func (s *Server) handleRegistrySummary(w http.ResponseWriter, r *http.Request) {
	idx := s.orchestrator.Index()
	filter := registry.Filter{Powiat: s.cfg.RegistryPowiat, Gmina: s.cfg.RegistryGmina}
	areas := registry.Areas(idx.Source(), filter)

	if r.URL.Query().Get("format") == "xlsx" {
		f, err := report.RegistryWorkbook(areas)
		if err != nil {
			jsonError(w, "failed to build workbook", http.StatusInternalServerError)
			return
		}
		defer f.Close()
		buf, err := f.WriteToBuffer()
		if err != nil {
			jsonError(w, "failed to write workbook", http.StatusInternalServerError)
			return
		}
		sendFile(w, contentTypeXLSX, "rejestr_podsumowanie.xlsx", buf.Bytes())
		return
	}

	out := make([]areaSummary, len(areas))
	for i, a := range areas {
		out[i] = areaSummary{Slug: a.Slug, Label: a.Label, Rows: len(a.Rows), Kinds: registry.Summarize(a.Rows, a.Label)}
	}
	writeJSON(w, map[string]any{
		"entries": idx.Len(),
		"areas":   out,
	})
}
