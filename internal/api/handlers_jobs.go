package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/dgallion1/edufin/internal/ledger"
	"github.com/dgallion1/edufin/internal/pipeline"
	"github.com/dgallion1/edufin/internal/report"
	"github.com/go-chi/chi/v5"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

type facilityError struct {
	Facility string `json:"facility"`
	File     string `json:"file"`
	Error    string `json:"error"`
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	resp := map[string]any{
		"job_id":     snap.ID,
		"year":       snap.Year,
		"status":     snap.Status,
		"phase":      snap.Phase,
		"files":      snap.Files,
		"progress":   snap.Progress,
		"created_at": snap.CreatedAt,
		"updated_at": snap.UpdatedAt,
	}
	if res := job.Result(); res != nil {
		errs := make([]facilityError, 0, len(res.Errors))
		for _, fe := range res.Errors {
			errs = append(errs, facilityError{Facility: fe.Facility, File: fe.File, Error: fe.Err.Error()})
		}
		resp["facility_errors"] = errs
		resp["facilities"] = len(res.Facilities)
	}
	writeJSON(w, resp)
}

// finishedResult resolves the job of the request and its result, writing
// the error response itself when there is none yet.
func (s *Server) finishedResult(w http.ResponseWriter, r *http.Request) (pipeline.JobSnapshot, *pipeline.Result, bool) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return pipeline.JobSnapshot{}, nil, false
	}
	snap := job.Snapshot()
	if !snap.Finished() {
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
		return snap, nil, false
	}
	res := job.Result()
	if res == nil {
		jsonError(w, "job has no result", http.StatusConflict)
		return snap, nil, false
	}
	return snap, res, true
}

func (s *Server) handleJobSummary(w http.ResponseWriter, r *http.Request) {
	snap, res, ok := s.finishedResult(w, r)
	if !ok {
		return
	}
	summaries := make([]ledger.Summary, len(res.Facilities))
	for i, fr := range res.Facilities {
		summaries[i] = fr.Summary
	}
	writeJSON(w, map[string]any{
		"job_id":     snap.ID,
		"year":       snap.Year,
		"fields":     s.orchestrator.Catalog().Fields(),
		"facilities": summaries,
	})
}

type facilityIssues struct {
	Facility string   `json:"facility"`
	Issues   []string `json:"issues"`
}

func (s *Server) handleJobIssues(w http.ResponseWriter, r *http.Request) {
	snap, res, ok := s.finishedResult(w, r)
	if !ok {
		return
	}

	switch r.URL.Query().Get("format") {
	case "md", "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(report.IssuesMarkdown(snap.Year, res.Facilities)))
	case "html":
		body, err := report.IssuesHTML(snap.Year, res.Facilities)
		if err != nil {
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(body)
	case "", "json":
		out := make([]facilityIssues, len(res.Facilities))
		for i, fr := range res.Facilities {
			out[i] = facilityIssues{Facility: fr.Summary.Facility, Issues: fr.Issues}
		}
		writeJSON(w, map[string]any{"job_id": snap.ID, "facilities": out})
	default:
		jsonError(w, "format must be json, md or html", http.StatusBadRequest)
	}
}

func (s *Server) handleJobWorkbook(w http.ResponseWriter, r *http.Request) {
	snap, res, ok := s.finishedResult(w, r)
	if !ok {
		return
	}
	f, err := report.Workbook(res.Facilities, s.orchestrator.Catalog().Fields())
	if err != nil {
		s.log.Error("build workbook", "job_id", snap.ID, "error", err)
		jsonError(w, "failed to build workbook", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		jsonError(w, "failed to write workbook", http.StatusInternalServerError)
		return
	}
	sendFile(w, contentTypeXLSX, fmt.Sprintf("porownanie_placowek_%s.xlsx", snap.Year), buf.Bytes())
}

func (s *Server) handleJobIssuesDOCX(w http.ResponseWriter, r *http.Request) {
	snap, res, ok := s.finishedResult(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteIssuesDOCX(&buf, snap.Year, res.Facilities); err != nil {
		s.log.Error("build issues document", "job_id", snap.ID, "error", err)
		jsonError(w, "failed to build document", http.StatusInternalServerError)
		return
	}
	sendFile(w, contentTypeDOCX, fmt.Sprintf("uwagi_%s.docx", snap.Year), buf.Bytes())
}

func sendFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	w.Write(data)
}
