package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"surveygraph/internal/service"
)

// ReportHandler handles report endpoints
type ReportHandler struct {
	reportSvc *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportSvc *service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// GetBySession handles GET /v1/reports/{sessionId}
func (h *ReportHandler) GetBySession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	report, err := h.reportSvc.GetBySession(r.Context(), sessionID)
	if errors.Is(err, service.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetCSV handles GET /v1/reports/{sessionId}/csv
func (h *ReportHandler) GetCSV(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	report, err := h.reportSvc.GetBySession(r.Context(), sessionID)
	if errors.Is(err, service.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load report")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="report-`+sessionID+`.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(report.CSV))
}

// ListBySurvey handles GET /v1/surveys/{surveyId}/reports
func (h *ReportHandler) ListBySurvey(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]

	reports, err := h.reportSvc.ListBySurvey(r.Context(), surveyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	writeJSON(w, http.StatusOK, reports)
}
