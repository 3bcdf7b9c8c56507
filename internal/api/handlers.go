package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spacesedan/steamnoodles/internal/apperrors"
	"github.com/spacesedan/steamnoodles/internal/feedback"
	"github.com/spacesedan/steamnoodles/internal/ingest"
	"github.com/spacesedan/steamnoodles/internal/models"
)

const codeDuplicate = "DUPLICATE"

type feedbackRequest struct {
	Text string `json:"text"`
}

type feedbackBatchRequest struct {
	Texts []string `json:"texts"`
}

type trendRequest struct {
	Query string `json:"query"`
	Chart string `json:"chart"`
}

type response struct {
	Data  any            `json:"data,omitempty"`
	Error *errorResponse `json:"error,omitempty"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type itemResponse struct {
	Record *models.ReviewRecord `json:"record,omitempty"`
	Error  *errorResponse       `json:"error,omitempty"`
}

type batchResponse struct {
	Items      []itemResponse `json:"items"`
	Stored     int            `json:"stored"`
	Duplicates int            `json:"duplicates"`
	Failed     int            `json:"failed"`
}

// POST /v1/feedback
func (s *Server) processFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	report, err := s.ingester.Ingest(r.Context(), []string{req.Text})
	if err != nil {
		writeError(w, err)
		return
	}

	res := report.Results[0]
	if res.Record == nil {
		writeError(w, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: toItem(res)})
}

// POST /v1/feedback/batch
func (s *Server) processFeedbackBatch(w http.ResponseWriter, r *http.Request) {
	var req feedbackBatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.Texts) == 0 {
		writeError(w, apperrors.InvalidInput("texts must not be empty"))
		return
	}

	report, err := s.ingester.Ingest(r.Context(), req.Texts)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]itemResponse, len(report.Results))
	for i, res := range report.Results {
		items[i] = toItem(res)
	}
	writeJSON(w, http.StatusOK, response{Data: batchResponse{
		Items:      items,
		Stored:     report.Stored,
		Duplicates: report.Duplicates,
		Failed:     report.Failed,
	}})
}

// POST /v1/trends
func (s *Server) trendChart(w http.ResponseWriter, r *http.Request) {
	var req trendRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	kind := models.ChartKind(strings.TrimSpace(req.Chart))
	if kind != "" && !kind.Valid() {
		writeError(w, apperrors.InvalidInput("unknown chart kind %q", req.Chart))
		return
	}

	resp, err := s.trends.HandleQuery(r.Context(), req.Query, s.now(), kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: resp})
}

// GET /v1/trends/summary?q=
func (s *Server) trendSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.trends.Summarize(r.Context(), r.URL.Query().Get("q"), s.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Data: resp})
}

// GET /healthz
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	if s.healthy != nil && !s.healthy.Load() {
		writeJSON(w, http.StatusServiceUnavailable, response{Data: map[string]string{"status": "degraded"}})
		return
	}
	writeJSON(w, http.StatusOK, response{Data: map[string]string{"status": "ok"}})
}

func toItem(res feedback.Result) itemResponse {
	item := itemResponse{Record: res.Record}
	if res.Err != nil {
		item.Error = toErrorResponse(res.Err)
	}
	return item
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.InvalidInput("malformed request body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatus(err)
	if errors.Is(err, ingest.ErrDuplicate) {
		status = http.StatusConflict
	}
	if status >= http.StatusInternalServerError {
		slog.Error("[API] Request failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, response{Error: toErrorResponse(err)})
}

func toErrorResponse(err error) *errorResponse {
	if errors.Is(err, ingest.ErrDuplicate) {
		return &errorResponse{Code: codeDuplicate, Message: err.Error()}
	}

	code := apperrors.Code(err)
	if code == apperrors.CodeInternal {
		return &errorResponse{Code: code, Message: "an internal error occurred"}
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return &errorResponse{Code: appErr.Code, Message: appErr.Message}
	}
	return &errorResponse{Code: code, Message: err.Error()}
}
