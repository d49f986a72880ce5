package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/shirabe/internal/models"
	"github.com/hyperjump/shirabe/internal/scan"
	"github.com/hyperjump/shirabe/internal/storage"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.storage.CountReports(r.Context())
	if err != nil {
		s.logger.Error("status: count reports failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	dbBytes, err := storage.DatabaseSizeBytes(s.config.Storage.DatabasePath)
	if err != nil {
		s.logger.Warn("status: database size failed", zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, &models.StatusResponse{
		Reports:       count,
		DatabaseBytes: dbBytes,
		Version:       s.version,
	})
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var input models.ReportInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("create report request", zap.String("id", input.ID))
	report, err := s.ingester.AddReport(r.Context(), &input)
	if err != nil {
		if errors.Is(err, models.ErrInvalidMetadata) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("create report failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, report)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", defaultListLimit)
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	reports, err := s.storage.ListReports(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list reports failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := s.storage.CountReports(r.Context())
	if err != nil {
		s.logger.Error("count reports failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if reports == nil {
		reports = []*models.Report{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"total":   total,
		"offset":  offset,
		"limit":   limit,
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	report, err := s.storage.GetReport(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "report not found")
			return
		}
		s.logger.Error("get report failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete report request", zap.String("id", id))
	if err := s.storage.DeleteReport(r.Context(), id); err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type matchRequest struct {
	Query *models.QuerySpec `json:"query"`
}

func (s *Server) handleMatchReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	spec, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}
	s.logger.Debug("match request", zap.String("id", id), zap.String("kind", spec.Kind))
	resp, err := s.engine.MatchReport(r.Context(), id, spec)
	if err != nil {
		s.respondMatchError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMatchAllReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	spec, ok := s.decodeQuery(w, r)
	if !ok {
		return
	}
	s.logger.Debug("match-all request", zap.String("id", id), zap.String("kind", spec.Kind))
	resp, err := s.engine.MatchAllReport(r.Context(), id, spec)
	if err != nil {
		s.respondMatchError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type scanRequest struct {
	Query *models.QuerySpec `json:"query"`
	All   bool              `json:"all"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == nil {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	if err := req.Query.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("scan request", zap.String("kind", req.Query.Kind), zap.Bool("all", req.All))
	resp, err := s.engine.Scan(r.Context(), req.Query, req.All)
	if err != nil {
		if errors.Is(err, scan.ErrInvalidQuery) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("scan failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type ingestRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "path not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Debug("ingest request", zap.String("path", abs), zap.Bool("dir", info.IsDir()))
	exts := s.config.Ingest.Extensions
	if info.IsDir() {
		n, err := s.ingester.IngestDirectory(r.Context(), abs, exts)
		if err != nil {
			s.logger.Error("ingest directory failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.respondJSON(w, http.StatusOK, &models.IngestResponse{Path: abs, Ingested: n})
		return
	}
	if err := s.ingester.IngestFile(r.Context(), abs, exts); err != nil {
		s.logger.Error("ingest file failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, &models.IngestResponse{Path: abs, Ingested: 1})
}

// decodeQuery parses and validates the query body shared by the match
// endpoints. It writes the error response itself and reports success
// through ok.
func (s *Server) decodeQuery(w http.ResponseWriter, r *http.Request) (*models.QuerySpec, bool) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if req.Query == nil {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return nil, false
	}
	if err := req.Query.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return req.Query, true
}

func (s *Server) respondMatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "report not found")
	case errors.Is(err, scan.ErrInvalidQuery):
		s.respondError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("match failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
