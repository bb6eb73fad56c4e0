package http

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"housesplit/internal/core"
	applog "housesplit/internal/log"
	"housesplit/internal/report"
)

type reportFormat int

const (
	formatText reportFormat = iota
	formatCSV
)

// pageData feeds templates/index.html.
type pageData struct {
	Blocks  core.Blocks
	Warning string
	Error   string
	Notice  string
	Result  *report.Summary
	Report  string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	loaded := s.svc.Load(r.Context())
	s.render(w, r, http.StatusOK, pageData{Blocks: loaded.Blocks, Warning: loaded.Warning})
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())

	blocks, err := parseBlocks(w, r)
	if err != nil {
		logger.WarnContext(r.Context(), "Invalid calculate request", applog.FieldError, err)
		s.badRequest(w, r, blocks)
		return
	}

	res, err := s.svc.Calculate(r.Context(), blocks)
	if err != nil {
		status, msg := errorStatus(err)
		if wantsJSON(r) {
			ErrorJSON(status, msg).Write(w)
			return
		}
		s.render(w, r, status, pageData{Blocks: blocks, Error: msg})
		return
	}

	summary := report.NewSummary(res)
	if wantsJSON(r) {
		NewResponse().JSON(summary).Write(w)
		return
	}
	s.render(w, r, http.StatusOK, pageData{Blocks: blocks, Result: &summary, Report: report.Text(res)})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	blocks, err := parseBlocks(w, r)
	if err != nil {
		s.badRequest(w, r, blocks)
		return
	}

	ref, err := s.svc.Save(r.Context(), blocks)
	if err != nil {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Save failed", err, applog.ComponentHTTP, applog.OpSave, applog.NewFields())
		msg := "Could not save data: " + err.Error()
		if wantsJSON(r) {
			ErrorJSON(http.StatusInternalServerError, msg).Write(w)
			return
		}
		s.render(w, r, http.StatusInternalServerError, pageData{Blocks: blocks, Error: msg})
		return
	}

	if wantsJSON(r) {
		NewResponse().JSON(map[string]string{"ref": ref}).Write(w)
		return
	}
	s.render(w, r, http.StatusOK, pageData{Blocks: blocks, Notice: "Data saved!"})
}

// handleReport renders a download. GET uses the saved blocks, POST the submitted ones.
// A GET whose store cannot be read answers 503 instead of reporting the sample data.
func (s *Server) handleReport(format reportFormat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var blocks core.Blocks
		if r.Method == http.MethodPost {
			b, err := parseBlocks(w, r)
			if err != nil {
				NewResponse().Status(http.StatusBadRequest).Text("Invalid request body").Write(w)
				return
			}
			blocks = b
		} else {
			loaded := s.svc.Load(r.Context())
			if loaded.Warning != "" {
				NewResponse().Status(http.StatusServiceUnavailable).Text(loaded.Warning).Write(w)
				return
			}
			blocks = loaded.Blocks
		}

		res, err := s.svc.Calculate(r.Context(), blocks)
		if err != nil {
			status, msg := errorStatus(err)
			NewResponse().Status(status).Text(msg).Write(w)
			return
		}

		switch format {
		case formatCSV:
			out, err := report.CSV(res)
			if err != nil {
				applog.FromContext(r.Context()).ErrorContext(r.Context(), "CSV report failed", applog.FieldError, err)
				NewResponse().Status(http.StatusInternalServerError).Text("Could not render report").Write(w)
				return
			}
			NewResponse().Attachment("expense_report.csv", "text/csv; charset=utf-8", out).Write(w)
		default:
			NewResponse().Attachment("expense_report.txt", "text/plain; charset=utf-8", report.Text(res)).Write(w)
		}
	}
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, blocks core.Blocks) {
	const msg = "Invalid request body"
	if wantsJSON(r) {
		ErrorJSON(http.StatusBadRequest, msg).Write(w)
		return
	}
	s.render(w, r, http.StatusBadRequest, pageData{Blocks: blocks, Error: msg})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template render failed",
			applog.FieldOperation, applog.OpRender, applog.FieldError, err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	total, avgMicros := s.tracer.GetMetrics()
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"requests": map[string]int64{
			"total":           total,
			"avg_duration_us": avgMicros,
			"rate_limited":    s.limiter.Rejected(),
			"tracked_clients": int64(s.limiter.ActiveClients()),
		},
	}).Write(w)
}

// handleReady checks templates and the block store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]string{"templates": "ok", "store": "ok"}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	}
	if err := s.svc.Ping(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	}

	NewResponse().Status(httpStatus).JSON(map[string]any{
		"status": status,
		"checks": checks,
	}).Write(w)
}
