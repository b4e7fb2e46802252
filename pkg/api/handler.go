// CLAUDE:SUMMARY HTTP router for the churn dashboard: upload, snapshot, records, options, table, journey and health routes.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hazyhaar/churn-insights/pkg/dates"
	"github.com/hazyhaar/churn-insights/pkg/filter"
	"github.com/hazyhaar/churn-insights/pkg/ingest"
	"github.com/hazyhaar/churn-insights/pkg/kit"
	"github.com/hazyhaar/churn-insights/pkg/session"
)

const defaultMaxUpload = 32 << 20

// NewRouter returns an http.Handler with all dashboard API routes.
func NewRouter(sess *session.Session, cfg Config) http.Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUpload
	}
	mux := http.NewServeMux()
	h := &handler{
		eps:       newEndpoints(sess, cfg),
		sess:      sess,
		maxUpload: cfg.MaxUploadBytes,
	}

	mux.HandleFunc("GET /v1/upload", methodNotAllowed)
	mux.HandleFunc("POST /v1/upload", h.handleUpload)
	mux.HandleFunc("GET /v1/snapshot", h.handleSnapshot)
	mux.HandleFunc("GET /v1/records", h.handleRecords)
	mux.HandleFunc("GET /v1/options", h.handleOptions)
	mux.HandleFunc("GET /v1/table", h.handleTable)
	mux.HandleFunc("GET /v1/members/{id}/journey", h.handleJourney)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return cors(mux)
}

type handler struct {
	eps       *endpoints
	sess      *session.Session
	maxUpload int64
}

// --- upload ---

func (h *handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	q := r.URL.Query()
	req := &uploadReq{
		URL: q.Get("url"),
		Opts: ingest.Options{
			Format:    q.Get("format"),
			Delimiter: q.Get("delimiter"),
			Encoding:  q.Get("encoding"),
			Source:    q.Get("name"),
		},
	}

	if req.URL == "" {
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "multipart/form-data" {
			file, header, err := r.FormFile("file")
			if err != nil {
				writeError(w, http.StatusBadRequest, "multipart upload needs a \"file\" part")
				return
			}
			defer file.Close()
			req.Body = file
			if req.Opts.Source == "" {
				req.Opts.Source = header.Filename
			}
		} else {
			req.Body = r.Body
		}
	}

	resp, err := h.eps.upload(kit.WithTransport(r.Context(), "http"), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- views ---

func (h *handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.serve(w, r, h.eps.snapshot, &criteriaReq{Criteria: c})
}

func (h *handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err1 := intParam(r, "offset")
	limit, err2 := intParam(r, "limit")
	if err := errors.Join(err1, err2); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.serve(w, r, h.eps.records, &recordsReq{Criteria: c, Offset: offset, Limit: limit})
}

func (h *handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.eps.options, nil)
}

func (h *handler) handleTable(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.serve(w, r, h.eps.table, &tableReq{Criteria: c, GroupBy: r.URL.Query().Get("group_by")})
}

func (h *handler) handleJourney(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, h.eps.journey, &journeyReq{MemberID: r.PathValue("id")})
}

func (h *handler) serve(w http.ResponseWriter, r *http.Request, ep kit.Endpoint, req any) {
	resp, err := ep(kit.WithTransport(r.Context(), "http"), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status   string    `json:"status"`
	Dataset  string    `json:"dataset,omitempty"`
	Source   string    `json:"source,omitempty"`
	Records  int       `json:"records"`
	LoadedAt time.Time `json:"loaded_at,omitzero"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if ds, err := h.sess.Current(); err == nil {
		resp.Dataset = ds.ID
		resp.Source = ds.Source
		resp.Records = len(ds.Records)
		resp.LoadedAt = ds.LoadedAt
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- helpers ---

// parseCriteria reads status, location and membership as comma lists,
// from/to as dates, q as free text, and preset=lapsed.
func parseCriteria(r *http.Request) (filter.Criteria, error) {
	return buildCriteria(r.URL.Query().Get)
}

// buildCriteria decodes filter parameters from any string lookup. An
// explicit status list overrides the preset's.
func buildCriteria(get func(string) string) (filter.Criteria, error) {
	var c filter.Criteria
	switch p := get("preset"); p {
	case "":
	case "lapsed":
		c = filter.LapsedOnly()
	default:
		return c, fmt.Errorf("unknown preset %q", p)
	}
	if v := splitList(get("status")); len(v) > 0 {
		c.Statuses = v
	}
	c.Locations = splitList(get("location"))
	c.Memberships = splitList(get("membership"))
	c.Query = strings.TrimSpace(get("q"))

	for _, p := range []struct {
		name string
		dst  *time.Time
	}{{"from", &c.From}, {"to", &c.To}} {
		v := get(p.name)
		if v == "" {
			continue
		}
		t, ok := dates.Parse(v)
		if !ok {
			return c, fmt.Errorf("invalid %s date %q", p.name, v)
		}
		*p.dst = t
	}
	if !c.From.IsZero() && !c.To.IsZero() && c.To.Before(c.From) {
		return c, fmt.Errorf("date range ends before it starts")
	}
	return c, nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return n, nil
}

func statusFor(err error) int {
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errURLDisabled):
		return http.StatusForbidden
	case errors.Is(err, session.ErrNoDataset), errors.Is(err, session.ErrUnknownMember):
		return http.StatusNotFound
	case errors.Is(err, ingest.ErrMalformed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
