package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/mux"
	"github.com/richard-senior/refstats/internal/logger"
	"github.com/richard-senior/refstats/pkg/refstats"
	"github.com/richard-senior/refstats/pkg/render"
	"github.com/richard-senior/refstats/pkg/service"
)

// Handler serves the referee dashboard over HTTP
type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", h.handleIndex).Methods("GET")
	r.HandleFunc("/api/report", h.handleReport).Methods("GET")
	r.HandleFunc("/api/reload", h.handleReload).Methods("POST")
	r.HandleFunc("/charts/{name}.svg", h.handleChart).Methods("GET")
	return r
}

// queryFromRequest reads team plus repeatable season and referee params
func queryFromRequest(r *http.Request) service.Query {
	v := r.URL.Query()
	q := service.Query{
		Team:     v.Get("team"),
		Seasons:  v["season"],
		Referees: v["referee"],
	}
	// a submitted form with nothing selected in a list selects nothing
	if v.Has("filtered") {
		if q.Seasons == nil {
			q.Seasons = []string{}
		}
		if q.Referees == nil {
			q.Referees = []string{}
		}
	}
	return q
}

// statusFor maps pipeline errors onto HTTP status codes
func statusFor(err error) int {
	if errors.Is(err, refstats.ErrMissingColumns) || errors.Is(err, refstats.ErrInvalidRecord) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) (*refstats.Report, bool) {
	rep, err := h.svc.Report(queryFromRequest(r))
	if err != nil {
		logger.Error("Report failed:", err)
		http.Error(w, err.Error(), statusFor(err))
		return nil, false
	}
	return rep, true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response:", err)
	}
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.report(w, r)
	if !ok {
		return
	}
	writeJSON(w, rep)
}

func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Reload()
	if err != nil {
		logger.Error("Reload failed:", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, map[string]any{
		"status":  "success",
		"matches": t.Len(),
	})
}

func (h *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !slices.Contains(render.ChartNames, name) {
		http.Error(w, "Unknown chart: "+name, http.StatusNotFound)
		return
	}
	rep, ok := h.report(w, r)
	if !ok {
		return
	}
	data, err := render.Chart(name, rep, h.svc.ChartOptions())
	if err != nil {
		logger.Error("Chart failed:", name, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(data)
}

type option struct {
	Value    string
	Selected bool
}

type chartLink struct {
	Name string
	URL  string
}

type pageData struct {
	Team     string
	Empty    bool
	Message  string
	Matches  int
	Seasons  []option
	Referees []option
	Charts   []chartLink
	Summary  template.HTML
}

func options(all, selected []string) []option {
	ret := make([]option, 0, len(all))
	for _, v := range all {
		ret = append(ret, option{Value: v, Selected: slices.Contains(selected, v)})
	}
	return ret
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Table()
	if err != nil {
		logger.Error("Failed to load matches:", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	rep, ok := h.report(w, r)
	if !ok {
		return
	}
	summary, err := render.SummaryHTML(rep)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// charts resolve the same query, so an empty selection stays empty
	q := r.URL.Query()
	data := pageData{
		Team:     rep.Team,
		Empty:    rep.Empty,
		Message:  render.NoDataMessage,
		Matches:  len(rep.Matches),
		Seasons:  options(t.Seasons(), rep.Selection.Seasons),
		Referees: options(t.RefereesFor(rep.Team), rep.Selection.Referees),
		Summary:  template.HTML(summary),
	}
	for _, name := range render.ChartNames {
		data.Charts = append(data.Charts, chartLink{Name: name, URL: chartURL(name, q.Encode())})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		logger.Error("Failed to render page:", err)
	}
}

func chartURL(name, query string) string {
	if query == "" {
		return "/charts/" + name + ".svg"
	}
	return "/charts/" + name + ".svg?" + query
}

/**
 * Serve runs the dashboard on addr until ctx is cancelled, then gives
 * outstanding requests up to 30 seconds to finish.
 */
func Serve(ctx context.Context, addr string, svc *service.Service) error {
	server := &http.Server{
		Addr:           addr,
		Handler:        NewHandler(svc).SetupRoutes(),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Highlight("Dashboard listening on", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
