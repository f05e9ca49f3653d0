package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"ecochain-be/internal/metrics"
)

func (a *api) adminDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Dashboard.Admin(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *api) collectorDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Dashboard.Collector(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *api) userDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Dashboard.User(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *api) paymentsReport(w http.ResponseWriter, r *http.Request) {
	// buffer so a failed build can still answer with a JSON error
	var buf bytes.Buffer
	if err := a.Reports.WritePayments(r.Context(), &buf); err != nil {
		writeError(w, r, err)
		return
	}

	filename := "collector-payments-" + time.Now().UTC().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

type healthResponse struct {
	Status    string           `json:"status"`
	Database  string           `json:"database"`
	WSClients int              `json:"wsClients"`
	Counters  metrics.Snapshot `json:"counters"`
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	res := healthResponse{Status: "ok", Database: "ok", Counters: metrics.Read()}
	if a.Hub != nil {
		res.WSClients = a.Hub.ClientCount()
	}

	code := http.StatusOK
	if a.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.PingContext(ctx); err != nil {
			res.Status = "degraded"
			res.Database = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, res)
}
