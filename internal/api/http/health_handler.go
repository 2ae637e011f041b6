package http

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"frontdesk-rental-backend/internal/logger"
	"frontdesk-rental-backend/internal/repository"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

const readinessTimeout = 5 * time.Second

type HealthHandler struct {
	store   repository.HealthChecker
	started time.Time
}

func NewHealthHandler(store repository.HealthChecker) *HealthHandler {
	return &HealthHandler{store: store, started: time.Now()}
}

// Live handles GET /health.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type hostStats struct {
	Goroutines    int     `json:"goroutines"`
	HeapAllocMB   float64 `json:"heapAllocMb"`
	MemoryUsedPct float64 `json:"memoryUsedPercent,omitempty"`
	DiskUsedPct   float64 `json:"diskUsedPercent,omitempty"`
	UptimeSeconds int64   `json:"uptimeSeconds"`
}

type readiness struct {
	Status string    `json:"status"`
	Sheets string    `json:"sheets"`
	Error  string    `json:"error,omitempty"`
	Host   hostStats `json:"host"`
}

// Ready handles GET /health/ready: 503 when the spreadsheet cannot be reached.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	resp := readiness{Status: "ready", Sheets: "ok", Host: h.hostStats()}
	status := http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		logger.WarnContext(r.Context(), "Readiness check failed", "error", err)
		resp.Status = "unavailable"
		resp.Sheets = "unreachable"
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (h *HealthHandler) hostStats() hostStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	stats := hostStats{
		Goroutines:    runtime.NumGoroutine(),
		HeapAllocMB:   float64(ms.HeapAlloc) / (1 << 20),
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemoryUsedPct = vm.UsedPercent
	}
	if du, err := disk.Usage("/"); err == nil {
		stats.DiskUsedPct = du.UsedPercent
	}
	return stats
}
