// Package http provides http transport for ingestion control and audit
package http

import (
	stdhttp "net/http"

	"micdrop/internal/modkit/httpkit"
	"micdrop/internal/services/ingest/domain"
)

// Register mounts ingest endpoints on the given router
func Register(r httpkit.Router, runner domain.RunnerPort, logs domain.LogPort) {
	h := &handlers{runner: runner, logs: logs}
	httpkit.PostJSON[domain.LogQuery](r, "/ingest/log/query", h.logQuery)
	httpkit.Post(r, "/ingest/run", h.run)
}

type handlers struct {
	runner domain.RunnerPort
	logs   domain.LogPort
}

func (h *handlers) logQuery(r *stdhttp.Request, in domain.LogQuery) (any, error) {
	return h.logs.Log(r.Context(), in)
}

func (h *handlers) run(r *stdhttp.Request) (any, error) {
	return h.runner.RunNow(r.Context())
}
