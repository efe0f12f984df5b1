package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/counsel/internal/pipeline"
	"github.com/JaimeStill/counsel/pkg/handlers"
	"github.com/JaimeStill/counsel/pkg/ledger"
	"github.com/JaimeStill/counsel/pkg/routes"
)

type handler struct {
	pipeline Pipeline
	ledger   ledger.Ledger
	logger   *slog.Logger
}

func newHandler(p Pipeline, led ledger.Ledger, logger *slog.Logger) *handler {
	return &handler{
		pipeline: p,
		ledger:   led,
		logger:   logger.With("handler", "pipeline"),
	}
}

func (h *handler) routes() []routes.Group {
	return []routes.Group{
		{
			Prefix: "",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "/status", Handler: h.status},
				{Method: "POST", Pattern: "/process", Handler: h.process},
				{Method: "POST", Pattern: "/sweep", Handler: h.sweep},
			},
		},
		{
			Prefix: "/contracts",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: h.contracts},
			},
		},
		{
			Prefix: "/ledger",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "/{key...}", Handler: h.entry},
			},
		},
	}
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.pipeline.Status())
}

// Triggered runs are detached from the request context so a dropped client does not
// abandon a contract midway; the response still waits for the run to finish.
func (h *handler) process(w http.ResponseWriter, r *http.Request) {
	report, err := h.pipeline.ProcessNewContracts(context.WithoutCancel(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, statusOf(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, report)
}

func (h *handler) sweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.pipeline.Sweep(context.WithoutCancel(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, statusOf(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, report)
}

func (h *handler) contracts(w http.ResponseWriter, r *http.Request) {
	states, err := h.pipeline.Contracts(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, statusOf(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, states)
}

func (h *handler) entry(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	entry, found, err := h.ledger.Lookup(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, statusOf(err), err)
		return
	}
	if !found {
		handlers.RespondError(w, h.logger, http.StatusNotFound, fmt.Errorf("no ledger entry for %q", key))
		return
	}
	handlers.RespondJSON(w, http.StatusOK, entry)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrNotInitialized):
		return http.StatusServiceUnavailable
	case errors.Is(err, ledger.ErrEmptyKey):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
