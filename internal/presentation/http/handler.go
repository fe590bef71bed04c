package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minishop-storefront/internal/application"
	"github.com/Zhima-Mochi/minishop-storefront/internal/application/aggregation"
	apporder "github.com/Zhima-Mochi/minishop-storefront/internal/application/order"
	apprecon "github.com/Zhima-Mochi/minishop-storefront/internal/application/reconciliation"
	domorder "github.com/Zhima-Mochi/minishop-storefront/internal/domain/order"
	domrecon "github.com/Zhima-Mochi/minishop-storefront/internal/domain/reconciliation"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability"
	"github.com/Zhima-Mochi/minishop-storefront/internal/observability/logctx"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	componentHTTPHandler = "http_server"
	maxBodyBytes         = 1 << 20
	healthCheckTimeout   = 2 * time.Second
)

type (
	PlaceOrder       = application.UseCase[apporder.PlaceOrderInput, *apporder.PlaceOrderResult]
	TransitionStatus = application.UseCase[apporder.TransitionStatusInput, *apporder.TransitionStatusResult]
	AggregateOrders  = application.UseCase[aggregation.AggregateOrdersInput, []aggregation.EnrichedOrderLine]
	OrdersForUser    = application.UseCase[aggregation.OrdersForUserInput, []domorder.Order]
	ListRecords      = application.UseCase[apprecon.ListInput, []*domrecon.Record]
	ResolveRecord    = application.UseCase[apprecon.ResolveInput, *domrecon.Record]
)

// UseCases groups the application entry points the router exposes.
type UseCases struct {
	PlaceOrder       PlaceOrder
	TransitionStatus TransitionStatus
	AggregateOrders  AggregateOrders
	OrdersForUser    OrdersForUser
	ListRecords      ListRecords
	ResolveRecord    ResolveRecord
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	uc      UseCases
	log     observability.Logger
	tel     observability.Observability
	metrics http.Handler
	checks  map[string]HealthCheck
}

type Option func(*Handler)

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(hd *Handler) { hd.metrics = h }
}

// WithHealthCheck adds a named dependency probe to /health.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(hd *Handler) {
		if check != nil {
			hd.checks[name] = check
		}
	}
}

func NewHandler(uc UseCases, logger observability.Logger, tel observability.Observability, opts ...Option) *Handler {
	tel = observability.Resolve(tel)
	if logger == nil {
		logger = tel.Logger()
	}
	h := &Handler{
		uc:     uc,
		log:    logger.With(observability.F("component", componentHTTPHandler)),
		tel:    tel,
		checks: make(map[string]HealthCheck),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router wires Trace → request logger and metrics → access log → handler.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.withTrace)
	r.Use(ObservabilityMiddleware(h.log, h.tel))
	r.Use(h.withAccessLog)

	r.Get("/health", h.handleHealth)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/orders", h.handlePlaceOrder)
		r.Get("/users/{userId}/orders", h.handleOrdersForUser)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/orders", h.handleAggregateOrders)
			r.Patch("/orders/{orderId}/status", h.handleTransitionStatus)
			r.Get("/reconciliations", h.handleListReconciliations)
			r.Post("/reconciliations/{orderId}/resolve", h.handleResolveReconciliation)
		})
	})
	return r
}

type placeOrderRequest struct {
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.uc.PlaceOrder.Execute(r.Context(), apporder.PlaceOrderInput{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeOrderView{
		Order:           newOrderView(res.Order),
		InventoryBefore: res.InventoryBefore,
		InventoryAfter:  res.InventoryAfter,
	})
}

func (h *Handler) handleOrdersForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	orders, err := h.uc.OrdersForUser.Execute(r.Context(), aggregation.OrdersForUserInput{UserID: userID})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]orderView, 0, len(orders))
	for i := range orders {
		out = append(out, newOrderView(&orders[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleAggregateOrders(w http.ResponseWriter, r *http.Request) {
	lines, err := h.uc.AggregateOrders.Execute(r.Context(), aggregation.AggregateOrdersInput{})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]lineView, 0, len(lines))
	for _, l := range lines {
		out = append(out, newLineView(l))
	}
	writeJSON(w, http.StatusOK, out)
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleTransitionStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req transitionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.uc.TransitionStatus.Execute(r.Context(), apporder.TransitionStatusInput{
		OrderID: orderID,
		Status:  req.Status,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, transitionView{
		Order:    newOrderView(res.Order),
		Status:   string(res.Status),
		Terminal: res.Terminal,
	})
}

func (h *Handler) handleListReconciliations(w http.ResponseWriter, r *http.Request) {
	pendingOnly := false
	if raw := r.URL.Query().Get("pending"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.writeError(w, r, application.Validation("http.list_reconciliations", "pending must be a boolean"))
			return
		}
		pendingOnly = v
	}

	records, err := h.uc.ListRecords.Execute(r.Context(), apprecon.ListInput{PendingOnly: pendingOnly})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]recordView, 0, len(records))
	for _, rec := range records {
		out = append(out, newRecordView(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

type resolveRequest struct {
	Note string `json:"note"`
}

func (h *Handler) handleResolveReconciliation(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "orderId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req resolveRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	rec, err := h.uc.ResolveRecord.Execute(r.Context(), apprecon.ResolveInput{OrderID: orderID, Note: req.Note})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRecordView(rec))
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if len(h.checks) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{"status": "ok"}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body[name] = err.Error()
			continue
		}
		body[name] = "ok"
	}
	writeJSON(w, status, body)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := application.KindOf(err)
	md := application.MetadataFor(kind)

	body := errorView{Kind: string(kind), Message: md.PublicMessage, Retryable: md.Retryable}
	var appErr *application.Error
	if errors.As(err, &appErr) && appErr.Err != nil {
		switch kind {
		case application.KindValidation, application.KindOutOfStock, application.KindNotFound:
			body.Message = appErr.Err.Error()
		}
	}
	if o := application.OrderOf(err); o != nil {
		v := newOrderView(o)
		body.Order = &v
	}

	logger := logctx.FromOr(r.Context(), h.log)
	if md.HTTPStatus >= http.StatusInternalServerError {
		logger.Error("http_request_failed",
			observability.F("kind", string(kind)),
			observability.F("status", md.HTTPStatus),
			observability.Err(err),
		)
	} else {
		logger.Debug("http_request_rejected",
			observability.F("kind", string(kind)),
			observability.F("status", md.HTTPStatus),
			observability.Err(err),
		)
	}
	writeJSON(w, md.HTTPStatus, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return application.Validation("http.decode", "request body is required")
		}
		return application.Validation("http.decode", "malformed request body: "+err.Error())
	}
	if dec.More() {
		return application.Validation("http.decode", "request body must contain a single JSON object")
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, application.Validation("http.path", fmt.Sprintf("%s must be a positive integer", name))
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
