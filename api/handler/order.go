package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/api/transport"
	"github.com/sellerhub/backend/domain"
	"github.com/sellerhub/backend/pkg/httpcontext"
	arbiterUC "github.com/sellerhub/backend/usecase/arbiter"
	orderflowUC "github.com/sellerhub/backend/usecase/orderflow"
)

type OrderHandler struct {
	baseHandler
	arbiter *arbiterUC.UseCase
	flow    *orderflowUC.UseCase
}

func NewOrderHandler(arb *arbiterUC.UseCase, flow *orderflowUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		baseHandler: newBaseHandler(adapter, logger),
		arbiter:     arb,
		flow:        flow,
	}
}

// @Summary Create order
// @Tags orders
// @Router /api/v1/orders [post]
func (h *OrderHandler) Create(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == "" {
		return
	}

	var req transport.OrderCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.arbiter.Create(stdCtx, domain.KindOrder, req.OrderID, req.Fields(), actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Get order
// @Tags orders
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) Get(ctx *fasthttp.RequestCtx) {
	id := pathID(ctx)
	if id == "" {
		h.respondInvalid(ctx, "missing order id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	order, err := h.flow.Get(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, order)
}

// @Summary Mutate order fields with optimistic locking
// @Tags orders
// @Router /api/v1/orders/{id} [put]
func (h *OrderHandler) Update(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == "" {
		return
	}

	id := pathID(ctx)
	if id == "" {
		h.respondInvalid(ctx, "missing order id")
		return
	}

	var req transport.OrderMutateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}
	if req.ExpectedVersion < 1 {
		h.respondInvalid(ctx, "expected_version is required")
		return
	}
	if req.OrderPatch.Status != nil {
		h.respondInvalid(ctx, "status changes must use the status endpoint")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.arbiter.Mutate(stdCtx, arbiterUC.Mutation{
		Kind:            domain.KindOrder,
		ID:              id,
		ExpectedVersion: req.ExpectedVersion,
		Patch:           &req.OrderPatch,
		Actor:           actor,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Transition order status
// @Tags orders
// @Router /api/v1/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == "" {
		return
	}

	id := pathID(ctx)
	if id == "" {
		h.respondInvalid(ctx, "missing order id")
		return
	}

	var req transport.StatusUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}
	if req.Status == "" {
		h.respondInvalid(ctx, "status is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.flow.ApplyTransition(stdCtx, id, domain.OrderStatus(req.Status), actor, req.Notes)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Cancel order
// @Tags orders
// @Router /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(ctx *fasthttp.RequestCtx) {
	h.terminal(ctx, h.flow.Cancel)
}

// @Summary Refund order
// @Tags orders
// @Router /api/v1/orders/{id}/refund [post]
func (h *OrderHandler) Refund(ctx *fasthttp.RequestCtx) {
	h.terminal(ctx, h.flow.Refund)
}

// @Summary Order status history
// @Tags orders
// @Router /api/v1/orders/{id}/history [get]
func (h *OrderHandler) History(ctx *fasthttp.RequestCtx) {
	id := pathID(ctx)
	if id == "" {
		h.respondInvalid(ctx, "missing order id")
		return
	}

	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 10)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	history, err := h.flow.History(stdCtx, id, limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, history)
}

type terminalFunc func(ctx context.Context, orderID, actor, notes string) (*domain.Record, error)

func (h *OrderHandler) terminal(ctx *fasthttp.RequestCtx, apply terminalFunc) {
	actor := h.actor(ctx)
	if actor == "" {
		return
	}

	id := pathID(ctx)
	if id == "" {
		h.respondInvalid(ctx, "missing order id")
		return
	}

	var req transport.NotesRequest
	if len(ctx.PostBody()) > 0 {
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			h.respondInvalid(ctx, "invalid payload")
			return
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := apply(stdCtx, id, actor, req.Notes)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}
