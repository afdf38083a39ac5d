package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/api/transport"
	"github.com/sellerhub/backend/domain"
	"github.com/sellerhub/backend/pkg/httpcontext"
	arbiterUC "github.com/sellerhub/backend/usecase/arbiter"
)

type ProductHandler struct {
	baseHandler
	uc *arbiterUC.UseCase
}

func NewProductHandler(uc *arbiterUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Create product
// @Tags products
// @Router /api/v1/products [post]
func (h *ProductHandler) Create(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == "" {
		return
	}

	var req transport.ProductCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, domain.KindProduct, req.ProductID, req.Fields(), actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Get product
// @Tags products
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) Get(ctx *fasthttp.RequestCtx) {
	id := pathID(ctx)
	if id == "" {
		h.respondInvalid(ctx, "missing product id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	record, err := h.uc.Get(stdCtx, domain.KindProduct, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, record)
}

// @Summary Mutate product with optimistic locking
// @Tags products
// @Router /api/v1/products/{id} [put]
func (h *ProductHandler) Update(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == "" {
		return
	}

	id := pathID(ctx)
	if id == "" {
		h.respondInvalid(ctx, "missing product id")
		return
	}

	var req transport.ProductMutateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}
	if req.ExpectedVersion < 1 {
		h.respondInvalid(ctx, "expected_version is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Mutate(stdCtx, arbiterUC.Mutation{
		Kind:            domain.KindProduct,
		ID:              id,
		ExpectedVersion: req.ExpectedVersion,
		Patch:           &req.ProductPatch,
		Actor:           actor,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Soft-delete product
// @Tags products
// @Router /api/v1/products/{id} [delete]
func (h *ProductHandler) Delete(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == "" {
		return
	}

	id := pathID(ctx)
	if id == "" {
		h.respondInvalid(ctx, "missing product id")
		return
	}

	var req transport.DeleteRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}
	if req.ExpectedVersion < 1 {
		h.respondInvalid(ctx, "expected_version is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	deleted, err := h.uc.Delete(stdCtx, domain.KindProduct, id, req.ExpectedVersion, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, deleted)
}

// @Summary Product version history
// @Tags products
// @Router /api/v1/products/{id}/versions [get]
func (h *ProductHandler) Versions(ctx *fasthttp.RequestCtx) {
	id := pathID(ctx)
	if id == "" {
		h.respondInvalid(ctx, "missing product id")
		return
	}

	limit := parseInt(string(ctx.QueryArgs().Peek("limit")), 10)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	versions, err := h.uc.Versions(stdCtx, domain.KindProduct, id, limit)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, versions)
}
