package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sellerhub/backend/domain"
	"github.com/sellerhub/backend/pkg/httpcontext"
	deltaUC "github.com/sellerhub/backend/usecase/delta"
)

type DeltaHandler struct {
	baseHandler
	uc *deltaUC.UseCase
}

func NewDeltaHandler(uc *deltaUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *DeltaHandler {
	return &DeltaHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Changes since cursor
// @Tags delta
// @Router /api/v1/delta/changes [get]
func (h *DeltaHandler) Changes(ctx *fasthttp.RequestCtx) {
	actor := h.actor(ctx)
	if actor == "" {
		return
	}

	var since *domain.Cursor
	if raw := string(ctx.QueryArgs().Peek("since")); raw != "" {
		cursor, err := domain.ParseCursor(raw)
		if err != nil {
			h.respondError(ctx, err)
			return
		}
		since = &cursor
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	batch, err := h.uc.GetChanges(stdCtx, since, actor)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, batch)
}

// @Summary Active viewers
// @Tags delta
// @Router /api/v1/presence [get]
func (h *DeltaHandler) Presence(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	viewers, err := h.uc.ActiveViewers(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	if viewers == nil {
		viewers = []string{}
	}
	h.respondSuccess(ctx, http.StatusOK, viewers)
}
