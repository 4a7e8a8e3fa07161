package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/abramau/gavrila/internal/common"
	"github.com/abramau/gavrila/internal/config"
)

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"version": config.Version})
}

// TriggerDigest composes and posts the digest immediately.
func (h *Handler) TriggerDigest(c *gin.Context) {
	ctx := c.Request.Context()
	text := h.Digest.Compose(ctx)
	if h.Post != nil {
		if err := h.Post(ctx, text); err != nil {
			common.Fail(c, http.StatusBadGateway, 50201, "digest composed but could not be delivered")
			return
		}
	}
	common.OK(c, gin.H{"digest": text})
}

// RunPurge runs the retention sweep now.
func (h *Handler) RunPurge(c *gin.Context) {
	removed, err := h.Store.PurgeOlderThan(c.Request.Context(), h.Retention)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "purge failed")
		return
	}
	common.OK(c, gin.H{"removed": removed})
}

// ChatHistory returns stored rows for a chat. Defaults to the current epoch;
// `?epoch=N` inspects an orphaned one.
func (h *Handler) ChatHistory(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid chat_id")
		return
	}

	ctx := c.Request.Context()

	epoch, err := h.Epochs.Current(ctx, chatID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to resolve epoch")
		return
	}
	if raw := c.Query("epoch"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			common.Fail(c, http.StatusBadRequest, 10002, "invalid epoch")
			return
		}
		epoch = n
	}

	rows, err := h.Store.Rows(ctx, chatID, epoch)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to read history")
		return
	}
	common.OK(c, gin.H{
		"chat_id": chatID,
		"epoch":   epoch,
		"rows":    rows,
	})
}
