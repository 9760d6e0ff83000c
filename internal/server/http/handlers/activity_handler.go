package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/stampcard/internal/domain/model"
	"github.com/polkiloo/stampcard/internal/server/http/dto"
)

const defaultActivityLimit = 20

// ActivityHandler exposes the activity journal.
type ActivityHandler struct {
	facade StampCardFacade
}

// NewActivityHandler constructs ActivityHandler.
func NewActivityHandler(facade StampCardFacade) *ActivityHandler {
	return &ActivityHandler{facade: facade}
}

// List handles GET /api/activity/:member_id.
func (h *ActivityHandler) List(c *gin.Context) {
	memberID, err := strconv.ParseInt(c.Param("member_id"), 10, 64)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	limit := defaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.Status(http.StatusBadRequest)
			return
		}
	}

	runs, err := h.facade.Activity(c.Request.Context(), memberID, limit)
	if err != nil {
		c.JSON(statusFor(err), errorResponse(err))
		return
	}
	if len(runs) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.ActivityRunResponse, 0, len(runs))
	for _, run := range runs {
		response = append(response, toActivityRunResponse(run))
	}
	c.JSON(http.StatusOK, response)
}

func toActivityRunResponse(run model.ActivityRun) dto.ActivityRunResponse {
	return dto.ActivityRunResponse{
		RunID:      run.RunID,
		Operation:  string(run.Operation),
		Failed:     run.Failed,
		Lines:      run.Lines,
		RecordedAt: run.RecordedAt,
	}
}
