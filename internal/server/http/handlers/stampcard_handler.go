package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/stampcard/internal/app"
	"github.com/polkiloo/stampcard/internal/domain/model"
	"github.com/polkiloo/stampcard/internal/server/http/dto"
)

// StampCardHandler manages the fetch and update workflows.
type StampCardHandler struct {
	facade StampCardFacade
}

// NewStampCardHandler constructs StampCardHandler.
func NewStampCardHandler(facade StampCardFacade) *StampCardHandler {
	return &StampCardHandler{facade: facade}
}

// Fetch handles POST /api/stampcard/fetch.
func (h *StampCardHandler) Fetch(c *gin.Context) {
	var req dto.FetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, badRequest("malformed request body"))
		return
	}

	result, err := h.facade.FetchStampCard(c.Request.Context(), req.Model(), req.MemberID)
	respond(c, result, err)
}

// Update handles POST /api/stampcard/update. A missing coupon_id falls back
// to the configured default coupon.
func (h *StampCardHandler) Update(c *gin.Context) {
	var req dto.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, badRequest("malformed request body"))
		return
	}
	if req.Stamps == nil {
		c.JSON(http.StatusBadRequest, badRequest("stamps is required"))
		return
	}

	coupon, ok := req.Coupon()
	if !ok {
		coupon = strconv.FormatInt(h.facade.Settings().DefaultCouponID, 10)
	}

	update := model.StampUpdate{
		MemberID: req.MemberID,
		Stamps:   *req.Stamps,
		CouponID: coupon,
	}
	result, err := h.facade.UpdateStampCard(c.Request.Context(), req.Model(), update)
	respond(c, result, err)
}

func respond(c *gin.Context, result *app.Result, err error) {
	resp := dto.WorkflowResponse{Log: []string{}}
	if result != nil {
		resp.RunID = result.RunID
		if result.Log != nil {
			resp.Log = result.Log
		}
		resp.Card = dto.NewCardResponse(result.Card)
		resp.View = result.View
	}
	if err != nil {
		resp.Card = nil
		resp.View = nil
		resp.Error = errorResponse(err)
		c.JSON(statusFor(err), resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func badRequest(message string) dto.WorkflowResponse {
	return dto.WorkflowResponse{
		Log:   []string{},
		Error: &dto.ErrorResponse{Kind: "validation", Message: message},
	}
}
