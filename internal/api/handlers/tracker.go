package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/warterbili/InterviewManager-system/internal/database/models"
	"github.com/warterbili/InterviewManager-system/internal/services"
)

// scheduleTimeLayout is the wire format the schedule page submits and
// expects back (minute precision, no zone).
const scheduleTimeLayout = "2006-01-02T15:04"

// TrackerHandler handles interview schedule and delivery log requests
type TrackerHandler struct {
	store *services.TrackerStore
}

// NewTrackerHandler creates a new TrackerHandler instance
func NewTrackerHandler(store *services.TrackerStore) *TrackerHandler {
	return &TrackerHandler{store: store}
}

// InterviewItem is the wire shape of one schedule row.
type InterviewItem struct {
	Company     string  `json:"company"`
	Position    string  `json:"position"`
	Datetime    *string `json:"datetime"`
	Preparation bool    `json:"preparation"`
	Completion  bool    `json:"completion"`
}

// ListInterviews returns the whole schedule ordered by interview time.
// GET /api/interviews
func (h *TrackerHandler) ListInterviews(c *gin.Context) {
	interviews, err := h.store.ListInterviews()
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	items := make([]InterviewItem, 0, len(interviews))
	for _, iv := range interviews {
		item := InterviewItem{
			Company:     iv.Company,
			Position:    iv.Position,
			Preparation: iv.Preparation,
			Completion:  iv.Completion,
		}
		if iv.Datetime != nil {
			s := iv.Datetime.Format(scheduleTimeLayout)
			item.Datetime = &s
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
	})
}

// SaveInterviews replaces the whole schedule with the submitted rows.
// POST /api/interviews
func (h *TrackerHandler) SaveInterviews(c *gin.Context) {
	var items []InterviewItem
	if err := c.ShouldBindJSON(&items); err != nil {
		jsonError(c, http.StatusBadRequest, "INVALID_BODY", "body must be an array of interviews")
		return
	}

	interviews := make([]models.Interview, 0, len(items))
	for _, item := range items {
		iv := models.Interview{
			Company:     item.Company,
			Position:    item.Position,
			Preparation: item.Preparation,
			Completion:  item.Completion,
		}
		if item.Datetime != nil && *item.Datetime != "" {
			ts, err := parseScheduleTime(*item.Datetime)
			if err != nil {
				jsonError(c, http.StatusBadRequest, "INVALID_DATETIME", "datetime must be YYYY-MM-DDTHH:mm")
				return
			}
			iv.Datetime = &ts
		}
		interviews = append(interviews, iv)
	}

	if err := h.store.ReplaceInterviews(interviews); err != nil {
		jsonError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Interview data saved successfully",
	})
}

// DeliveryRequest is the wire shape of one delivery row on write.
type DeliveryRequest struct {
	CompanyName  string `json:"company_name"`
	DeliveryDate string `json:"delivery_date"`
	Status       string `json:"status"`
}

// ListDeliveries returns all delivery rows, newest first.
// GET /api/deliveries
func (h *TrackerHandler) ListDeliveries(c *gin.Context) {
	deliveries, err := h.store.ListDeliveries()
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    deliveries,
	})
}

// AddDelivery inserts one delivery row; exact duplicates come back 409.
// POST /api/deliveries
func (h *TrackerHandler) AddDelivery(c *gin.Context) {
	delivery, ok := h.bindDelivery(c)
	if !ok {
		return
	}

	if err := h.store.AddDelivery(delivery); err != nil {
		if errors.Is(err, services.ErrDuplicateDelivery) {
			jsonError(c, http.StatusConflict, "DUPLICATE", "duplicate delivery record")
			return
		}
		jsonError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Delivery record added successfully",
		"id":      delivery.ID,
	})
}

// UpdateDelivery rewrites one delivery row.
// PUT /api/deliveries/:id
func (h *TrackerHandler) UpdateDelivery(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "INVALID_ID", "id must be an integer")
		return
	}

	delivery, ok := h.bindDelivery(c)
	if !ok {
		return
	}

	if err := h.store.UpdateDelivery(uint(id), delivery); err != nil {
		switch {
		case errors.Is(err, services.ErrDeliveryNotFound):
			jsonError(c, http.StatusNotFound, "NOT_FOUND", "delivery record not found")
		case errors.Is(err, services.ErrDuplicateDelivery):
			jsonError(c, http.StatusConflict, "DUPLICATE", "duplicate delivery record")
		default:
			jsonError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Delivery record updated successfully",
	})
}

// DeleteDelivery removes one delivery row.
// DELETE /api/deliveries/:id
func (h *TrackerHandler) DeleteDelivery(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "INVALID_ID", "id must be an integer")
		return
	}

	if err := h.store.DeleteDelivery(uint(id)); err != nil {
		if errors.Is(err, services.ErrDeliveryNotFound) {
			jsonError(c, http.StatusNotFound, "NOT_FOUND", "delivery record not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Delivery record deleted successfully",
	})
}

// bindDelivery decodes and validates a delivery payload; on failure it has
// already written the error response.
func (h *TrackerHandler) bindDelivery(c *gin.Context) (*models.Delivery, bool) {
	var req DeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "INVALID_BODY", "body must be a delivery record")
		return nil, false
	}
	if req.CompanyName == "" || req.DeliveryDate == "" || req.Status == "" {
		jsonError(c, http.StatusBadRequest, "MISSING_FIELDS", "company_name, delivery_date and status are required")
		return nil, false
	}

	ts, err := parseScheduleTime(req.DeliveryDate)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "INVALID_DATETIME", "delivery_date is not a recognized timestamp")
		return nil, false
	}

	return &models.Delivery{
		CompanyName:  req.CompanyName,
		DeliveryDate: ts,
		Status:       req.Status,
	}, true
}

// parseScheduleTime accepts the timestamp formats the front-end pages emit.
func parseScheduleTime(s string) (time.Time, error) {
	layouts := []string{
		scheduleTimeLayout,
		"2006-01-02 15:04:05",
		"2006-01-02",
		time.RFC3339,
	}
	var lastErr error
	for _, layout := range layouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
