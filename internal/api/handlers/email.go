package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/warterbili/InterviewManager-system/internal/database/models"
	"github.com/warterbili/InterviewManager-system/internal/services"
)

// EmailHandler handles email related requests
type EmailHandler struct {
	store *services.EmailStore
	mail  *services.MailService
}

// NewEmailHandler creates a new EmailHandler instance
func NewEmailHandler(store *services.EmailStore, mail *services.MailService) *EmailHandler {
	return &EmailHandler{
		store: store,
		mail:  mail,
	}
}

// EmailListItem is the projection returned by the list endpoint.
type EmailListItem struct {
	ID       uint   `json:"id"`
	ImapID   string `json:"imap_id"`
	Subject  string `json:"subject"`
	Sender   string `json:"sender"`
	SendDate string `json:"send_date"`
}

// ListEmails returns stored emails, optionally filtered by a day range.
// GET /api/emails?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *EmailHandler) ListEmails(c *gin.Context) {
	start := c.Query("start")
	end := c.Query("end")
	if (start == "") != (end == "") {
		jsonError(c, http.StatusBadRequest, "INVALID_RANGE", "start and end must be supplied together")
		return
	}

	emails, err := h.store.ListByDateRange(start, end)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	items := make([]EmailListItem, 0, len(emails))
	for _, e := range emails {
		items = append(items, EmailListItem{
			ID:       e.ID,
			ImapID:   e.ImapID,
			Subject:  e.Subject,
			Sender:   e.Sender,
			SendDate: e.SendDate,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"total":   len(items),
	})
}

// SearchEmails returns stored rows whose subject or body matches the
// keyword, newest first. Without a keyword it returns the whole table.
// GET /api/emails/search?keyword=...
func (h *EmailHandler) SearchEmails(c *gin.Context) {
	emails, err := h.store.SearchEmails(c.Query("keyword"))
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    emails,
		"total":   len(emails),
	})
}

// DeleteEmail removes one stored row by primary key.
// DELETE /api/emails/:id
func (h *EmailHandler) DeleteEmail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "INVALID_ID", "id must be an integer")
		return
	}

	if err := h.store.DeleteEmail(uint(id)); err != nil {
		if errors.Is(err, services.ErrEmailNotFound) {
			jsonError(c, http.StatusNotFound, "NOT_FOUND", "email not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Email deleted successfully",
	})
}

// fetchRequest is the optional body of the fetch trigger.
type fetchRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// TriggerFetch runs a mailbox scan synchronously and persists the results,
// recording a scan run like the CLI does.
// POST /api/fetch-emails
func (h *EmailHandler) TriggerFetch(c *gin.Context) {
	var req fetchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			jsonError(c, http.StatusBadRequest, "INVALID_BODY", "body must be a JSON object")
			return
		}
	}
	if (req.StartDate == "") != (req.EndDate == "") {
		jsonError(c, http.StatusBadRequest, "INVALID_RANGE", "startDate and endDate must be supplied together")
		return
	}

	run := &models.ScanRun{
		RunID:     uuid.NewString(),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    models.ScanRunning,
	}
	if err := h.store.BeginScanRun(run); err != nil {
		jsonError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	emails, found, err := h.mail.FetchEmails(req.StartDate, req.EndDate, true)
	if err != nil {
		run.Status = models.ScanFailed
		run.Error = err.Error()
		h.store.FinishScanRun(run)
		jsonError(c, http.StatusBadGateway, "IMAP_ERROR", err.Error())
		return
	}
	run.Found = found
	run.Fetched = len(emails)

	inserted, err := h.store.SaveEmails(emails)
	if err != nil {
		run.Status = models.ScanFailed
		run.Error = err.Error()
		h.store.FinishScanRun(run)
		jsonError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	run.Inserted = inserted
	run.Status = models.ScanCompleted
	h.store.FinishScanRun(run)

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       fmt.Sprintf("邮件获取完成，新增 %d 封邮件", inserted),
		"insertedCount": inserted,
	})
}

// GetEmail returns one stored row by primary key.
// GET /api/emails/:id
func (h *EmailHandler) GetEmail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "INVALID_ID", "id must be an integer")
		return
	}

	email, err := h.store.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrEmailNotFound) {
			jsonError(c, http.StatusNotFound, "NOT_FOUND", "email not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    email,
	})
}

// GetEmailBody re-fetches the message body live from the mailbox, using the
// imap_id recorded on the stored row. Stale identifiers come back 404.
// GET /api/emails/:id/body
func (h *EmailHandler) GetEmailBody(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "INVALID_ID", "id must be an integer")
		return
	}

	email, err := h.store.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrEmailNotFound) {
			jsonError(c, http.StatusNotFound, "NOT_FOUND", "email not found")
			return
		}
		jsonError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	body, err := h.mail.FetchBodyByID(email.ImapID)
	if err != nil {
		if errors.Is(err, services.ErrEmailNotFound) {
			jsonError(c, http.StatusNotFound, "STALE_IMAP_ID",
				"message no longer available under the recorded imap id; re-run fetch to refresh ids")
			return
		}
		jsonError(c, http.StatusBadGateway, "IMAP_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":      email.ID,
			"imap_id": email.ImapID,
			"body":    body,
		},
	})
}

// GetStats returns table totals and date extremes.
// GET /api/stats
func (h *EmailHandler) GetStats(c *gin.Context) {
	stats, err := h.store.Stats()
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

func jsonError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
