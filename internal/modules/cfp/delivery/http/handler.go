package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/cfptracker/internal/entity"
	cfp "anoa.com/cfptracker/internal/modules/cfp/service"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"
	"go.uber.org/zap"
)

const feedSize = 50

// UpcomingLister supplies the events shown in the deadline feed.
type UpcomingLister interface {
	UpcomingDeadlines(ctx context.Context, now time.Time, limit int) ([]entity.Event, error)
}

type CFPHandler struct {
	scanner    cfp.DeadlineScanner
	events     UpcomingLister
	cronSecret string
	baseURL    string
	now        func() time.Time
	log        *zap.Logger
}

func NewCFPHandler(scanner cfp.DeadlineScanner, events UpcomingLister, cronSecret, baseURL string, log *zap.Logger) *CFPHandler {
	return &CFPHandler{
		scanner:    scanner,
		events:     events,
		cronSecret: cronSecret,
		baseURL:    strings.TrimRight(baseURL, "/"),
		now:        time.Now,
		log:        log,
	}
}

func (h *CFPHandler) authorized(c *gin.Context) bool {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.cronSecret)) == 1
}

// TriggerScan runs the deadline scan for an external scheduler.
func (h *CFPHandler) TriggerScan(c *gin.Context) {
	if h.cronSecret == "" {
		h.log.Error("cron trigger called but CRON_SECRET is not set")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server misconfigured", "message": "CRON_SECRET is not configured"})
		return
	}
	if !h.authorized(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "message": "invalid cron token"})
		return
	}

	now := h.now()
	report, err := h.scanner.Scan(c.Request.Context(), now)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, cfp.ErrScanInProgress) {
			status = http.StatusConflict
		}
		h.log.Error("cfp deadline scan failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "Scan failed", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"timestamp": now.UTC().Format(time.RFC3339),
		"report":    report,
	})
}

// Feed renders upcoming CFP deadlines as RSS.
func (h *CFPHandler) Feed(c *gin.Context) {
	now := h.now()
	events, err := h.events.UpcomingDeadlines(c.Request.Context(), now, feedSize)
	if err != nil {
		h.log.Error("load upcoming deadlines", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load upcoming deadlines"})
		return
	}

	feed := &feeds.Feed{
		Title:       "Upcoming CFP deadlines",
		Link:        &feeds.Link{Href: h.baseURL + "/events"},
		Description: "Conferences whose call for papers is still open",
		Created:     now,
	}
	for i := range events {
		e := &events[i]
		link := e.CFPURL
		if link == "" {
			link = h.baseURL + entity.EventTarget(e.ID).Link()
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          e.ID.String(),
			Title:       fmt.Sprintf("%s (CFP closes %s)", e.Name, e.CFPDeadline.Format("2006-01-02")),
			Link:        &feeds.Link{Href: link},
			Description: describe(e),
			Created:     e.CreatedAt,
			Updated:     e.UpdatedAt,
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		h.log.Error("render cfp feed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate RSS feed"})
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

func describe(e *entity.Event) string {
	parts := make([]string, 0, 2)
	if e.Location != "" {
		parts = append(parts, e.Location)
	}
	if e.StartDate != nil {
		parts = append(parts, e.StartDate.Format("2006-01-02"))
	}
	return strings.Join(parts, ", ")
}
