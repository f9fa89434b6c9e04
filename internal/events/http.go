package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dataportfolio/portfolio-api/internal/logger"
)

// Subscriber is the read side of the bus.
type Subscriber interface {
	Subscribe(ctx context.Context, topics ...string) (*Subscription, error)
}

type Handler struct {
	subs      Subscriber
	keepAlive time.Duration
}

func NewHandler(subs Subscriber) *Handler {
	return &Handler{subs: subs, keepAlive: 15 * time.Second}
}

func (h *Handler) Register(rg gin.IRouter) {
	rg.GET("/events", h.stream)
}

// stream relays bus events to the browser as Server-Sent Events. topic may be
// repeated or comma separated; owner narrows the stream to one portfolio.
func (h *Handler) stream(c *gin.Context) {
	var topics []string
	for _, raw := range c.QueryArray("topic") {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}
	owner := strings.TrimSpace(c.Query("owner"))

	ctx := c.Request.Context()
	sub, err := h.subs.Subscribe(ctx, topics...)
	if err != nil {
		if errors.Is(err, ErrUnknownTopic) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		logger.FromContext(ctx).Error("subscribe failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "event stream unavailable"})
		return
	}
	defer sub.Close()

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	fmt.Fprint(c.Writer, "event: ready\ndata: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev, open := <-sub.C:
			if !open {
				return
			}
			if owner != "" && ev.OwnerID != owner {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "id: %s\nevent: %s\ndata: %s\n\n", ev.ID, ev.Topic, data)
			flusher.Flush()
		}
	}
}
