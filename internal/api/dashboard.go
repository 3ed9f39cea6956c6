// internal/api/dashboard.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// dashboard returns the agent's stats, the requested page of their listings
// and their most recent inquiries.
func (h *handlers) dashboard(c *gin.Context) {
	state, err := h.browseState(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	overview, err := h.deps.Dashboard.Overview(c.Request.Context(), c.GetInt64(ctxAgentID), state)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"stats":           overview.Stats,
		"listings":        newListResponse(overview.Listings, false, ""),
		"recentInquiries": nonNil(overview.RecentInquiries),
	})
}

func (h *handlers) myProperties(c *gin.Context) {
	state, err := h.browseState(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	res, err := h.deps.Dashboard.MyListings(c.Request.Context(), c.GetInt64(ctxAgentID), state)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newListResponse(res, false, ""))
}

// agentInquiries lists inquiries across every listing the agent owns.
func (h *handlers) agentInquiries(c *gin.Context) {
	inqs, err := h.deps.Inquiries.ForAgent(c.Request.Context(), c.GetInt64(ctxAgentID))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inquiriesResponse(inqs))
}
