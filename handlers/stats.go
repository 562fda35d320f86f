package handlers

import (
	"net/http"
	"strconv"

	"loyaltybot-backend/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	Stats *services.Statistics
}

// GetStatistics returns the dashboard aggregates plus a ledger consistency
// check: the sum of all balances against the sum of all history entries.
func (h *StatsHandler) GetStatistics(c *gin.Context) {
	totals, err := h.Stats.Totals()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
		return
	}

	historyTotal, err := h.Stats.HistoryTotal()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totals":        totals,
		"history_total": historyTotal,
	})
}

func (h *StatsHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, err := h.Stats.Leaderboard(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": users})
}

func (h *StatsHandler) GetTopRewards(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	counts, err := h.Stats.TopRewards(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top rewards"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"top_rewards": counts})
}
