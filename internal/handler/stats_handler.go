package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
	"github.com/Prasad22V/coursebundler-server/internal/repository"
	"github.com/Prasad22V/coursebundler-server/pkg/response"
)

// dashboardMonths is how many snapshot rows the dashboard shows
const dashboardMonths = 12

// StatsHandler serves the admin dashboard aggregates
type StatsHandler struct {
	stats repository.StatsRepository
}

// NewStatsHandler creates a StatsHandler
func NewStatsHandler(stats repository.StatsRepository) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// change compares the current period against the previous one and returns
// the percentage delta plus whether it grew
func change(current, previous int64) (float64, bool) {
	if previous == 0 {
		return float64(current) * 100, current >= 0
	}
	diff := current - previous
	return float64(diff) / float64(previous) * 100, diff >= 0
}

// Dashboard handles GET /api/v1/admin/stats
func (h *StatsHandler) Dashboard(c *gin.Context) {
	recent, err := h.stats.Recent(c.Request.Context(), dashboardMonths)
	if err != nil {
		response.FromError(c, domain.Wrap(domain.KindInternal, "Failed to load stats", err))
		return
	}
	if len(recent) == 0 {
		response.FromError(c, domain.E(domain.KindInternal, "No stats available"))
		return
	}

	// Recent returns newest first; the dashboard charts oldest to newest
	stats := make([]*domain.StatsSnapshot, len(recent))
	for i, s := range recent {
		stats[len(recent)-1-i] = s
	}

	latest := recent[0]
	previous := &domain.StatsSnapshot{}
	if len(recent) > 1 {
		previous = recent[1]
	}

	usersPercentage, usersProfit := change(latest.Users, previous.Users)
	viewsPercentage, viewsProfit := change(latest.Views, previous.Views)
	subscriptionPercentage, subscriptionProfit := change(latest.Subscriptions, previous.Subscriptions)

	response.Data(c, gin.H{
		"stats":                  stats,
		"usersCount":             latest.Users,
		"subscriptionCount":      latest.Subscriptions,
		"viewsCount":             latest.Views,
		"usersPercentage":        usersPercentage,
		"viewsPercentage":        viewsPercentage,
		"subscriptionPercentage": subscriptionPercentage,
		"usersProfit":            usersProfit,
		"viewsProfit":            viewsProfit,
		"subscriptionProfit":     subscriptionProfit,
	})
}
