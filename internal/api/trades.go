package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"trading-journal-go/internal/journal"
	"trading-journal-go/internal/models"
	"trading-journal-go/internal/stats"
)

type tradeHandler struct {
	journal *journal.Service
}

func (h *tradeHandler) register(r gin.IRouter) {
	g := r.Group("/trades")
	g.GET("", h.list)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.remove)
	g.DELETE("", h.clear)
	g.POST("/migrate", h.migrate)

	s := r.Group("/statistics")
	s.GET("", h.dashboard)
	s.GET("/history", h.history)
}

func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func pageQuery(c *gin.Context) int {
	if val := c.Query("page"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return 1
}

func (h *tradeHandler) list(c *gin.Context) {
	page, err := h.journal.LoadPage(c.Request.Context(), userID(c), pageQuery(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", page)
}

func (h *tradeHandler) create(c *gin.Context) {
	var input models.TradeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	result, err := h.journal.AddTrade(c.Request.Context(), userID(c), input)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, result.Warning, result)
}

func (h *tradeHandler) update(c *gin.Context) {
	var input models.TradeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	trade, err := h.journal.UpdateTrade(c.Request.Context(), userID(c), models.TradeID(c.Param("id")), input)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", trade)
}

func (h *tradeHandler) remove(c *gin.Context) {
	if err := h.journal.DeleteTrade(c.Request.Context(), userID(c), models.TradeID(c.Param("id"))); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", nil)
}

func (h *tradeHandler) clear(c *gin.Context) {
	if err := h.journal.ClearAllTrades(c.Request.Context(), userID(c)); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", nil)
}

func (h *tradeHandler) migrate(c *gin.Context) {
	result, err := h.journal.Migrate(c.Request.Context(), userID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", result)
}

func (h *tradeHandler) dashboard(c *gin.Context) {
	month := h.journal.CurrentMonth()
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		parsed, err := stats.ParseMonth(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		month = parsed
	}

	dash, err := h.journal.Dashboard(c.Request.Context(), userID(c), pageQuery(c), month)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", dash)
}

func (h *tradeHandler) history(c *gin.Context) {
	summary, err := h.journal.HistorySummary(c.Request.Context(), userID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, "", summary)
}
