package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/splitr-app/splitr_backend/internal/core/ports/services"
	"github.com/splitr-app/splitr_backend/internal/dto"
	"github.com/splitr-app/splitr_backend/internal/middleware"
)

// expenseHandler handles HTTP requests related to expenses.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
}

// newExpenseHandler creates a new expenseHandler.
func newExpenseHandler(es portssvc.ExpenseSvcFacade) *expenseHandler {
	return &expenseHandler{expenseService: es}
}

// registerExpenseRoutes registers all expense-related routes.
func registerExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade) {
	h := newExpenseHandler(expenseService)

	expenses := rg.Group("/expenses")
	{
		expenses.POST("", h.createExpense)
		expenses.GET("", h.listExpenses)
		expenses.GET("/:expenseID", h.getExpense)
		expenses.PUT("/:expenseID", h.updateExpense)
		expenses.DELETE("/:expenseID", h.deleteExpense)
		expenses.POST("/confirm", h.confirmExpenses)
		expenses.POST("/rescind", h.rescindExpenses)
		expenses.POST("/:expenseID/confirm", h.confirmExpense)
		expenses.POST("/:expenseID/rescind", h.rescindExpense)
	}
}

// createExpense godoc
// @Summary Create an expense
// @Description Creates a new expense owned by the authenticated user, together with its participant index entries.
// @Tags expenses
// @Accept json
// @Produce json
// @Param expense body dto.SaveExpenseRequest true "Expense details"
// @Success 201 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses [post]
func (h *expenseHandler) createExpense(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{http.StatusUnauthorized, "Unauthorized", "authentication required"})
		return
	}

	var req dto.SaveExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.expenseService.CreateExpense(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// getExpense godoc
// @Summary Get an expense
// @Description Retrieves one expense with totals, per-participant contributions and owner info. Only participants can see it.
// @Tags expenses
// @Produce json
// @Param expenseID path string true "Expense ID"
// @Success 200 {object} dto.ExpenseDetailResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses/{expenseID} [get]
func (h *expenseHandler) getExpense(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{http.StatusUnauthorized, "Unauthorized", "authentication required"})
		return
	}

	resp, err := h.expenseService.GetExpense(c.Request.Context(), userID, c.Param("expenseID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listExpenses godoc
// @Summary List expenses
// @Description Lists the caller's expenses by relationship: owned and unsettled (own=true), owed (own=false) or settled (past=true). Optionally grouped by owner.
// @Tags expenses
// @Produce json
// @Param own query bool false "Owned expenses (default true)"
// @Param past query bool false "Settled expenses"
// @Param group query bool false "Group results by expense owner"
// @Success 200 {object} dto.ExpenseListResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses [get]
func (h *expenseHandler) listExpenses(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{http.StatusUnauthorized, "Unauthorized", "authentication required"})
		return
	}

	var params dto.ListExpensesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.expenseService.ListExpenses(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// updateExpense godoc
// @Summary Update an expense
// @Description Fully replaces an expense. Only the owner may update, and only while no participant has confirmed payment.
// @Tags expenses
// @Accept json
// @Produce json
// @Param expenseID path string true "Expense ID"
// @Param expense body dto.SaveExpenseRequest true "Replacement expense details"
// @Success 200 {object} dto.ExpenseResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses/{expenseID} [put]
func (h *expenseHandler) updateExpense(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{http.StatusUnauthorized, "Unauthorized", "authentication required"})
		return
	}

	var req dto.SaveExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.expenseService.UpdateExpense(c.Request.Context(), userID, c.Param("expenseID"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// deleteExpense godoc
// @Summary Delete an expense
// @Description Deletes an expense and its index entries. Only the owner may delete, and only while no participant has confirmed payment. Deleting an absent expense succeeds.
// @Tags expenses
// @Produce json
// @Param expenseID path string true "Expense ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses/{expenseID} [delete]
func (h *expenseHandler) deleteExpense(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{http.StatusUnauthorized, "Unauthorized", "authentication required"})
		return
	}

	if err := h.expenseService.DeleteExpense(c.Request.Context(), userID, c.Param("expenseID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// confirmExpenses godoc
// @Summary Confirm payment
// @Description Marks the caller as paid on each listed expense. Owners cannot confirm their own expenses.
// @Tags expenses
// @Accept json
// @Produce json
// @Param confirm body dto.ConfirmExpensesRequest true "Expense ids to confirm"
// @Success 200 "OK"
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses/confirm [post]
func (h *expenseHandler) confirmExpenses(c *gin.Context) {
	h.settle(c, h.expenseService.ConfirmExpenses)
}

// rescindExpenses godoc
// @Summary Rescind payment
// @Description Marks the caller as unpaid on each listed expense, reopening settled ones.
// @Tags expenses
// @Accept json
// @Produce json
// @Param rescind body dto.ConfirmExpensesRequest true "Expense ids to rescind"
// @Success 200 "OK"
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses/rescind [post]
func (h *expenseHandler) rescindExpenses(c *gin.Context) {
	h.settle(c, h.expenseService.RescindExpenses)
}

// confirmExpense godoc
// @Summary Confirm payment on one expense
// @Description Marks the caller as paid on a single expense.
// @Tags expenses
// @Produce json
// @Param expenseID path string true "Expense ID"
// @Success 200 "OK"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses/{expenseID}/confirm [post]
func (h *expenseHandler) confirmExpense(c *gin.Context) {
	h.settleOne(c, h.expenseService.ConfirmExpenses)
}

// rescindExpense godoc
// @Summary Rescind payment on one expense
// @Description Marks the caller as unpaid on a single expense, reopening it if settled.
// @Tags expenses
// @Produce json
// @Param expenseID path string true "Expense ID"
// @Success 200 "OK"
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /expenses/{expenseID}/rescind [post]
func (h *expenseHandler) rescindExpense(c *gin.Context) {
	h.settleOne(c, h.expenseService.RescindExpenses)
}

func (h *expenseHandler) settleOne(c *gin.Context, op func(ctx context.Context, callerID string, ids []string) error) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{http.StatusUnauthorized, "Unauthorized", "authentication required"})
		return
	}

	if err := op(c.Request.Context(), userID, []string{c.Param("expenseID")}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *expenseHandler) settle(c *gin.Context, op func(ctx context.Context, callerID string, ids []string) error) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{http.StatusUnauthorized, "Unauthorized", "authentication required"})
		return
	}

	var req dto.ConfirmExpensesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := op(c.Request.Context(), userID, req.ExpenseIDs); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Settlement batch failed",
			slog.Int("count", len(req.ExpenseIDs)), slog.String("error", err.Error()))
		respondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
