package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/panel-framework/panel-backend/pkg/apihelpers"
	mw "github.com/panel-framework/panel-backend/pkg/apihelpers/middlewares"
	enrollmentDB "github.com/panel-framework/panel-backend/pkg/db/enrollment"
	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
	"github.com/panel-framework/panel-backend/pkg/marketplace"
)

// Status reports may come from the app (JWT) as well as from backend jobs,
// so this group is guarded by API key instead.
func (h *HttpEndpoints) AddStatusReportAPI(rg *gin.RouterGroup) {
	statusReportsGroup := rg.Group("/status-reports")
	statusReportsGroup.Use(mw.HasValidAPIKey(h.apiKeys))
	{
		statusReportsGroup.POST("", mw.RequirePayload(), h.reportRespondentStatus)
		statusReportsGroup.GET("", h.getStatusReports) // ?page=1&limit=10&filter={"projectCode":"..."}
	}
}

func (h *HttpEndpoints) getStatusReports(c *gin.Context) {
	query, err := apihelpers.ParsePaginatedQueryFromCtx(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reports, paginationInfo, err := h.enrollmentDBConn.GetStatusReports(query.Filter, query.Sort, query.Page, query.Limit)
	if err != nil {
		slog.Error("could not fetch status reports", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch status reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"statusReports": reports,
		"pagination":    paginationInfo,
	})
}

func (h *HttpEndpoints) reportRespondentStatus(c *gin.Context) {
	var req struct {
		Marketplace string `json:"marketplace"`
		ProjectCode string `json:"projectCode"`
		Status      string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.ProjectCode == "" || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectCode and status are required"})
		return
	}

	if err := h.reporter.Report(c.Request.Context(), req.Marketplace, req.ProjectCode, req.Status); err != nil {
		if errors.Is(err, marketplace.ErrUnknownMarketplace) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("could not report respondent status", slog.String("projectCode", req.ProjectCode), slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not report respondent status"})
		return
	}

	if h.enrollmentDBConn != nil {
		err := h.enrollmentDBConn.SaveStatusReport(c.Request.Context(), enrollmentDB.StatusReport{
			Marketplace: req.Marketplace,
			ProjectCode: req.ProjectCode,
			Status:      enrollmentTypes.NormalizeStatus(req.Status),
		})
		if err != nil {
			slog.Error("could not save status report audit record", slog.String("projectCode", req.ProjectCode), slog.String("error", err.Error()))
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "status reported"})
}
