package apihandlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/panel-framework/panel-backend/pkg/apihelpers/middlewares"
	"github.com/panel-framework/panel-backend/pkg/eligibility"
	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
	"github.com/panel-framework/panel-backend/pkg/geoip"
	httpclient "github.com/panel-framework/panel-backend/pkg/http-client"
	"github.com/panel-framework/panel-backend/pkg/marketplace"
	"github.com/panel-framework/panel-backend/pkg/outcome"
	"github.com/panel-framework/panel-backend/pkg/screening"
)

func (h *HttpEndpoints) AddEnrollmentAPI(rg *gin.RouterGroup) {
	enrollmentGroup := rg.Group("/enrollment")
	enrollmentGroup.Use(mw.GetAndValidatePanelUserJWT(h.tokenSignKey))
	{
		enrollmentGroup.POST("/links", mw.RequirePayload(), h.buildEnrollmentLink)

		sessionsGroup := enrollmentGroup.Group("/sessions")
		{
			sessionsGroup.POST("", mw.RequirePayload(), h.startEnrollmentSession)
			sessionsGroup.POST("/:sessionID/answers", mw.RequirePayload(), h.recordAnswer)
			sessionsGroup.POST("/:sessionID/submit", h.submitAnswers)
		}
	}
}

func (h *HttpEndpoints) buildEnrollmentLink(c *gin.Context) {
	var req struct {
		Descriptor enrollmentTypes.EnrollmentDescriptor `json:"descriptor"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := h.linkCodec.BuildEnrollmentLink(req.Descriptor)
	if err != nil {
		slog.Error("could not build enrollment link", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payload": payload})
}

func (h *HttpEndpoints) startEnrollmentSession(c *gin.Context) {
	var req struct {
		Payload     string `json:"payload"`
		OriginalURL string `json:"originalUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	descriptor, err := h.linkCodec.ConsumeEnrollmentLink(req.Payload)
	if err != nil {
		slog.Warn("rejected enrollment link", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid enrollment link"})
		return
	}

	// Geo gate runs before the device gate. An unresolved location counts as
	// outside the target country.
	if !eligibility.CheckGeo(h.resolveCountry(c, descriptor), descriptor.CountryCode, descriptor.IsTest) {
		session := h.sessions.Create(descriptor, req.OriginalURL)
		session.MarkGateFailed(outcome.NavigateToResult(enrollmentTypes.STATUS_GEO_LOCKED))

		// The backend learns the real reason even though the user sees the
		// generic unsuitable page.
		if err := h.reporter.Report(c.Request.Context(), descriptor.Marketplace, descriptor.ProjectCode, enrollmentTypes.STATUS_GEO_LOCKED); err != nil {
			slog.Warn("could not report geo locked status", slog.String("projectCode", descriptor.ProjectCode), slog.String("error", err.Error()))
		}

		c.JSON(http.StatusOK, sessionResponse(session))
		return
	}

	detected := eligibility.DetectDeviceClass(c.Request.UserAgent())
	if !eligibility.CheckDevice(detected, descriptor.DeviceRestrictions, descriptor.IsTest) {
		session := h.sessions.Create(descriptor, req.OriginalURL)
		session.MarkGateFailed(outcome.ShowDeviceBlocked(req.OriginalURL, descriptor.DeviceRestrictions))
		c.JSON(http.StatusOK, sessionResponse(session))
		return
	}

	session := h.sessions.Create(descriptor, req.OriginalURL)
	if err := h.machine.Initiate(c.Request.Context(), session); err != nil {
		h.sessions.Remove(session.ID)
		if errors.Is(err, marketplace.ErrScreeningNotSupported) {
			// Not an outage; this marketplace runs screening on its own pages.
			slog.Warn("enrollment link for a marketplace without hosted screening", slog.String("marketplace", descriptor.Marketplace), slog.String("projectCode", descriptor.ProjectCode))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		slog.Error("could not initiate screening", slog.String("projectCode", descriptor.ProjectCode), slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not initiate screening"})
		return
	}
	c.JSON(http.StatusOK, sessionResponse(session))
}

// resolveCountry returns the caller's country code, or "" when the lookup is
// unavailable. Skipped entirely when the gate could not block anyway.
func (h *HttpEndpoints) resolveCountry(c *gin.Context, descriptor enrollmentTypes.EnrollmentDescriptor) string {
	if descriptor.IsTest || descriptor.CountryCode == "" {
		return ""
	}
	location, err := h.geoResolver.Resolve(c.Request.Context(), c.ClientIP())
	if err != nil {
		if !errors.Is(err, geoip.ErrGeoUnresolved) {
			slog.Warn("geo lookup failed", slog.String("error", err.Error()))
		}
		return ""
	}
	return location.CountryCode
}

func (h *HttpEndpoints) recordAnswer(c *gin.Context) {
	session, ok := h.sessionFromPath(c)
	if !ok {
		return
	}

	var req struct {
		QuestionID   int     `json:"questionId"`
		Value        *string `json:"value"`
		ToggleOption *string `json:"toggleOption"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error("failed to bind request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var err error
	switch {
	case req.ToggleOption != nil:
		err = session.ToggleOption(req.QuestionID, *req.ToggleOption)
	case req.Value != nil:
		err = session.SetAnswer(req.QuestionID, *req.Value)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "value or toggleOption is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "answer recorded"})
}

func (h *HttpEndpoints) submitAnswers(c *gin.Context) {
	session, ok := h.sessionFromPath(c)
	if !ok {
		return
	}

	action, err := h.machine.Submit(c.Request.Context(), session)
	if err != nil {
		switch {
		case errors.Is(err, screening.ErrIncompleteAnswers),
			errors.Is(err, screening.ErrNotAwaitingAnswer):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, screening.ErrSubmitInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, httpclient.ErrNetworkTimeout):
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "screening backend timed out, please retry"})
		default:
			slog.Error("could not submit screening answers", slog.String("sessionId", session.ID), slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not submit screening answers"})
		}
		return
	}

	h.sessions.Remove(session.ID)
	c.JSON(http.StatusOK, gin.H{"action": action})
}

func (h *HttpEndpoints) sessionFromPath(c *gin.Context) (*screening.Session, bool) {
	session, err := h.sessions.Get(c.Param("sessionID"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return session, true
}

func sessionResponse(session *screening.Session) gin.H {
	resp := gin.H{
		"sessionId": session.ID,
		"status":    session.Status(),
	}
	if questions := session.Questions(); len(questions) > 0 {
		resp["questions"] = questions
	}
	if action := session.Action(); action != nil {
		resp["action"] = action
	}
	return resp
}
