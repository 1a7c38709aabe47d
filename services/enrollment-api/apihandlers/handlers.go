package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	enrollmentDB "github.com/panel-framework/panel-backend/pkg/db/enrollment"
	enrollmentcodec "github.com/panel-framework/panel-backend/pkg/enrollment-codec"
	"github.com/panel-framework/panel-backend/pkg/geoip"
	"github.com/panel-framework/panel-backend/pkg/screening"
	statusreporter "github.com/panel-framework/panel-backend/pkg/status-reporter"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	tokenSignKey     string
	apiKeys          []string
	linkCodec        *enrollmentcodec.Codec
	sessions         *screening.SessionRegistry
	machine          *screening.Machine
	geoResolver      *geoip.Resolver
	reporter         *statusreporter.Reporter
	enrollmentDBConn *enrollmentDB.EnrollmentDBService
}

func NewHTTPHandler(
	tokenSignKey string,
	apiKeys []string,
	linkCodec *enrollmentcodec.Codec,
	sessions *screening.SessionRegistry,
	machine *screening.Machine,
	geoResolver *geoip.Resolver,
	reporter *statusreporter.Reporter,
	enrollmentDBConn *enrollmentDB.EnrollmentDBService,
) *HttpEndpoints {
	return &HttpEndpoints{
		tokenSignKey:     tokenSignKey,
		apiKeys:          apiKeys,
		linkCodec:        linkCodec,
		sessions:         sessions,
		machine:          machine,
		geoResolver:      geoResolver,
		reporter:         reporter,
		enrollmentDBConn: enrollmentDBConn,
	}
}
