package main

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/panel-framework/panel-backend/pkg/apihelpers"
	enrollmentcodec "github.com/panel-framework/panel-backend/pkg/enrollment-codec"
	enrollmentTypes "github.com/panel-framework/panel-backend/pkg/enrollment/types"
	"github.com/panel-framework/panel-backend/pkg/geoip"
	"github.com/panel-framework/panel-backend/pkg/marketplace"
	"github.com/panel-framework/panel-backend/pkg/screening"
	statusreporter "github.com/panel-framework/panel-backend/pkg/status-reporter"
	"github.com/panel-framework/panel-backend/services/enrollment-api/apihandlers"
)

var conf EnrollmentApiConfig

func main() {
	if enrollmentDBService == nil {
		slog.Error("Enrollment DB not available")
		return
	}

	linkCodec := enrollmentcodec.New(conf.EnrollmentConfig.LinkSecret)
	providers := buildMarketplaceRegistry()
	machine := screening.NewMachine(providers)
	sessions := screening.NewSessionRegistry(conf.EnrollmentConfig.SessionTTL)
	geoResolver := geoip.NewResolver(conf.GeoLookup)
	reporter := statusreporter.New(linkCodec, enrollmentDBService, providers)

	// Start webserver
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length", "Api-Key"},
		ExposeHeaders:    []string{"Authorization", "Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Add handlers
	router.GET("/", apihandlers.HealthCheckHandle)
	v1Root := router.Group("/v1")

	v1APIHandlers := apihandlers.NewHTTPHandler(
		conf.PanelUserJWTConfig.SignKey,
		conf.APIKeys,
		linkCodec,
		sessions,
		machine,
		geoResolver,
		reporter,
		enrollmentDBService,
	)
	v1APIHandlers.AddEnrollmentAPI(v1Root)
	v1APIHandlers.AddStatusReportAPI(v1Root)

	if conf.GinConfig.DebugMode {
		apihelpers.WriteRoutesToFile(router, "enrollment-api-routes.txt")
	}

	// Start the server
	slog.Info("Starting Enrollment API on port " + conf.GinConfig.Port)
	if !conf.GinConfig.MTLS.Use {
		err := router.Run(":" + conf.GinConfig.Port)
		if err != nil {
			slog.Error("Exited Enrollment API", slog.String("error", err.Error()))
			return
		}
	} else {
		// Create tls config for mutual TLS
		tlsConfig, err := apihelpers.LoadTLSConfig(conf.GinConfig.MTLS.CertificatePaths)
		if err != nil {
			slog.Error("Error loading TLS config.", slog.String("error", err.Error()))
			return
		}

		server := &http.Server{
			Addr:      ":" + conf.GinConfig.Port,
			Handler:   router,
			TLSConfig: tlsConfig,
		}

		err = server.ListenAndServeTLS(conf.GinConfig.MTLS.CertificatePaths.ServerCertPath, conf.GinConfig.MTLS.CertificatePaths.ServerKeyPath)
		if err != nil {
			slog.Error("Exited Enrollment API", slog.String("error", err.Error()))
			return
		}
	}
}

func buildMarketplaceRegistry() *marketplace.Registry {
	providers := map[string]marketplace.ScreeningProvider{}
	for _, m := range conf.Marketplaces {
		client := m.ClientConfig()
		switch strings.ToLower(m.Name) {
		case enrollmentTypes.MARKETPLACE_PROJECTS:
			providers[enrollmentTypes.MARKETPLACE_PROJECTS] = marketplace.NewProjectsProvider(client)
		case enrollmentTypes.MARKETPLACE_DIY:
			providers[enrollmentTypes.MARKETPLACE_DIY] = marketplace.NewDIYProvider(client)
		case enrollmentTypes.MARKETPLACE_CINT:
			providers[enrollmentTypes.MARKETPLACE_CINT] = marketplace.NewCintProvider(client)
		case enrollmentTypes.MARKETPLACE_TOLUNA:
			providers[enrollmentTypes.MARKETPLACE_TOLUNA] = marketplace.NewTolunaProvider(client)
		default:
			slog.Warn("ignoring unknown marketplace in config", slog.String("name", m.Name))
		}
	}
	return marketplace.NewRegistry(providers)
}
