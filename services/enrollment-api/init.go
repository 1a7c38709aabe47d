package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	"github.com/panel-framework/panel-backend/pkg/apihelpers"
	"github.com/panel-framework/panel-backend/pkg/db"
	enrollmentDB "github.com/panel-framework/panel-backend/pkg/db/enrollment"
	"github.com/panel-framework/panel-backend/pkg/geoip"
	httpclient "github.com/panel-framework/panel-backend/pkg/http-client"
	"github.com/panel-framework/panel-backend/pkg/utils"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_ENROLLMENT_DB_USERNAME = "ENROLLMENT_DB_USERNAME"
	ENV_ENROLLMENT_DB_PASSWORD = "ENROLLMENT_DB_PASSWORD"

	ENV_PANEL_USER_JWT_SIGN_KEY = "PANEL_USER_JWT_SIGN_KEY"
	ENV_ENROLLMENT_LINK_SECRET  = "ENROLLMENT_LINK_SECRET"
	ENV_GEO_LOOKUP_API_KEY      = "GEO_LOOKUP_API_KEY"
)

type MarketplaceClientConfigYaml struct {
	Name           string        `json:"name" yaml:"name"`
	URL            string        `json:"url" yaml:"url"`
	APIKey         string        `json:"api_key" yaml:"api_key"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
}

func (m MarketplaceClientConfigYaml) ClientConfig() httpclient.ClientConfig {
	return httpclient.ClientConfig{
		RootURL: m.URL,
		APIKey:  m.APIKey,
		Timeout: m.RequestTimeout,
	}
}

type EnrollmentApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`

		// Mutual TLS configs
		MTLS struct {
			Use              bool                        `json:"use" yaml:"use"`
			CertificatePaths apihelpers.CertificatePaths `json:"certificate_paths" yaml:"certificate_paths"`
		} `json:"mtls" yaml:"mtls"`
	} `json:"gin_config" yaml:"gin_config"`

	PanelUserJWTConfig struct {
		SignKey   string        `json:"sign_key" yaml:"sign_key"`
		ExpiresIn time.Duration `json:"expires_in" yaml:"expires_in"`
	} `json:"panel_user_jwt_config" yaml:"panel_user_jwt_config"`

	// API keys accepted for service-to-service calls (status reports)
	APIKeys []string `json:"api_keys" yaml:"api_keys"`

	EnrollmentConfig struct {
		LinkSecret string        `json:"link_secret" yaml:"link_secret"`
		SessionTTL time.Duration `json:"session_ttl" yaml:"session_ttl"`
	} `json:"enrollment_config" yaml:"enrollment_config"`

	GeoLookup geoip.ResolverConfig `json:"geo_lookup" yaml:"geo_lookup"`

	// Marketplace backends; names must match the known marketplace identifiers
	Marketplaces []MarketplaceClientConfigYaml `json:"marketplaces" yaml:"marketplaces"`

	// DB configs
	DBConfigs struct {
		EnrollmentDB db.DBConfigYaml `json:"enrollment_db" yaml:"enrollment_db"`
	} `json:"db_configs" yaml:"db_configs"`
}

var (
	enrollmentDBService *enrollmentDB.EnrollmentDBService
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(
		conf.Logging.LogLevel,
		conf.Logging.IncludeSrc,
		conf.Logging.LogToFile,
		conf.Logging.Filename,
		conf.Logging.MaxSize,
		conf.Logging.MaxAge,
		conf.Logging.MaxBackups,
		conf.Logging.CompressOldLogs,
		conf.Logging.IncludeBuildInfo,
	)

	// Override secrets from environment variables
	secretsOverride()

	// Init DBs
	initDBs()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_ENROLLMENT_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.EnrollmentDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_ENROLLMENT_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.EnrollmentDB.Password = dbPassword
	}

	if jwtSignKey := os.Getenv(ENV_PANEL_USER_JWT_SIGN_KEY); jwtSignKey != "" {
		conf.PanelUserJWTConfig.SignKey = jwtSignKey
	}

	if linkSecret := os.Getenv(ENV_ENROLLMENT_LINK_SECRET); linkSecret != "" {
		conf.EnrollmentConfig.LinkSecret = linkSecret
	}

	if geoAPIKey := os.Getenv(ENV_GEO_LOOKUP_API_KEY); geoAPIKey != "" {
		conf.GeoLookup.APIKey = geoAPIKey
	}

	// Override API keys for marketplace backends
	for i := range conf.Marketplaces {
		m := &conf.Marketplaces[i]

		// Skip if name is not defined
		if m.Name == "" {
			continue
		}

		envVarName := utils.GenerateExternalServiceAPIKeyEnvVarName(m.Name)
		if apiKey := os.Getenv(envVarName); apiKey != "" {
			m.APIKey = apiKey
		}
	}
}

func initDBs() {
	var err error
	enrollmentDBService, err = enrollmentDB.NewEnrollmentDBService(db.DBConfigFromYamlObj(conf.DBConfigs.EnrollmentDB, nil))
	if err != nil {
		slog.Error("Error connecting to Enrollment DB", slog.String("error", err.Error()))
		return
	}
}
