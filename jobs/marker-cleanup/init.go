package main

import (
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/panel-framework/panel-backend/pkg/db"
	enrollmentDB "github.com/panel-framework/panel-backend/pkg/db/enrollment"
	"github.com/panel-framework/panel-backend/pkg/utils"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_ENROLLMENT_DB_USERNAME = "ENROLLMENT_DB_USERNAME"
	ENV_ENROLLMENT_DB_PASSWORD = "ENROLLMENT_DB_PASSWORD"
)

// Markers older than this are safe to drop, the marketplaces close their
// projects long before.
const DEFAULT_MARKER_RETENTION = 180 * 24 * time.Hour

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// DB configs
	DBConfigs struct {
		EnrollmentDB db.DBConfigYaml `json:"enrollment_db" yaml:"enrollment_db"`
	} `json:"db_configs" yaml:"db_configs"`

	CleanUpConfig struct {
		MarkerRetention time.Duration `json:"marker_retention" yaml:"marker_retention"`
	} `json:"clean_up_config" yaml:"clean_up_config"`
}

var conf config

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

	// init db
	initDBs()
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_ENROLLMENT_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.EnrollmentDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_ENROLLMENT_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.EnrollmentDB.Password = dbPassword
	}
}

func initDBs() {
	var err error
	enrollmentDBService, err = enrollmentDB.NewEnrollmentDBService(db.DBConfigFromYamlObj(conf.DBConfigs.EnrollmentDB, nil))
	if err != nil {
		slog.Error("Error connecting to Enrollment DB", slog.String("error", err.Error()))
		panic(err)
	}
}
