// Package config reads the settings of the service and the client from environment variables.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DefaultAPIURL is where the client looks for the service unless told otherwise.
const DefaultAPIURL = "http://localhost:8080"

// Service holds the settings of the persons service.
type Service struct {
	Port           string
	DBUser         string
	DBPassword     string
	DBHost         string
	DBName         string
	RequestLogging bool
}

// LoadService builds the service settings from the environment.
//
// Usage example:
// > PORT=8080 DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 DBNAME=test GIN_LOGGING=OFF
func LoadService() Service {
	return Service{
		Port:           getEnv("PORT", "8080"),
		DBUser:         os.Getenv("DBUSER"),
		DBPassword:     os.Getenv("DBPWD"),
		DBHost:         getEnv("DBHOST", "localhost:3306"),
		DBName:         getEnv("DBNAME", "test"),
		RequestLogging: !strings.EqualFold(os.Getenv("GIN_LOGGING"), "off"),
	}
}

// DSN returns the data source name for the MySQL driver. Timestamps are parsed into time.Time
// values in UTC, and UPDATE statements report matched rather than changed rows.
func (s Service) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = s.DBUser
	cfg.Passwd = s.DBPassword
	cfg.Net = "tcp"
	cfg.Addr = s.DBHost
	cfg.DBName = s.DBName
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	return cfg.FormatDSN()
}

// Client holds the settings of the command line client.
type Client struct {
	APIURL string
}

// LoadClient builds the client settings from the environment.
func LoadClient() Client {
	return Client{
		APIURL: getEnv("PERSONS_API_URL", DefaultAPIURL),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
