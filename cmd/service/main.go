package main

import (
	"log"
	"strconv"

	"gitlab.com/dirk.krummacker/persons/internal/config"
	"gitlab.com/dirk.krummacker/persons/internal/service"
)

// Usage example on the command line:
// > PORT=8080 DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 DBNAME=test GIN_MODE=release GIN_LOGGING=OFF go run main.go
func main() {
	cfg := config.LoadService()
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		log.Fatalln("could not parse PORT env variable", err)
	}

	sqlDB := service.CreateDatabase(cfg)
	defer sqlDB.Close()
	service.SetupDatabaseWrapper(sqlDB)
	router := service.SetupHttpRouter(cfg.RequestLogging)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalln(err)
	}
}
