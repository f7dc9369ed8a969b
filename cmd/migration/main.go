package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/persons/internal/config"
	"gitlab.com/dirk.krummacker/persons/internal/service"
)

// Usage example on the command line:
// > DBHOST=localhost:3306 DBUSER=dirk DBPWD=bullo92 go run main.go -file=../../scripts/database.sql
func main() {
	filePtr := flag.String("file", "scripts/database.sql", "the sql file to execute")
	flag.Parse()

	sqlDB := service.CreateDatabase(config.LoadService())
	db := sqlx.NewDb(sqlDB, "mysql")
	defer db.Close()

	readFile, err := os.Open(*filePtr) // nosemgrep
	if err != nil {
		log.Fatalln(err)
	}
	defer readFile.Close()

	// Statements may span several lines; a statement ends with the line holding its semicolon.
	fileScanner := bufio.NewScanner(readFile)
	fileScanner.Split(bufio.ScanLines)
	builder := strings.Builder{}
	executed := 0
	for fileScanner.Scan() {
		line := fileScanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		builder.WriteString(line)
		builder.WriteString(" ")
		if strings.Contains(line, ";") {
			db.MustExec(builder.String())
			executed++
			builder = strings.Builder{}
		}
	}
	if err := fileScanner.Err(); err != nil {
		log.Fatalln(err)
	}
	log.Printf("executed %d statements from %s", executed, *filePtr)
}
