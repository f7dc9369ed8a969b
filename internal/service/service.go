package service

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/persons/internal/config"
	"gitlab.com/dirk.krummacker/persons/pkg/model"
	"gitlab.com/dirk.krummacker/persons/pkg/validation"
)

// columns are the columns of the persons table in the order of the model.
const columns = `id, first_name, last_name, email, phone_number, age, description, created_at, updated_at`

// errDuplicateEntry is the MySQL error number for a violated unique key.
const errDuplicateEntry = 1062

// db is a handle to the database.
var db *sqlx.DB

// insert is a prepared statement for creating a person on the database.
var insert *sqlx.NamedStmt

// update is a prepared statement for replacing the editable fields of a person.
var update *sqlx.NamedStmt

// selectAll is a prepared statement for selecting the whole collection.
var selectAll *sqlx.Stmt

// selectWhereId is a prepared statement for selecting the person with a given id.
var selectWhereId *sqlx.Stmt

// selectWhereEmail is a prepared statement for selecting the person with a given email.
var selectWhereEmail *sqlx.Stmt

// selectWhereLastName is a prepared statement for selecting persons with a given last name.
var selectWhereLastName *sqlx.Stmt

// selectWhereAgeAbove is a prepared statement for selecting persons older than a given age.
var selectWhereAgeAbove *sqlx.Stmt

// countWhereEmail is a prepared statement for counting other persons that use an email.
var countWhereEmail *sqlx.Stmt

// deleteWhereId is a prepared statement for deleting the person with a given id.
var deleteWhereId *sqlx.Stmt

// now returns the timestamp for createdAt and updatedAt. The database stores microseconds.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// CreateDatabase initializes and returns a database connection with the given settings.
func CreateDatabase(cfg config.Service) *sql.DB {
	sqlDB, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}
	return sqlDB
}

// SetupDatabaseWrapper initializes the sqlx database wrapper with the specified sql database. It
// then prepares all statements. The database argument can be a real database for production use
// or a mock database within unit tests.
func SetupDatabaseWrapper(sqlDB *sql.DB) {
	db = sqlx.NewDb(sqlDB, "mysql")

	// Prepared statements offer a significant speed increase if executed many times.
	insert = prepareNamed(`
		INSERT INTO persons (first_name, last_name, email, phone_number, age, description, created_at, updated_at)
		VALUES (:first_name, :last_name, :email, :phone_number, :age, :description, :created_at, :updated_at)
	`)
	update = prepareNamed(`
		UPDATE persons
		SET first_name = :first_name, last_name = :last_name, email = :email,
			phone_number = :phone_number, age = :age, description = :description,
			updated_at = :updated_at
		WHERE id = :id
	`)
	selectAll = prepare(`SELECT ` + columns + ` FROM persons ORDER BY id`)
	selectWhereId = prepare(`SELECT ` + columns + ` FROM persons WHERE id = ?`)
	selectWhereEmail = prepare(`SELECT ` + columns + ` FROM persons WHERE email = ?`)
	selectWhereLastName = prepare(`SELECT ` + columns + ` FROM persons WHERE last_name = ? ORDER BY id`)
	selectWhereAgeAbove = prepare(`SELECT ` + columns + ` FROM persons WHERE age > ? ORDER BY id`)
	countWhereEmail = prepare(`SELECT COUNT(*) FROM persons WHERE email = ? AND id <> ?`)
	deleteWhereId = prepare(`DELETE FROM persons WHERE id = ?`)
}

func prepare(query string) *sqlx.Stmt {
	stmt, err := db.Preparex(query)
	if err != nil {
		log.Fatal(err)
	}
	return stmt
}

func prepareNamed(query string) *sqlx.NamedStmt {
	stmt, err := db.PrepareNamed(query)
	if err != nil {
		log.Fatal(err)
	}
	return stmt
}

// SetupHttpRouter initializes the REST API router and registers all endpoints. Request logging
// can be switched off; panics are always recovered.
func SetupHttpRouter(requestLogging bool) *gin.Engine {
	var router *gin.Engine
	if requestLogging {
		router = gin.Default()
	} else {
		log.Println("Turning off HTTP request logging.")
		router = gin.New()
		router.Use(gin.Recovery())
	}
	persons := router.Group("/api/persons")
	persons.GET("", findAllPersons)
	persons.POST("", createPerson)
	persons.GET("/:id", findPersonByID)
	persons.PUT("/:id", updatePersonByID)
	persons.DELETE("/:id", deletePersonByID)
	persons.GET("/email/:email", findPersonByEmail)
	persons.GET("/search/lastname", searchPersonsByLastName)
	persons.GET("/filter/age", findPersonsOlderThan)
	return router
}

// abortWithInternalError logs the cause and answers with a generic message.
func abortWithInternalError(c *gin.Context, err error) {
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
}

// parseId reads the id URL parameter. Ids that are no positive numbers cannot exist, so they
// are answered with NOT FOUND.
func parseId(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "invalid id parameter"})
		return 0, false
	}
	return id, true
}

// bindFields reads and validates the editable fields from the request body. Id and timestamps
// in the body are ignored.
func bindFields(c *gin.Context) (model.PersonFields, bool) {
	var fields model.PersonFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return fields, false
	}
	if violations := validation.ValidateFields(fields); len(violations) > 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"message": "validation failed",
			"errors":  violations,
		})
		return fields, false
	}
	return fields, true
}

// emailInUse reports whether a person other than the one with the given id uses the email. Pass
// 0 as id for new persons.
func emailInUse(email string, id int64) (bool, error) {
	var count int
	if err := countWhereEmail.Get(&count, email, id); err != nil {
		return false, err
	}
	return count > 0, nil
}

// isDuplicateEntry reports whether err is a violated unique key, which happens when two
// requests race for the same email.
func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == errDuplicateEntry
}

// findAllPersons responds with the list of all persons as JSON, ordered by id. An empty
// collection is an empty list.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/persons
func findAllPersons(c *gin.Context) {
	persons := []model.Person{}
	if err := selectAll.Select(&persons); err != nil {
		abortWithInternalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, persons)
}

// createPerson inserts the person specified in the request's JSON into the database. It responds
// with the full person including the newly assigned id and timestamps.
//
// The request is rejected with BAD REQUEST if the JSON is invalid, a field violates its rules, or
// the email is used by another person.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/persons --request "POST" --include --header "Content-Type: application/json" --data '{"firstName": "Ada", "lastName": "Lovelace", "email": "ada@x.org", "description": ""}'
func createPerson(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}
	inUse, err := emailInUse(fields.Email, 0)
	if err != nil {
		abortWithInternalError(c, err)
		return
	}
	if inUse {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Person with email " + fields.Email + " already exists"})
		return
	}

	timestamp := now()
	newPerson := model.Person{CreatedAt: &timestamp, UpdatedAt: &timestamp}.WithFields(fields)
	result, err := insert.Exec(&newPerson)
	if isDuplicateEntry(err) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Person with email " + fields.Email + " already exists"})
		return
	}
	if err != nil {
		abortWithInternalError(c, err)
		return
	}
	id, err := result.LastInsertId()
	if err != nil {
		abortWithInternalError(c, err)
		return
	}
	newPerson.Id = id
	c.IndentedJSON(http.StatusCreated, newPerson)
}

// findPersonByID locates the person whose ID value matches the id parameter of the request URL,
// then returns that person as a response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/persons/56
func findPersonByID(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	var person model.Person
	err := selectWhereId.Get(&person, id)
	if errors.Is(err, sql.ErrNoRows) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "person not found"})
		return
	}
	if err != nil {
		abortWithInternalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, person)
}

// findPersonByEmail locates the person with the email given in the request URL.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/persons/email/ada@x.org
func findPersonByEmail(c *gin.Context) {
	var person model.Person
	err := selectWhereEmail.Get(&person, c.Param("email"))
	if errors.Is(err, sql.ErrNoRows) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "person not found"})
		return
	}
	if err != nil {
		abortWithInternalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, person)
}

// searchPersonsByLastName responds with all persons whose last name equals the 'lastname' URL
// parameter.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/api/persons/search/lastname?lastname=Lovelace"
func searchPersonsByLastName(c *gin.Context) {
	lastName, ok := c.GetQuery("lastname")
	if !ok || lastName == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "missing lastname parameter"})
		return
	}
	persons := []model.Person{}
	if err := selectWhereLastName.Select(&persons, lastName); err != nil {
		abortWithInternalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, persons)
}

// findPersonsOlderThan responds with all persons whose age is greater than the 'minAge' URL
// parameter. Persons without an age are never included.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/api/persons/filter/age?minAge=30"
func findPersonsOlderThan(c *gin.Context) {
	minAge, err := strconv.Atoi(c.Query("minAge"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid minAge parameter"})
		return
	}
	persons := []model.Person{}
	if err := selectWhereAgeAbove.Select(&persons, minAge); err != nil {
		abortWithInternalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, persons)
}

// updatePersonByID replaces all editable fields of the person whose ID value matches the id
// parameter of the request URL, and responds with the new version of the person. Fields missing
// from the JSON are cleared. The creation timestamp is kept, the update timestamp renewed.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/persons/56 --request "PUT" --include --header "Content-Type: application/json" --data '{"firstName": "Ada", "lastName": "King", "email": "ada@x.org", "age": 36}'
func updatePersonByID(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		return
	}

	var existing model.Person
	err := selectWhereId.Get(&existing, id)
	if errors.Is(err, sql.ErrNoRows) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "person not found"})
		return
	}
	if err != nil {
		abortWithInternalError(c, err)
		return
	}

	if existing.Email != fields.Email {
		inUse, err := emailInUse(fields.Email, id)
		if err != nil {
			abortWithInternalError(c, err)
			return
		}
		if inUse {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Email " + fields.Email + " is already in use"})
			return
		}
	}

	timestamp := now()
	updated := existing.WithFields(fields)
	updated.UpdatedAt = &timestamp
	result, err := update.Exec(&updated)
	if isDuplicateEntry(err) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Email " + fields.Email + " is already in use"})
		return
	}
	if err != nil {
		abortWithInternalError(c, err)
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		abortWithInternalError(c, err)
		return
	}
	if rowsAffected == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "person not found"})
		return
	}
	c.IndentedJSON(http.StatusOK, updated)
}

// deletePersonByID deletes the person whose ID value matches the id parameter of the request URL
// from the database. A successful deletion is answered with NO CONTENT.
//
// Example REST API call:
//
//	> curl http://localhost:8080/api/persons/56 --request "DELETE"
func deletePersonByID(c *gin.Context) {
	id, ok := parseId(c)
	if !ok {
		return
	}
	result, err := deleteWhereId.Exec(id)
	if err != nil {
		abortWithInternalError(c, err)
		return
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		abortWithInternalError(c, err)
		return
	}
	if rowsAffected == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "person not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
