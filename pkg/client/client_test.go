package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/persons/pkg/model"
)

// fakeBackend is an in-memory stand-in for the persons service. It records the raw bodies it
// receives so that tests can check what went over the wire.
type fakeBackend struct {
	mu       sync.Mutex
	nextId   int64
	persons  map[int64]model.Person
	received []map[string]interface{}
	clock    time.Time
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		nextId:  1,
		persons: map[int64]model.Person{},
		clock:   time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC),
	}
}

// tick advances the fake clock so that every write gets a later timestamp.
func (b *fakeBackend) tick() time.Time {
	b.clock = b.clock.Add(time.Second)
	return b.clock
}

func (b *fakeBackend) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.GET("/api/persons", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		persons := []model.Person{}
		for id := int64(1); id < b.nextId; id++ {
			if p, ok := b.persons[id]; ok {
				persons = append(persons, p)
			}
		}
		c.JSON(http.StatusOK, persons)
	})
	router.POST("/api/persons", func(c *gin.Context) {
		fields, ok := b.bind(c)
		if !ok {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		now := b.tick()
		p := model.Person{Id: b.nextId, CreatedAt: &now, UpdatedAt: &now}.WithFields(fields)
		b.persons[p.Id] = p
		b.nextId++
		c.JSON(http.StatusCreated, p)
	})
	router.GET("/api/persons/:id", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		p, ok := b.lookup(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, p)
	})
	router.PUT("/api/persons/:id", func(c *gin.Context) {
		fields, ok := b.bind(c)
		if !ok {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		p, ok := b.lookup(c)
		if !ok {
			return
		}
		now := b.tick()
		p = p.WithFields(fields)
		p.UpdatedAt = &now
		b.persons[p.Id] = p
		c.JSON(http.StatusOK, p)
	})
	router.DELETE("/api/persons/:id", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		p, ok := b.lookup(c)
		if !ok {
			return
		}
		delete(b.persons, p.Id)
		c.Status(http.StatusNoContent)
	})
	return router
}

func (b *fakeBackend) bind(c *gin.Context) (model.PersonFields, bool) {
	var raw map[string]interface{}
	if err := c.ShouldBindBodyWithJSON(&raw); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return model.PersonFields{}, false
	}
	var fields model.PersonFields
	if err := c.ShouldBindBodyWithJSON(&fields); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return model.PersonFields{}, false
	}
	b.mu.Lock()
	b.received = append(b.received, raw)
	b.mu.Unlock()
	return fields, true
}

func (b *fakeBackend) lookup(c *gin.Context) (model.Person, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "invalid id parameter"})
		return model.Person{}, false
	}
	p, ok := b.persons[id]
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "person not found"})
		return model.Person{}, false
	}
	return p, true
}

// startBackend serves a fresh fake backend and returns a client pointed at it.
func startBackend(t *testing.T) (*fakeBackend, *Client) {
	backend := newFakeBackend()
	server := httptest.NewServer(backend.router())
	t.Cleanup(server.Close)
	return backend, New(server.URL+"/", WithHTTPClient(server.Client()))
}

func adaFields() model.PersonFields {
	return model.PersonFields{FirstName: "Ada", LastName: "Lovelace", Email: "ada@x.org", Description: ""}
}

// TestCreateThenGet creates a person and reads it back. The submitted fields must be unchanged
// and the server-assigned fields present.
func TestCreateThenGet(t *testing.T) {
	backend, c := startBackend(t)
	ctx := context.Background()
	age := 36
	fields := adaFields()
	fields.Age = &age

	created, err := c.Create(ctx, fields)
	require.NoError(t, err)
	assert.NotZero(t, created.Id)
	assert.NotNil(t, created.CreatedAt)
	assert.NotNil(t, created.UpdatedAt)

	fetched, err := c.GetByID(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, fields, fetched.Fields())
	assert.Equal(t, created.Id, fetched.Id)
	assert.NotNil(t, fetched.CreatedAt)

	// the submitted payload must not carry server-assigned fields
	require.Len(t, backend.received, 1)
	assert.NotContains(t, backend.received[0], "id")
	assert.NotContains(t, backend.received[0], "createdAt")
	assert.NotContains(t, backend.received[0], "updatedAt")
}

// TestUpdateThenGet replaces the fields of a person and verifies that a later read reflects them
// with an updatedAt that is not earlier than before.
func TestUpdateThenGet(t *testing.T) {
	_, c := startBackend(t)
	ctx := context.Background()
	created, err := c.Create(ctx, adaFields())
	require.NoError(t, err)

	phone := "+44 20 7946 0000"
	replacement := model.PersonFields{
		FirstName:   "Augusta Ada",
		LastName:    "King",
		Email:       "countess@x.org",
		PhoneNumber: &phone,
		Description: "Countess of Lovelace",
	}
	updated, err := c.Update(ctx, created.Id, replacement)
	require.NoError(t, err)
	assert.Equal(t, replacement, updated.Fields())

	fetched, err := c.GetByID(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, replacement, fetched.Fields())
	assert.False(t, fetched.UpdatedAt.Before(*created.UpdatedAt))
	assert.Equal(t, *created.CreatedAt, *fetched.CreatedAt)
}

// TestDeleteThenGet deletes a person and expects the next read to report it as not found.
func TestDeleteThenGet(t *testing.T) {
	_, c := startBackend(t)
	ctx := context.Background()
	created, err := c.Create(ctx, adaFields())
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, created.Id))

	_, err = c.GetByID(ctx, created.Id)
	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound), "got %v", err)
	assert.Equal(t, created.Id, notFound.Id)

	err = c.Delete(ctx, created.Id)
	assert.Error(t, err)
}

// TestListAll verifies that an empty collection yields an empty, non-nil slice and that created
// persons show up in the list.
func TestListAll(t *testing.T) {
	_, c := startBackend(t)
	ctx := context.Background()

	persons, err := c.ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, persons)
	assert.Empty(t, persons)

	created, err := c.Create(ctx, adaFields())
	require.NoError(t, err)

	persons, err = c.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, persons, 1)
	assert.Equal(t, created.Id, persons[0].Id)
	assert.Equal(t, "Ada Lovelace", persons[0].FullName())
}

// TestTransportErrors checks how failing responses surface to the caller.
func TestTransportErrors(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.GET("/api/persons", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "database unavailable"})
	})
	router.POST("/api/persons", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Person with email ada@x.org already exists"})
	})
	router.GET("/api/persons/:id", func(c *gin.Context) {
		c.String(http.StatusOK, "not JSON")
	})
	server := httptest.NewServer(router)
	defer server.Close()
	c := New(server.URL)
	ctx := context.Background()

	_, err := c.ListAll(ctx)
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)
	assert.Equal(t, "database unavailable", transportErr.Message)
	assert.Equal(t, "list persons", transportErr.Op)

	_, err = c.Create(ctx, adaFields())
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusBadRequest, transportErr.StatusCode)
	assert.Equal(t, "Person with email ada@x.org already exists", transportErr.Message)

	_, err = c.GetByID(ctx, 3)
	require.True(t, errors.As(err, &transportErr))
	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
}

// TestUnreachableService checks that a connection failure is a TransportError without status.
func TestUnreachableService(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(url).ListAll(context.Background())
	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Zero(t, transportErr.StatusCode)
	assert.NotNil(t, transportErr.Err)
}

// TestCancelledContext checks that a cancelled context aborts the call.
func TestCancelledContext(t *testing.T) {
	_, c := startBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListAll(ctx)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
