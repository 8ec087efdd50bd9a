package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"sync"
	"testing"
	"time"

	"tenant-service/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statementLog records the order in which matched statements ran
type statementLog struct {
	mu     sync.Mutex
	events []string
}

func (l *statementLog) add(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *statementLog) index(event string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.events {
		if e == event {
			return i
		}
	}
	return -1
}

// loggedArg matches one argument value and logs event when it does
type loggedArg struct {
	want  string
	event string
	log   *statementLog
}

func (a loggedArg) Match(v driver.Value) bool {
	if s, ok := v.(string); !ok || s != a.want {
		return false
	}
	a.log.add(a.event)
	return true
}

func TestRoleCreate_ConcurrentTenantsStayIsolated(t *testing.T) {
	pool, mock := setupMockPool(t)
	mock.MatchExpectationsInOrder(false)
	repo := NewPostgresRoleRepository(pool)
	log := &statementLog{}
	now := time.Now()

	tenants := map[string]string{
		"tenant_demo": "Demo Manager",
		"tenant_acme": "Acme Manager",
	}
	for schema, name := range tenants {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT set_config('search_path'")).
			WithArgs(loggedArg{want: schema, event: "bind:" + schema, log: log}).
			WillReturnRows(sqlmock.NewRows([]string{"set_config"}).AddRow(schema))
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO roles (name, description) VALUES ($1, $2)")).
			WithArgs(loggedArg{want: name, event: "insert:" + schema, log: log}, "").
			WillReturnRows(sqlmock.NewRows(roleCols).AddRow(1, name, "", now, now))
		expectReset(mock)
	}

	start := make(chan struct{})
	results := make(map[string]Result[model.Role], len(tenants))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for schema, name := range tenants {
		wg.Add(1)
		go func(schema, name string) {
			defer wg.Done()
			<-start
			res, err := repo.Create(context.Background(), schema, model.CreateRoleDTO{Name: name})
			assert.NoError(t, err, schema)
			mu.Lock()
			results[schema] = res
			mu.Unlock()
		}(schema, name)
	}
	close(start)
	wg.Wait()

	for schema, name := range tenants {
		res := results[schema]
		require.True(t, res.Success, schema)
		assert.Equal(t, name, res.Data.Name, "%s got another tenant's row", schema)

		bind, insert := log.index("bind:"+schema), log.index("insert:"+schema)
		require.NotEqual(t, -1, bind, schema)
		require.NotEqual(t, -1, insert, schema)
		assert.Less(t, bind, insert, "%s insert ran before its search_path was bound", schema)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
