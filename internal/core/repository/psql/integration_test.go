package psql

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/client-service/internal/core/domain"
)

// newTestDB connects to TEST_DATABASE_URL and isolates the test in a fresh
// schema that is dropped on cleanup.
func newTestDB(t *testing.T, opts Options) (*ClientRepository, *pgx.Conn) {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping PostgreSQL integration test")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, url)
	require.NoError(t, err)

	schema := fmt.Sprintf("client_service_test_%d", time.Now().UnixNano())
	_, err = conn.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, "SET search_path TO "+schema)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		_ = conn.Close(context.Background())
	})

	repo := NewClientRepository(conn, opts)
	require.NoError(t, repo.EnsureSchema(ctx))
	// Second call must be a no-op.
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo, conn
}

func countRows(t *testing.T, conn *pgx.Conn, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

func TestIntegration_InvalidEmailRejectedByStorage(t *testing.T) {
	repo, conn := newTestDB(t, Options{UniquePhones: true})

	_, err := repo.CreateClient(context.Background(), "A", "B", "not-an-email", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	assert.Equal(t, 0, countRows(t, conn, "SELECT count(*) FROM clients"))
}

func TestIntegration_DuplicateEmail(t *testing.T) {
	repo, conn := newTestDB(t, Options{UniquePhones: true})
	ctx := context.Background()

	_, err := repo.CreateClient(ctx, "Ivan", "Ivanov", "iivanov@ya.ru", nil)
	require.NoError(t, err)

	_, err = repo.CreateClient(ctx, "Ivan", "Other", "iivanov@ya.ru", nil)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, 1, countRows(t, conn, "SELECT count(*) FROM clients"))
}

func TestIntegration_PhoneForMissingClient(t *testing.T) {
	repo, conn := newTestDB(t, Options{UniquePhones: true})

	_, err := repo.AddPhone(context.Background(), 4242, 777)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, countRows(t, conn, "SELECT count(*) FROM phones"))
}

func TestIntegration_PhoneUniqueness(t *testing.T) {
	ctx := context.Background()

	t.Run("strict", func(t *testing.T) {
		repo, _ := newTestDB(t, Options{UniquePhones: true})
		a, err := repo.CreateClient(ctx, "A", "A", "a@a.com", []int64{777})
		require.NoError(t, err)
		b, err := repo.CreateClient(ctx, "B", "B", "b@b.com", nil)
		require.NoError(t, err)

		_, err = repo.AddPhone(ctx, b, 777)
		assert.ErrorIs(t, err, domain.ErrPhoneExists)
		_, err = repo.AddPhone(ctx, a, 777)
		assert.ErrorIs(t, err, domain.ErrPhoneExists)
	})

	t.Run("loose", func(t *testing.T) {
		repo, conn := newTestDB(t, Options{UniquePhones: false})
		_, err := repo.CreateClient(ctx, "A", "A", "a@a.com", []int64{777})
		require.NoError(t, err)
		b, err := repo.CreateClient(ctx, "B", "B", "b@b.com", nil)
		require.NoError(t, err)

		_, err = repo.AddPhone(ctx, b, 777)
		require.NoError(t, err)
		assert.Equal(t, 2, countRows(t, conn, "SELECT count(*) FROM phones WHERE number = 777"))
	})
}

func TestIntegration_CreateClientRollsBackOnPhoneFailure(t *testing.T) {
	repo, conn := newTestDB(t, Options{UniquePhones: true})
	ctx := context.Background()

	_, err := repo.CreateClient(ctx, "A", "A", "a@a.com", []int64{777})
	require.NoError(t, err)

	_, err = repo.CreateClient(ctx, "B", "B", "b@b.com", []int64{888, 777})
	assert.ErrorIs(t, err, domain.ErrPhoneExists)
	assert.Equal(t, 0, countRows(t, conn, "SELECT count(*) FROM clients WHERE email = 'b@b.com'"))
	assert.Equal(t, 0, countRows(t, conn, "SELECT count(*) FROM phones WHERE number = 888"))
}

func TestIntegration_DeleteClientCascades(t *testing.T) {
	repo, conn := newTestDB(t, Options{UniquePhones: true})
	ctx := context.Background()

	id, err := repo.CreateClient(ctx, "Sidor", "Sidorov", "sidorov@example.com", []int64{111, 222})
	require.NoError(t, err)
	require.Equal(t, 2, countRows(t, conn, "SELECT count(*) FROM phones WHERE client = $1", id))

	require.NoError(t, repo.DeleteClient(ctx, id))
	assert.Equal(t, 0, countRows(t, conn, "SELECT count(*) FROM phones WHERE client = $1", id))
	assert.ErrorIs(t, repo.DeleteClient(ctx, id), domain.ErrClientNotFound)
}

func TestIntegration_UpdateOnlySuppliedFields(t *testing.T) {
	repo, _ := newTestDB(t, Options{UniquePhones: true})
	ctx := context.Background()

	id, err := repo.CreateClient(ctx, "Petr", "Petrov", "ppetrov@ya.ru", nil)
	require.NoError(t, err)

	c, err := repo.UpdateClient(ctx, id, domain.ClientUpdate{Surname: ptr("X")})
	require.NoError(t, err)
	assert.Equal(t, domain.Client{ID: id, Name: "Petr", Surname: "X", Email: "ppetrov@ya.ru"}, *c)

	_, err = repo.UpdateClient(ctx, id+1000, domain.ClientUpdate{Name: ptr("Nobody")})
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestIntegration_UpdateEmailConflicts(t *testing.T) {
	repo, _ := newTestDB(t, Options{UniquePhones: true})
	ctx := context.Background()

	_, err := repo.CreateClient(ctx, "A", "A", "a@a.com", nil)
	require.NoError(t, err)
	b, err := repo.CreateClient(ctx, "B", "B", "b@b.com", nil)
	require.NoError(t, err)

	_, err = repo.UpdateClient(ctx, b, domain.ClientUpdate{Email: ptr("a@a.com")})
	assert.ErrorIs(t, err, domain.ErrEmailExists)
	_, err = repo.UpdateClient(ctx, b, domain.ClientUpdate{Email: ptr("broken")})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestIntegration_DeletePhone(t *testing.T) {
	repo, conn := newTestDB(t, Options{UniquePhones: true})
	ctx := context.Background()

	id, err := repo.CreateClient(ctx, "Ivan", "Ivanov", "iivanov@ya.ru", []int64{777, 888})
	require.NoError(t, err)

	require.NoError(t, repo.DeletePhone(ctx, id, 777))
	assert.ErrorIs(t, repo.DeletePhone(ctx, id, 777), domain.ErrPhoneNotFound)
	assert.Equal(t, 1, countRows(t, conn, "SELECT count(*) FROM phones WHERE client = $1", id))
}

func TestIntegration_FindBySurname(t *testing.T) {
	repo, _ := newTestDB(t, Options{UniquePhones: true})
	ctx := context.Background()

	_, err := repo.CreateClient(ctx, "Ivan", "Ivanov", "iivanov@ya.ru", []int64{777})
	require.NoError(t, err)
	petr, err := repo.CreateClient(ctx, "Petr", "Petrov", "ppetrov@ya.ru", []int64{999, 555})
	require.NoError(t, err)
	nikolay, err := repo.CreateClient(ctx, "Nikolay", "Petrov", "npetrov@ya.ru", nil)
	require.NoError(t, err)

	rows, err := repo.FindClients(ctx, domain.Criteria{Surname: ptr("Petrov")})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, petr, rows[0].ID)
	assert.Equal(t, int64(999), *rows[0].Number)
	assert.Equal(t, petr, rows[1].ID)
	assert.Equal(t, int64(555), *rows[1].Number)
	assert.Equal(t, nikolay, rows[2].ID)
	assert.Nil(t, rows[2].Number)
	assert.Nil(t, rows[2].PhoneID)
}

func TestIntegration_FindRoundTrip(t *testing.T) {
	repo, _ := newTestDB(t, Options{UniquePhones: true})
	ctx := context.Background()

	id, err := repo.CreateClient(ctx, "A", "B", "a@b.com", nil)
	require.NoError(t, err)

	rows, err := repo.FindClients(ctx, domain.Criteria{Email: ptr("a@b.com")})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.Client{ID: id, Name: "A", Surname: "B", Email: "a@b.com"}, rows[0].Client)

	rows, err = repo.FindClients(ctx, domain.Criteria{Email: ptr("a@b.com"), Number: ptr(int64(1))})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestIntegration_ListClients(t *testing.T) {
	repo, _ := newTestDB(t, Options{UniquePhones: true})
	ctx := context.Background()

	rows, err := repo.ListClients(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	first, err := repo.CreateClient(ctx, "Ivan", "Ivanov", "ivanov@example.com", []int64{79991112233})
	require.NoError(t, err)
	second, err := repo.CreateClient(ctx, "Petr", "Petrov", "petrov@example.com", nil)
	require.NoError(t, err)

	rows, err = repo.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, first, rows[0].ID)
	assert.Equal(t, int64(79991112233), *rows[0].Number)
	assert.Equal(t, second, rows[1].ID)
	assert.Nil(t, rows[1].Number)
}

func TestIntegration_ConcurrentDuplicateEmail(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	_, conn := newTestDB(t, Options{UniquePhones: true})
	ctx := context.Background()

	var schema string
	require.NoError(t, conn.QueryRow(ctx, "SELECT current_schema()").Scan(&schema))

	const writers = 4
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := pgx.Connect(ctx, url)
			if err != nil {
				errs[i] = err
				return
			}
			defer c.Close(ctx)
			if _, err := c.Exec(ctx, "SET search_path TO "+schema); err != nil {
				errs[i] = err
				return
			}
			_, errs[i] = NewClientRepository(c, Options{UniquePhones: true}).
				CreateClient(ctx, "Racer", "Racer", "race@example.com", nil)
		}()
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrDuplicate):
			dup++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, writers-1, dup)
	assert.Equal(t, 1, countRows(t, conn, "SELECT count(*) FROM clients"))
}
