package psql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/duynhne/client-service/internal/core/domain"
)

// DBTX is the subset of pgx shared by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Options selects the directory's strictness.
type Options struct {
	// UniquePhones rejects a phone number already registered to any client.
	UniquePhones bool
}

// ClientRepository implements domain.ClientRepository using PostgreSQL.
//
// Every check-then-act is a single conditional statement, so concurrent
// writers cannot slip between an existence check and the write. A constraint
// violation that still surfaces is reclassified by classify.
type ClientRepository struct {
	db   DBTX
	opts Options
}

var _ domain.ClientRepository = (*ClientRepository)(nil)

// NewClientRepository creates a new PostgreSQL client repository
func NewClientRepository(db DBTX, opts Options) *ClientRepository {
	return &ClientRepository{db: db, opts: opts}
}

const (
	insertClientQuery = `INSERT INTO clients (name, surname, email)
VALUES ($1, $2, $3)
ON CONFLICT DO NOTHING
RETURNING id`

	insertPhoneQuery = `INSERT INTO phones (number, client)
SELECT $1::bigint, c.id FROM clients c WHERE c.id = $2::bigint
ON CONFLICT DO NOTHING
RETURNING id`

	clientExistsQuery = `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)`

	getClientQuery = `SELECT id, name, surname, email FROM clients WHERE id = $1`

	updateClientQuery = `UPDATE clients
   SET name    = COALESCE($2::text, name),
       surname = COALESCE($3::text, surname),
       email   = COALESCE($4::text, email)
 WHERE id = $1
RETURNING id, name, surname, email`

	deletePhoneQuery = `DELETE FROM phones WHERE client = $1 AND number = $2`

	deleteClientQuery = `DELETE FROM clients WHERE id = $1`

	selectJoinQuery = `SELECT c.id, c.name, c.surname, c.email, p.id, p.number
  FROM clients c
  FULL OUTER JOIN phones p ON p.client = c.id`

	findClientsQuery = selectJoinQuery + `
 WHERE (c.name = $1::text OR $1::text IS NULL)
   AND (c.surname = $2::text OR $2::text IS NULL)
   AND (c.email = $3::text OR $3::text IS NULL)
   AND (p.number = $4::bigint OR $4::bigint IS NULL)
 ORDER BY c.id, p.id`

	listClientsQuery = selectJoinQuery + `
 ORDER BY c.id, p.id`
)

// CreateClient inserts a client and its phones in one transaction and
// returns the generated client id. The client is not created if any phone
// is rejected.
func (r *ClientRepository) CreateClient(ctx context.Context, name, surname, email string, phones []int64) (int64, error) {
	var clientID int64
	err := r.inTx(ctx, func(q DBTX) error {
		err := q.QueryRow(ctx, insertClientQuery, name, surname, email).Scan(&clientID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("insert client %q: %w", email, domain.ErrEmailExists)
			}
			return fmt.Errorf("insert client %q: %w", email, classify(err))
		}

		for _, number := range phones {
			if _, err := r.addPhone(ctx, q, clientID, number); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return clientID, nil
}

// AddPhone registers number for an existing client and returns the phone id.
func (r *ClientRepository) AddPhone(ctx context.Context, clientID, number int64) (int64, error) {
	return r.addPhone(ctx, r.db, clientID, number)
}

func (r *ClientRepository) addPhone(ctx context.Context, q DBTX, clientID, number int64) (int64, error) {
	var phoneID int64
	err := q.QueryRow(ctx, insertPhoneQuery, number, clientID).Scan(&phoneID)
	if err == nil {
		return phoneID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("insert phone %d for client %d: %w", number, clientID, classify(err))
	}

	// Nothing inserted: either the client is missing or the number is taken.
	var exists bool
	if err := q.QueryRow(ctx, clientExistsQuery, clientID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check client %d: %w", clientID, classify(err))
	}
	if !exists {
		return 0, fmt.Errorf("insert phone %d for client %d: %w", number, clientID, domain.ErrClientNotFound)
	}
	return 0, fmt.Errorf("insert phone %d for client %d: %w", number, clientID, domain.ErrPhoneExists)
}

// GetClient retrieves a client by id
func (r *ClientRepository) GetClient(ctx context.Context, clientID int64) (*domain.Client, error) {
	var c domain.Client
	err := r.db.QueryRow(ctx, getClientQuery, clientID).Scan(&c.ID, &c.Name, &c.Surname, &c.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get client %d: %w", clientID, domain.ErrClientNotFound)
		}
		return nil, fmt.Errorf("get client %d: %w", clientID, classify(err))
	}
	return &c, nil
}

// UpdateClient writes only the supplied fields and returns the refreshed record.
func (r *ClientRepository) UpdateClient(ctx context.Context, clientID int64, upd domain.ClientUpdate) (*domain.Client, error) {
	if upd.IsEmpty() {
		return r.GetClient(ctx, clientID)
	}

	var c domain.Client
	err := r.db.QueryRow(ctx, updateClientQuery, clientID, upd.Name, upd.Surname, upd.Email).
		Scan(&c.ID, &c.Name, &c.Surname, &c.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("update client %d: %w", clientID, domain.ErrClientNotFound)
		}
		return nil, fmt.Errorf("update client %d: %w", clientID, classify(err))
	}
	return &c, nil
}

// DeletePhone removes number from a client
func (r *ClientRepository) DeletePhone(ctx context.Context, clientID, number int64) error {
	tag, err := r.db.Exec(ctx, deletePhoneQuery, clientID, number)
	if err != nil {
		return fmt.Errorf("delete phone %d for client %d: %w", number, clientID, classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete phone %d for client %d: %w", number, clientID, domain.ErrPhoneNotFound)
	}
	return nil
}

// DeleteClient removes a client; its phones go with it (ON DELETE CASCADE).
func (r *ClientRepository) DeleteClient(ctx context.Context, clientID int64) error {
	tag, err := r.db.Exec(ctx, deleteClientQuery, clientID)
	if err != nil {
		return fmt.Errorf("delete client %d: %w", clientID, classify(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete client %d: %w", clientID, domain.ErrClientNotFound)
	}
	return nil
}

// FindClients returns every (client, phone) pair matching all supplied criteria.
func (r *ClientRepository) FindClients(ctx context.Context, c domain.Criteria) ([]domain.ClientPhone, error) {
	rows, err := r.db.Query(ctx, findClientsQuery, c.Name, c.Surname, c.Email, c.Number)
	if err != nil {
		return nil, fmt.Errorf("find clients: %w", classify(err))
	}
	return collectClientPhones(rows)
}

// ListClients returns every (client, phone) pair ordered by client id.
func (r *ClientRepository) ListClients(ctx context.Context) ([]domain.ClientPhone, error) {
	rows, err := r.db.Query(ctx, listClientsQuery)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", classify(err))
	}
	return collectClientPhones(rows)
}

func collectClientPhones(rows pgx.Rows) ([]domain.ClientPhone, error) {
	defer rows.Close()

	result := []domain.ClientPhone{}
	for rows.Next() {
		// Client columns are nullable on the phone side of a full outer join.
		var (
			id                   *int64
			name, surname, email *string
			row                  domain.ClientPhone
		)
		if err := rows.Scan(&id, &name, &surname, &email, &row.PhoneID, &row.Number); err != nil {
			return nil, fmt.Errorf("scan client row: %w", domain.StorageError(err))
		}
		if id != nil {
			row.ID = *id
		}
		if name != nil {
			row.Name = *name
		}
		if surname != nil {
			row.Surname = *surname
		}
		if email != nil {
			row.Email = *email
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read client rows: %w", classify(err))
	}
	return result, nil
}

// inTx runs fn inside a transaction, committing on success.
func (r *ClientRepository) inTx(ctx context.Context, fn func(q DBTX) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", domain.StorageError(err))
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", classify(err))
	}
	return nil
}
