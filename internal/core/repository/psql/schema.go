package psql

import (
	"context"
	"fmt"

	"github.com/duynhne/client-service/internal/core/domain"
)

const (
	emailUniqueConstraint = "clients_email_unique"
	emailFormatConstraint = "clients_email_format"
	phoneUniqueConstraint = "phones_number_unique"
)

var createClientsTable = fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS clients (
    id      BIGSERIAL PRIMARY KEY,
    name    VARCHAR(%[1]d) NOT NULL,
    surname VARCHAR(%[1]d) NOT NULL,
    email   VARCHAR(%[2]d) NOT NULL,
    CONSTRAINT %[3]s UNIQUE (email),
    CONSTRAINT %[4]s CHECK (email ~* '%[5]s')
)`, domain.MaxNameLength, domain.MaxEmailLength, emailUniqueConstraint, emailFormatConstraint, domain.EmailPattern)

const createPhonesIndex = `CREATE INDEX IF NOT EXISTS phones_client_idx ON phones (client)`

// phonesTableDDL returns the phones table definition. The UNIQUE constraint
// on number is present only in strict mode.
func phonesTableDDL(uniquePhones bool) string {
	unique := ""
	if uniquePhones {
		unique = fmt.Sprintf(",\n    CONSTRAINT %s UNIQUE (number)", phoneUniqueConstraint)
	}
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS phones (
    id     BIGSERIAL PRIMARY KEY,
    number BIGINT NOT NULL,
    client BIGINT NOT NULL REFERENCES clients (id) ON DELETE CASCADE%s
)`, unique)
}

// EnsureSchema creates the clients and phones tables if they are absent.
// It is idempotent and safe to call on every startup. Existing tables are
// never altered.
func (r *ClientRepository) EnsureSchema(ctx context.Context) error {
	return r.inTx(ctx, func(q DBTX) error {
		for _, stmt := range []string{createClientsTable, phonesTableDDL(r.opts.UniquePhones), createPhonesIndex} {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("ensure schema: %w", domain.StorageError(err))
			}
		}
		return nil
	})
}
