package database

import (
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
)

var schemaNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// ValidateSchemaName rejects anything that is not a plain lower-case identifier
func ValidateSchemaName(name string) error {
	if !schemaNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidSchemaName, name)
	}
	return nil
}

// Table returns the quoted, schema qualified name of a table
func Table(schema, table string) string {
	return pgx.Identifier{schema, table}.Sanitize()
}

// SeedRole is a role inserted into every new tenant schema
type SeedRole struct {
	Name        string
	Description string
}

// tenantTables is the relation layout shared by every tenant schema
var tenantTables = []string{
	`CREATE TABLE %[1]s.roles (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(50) NOT NULL,
		description VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX roles_name_key ON %[1]s.roles (lower(name))`,
	`CREATE TABLE %[1]s.users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		password_hash TEXT NOT NULL,
		first_name VARCHAR(100),
		last_name VARCHAR(100),
		role_id BIGINT REFERENCES %[1]s.roles (id) ON DELETE SET NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX users_email_key ON %[1]s.users (lower(email)) WHERE deleted_at IS NULL`,
	`CREATE INDEX users_role_id_idx ON %[1]s.users (role_id)`,
}

// ProvisionTenantSchema creates schema with the tenant table layout and seeds
// roles. It must run inside a transaction so a failure leaves nothing behind.
func ProvisionTenantSchema(c *Conn, schema string, seed []SeedRole) error {
	if err := ValidateSchemaName(schema); err != nil {
		return newError(KindBind, "provision", err)
	}
	ident := pgx.Identifier{schema}.Sanitize()

	if _, err := c.Exec("CREATE SCHEMA " + ident); err != nil {
		return err
	}
	for _, ddl := range tenantTables {
		if _, err := c.Exec(fmt.Sprintf(ddl, ident)); err != nil {
			return err
		}
	}

	for _, r := range seed {
		if _, err := c.Exec(
			"INSERT INTO "+Table(schema, "roles")+" (name, description) VALUES (?, ?)",
			r.Name, r.Description,
		); err != nil {
			return err
		}
	}
	return nil
}
