// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

// Package sqlconn adapts database/sql drivers to warehouse sessions. Every Dial pins one
// physical connection, so session state set on it stays put until it is closed.
package sqlconn

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/LerianStudio/warehouse-pool/pkg/warehouse"
)

// Dialer opens dedicated connections from a *sql.DB.
type Dialer struct {
	db *sql.DB
}

// New wraps connector. The database/sql pool keeps no idle connections of its own:
// idle management belongs to the warehouse pool, and a closed session must really close.
func New(connector driver.Connector) *Dialer {
	db := sql.OpenDB(connector)
	db.SetMaxIdleConns(0)

	return &Dialer{db: db}
}

// FromDB wraps an already configured *sql.DB.
func FromDB(db *sql.DB) *Dialer {
	return &Dialer{db: db}
}

// Dial checks out one physical connection.
func (d *Dialer) Dial(ctx context.Context) (warehouse.Conn, error) {
	c, err := d.db.Conn(ctx)
	if err != nil {
		return nil, err
	}

	return &Conn{conn: c}, nil
}

// Close closes the underlying *sql.DB.
func (d *Dialer) Close() error {
	return d.db.Close()
}

// Conn is one pinned database/sql connection.
type Conn struct {
	conn *sql.Conn
}

// Query runs query and returns every row keyed by column name.
func (c *Conn) Query(ctx context.Context, query string, args ...any) ([]warehouse.Row, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// Close gives the connection back to database/sql, which closes it.
func (c *Conn) Close() error {
	return c.conn.Close()
}

func scanRows(rows *sql.Rows) ([]warehouse.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("error getting column names: %w", err)
	}

	values := make([]any, len(columns))
	pointers := make([]any, len(columns))

	for i := range values {
		pointers[i] = &values[i]
	}

	result := make([]warehouse.Row, 0)

	for rows.Next() {
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(warehouse.Row, len(columns))
		for i, column := range columns {
			row[column] = normalize(values[i])
		}

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// normalize copies driver-owned byte slices, which are only valid until the next Scan.
func normalize(value any) any {
	if b, ok := value.([]byte); ok {
		return string(b)
	}

	return value
}
