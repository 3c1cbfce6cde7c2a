package listings

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestForeignKeyViolationDetection(t *testing.T) {
	fk := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23503"})
	assert.True(t, isForeignKeyViolation(fk))

	unique := fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"})
	assert.False(t, isForeignKeyViolation(unique))

	assert.False(t, isForeignKeyViolation(fmt.Errorf("plain failure")))
}
