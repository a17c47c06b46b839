package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

const schemaFile = "../../../../migrations/000001_payroll_engine.up.sql"

// TestDatabaseSetup holds a connection to the integration database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema. The
// test is skipped when no database is configured.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL integration test")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn)
	require.NoError(t, err, "failed to connect to test database")

	schema, err := os.ReadFile(schemaFile)
	require.NoError(t, err)
	_, err = db.Exec(ctx, string(schema))
	require.NoError(t, err, "failed to apply schema")

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(ctx))
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes every row from the payroll schema.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"advance_installments",
		"salary_records",
		"advance_payments",
		"leave_requests",
		"attendances",
		"employees",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// Close closes the database connection.
func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}

func (s *TestDatabaseSetup) createEmployee(t *testing.T, code string, baseSalary *string) string {
	t.Helper()
	var id string
	err := s.DB.QueryRow(context.Background(), `
		INSERT INTO employees (employee_code, full_name, base_salary)
		VALUES ($1, $2, $3::numeric)
		RETURNING id
	`, code, "Employee "+code, baseSalary).Scan(&id)
	require.NoError(t, err)
	return id
}

func (s *TestDatabaseSetup) createAttendance(t *testing.T, employeeID, date string, present, halfDay, overtime bool) {
	t.Helper()
	_, err := s.DB.Exec(context.Background(), `
		INSERT INTO attendances (employee_id, date, is_present, is_half_day, is_overtime, status)
		VALUES ($1, $2::date, $3, $4, $5, 'APPROVED')
	`, employeeID, date, present, halfDay, overtime)
	require.NoError(t, err)
}

func (s *TestDatabaseSetup) createAdvance(t *testing.T, employeeID, amount, emi string) string {
	t.Helper()
	var id string
	err := s.DB.QueryRow(context.Background(), `
		INSERT INTO advance_payments (employee_id, amount, emi_amount, remaining_amount, status)
		VALUES ($1, $2::numeric, $3::numeric, $2::numeric, 'APPROVED')
		RETURNING id
	`, employeeID, amount, emi).Scan(&id)
	require.NoError(t, err)
	return id
}
