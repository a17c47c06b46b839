package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/advance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jobs"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/lock"
	"github.com/cmlabs-hris/payroll-engine/internal/repository/memory"
	"github.com/cmlabs-hris/payroll-engine/internal/service/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalItems int64 `json:"total_items"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

type fakeEnqueuer struct {
	month, year int
}

func (f *fakeEnqueuer) EnqueueMonthlyGeneration(ctx context.Context, month, year int) (jobs.EnqueueResult, error) {
	f.month, f.year = month, year
	return jobs.EnqueueResult{TaskID: jobs.GenerateMonthlyTaskID(month, year), Queue: jobs.QueueDefault}, nil
}

type testServer struct {
	handler http.Handler
	store   *memory.Store
	token   string
}

func newTestServer(t *testing.T, enqueuer jobs.Enqueuer, rateLimit int) *testServer {
	t.Helper()
	store := memory.NewStore()
	svc := payroll.NewPayrollService(
		memory.NewTransactor(store),
		memory.NewSalaryRepository(store),
		memory.NewInstallmentRepository(store),
		memory.NewAdvanceRepository(store),
		memory.NewEmployeeRepository(store),
		memory.NewAttendanceRepository(store),
		memory.NewLeaveRequestRepository(store),
		lock.NewLocal(),
		payroll.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	jwtService := jwt.NewJWTService(handlerTestSecret, "1h")
	token, _, err := jwtService.GenerateAccessToken("user-admin", "admin@example.com")
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		AppName:           "payroll-engine-test",
		Env:               "test",
		AllowedOrigins:    []string{"http://localhost:3000"},
		GenerateRateLimit: rateLimit,
	}, jwtService, NewPayrollHandler(svc, enqueuer))

	return &testServer{handler: router, store: store, token: token}
}

func (s *testServer) seedEmployee(t *testing.T) {
	t.Helper()
	base := decimal.NewFromInt(30000)
	s.store.AddEmployee(employee.Employee{
		ID:           "emp-1",
		EmployeeCode: "E001",
		FullName:     "Ari Wibowo",
		BaseSalary:   &base,
		IsActive:     true,
	})
	var rows []attendance.AttendanceRecord
	for d := 1; d <= 20; d++ {
		rows = append(rows, attendance.AttendanceRecord{
			EmployeeID: "emp-1",
			Date:       time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC),
			IsPresent:  true,
			Status:     attendance.ApprovalStatusApproved,
		})
	}
	s.store.AddAttendance(rows...)
	s.store.AddAdvance(advance.AdvancePayment{
		ID:              "adv-1",
		EmployeeID:      "emp-1",
		Amount:          decimal.NewFromInt(10000),
		EMIAmount:       decimal.NewFromInt(2000),
		RemainingAmount: decimal.NewFromInt(10000),
		Status:          advance.AdvanceStatusApproved,
	})
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (s *testServer) firstSalary(t *testing.T) salary.SalaryRecordResponse {
	t.Helper()
	rec, env := s.do(t, http.MethodGet, "/api/v1/payroll/salaries?month=6&year=2024", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []salary.SalaryRecordResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)

	rec, env = s.do(t, http.MethodGet, "/api/v1/payroll/salaries/"+list[0].ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var full salary.SalaryRecordResponse
	require.NoError(t, json.Unmarshal(env.Data, &full))
	return full
}

func TestPayrollRoutes_RequireToken(t *testing.T) {
	s := newTestServer(t, nil, 10)
	s.token = ""

	rec, env := s.do(t, http.MethodGet, "/api/v1/payroll/salaries", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
}

func TestPayrollRoutes_RejectForeignToken(t *testing.T) {
	s := newTestServer(t, nil, 10)
	foreign, _, err := jwt.NewJWTService("another-secret", "1h").GenerateAccessToken("user-x", "x@example.com")
	require.NoError(t, err)
	s.token = foreign

	rec, _ := s.do(t, http.MethodGet, "/api/v1/payroll/salaries", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerateMonthly_AndDecideInstallment(t *testing.T) {
	s := newTestServer(t, nil, 10)
	s.seedEmployee(t)

	rec, env := s.do(t, http.MethodPost, "/api/v1/payroll/salaries/generate", map[string]int{"month": 6, "year": 2024})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result salary.GenerateResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Skipped)

	rec0 := s.firstSalary(t)
	require.Len(t, rec0.Installments, 1)
	inst := rec0.Installments[0]
	assert.Equal(t, string(advance.InstallmentStatusPending), inst.Status)
	assert.True(t, inst.AmountPaid.Equal(decimal.NewFromInt(2000)))

	path := "/api/v1/payroll/salaries/" + rec0.ID + "/installments/" + inst.ID + "/decision"
	rec, env = s.do(t, http.MethodPost, path, map[string]string{"action": "APPROVE"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var decided salary.SalaryRecordResponse
	require.NoError(t, json.Unmarshal(env.Data, &decided))
	assert.True(t, decided.AdvanceDeduction.Equal(decimal.NewFromInt(2000)))
	assert.True(t, decided.NetSalary.Equal(decided.PresentEarnings.Add(decided.LeaveSalary).Add(decided.OvertimeBonus).Sub(decimal.NewFromInt(2000))))
	require.Len(t, decided.Installments, 1)
	require.NotNil(t, decided.Installments[0].ApprovedBy)
	assert.Equal(t, "user-admin", *decided.Installments[0].ApprovedBy)

	// deciding again conflicts
	rec, env = s.do(t, http.MethodPost, path, map[string]string{"action": "APPROVE"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	rec, env = s.do(t, http.MethodGet, "/api/v1/payroll/advances?employee_id=emp-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var advances []advance.AdvanceResponse
	require.NoError(t, json.Unmarshal(env.Data, &advances))
	require.Len(t, advances, 1)
	assert.True(t, advances[0].RemainingAmount.Equal(decimal.NewFromInt(8000)))
}

func TestGenerateMonthly_Validation(t *testing.T) {
	s := newTestServer(t, nil, 10)

	rec, env := s.do(t, http.MethodPost, "/api/v1/payroll/salaries/generate", map[string]int{"month": 13, "year": 2024})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "month")
}

func TestGenerateMonthly_MalformedBody(t *testing.T) {
	s := newTestServer(t, nil, 10)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/salaries/generate", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateMonthly_RateLimited(t *testing.T) {
	s := newTestServer(t, nil, 1)

	rec, _ := s.do(t, http.MethodPost, "/api/v1/payroll/salaries/generate", map[string]int{"month": 6, "year": 2024})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := s.do(t, http.MethodPost, "/api/v1/payroll/salaries/generate", map[string]int{"month": 6, "year": 2024})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "TOO_MANY_REQUESTS", env.Error.Code)
}

func TestGenerateSalary_SingleEmployee(t *testing.T) {
	s := newTestServer(t, nil, 10)
	s.seedEmployee(t)

	rec, env := s.do(t, http.MethodPost, "/api/v1/payroll/employees/emp-1/salaries/generate", map[string]int{"month": 6, "year": 2024})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp salary.GenerateSalaryResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.NotNil(t, resp.Salary)
	assert.Equal(t, "emp-1", resp.Salary.EmployeeID)
	assert.Equal(t, 20, resp.Salary.PresentDays)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/payroll/employees/missing/salaries/generate", map[string]int{"month": 6, "year": 2024})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnqueueMonthly(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		s := newTestServer(t, nil, 10)
		rec, env := s.do(t, http.MethodPost, "/api/v1/payroll/salaries/generate/async", map[string]int{"month": 6, "year": 2024})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "SERVICE_UNAVAILABLE", env.Error.Code)
	})

	t.Run("queued", func(t *testing.T) {
		enq := &fakeEnqueuer{}
		s := newTestServer(t, enq, 10)
		rec, env := s.do(t, http.MethodPost, "/api/v1/payroll/salaries/generate/async", map[string]int{"month": 6, "year": 2024})
		require.Equal(t, http.StatusAccepted, rec.Code)
		var res jobs.EnqueueResult
		require.NoError(t, json.Unmarshal(env.Data, &res))
		assert.Equal(t, "payroll:generate_monthly:2024-06", res.TaskID)
		assert.Equal(t, 6, enq.month)
		assert.Equal(t, 2024, enq.year)
	})

	t.Run("invalid month never reaches the queue", func(t *testing.T) {
		enq := &fakeEnqueuer{}
		s := newTestServer(t, enq, 10)
		rec, _ := s.do(t, http.MethodPost, "/api/v1/payroll/salaries/generate/async", map[string]int{"month": 0, "year": 2024})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Zero(t, enq.month)
	})
}

func TestSalaryLifecycle_OverHTTP(t *testing.T) {
	s := newTestServer(t, nil, 10)
	s.seedEmployee(t)

	rec, _ := s.do(t, http.MethodPost, "/api/v1/payroll/salaries/generate", map[string]int{"month": 6, "year": 2024})
	require.Equal(t, http.StatusOK, rec.Code)
	sal := s.firstSalary(t)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/payroll/salaries/"+sal.ID+"/recalculate", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := s.do(t, http.MethodPost, "/api/v1/payroll/salaries/"+sal.ID+"/status", map[string]string{"status": "PAID"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	rec, env = s.do(t, http.MethodPost, "/api/v1/payroll/salaries/"+sal.ID+"/status", map[string]string{"status": "PROCESSING"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var processing salary.SalaryRecordResponse
	require.NoError(t, json.Unmarshal(env.Data, &processing))
	assert.Equal(t, string(salary.SalaryStatusProcessing), processing.Status)
	assert.Empty(t, processing.Installments)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/payroll/salaries/"+sal.ID+"/recalculate", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/api/v1/payroll/salaries?employee_id=emp-1&month=6&year=2024", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeleteSalary_OverHTTP(t *testing.T) {
	s := newTestServer(t, nil, 10)
	s.seedEmployee(t)

	rec, _ := s.do(t, http.MethodPost, "/api/v1/payroll/salaries/generate", map[string]int{"month": 6, "year": 2024})
	require.Equal(t, http.StatusOK, rec.Code)
	sal := s.firstSalary(t)

	rec, _ = s.do(t, http.MethodDelete, "/api/v1/payroll/salaries?employee_id=emp-1&month=abc&year=2024", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/api/v1/payroll/salaries?employee_id=emp-1&month=6&year=2024", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env := s.do(t, http.MethodGet, "/api/v1/payroll/salaries/"+sal.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestListSalaries_Meta(t *testing.T) {
	s := newTestServer(t, nil, 10)
	s.seedEmployee(t)

	rec, _ := s.do(t, http.MethodPost, "/api/v1/payroll/salaries/generate", map[string]int{"month": 6, "year": 2024})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := s.do(t, http.MethodGet, "/api/v1/payroll/salaries?page=1&limit=10&status=PENDING", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.Page)
	assert.Equal(t, 10, env.Meta.Limit)
	assert.Equal(t, int64(1), env.Meta.TotalItems)
	assert.Equal(t, 1, env.Meta.TotalPages)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/payroll/salaries?status=DONE", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/v1/payroll/salaries?month=june", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAdvances_RequiresEmployee(t *testing.T) {
	s := newTestServer(t, nil, 10)

	rec, env := s.do(t, http.MethodGet, "/api/v1/payroll/advances", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, env.Error.Details, "employee_id")
}
