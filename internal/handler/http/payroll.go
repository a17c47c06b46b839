package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/salary"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/payroll-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/jobs"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	// Generation
	GenerateMonthly(w http.ResponseWriter, r *http.Request)
	EnqueueMonthly(w http.ResponseWriter, r *http.Request)
	GenerateSalary(w http.ResponseWriter, r *http.Request)

	// Salary Records
	ListSalaries(w http.ResponseWriter, r *http.Request)
	GetSalary(w http.ResponseWriter, r *http.Request)
	DeleteSalary(w http.ResponseWriter, r *http.Request)
	TransitionSalary(w http.ResponseWriter, r *http.Request)
	RecalculateSalary(w http.ResponseWriter, r *http.Request)

	// Installments
	DecideInstallment(w http.ResponseWriter, r *http.Request)

	// Advances
	ListAdvances(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	salaryService salary.SalaryService
	enqueuer      jobs.Enqueuer
}

// NewPayrollHandler builds the payroll handler. enqueuer may be nil when no
// background worker is configured; the async endpoint then answers 503.
func NewPayrollHandler(salaryService salary.SalaryService, enqueuer jobs.Enqueuer) PayrollHandler {
	return &payrollHandlerImpl{salaryService: salaryService, enqueuer: enqueuer}
}

// ========== GENERATION ==========

func (h *payrollHandlerImpl) GenerateMonthly(w http.ResponseWriter, r *http.Request) {
	var req salary.GenerateMonthlyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.salaryService.GenerateMonthlySalaries(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salaries generated", result)
}

func (h *payrollHandlerImpl) EnqueueMonthly(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer == nil {
		response.ServiceUnavailable(w, "Background generation is not configured")
		return
	}

	var req salary.GenerateMonthlyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.enqueuer.EnqueueMonthlyGeneration(r.Context(), req.Month, req.Year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Accepted(w, "Salary generation queued", result)
}

func (h *payrollHandlerImpl) GenerateSalary(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}

	var req salary.GenerateSalaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = employeeID

	result, err := h.salaryService.GenerateSalary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.Skipped {
		response.SuccessWithMessage(w, "Employee skipped", result)
		return
	}
	response.Created(w, "Salary generated", result)
}

// ========== SALARY RECORDS ==========

func (h *payrollHandlerImpl) ListSalaries(w http.ResponseWriter, r *http.Request) {
	filter := salary.SalaryFilter{
		Page:  1,
		Limit: 20,
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if monthStr := query.Get("month"); monthStr != "" {
		month, err := strconv.Atoi(monthStr)
		if err != nil {
			response.BadRequest(w, "Invalid month", nil)
			return
		}
		filter.Month = &month
	}
	if yearStr := query.Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			response.BadRequest(w, "Invalid year", nil)
			return
		}
		filter.Year = &year
	}
	if status := query.Get("status"); status != "" {
		filter.Status = &status
	}
	if employeeID := query.Get("employee_id"); employeeID != "" {
		filter.EmployeeID = &employeeID
	}

	result, err := h.salaryService.ListSalaries(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := 0
	if result.Limit > 0 {
		totalPages = int((result.TotalCount + int64(result.Limit) - 1) / int64(result.Limit))
	}
	response.SuccessWithMeta(w, result.Data, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages,
	})
}

func (h *payrollHandlerImpl) GetSalary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Salary ID is required", nil)
		return
	}

	result, err := h.salaryService.GetSalary(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) DeleteSalary(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	month, err := strconv.Atoi(query.Get("month"))
	if err != nil {
		response.BadRequest(w, "Invalid month", nil)
		return
	}
	year, err := strconv.Atoi(query.Get("year"))
	if err != nil {
		response.BadRequest(w, "Invalid year", nil)
		return
	}

	req := salary.DeleteSalaryRequest{
		EmployeeID: query.Get("employee_id"),
		Month:      month,
		Year:       year,
	}
	if err := h.salaryService.DeleteSalary(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary record deleted successfully", nil)
}

func (h *payrollHandlerImpl) TransitionSalary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Salary ID is required", nil)
		return
	}

	var req salary.TransitionSalaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.SalaryID = id

	result, err := h.salaryService.TransitionSalary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *payrollHandlerImpl) RecalculateSalary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Salary ID is required", nil)
		return
	}

	result, err := h.salaryService.RecalculateSalary(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== INSTALLMENTS ==========

func (h *payrollHandlerImpl) DecideInstallment(w http.ResponseWriter, r *http.Request) {
	salaryID := chi.URLParam(r, "id")
	installmentID := chi.URLParam(r, "installmentId")
	if salaryID == "" || installmentID == "" {
		response.BadRequest(w, "Salary ID and installment ID are required", nil)
		return
	}

	var req salary.DecideInstallmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.SalaryID = salaryID
	req.InstallmentID = installmentID
	req.DecidedBy = middleware.UserID(r.Context())

	result, err := h.salaryService.DecideInstallment(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ========== ADVANCES ==========

func (h *payrollHandlerImpl) ListAdvances(w http.ResponseWriter, r *http.Request) {
	result, err := h.salaryService.ListAdvances(r.Context(), r.URL.Query().Get("employee_id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
