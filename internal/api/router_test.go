package api_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/saleswise/backend-go/internal/api"
	"github.com/saleswise/backend-go/internal/config"
	"github.com/saleswise/backend-go/internal/database"
	"github.com/saleswise/backend-go/internal/database/repository"
	"github.com/saleswise/backend-go/internal/database/service"
	"github.com/saleswise/backend-go/internal/handler"
	"github.com/saleswise/backend-go/internal/middleware"
	"github.com/saleswise/backend-go/internal/testutil"
)

type testApp struct {
	router *gin.Engine
	db     *gorm.DB
	mr     *miniredis.Miniredis
}

func newTestApp(t *testing.T, configure ...func(*config.Config)) *testApp {
	gin.SetMode(gin.TestMode)

	cfg := testutil.NewTestConfig()
	cfg.AdminEmail = "boss@example.com"
	cfg.AdminPassword = "boss-pass"
	cfg.AuthRateLimit = 100
	for _, fn := range configure {
		fn(cfg)
	}
	logger := testutil.NewTestLogger()

	db := testutil.NewTestDB(t)
	mr, client := testutil.NewTestRedis(t)
	cache := database.NewRedisClientForTesting(client, cfg, logger)

	userRepo := repository.NewUserRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	saleRepo := repository.NewSaleRepository(db)

	authService := service.NewAuthService(userRepo, cfg, logger)
	employeeService := service.NewEmployeeService(employeeRepo, cache, logger)
	saleService := service.NewSaleService(saleRepo, cache, logger)
	reportService := service.NewReportService(saleRepo, cache, cfg, logger)
	require.NoError(t, authService.EnsureStaffUser(cfg.AdminEmail, cfg.AdminPassword))

	r := api.SetupRouter(
		cfg,
		handler.NewAuthHandler(authService, logger),
		handler.NewEmployeeHandler(employeeService, reportService, logger),
		handler.NewSaleHandler(saleService, logger),
		handler.NewReportHandler(reportService, logger),
		middleware.NewAuthMiddleware(authService, logger),
		middleware.NewRateLimiter(client, cfg, logger),
		logger,
	)

	return &testApp{router: r, db: db, mr: mr}
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}, token string) (int, map[string]interface{}) {
	t.Helper()
	w := testutil.PerformRequest(t, a.router, method, path, body, token)
	var out map[string]interface{}
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		testutil.DecodeJSON(t, w, &out)
	}
	return w.Code, out
}

func (a *testApp) register(t *testing.T, email string) string {
	t.Helper()
	code, body := a.do(t, http.MethodPost, "/auth/register", gin.H{"email": email, "password": "password123"}, "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"], body)
	return body["token"].(string)
}

func (a *testApp) login(t *testing.T, email, password string) string {
	t.Helper()
	code, body := a.do(t, http.MethodPost, "/auth/login", gin.H{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"], body)
	return body["token"].(string)
}

func (a *testApp) createEmployee(t *testing.T, token, name string) uint {
	t.Helper()
	var employee handler.EmployeeResponse
	w := testutil.PerformRequest(t, a.router, http.MethodPost, "/employees", gin.H{"name": name}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	testutil.DecodeJSON(t, w, &employee)
	return employee.ID
}

func (a *testApp) createSale(t *testing.T, token string, body gin.H) handler.SaleResponse {
	t.Helper()
	var sale handler.SaleResponse
	w := testutil.PerformRequest(t, a.router, http.MethodPost, "/sales", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	testutil.DecodeJSON(t, w, &sale)
	return sale
}

// ==================== PUBLIC ROUTES ====================

func TestPublicRoutes(t *testing.T) {
	app := newTestApp(t)

	code, body := app.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, body = app.do(t, http.MethodGet, "/hello", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Hello from SalesWise!", body["message"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/auth/me"},
		{http.MethodPost, "/auth/change-password"},
		{http.MethodGet, "/employees"},
		{http.MethodPost, "/employees"},
		{http.MethodGet, "/employees/stats"},
		{http.MethodGet, "/sales"},
		{http.MethodDelete, "/sales/1"},
		{http.MethodGet, "/reports/daily"},
		{http.MethodGet, "/reports/monthly"},
		{http.MethodGet, "/reports/monthly/export"},
	} {
		code, _ := app.do(t, route.method, route.path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, code, "%s %s", route.method, route.path)
	}
}

// ==================== AUTH ====================

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)

	code, body := app.do(t, http.MethodPost, "/auth/register", gin.H{"email": "ana@example.com", "password": "password123"}, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "User registered successfully", body["message"])
	registerToken := body["token"].(string)
	assert.NotEmpty(t, registerToken)

	code, body = app.do(t, http.MethodPost, "/auth/register", gin.H{"email": "ana@example.com", "password": "other"}, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Email already registered", body["message"])

	code, _ = app.do(t, http.MethodPost, "/auth/register", gin.H{"email": "not-an-email", "password": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = app.do(t, http.MethodPost, "/auth/login", gin.H{"email": "ana@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Invalid credentials", body["message"])

	code, body = app.do(t, http.MethodPost, "/auth/login", gin.H{"email": "ana@example.com", "password": "password123"}, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "ana@example.com", user["email"])
	loginToken := body["token"].(string)

	// Login rotates the token
	code, _ = app.do(t, http.MethodGet, "/auth/me", nil, registerToken)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = app.do(t, http.MethodGet, "/auth/me", nil, loginToken)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ana@example.com", body["email"])
	assert.Equal(t, false, body["is_staff"])
}

func TestChangePassword(t *testing.T) {
	app := newTestApp(t)
	userToken := app.register(t, "ana@example.com")
	staffToken := app.login(t, "boss@example.com", "boss-pass")

	request := gin.H{"user_email": "ana@example.com", "new_password": "fresh-pass"}

	code, body := app.do(t, http.MethodPost, "/auth/change-password", request, userToken)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Only admins can change passwords", body["message"])

	code, body = app.do(t, http.MethodPost, "/auth/change-password", gin.H{"user_email": "ghost@example.com", "new_password": "x"}, staffToken)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "User not found", body["message"])

	code, _ = app.do(t, http.MethodPost, "/auth/change-password", gin.H{"user_email": "ana@example.com"}, staffToken)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = app.do(t, http.MethodPost, "/auth/change-password", request, staffToken)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Password changed successfully", body["message"])

	// The reset signs the user out
	code, _ = app.do(t, http.MethodGet, "/auth/me", nil, userToken)
	assert.Equal(t, http.StatusUnauthorized, code)

	app.login(t, "ana@example.com", "fresh-pass")
}

func TestPasswordTooLong(t *testing.T) {
	app := newTestApp(t)
	tooLong := strings.Repeat("x", 80)

	code, body := app.do(t, http.MethodPost, "/auth/register", gin.H{"email": "ana@example.com", "password": tooLong}, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Password must be at most 72 bytes", body["message"])

	app.register(t, "ana@example.com")
	staffToken := app.login(t, "boss@example.com", "boss-pass")

	code, body = app.do(t, http.MethodPost, "/auth/change-password", gin.H{"user_email": "ana@example.com", "new_password": tooLong}, staffToken)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Password must be at most 72 bytes", body["message"])

	app.login(t, "ana@example.com", "password123")
}

func TestAuthRateLimit(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) {
		cfg.AuthRateLimit = 2
		cfg.AuthRateWindow = 86400
	})
	creds := gin.H{"email": "ana@example.com", "password": "wrong"}

	for i := 0; i < 2; i++ {
		code, _ := app.do(t, http.MethodPost, "/auth/login", creds, "")
		assert.Equal(t, http.StatusOK, code)
	}

	code, body := app.do(t, http.MethodPost, "/auth/login", creds, "")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, false, body["success"])

	// Register shares the budget
	code, _ = app.do(t, http.MethodPost, "/auth/register", gin.H{"email": "new@example.com", "password": "x"}, "")
	assert.Equal(t, http.StatusTooManyRequests, code)
}

// ==================== EMPLOYEES ====================

func TestEmployeeEndpoints(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "ana@example.com")

	aliceID := app.createEmployee(t, token, "Alice")
	bobID := app.createEmployee(t, token, "Bob")

	code, _ := app.do(t, http.MethodPost, "/employees", gin.H{"name": ""}, token)
	assert.Equal(t, http.StatusBadRequest, code)

	var employees []handler.EmployeeResponse
	w := testutil.PerformRequest(t, app.router, http.MethodGet, "/employees", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.DecodeJSON(t, w, &employees)
	assert.Equal(t, []handler.EmployeeResponse{
		{ID: aliceID, Name: "Alice", Active: true},
		{ID: bobID, Name: "Bob", Active: true},
	}, employees)

	code, body := app.do(t, http.MethodPut, fmt.Sprintf("/employees/%d", bobID), gin.H{"name": "Robert"}, token)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Robert", body["name"])

	code, body = app.do(t, http.MethodDelete, fmt.Sprintf("/employees/%d", aliceID), nil, token)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	w = testutil.PerformRequest(t, app.router, http.MethodGet, "/employees", nil, token)
	testutil.DecodeJSON(t, w, &employees)
	require.Len(t, employees, 1)
	assert.Equal(t, "Robert", employees[0].Name)

	code, body = app.do(t, http.MethodDelete, "/employees/999", nil, token)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Employee not found", body["message"])

	code, _ = app.do(t, http.MethodPut, "/employees/abc", gin.H{"name": "x"}, token)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestEmployeeStatsEndpoint(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "ana@example.com")
	aliceID := app.createEmployee(t, token, "Alice")

	app.createSale(t, token, gin.H{"date": "2024-01-01", "shift": "matin", "sales_amount": 10, "employee_ids": []uint{aliceID}})
	app.createSale(t, token, gin.H{"date": "2024-01-03", "shift": "nuit", "sales_amount": "20.5", "employee_ids": []uint{aliceID}})

	var stats []service.EmployeeStat
	w := testutil.PerformRequest(t, app.router, http.MethodGet, "/employees/stats?start_date=2024-01-01&end_date=2024-01-31", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeJSON(t, w, &stats)
	require.Len(t, stats, 1)
	assert.True(t, decimal.RequireFromString("30.5").Equal(stats[0].TotalSales))
	assert.Equal(t, 2, stats[0].DaysWorked)
	assert.True(t, decimal.RequireFromString("15.25").Equal(stats[0].AverageSales))

	for _, query := range []string{
		"",
		"?start_date=2024-01-01",
		"?start_date=2024-13-01&end_date=2024-01-31",
		"?start_date=2024-02-01&end_date=2024-01-01",
	} {
		code, _ := app.do(t, http.MethodGet, "/employees/stats"+query, nil, token)
		assert.Equal(t, http.StatusBadRequest, code, query)
	}
}

// ==================== SALES ====================

func TestSaleEndpoints(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "ana@example.com")
	aliceID := app.createEmployee(t, token, "Alice")
	bobID := app.createEmployee(t, token, "Bob")

	sale := app.createSale(t, token, gin.H{
		"date":         "2024-01-15",
		"shift":        "après-midi",
		"sales_amount": 150.5,
		"employee_ids": []uint{bobID, aliceID},
	})
	assert.Equal(t, "2024-01-15", sale.Date)
	assert.Equal(t, "après-midi", string(sale.Shift))
	assert.True(t, decimal.RequireFromString("150.5").Equal(sale.SalesAmount))
	require.Len(t, sale.Employees, 2)
	assert.Equal(t, "Alice", sale.Employees[0].Name)

	var got handler.SaleResponse
	w := testutil.PerformRequest(t, app.router, http.MethodGet, fmt.Sprintf("/sales/%d", sale.ID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.DecodeJSON(t, w, &got)
	assert.Equal(t, sale.ID, got.ID)

	w = testutil.PerformRequest(t, app.router, http.MethodPut, fmt.Sprintf("/sales/%d", sale.ID), gin.H{
		"date":         "2024-01-16",
		"shift":        "nuit",
		"sales_amount": "99.99",
		"employee_ids": []uint{bobID},
	}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeJSON(t, w, &got)
	assert.Equal(t, "2024-01-16", got.Date)
	require.Len(t, got.Employees, 1)
	assert.Equal(t, bobID, got.Employees[0].ID)

	var list []handler.SaleResponse
	w = testutil.PerformRequest(t, app.router, http.MethodGet, "/sales?date=2024-01-16", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	testutil.DecodeJSON(t, w, &list)
	require.Len(t, list, 1)

	w = testutil.PerformRequest(t, app.router, http.MethodGet, "/sales?date=2024-01-15", nil, token)
	testutil.DecodeJSON(t, w, &list)
	assert.Empty(t, list)

	w = testutil.PerformRequest(t, app.router, http.MethodGet, "/sales?start_date=2024-01-01&end_date=2024-01-31", nil, token)
	testutil.DecodeJSON(t, w, &list)
	assert.Len(t, list, 1)

	code, body := app.do(t, http.MethodDelete, fmt.Sprintf("/sales/%d", sale.ID), nil, token)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Sale deleted successfully", body["message"])

	code, body = app.do(t, http.MethodGet, fmt.Sprintf("/sales/%d", sale.ID), nil, token)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Sale not found", body["message"])
}

func TestSaleEndpoints_Validation(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "ana@example.com")

	tests := []struct {
		name       string
		body       gin.H
		wantStatus int
	}{
		{name: "missing amount", body: gin.H{"date": "2024-01-15", "shift": "matin"}, wantStatus: http.StatusBadRequest},
		{name: "bad date", body: gin.H{"date": "15/01/2024", "shift": "matin", "sales_amount": 1}, wantStatus: http.StatusBadRequest},
		{name: "unknown shift", body: gin.H{"date": "2024-01-15", "shift": "evening", "sales_amount": 1}, wantStatus: http.StatusBadRequest},
		{name: "negative amount", body: gin.H{"date": "2024-01-15", "shift": "matin", "sales_amount": -5}, wantStatus: http.StatusBadRequest},
		{name: "amount too large", body: gin.H{"date": "2024-01-15", "shift": "matin", "sales_amount": "123456789"}, wantStatus: http.StatusBadRequest},
		{name: "unknown employee", body: gin.H{"date": "2024-01-15", "shift": "matin", "sales_amount": 1, "employee_ids": []uint{42}}, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := app.do(t, http.MethodPost, "/sales", tt.body, token)
			assert.Equal(t, tt.wantStatus, code)
			assert.Equal(t, false, body["success"])
		})
	}

	code, _ := app.do(t, http.MethodPut, "/sales/77", gin.H{"date": "2024-01-15", "shift": "matin", "sales_amount": 1}, token)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = app.do(t, http.MethodGet, "/sales?start_date=2024-02-01&end_date=2024-01-01", nil, token)
	assert.Equal(t, http.StatusBadRequest, code)

	var sales int64
	require.NoError(t, app.db.Table("sales").Count(&sales).Error)
	assert.Zero(t, sales)
}

// ==================== REPORTS ====================

func TestDailyReportEndpoint(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "ana@example.com")
	aliceID := app.createEmployee(t, token, "Alice")

	app.createSale(t, token, gin.H{"date": "2024-01-15", "shift": "matin", "sales_amount": 100, "employee_ids": []uint{aliceID}})
	app.createSale(t, token, gin.H{"date": "2024-01-15", "shift": "matin", "sales_amount": 50, "employee_ids": []uint{aliceID}})

	w := testutil.PerformRequest(t, app.router, http.MethodGet, "/reports/daily?date=2024-01-15", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report service.DailyReport
	testutil.DecodeJSON(t, w, &report)
	assert.Equal(t, "2024-01-15", report.Date)
	assert.True(t, decimal.NewFromInt(150).Equal(report.TotalSales))
	assert.True(t, decimal.NewFromInt(50).Equal(report.ShiftTotals["matin"]))
	require.NotNil(t, report.BestShift)
	assert.Equal(t, "matin", string(*report.BestShift))
	require.NotNil(t, report.TopEmployee)
	assert.Equal(t, aliceID, report.TopEmployee.ID)
	assert.True(t, app.mr.Exists("report:daily:2024-01-15"))

	// Amounts are serialized as decimal strings
	assert.Contains(t, w.Body.String(), `"total_sales":"150"`)

	code, _ := app.do(t, http.MethodGet, "/reports/daily", nil, token)
	assert.Equal(t, http.StatusBadRequest, code)

	w = testutil.PerformRequest(t, app.router, http.MethodGet, "/reports/daily?date=2030-01-01", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"best_shift":null`)
	assert.Contains(t, w.Body.String(), `"top_employee":null`)
}

func TestMonthlyReportEndpoints(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "ana@example.com")
	aliceID := app.createEmployee(t, token, "Alice")

	app.createSale(t, token, gin.H{"date": "2023-12-01", "shift": "matin", "sales_amount": 10, "employee_ids": []uint{aliceID}})
	app.createSale(t, token, gin.H{"date": "2023-12-31", "shift": "nuit", "sales_amount": 30, "employee_ids": []uint{aliceID}})

	var report service.MonthlyReport
	w := testutil.PerformRequest(t, app.router, http.MethodGet, "/reports/monthly?month=12&year=2023", nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	testutil.DecodeJSON(t, w, &report)
	assert.Equal(t, 12, report.Month)
	assert.Equal(t, 2023, report.Year)
	assert.True(t, decimal.NewFromInt(40).Equal(report.TotalSales))
	require.Len(t, report.TopEmployees, 1)
	assert.Equal(t, 2, report.TopEmployees[0].DaysWorked)
	require.Len(t, report.DailyBreakdown, 2)

	for _, query := range []string{"", "?month=12", "?month=x&year=2023", "?month=13&year=2023", "?month=0&year=2023"} {
		code, _ := app.do(t, http.MethodGet, "/reports/monthly"+query, nil, token)
		assert.Equal(t, http.StatusBadRequest, code, query)
	}

	w = testutil.PerformRequest(t, app.router, http.MethodGet, "/reports/monthly/export?month=12&year=2023", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="sales-2023-12.xlsx"`, w.Header().Get("Content-Disposition"))
	// XLSX is a zip archive
	assert.Equal(t, "PK", w.Body.String()[:2])
}

func TestCORSPreflight(t *testing.T) {
	app := newTestApp(t)

	req, _ := http.NewRequest(http.MethodOptions, "/sales", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")

	w := testutil.PerformRawRequest(app.router, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req, _ = http.NewRequest(http.MethodOptions, "/sales", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = testutil.PerformRawRequest(app.router, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
