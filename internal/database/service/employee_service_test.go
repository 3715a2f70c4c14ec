package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saleswise/backend-go/internal/database/repository"
	"github.com/saleswise/backend-go/internal/database/service"
	"github.com/saleswise/backend-go/internal/testutil"
)

func newEmployeeService(t *testing.T) service.EmployeeService {
	svc, _ := newEmployeeServiceWithCache(t)
	return svc
}

func newEmployeeServiceWithCache(t *testing.T) (service.EmployeeService, *testutil.MockReportCache) {
	repo := repository.NewEmployeeRepository(testutil.NewTestDB(t))
	cache := new(testutil.MockReportCache)
	cache.On("InvalidateAll", mock.Anything).Return(nil).Maybe()
	return service.NewEmployeeService(repo, cache, testutil.NewTestLogger()), cache
}

// ==================== EMPLOYEE SERVICE TESTS ====================

func TestEmployeeService_Create(t *testing.T) {
	svc := newEmployeeService(t)

	employee, err := svc.Create("  Alice  ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", employee.Name)
	assert.True(t, employee.Active)

	_, err = svc.Create("   ")
	assert.ErrorIs(t, err, service.ErrInvalidEmployeeName)
}

func TestEmployeeService_Update(t *testing.T) {
	svc := newEmployeeService(t)
	ctx := context.Background()
	employee, err := svc.Create("Alice")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, employee.ID, "Alicia", nil)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.True(t, updated.Active)

	inactive := false
	updated, err = svc.Update(ctx, employee.ID, "Alicia", &inactive)
	require.NoError(t, err)
	assert.False(t, updated.Active)

	employees, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, employees)

	active := true
	_, err = svc.Update(ctx, employee.ID, "Alicia", &active)
	require.NoError(t, err)
	employees, err = svc.List()
	require.NoError(t, err)
	assert.Len(t, employees, 1)

	_, err = svc.Update(ctx, employee.ID+1, "Ghost", nil)
	assert.ErrorIs(t, err, repository.ErrEmployeeNotFound)

	_, err = svc.Update(ctx, employee.ID, "", nil)
	assert.ErrorIs(t, err, service.ErrInvalidEmployeeName)
}

func TestEmployeeService_Deactivate(t *testing.T) {
	svc := newEmployeeService(t)
	ctx := context.Background()
	alice, err := svc.Create("Alice")
	require.NoError(t, err)
	_, err = svc.Create("Bob")
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, alice.ID))
	// Deactivating twice is not an error
	require.NoError(t, svc.Deactivate(ctx, alice.ID))

	employees, err := svc.List()
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, "Bob", employees[0].Name)

	assert.ErrorIs(t, svc.Deactivate(ctx, 999), repository.ErrEmployeeNotFound)
}

func TestEmployeeService_WritesInvalidateReports(t *testing.T) {
	svc, cache := newEmployeeServiceWithCache(t)
	ctx := context.Background()
	employee, err := svc.Create("Alice")
	require.NoError(t, err)
	cache.AssertNotCalled(t, "InvalidateAll", mock.Anything)

	_, err = svc.Update(ctx, employee.ID, "Alicia", nil)
	require.NoError(t, err)
	cache.AssertNumberOfCalls(t, "InvalidateAll", 1)

	require.NoError(t, svc.Deactivate(ctx, employee.ID))
	cache.AssertNumberOfCalls(t, "InvalidateAll", 2)

	// Already inactive: nothing changes, nothing to invalidate
	require.NoError(t, svc.Deactivate(ctx, employee.ID))
	cache.AssertNumberOfCalls(t, "InvalidateAll", 2)

	_, err = svc.Update(ctx, employee.ID+1, "Ghost", nil)
	assert.ErrorIs(t, err, repository.ErrEmployeeNotFound)
	cache.AssertNumberOfCalls(t, "InvalidateAll", 2)
}

func TestEmployeeService_CacheFailureDoesNotFailWrite(t *testing.T) {
	repo := repository.NewEmployeeRepository(testutil.NewTestDB(t))
	cache := new(testutil.MockReportCache)
	cache.On("InvalidateAll", mock.Anything).Return(assert.AnError)
	svc := service.NewEmployeeService(repo, cache, testutil.NewTestLogger())
	ctx := context.Background()

	employee, err := svc.Create("Alice")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, employee.ID, "Alicia", nil)
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.NoError(t, svc.Deactivate(ctx, employee.ID))
}
