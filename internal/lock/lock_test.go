package lock

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestGuard_Acquire_Success(t *testing.T) {
	db, mock := redismock.NewClientMock()
	guard := NewGuard(db, "reconcile:auth_1", "holder-token")

	mock.ExpectSetNX("reconcile:auth_1", "holder-token", time.Minute).SetVal(true)

	err := guard.Acquire(context.Background(), time.Minute)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGuard_Acquire_AlreadyHeld(t *testing.T) {
	db, mock := redismock.NewClientMock()
	guard := NewGuard(db, "reconcile:auth_1", "holder-token")

	mock.ExpectSetNX("reconcile:auth_1", "holder-token", time.Minute).SetVal(false)

	err := guard.Acquire(context.Background(), time.Minute)
	assert.EqualError(t, err, "lock for key reconcile:auth_1 is already held")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGuard_Release_Success(t *testing.T) {
	db, mock := redismock.NewClientMock()
	guard := NewGuard(db, "reconcile:auth_1", "holder-token")

	mock.ExpectEval(releaseScript, []string{"reconcile:auth_1"}, "holder-token").SetVal(int64(1))

	err := guard.Release(context.Background())
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGuard_Release_NotHolder(t *testing.T) {
	db, mock := redismock.NewClientMock()
	guard := NewGuard(db, "reconcile:auth_1", "holder-token")

	mock.ExpectEval(releaseScript, []string{"reconcile:auth_1"}, "holder-token").SetVal(int64(0))

	err := guard.Release(context.Background())
	assert.EqualError(t, err, "release failed, lock for key reconcile:auth_1 expired or is held by someone else")
	assert.NoError(t, mock.ExpectationsWereMet())
}
