package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

var errAuth = errors.New("auth error")

func TestEnsureSchemaCreatesTables(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS devices`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS refresh_tokens`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	svc := NewService("test-secret", mock)
	if err := svc.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureSchemaError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS devices`).WillReturnError(errAuth)

	svc := NewService("test-secret", mock)
	if err := svc.EnsureSchema(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRegisterAndRefresh(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService("test-secret", mock)
	ctx := context.Background()

	mock.ExpectQuery(`INSERT INTO devices`).
		WithArgs(pgxmock.AnyArg(), "phone", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	device, tokens, err := svc.Register(ctx, RegisterRequest{Name: "phone", Secret: "hunter2"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if device.ID == "" || tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("incomplete register result")
	}

	mock.ExpectQuery(`SELECT device_id, expires_at`).
		WithArgs(tokens.RefreshToken).
		WillReturnRows(pgxmock.NewRows([]string{"device_id", "expires_at"}).AddRow(device.ID, time.Now().Add(time.Hour)))

	deviceID, err := svc.ValidateRefreshToken(ctx, tokens.RefreshToken)
	if err != nil || deviceID != device.ID {
		t.Fatalf("refresh validation: %v %v", deviceID, err)
	}
}

func TestRegisterRequiresFields(t *testing.T) {
	svc := NewService("test-secret", nil)
	if _, _, err := svc.Register(context.Background(), RegisterRequest{}); err == nil {
		t.Fatalf("expected error for empty request")
	}
}

func TestLoginWrongSecret(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.DefaultCost)
	mock.ExpectQuery(`SELECT id, name, secret_hash, created_at`).
		WithArgs("device-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "secret_hash", "created_at"}).
			AddRow("device-1", "phone", string(hash), time.Now()))

	svc := NewService("test-secret", mock)
	if _, err := svc.Login(context.Background(), LoginRequest{DeviceID: "device-1", Secret: "wrong"}); err == nil {
		t.Fatalf("expected invalid credentials")
	}
}

func TestLoginQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT id, name, secret_hash, created_at`).
		WithArgs("device-2").
		WillReturnError(errAuth)

	svc := NewService("test-secret", mock)
	if _, err := svc.Login(context.Background(), LoginRequest{DeviceID: "device-2", Secret: "x"}); err == nil {
		t.Fatalf("expected error")
	}
}
