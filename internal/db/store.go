// Package db persists KYC records, verification logs and fraud alerts.
package db

import (
	"context"
	"errors"

	"securekyc/internal/models"
)

// ErrRecordNotFound is returned when no record has the requested id.
var ErrRecordNotFound = errors.New("record not found")

// Store is the persistence contract used by the KYC service. Listing
// methods return newest entries first.
type Store interface {
	// InsertRecord stores rec and returns it with its assigned id and
	// creation time.
	InsertRecord(ctx context.Context, rec models.IdentityRecord) (models.IdentityRecord, error)
	ListRecords(ctx context.Context) ([]models.IdentityRecord, error)
	GetRecord(ctx context.Context, id string) (models.IdentityRecord, error)
	// UpdateStatus is the only mutation allowed on a stored record.
	UpdateStatus(ctx context.Context, id, status string) error

	InsertLog(ctx context.Context, entry models.VerificationLog) error
	ListLogs(ctx context.Context) ([]models.VerificationLog, error)
	InsertAlert(ctx context.Context, alert models.FraudAlert) error
	ListAlerts(ctx context.Context) ([]models.FraudAlert, error)

	Ping(ctx context.Context) error
	Close() error
}
