package repository

import (
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/kvant-lab/vpnbot/internal/domain"
	"github.com/kvant-lab/vpnbot/internal/repository/sqlc"
)

func pgTimestamptzToTime(ts pgtype.Timestamptz) time.Time {
	if ts.Valid {
		return ts.Time
	}
	return time.Time{}
}

func pgTimestamptzToTimePtr(ts pgtype.Timestamptz) *time.Time {
	if ts.Valid {
		t := ts.Time
		return &t
	}
	return nil
}

func timePtrToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func rowToUser(row sqlc.User) *domain.User {
	settings := map[string]string{}
	if len(row.Settings) > 0 {
		_ = json.Unmarshal(row.Settings, &settings)
	}
	return &domain.User{
		ID:               row.ID,
		TelegramID:       row.TelegramID,
		TelegramUsername: row.TelegramUsername,
		VpnID:            row.VpnID,
		IsActive:         row.IsActive,
		ExpiresAt:        pgTimestamptzToTimePtr(row.ExpiresAt),
		Balance:          row.Balance,
		Settings:         settings,
		CreatedAt:        pgTimestamptzToTime(row.CreatedAt),
		UpdatedAt:        pgTimestamptzToTime(row.UpdatedAt),
	}
}

func rowToInvoice(row sqlc.StarInvoice) *domain.Invoice {
	metadata := map[string]int64{}
	if len(row.Metadata) > 0 {
		_ = json.Unmarshal(row.Metadata, &metadata)
	}
	inv := &domain.Invoice{
		ID:                      row.ID,
		UserID:                  row.UserID,
		TelegramUsername:        row.TelegramUsername,
		Amount:                  row.Amount,
		Currency:                row.Currency,
		Status:                  domain.InvoiceStatus(row.Status),
		Payload:                 row.Payload,
		TelegramPaymentChargeID: row.TelegramPaymentChargeID,
		ProviderPaymentChargeID: row.ProviderPaymentChargeID,
		Metadata:                metadata,
		CreatedAt:               pgTimestamptzToTime(row.CreatedAt),
		UpdatedAt:               pgTimestamptzToTime(row.UpdatedAt),
	}
	if row.RawPreCheckoutQuery != nil {
		inv.RawPreCheckoutQuery = []byte(*row.RawPreCheckoutQuery)
	}
	if row.RawSuccessfulPayment != nil {
		inv.RawSuccessfulPayment = []byte(*row.RawSuccessfulPayment)
	}
	return inv
}

func rowToServer(row sqlc.VpnServer) *domain.VpnServer {
	return &domain.VpnServer{
		ID:          row.ID,
		Title:       row.Title,
		VpnURL:      row.VpnUrl,
		BearerToken: row.BearerToken,
		Country:     row.Country,
		Protocol:    row.Protocol,
		CreatedAt:   pgTimestamptzToTime(row.CreatedAt),
	}
}
