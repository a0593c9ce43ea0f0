package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvant-lab/vpnbot/internal/domain"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newPaymentHarness(t *testing.T) (*memStore, *fakeGateway, *PaymentService) {
	t.Helper()
	store := newMemStore()
	gw := &fakeGateway{}
	svc := NewPaymentService(store, gw, testPool(t), NewVpnAPI(time.Second), nil)
	svc.now = func() time.Time { return testNow }
	return store, gw, svc
}

func seedSubscriptionInvoice(store *memStore, userID int64, status domain.InvoiceStatus) *domain.Invoice {
	return store.seedInvoice(&domain.Invoice{
		UserID:   userID,
		Amount:   100,
		Currency: "XTR",
		Status:   status,
		Payload:  "user_1_subscribe_1_month_ab12cd34",
		Metadata: map[string]int64{domain.MetaMonths: 1},
	})
}

func TestHandlePreCheckoutApproves(t *testing.T) {
	store, gw, svc := newPaymentHarness(t)
	user := store.seedUser(&domain.User{TelegramID: 100})
	inv := seedSubscriptionInvoice(store, user.ID, domain.InvoiceStatusCreated)

	err := svc.HandlePreCheckout(context.Background(), PreCheckoutEvent{
		QueryID:     "q1",
		Payload:     inv.Payload,
		Currency:    "XTR",
		TotalAmount: 100,
		FromID:      100,
		Raw:         []byte(`{"id":"q1"}`),
	})
	require.NoError(t, err)

	answer := gw.lastAnswer()
	assert.True(t, answer.ok)
	assert.Equal(t, "q1", answer.queryID)

	stored, err := store.InvoiceByPayload(context.Background(), inv.Payload)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusConfirmed, stored.Status)
	assert.Equal(t, []byte(`{"id":"q1"}`), stored.RawPreCheckoutQuery)
}

func TestHandlePreCheckoutUnknownPayload(t *testing.T) {
	_, gw, svc := newPaymentHarness(t)

	err := svc.HandlePreCheckout(context.Background(), PreCheckoutEvent{
		QueryID:     "q1",
		Payload:     "user_9_subscribe_1_month_deadbeef",
		Currency:    "XTR",
		TotalAmount: 100,
	})
	require.Error(t, err)

	var vErr *domain.PaymentValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, domain.FaultInvoiceNotFound, vErr.Fault)
	assert.False(t, gw.lastAnswer().ok)
}

func TestHandlePreCheckoutRejectsMismatches(t *testing.T) {
	tests := []struct {
		name  string
		ev    PreCheckoutEvent
		fault domain.PaymentFault
	}{
		{
			name:  "wrong currency",
			ev:    PreCheckoutEvent{QueryID: "q", Payload: "user_1_subscribe_1_month_ab12cd34", Currency: "USD", TotalAmount: 100},
			fault: domain.FaultCurrencyMismatch,
		},
		{
			name:  "wrong amount",
			ev:    PreCheckoutEvent{QueryID: "q", Payload: "user_1_subscribe_1_month_ab12cd34", Currency: "XTR", TotalAmount: 90},
			fault: domain.FaultAmountMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, gw, svc := newPaymentHarness(t)
			user := store.seedUser(&domain.User{TelegramID: 100})
			inv := seedSubscriptionInvoice(store, user.ID, domain.InvoiceStatusCreated)

			err := svc.HandlePreCheckout(context.Background(), tt.ev)
			require.Error(t, err)

			var vErr *domain.PaymentValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.fault, vErr.Fault)
			assert.False(t, gw.lastAnswer().ok)
			assert.NotEmpty(t, gw.lastAnswer().message)

			// Rejection never mutates the invoice.
			stored, err := store.InvoiceByPayload(context.Background(), inv.Payload)
			require.NoError(t, err)
			assert.Equal(t, domain.InvoiceStatusCreated, stored.Status)
		})
	}
}

func TestHandlePreCheckoutRejectsProcessedInvoice(t *testing.T) {
	for _, status := range []domain.InvoiceStatus{
		domain.InvoiceStatusConfirmed,
		domain.InvoiceStatusCompleted,
		domain.InvoiceStatusFailed,
	} {
		t.Run(string(status), func(t *testing.T) {
			store, gw, svc := newPaymentHarness(t)
			user := store.seedUser(&domain.User{TelegramID: 100})
			inv := seedSubscriptionInvoice(store, user.ID, status)

			err := svc.HandlePreCheckout(context.Background(), PreCheckoutEvent{
				QueryID:     "q1",
				Payload:     inv.Payload,
				Currency:    "XTR",
				TotalAmount: 100,
			})
			require.Error(t, err)

			var vErr *domain.PaymentValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, domain.FaultAlreadyProcessed, vErr.Fault)
			assert.False(t, gw.lastAnswer().ok)
		})
	}
}

func TestCompletePaymentExtendsSubscription(t *testing.T) {
	store, gw, svc := newPaymentHarness(t)
	future := testNow.Add(10 * 24 * time.Hour)
	user := store.seedUser(&domain.User{TelegramID: 100, IsActive: true, ExpiresAt: &future})
	inv := seedSubscriptionInvoice(store, user.ID, domain.InvoiceStatusConfirmed)

	err := svc.CompletePayment(context.Background(), SuccessfulPaymentEvent{
		Payload:          inv.Payload,
		Currency:         "XTR",
		TotalAmount:      100,
		TelegramChargeID: "charge-1",
		ProviderChargeID: "provider-1",
		ChatID:           100,
		Raw:              []byte(`{"ok":true}`),
	})
	require.NoError(t, err)

	stored, err := store.InvoiceByPayload(context.Background(), inv.Payload)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusCompleted, stored.Status)
	require.NotNil(t, stored.TelegramPaymentChargeID)
	assert.Equal(t, "charge-1", *stored.TelegramPaymentChargeID)
	require.NotNil(t, stored.ProviderPaymentChargeID)
	assert.Equal(t, "provider-1", *stored.ProviderPaymentChargeID)
	assert.Equal(t, []byte(`{"ok":true}`), stored.RawSuccessfulPayment)

	// Remaining time stacks on top of the future expiry.
	updated, err := store.UserByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.ExpiresAt)
	assert.Equal(t, future.AddDate(0, 1, 0), *updated.ExpiresAt)
	assert.True(t, updated.IsActive)

	gw.mu.Lock()
	defer gw.mu.Unlock()
	require.Len(t, gw.messages, 1)
	assert.Contains(t, gw.messages[0], "продлена")
}

func TestCompletePaymentLapsedSubscriptionRestartsFromNow(t *testing.T) {
	store, _, svc := newPaymentHarness(t)
	past := testNow.Add(-24 * time.Hour)
	user := store.seedUser(&domain.User{TelegramID: 100, ExpiresAt: &past})
	inv := seedSubscriptionInvoice(store, user.ID, domain.InvoiceStatusConfirmed)

	err := svc.CompletePayment(context.Background(), SuccessfulPaymentEvent{
		Payload:          inv.Payload,
		Currency:         "XTR",
		TotalAmount:      100,
		TelegramChargeID: "charge-1",
		ChatID:           100,
	})
	require.NoError(t, err)

	updated, err := store.UserByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.ExpiresAt)
	assert.Equal(t, testNow.AddDate(0, 1, 0), *updated.ExpiresAt)
	assert.True(t, updated.IsActive)
}

func TestCompletePaymentCreditsBalance(t *testing.T) {
	store, _, svc := newPaymentHarness(t)
	user := store.seedUser(&domain.User{TelegramID: 100, Balance: 10})
	inv := store.seedInvoice(&domain.Invoice{
		UserID:   user.ID,
		Amount:   100,
		Currency: "XTR",
		Status:   domain.InvoiceStatusConfirmed,
		Payload:  "user_1_topup_100_ab12cd34",
		Metadata: map[string]int64{domain.MetaBalanceCredit: 182},
	})

	err := svc.CompletePayment(context.Background(), SuccessfulPaymentEvent{
		Payload:          inv.Payload,
		Currency:         "XTR",
		TotalAmount:      100,
		TelegramChargeID: "charge-1",
		ChatID:           100,
	})
	require.NoError(t, err)

	updated, err := store.UserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(192), updated.Balance)

	// A top-up must not touch the subscription.
	assert.Nil(t, updated.ExpiresAt)
	assert.False(t, updated.IsActive)
}

func TestCompletePaymentDuplicateDeliveryIsNoop(t *testing.T) {
	store, gw, svc := newPaymentHarness(t)
	user := store.seedUser(&domain.User{TelegramID: 100})
	inv := seedSubscriptionInvoice(store, user.ID, domain.InvoiceStatusConfirmed)

	ev := SuccessfulPaymentEvent{
		Payload:          inv.Payload,
		Currency:         "XTR",
		TotalAmount:      100,
		TelegramChargeID: "charge-1",
		ChatID:           100,
	}
	require.NoError(t, svc.CompletePayment(context.Background(), ev))

	first, err := store.UserByID(context.Background(), user.ID)
	require.NoError(t, err)

	// Same charge id again: accepted, but nothing changes.
	require.NoError(t, svc.CompletePayment(context.Background(), ev))

	second, err := store.UserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.ExpiresAt, *second.ExpiresAt)

	gw.mu.Lock()
	defer gw.mu.Unlock()
	assert.Len(t, gw.messages, 1)
}

func TestCompletePaymentPayloadMismatchLeavesStateIntact(t *testing.T) {
	store, gw, svc := newPaymentHarness(t)
	user := store.seedUser(&domain.User{TelegramID: 100})
	inv := seedSubscriptionInvoice(store, user.ID, domain.InvoiceStatusConfirmed)

	err := svc.CompletePayment(context.Background(), SuccessfulPaymentEvent{
		Payload:          inv.Payload,
		Currency:         "XTR",
		TotalAmount:      90, // paid amount disagrees with the invoice
		TelegramChargeID: "charge-1",
		ChatID:           100,
	})
	require.Error(t, err)

	var vErr *domain.PaymentValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, domain.FaultAmountMismatch, vErr.Fault)

	// Invoice stays in its last-good state for manual reconciliation.
	stored, err := store.InvoiceByPayload(context.Background(), inv.Payload)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusConfirmed, stored.Status)
	assert.Nil(t, stored.TelegramPaymentChargeID)

	updated, err := store.UserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.ExpiresAt)
	assert.False(t, updated.IsActive)

	// The user gets an error message, not a success confirmation.
	gw.mu.Lock()
	defer gw.mu.Unlock()
	require.Len(t, gw.messages, 1)
	assert.NotContains(t, gw.messages[0], "успешно")
}

func TestCompletePaymentMalformedEvent(t *testing.T) {
	_, _, svc := newPaymentHarness(t)

	err := svc.CompletePayment(context.Background(), SuccessfulPaymentEvent{
		Payload: "user_1_subscribe_1_month_ab12cd34",
		// missing telegram charge id
	})
	require.Error(t, err)

	var vErr *domain.PaymentValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, domain.FaultMalformedEvent, vErr.Fault)
}
