package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentValidationErrorMessages(t *testing.T) {
	err := &PaymentValidationError{
		Fault:    FaultAmountMismatch,
		Payload:  "user_1_subscribe_1_month_ab12cd34",
		Expected: "100",
		Received: "90",
	}

	assert.Contains(t, err.Error(), "amount_mismatch")
	assert.Contains(t, err.Error(), "expected \"100\"")

	// Diagnostic detail stays out of the user-facing message.
	msg := err.UserMessage()
	assert.NotContains(t, msg, "100")
	assert.NotContains(t, msg, "90")
	assert.NotEmpty(t, msg)
}

func TestPaymentValidationErrorUserMessagePerFault(t *testing.T) {
	faults := []PaymentFault{
		FaultMalformedEvent,
		FaultInvoiceNotFound,
		FaultPayloadMismatch,
		FaultCurrencyMismatch,
		FaultAmountMismatch,
		FaultAlreadyProcessed,
	}
	for _, fault := range faults {
		err := &PaymentValidationError{Fault: fault}
		assert.NotEmpty(t, err.UserMessage(), "fault %s", fault)
	}
}

func TestInsufficientBalanceErrorIs(t *testing.T) {
	err := &InsufficientBalanceError{Required: 182, Current: 100}
	assert.True(t, errors.Is(err, ErrInsufficientBalance))
	assert.Contains(t, err.Error(), "182")
	assert.Contains(t, err.Error(), "100")
}
