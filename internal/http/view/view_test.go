package view

import (
	"bytes"
	"testing"

	"barber-queue/internal/catalog"
	"barber-queue/internal/controller"
	"barber-queue/internal/models"
	"barber-queue/internal/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, p Page) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, p))
	return buf.String()
}

func testid(id string) string {
	return `data-testid="` + id + `"`
}

func TestRender_AuthScreen(t *testing.T) {
	html := render(t, NewPage(controller.NewState("sid"), nil))

	for _, id := range []string{
		"tab-signin", "tab-signup",
		"input-signin-email", "input-signin-password", "button-signin",
		"input-name", "input-surname", "input-address", "input-phone",
		"input-email", "input-password", "button-signup",
	} {
		assert.Contains(t, html, testid(id))
	}
	assert.NotContains(t, html, testid("button-enter-queue"))
}

func TestRender_PhoneGate(t *testing.T) {
	p := NewPage(controller.NewState("sid"), nil)
	p.PhoneGate = true
	html := render(t, p)

	assert.Contains(t, html, testid("input-phone"))
	assert.Contains(t, html, testid("button-enter-queue"))
	assert.NotContains(t, html, testid("button-signup"))
}

func TestRender_ServiceSelection(t *testing.T) {
	st := controller.NewState("sid")
	st.Screen = models.ScreenServiceSelection
	html := render(t, NewPage(st, catalog.Default().List()))

	for _, id := range []string{"1", "2", "3", "4"} {
		assert.Contains(t, html, testid("card-service-"+id))
		assert.Contains(t, html, testid("button-join-"+id))
	}
	assert.Contains(t, html, "Premium Cut &amp; Style")
	assert.Contains(t, html, "$40")
}

func queueState(status models.PaymentStatus) controller.State {
	st := controller.NewState("sid")
	st.Screen = models.ScreenInQueue
	st.PaymentStatus = status
	st.Queue = &models.QueueView{
		Position:             3,
		EstimatedWaitMinutes: 45,
		TotalWaiting:         2,
		ServiceName:          "Premium Cut & Style",
		PaymentStatus:        status,
	}
	return st
}

func TestRender_QueuePending(t *testing.T) {
	html := render(t, NewPage(queueState(models.PaymentPending), nil))

	assert.Contains(t, html, `data-testid="text-position">#3<`)
	assert.Contains(t, html, `data-testid="text-wait-time">45 min<`)
	assert.Contains(t, html, `data-testid="text-customers-ahead">2<`)
	assert.Contains(t, html, `data-testid="badge-payment-status">Pending<`)
	assert.Contains(t, html, `data-testid="text-service-name">Premium Cut &amp; Style<`)
	assert.Contains(t, html, testid("button-cancel"))
	assert.Contains(t, html, testid("button-pay"))
}

func TestRender_QueuePaidHidesPay(t *testing.T) {
	html := render(t, NewPage(queueState(models.PaymentPaid), nil))

	assert.Contains(t, html, `data-testid="badge-payment-status">Paid<`)
	assert.Contains(t, html, testid("button-cancel"))
	assert.NotContains(t, html, testid("button-pay"))
}

func TestRender_PaymentOverlay(t *testing.T) {
	st := queueState(models.PaymentPending)
	st.PaymentOverlay = true
	st.Payment = payment.NewFlow(decimal.NewFromInt(40))

	html := render(t, NewPage(st, nil))
	assert.Contains(t, html, `data-testid="text-amount">$40<`)
	assert.Contains(t, html, "Confirm Payment")
	assert.NotContains(t, html, "disabled")

	st.Payment.Phase = payment.PhaseProcessing
	html = render(t, NewPage(st, nil))
	assert.Contains(t, html, "Processing...")
	assert.Contains(t, html, "disabled")

	st.Payment.Phase = payment.PhaseSucceeded
	html = render(t, NewPage(st, nil))
	assert.Contains(t, html, "Payment Successful!")
	assert.NotContains(t, html, testid("button-confirm-payment"))
}

func TestRender_Notice(t *testing.T) {
	st := controller.NewState("sid")
	st.Notice = &models.Notice{Title: "Missing information", Message: "Please fill in all fields.", Variant: models.NoticeDestructive}

	html := render(t, NewPage(st, nil))
	assert.Contains(t, html, "Missing information")
	assert.Contains(t, html, "toast-destructive")
}

func TestRender_StateKeyMatchesSnapshotKey(t *testing.T) {
	st := queueState(models.PaymentPending)
	html := render(t, NewPage(st, nil))
	assert.Contains(t, html, `<body data-state="`+st.RenderKey()+`">`)

	st.Notice = &models.Notice{Title: "Joined", Variant: models.NoticeDefault}
	assert.Contains(t, render(t, NewPage(st, nil)), `data-state="`+st.RenderKey()+`"`)
}

func TestRender_PhoneGatePrefill(t *testing.T) {
	p := NewPage(controller.NewState("sid"), nil)
	p.PhoneGate = true
	p.Phone = "(555) 123-4567"

	assert.Contains(t, render(t, p), `value="(555) 123-4567" data-testid="input-phone"`)
}
