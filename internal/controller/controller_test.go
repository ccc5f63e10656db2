package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"barber-queue/internal/catalog"
	"barber-queue/internal/models"
	"barber-queue/internal/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualProcessor records charges so tests decide when callbacks fire.
type manualProcessor struct {
	mu      sync.Mutex
	charges []payment.Charge
	cbs     []payment.Callbacks
	err     error
}

func (p *manualProcessor) Charge(_ context.Context, charge payment.Charge, cb payment.Callbacks) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.charges = append(p.charges, charge)
	p.cbs = append(p.cbs, cb)
	return nil
}

func (p *manualProcessor) last() payment.Callbacks {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cbs[len(p.cbs)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	states []State
}

func (r *recordingPublisher) Publish(_ string, st State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, st)
}

const sid = "session-1"

var (
	john = models.Profile{
		Name:    "John",
		Surname: "Doe",
		Address: "123 Main St, City, State",
		Phone:   "(555) 123-4567",
		Email:   "john@example.com",
	}
	johnID = models.Identity{UserID: "uid-1", Token: "token-1"}
)

func setup(t *testing.T, opts ...Option) (*Controller, *manualProcessor, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	proc := &manualProcessor{}
	c := New(store, catalog.Default(), FixedEstimator{Position: 3, WaitMinutes: 45, TotalWaiting: 2}, proc, opts...)
	return c, proc, store
}

func signedIn(t *testing.T, c *Controller) State {
	t.Helper()
	id, p := johnID, john
	st, err := c.Authenticate(context.Background(), sid, &id, &p, nil)
	require.NoError(t, err)
	return st
}

func inQueue(t *testing.T, c *Controller, serviceID string) State {
	t.Helper()
	signedIn(t, c)
	st, err := c.SelectService(context.Background(), sid, serviceID)
	require.NoError(t, err)
	return st
}

func TestInitialState(t *testing.T) {
	c, _, _ := setup(t)

	st, err := c.State(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, models.ScreenAuth, st.Screen)
	assert.Equal(t, models.PaymentPending, st.PaymentStatus)
	assert.False(t, st.PaymentOverlay)
}

func TestAuthenticate_RetainsProfileVerbatim(t *testing.T) {
	c, _, store := setup(t)

	st := signedIn(t, c)

	assert.Equal(t, models.ScreenServiceSelection, st.Screen)
	require.NotNil(t, st.Profile)
	assert.Equal(t, john, *st.Profile)
	assert.Equal(t, "John", st.Profile.Name)

	saved, ok, err := store.Load(context.Background(), sid)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, john, *saved.Profile)
	assert.Equal(t, johnID, *saved.Identity)
}

func TestAuthenticate_Guard(t *testing.T) {
	c, _, _ := setup(t)
	ctx := context.Background()
	p := john

	_, err := c.Authenticate(ctx, sid, nil, &p, nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = c.Authenticate(ctx, sid, &models.Identity{UserID: "u"}, &p, nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	id := johnID
	_, err = c.Authenticate(ctx, sid, &id, nil, nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	st, err := c.State(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, models.ScreenAuth, st.Screen)
}

func TestSelectService_PremiumCut(t *testing.T) {
	c, _, _ := setup(t)

	st := inQueue(t, c, "2")

	assert.Equal(t, models.ScreenInQueue, st.Screen)
	require.NotNil(t, st.Queue)
	assert.Equal(t, models.QueueView{
		Position:             3,
		EstimatedWaitMinutes: 45,
		TotalWaiting:         2,
		ServiceName:          "Premium Cut & Style",
		PaymentStatus:        models.PaymentPending,
	}, *st.Queue)

	st, err := c.OpenPayment(context.Background(), sid)
	require.NoError(t, err)
	assert.True(t, st.PaymentOverlay)
	assert.True(t, st.Payment.Amount.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, payment.PhaseIdle, st.Payment.Phase)
}

func TestSelectService_Errors(t *testing.T) {
	c, _, _ := setup(t)
	ctx := context.Background()

	_, err := c.SelectService(ctx, sid, "1")
	assert.ErrorIs(t, err, ErrInvalidTransition, "not signed in yet")

	signedIn(t, c)
	_, err = c.SelectService(ctx, sid, "nope")
	assert.ErrorIs(t, err, ErrUnknownService)

	st, err := c.State(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, models.ScreenServiceSelection, st.Screen)
	assert.Nil(t, st.Service)
}

func TestSelectService_ShopClosed(t *testing.T) {
	c, _, _ := setup(t, WithOpeningHours(func(time.Time) bool { return false }))
	signedIn(t, c)

	_, err := c.SelectService(context.Background(), sid, "1")
	assert.ErrorIs(t, err, ErrShopClosed)
}

func TestConfirmPayment_CompletesAfterBothCallbacks(t *testing.T) {
	c, proc, _ := setup(t)
	ctx := context.Background()
	inQueue(t, c, "2")
	_, err := c.OpenPayment(ctx, sid)
	require.NoError(t, err)

	st, err := c.ConfirmPayment(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, payment.PhaseProcessing, st.Payment.Phase)
	require.Len(t, proc.charges, 1)
	assert.True(t, proc.charges[0].Amount.Equal(decimal.NewFromInt(40)))

	// cannot dismiss while processing
	_, err = c.ClosePayment(ctx, sid)
	assert.ErrorIs(t, err, ErrPaymentBusy)

	proc.last().Succeeded()
	st, err = c.State(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, payment.PhaseSucceeded, st.Payment.Phase)
	assert.True(t, st.PaymentOverlay)
	assert.Equal(t, models.PaymentPending, st.PaymentStatus)

	proc.last().Completed()
	st, err = c.State(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, st.PaymentStatus)
	assert.Equal(t, models.PaymentPaid, st.Queue.PaymentStatus)
	assert.False(t, st.PaymentOverlay)
	assert.False(t, st.CanPay())
	assert.False(t, st.Queue.CanPay())

	_, err = c.OpenPayment(ctx, sid)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
}

func TestConfirmPayment_SimulatedProcessor(t *testing.T) {
	store := NewMemoryStore()
	pub := &recordingPublisher{}
	c := New(store, catalog.Default(), FixedEstimator{Position: 3, WaitMinutes: 45, TotalWaiting: 2},
		payment.NewSimulatedProcessor(5*time.Millisecond, 5*time.Millisecond), WithPublisher(pub))
	ctx := context.Background()
	inQueue(t, c, "1")
	_, err := c.OpenPayment(ctx, sid)
	require.NoError(t, err)
	_, err = c.ConfirmPayment(ctx, sid)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		st, err := c.State(ctx, sid)
		return err == nil && st.PaymentStatus == models.PaymentPaid && !st.PaymentOverlay
	}, time.Second, 5*time.Millisecond)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	var phases []payment.Phase
	for _, st := range pub.states {
		if st.PaymentOverlay {
			phases = append(phases, st.Payment.Phase)
		}
	}
	assert.Equal(t, []payment.Phase{payment.PhaseIdle, payment.PhaseProcessing, payment.PhaseSucceeded}, phases)
}

func TestClosePayment_FromIdleKeepsPending(t *testing.T) {
	c, proc, _ := setup(t)
	ctx := context.Background()
	inQueue(t, c, "3")
	_, err := c.OpenPayment(ctx, sid)
	require.NoError(t, err)

	st, err := c.ClosePayment(ctx, sid)
	require.NoError(t, err)
	assert.False(t, st.PaymentOverlay)
	assert.Equal(t, models.PaymentPending, st.PaymentStatus)
	assert.Empty(t, proc.charges)

	_, err = c.ClosePayment(ctx, sid)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = c.ConfirmPayment(ctx, sid)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancel_ResetsPaymentAndService(t *testing.T) {
	for _, paid := range []bool{false, true} {
		c, proc, _ := setup(t)
		ctx := context.Background()
		inQueue(t, c, "2")

		if paid {
			_, err := c.OpenPayment(ctx, sid)
			require.NoError(t, err)
			_, err = c.ConfirmPayment(ctx, sid)
			require.NoError(t, err)
			proc.last().Succeeded()
			proc.last().Completed()
			st, err := c.State(ctx, sid)
			require.NoError(t, err)
			require.Equal(t, models.PaymentPaid, st.PaymentStatus)
		}

		st, err := c.Cancel(ctx, sid)
		require.NoError(t, err)
		assert.Equal(t, models.ScreenServiceSelection, st.Screen)
		assert.Nil(t, st.Service)
		assert.Nil(t, st.Queue)
		assert.Equal(t, models.PaymentPending, st.PaymentStatus)
		assert.False(t, st.PaymentOverlay)

		// next entry starts pending
		st, err = c.SelectService(ctx, sid, "1")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentPending, st.Queue.PaymentStatus)
		assert.True(t, st.CanPay())
	}
}

func TestCancel_WhileProcessingRejected(t *testing.T) {
	c, _, _ := setup(t)
	ctx := context.Background()
	inQueue(t, c, "2")
	_, err := c.OpenPayment(ctx, sid)
	require.NoError(t, err)
	_, err = c.ConfirmPayment(ctx, sid)
	require.NoError(t, err)

	_, err = c.Cancel(ctx, sid)
	assert.ErrorIs(t, err, ErrPaymentBusy)
}

func TestStaleCallbacksIgnored(t *testing.T) {
	c, proc, _ := setup(t)
	ctx := context.Background()
	inQueue(t, c, "2")
	_, err := c.OpenPayment(ctx, sid)
	require.NoError(t, err)
	_, err = c.ConfirmPayment(ctx, sid)
	require.NoError(t, err)
	stale := proc.last()

	_, err = c.SignOut(ctx, sid)
	require.NoError(t, err)
	inQueue(t, c, "1")

	stale.Succeeded()
	stale.Completed()

	st, err := c.State(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, models.ScreenInQueue, st.Screen)
	assert.Equal(t, models.PaymentPending, st.PaymentStatus)
	assert.Equal(t, "Standard Cut", st.Queue.ServiceName)
}

func TestConfirmPayment_ProcessorError(t *testing.T) {
	c, proc, _ := setup(t)
	ctx := context.Background()
	inQueue(t, c, "2")
	_, err := c.OpenPayment(ctx, sid)
	require.NoError(t, err)

	proc.err = errors.New("gateway down")
	_, err = c.ConfirmPayment(ctx, sid)
	require.Error(t, err)

	st, err := c.State(ctx, sid)
	require.NoError(t, err)
	assert.True(t, st.PaymentOverlay)
	assert.Equal(t, payment.PhaseIdle, st.Payment.Phase)
	require.NotNil(t, st.Notice)
	assert.Equal(t, models.NoticeDestructive, st.Notice.Variant)
}

func TestSignOut(t *testing.T) {
	c, _, store := setup(t)
	ctx := context.Background()
	inQueue(t, c, "4")

	st, err := c.SignOut(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, models.ScreenAuth, st.Screen)
	assert.Nil(t, st.Profile)

	_, ok, err := store.Load(ctx, sid)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNoticeShownOnce(t *testing.T) {
	c, _, _ := setup(t)
	ctx := context.Background()
	notice := models.Notice{Title: "Missing information", Message: "Please fill in all fields.", Variant: models.NoticeDestructive}
	require.NoError(t, c.Notify(ctx, sid, notice))

	st, err := c.TakeNotice(ctx, sid)
	require.NoError(t, err)
	require.NotNil(t, st.Notice)
	assert.Equal(t, notice, *st.Notice)

	st, err = c.TakeNotice(ctx, sid)
	require.NoError(t, err)
	assert.Nil(t, st.Notice)
	assert.Equal(t, models.ScreenAuth, st.Screen)
}

func TestSessionsAreIndependent(t *testing.T) {
	c, _, _ := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(session string) {
			defer wg.Done()
			ident, p := johnID, john
			_, err := c.Authenticate(ctx, session, &ident, &p, nil)
			assert.NoError(t, err)
			_, err = c.SelectService(ctx, session, "1")
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	for _, id := range []string{"a", "b", "c", "d"} {
		st, err := c.State(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.ScreenInQueue, st.Screen)
	}
}

func TestRenderKey_IgnoresNotice(t *testing.T) {
	st := NewState(sid)
	withNotice := st
	withNotice.Notice = &models.Notice{Title: "Welcome back!", Variant: models.NoticeDefault}
	assert.Equal(t, st.RenderKey(), withNotice.RenderKey())

	moved := st
	moved.Screen = models.ScreenServiceSelection
	assert.NotEqual(t, st.RenderKey(), moved.RenderKey())

	paying := queueStateForKey()
	processing := paying
	processing.Payment.Phase = payment.PhaseProcessing
	assert.NotEqual(t, paying.RenderKey(), processing.RenderKey())
}

func queueStateForKey() State {
	st := NewState(sid)
	st.Screen = models.ScreenInQueue
	st.PaymentStatus = models.PaymentPending
	st.PaymentOverlay = true
	st.Payment = payment.NewFlow(decimal.NewFromInt(40))
	return st
}
