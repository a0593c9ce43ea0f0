package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kvant-lab/vpnbot/internal/domain"
	"github.com/kvant-lab/vpnbot/internal/telegram"
	"github.com/kvant-lab/vpnbot/internal/worker"
)

func testPool(t *testing.T) *worker.Pool {
	t.Helper()
	p := worker.NewPool(1, 16, 1, 0)
	t.Cleanup(p.Shutdown)
	return p
}

// memStore is an in-memory Store with snapshot-rollback transactions.
type memStore struct {
	mu          sync.Mutex
	users       map[int64]*domain.User
	invoices    map[int64]*domain.Invoice
	servers     map[int64]*domain.VpnServer
	nextUser    int64
	nextInvoice int64
	nextServer  int64
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[int64]*domain.User{},
		invoices:    map[int64]*domain.Invoice{},
		servers:     map[int64]*domain.VpnServer{},
		nextUser:    1,
		nextInvoice: 1,
		nextServer:  1,
	}
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	if u.ExpiresAt != nil {
		t := *u.ExpiresAt
		c.ExpiresAt = &t
	}
	if u.VpnID != nil {
		v := *u.VpnID
		c.VpnID = &v
	}
	if u.Settings != nil {
		c.Settings = map[string]string{}
		for k, v := range u.Settings {
			c.Settings[k] = v
		}
	}
	return &c
}

func copyInvoice(i *domain.Invoice) *domain.Invoice {
	c := *i
	if i.TelegramPaymentChargeID != nil {
		s := *i.TelegramPaymentChargeID
		c.TelegramPaymentChargeID = &s
	}
	if i.ProviderPaymentChargeID != nil {
		s := *i.ProviderPaymentChargeID
		c.ProviderPaymentChargeID = &s
	}
	if i.Metadata != nil {
		c.Metadata = map[string]int64{}
		for k, v := range i.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func (m *memStore) snapshot() (map[int64]*domain.User, map[int64]*domain.Invoice) {
	users := map[int64]*domain.User{}
	for id, u := range m.users {
		users[id] = copyUser(u)
	}
	invoices := map[int64]*domain.Invoice{}
	for id, i := range m.invoices {
		invoices[id] = copyInvoice(i)
	}
	return users, invoices
}

// seedUser inserts a user directly, bypassing CreateUser defaults.
func (m *memStore) seedUser(u *domain.User) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == 0 {
		u.ID = m.nextUser
		m.nextUser++
	}
	m.users[u.ID] = copyUser(u)
	return u
}

func (m *memStore) seedInvoice(i *domain.Invoice) *domain.Invoice {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i.ID == 0 {
		i.ID = m.nextInvoice
		m.nextInvoice++
	}
	m.invoices[i.ID] = copyInvoice(i)
	return i
}

func (m *memStore) CreateUser(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &domain.User{
		ID:               m.nextUser,
		TelegramID:       telegramID,
		TelegramUsername: username,
		CreatedAt:        time.Now(),
	}
	m.nextUser++
	m.users[u.ID] = u
	return copyUser(u), nil
}

func (m *memStore) UserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.TelegramID == telegramID {
			return copyUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memStore) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (m *memStore) UpdateUserInfo(ctx context.Context, id int64, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.TelegramUsername = username
	return nil
}

func (m *memStore) SetUserSettings(ctx context.Context, id int64, settings map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Settings = settings
	return nil
}

func (m *memStore) SetUserVpnID(ctx context.Context, id int64, vpnID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.VpnID = &vpnID
	return nil
}

func (m *memStore) SetUserActive(ctx context.Context, id int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (m *memStore) SetUserExpiresAt(ctx context.Context, id int64, expiresAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ExpiresAt = expiresAt
	return nil
}

func (m *memStore) SetUserBalance(ctx context.Context, id int64, balance int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Balance = balance
	return nil
}

func (m *memStore) ListUsers(ctx context.Context, limit, offset int64, usernameFilter string) ([]domain.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.User
	for _, u := range m.users {
		if usernameFilter != "" && !strings.Contains(u.TelegramUsername, usernameFilter) {
			continue
		}
		all = append(all, *copyUser(u))
	}
	total := int64(len(all))
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memStore) ListActiveUsers(ctx context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for _, u := range m.users {
		if u.IsActive {
			out = append(out, *copyUser(u))
		}
	}
	return out, nil
}

func (m *memStore) ExpiredActiveUsers(ctx context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var out []domain.User
	for _, u := range m.users {
		if u.IsActive && u.ExpiresAt != nil && !u.ExpiresAt.After(now) {
			out = append(out, *copyUser(u))
		}
	}
	return out, nil
}

func (m *memStore) CreateInvoice(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := copyInvoice(inv)
	c.ID = m.nextInvoice
	m.nextInvoice++
	c.CreatedAt = time.Now()
	m.invoices[c.ID] = c
	return copyInvoice(c), nil
}

func (m *memStore) InvoiceByPayload(ctx context.Context, payload string) (*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.invoices {
		if i.Payload == payload {
			return copyInvoice(i), nil
		}
	}
	return nil, domain.ErrInvoiceNotFound
}

func (m *memStore) InvoiceByTelegramChargeID(ctx context.Context, chargeID string) (*domain.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, i := range m.invoices {
		if i.TelegramPaymentChargeID != nil && *i.TelegramPaymentChargeID == chargeID {
			return copyInvoice(i), nil
		}
	}
	return nil, domain.ErrInvoiceNotFound
}

func (m *memStore) MarkInvoiceFailed(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.invoices[id]
	if !ok {
		return domain.ErrInvoiceNotFound
	}
	i.Status = domain.InvoiceStatusFailed
	return nil
}

func (m *memStore) ConfirmInvoice(ctx context.Context, id int64, rawPreCheckout []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.invoices[id]
	if !ok {
		return domain.ErrInvoiceNotFound
	}
	i.Status = domain.InvoiceStatusConfirmed
	i.RawPreCheckoutQuery = rawPreCheckout
	return nil
}

func (m *memStore) VpnServers(ctx context.Context) ([]domain.VpnServer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.VpnServer
	for _, s := range m.servers {
		out = append(out, *s)
	}
	return out, nil
}

func (m *memStore) VpnServerByID(ctx context.Context, id int64) (*domain.VpnServer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.servers[id]
	if !ok {
		return nil, domain.ErrServerNotFound
	}
	c := *s
	return &c, nil
}

func (m *memStore) CreateVpnServer(ctx context.Context, srv *domain.VpnServer) (*domain.VpnServer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *srv
	c.ID = m.nextServer
	m.nextServer++
	m.servers[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memStore) DeleteVpnServer(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.servers[id]; !ok {
		return domain.ErrServerNotFound
	}
	delete(m.servers, id)
	return nil
}

func (m *memStore) InTx(ctx context.Context, fn func(tx StoreTx) error) error {
	m.mu.Lock()
	users, invoices := m.snapshot()
	m.mu.Unlock()

	if err := fn(&memTx{store: m}); err != nil {
		m.mu.Lock()
		m.users = users
		m.invoices = invoices
		m.mu.Unlock()
		return err
	}
	return nil
}

type memTx struct {
	store *memStore
}

func (t *memTx) UserForUpdate(ctx context.Context, id int64) (*domain.User, error) {
	return t.store.UserByID(ctx, id)
}

func (t *memTx) InvoiceByPayloadForUpdate(ctx context.Context, payload string) (*domain.Invoice, error) {
	return t.store.InvoiceByPayload(ctx, payload)
}

func (t *memTx) CompleteInvoice(ctx context.Context, id int64, telegramChargeID string, providerChargeID *string, rawPayment []byte) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for otherID, other := range t.store.invoices {
		if otherID != id && other.TelegramPaymentChargeID != nil && *other.TelegramPaymentChargeID == telegramChargeID {
			return domain.ErrDuplicatePayment
		}
	}
	i, ok := t.store.invoices[id]
	if !ok {
		return domain.ErrInvoiceNotFound
	}
	i.Status = domain.InvoiceStatusCompleted
	i.TelegramPaymentChargeID = &telegramChargeID
	i.ProviderPaymentChargeID = providerChargeID
	i.RawSuccessfulPayment = rawPayment
	return nil
}

func (t *memTx) SetUserSubscription(ctx context.Context, id int64, expiresAt time.Time, active bool) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	u, ok := t.store.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ExpiresAt = &expiresAt
	u.IsActive = active
	return nil
}

func (t *memTx) AddUserBalance(ctx context.Context, id int64, delta int64) (int64, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	u, ok := t.store.users[id]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	u.Balance += delta
	return u.Balance, nil
}

func (t *memTx) DeactivateUser(ctx context.Context, id int64) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	u, ok := t.store.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsActive = false
	return nil
}

// fakeGateway records every outbound Telegram call.
type fakeGateway struct {
	mu       sync.Mutex
	messages []string
	chats    []int64
	invoices []telegram.InvoiceParams
	answers  []gateAnswer

	sendErr    error
	invoiceErr error
}

type gateAnswer struct {
	queryID string
	ok      bool
	message string
}

func (g *fakeGateway) SendMessage(ctx context.Context, chatID int64, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return g.sendErr
	}
	g.messages = append(g.messages, text)
	g.chats = append(g.chats, chatID)
	return nil
}

func (g *fakeGateway) SendInvoice(ctx context.Context, chatID int64, params telegram.InvoiceParams) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.invoiceErr != nil {
		return g.invoiceErr
	}
	g.invoices = append(g.invoices, params)
	return nil
}

func (g *fakeGateway) AnswerPreCheckoutQuery(ctx context.Context, queryID string, ok bool, errorMessage string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.answers = append(g.answers, gateAnswer{queryID: queryID, ok: ok, message: errorMessage})
	return nil
}

func (g *fakeGateway) lastAnswer() gateAnswer {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.answers[len(g.answers)-1]
}
