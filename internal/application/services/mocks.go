package services

import (
	"context"
	"sync"
	"time"

	"github.com/saborlocal/payment-sync/internal/application"
	"github.com/saborlocal/payment-sync/internal/domain"
)

// Hand-rolled mocks for the application ports, shared by the service and
// worker tests. Every method falls back to an in-memory implementation
// unless its Fn field is set.

type MockOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order

	FindByPaymentIDFn      func(ctx context.Context, paymentID string) (*domain.Order, error)
	FindPendingByMethodFn  func(ctx context.Context, method domain.PaymentMethod, limit int) ([]*domain.Order, error)
	MarkPaidFn             func(ctx context.Context, orderID string, at time.Time) error
	MarkPaymentCancelledFn func(ctx context.Context, orderID string, at time.Time) error

	MarkPaidCalls      int
	MarkCancelledCalls int
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: make(map[string]*domain.Order)}
}

func (m *MockOrderRepository) Put(order *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
}

func (m *MockOrderRepository) Get(orderID string) *domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orders[orderID]
}

func (m *MockOrderRepository) FindByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	if m.FindByPaymentIDFn != nil {
		return m.FindByPaymentIDFn(ctx, paymentID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.PaymentID == paymentID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, application.NewNotFoundError("order not found for payment id")
}

func (m *MockOrderRepository) FindPendingByMethod(ctx context.Context, method domain.PaymentMethod, limit int) ([]*domain.Order, error) {
	if m.FindPendingByMethodFn != nil {
		return m.FindPendingByMethodFn(ctx, method, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Order
	for _, o := range m.orders {
		if o.PaymentStatus == domain.PaymentPending && o.PaymentMethod == method {
			cp := *o
			out = append(out, &cp)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockOrderRepository) MarkPaid(ctx context.Context, orderID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MarkPaidCalls++
	if m.MarkPaidFn != nil {
		return m.MarkPaidFn(ctx, orderID, at)
	}
	if o, ok := m.orders[orderID]; ok && o.PaymentStatus == domain.PaymentPending {
		o.PaymentStatus = domain.PaymentPaid
		o.Status = domain.OrderConfirmed
		o.PaidAt = &at
		o.UpdatedAt = at
	}
	return nil
}

func (m *MockOrderRepository) MarkPaymentCancelled(ctx context.Context, orderID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MarkCancelledCalls++
	if m.MarkPaymentCancelledFn != nil {
		return m.MarkPaymentCancelledFn(ctx, orderID, at)
	}
	if o, ok := m.orders[orderID]; ok && o.PaymentStatus == domain.PaymentPending {
		o.PaymentStatus = domain.PaymentCancelled
		o.UpdatedAt = at
	}
	return nil
}

type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	FindByIDFn     func(ctx context.Context, userID string) (*domain.User, error)
	AddTokenFn     func(ctx context.Context, userID, token string) error
	RemoveTokensFn func(ctx context.Context, userID string, tokens []string) error

	RemovedTokens []string
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Put(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) FindByID(ctx context.Context, userID string) (*domain.User, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[userID]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, application.NewNotFoundError("user not found")
}

func (m *MockUserRepository) AddToken(ctx context.Context, userID, token string) error {
	if m.AddTokenFn != nil {
		return m.AddTokenFn(ctx, userID, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		u = &domain.User{ID: userID}
		m.users[userID] = u
	}
	for _, t := range u.FCMTokens {
		if t == token {
			return nil
		}
	}
	u.FCMTokens = append(u.FCMTokens, token)
	return nil
}

func (m *MockUserRepository) RemoveTokens(ctx context.Context, userID string, tokens []string) error {
	if m.RemoveTokensFn != nil {
		return m.RemoveTokensFn(ctx, userID, tokens)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemovedTokens = append(m.RemovedTokens, tokens...)
	u, ok := m.users[userID]
	if !ok {
		return nil
	}
	remove := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		remove[t] = true
	}
	var kept []string
	for _, t := range u.FCMTokens {
		if !remove[t] {
			kept = append(kept, t)
		}
	}
	u.FCMTokens = kept
	return nil
}

type MockGatewayClient struct {
	mu         sync.Mutex
	QueryFn    func(ctx context.Context, paymentID string) (*application.GatewayStatus, error)
	QueryCalls int
}

func (m *MockGatewayClient) Query(ctx context.Context, paymentID string) (*application.GatewayStatus, error) {
	m.mu.Lock()
	m.QueryCalls++
	m.mu.Unlock()
	if m.QueryFn != nil {
		return m.QueryFn(ctx, paymentID)
	}
	return &application.GatewayStatus{Status: 0}, nil
}

type MockPushClient struct {
	mu              sync.Mutex
	SendMulticastFn func(ctx context.Context, tokens []string, msg application.PushMessage) (*application.MulticastResult, error)
	SentTokens      [][]string
	SentMessages    []application.PushMessage
}

func (m *MockPushClient) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SentMessages)
}

func (m *MockPushClient) SendMulticast(ctx context.Context, tokens []string, msg application.PushMessage) (*application.MulticastResult, error) {
	m.mu.Lock()
	m.SentTokens = append(m.SentTokens, tokens)
	m.SentMessages = append(m.SentMessages, msg)
	m.mu.Unlock()
	if m.SendMulticastFn != nil {
		return m.SendMulticastFn(ctx, tokens, msg)
	}
	result := &application.MulticastResult{SuccessCount: len(tokens)}
	for range tokens {
		result.Responses = append(result.Responses, application.SendResult{Success: true})
	}
	return result, nil
}

type MockAuthVerifier struct {
	VerifyTokenFn func(ctx context.Context, token string) (string, error)
}

func (m *MockAuthVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	if m.VerifyTokenFn != nil {
		return m.VerifyTokenFn(ctx, token)
	}
	return "", application.NewUnauthenticatedError()
}
