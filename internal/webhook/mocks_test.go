package webhook

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	apperrors "github.com/MaxConsolas/marzban-shop/internal/errors"
	"github.com/MaxConsolas/marzban-shop/internal/models"
)

type mockProvisioner struct {
	mu     sync.Mutex
	grants []string
	err    error
}

func (m *mockProvisioner) GrantOrExtend(ctx context.Context, username string, durationSeconds int64) (*models.PanelUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.grants = append(m.grants, username)
	return &models.PanelUser{Username: username}, nil
}

type mockCatalog struct {
	products map[string]models.Product
}

func (m *mockCatalog) ByCallback(callback string) (*models.Product, error) {
	if p, ok := m.products[callback]; ok {
		return &p, nil
	}
	return nil, &apperrors.NotFoundError{Entity: "product", Key: callback}
}

type mockUserStore struct {
	users map[int64]models.VPNUser
}

func (m *mockUserStore) FindByTelegramID(telegramID int64) (*models.VPNUser, error) {
	if u, ok := m.users[telegramID]; ok {
		return &u, nil
	}
	return nil, &apperrors.NotFoundError{Entity: "vpn user", Key: "?"}
}

// memPaymentStore mirrors the pending-payment slice of the local store
type memPaymentStore struct {
	mu      sync.Mutex
	pending []models.PendingPayment
	taken   []string
}

func (m *memPaymentStore) FindPayment(gateway models.GatewayKind, externalID string) (*models.PendingPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.pending {
		if m.pending[i].Gateway == gateway && m.pending[i].ExternalID == externalID {
			p := m.pending[i]
			return &p, nil
		}
	}
	return nil, &apperrors.NotFoundError{Entity: "pending payment", Key: externalID}
}

func (m *memPaymentStore) FindPaymentByOrderID(gateway models.GatewayKind, orderID string) (*models.PendingPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.pending {
		if m.pending[i].Gateway == gateway && m.pending[i].OrderID == orderID {
			p := m.pending[i]
			return &p, nil
		}
	}
	return nil, &apperrors.NotFoundError{Entity: "pending payment", Key: orderID}
}

func (m *memPaymentStore) TakePayment(gateway models.GatewayKind, externalID string) (*models.PendingPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.pending {
		if m.pending[i].Gateway == gateway && m.pending[i].ExternalID == externalID {
			p := m.pending[i]
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			m.taken = append(m.taken, externalID)
			return &p, nil
		}
	}
	return nil, &apperrors.NotFoundError{Entity: "pending payment", Key: externalID}
}

func (m *memPaymentStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

type mockMessenger struct {
	mu    sync.Mutex
	sent  []string
	chats []int64
	err   error
}

func (m *mockMessenger) SendHTML(chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.chats = append(m.chats, chatID)
	m.sent = append(m.sent, text)
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}
