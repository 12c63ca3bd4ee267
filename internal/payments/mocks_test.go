package payments

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/MaxConsolas/marzban-shop/internal/models"
)

// memPendingStore is an in-memory PendingStore used by the adapter tests
type memPendingStore struct {
	mu        sync.Mutex
	inserted  []models.PendingPayment
	insertErr error
}

func (m *memPendingStore) InsertPayment(payment models.PendingPayment) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserted = append(m.inserted, payment)
	return nil
}

func (m *memPendingStore) last() *models.PendingPayment {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.inserted) == 0 {
		return nil
	}
	return &m.inserted[len(m.inserted)-1]
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}
