package storage

import (
	"encoding/json"
	"os"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	apperrors "github.com/MaxConsolas/marzban-shop/internal/errors"
	"github.com/MaxConsolas/marzban-shop/internal/helpers"
	"github.com/MaxConsolas/marzban-shop/internal/models"
)

// storeData represents the JSON structure stored on disk
type storeData struct {
	VPNUsers        []models.VPNUser        `json:"vpn_users"`
	PendingPayments []models.PendingPayment `json:"pending_payments"`
	NextID          int                     `json:"next_id"`
}

// Store keeps VPN users and pending payments in a JSON file. It is the
// sole coordination point between the payment adapters and the webhook
// router, so every mutation happens under the write lock and is flushed
// to disk before returning.
type Store struct {
	filename string
	data     *storeData
	mu       sync.RWMutex
	logger   *logrus.Logger
}

// NewStore creates a store backed by the given file
func NewStore(filename string, logger *logrus.Logger) *Store {
	s := &Store{
		filename: filename,
		data: &storeData{
			VPNUsers:        make([]models.VPNUser, 0),
			PendingPayments: make([]models.PendingPayment, 0),
			NextID:          1,
		},
		logger: logger,
	}

	if err := s.load(); err != nil {
		logger.Warnf("Failed to load storage file: %v", err)
	}

	return s
}

// load reads data from the JSON file
func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filename)
	if os.IsNotExist(err) {
		s.logger.Info("Storage file does not exist, starting with empty data")
		return nil
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, s.data)
}

// save writes data to the JSON file atomically; the caller must hold the
// write lock
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	tmpFile := s.filename + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmpFile, s.filename)
}

// EnsureUser returns the VPN user for the Telegram account, creating the
// record with a derived panel username on first interaction
func (s *Store) EnsureUser(telegramID int64) (*models.VPNUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.VPNUsers {
		if s.data.VPNUsers[i].TelegramID == telegramID {
			user := s.data.VPNUsers[i]
			return &user, nil
		}
	}

	user := models.VPNUser{
		ID:          s.data.NextID,
		TelegramID:  telegramID,
		VPNUsername: helpers.VPNUsername(telegramID),
		TrialUsed:   false,
	}
	s.data.NextID++
	s.data.VPNUsers = append(s.data.VPNUsers, user)

	if err := s.save(); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByTelegramID returns the VPN user with the given Telegram id
func (s *Store) FindByTelegramID(telegramID int64) (*models.VPNUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.data.VPNUsers {
		if s.data.VPNUsers[i].TelegramID == telegramID {
			user := s.data.VPNUsers[i]
			return &user, nil
		}
	}
	return nil, &apperrors.NotFoundError{Entity: "vpn user", Key: strconv.FormatInt(telegramID, 10)}
}

// FindByVPNUsername returns the VPN user owning the given panel username
func (s *Store) FindByVPNUsername(username string) (*models.VPNUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.data.VPNUsers {
		if s.data.VPNUsers[i].VPNUsername == username {
			user := s.data.VPNUsers[i]
			return &user, nil
		}
	}
	return nil, &apperrors.NotFoundError{Entity: "vpn user", Key: username}
}

// MarkTrialUsed flips the monotonic trial flag for the given account
func (s *Store) MarkTrialUsed(telegramID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.VPNUsers {
		if s.data.VPNUsers[i].TelegramID == telegramID {
			if s.data.VPNUsers[i].TrialUsed {
				return nil
			}
			s.data.VPNUsers[i].TrialUsed = true
			return s.save()
		}
	}
	return &apperrors.NotFoundError{Entity: "vpn user", Key: strconv.FormatInt(telegramID, 10)}
}

// InsertPayment records a pending payment created by a gateway adapter
func (s *Store) InsertPayment(payment models.PendingPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.PendingPayments = append(s.data.PendingPayments, payment)
	return s.save()
}

// FindPayment returns the pending payment with the given external id
func (s *Store) FindPayment(gateway models.GatewayKind, externalID string) (*models.PendingPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.data.PendingPayments {
		p := s.data.PendingPayments[i]
		if p.Gateway == gateway && p.ExternalID == externalID {
			return &p, nil
		}
	}
	return nil, &apperrors.NotFoundError{Entity: "pending payment", Key: externalID}
}

// FindPaymentByOrderID returns the pending payment with the given locally
// generated order id
func (s *Store) FindPaymentByOrderID(gateway models.GatewayKind, orderID string) (*models.PendingPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.data.PendingPayments {
		p := s.data.PendingPayments[i]
		if p.Gateway == gateway && p.OrderID == orderID {
			return &p, nil
		}
	}
	return nil, &apperrors.NotFoundError{Entity: "pending payment", Key: orderID}
}

// TakePayment removes and returns the pending payment with the given
// external id in one step, so concurrent webhook deliveries for the same
// identifier cannot both observe the record.
func (s *Store) TakePayment(gateway models.GatewayKind, externalID string) (*models.PendingPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.PendingPayments {
		p := s.data.PendingPayments[i]
		if p.Gateway == gateway && p.ExternalID == externalID {
			s.data.PendingPayments = append(s.data.PendingPayments[:i], s.data.PendingPayments[i+1:]...)
			if err := s.save(); err != nil {
				return nil, err
			}
			return &p, nil
		}
	}
	return nil, &apperrors.NotFoundError{Entity: "pending payment", Key: externalID}
}
