package services

import (
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"

	"github.com/MaxConsolas/marzban-shop/internal/constants"
)

// QRService renders subscription links as QR codes
type QRService struct {
	logger *logrus.Logger
}

// NewQRService creates a new QR code service
func NewQRService(logger *logrus.Logger) *QRService {
	return &QRService{
		logger: logger,
	}
}

// SubscriptionQR encodes a subscription URL as a PNG QR code
func (s *QRService) SubscriptionQR(url string) ([]byte, error) {
	s.logger.Debugf("Generating QR code for subscription URL")

	qr, err := qrcode.Encode(url, qrcode.Medium, constants.QRCodeSize)
	if err != nil {
		s.logger.Errorf("Failed to generate QR code: %v", err)
		return nil, err
	}

	return qr, nil
}
