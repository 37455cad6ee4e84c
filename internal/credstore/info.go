package credstore

import (
	"crypto/x509"
	"time"

	"certagent/internal/csr"
)

type CertificateInfo struct {
	Alias        string    `json:"alias"`
	Subject      string    `json:"subject"`
	Issuer       string    `json:"issuer"`
	SerialNumber string    `json:"serial_number"`
	NotBefore    time.Time `json:"not_before"`
	NotAfter     time.Time `json:"not_after"`
}

func newCertificateInfo(alias string, certificate *x509.Certificate) *CertificateInfo {
	return &CertificateInfo{
		Alias:        alias,
		Subject:      csr.FormatName(certificate.Subject),
		Issuer:       csr.FormatName(certificate.Issuer),
		SerialNumber: certificate.SerialNumber.String(),
		NotBefore:    certificate.NotBefore,
		NotAfter:     certificate.NotAfter,
	}
}

func (ci *CertificateInfo) IsValid(at time.Time) bool {
	return !at.Before(ci.NotBefore) && !at.After(ci.NotAfter)
}
