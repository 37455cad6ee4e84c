package csr

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"errors"
	"fmt"

	"certagent/internal/utils"
)

const keyBits = 2048

var (
	ErrKeyGen    = errors.New("key generation failed")
	ErrCSRBuild  = errors.New("certificate request build failed")
	ErrPEMEncode = errors.New("certificate request encoding failed")
)

type Manager struct {
	logger *utils.Logger
}

func NewManager(logger *utils.Logger) *Manager {
	return &Manager{logger: logger}
}

func (m *Manager) GenerateKeyPair() (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, keyBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGen, err)
	}
	return key, nil
}

func (m *Manager) CreateCSR(key *rsa.PrivateKey, subject Subject) (*x509.CertificateRequest, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: private key is nil", ErrCSRBuild)
	}
	if err := subject.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCSRBuild, err)
	}

	rawSubject, err := asn1.Marshal(subject.ToRDNSequence())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCSRBuild, err)
	}

	template := &x509.CertificateRequest{
		RawSubject:         rawSubject,
		SignatureAlgorithm: x509.SHA256WithRSA,
	}

	der, err := x509.CreateCertificateRequest(rand.Reader, template, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCSRBuild, err)
	}

	request, err := x509.ParseCertificateRequest(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCSRBuild, err)
	}

	m.logger.Debugf("built certificate request for %q", subject.String())
	return request, nil
}

func (m *Manager) EncodeCSRToPEM(request *x509.CertificateRequest) (string, error) {
	if request == nil || len(request.Raw) == 0 {
		return "", fmt.Errorf("%w: empty certificate request", ErrPEMEncode)
	}

	encoded := pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE REQUEST",
		Bytes: request.Raw,
	})
	if encoded == nil {
		return "", fmt.Errorf("%w: PEM encoding produced no output", ErrPEMEncode)
	}

	return string(encoded), nil
}

func (m *Manager) GenerateKeyPairAndCSR(subject Subject) (*rsa.PrivateKey, *x509.CertificateRequest, error) {
	key, err := m.GenerateKeyPair()
	if err != nil {
		return nil, nil, err
	}

	request, err := m.CreateCSR(key, subject)
	if err != nil {
		return nil, nil, err
	}

	return key, request, nil
}
