package credstore

import (
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"fmt"
)

// ScopedKeyManager exposes the TLS client identity of exactly one
// alias; it holds no key material and resolves against the live store,
// so removal takes effect immediately.
type ScopedKeyManager struct {
	store *Store
	alias string
}

func (km *ScopedKeyManager) Alias() string {
	return km.alias
}

func (km *ScopedKeyManager) ClientAliases() []string {
	if _, ok := km.store.lookup(km.alias); !ok {
		return nil
	}
	return []string{km.alias}
}

func (km *ScopedKeyManager) ChooseClientAlias(keyTypes []string, issuers []string) string {
	if _, ok := km.store.lookup(km.alias); !ok {
		return ""
	}
	return km.alias
}

func (km *ScopedKeyManager) CertificateChain(alias string) []*x509.Certificate {
	if alias != km.alias {
		return nil
	}
	e, ok := km.store.lookup(km.alias)
	if !ok {
		return nil
	}
	return []*x509.Certificate{e.certificate}
}

func (km *ScopedKeyManager) PrivateKey(alias string) crypto.Signer {
	if alias != km.alias {
		return nil
	}
	e, ok := km.store.lookup(km.alias)
	if !ok {
		return nil
	}
	return e.privateKey
}

// GetClientCertificate satisfies tls.Config.GetClientCertificate.
func (km *ScopedKeyManager) GetClientCertificate(_ *tls.CertificateRequestInfo) (*tls.Certificate, error) {
	e, ok := km.store.lookup(km.alias)
	if !ok {
		return nil, fmt.Errorf("no credential stored under alias %q", km.alias)
	}

	return &tls.Certificate{
		Certificate: [][]byte{e.certificate.Raw},
		PrivateKey:  e.privateKey,
		Leaf:        e.certificate,
	}, nil
}
