package credstore

import (
	"crypto"
	"crypto/x509"
	"fmt"
	"sort"
	"sync"
	"time"
)

type entry struct {
	certificate *x509.Certificate
	privateKey  crypto.Signer
}

type Store struct {
	entries sync.Map
}

func NewStore() *Store {
	return &Store{}
}

// Put inserts or silently overwrites the entry at alias.
func (s *Store) Put(alias string, certificate *x509.Certificate, privateKey crypto.Signer) error {
	if alias == "" {
		return fmt.Errorf("alias cannot be empty")
	}
	if certificate == nil {
		return fmt.Errorf("certificate cannot be nil")
	}
	if privateKey == nil {
		return fmt.Errorf("private key cannot be nil")
	}

	s.entries.Store(alias, &entry{
		certificate: certificate,
		privateKey:  privateKey,
	})
	return nil
}

// Has requires the validity window to contain the current time; expired
// entries stay retrievable through Info and KeyManager.
func (s *Store) Has(alias string) bool {
	e, ok := s.lookup(alias)
	if !ok {
		return false
	}

	now := time.Now()
	return !now.Before(e.certificate.NotBefore) && !now.After(e.certificate.NotAfter)
}

func (s *Store) Info(alias string) (*CertificateInfo, bool) {
	e, ok := s.lookup(alias)
	if !ok {
		return nil, false
	}
	return newCertificateInfo(alias, e.certificate), true
}

func (s *Store) AllInfo() []*CertificateInfo {
	infos := make([]*CertificateInfo, 0)
	s.entries.Range(func(key, value interface{}) bool {
		infos = append(infos, newCertificateInfo(key.(string), value.(*entry).certificate))
		return true
	})

	sort.Slice(infos, func(i, j int) bool { return infos[i].Alias < infos[j].Alias })
	return infos
}

func (s *Store) KeyManager(alias string) (*ScopedKeyManager, bool) {
	if _, ok := s.lookup(alias); !ok {
		return nil, false
	}
	return &ScopedKeyManager{store: s, alias: alias}, true
}

func (s *Store) Remove(alias string) {
	s.entries.Delete(alias)
}

func (s *Store) Aliases() []string {
	aliases := make([]string, 0)
	s.entries.Range(func(key, _ interface{}) bool {
		aliases = append(aliases, key.(string))
		return true
	})

	sort.Strings(aliases)
	return aliases
}

func (s *Store) Len() int {
	count := 0
	s.entries.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}

func (s *Store) lookup(alias string) (*entry, bool) {
	value, ok := s.entries.Load(alias)
	if !ok {
		return nil, false
	}
	return value.(*entry), true
}
