package enroll

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"certagent/internal/caclient"
	"certagent/internal/credstore"
	"certagent/internal/csr"
	"certagent/internal/services"
	"certagent/internal/storage"
	"certagent/internal/utils"
)

type Orchestrator struct {
	config  *utils.Config
	logger  *utils.Logger
	metrics *services.MetricsService
	keys    *csr.Manager
	ca      *caclient.Client
	store   *credstore.Store
	db      *sql.DB

	aliasMu   sync.Mutex
	lastStamp int64
}

func NewOrchestrator(config *utils.Config, logger *utils.Logger, metrics *services.MetricsService,
	keys *csr.Manager, ca *caclient.Client, store *credstore.Store, db *sql.DB) *Orchestrator {
	return &Orchestrator{
		config:  config,
		logger:  logger,
		metrics: metrics,
		keys:    keys,
		ca:      ca,
		store:   store,
		db:      db,
	}
}

// RequestCertificate runs one enrollment; the store is only touched
// after the CA has returned a certificate.
func (o *Orchestrator) RequestCertificate(ctx context.Context, subject csr.Subject) (*credstore.CertificateInfo, error) {
	requestID := uuid.NewString()
	started := time.Now()

	key, request, err := o.keys.GenerateKeyPairAndCSR(subject)
	if err != nil {
		o.recordFailure(requestID, subject.CommonName, started, err)
		return nil, err
	}

	csrPEM, err := o.keys.EncodeCSRToPEM(request)
	if err != nil {
		o.recordFailure(requestID, subject.CommonName, started, err)
		return nil, err
	}

	certificate, err := o.ca.RequestCertificate(ctx, csrPEM, o.config.CAEndpoint, o.config.CAAuthToken)
	if err != nil {
		o.recordFailure(requestID, subject.CommonName, started, err)
		return nil, err
	}

	alias := o.computeAlias(subject.CommonName)

	if err := o.store.Put(alias, certificate, key); err != nil {
		o.recordFailure(requestID, subject.CommonName, started, err)
		return nil, err
	}

	info, ok := o.store.Info(alias)
	if !ok {
		err := &storeReadbackError{alias: alias}
		o.recordFailure(requestID, subject.CommonName, started, err)
		return nil, err
	}

	o.metrics.RecordEnrollment("success", time.Since(started))
	o.metrics.SetStoredCredentials(o.store.Len())
	o.journalSuccess(requestID, info, subject.CommonName)
	o.logger.LogCertificateEvent("certificate_issued", alias, requestID, map[string]interface{}{
		"subject":       info.Subject,
		"serial_number": info.SerialNumber,
		"not_after":     info.NotAfter,
	})

	return info, nil
}

// non-alphanumerics become underscores; the stamp is strictly
// increasing so repeated subjects never collide
func (o *Orchestrator) computeAlias(commonName string) string {
	sanitized := []rune(commonName)
	for i, r := range sanitized {
		if !isAlphanumeric(r) {
			sanitized[i] = '_'
		}
	}

	o.aliasMu.Lock()
	stamp := time.Now().UnixNano()
	if stamp <= o.lastStamp {
		stamp = o.lastStamp + 1
	}
	o.lastStamp = stamp
	o.aliasMu.Unlock()

	return string(sanitized) + "_" + strconv.FormatInt(stamp, 10)
}

func (o *Orchestrator) Info(alias string) (*credstore.CertificateInfo, bool) {
	return o.store.Info(alias)
}

func (o *Orchestrator) AllInfo() []*credstore.CertificateInfo {
	return o.store.AllInfo()
}

func (o *Orchestrator) Has(alias string) bool {
	return o.store.Has(alias)
}

func (o *Orchestrator) Remove(alias string) {
	o.store.Remove(alias)
	o.metrics.SetStoredCredentials(o.store.Len())
}

func (o *Orchestrator) Aliases() []string {
	return o.store.Aliases()
}

func (o *Orchestrator) ClientTLSConfig(alias string) (*tls.Config, bool) {
	keyManager, ok := o.store.KeyManager(alias)
	if !ok {
		return nil, false
	}

	return &tls.Config{
		MinVersion:           tls.VersionTLS12,
		GetClientCertificate: keyManager.GetClientCertificate,
	}, true
}

func (o *Orchestrator) HTTPClient(alias string) (*http.Client, bool) {
	tlsConfig, ok := o.ClientTLSConfig(alias)
	if !ok {
		return nil, false
	}

	return &http.Client{
		Timeout: o.config.CARequestTimeout,
		Transport: &http.Transport{
			TLSClientConfig:     tlsConfig,
			TLSHandshakeTimeout: 10 * time.Second,
			IdleConnTimeout:     o.config.IdleTimeout,
		},
	}, true
}

func (o *Orchestrator) recordFailure(requestID, commonName string, started time.Time, cause error) {
	o.metrics.RecordEnrollment("failure", time.Since(started))
	o.logger.LogError(cause, "certificate enrollment failed", map[string]interface{}{
		"request_id":  requestID,
		"common_name": commonName,
	})
	o.journalFailure(requestID, commonName, cause)
}

func (o *Orchestrator) journalSuccess(requestID string, info *credstore.CertificateInfo, commonName string) {
	if o.db == nil {
		return
	}

	notBefore := info.NotBefore
	notAfter := info.NotAfter
	_, err := storage.CreateIssuanceEvent(o.db, &storage.IssuanceEvent{
		RequestID:    requestID,
		Alias:        info.Alias,
		CommonName:   commonName,
		SerialNumber: info.SerialNumber,
		NotBefore:    &notBefore,
		NotAfter:     &notAfter,
		Outcome:      storage.OutcomeIssued,
	})
	if err != nil {
		o.logger.Errorf("failed to journal issuance event: %v", err)
	}
}

func (o *Orchestrator) journalFailure(requestID, commonName string, cause error) {
	if o.db == nil {
		return
	}

	_, err := storage.CreateIssuanceEvent(o.db, &storage.IssuanceEvent{
		RequestID:    requestID,
		CommonName:   commonName,
		Outcome:      storage.OutcomeFailed,
		ErrorMessage: cause.Error(),
	})
	if err != nil {
		o.logger.Errorf("failed to journal issuance event: %v", err)
	}
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

type storeReadbackError struct {
	alias string
}

func (e *storeReadbackError) Error() string {
	return "stored credential not readable under alias " + e.alias
}
