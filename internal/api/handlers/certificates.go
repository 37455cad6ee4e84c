package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"certagent/internal/caclient"
	"certagent/internal/csr"
	"certagent/internal/enroll"
	"certagent/internal/utils"
)

type CertificateHandler struct {
	config       *utils.Config
	logger       *utils.Logger
	orchestrator *enroll.Orchestrator
}

func NewCertificateHandler(config *utils.Config, logger *utils.Logger, orchestrator *enroll.Orchestrator) *CertificateHandler {
	return &CertificateHandler{
		config:       config,
		logger:       logger,
		orchestrator: orchestrator,
	}
}

type EnrollRequest struct {
	CommonName         string `json:"common_name" binding:"required"`
	Organization       string `json:"organization"`
	OrganizationalUnit string `json:"organizational_unit"`
	Locality           string `json:"locality"`
	Province           string `json:"province"`
	Country            string `json:"country"`
}

func (h *CertificateHandler) Enroll(c *gin.Context) {
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subject := csr.Subject{
		CommonName:         req.CommonName,
		Organization:       req.Organization,
		OrganizationalUnit: req.OrganizationalUnit,
		Locality:           req.Locality,
		Province:           req.Province,
		Country:            req.Country,
	}

	info, err := h.orchestrator.RequestCertificate(c.Request.Context(), subject)
	if err != nil {
		h.logger.Error("Failed to enroll certificate:", err)

		var reqErr *caclient.RequestError
		if errors.As(err, &reqErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enroll certificate"})
		return
	}

	c.JSON(http.StatusCreated, info)
}

func (h *CertificateHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"certificates": h.orchestrator.AllInfo()})
}

func (h *CertificateHandler) Get(c *gin.Context) {
	alias := c.Param("alias")

	info, ok := h.orchestrator.Info(alias)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Certificate not found"})
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *CertificateHandler) Validity(c *gin.Context) {
	alias := c.Param("alias")

	if _, ok := h.orchestrator.Info(alias); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Certificate not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alias": alias,
		"valid": h.orchestrator.Has(alias),
	})
}

func (h *CertificateHandler) Delete(c *gin.Context) {
	alias := c.Param("alias")
	h.orchestrator.Remove(alias)
	c.Status(http.StatusNoContent)
}
