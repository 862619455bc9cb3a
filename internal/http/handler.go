package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/konelease/leasing-workflow/internal/http/middleware"
	"github.com/konelease/leasing-workflow/internal/model"
	"github.com/konelease/leasing-workflow/internal/repository"
	"github.com/konelease/leasing-workflow/internal/service"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Handler struct {
	workflow      *service.WorkflowService
	notifications *repository.NotificationRepository
	log           zerolog.Logger
}

func NewHandler(workflow *service.WorkflowService, notifications *repository.NotificationRepository, log zerolog.Logger) *Handler {
	return &Handler{workflow: workflow, notifications: notifications, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/applications", h.submitApplication)
	protected.GET("/applications", h.listApplications)
	protected.GET("/applications/:id", h.getApplication)
	protected.PATCH("/applications/:id", h.updateApplication)
	protected.POST("/applications/:id/close", h.closeApplication)

	protected.POST("/applications/:id/info-requests", h.requestInfo)
	protected.GET("/applications/:id/info-requests", h.listInfoRequests)
	protected.POST("/info-requests/:id/responses", h.respondToInfoRequest)
	protected.POST("/info-requests/:id/close", h.closeInfoRequest)

	protected.POST("/applications/:id/offers", h.createOffer)
	protected.GET("/applications/:id/offers", h.listOffers)
	protected.GET("/offers/:id", h.getOffer)
	protected.POST("/offers/:id/send", h.sendOffer)
	protected.POST("/offers/:id/accept", h.acceptOffer)
	protected.POST("/offers/:id/reject", h.rejectOffer)

	protected.POST("/applications/:id/contracts", h.createContract)
	protected.GET("/applications/:id/contracts", h.listContracts)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts/:id/document", h.contractDocument)
	protected.POST("/contracts/:id/send", h.sendContract)
	protected.POST("/contracts/:id/sign", h.signContract)
	protected.POST("/contracts/:id/signed-document", h.uploadSignedContract)
	protected.POST("/contracts/:id/cancel", h.cancelContract)

	protected.GET("/reports/pipeline", h.exportPipeline)

	protected.GET("/notifications", h.listNotifications)
	protected.POST("/notifications/:id/read", h.markNotificationRead)
}

type submitApplicationRequest struct {
	ApplicationType      string  `json:"application_type" binding:"required"`
	CompanyName          string  `json:"company_name" binding:"required"`
	BusinessID           string  `json:"business_id" binding:"required"`
	ContactPerson        string  `json:"contact_person"`
	ContactEmail         string  `json:"contact_email" binding:"required"`
	ContactPhone         string  `json:"contact_phone"`
	StreetAddress        string  `json:"street_address"`
	PostalCode           string  `json:"postal_code"`
	City                 string  `json:"city"`
	EquipmentDescription string  `json:"equipment_description" binding:"required"`
	EquipmentSupplier    string  `json:"equipment_supplier"`
	EquipmentPrice       float64 `json:"equipment_price" binding:"required"`
	RequestedTermMonths  *int    `json:"requested_term_months"`
	AdditionalInfo       string  `json:"additional_info"`
}

func (h *Handler) submitApplication(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req submitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.workflow.SubmitApplication(c.Request.Context(), service.SubmitApplicationInput{
		ApplicationType:      model.ApplicationType(req.ApplicationType),
		CompanyName:          req.CompanyName,
		BusinessID:           req.BusinessID,
		ContactPerson:        req.ContactPerson,
		ContactEmail:         req.ContactEmail,
		ContactPhone:         req.ContactPhone,
		StreetAddress:        req.StreetAddress,
		PostalCode:           req.PostalCode,
		City:                 req.City,
		EquipmentDescription: req.EquipmentDescription,
		EquipmentSupplier:    req.EquipmentSupplier,
		EquipmentPrice:       req.EquipmentPrice,
		RequestedTermMonths:  req.RequestedTermMonths,
		AdditionalInfo:       req.AdditionalInfo,
		Principal:            principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, applicationResponseFrom(app))
}

func (h *Handler) listApplications(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var status *model.ApplicationStatus
	if raw := c.Query("status"); raw != "" {
		parsed := model.ApplicationStatus(raw)
		status = &parsed
	}

	apps, err := h.workflow.ListApplications(c.Request.Context(), principal, status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]applicationResponse, 0, len(apps))
	for i := range apps {
		out = append(out, applicationResponseFrom(&apps[i]))
	}
	c.JSON(http.StatusOK, gin.H{"applications": out})
}

func (h *Handler) getApplication(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	app, err := h.workflow.GetApplication(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, applicationResponseFrom(app))
}

type updateApplicationRequest struct {
	EquipmentDescription *string  `json:"equipment_description"`
	EquipmentSupplier    *string  `json:"equipment_supplier"`
	EquipmentPrice       *float64 `json:"equipment_price"`
	ContactPerson        *string  `json:"contact_person"`
	ContactEmail         *string  `json:"contact_email"`
	ContactPhone         *string  `json:"contact_phone"`
	AdditionalInfo       *string  `json:"additional_info"`
}

func (h *Handler) updateApplication(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := h.workflow.UpdateApplication(c.Request.Context(), service.UpdateApplicationInput{
		ApplicationID:        id,
		EquipmentDescription: req.EquipmentDescription,
		EquipmentSupplier:    req.EquipmentSupplier,
		EquipmentPrice:       req.EquipmentPrice,
		ContactPerson:        req.ContactPerson,
		ContactEmail:         req.ContactEmail,
		ContactPhone:         req.ContactPhone,
		AdditionalInfo:       req.AdditionalInfo,
		Principal:            principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, applicationResponseFrom(app))
}

func (h *Handler) closeApplication(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	app, err := h.workflow.CloseApplication(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, applicationResponseFrom(app))
}

type requestInfoRequest struct {
	Message        string   `json:"message" binding:"required"`
	RequestedItems []string `json:"requested_items"`
}

func (h *Handler) requestInfo(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req requestInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	infoReq, err := h.workflow.RequestInfo(c.Request.Context(), service.RequestInfoInput{
		ApplicationID:  id,
		Message:        req.Message,
		RequestedItems: req.RequestedItems,
		Principal:      principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, infoRequestResponseFrom(infoReq))
}

func (h *Handler) listInfoRequests(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	requests, err := h.workflow.ListInfoRequests(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]infoRequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, infoRequestResponseFrom(&requests[i]))
	}
	c.JSON(http.StatusOK, gin.H{"info_requests": out})
}

type respondInfoRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) respondToInfoRequest(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req respondInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	infoReq, err := h.workflow.RespondToInfoRequest(c.Request.Context(), service.RespondToInfoRequestInput{
		InfoRequestID: id,
		Message:       req.Message,
		Principal:     principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, infoRequestResponseFrom(infoReq))
}

func (h *Handler) closeInfoRequest(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	infoReq, err := h.workflow.CloseInfoRequest(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, infoRequestResponseFrom(infoReq))
}

type createOfferRequest struct {
	MonthlyPayment   float64 `json:"monthly_payment" binding:"required"`
	TermMonths       int     `json:"term_months" binding:"required"`
	UpfrontPayment   float64 `json:"upfront_payment"`
	ResidualValue    float64 `json:"residual_value"`
	OpeningFee       float64 `json:"opening_fee"`
	InvoiceFee       float64 `json:"invoice_fee"`
	IncludedServices string  `json:"included_services"`
	NotesToCustomer  string  `json:"notes_to_customer"`
	InternalNotes    string  `json:"internal_notes"`
}

func (h *Handler) createOffer(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req createOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offer, err := h.workflow.CreateOffer(c.Request.Context(), service.CreateOfferInput{
		ApplicationID: id,
		Terms: service.OfferTerms{
			MonthlyPayment:   req.MonthlyPayment,
			TermMonths:       req.TermMonths,
			UpfrontPayment:   req.UpfrontPayment,
			ResidualValue:    req.ResidualValue,
			OpeningFee:       req.OpeningFee,
			InvoiceFee:       req.InvoiceFee,
			IncludedServices: req.IncludedServices,
			NotesToCustomer:  req.NotesToCustomer,
			InternalNotes:    req.InternalNotes,
		},
		Principal: principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	app, err := h.workflow.GetApplication(c.Request.Context(), principal, offer.ApplicationID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, offerResponseFrom(offer, app))
}

func (h *Handler) listOffers(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	app, err := h.workflow.GetApplication(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	offers, err := h.workflow.ListOffers(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]offerResponse, 0, len(offers))
	for i := range offers {
		out = append(out, offerResponseFrom(&offers[i], app))
	}
	c.JSON(http.StatusOK, gin.H{"offers": out})
}

func (h *Handler) getOffer(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	offer, err := h.workflow.GetOffer(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	app, err := h.workflow.GetApplication(c.Request.Context(), principal, offer.ApplicationID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerResponseFrom(offer, app))
}

func (h *Handler) sendOffer(c *gin.Context) {
	h.offerTransition(c, h.workflow.SendOffer)
}

func (h *Handler) acceptOffer(c *gin.Context) {
	h.offerTransition(c, h.workflow.AcceptOffer)
}

func (h *Handler) rejectOffer(c *gin.Context) {
	h.offerTransition(c, h.workflow.RejectOffer)
}

func (h *Handler) offerTransition(c *gin.Context, transition func(context.Context, model.Principal, uuid.UUID) (*model.Offer, error)) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	offer, err := transition(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	app, err := h.workflow.GetApplication(c.Request.Context(), principal, offer.ApplicationID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, offerResponseFrom(offer, app))
}

type createContractRequest struct {
	MonthlyRent       float64 `json:"monthly_rent"`
	LeasePeriodMonths int     `json:"lease_period_months"`
	ResidualValue     float64 `json:"residual_value"`
	AdvancePayment    float64 `json:"advance_payment"`
	ProcessingFee     float64 `json:"processing_fee"`
	ArrangementFee    float64 `json:"arrangement_fee"`
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.workflow.CreateContract(c.Request.Context(), service.CreateContractInput{
		ApplicationID: id,
		Terms: service.ContractTerms{
			MonthlyRent:       req.MonthlyRent,
			LeasePeriodMonths: req.LeasePeriodMonths,
			ResidualValue:     req.ResidualValue,
			AdvancePayment:    req.AdvancePayment,
			ProcessingFee:     req.ProcessingFee,
			ArrangementFee:    req.ArrangementFee,
		},
		Principal: principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contractResponseFrom(contract))
}

func (h *Handler) listContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	contracts, err := h.workflow.ListContracts(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]contractResponse, 0, len(contracts))
	for i := range contracts {
		out = append(out, contractResponseFrom(&contracts[i]))
	}
	c.JSON(http.StatusOK, gin.H{"contracts": out})
}

func (h *Handler) getContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	contract, err := h.workflow.GetContract(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contractResponseFrom(contract))
}

func (h *Handler) contractDocument(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	fileName, content, err := h.workflow.ContractDocument(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, contentTypePDF, content)
}

func (h *Handler) sendContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	contract, err := h.workflow.SendContract(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contractResponseFrom(contract))
}

type signContractRequest struct {
	SignaturePlace string `json:"signature_place"`
}

func (h *Handler) signContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req signContractRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.workflow.SignContract(c.Request.Context(), service.SignContractInput{
		ContractID:     id,
		SignaturePlace: req.SignaturePlace,
		Principal:      principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contractResponseFrom(contract))
}

func (h *Handler) uploadSignedContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document file is required"})
		return
	}
	opened, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read document"})
		return
	}
	defer opened.Close()
	content, err := io.ReadAll(opened)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read document"})
		return
	}

	contract, err := h.workflow.UploadSignedContract(c.Request.Context(), service.UploadSignedContractInput{
		ContractID: id,
		Document:   content,
		Principal:  principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contractResponseFrom(contract))
}

func (h *Handler) cancelContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	contract, err := h.workflow.CancelContract(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contractResponseFrom(contract))
}

func (h *Handler) exportPipeline(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	result, err := h.workflow.ExportPipeline(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentTypeXLSX, result.Content)
}

func (h *Handler) listNotifications(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	unreadOnly := c.Query("unread") == "true"
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	notifications, err := h.notifications.List(c.Request.Context(), principal, unreadOnly, limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]notificationResponse, 0, len(notifications))
	for i := range notifications {
		out = append(out, notificationResponseFrom(&notifications[i]))
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out})
}

func (h *Handler) markNotificationRead(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrConflictingEntity),
		errors.Is(err, service.ErrAlreadySigned),
		errors.Is(err, service.ErrAlreadyResponded),
		errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

type applicationResponse struct {
	ID                   uuid.UUID               `json:"id"`
	ReferenceNumber      string                  `json:"reference_number"`
	ApplicationType      model.ApplicationType   `json:"application_type"`
	Status               model.ApplicationStatus `json:"status"`
	CustomerID           uuid.UUID               `json:"customer_id"`
	CompanyName          string                  `json:"company_name"`
	BusinessID           string                  `json:"business_id"`
	ContactPerson        string                  `json:"contact_person"`
	ContactEmail         string                  `json:"contact_email"`
	ContactPhone         string                  `json:"contact_phone"`
	StreetAddress        string                  `json:"street_address"`
	PostalCode           string                  `json:"postal_code"`
	City                 string                  `json:"city"`
	EquipmentDescription string                  `json:"equipment_description"`
	EquipmentSupplier    string                  `json:"equipment_supplier"`
	EquipmentPrice       float64                 `json:"equipment_price"`
	RequestedTermMonths  *int                    `json:"requested_term_months,omitempty"`
	AdditionalInfo       string                  `json:"additional_info"`
	CreatedAt            time.Time               `json:"created_at"`
	SubmittedAt          *time.Time              `json:"submitted_at,omitempty"`
}

func applicationResponseFrom(app *model.Application) applicationResponse {
	return applicationResponse{
		ID:                   app.ID,
		ReferenceNumber:      app.ReferenceNumber,
		ApplicationType:      app.ApplicationType,
		Status:               app.Status,
		CustomerID:           app.CustomerID,
		CompanyName:          app.CompanyName,
		BusinessID:           app.BusinessID,
		ContactPerson:        app.ContactPerson,
		ContactEmail:         app.ContactEmail,
		ContactPhone:         app.ContactPhone,
		StreetAddress:        app.StreetAddress,
		PostalCode:           app.PostalCode,
		City:                 app.City,
		EquipmentDescription: app.EquipmentDescription,
		EquipmentSupplier:    app.EquipmentSupplier,
		EquipmentPrice:       app.EquipmentPrice,
		RequestedTermMonths:  app.RequestedTermMonths,
		AdditionalInfo:       app.AdditionalInfo,
		CreatedAt:            app.CreatedAt,
		SubmittedAt:          app.SubmittedAt,
	}
}

type offerResponse struct {
	ID             uuid.UUID         `json:"id"`
	ApplicationID  uuid.UUID         `json:"application_id"`
	Status         model.OfferStatus `json:"status"`
	MonthlyPayment float64           `json:"monthly_payment"`
	TermMonths     int               `json:"term_months"`
	UpfrontPayment float64           `json:"upfront_payment"`
	FinancedAmount float64           `json:"financed_amount"`
	ResidualValue  float64           `json:"residual_value"`
	// ResidualPercentage presents the residual as a share of the
	// application's equipment price, rounded to one decimal.
	ResidualPercentage float64    `json:"residual_percentage"`
	OpeningFee         float64    `json:"opening_fee"`
	InvoiceFee         float64    `json:"invoice_fee"`
	IncludedServices   string     `json:"included_services"`
	NotesToCustomer    string     `json:"notes_to_customer"`
	InternalNotes      string     `json:"internal_notes,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	SentAt             *time.Time `json:"sent_at,omitempty"`
	RespondedAt        *time.Time `json:"responded_at,omitempty"`
}

func offerResponseFrom(offer *model.Offer, app *model.Application) offerResponse {
	return offerResponse{
		ID:                 offer.ID,
		ApplicationID:      offer.ApplicationID,
		Status:             offer.Status,
		MonthlyPayment:     offer.MonthlyPayment,
		TermMonths:         offer.TermMonths,
		UpfrontPayment:     offer.UpfrontPayment,
		FinancedAmount:     app.FinancedAmount(offer.UpfrontPayment),
		ResidualValue:      offer.ResidualValue,
		ResidualPercentage: offer.ResidualPercentage(app.EquipmentPrice),
		OpeningFee:         offer.OpeningFee,
		InvoiceFee:         offer.InvoiceFee,
		IncludedServices:   offer.IncludedServices,
		NotesToCustomer:    offer.NotesToCustomer,
		InternalNotes:      offer.InternalNotes,
		CreatedAt:          offer.CreatedAt,
		SentAt:             offer.SentAt,
		RespondedAt:        offer.RespondedAt,
	}
}

type partyResponse struct {
	CompanyName   string `json:"company_name"`
	BusinessID    string `json:"business_id"`
	StreetAddress string `json:"street_address"`
	PostalCode    string `json:"postal_code"`
	City          string `json:"city"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
}

type contractResponse struct {
	ID                uuid.UUID            `json:"id"`
	ApplicationID     uuid.UUID            `json:"application_id"`
	OfferID           uuid.UUID            `json:"offer_id"`
	ContractNumber    string               `json:"contract_number"`
	Status            model.ContractStatus `json:"status"`
	Lessee            partyResponse        `json:"lessee"`
	Lessor            partyResponse        `json:"lessor"`
	MonthlyRent       float64              `json:"monthly_rent"`
	LeasePeriodMonths int                  `json:"lease_period_months"`
	ResidualValue     float64              `json:"residual_value"`
	AdvancePayment    float64              `json:"advance_payment"`
	ProcessingFee     float64              `json:"processing_fee"`
	ArrangementFee    float64              `json:"arrangement_fee"`
	DocumentRef       string               `json:"document_ref,omitempty"`
	SignedDocumentRef string               `json:"signed_document_ref,omitempty"`
	SignerName        string               `json:"signer_name,omitempty"`
	SignaturePlace    string               `json:"signature_place,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	SentAt            *time.Time           `json:"sent_at,omitempty"`
	SignedAt          *time.Time           `json:"signed_at,omitempty"`
}

func contractResponseFrom(contract *model.Contract) contractResponse {
	return contractResponse{
		ID:                contract.ID,
		ApplicationID:     contract.ApplicationID,
		OfferID:           contract.OfferID,
		ContractNumber:    contract.ContractNumber,
		Status:            contract.Status,
		Lessee:            partyResponseFrom(contract.Lessee),
		Lessor:            partyResponseFrom(contract.Lessor),
		MonthlyRent:       contract.MonthlyRent,
		LeasePeriodMonths: contract.LeasePeriodMonths,
		ResidualValue:     contract.ResidualValue,
		AdvancePayment:    contract.AdvancePayment,
		ProcessingFee:     contract.ProcessingFee,
		ArrangementFee:    contract.ArrangementFee,
		DocumentRef:       contract.DocumentRef,
		SignedDocumentRef: contract.SignedDocumentRef,
		SignerName:        contract.SignerName,
		SignaturePlace:    contract.SignaturePlace,
		CreatedAt:         contract.CreatedAt,
		SentAt:            contract.SentAt,
		SignedAt:          contract.SignedAt,
	}
}

func partyResponseFrom(party model.Party) partyResponse {
	return partyResponse{
		CompanyName:   party.CompanyName,
		BusinessID:    party.BusinessID,
		StreetAddress: party.StreetAddress,
		PostalCode:    party.PostalCode,
		City:          party.City,
		ContactPerson: party.ContactPerson,
		Email:         party.Email,
		Phone:         party.Phone,
	}
}

type infoRequestResponse struct {
	ID             uuid.UUID                 `json:"id"`
	ApplicationID  uuid.UUID                 `json:"application_id"`
	Status         model.InfoRequestStatus   `json:"status"`
	Message        string                    `json:"message"`
	RequestedItems []string                  `json:"requested_items"`
	CreatedAt      time.Time                 `json:"created_at"`
	Responses      []infoRequestResponseItem `json:"responses"`
}

type infoRequestResponseItem struct {
	ID         uuid.UUID  `json:"id"`
	AuthorRole model.Role `json:"author_role"`
	AuthorName string     `json:"author_name"`
	Message    string     `json:"message"`
	CreatedAt  time.Time  `json:"created_at"`
}

func infoRequestResponseFrom(req *model.InfoRequest) infoRequestResponse {
	responses := make([]infoRequestResponseItem, 0, len(req.Responses))
	for _, r := range req.Responses {
		responses = append(responses, infoRequestResponseItem{
			ID:         r.ID,
			AuthorRole: r.AuthorRole,
			AuthorName: r.AuthorName,
			Message:    r.Message,
			CreatedAt:  r.CreatedAt,
		})
	}
	return infoRequestResponse{
		ID:             req.ID,
		ApplicationID:  req.ApplicationID,
		Status:         req.Status,
		Message:        req.Message,
		RequestedItems: req.RequestedItems,
		CreatedAt:      req.CreatedAt,
		Responses:      responses,
	}
}

type notificationResponse struct {
	ID            uuid.UUID              `json:"id"`
	ApplicationID uuid.UUID              `json:"application_id"`
	Kind          model.NotificationKind `json:"kind"`
	Message       string                 `json:"message"`
	IsRead        bool                   `json:"is_read"`
	CreatedAt     time.Time              `json:"created_at"`
	ReadAt        *time.Time             `json:"read_at,omitempty"`
}

func notificationResponseFrom(n *model.Notification) notificationResponse {
	return notificationResponse{
		ID:            n.ID,
		ApplicationID: n.ApplicationID,
		Kind:          n.Kind,
		Message:       n.Message,
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt,
		ReadAt:        n.ReadAt,
	}
}
