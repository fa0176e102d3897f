package http

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iammanojeet/SHecurity/module/core/domain"
	"github.com/iammanojeet/SHecurity/module/core/service"
)

type alertService interface {
	Dispatch(ctx context.Context) domain.DispatchOutcome
	Send(ctx context.Context, phone string, pos domain.Position) (domain.Delivery, error)
}

type contactStore interface {
	Save(ctx context.Context, c domain.Contact, ttl time.Duration) error
	Load(ctx context.Context) (*domain.Contact, error)
	Clear(ctx context.Context) error
}

type stationService interface {
	Nearest(pos domain.Position, k int) []domain.RankedStation
}

type locationFeed interface {
	Snapshot() (*domain.Position, error)
}

type triggerService interface {
	Listening() bool
	SetListening(on bool)
}

type sendAlertRequest struct {
	Phone     string   `json:"phone"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type contactRequest struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type listeningRequest struct {
	Listening bool `json:"listening"`
}

type locationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
}

type AlertHandler struct {
	alertSvc   alertService
	contacts   contactStore
	feed       locationFeed
	stationSvc stationService
	triggerSvc triggerService
}

func NewAlertHandler(alertSvc alertService, contacts contactStore, feed locationFeed, stationSvc stationService, triggerSvc triggerService) *AlertHandler {
	return &AlertHandler{
		alertSvc:   alertSvc,
		contacts:   contacts,
		feed:       feed,
		stationSvc: stationSvc,
		triggerSvc: triggerSvc,
	}
}

func (h *AlertHandler) Register(r *gin.RouterGroup) {
	r.POST("/send-alert", h.SendAlert)
	r.POST("/help", h.Help)
	r.POST("/contact", h.SaveContact)
	r.GET("/contact", h.GetContact)
	r.DELETE("/contact", h.ClearContact)
	r.GET("/location", h.GetLocation)
	r.GET("/stations/nearest", h.NearestStations)
	r.GET("/listening", h.GetListening)
	r.POST("/listening", h.SetListening)
}

// SendAlert is the raw provider boundary: an explicit phone and coordinates,
// one delivery attempt, no stored-contact lookup.
func (h *AlertHandler) SendAlert(c *gin.Context) {
	var req sendAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Phone == "" || req.Latitude == nil || req.Longitude == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields!"})
		return
	}

	pos := domain.Position{
		Coordinate: domain.Coordinate{Lat: *req.Latitude, Lon: *req.Longitude},
		Timestamp:  time.Now(),
	}

	delivery, err := h.alertSvc.Send(c.Request.Context(), req.Phone, pos)
	if err != nil {
		// Full provider detail stays in the server log; the caller gets a summary.
		log.Printf("send alert to %s: %v", req.Phone, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": service.MsgSendFailed,
			"error":   delivery.Detail,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": service.MsgAlertSent})
}

// Help runs the full dispatch pipeline for a manual trigger and reports the
// outcome, including which half of the text/call pair went through.
func (h *AlertHandler) Help(c *gin.Context) {
	outcome := h.alertSvc.Dispatch(c.Request.Context())

	status := http.StatusOK
	switch outcome.Message {
	case service.MsgContactRequired, service.MsgLocationPending:
		status = http.StatusConflict
	case service.MsgSendFailed:
		status = http.StatusBadGateway
	}

	c.JSON(status, outcome)
}

func (h *AlertHandler) SaveContact(c *gin.Context) {
	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Phone == "" || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone and email are required"})
		return
	}

	contact := domain.Contact{Phone: req.Phone, Email: req.Email}
	if err := h.contacts.Save(c.Request.Context(), contact, domain.ContactTTL); err != nil {
		log.Printf("save contact: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save contact"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "contact saved"})
}

func (h *AlertHandler) GetContact(c *gin.Context) {
	contact, err := h.contacts.Load(c.Request.Context())
	if err != nil {
		log.Printf("load contact: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load contact"})
		return
	}
	if contact == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no stored contact"})
		return
	}

	c.JSON(http.StatusOK, contact)
}

func (h *AlertHandler) ClearContact(c *gin.Context) {
	if err := h.contacts.Clear(c.Request.Context()); err != nil {
		log.Printf("clear contact: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear contact"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "contact cleared"})
}

func (h *AlertHandler) GetLocation(c *gin.Context) {
	pos, srcErr := h.feed.Snapshot()
	if pos == nil {
		resp := gin.H{"error": service.MsgLocationPending}
		if srcErr != nil {
			resp["detail"] = srcErr.Error()
		}
		c.JSON(http.StatusNotFound, resp)
		return
	}

	c.JSON(http.StatusOK, locationResponse{
		Latitude:  pos.Coordinate.Lat,
		Longitude: pos.Coordinate.Lon,
		Timestamp: pos.Timestamp.Unix(),
	})
}

// NearestStations ranks stations against the latest fix. The display list is
// independent of dispatch, so it works whether or not an alert went out.
func (h *AlertHandler) NearestStations(c *gin.Context) {
	k := 2
	if q := c.Query("k"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid k parameter"})
			return
		}
		k = parsed
	}

	pos, _ := h.feed.Snapshot()
	if pos == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": service.MsgLocationPending})
		return
	}

	c.JSON(http.StatusOK, h.stationSvc.Nearest(*pos, k))
}

func (h *AlertHandler) GetListening(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"listening": h.triggerSvc.Listening()})
}

func (h *AlertHandler) SetListening(c *gin.Context) {
	var req listeningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	h.triggerSvc.SetListening(req.Listening)
	c.JSON(http.StatusOK, gin.H{"listening": req.Listening})
}
