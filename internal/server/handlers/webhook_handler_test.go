package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/stockmonitor/internal/domain/models"
)

type fakeMessaging struct {
	handleErr error
	sendErr   error
	handled   int
	outbound  []models.OutboundMessageRequest
}

func (f *fakeMessaging) VerifyWebhookToken(mode, token, challenge string) (string, error) {
	if mode != "subscribe" || token != "verify" {
		return "", errors.New("invalid verify token")
	}
	return challenge, nil
}

func (f *fakeMessaging) HandleWebhook(_ context.Context, _ models.WebhookPayload) error {
	f.handled++
	return f.handleErr
}

func (f *fakeMessaging) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	f.outbound = append(f.outbound, req)
	return f.sendErr
}

func (f *fakeMessaging) Broadcast(_ context.Context, recipients []string, _ string) ([]string, error) {
	return recipients, nil
}

func newWebhookEngine(svc *fakeMessaging) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWebhookHandler(svc, nil)

	r := gin.New()
	r.GET("/webhook", h.Verify)
	r.POST("/webhook", h.Receive)
	r.POST("/send-message", h.SendMessage)
	return r
}

func TestWebhookHandler_Verify(t *testing.T) {
	r := newWebhookEngine(&fakeMessaging{})

	w := do(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=verify&hub.challenge=42", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Body.String())

	w = do(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=nope&hub.challenge=42", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebhookHandler_Receive(t *testing.T) {
	svc := &fakeMessaging{handleErr: errors.New("send failed")}
	r := newWebhookEngine(svc)

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/webhook", `{"object":"whatsapp_business_account","entry":[]}`).Code)
	assert.Equal(t, 1, svc.handled)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/webhook", `not json`).Code)
	assert.Equal(t, 1, svc.handled)
}

func TestWebhookHandler_SendMessage(t *testing.T) {
	svc := &fakeMessaging{}
	r := newWebhookEngine(svc)

	assert.Equal(t, http.StatusAccepted, do(r, http.MethodPost, "/send-message", `{"to":"224","message":"restock done"}`).Code)
	assert.Equal(t, "restock done", svc.outbound[0].Message)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/send-message", `{"to":"224"}`).Code)

	svc.sendErr = errors.New("api down")
	assert.Equal(t, http.StatusBadGateway, do(r, http.MethodPost, "/send-message", `{"to":"224","message":"x"}`).Code)
}
