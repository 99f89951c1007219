package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskilo/models"
	"taskilo/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubTransferService struct {
	pending []models.FailedTransfer
	retried []string
}

func (s *stubTransferService) ListPending(context.Context, int) ([]models.FailedTransfer, error) {
	return s.pending, nil
}

func (s *stubTransferService) Payout(_ context.Context, req models.PayoutRequest) (*models.PayoutResult, error) {
	if req.Amount <= 0 {
		return nil, utils.Validation("Betrag muss größer als 0 sein")
	}
	return &models.PayoutResult{Success: true, TransferID: "tr_1"}, nil
}

func (s *stubTransferService) Retry(_ context.Context, ids []string) ([]models.TransferRetryResult, error) {
	if len(ids) == 0 {
		return nil, utils.Validation("transferIds fehlt")
	}
	s.retried = ids
	return []models.TransferRetryResult{
		{ID: ids[0], Success: true, Message: "Already completed"},
		{ID: "ft-2", Error: "Transfer nicht gefunden"},
	}, nil
}

func transferRouter(svc *stubTransferService) *gin.Engine {
	h := NewTransferHandler(svc, zap.NewNop())
	r := gin.New()
	r.GET("/pending", h.ListPendingHandler)
	r.POST("/transfers", h.PayoutHandler)
	r.POST("/retry", h.RetryHandler)
	return r
}

func TestRetryHandler(t *testing.T) {
	svc := &stubTransferService{}
	w := postJSON(transferRouter(svc), "/retry", gin.H{"transferIds": []string{"ft-1", "ft-2"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"ft-1", "ft-2"}, svc.retried)

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 1, body["succeeded"])
	assert.EqualValues(t, 1, body["failed"])
	results := body["results"].([]any)
	require.Len(t, results, 2)
	assert.Equal(t, "Already completed", results[0].(map[string]any)["message"])

	w = postJSON(transferRouter(svc), "/retry", gin.H{"transferIds": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPendingHandler(t *testing.T) {
	svc := &stubTransferService{pending: []models.FailedTransfer{{ID: "ft-1", Status: models.TransferStatusPendingRetry}}}
	r := transferRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pending", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pending?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPayoutHandler(t *testing.T) {
	r := transferRouter(&stubTransferService{})
	w := postJSON(r, "/transfers", gin.H{"companyId": "company-1", "amount": 1500})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tr_1", decode(t, w)["transferId"])

	w = postJSON(r, "/transfers", gin.H{"amount": 1500})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
