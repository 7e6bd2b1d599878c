package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func replayRecord(t *testing.T, record *idempotencyRecord, requestHash string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/paymentverification", nil)
	replay(c, record, requestHash)
	return w
}

func TestReplayPreservesRedirectLocation(t *testing.T) {
	record := &idempotencyRecord{
		Key:              "retry-1",
		Status:           idempotencyCompleted,
		RequestHash:      "abc",
		ResponseCode:     http.StatusSeeOther,
		ResponseLocation: "http://localhost:3000/paymentsuccess?reference=pay_1",
		CreatedAt:        time.Now(),
	}

	w := replayRecord(t, record, "abc")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "http://localhost:3000/paymentsuccess?reference=pay_1", w.Header().Get("Location"))
}

func TestReplayCompletedJSONResponse(t *testing.T) {
	record := &idempotencyRecord{
		Key:          "retry-2",
		Status:       idempotencyCompleted,
		RequestHash:  "abc",
		ResponseCode: http.StatusOK,
		ResponseBody: `{"success":true}`,
		CreatedAt:    time.Now(),
	}

	w := replayRecord(t, record, "abc")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Empty(t, w.Header().Get("Location"))
}

func TestReplayRejectsMismatchedRequest(t *testing.T) {
	record := &idempotencyRecord{
		Key:          "retry-3",
		Status:       idempotencyCompleted,
		RequestHash:  "abc",
		ResponseCode: http.StatusOK,
		CreatedAt:    time.Now(),
	}

	w := replayRecord(t, record, "different")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "different request")
}

func TestReplayRejectsInFlightKey(t *testing.T) {
	record := &idempotencyRecord{
		Key:         "retry-4",
		Status:      idempotencyProcessing,
		RequestHash: "abc",
		CreatedAt:   time.Now(),
	}

	w := replayRecord(t, record, "abc")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already being processed")
}
