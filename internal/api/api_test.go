package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwpump/controller/internal/clock"
	"github.com/wwpump/controller/internal/gpioboard"
	"github.com/wwpump/controller/internal/indicator"
	"github.com/wwpump/controller/internal/pumpcontroller"
	"github.com/wwpump/controller/internal/risingdetector"
	"github.com/wwpump/controller/internal/tempsensor"
	"github.com/wwpump/controller/internal/timetable"
)

func setupTestServer(t *testing.T, now int64) (*Server, *clock.Mock, *timetable.Timetable) {
	t.Helper()
	clk := clock.NewMock(now)
	tt := timetable.New(clk, 15)
	pc := pumpcontroller.New(clk, tempsensor.NewMock(20.0), risingdetector.New(), gpioboard.NewMockRelay(), indicator.NewMock(), tt, t.TempDir()+"/timetable")
	return NewServer(clk, pc, tt), clk, tt
}

func TestHandleStatusReturnsCurrentState(t *testing.T) {
	server, _, _ := setupTestServer(t, 1000)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	server.handleStatus(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1000), resp.Now)
	assert.False(t, resp.NextAlarmKnown, "empty timetable has no next alarm")
}

func TestHandleStatusRejectsNonGet(t *testing.T) {
	server, _, _ := setupTestServer(t, 1000)

	req := httptest.NewRequest(http.MethodPost, "/status", nil)
	w := httptest.NewRecorder()
	server.handleStatus(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleTimetableReturnsLearnedSlots(t *testing.T) {
	server, clk, tt := setupTestServer(t, 1000)

	tt.Record(clk.Now(), true)

	req := httptest.NewRequest(http.MethodGet, "/timetable", nil)
	w := httptest.NewRecorder()
	server.handleTimetable(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []SlotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, 1, resp[0].Count)
}

func TestHandleTimetableEmptyReturnsEmptyArray(t *testing.T) {
	server, _, _ := setupTestServer(t, 1000)

	req := httptest.NewRequest(http.MethodGet, "/timetable", nil)
	w := httptest.NewRecorder()
	server.handleTimetable(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}
