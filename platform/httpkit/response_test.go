package httpkit

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"whatsapp_crm_backend/platform/apperr"
	"whatsapp_crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

func newTestContext(t *testing.T, logOutput *bytes.Buffer) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/leads", nil)

	if logOutput != nil {
		log := &logger.Logger{Logger: slog.New(slog.NewJSONHandler(logOutput, nil))}
		ErrorLogger(log)(c)
	}
	return c, w
}

func TestHandleErrorLogsUntypedFailures(t *testing.T) {
	var logOutput bytes.Buffer
	c, w := newTestContext(t, &logOutput)

	handled := HandleError(c, errors.New("pq: connection refused"))
	if !handled {
		t.Fatal("expected the error to be handled")
	}

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Fatalf("error cause leaked to the client: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "internal server error") {
		t.Fatalf("expected generic body, got %s", w.Body.String())
	}
	if !strings.Contains(logOutput.String(), "connection refused") {
		t.Fatalf("expected the cause in the server log, got %s", logOutput.String())
	}
}

func TestHandleErrorLogsWrappedInternalErrors(t *testing.T) {
	var logOutput bytes.Buffer
	c, w := newTestContext(t, &logOutput)

	HandleError(c, apperr.Wrap(apperr.KindInternal, "query failed", errors.New("deadlock detected")))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "deadlock") || strings.Contains(w.Body.String(), "query failed") {
		t.Fatalf("internal detail leaked to the client: %s", w.Body.String())
	}
	if !strings.Contains(logOutput.String(), "query failed") {
		t.Fatalf("expected the internal error in the server log, got %s", logOutput.String())
	}
}

func TestHandleErrorDoesNotLogClientErrors(t *testing.T) {
	var logOutput bytes.Buffer
	c, w := newTestContext(t, &logOutput)

	HandleError(c, apperr.NotFound("lead not found"))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "lead not found") {
		t.Fatalf("expected the domain message in the body, got %s", w.Body.String())
	}
	if logOutput.Len() != 0 {
		t.Fatalf("client errors should not hit the server error log, got %s", logOutput.String())
	}
}

func TestHandleErrorWithoutLoggerStillResponds(t *testing.T) {
	c, w := newTestContext(t, nil)

	HandleError(c, errors.New("boom"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}
}
