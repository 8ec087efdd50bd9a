package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tenant-service/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdmins struct {
	SystemAdminService
	deleted []uint
}

func (s *stubAdmins) Delete(_ context.Context, id uint) model.Response[model.SystemAdmin] {
	s.deleted = append(s.deleted, id)
	return model.NoContent[model.SystemAdmin]("System admin deactivated")
}

func TestAdminDelete_WritesNoBody(t *testing.T) {
	admins := &stubAdmins{}
	h := NewAdminHandler(admins)

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/admin/admins/4", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("4")

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, []uint{4}, admins.deleted)
}

func TestParamID(t *testing.T) {
	e := echo.New()
	for value, want := range map[string]bool{"1": true, "42": true, "0": false, "-1": false, "x": false, "": false} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues(value)

		_, ok := paramID(c, "id")
		assert.Equal(t, want, ok, value)
	}
}
