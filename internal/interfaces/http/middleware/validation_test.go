package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type priceInput struct {
	Name     string           `json:"name" binding:"required,min=2"`
	Price    decimal.Decimal  `json:"price" binding:"decimal_gte0"`
	Discount *decimal.Decimal `json:"discount" binding:"omitempty,decimal_gte0"`
	Items    []string         `json:"items" binding:"required,min=1"`
}

func bindRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req priceInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req.Price.String()))
	})
	return router
}

func postJSON(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestValidation_AcceptsValidInput(t *testing.T) {
	w := postJSON(bindRouter(), `{"name":"Desk","price":"12.50","discount":"0","items":["a"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "12.5")
}

func TestValidation_NegativeDecimal(t *testing.T) {
	w := postJSON(bindRouter(), `{"name":"Desk","price":"-1","items":["a"]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "price", resp.Error.Details[0].Field)
	assert.Equal(t, "Must not be negative", resp.Error.Details[0].Message)
}

func TestValidation_NegativeOptionalDecimal(t *testing.T) {
	w := postJSON(bindRouter(), `{"name":"Desk","price":1,"discount":-0.5,"items":["a"]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"discount"`)
}

func TestValidation_MultipleFields(t *testing.T) {
	w := postJSON(bindRouter(), `{"name":"D","items":[]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	fields := map[string]string{}
	for _, d := range resp.Error.Details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "Must be at least 2 characters", fields["name"])
	assert.Equal(t, "Must contain at least 1 items", fields["items"])
}

func TestValidation_MalformedJSON(t *testing.T) {
	w := postJSON(bindRouter(), `{"name":`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeInvalidJSON)
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-9")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-9", resp.Error.RequestID)
	assert.Empty(t, resp.Error.Details)
}
