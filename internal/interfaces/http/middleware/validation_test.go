package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fractionInput struct {
	Fraction string `json:"fraction" validate:"omitempty,fraction"`
}

func TestValidateFraction(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterValidations(v))

	tests := []struct {
		input string
		valid bool
	}{
		{"", true},
		{"0", true},
		{"0.375", true},
		{"3/8", true},
		{"7/8", true},
		{"0.3", false},
		{"1/3", false},
		{"1", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := v.Struct(fractionInput{Fraction: tt.input})
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			resp := FormatValidationErrors(err, "req-1")
			require.Len(t, resp.Error.Details, 1)
			assert.Equal(t, "fraction", resp.Error.Details[0].Field)
			assert.Contains(t, resp.Error.Details[0].Message, "3/8")
		})
	}
}

type bindInput struct {
	Name     string `json:"name" binding:"required,max=5"`
	Fraction string `json:"fraction" binding:"omitempty,fraction"`
}

func TestHandleValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	require.NoError(t, SetupValidator())

	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var in bindInput
		if err := c.ShouldBindJSON(&in); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name         string
		body         string
		expectedCode int
		contains     []string
	}{
		{"valid", `{"name":"Den","fraction":"1/2"}`, http.StatusOK, nil},
		{"missing name", `{"fraction":"1/2"}`, http.StatusBadRequest, []string{"ERR_VALIDATION", `"field":"name"`, "required"}},
		{"bad fraction", `{"name":"Den","fraction":"0.3"}`, http.StatusBadRequest, []string{`"field":"fraction"`}},
		{"too long", `{"name":"Living room"}`, http.StatusBadRequest, []string{"at most 5 characters"}},
		{"malformed json", `{"name":`, http.StatusBadRequest, []string{"ERR_INVALID_JSON"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			for _, s := range tt.contains {
				assert.Contains(t, w.Body.String(), s)
			}
		})
	}
}
