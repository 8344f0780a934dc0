package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		context  string
		wantCode string
	}{
		{name: "nil", err: nil, wantCode: InternalServerError},
		{name: "business not found", err: gorm.ErrRecordNotFound, context: "business", wantCode: BusinessNotFound},
		{name: "wrapped review not found", err: fmt.Errorf("load: %w", gorm.ErrRecordNotFound), context: "review", wantCode: ReviewNotFound},
		{name: "reply beats review", err: gorm.ErrRecordNotFound, context: "approve reply", wantCode: ReplyNotFound},
		{name: "sqlite unique", err: errors.New("UNIQUE constraint failed: profiles.user_id"), context: "create profile", wantCode: ResourceAlreadyExists},
		{name: "postgres duplicate", err: errors.New(`ERROR: duplicate key value violates unique constraint "idx_usage_user_period"`), wantCode: ResourceAlreadyExists},
		{name: "rating check", err: errors.New(`violates check constraint "chk_reviews_rating"`), wantCode: ReviewInvalidRating},
		{name: "not null", err: errors.New("NOT NULL constraint failed: reviews.text"), wantCode: ValidationRequired},
		{name: "connection", err: errors.New("dial tcp: connection refused"), wantCode: InternalExternalAPI},
		{name: "other", err: errors.New("boom"), context: "update business", wantCode: InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.context)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.NotEmpty(t, info.Message)
		})
	}
}

func TestFunctionStatus(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, FunctionStatus(FnConfigMissing))
	assert.Equal(t, http.StatusBadRequest, FunctionStatus(FnValidationError))
	assert.Equal(t, http.StatusUnauthorized, FunctionStatus(FnUnauthorized))
	assert.Equal(t, http.StatusTooManyRequests, FunctionStatus(FnQuotaExceeded))
	assert.Equal(t, http.StatusTooManyRequests, FunctionStatus(FnRateLimited))
	assert.Equal(t, http.StatusPaymentRequired, FunctionStatus(FnPaymentRequired))
	assert.Equal(t, http.StatusInternalServerError, FunctionStatus(FnUpstreamError))
	assert.Equal(t, http.StatusInternalServerError, FunctionStatus(FnParseError))
	assert.Equal(t, http.StatusGatewayTimeout, FunctionStatus(FnTimeout))
	assert.Equal(t, http.StatusInternalServerError, FunctionStatus("unknown"))
}
