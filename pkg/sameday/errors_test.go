package sameday_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tournevent/sameday/pkg/sameday"
)

func TestError_Error(t *testing.T) {
	err := sameday.NewError("createShipment", sameday.CodeRemoteValidation, "Bad Request")
	assert.Equal(t, "sameday createShipment error (REMOTE_VALIDATION_ERROR): Bad Request", err.Error())
}

func TestError_ErrorWithStatusAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := sameday.NewError("getServices", sameday.CodeTransport, "no response received").
		WithStatusCode(502).
		WithCause(cause)

	assert.Contains(t, err.Error(), "[HTTP 502]")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := sameday.NewError("getServices", sameday.CodeTransport, "no response received").WithCause(cause)
	assert.True(t, errors.Is(err, cause))
}

func TestError_IsSameCode(t *testing.T) {
	err1 := sameday.NewError("createShipment", sameday.CodeRemoteValidation, "Bad Request")
	err2 := sameday.NewError("getCities", sameday.CodeRemoteValidation, "Different message")

	assert.True(t, errors.Is(err1, err2))
}

func TestError_IsNotDifferentCode(t *testing.T) {
	err1 := sameday.NewError("createShipment", sameday.CodeRemoteValidation, "Bad Request")
	err2 := sameday.NewError("createShipment", sameday.CodeTransport, "no response")

	assert.False(t, errors.Is(err1, err2))
}

func TestError_IsSentinel(t *testing.T) {
	tests := []struct {
		code     string
		sentinel error
	}{
		{sameday.CodeAuthentication, sameday.ErrAuthentication},
		{sameday.CodeRemoteValidation, sameday.ErrRemoteValidation},
		{sameday.CodeTransport, sameday.ErrTransport},
		{sameday.CodeDecode, sameday.ErrDecode},
		{sameday.CodeEncode, sameday.ErrEncode},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", sameday.NewError("op", tt.code, "failed"))
			assert.ErrorIs(t, err, tt.sentinel)
			assert.NotErrorIs(t, err, sameday.ErrMissingCredentials)
		})
	}
}

func TestValidationChildren(t *testing.T) {
	children := json.RawMessage(`{"awbRecipient":{"children":{"phoneNumber":{"errors":["invalid"]}}}}`)
	err := fmt.Errorf("create: %w",
		sameday.NewError("createShipment", sameday.CodeRemoteValidation, "Validation Failed").WithChildren(children))

	assert.JSONEq(t, string(children), string(sameday.ValidationChildren(err)))
	assert.Nil(t, sameday.ValidationChildren(errors.New("plain")))
}
