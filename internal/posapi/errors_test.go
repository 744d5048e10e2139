package posapi

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		target error
	}{
		{400, ErrBadRequest},
		{401, ErrUnauthorized},
		{403, ErrForbidden},
		{404, ErrNotFound},
		{500, ErrServer},
		{503, ErrServer},
	}
	for _, c := range cases {
		err := error(newError(c.status, nil))
		assert.True(t, errors.Is(err, c.target), "status %d", c.status)
	}

	assert.False(t, errors.Is(newError(409, nil), ErrBadRequest))
	assert.False(t, errors.Is(newError(499, nil), ErrServer))
}

func TestExtractDetail(t *testing.T) {
	assert.Equal(t, "nope", extractDetail([]byte(`{"detail":"nope"}`)))
	assert.Equal(t, "boom", extractDetail([]byte(`{"message":"boom"}`)))
	assert.Equal(t, "bad", extractDetail([]byte(`{"error":"bad"}`)))
	assert.Equal(t, `{"username":["required"]}`, extractDetail([]byte(`{"username":["required"]}`)))
	assert.Equal(t, "", extractDetail([]byte("  ")))

	long := strings.Repeat("x", 500)
	detail := extractDetail([]byte(long))
	assert.Len(t, detail, maxErrorBodyInDetail+3)
	assert.True(t, strings.HasSuffix(detail, "..."))
}

func TestDecimalUnmarshal(t *testing.T) {
	var values struct {
		A Decimal `json:"a"`
		B Decimal `json:"b"`
		C Decimal `json:"c"`
	}
	err := json.Unmarshal([]byte(`{"a":"15.00","b":12.5,"c":null}`), &values)
	assert.NoError(t, err)
	assert.Equal(t, Decimal("15.00"), values.A)
	assert.Equal(t, Decimal("12.5"), values.B)
	assert.Equal(t, Decimal(""), values.C)

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &values))
}
