package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Message  string `json:"message" validate:"required,max=10,no_xss"`
	Username string `json:"username" validate:"omitempty,username"`
}

func TestCustomRules(t *testing.T) {
	v := New()

	assert.NoError(t, v.Struct(sample{Message: "go storm", Username: "tipper_1"}))

	err := v.Struct(sample{Message: "<script>"})
	require.Error(t, err)
	assert.Equal(t, "message failed no_xss", Message(err))

	err = v.Struct(sample{Message: "ok", Username: "bad name"})
	assert.Equal(t, "username failed username", Message(err))

	err = v.Struct(sample{})
	assert.Equal(t, "message is required", Message(err))

	err = v.Struct(sample{Message: "this is far too long"})
	assert.Equal(t, "message must have at most 10", Message(err))
}

func TestMessagePassesThroughPlainErrors(t *testing.T) {
	assert.Equal(t, "boom", Message(errors.New("boom")))
}
