package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsersClearRequiresConfirmation(t *testing.T) {
	cmd := usersCmd()
	cmd.SetArgs([]string{"clear"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.ErrorContains(t, cmd.Execute(), "--yes")
}

func TestUsersCreateValidatesInput(t *testing.T) {
	cmd := usersCmd()
	cmd.SetArgs([]string{"create", "--username", "bad name!"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.ErrorContains(t, cmd.Execute(), "username failed username")
}

func TestReportGenerateRequiresMatch(t *testing.T) {
	cmd := reportCmd()
	cmd.SetArgs([]string{"generate"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.ErrorContains(t, cmd.Execute(), `required flag(s) "match" not set`)
}
