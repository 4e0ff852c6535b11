package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/langcrowd/internal/client/client"
	"github.com/dmitrijs2005/langcrowd/internal/client/validate"
	"github.com/dmitrijs2005/langcrowd/internal/common"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", validate.FromFields(map[string][]string{"name": {"Name is required"}}), "name: Name is required"},
		{"credentials", fmt.Errorf("login: %w", client.ErrInvalidCredentials), "Invalid username or password."},
		{"unavailable", client.ErrUnavailable, "Server unavailable. Please try again later."},
		{"unauthorized", client.ErrUnauthorized, "Please log in again."},
		{"not authenticated", common.ErrorNotAuthenticated, "Please log in again."},
		{"forbidden", common.ErrorForbidden, "You do not have permission to perform this action."},
		{"api detail", &client.APIError{Status: 409, Detail: "Conflict happened"}, "Conflict happened"},
		{"other", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.err))
		})
	}
}
