package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/langcrowd/internal/client/client"
	"github.com/dmitrijs2005/langcrowd/internal/client/models"
	"github.com/dmitrijs2005/langcrowd/internal/client/validate"
	"github.com/dmitrijs2005/langcrowd/internal/common"
)

// describe turns an error into a message for the terminal.
func describe(err error) string {
	if ve := validate.Extract(err); ve != nil {
		parts := make([]string, 0, len(ve.Fields()))
		for _, f := range ve.Fields() {
			parts = append(parts, fmt.Sprintf("%s: %s", f, ve.Get(f)))
		}
		return strings.Join(parts, "; ")
	}
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable. Please try again later."
	case errors.Is(err, client.ErrUnauthorized), errors.Is(err, common.ErrorNotAuthenticated):
		return "Please log in again."
	case errors.Is(err, client.ErrForbidden), errors.Is(err, common.ErrorForbidden):
		return "You do not have permission to perform this action."
	case errors.As(err, &apiErr) && apiErr.Detail != "":
		return apiErr.Detail
	}
	return err.Error()
}

func report[T any](a *App, r models.MutationResult[T]) {
	switch r.Level() {
	case models.LevelError:
		a.println("Error:", r.Message)
	default:
		a.println(r.Message)
	}
}

func table(w io.Writer, header string, rows func(tw io.Writer)) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	_ = tw.Flush()
}

func pendingMark(p bool) string {
	if p {
		return "pending"
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
