package main

import (
	"errors"
	"fmt"
	"io"

	adwords "github.com/adwords-api/adwords-golang"
)

// renderError writes a human-readable diagnostic for err.
func renderError(w io.Writer, err error) {
	switch adwords.KindOf(err) {
	case adwords.KindAuthorization:
		fmt.Fprintln(w, adwords.AuthorizationRemediation)
		var authErr *adwords.AuthorizationError
		if errors.As(err, &authErr) {
			fmt.Fprintf(w, "Details: %s\n", authErr.Error())
		}
	case adwords.KindTransport:
		var httpErr *adwords.HTTPError
		errors.As(err, &httpErr)
		fmt.Fprintf(w, "HTTP Error: %s\n", httpErr.Error())
	case adwords.KindAPI:
		var apiErr *adwords.APIError
		errors.As(err, &apiErr)
		fmt.Fprintf(w, "Message: %s\n", apiErr.Message)
		fmt.Fprintln(w, "Errors:")
		for i, detail := range apiErr.Errors {
			fmt.Fprintf(w, "\tError [%d]:\n", i+1)
			for _, field := range detail.Fields() {
				fmt.Fprintf(w, "\t\t%s: %s\n", field.Name, field.Value)
			}
		}
	default:
		fmt.Fprintf(w, "Error: %s\n", err.Error())
	}
}
