package api

import (
	goerrors "errors"
	"strings"

	graphql "github.com/hasura/go-graphql-client"
	"github.com/samber/lo"
)

// ServerMessage extracts what the server said about a failed request, so it
// can be shown to the user verbatim. Transport errors fall back to err.Error().
func ServerMessage(err error) string {
	if err == nil {
		return ""
	}
	var gqlErrs graphql.Errors
	if goerrors.As(err, &gqlErrs) && len(gqlErrs) > 0 {
		return strings.Join(lo.Map(gqlErrs, func(e graphql.Error, _ int) string {
			return e.Message
		}), "; ")
	}
	return err.Error()
}
