// Package handlers adapts HTTP requests to directory commands and queries.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"hazboun-backend/application/commands/bus"
	querybus "hazboun-backend/application/queries/bus"
	"hazboun-backend/pkg/common"
	"hazboun-backend/pkg/errors"
)

// CommandDispatcher sends commands. *bus.CommandBus satisfies it.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, cmd bus.Command) (interface{}, error)
}

// QueryAsker runs queries. *querybus.QueryBus satisfies it.
type QueryAsker interface {
	Ask(ctx context.Context, query querybus.Query) (interface{}, error)
}

// Versioner exposes the directory version for response metadata.
type Versioner interface {
	Version() uint64
}

// responder holds what every handler needs to answer a request.
type responder struct {
	errs      *errors.ErrorHandler
	versioner Versioner
	logger    *zap.Logger
}

func newResponder(errs *errors.ErrorHandler, versioner Versioner, logger *zap.Logger) responder {
	return responder{errs: errs, versioner: versioner, logger: logger}
}

func (rs responder) respond(w http.ResponseWriter, r *http.Request, status int, data interface{}, total *int) {
	common.RespondWithMeta(w, r, status, data, &common.MetaInfo{
		DirectoryVersion: rs.versioner.Version(),
		Total:            total,
	})
}

func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	rs.errs.Handle(w, r, err)
}

// decodeBody reads a JSON request body into v.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.NewValidationError("Request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.NewValidationError("Invalid request body: " + err.Error())
	}
	return nil
}

// text accepts a JSON string or number. Form fields such as the birth year
// arrive either way depending on the client.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected text or number, got %s", strings.TrimSpace(string(b)))
	}
	*t = text(n.String())
	return nil
}

func (t *text) ptr() *string {
	if t == nil {
		return nil
	}
	s := string(*t)
	return &s
}
