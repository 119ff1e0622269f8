package common

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/harborline/omscore/internal/domain/shared"
)

// RequestName resolves the metric/log name of a request. Commands implement
// CommandName; anything else gets its snake_cased type name.
func RequestName(request Request) string {
	if named, ok := request.(CommandName); ok {
		return named.CommandName()
	}
	t := reflect.TypeOf(request)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return toSnake(strings.TrimSuffix(strings.TrimSuffix(t.Name(), "Command"), "Query"))
}

func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidationMiddleware runs struct-tag validation on every request before it
// reaches its handler. Failures surface as field-qualified ValidationErrors
// and never touch the database.
func ValidationMiddleware(validate *validator.Validate) Middleware {
	return func(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
		if err := validate.StructCtx(ctx, request); err != nil {
			if validationErrs, ok := err.(validator.ValidationErrors); ok && len(validationErrs) > 0 {
				first := validationErrs[0]
				return nil, shared.NewValidationError(
					toSnake(first.Field()),
					fmt.Sprintf("failed %s validation (value: '%v')", first.Tag(), first.Value()),
				)
			}
			return nil, shared.NewValidationError("request", err.Error())
		}
		return next(ctx, request)
	}
}

// CommandMetrics records per-command execution counters.
type CommandMetrics interface {
	RecordCommand(command string)
	RecordCommandFailure(command, reason string)
}

// MetricsMiddleware increments {command}_total on every dispatch and
// {command}_failures_total{reason} on errors.
func MetricsMiddleware(collector CommandMetrics) Middleware {
	return func(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
		name := RequestName(request)
		collector.RecordCommand(name)

		response, err := next(ctx, request)
		if err != nil {
			collector.RecordCommandFailure(name, shared.FailureReason(err))
		}
		return response, err
	}
}

// LoggingMiddleware writes one structured record per command: info on
// success, error on failure. The command-scoped logger is also placed on the
// context so handlers can attach aggregate ids.
func LoggingMiddleware(logger zerolog.Logger) Middleware {
	return func(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
		name := RequestName(request)
		cmdLogger := logger.With().Str("command", name).Logger()
		ctx = WithLogger(ctx, cmdLogger)

		start := time.Now()
		response, err := next(ctx, request)
		elapsed := time.Since(start)

		if err != nil {
			cmdLogger.Error().
				Err(err).
				Str("reason", shared.FailureReason(err)).
				Dur("elapsed", elapsed).
				Msg("command failed")
			return response, err
		}

		cmdLogger.Info().
			Dur("elapsed", elapsed).
			Msg("command executed")
		return response, nil
	}
}
