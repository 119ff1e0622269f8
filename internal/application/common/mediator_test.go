package common_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborline/omscore/internal/application/common"
	"github.com/harborline/omscore/internal/domain/shared"
)

type pingCommand struct {
	Target string `validate:"required"`
}

type pingHandler struct {
	calls int
	err   error
}

func (h *pingHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	h.calls++
	cmd, ok := request.(*pingCommand)
	if !ok {
		return nil, errors.New("invalid request type")
	}
	if h.err != nil {
		return nil, h.err
	}
	return "pong:" + cmd.Target, nil
}

func TestMediator_SendDispatchesByType(t *testing.T) {
	med := common.NewMediator()
	handler := &pingHandler{}
	require.NoError(t, common.RegisterHandler[*pingCommand](med, handler))

	resp, err := med.Send(context.Background(), &pingCommand{Target: "a"})

	require.NoError(t, err)
	assert.Equal(t, "pong:a", resp)
	assert.Equal(t, 1, handler.calls)
}

func TestMediator_UnregisteredType(t *testing.T) {
	med := common.NewMediator()

	_, err := med.Send(context.Background(), &pingCommand{Target: "a"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no handler registered")
}

func TestMediator_DuplicateRegistrationRejected(t *testing.T) {
	med := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingCommand](med, &pingHandler{}))

	err := common.RegisterHandler[*pingCommand](med, &pingHandler{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestMediator_MiddlewareRunsInRegistrationOrder(t *testing.T) {
	med := common.NewMediator()
	var order []string
	mw := func(name string) common.Middleware {
		return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
			order = append(order, name+":before")
			resp, err := next(ctx, request)
			order = append(order, name+":after")
			return resp, err
		}
	}
	med.Use(mw("outer"))
	med.Use(mw("inner"))
	require.NoError(t, common.RegisterHandler[*pingCommand](med, &pingHandler{}))

	_, err := med.Send(context.Background(), &pingCommand{Target: "a"})

	require.NoError(t, err)
	assert.Equal(t, []string{"outer:before", "inner:before", "inner:after", "outer:after"}, order)
}

func TestValidationMiddleware_RejectsBeforeHandler(t *testing.T) {
	med := common.NewMediator()
	med.Use(common.ValidationMiddleware(validator.New()))
	handler := &pingHandler{}
	require.NoError(t, common.RegisterHandler[*pingCommand](med, handler))

	_, err := med.Send(context.Background(), &pingCommand{})

	var vErr *shared.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "target", vErr.Field)
	assert.Equal(t, 0, handler.calls)
}

type countingMetrics struct {
	commands map[string]int
	failures map[string]string
}

func (m *countingMetrics) RecordCommand(command string) {
	m.commands[command]++
}

func (m *countingMetrics) RecordCommandFailure(command, reason string) {
	m.failures[command] = reason
}

func TestMetricsMiddleware_CountsFailuresWithReason(t *testing.T) {
	med := common.NewMediator()
	collector := &countingMetrics{commands: map[string]int{}, failures: map[string]string{}}
	med.Use(common.MetricsMiddleware(collector))
	require.NoError(t, common.RegisterHandler[*pingCommand](med,
		&pingHandler{err: shared.NewBusinessRuleError("out of stock")}))

	_, err := med.Send(context.Background(), &pingCommand{Target: "a"})

	require.Error(t, err)
	assert.Equal(t, 1, collector.commands["ping"])
	assert.Equal(t, shared.ReasonBusinessRule, collector.failures["ping"])
}

type contextProbeHandler struct {
	sawLogger bool
}

func (h *contextProbeHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	// LoggerFromContext falls back to a disabled logger; the middleware puts
	// an enabled one on the context.
	h.sawLogger = common.LoggerFromContext(ctx).GetLevel() != zerolog.Disabled
	return nil, nil
}

func TestLoggingMiddleware_PutsLoggerOnContext(t *testing.T) {
	med := common.NewMediator()
	med.Use(common.LoggingMiddleware(zerolog.New(zerolog.NewTestWriter(t))))
	probe := &contextProbeHandler{}
	require.NoError(t, common.RegisterHandler[*pingCommand](med, probe))

	_, err := med.Send(context.Background(), &pingCommand{Target: "a"})

	require.NoError(t, err)
	assert.True(t, probe.sawLogger)
}
