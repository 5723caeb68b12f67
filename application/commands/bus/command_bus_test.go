package bus

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingCommand struct{ Name string }

func (c pingCommand) Validate() error {
	if c.Name == "" {
		return stderrors.New("name is required")
	}
	return nil
}

type otherCommand struct{}

func (otherCommand) Validate() error { return nil }

type recordingObserver struct {
	names []string
	errs  []error
}

func (o *recordingObserver) ObserveCommand(name string, _ time.Duration, err error) {
	o.names = append(o.names, name)
	o.errs = append(o.errs, err)
}

func TestCommandBus_Dispatch(t *testing.T) {
	b := NewCommandBus()
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		return "pong " + cmd.(pingCommand).Name, nil
	})))

	result, err := b.Dispatch(context.Background(), pingCommand{Name: "elias"})

	require.NoError(t, err)
	assert.Equal(t, "pong elias", result)
}

func TestCommandBus_DuplicateRegistration(t *testing.T) {
	b := NewCommandBus()
	h := CommandHandlerFunc(func(context.Context, Command) (interface{}, error) { return nil, nil })

	require.NoError(t, b.Register(pingCommand{}, h))
	assert.Error(t, b.Register(pingCommand{}, h))
}

func TestCommandBus_ValidationRunsBeforeHandler(t *testing.T) {
	b := NewCommandBus()
	called := false
	require.NoError(t, b.Register(pingCommand{}, CommandHandlerFunc(func(context.Context, Command) (interface{}, error) {
		called = true
		return nil, nil
	})))

	err := b.Send(context.Background(), pingCommand{})

	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.False(t, called)
}

func TestCommandBus_UnknownCommand(t *testing.T) {
	err := NewCommandBus().Send(context.Background(), otherCommand{})

	assert.ErrorIs(t, err, ErrHandlerNotFound)
}

func TestCommandBus_HandlerErrorIsWrapped(t *testing.T) {
	sentinel := stderrors.New("store down")
	b := NewCommandBus()
	require.NoError(t, b.Register(otherCommand{}, CommandHandlerFunc(func(context.Context, Command) (interface{}, error) {
		return nil, sentinel
	})))

	err := b.Send(context.Background(), otherCommand{})

	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "command handler failed")
}

func TestCommandBus_MiddlewareOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
				order = append(order, name)
				return next.Handle(ctx, cmd)
			})
		}
	}
	observer := &recordingObserver{}
	b := NewCommandBus()
	b.Use(tag("first"), tag("second"), LoggingMiddleware(zap.NewNop()), MetricsMiddleware(observer))
	require.NoError(t, b.Register(otherCommand{}, CommandHandlerFunc(func(context.Context, Command) (interface{}, error) {
		order = append(order, "handler")
		return nil, nil
	})))

	require.NoError(t, b.Send(context.Background(), otherCommand{}))

	assert.Equal(t, []string{"first", "second", "handler"}, order)
	assert.Equal(t, []string{"otherCommand"}, observer.names)
	assert.Nil(t, observer.errs[0])
}

func TestValidationMiddleware(t *testing.T) {
	h := NewPipeline(ValidationMiddleware()).Execute(CommandHandlerFunc(func(context.Context, Command) (interface{}, error) {
		return "ok", nil
	}))

	_, err := h.Handle(context.Background(), pingCommand{})
	assert.ErrorIs(t, err, ErrValidationFailed)

	out, err := h.Handle(context.Background(), pingCommand{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}
