package account

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quizhub/accounts/internal/observability"
)

// Instrumented wraps the core service with logging, metrics and tracing so
// the service itself stays free of observability concerns.
type Instrumented struct {
	inner  Accounts
	log    *slog.Logger
	prom   *observability.Prom
	tracer trace.Tracer
}

func NewInstrumented(inner Accounts, log *slog.Logger, prom *observability.Prom) *Instrumented {
	return &Instrumented{
		inner:  inner,
		log:    log,
		prom:   prom,
		tracer: otel.Tracer("accounts.service"),
	}
}

func (i *Instrumented) Register(ctx context.Context, req RegisterRequest, roleName string) (RegisterResult, error) {
	ctx, span := i.tracer.Start(ctx, "account.Register")
	defer span.End()

	span.SetAttributes(attribute.String("account.role", roleName))

	start := time.Now()

	res, err := i.inner.Register(ctx, req, roleName)

	i.finish(ctx, span, "register", outcome(res.OK, res.Reason, err), start, err,
		"email", req.Email, "role", roleName)

	return res, err
}

func (i *Instrumented) Login(ctx context.Context, email, password string) (LoginResult, error) {
	ctx, span := i.tracer.Start(ctx, "account.Login")
	defer span.End()

	start := time.Now()

	res, err := i.inner.Login(ctx, email, password)

	i.finish(ctx, span, "login", outcome(res.OK, res.Reason, err), start, err,
		"email", email)

	return res, err
}

func (i *Instrumented) ListUsers(ctx context.Context) ([]UserView, error) {
	ctx, span := i.tracer.Start(ctx, "account.ListUsers")
	defer span.End()

	start := time.Now()

	views, err := i.inner.ListUsers(ctx)

	out := "ok"
	if err != nil {
		out = "error"
	}

	i.finish(ctx, span, "list_users", out, start, err, "count", len(views))

	return views, err
}

func (i *Instrumented) AssignRole(ctx context.Context, userID int64, roleName string) (AssignRoleResult, error) {
	ctx, span := i.tracer.Start(ctx, "account.AssignRole")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("account.user_id", userID),
		attribute.String("account.role", roleName),
	)

	start := time.Now()

	res, err := i.inner.AssignRole(ctx, userID, roleName)

	i.finish(ctx, span, "assign_role", outcome(res.OK, res.Reason, err), start, err,
		"user_id", userID, "role", roleName)

	return res, err
}

func (i *Instrumented) finish(ctx context.Context, span trace.Span, op, out string, start time.Time, err error, attrs ...any) {
	took := time.Since(start)

	i.prom.ObserveOp(op, out, took)

	span.SetAttributes(attribute.String("account.outcome", out))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")

		i.log.ErrorContext(ctx, "account operation failed",
			append([]any{"op", op, "err", err, "took_ms", took.Milliseconds()}, attrs...)...)
		return
	}

	i.log.InfoContext(ctx, "account operation",
		append([]any{"op", op, "outcome", out, "took_ms", took.Milliseconds()}, attrs...)...)
}

func outcome(ok bool, reason FailureReason, err error) string {
	switch {
	case err != nil:
		return "error"
	case ok:
		return "ok"
	default:
		return string(reason)
	}
}
