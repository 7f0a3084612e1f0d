package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// Oracle is an external generation service. It receives a prompt describing
// the problem and returns its raw textual answer.
type Oracle interface {
	Propose(ctx context.Context, prompt string) (string, error)
}

// OracleFailureReason tags why an oracle attempt was discarded.
type OracleFailureReason string

const (
	OracleDisabled   OracleFailureReason = "disabled"
	OracleTimeout    OracleFailureReason = "timeout"
	OracleTransport  OracleFailureReason = "transport"
	OracleEmpty      OracleFailureReason = "empty"
	OracleParse      OracleFailureReason = "parse"
	OracleValidation OracleFailureReason = "validation"
)

// OracleOutcome carries either validated sessions or a tagged failure.
type OracleOutcome struct {
	Sessions []models.Session
	Failure  OracleFailureReason
	Err      error
}

// OK reports whether the oracle produced an accepted schedule.
func (o OracleOutcome) OK() bool {
	return o.Failure == "" && len(o.Sessions) > 0
}

// DefaultOracleTimeout bounds the oracle call when no timeout is configured.
const DefaultOracleTimeout = 30 * time.Second

// OracleAdapter asks the oracle for a schedule and accepts it only when every
// proposed session passes the same checks the allocator uses.
type OracleAdapter struct {
	oracle    Oracle
	timeout   time.Duration
	tolerance float64
}

// NewOracleAdapter wraps an oracle. A nil oracle yields an adapter that always
// reports OracleDisabled.
func NewOracleAdapter(oracle Oracle, timeout time.Duration, tolerance float64) *OracleAdapter {
	if timeout <= 0 {
		timeout = DefaultOracleTimeout
	}
	return &OracleAdapter{oracle: oracle, timeout: timeout, tolerance: tolerance}
}

type oracleReply struct {
	raw string
	err error
}

// TryOracle never returns an error: every failure becomes an outcome the
// caller answers by running the allocator on the whole problem.
func (a *OracleAdapter) TryOracle(ctx context.Context, p Problem) OracleOutcome {
	if a == nil || a.oracle == nil {
		return OracleOutcome{Failure: OracleDisabled}
	}
	prompt, err := BuildPrompt(p)
	if err != nil {
		return OracleOutcome{Failure: OracleParse, Err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	replies := make(chan oracleReply, 1)
	go func() {
		raw, err := a.oracle.Propose(callCtx, prompt)
		replies <- oracleReply{raw: raw, err: err}
	}()

	var reply oracleReply
	select {
	case <-callCtx.Done():
		return a.contextFailure(callCtx.Err())
	case reply = <-replies:
	}
	if reply.err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) || errors.Is(reply.err, context.DeadlineExceeded) {
			return OracleOutcome{Failure: OracleTimeout, Err: reply.err}
		}
		return OracleOutcome{Failure: OracleTransport, Err: reply.err}
	}

	assignments, err := ParseAssignments(reply.raw)
	if err != nil {
		return OracleOutcome{Failure: OracleParse, Err: err}
	}
	if len(assignments) == 0 {
		return OracleOutcome{Failure: OracleEmpty, Err: errors.New("oracle returned no assignments")}
	}

	sessions := lo.Map(assignments, func(item Assignment, _ int) models.Session {
		return p.Session(item.ClassID, item.RoomID, item.SlotID)
	})
	if err := ValidateSessions(p, sessions, a.tolerance); err != nil {
		return OracleOutcome{Failure: OracleValidation, Err: err}
	}
	return OracleOutcome{Sessions: sessions}
}

func (a *OracleAdapter) contextFailure(err error) OracleOutcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return OracleOutcome{Failure: OracleTimeout, Err: fmt.Errorf("oracle did not answer within %s: %w", a.timeout, err)}
	}
	return OracleOutcome{Failure: OracleTransport, Err: err}
}
