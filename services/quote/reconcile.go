package quote

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// ReconcileResult summarizes one reconciliation pass.
type ReconcileResult struct {
	Checked   int      `json:"checked"`
	Exchanged int      `json:"exchanged"`
	Failed    []string `json:"failed,omitempty"`
}

// Reconcile completes the contact exchange for paid quotes that have been
// waiting longer than ReconcileAfter. Per-quote failures are collected and
// returned together after the whole batch ran.
func (s *Service) Reconcile(ctx context.Context) (*ReconcileResult, error) {
	cutoff := s.now().Add(-s.opts.ReconcileAfter)
	quotes, err := s.repos.Quotes.ListStuckPaid(ctx, cutoff, s.opts.ReconcileBatch)
	if err != nil {
		return nil, err
	}

	res := &ReconcileResult{Checked: len(quotes)}
	var errs *multierror.Error
	for _, q := range quotes {
		ex, err := s.exchange(ctx, q.ID)
		if err != nil {
			res.Failed = append(res.Failed, q.ID)
			errs = multierror.Append(errs, fmt.Errorf("quote %s: %w", q.ID, err))
			continue
		}
		if !ex.AlreadyExchanged {
			res.Exchanged++
		}
	}

	if res.Checked > 0 {
		s.logger.Info("Reconciliation finished",
			zap.Int("checked", res.Checked),
			zap.Int("exchanged", res.Exchanged),
			zap.Int("failed", len(res.Failed)),
		)
	}
	return res, errs.ErrorOrNil()
}
