package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskilo/database"
	"taskilo/database/repository"
	"taskilo/models"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// PushSender delivers a push notification to a device token.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// MailSender delivers a plain text email.
type MailSender interface {
	Send(ctx context.Context, toEmail, toName, subject, body string) error
}

type recipient struct {
	name     string
	email    string
	fcmToken string
}

// Deliverer sends outbox entries over push and email.
type Deliverer struct {
	repos       *repository.Set
	push        PushSender
	mail        MailSender
	maxAttempts int
	logger      *zap.Logger
}

// NewDeliverer creates a Deliverer. push and mail may be nil to disable a
// channel.
func NewDeliverer(repos *repository.Set, push PushSender, mail MailSender, maxAttempts int, logger *zap.Logger) *Deliverer {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Deliverer{repos: repos, push: push, mail: mail, maxAttempts: maxAttempts, logger: logger}
}

// Deliver sends one notification. A returned error means the delivery should
// be retried; once maxAttempts is reached the entry is marked failed and nil
// is returned.
func (d *Deliverer) Deliver(ctx context.Context, id string) error {
	n, err := d.repos.Notifications.GetByID(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		d.logger.Warn("Notification vanished before delivery", zap.String("notificationId", id))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load notification %s: %w", id, err)
	}
	if n.Status != models.NotificationStatusPending {
		return nil
	}

	attempts := n.Attempts + 1
	sendErr := d.send(ctx, n)
	if sendErr == nil {
		if err := d.repos.Notifications.MarkDelivered(ctx, n.ID, attempts, time.Now().UTC()); err != nil {
			return fmt.Errorf("failed to mark notification %s delivered: %w", n.ID, err)
		}
		d.logger.Info("Notification delivered",
			zap.String("notificationId", n.ID),
			zap.String("type", n.Type),
			zap.String("recipientId", n.RecipientID),
		)
		return nil
	}

	failed := attempts >= d.maxAttempts
	if err := d.repos.Notifications.RecordAttempt(ctx, n.ID, attempts, sendErr.Error(), failed); err != nil {
		d.logger.Error("Failed to record delivery attempt", zap.String("notificationId", n.ID), zap.Error(err))
	}
	if failed {
		d.logger.Error("Giving up on notification",
			zap.String("notificationId", n.ID),
			zap.Int("attempts", attempts),
			zap.Error(sendErr),
		)
		return nil
	}
	return sendErr
}

func (d *Deliverer) send(ctx context.Context, n *models.Notification) error {
	r, err := d.resolve(ctx, n)
	if err != nil {
		return err
	}

	var result *multierror.Error
	if d.push != nil && r.fcmToken != "" {
		if err := d.push.Send(ctx, r.fcmToken, n.Title, n.Body, n.Data); err != nil {
			result = multierror.Append(result, fmt.Errorf("push: %w", err))
		}
	}
	if d.mail != nil && r.email != "" {
		if err := d.mail.Send(ctx, r.email, r.name, n.Title, n.Body); err != nil {
			result = multierror.Append(result, fmt.Errorf("mail: %w", err))
		}
	}
	return result.ErrorOrNil()
}

func (d *Deliverer) resolve(ctx context.Context, n *models.Notification) (recipient, error) {
	switch n.RecipientType {
	case models.RecipientUser:
		u, err := d.repos.Users.GetByID(ctx, n.RecipientID)
		if err != nil {
			return recipient{}, fmt.Errorf("could not find user %s: %w", n.RecipientID, err)
		}
		return recipient{name: u.DisplayName(), email: u.Email, fcmToken: u.FCMToken}, nil
	case models.RecipientCompany:
		c, err := d.repos.Companies.GetByID(ctx, n.RecipientID)
		if err != nil {
			return recipient{}, fmt.Errorf("could not find company %s: %w", n.RecipientID, err)
		}
		return recipient{name: c.DisplayName(), email: c.Email, fcmToken: c.FCMToken}, nil
	}
	return recipient{}, fmt.Errorf("unknown recipient type %q", n.RecipientType)
}

// SweepResult summarizes one outbox sweep.
type SweepResult struct {
	Enqueued int
	Err      error
}

// Sweep re-enqueues pending notifications created before olderThan. It keeps
// going after individual enqueue failures and reports them together.
func Sweep(ctx context.Context, repos *repository.Set, enq Enqueuer, olderThan time.Time, limit int) SweepResult {
	pending, err := repos.Notifications.ListPending(ctx, olderThan, limit)
	if err != nil {
		return SweepResult{Err: err}
	}

	var res SweepResult
	var errs *multierror.Error
	for _, n := range pending {
		if err := enq.EnqueueDelivery(ctx, n.ID); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", n.ID, err))
			continue
		}
		res.Enqueued++
	}
	res.Err = errs.ErrorOrNil()
	return res
}
