package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeDeliverNotification = "notification:deliver"
	TypeSweepOutbox         = "outbox:sweep"
	TypeReconcileQuotes     = "quotes:reconcile"
)

// DeliverPayload is the payload of a notification:deliver task.
type DeliverPayload struct {
	NotificationID string `json:"notificationId"`
}

// NewDeliverTask builds the delivery task for one outbox entry. The task id
// is derived from the notification so a sweep cannot queue it twice while
// it is still pending or retrying.
func NewDeliverTask(notificationID string, maxRetry int) (*asynq.Task, []asynq.Option, error) {
	if notificationID == "" {
		return nil, nil, errors.New("notification id is empty")
	}
	b, err := json.Marshal(DeliverPayload{NotificationID: notificationID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeDeliverNotification, b)
	opts := []asynq.Option{
		asynq.TaskID(deliverTaskID(notificationID)),
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(30 * time.Second),
	}
	return task, opts, nil
}

func deliverTaskID(notificationID string) string {
	return "notification:" + notificationID
}

// ParseDeliverPayload decodes a notification:deliver payload.
func ParseDeliverPayload(task *asynq.Task) (DeliverPayload, error) {
	var p DeliverPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid %s payload: %w", task.Type(), err)
	}
	if p.NotificationID == "" {
		return p, fmt.Errorf("invalid %s payload: notificationId missing", task.Type())
	}
	return p, nil
}

// NewSweepTask builds the periodic outbox sweep.
func NewSweepTask() (*asynq.Task, []asynq.Option) {
	return asynq.NewTask(TypeSweepOutbox, nil), []asynq.Option{
		asynq.MaxRetry(0),
		asynq.Unique(time.Minute),
	}
}

// NewReconcileTask builds the periodic quote reconciliation.
func NewReconcileTask() (*asynq.Task, []asynq.Option) {
	return asynq.NewTask(TypeReconcileQuotes, nil), []asynq.Option{
		asynq.MaxRetry(0),
		asynq.Unique(15 * time.Minute),
	}
}

// DefaultQueue is the asynq queue all deliveries go to.
const DefaultQueue = "default"

type taskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

type taskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
	DeleteTask(queue, id string) error
	Close() error
}

// Queue enqueues notification deliveries on asynq.
type Queue struct {
	client    taskClient
	inspector taskInspector
	maxRetry  int
}

func NewQueue(client *asynq.Client, inspector *asynq.Inspector, maxRetry int) *Queue {
	return &Queue{client: client, inspector: inspector, maxRetry: maxRetry}
}

// EnqueueDelivery implements notification.Enqueuer. A task that is already
// queued or retrying counts as success. An archived task of the same id
// (retries exhausted) is deleted and queued again.
func (q *Queue) EnqueueDelivery(ctx context.Context, notificationID string) error {
	task, opts, err := NewDeliverTask(notificationID, q.maxRetry)
	if err != nil {
		return err
	}
	_, err = q.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		var requeue bool
		requeue, err = q.dropArchived(deliverTaskID(notificationID))
		if err == nil && requeue {
			_, err = q.client.EnqueueContext(ctx, task, opts...)
		}
	}
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			return nil
		}
		return fmt.Errorf("failed to enqueue notification %s: %w", notificationID, err)
	}
	return nil
}

func (q *Queue) dropArchived(taskID string) (bool, error) {
	if q.inspector == nil {
		return false, nil
	}
	info, err := q.inspector.GetTaskInfo(DefaultQueue, taskID)
	if errors.Is(err, asynq.ErrTaskNotFound) {
		// Gone between the conflict and the lookup.
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to inspect task %s: %w", taskID, err)
	}
	if info.State != asynq.TaskStateArchived {
		return false, nil
	}
	if err := q.inspector.DeleteTask(DefaultQueue, taskID); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
		return false, fmt.Errorf("failed to delete archived task %s: %w", taskID, err)
	}
	return true, nil
}

func (q *Queue) Close() error {
	var err error
	if q.inspector != nil {
		err = q.inspector.Close()
	}
	if cerr := q.client.Close(); cerr != nil {
		err = cerr
	}
	return err
}
