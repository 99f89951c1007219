package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeliverTask(t *testing.T) {
	task, opts, err := NewDeliverTask("q-1-payment_confirmed-user", 8)
	require.NoError(t, err)
	assert.Equal(t, TypeDeliverNotification, task.Type())
	assert.Len(t, opts, 3)

	p, err := ParseDeliverPayload(task)
	require.NoError(t, err)
	assert.Equal(t, "q-1-payment_confirmed-user", p.NotificationID)

	_, _, err = NewDeliverTask("", 8)
	assert.Error(t, err)
}

func TestParseDeliverPayloadRejectsBadInput(t *testing.T) {
	_, err := ParseDeliverPayload(asynq.NewTask(TypeDeliverNotification, []byte("{")))
	assert.Error(t, err)

	_, err = ParseDeliverPayload(asynq.NewTask(TypeDeliverNotification, []byte(`{}`)))
	assert.Error(t, err)
}

func TestPeriodicTasks(t *testing.T) {
	sweep, _ := NewSweepTask()
	assert.Equal(t, TypeSweepOutbox, sweep.Type())
	reconcile, _ := NewReconcileTask()
	assert.Equal(t, TypeReconcileQuotes, reconcile.Type())
}

type fakeClient struct {
	results []error
	calls   int
}

func (c *fakeClient) EnqueueContext(context.Context, *asynq.Task, ...asynq.Option) (*asynq.TaskInfo, error) {
	c.calls++
	if len(c.results) == 0 {
		return &asynq.TaskInfo{}, nil
	}
	err := c.results[0]
	c.results = c.results[1:]
	return nil, err
}

func (c *fakeClient) Close() error { return nil }

type fakeInspector struct {
	state   asynq.TaskState
	deleted []string
}

func (i *fakeInspector) GetTaskInfo(queue, id string) (*asynq.TaskInfo, error) {
	return &asynq.TaskInfo{ID: id, Queue: queue, State: i.state}, nil
}

func (i *fakeInspector) DeleteTask(_, id string) error {
	i.deleted = append(i.deleted, id)
	return nil
}

func (i *fakeInspector) Close() error { return nil }

func TestEnqueueDeliveryRequeuesArchivedTask(t *testing.T) {
	client := &fakeClient{results: []error{asynq.ErrTaskIDConflict}}
	inspector := &fakeInspector{state: asynq.TaskStateArchived}
	q := &Queue{client: client, inspector: inspector, maxRetry: 8}

	require.NoError(t, q.EnqueueDelivery(context.Background(), "n-1"))
	assert.Equal(t, []string{"notification:n-1"}, inspector.deleted)
	assert.Equal(t, 2, client.calls)
}

func TestEnqueueDeliveryKeepsLiveTask(t *testing.T) {
	for _, state := range []asynq.TaskState{asynq.TaskStatePending, asynq.TaskStateRetry, asynq.TaskStateActive} {
		client := &fakeClient{results: []error{asynq.ErrTaskIDConflict}}
		inspector := &fakeInspector{state: state}
		q := &Queue{client: client, inspector: inspector, maxRetry: 8}

		require.NoError(t, q.EnqueueDelivery(context.Background(), "n-1"), state.String())
		assert.Empty(t, inspector.deleted, state.String())
		assert.Equal(t, 1, client.calls, state.String())
	}
}

func TestEnqueueDeliveryReportsQueueErrors(t *testing.T) {
	client := &fakeClient{results: []error{errors.New("redis down")}}
	q := &Queue{client: client, maxRetry: 8}
	assert.Error(t, q.EnqueueDelivery(context.Background(), "n-1"))
}
