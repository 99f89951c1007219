package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskilo/database"
	"taskilo/database/repository"
	"taskilo/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePush struct {
	tokens []string
	err    error
}

func (f *fakePush) Send(_ context.Context, token, _, _ string, _ map[string]string) error {
	f.tokens = append(f.tokens, token)
	return f.err
}

type fakeMail struct {
	to  []string
	err error
}

func (f *fakeMail) Send(_ context.Context, toEmail, _, _, _ string) error {
	f.to = append(f.to, toEmail)
	return f.err
}

type fakeEnqueuer struct {
	ids []string
	err error
}

func (f *fakeEnqueuer) EnqueueDelivery(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.ids = append(f.ids, id)
	return nil
}

func seed(t *testing.T) (*repository.Set, *models.Quote) {
	t.Helper()
	ctx := context.Background()
	repos := repository.NewSet(database.NewMemoryStore())

	require.NoError(t, repos.Users.Save(ctx, &models.User{ID: "u-1", FirstName: "Anna", LastName: "Schmidt", Email: "anna@example.de", FCMToken: "tok-user"}))
	require.NoError(t, repos.Companies.Save(ctx, &models.Company{ID: "c-1", CompanyName: "Malerei Huber", Email: "info@huber.de"}))

	q := &models.Quote{ID: "q-1", CustomerID: "u-1", ProviderID: "c-1", Title: "Wohnzimmer streichen"}
	for _, n := range PaymentConfirmed(q, "Anna Schmidt", "Malerei Huber") {
		require.NoError(t, repos.Notifications.Create(ctx, n))
	}
	return repos, q
}

func TestPaymentConfirmedBuildsOnePerParty(t *testing.T) {
	q := &models.Quote{ID: "q-1", CustomerID: "u-1", ProviderID: "c-1", Title: "Bad fliesen"}
	ns := PaymentConfirmed(q, "Anna", "Fliesen GmbH")
	require.Len(t, ns, 2)

	assert.Equal(t, "u-1", ns[0].RecipientID)
	assert.Equal(t, models.RecipientUser, ns[0].RecipientType)
	assert.Contains(t, ns[0].Body, "Fliesen GmbH")
	assert.Equal(t, "c-1", ns[1].RecipientID)
	assert.Contains(t, ns[1].Body, "Anna")
	assert.NotEqual(t, ns[0].ID, ns[1].ID)

	again := PaymentConfirmed(q, "Anna", "Fliesen GmbH")
	assert.Equal(t, ns[0].ID, again[0].ID)
}

func TestDeliverSendsAndMarksDelivered(t *testing.T) {
	ctx := context.Background()
	repos, q := seed(t)
	push, mail := &fakePush{}, &fakeMail{}
	d := NewDeliverer(repos, push, mail, 3, zap.NewNop())

	userID := notificationID(q.ID, models.NotificationPaymentConfirmed, models.RecipientUser)
	require.NoError(t, d.Deliver(ctx, userID))

	assert.Equal(t, []string{"tok-user"}, push.tokens)
	assert.Equal(t, []string{"anna@example.de"}, mail.to)

	n, err := repos.Notifications.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationStatusDelivered, n.Status)
	assert.Equal(t, 1, n.Attempts)
	require.NotNil(t, n.DeliveredAt)

	// Delivered entries are not sent twice.
	require.NoError(t, d.Deliver(ctx, userID))
	assert.Len(t, push.tokens, 1)
}

func TestDeliverRetriesThenFails(t *testing.T) {
	ctx := context.Background()
	repos, q := seed(t)
	mail := &fakeMail{err: errors.New("smtp down")}
	d := NewDeliverer(repos, nil, mail, 2, zap.NewNop())

	companyID := notificationID(q.ID, models.NotificationPaymentConfirmed, models.RecipientCompany)
	assert.Error(t, d.Deliver(ctx, companyID))

	n, err := repos.Notifications.GetByID(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationStatusPending, n.Status)
	assert.Equal(t, 1, n.Attempts)
	assert.Contains(t, n.LastError, "smtp down")

	assert.NoError(t, d.Deliver(ctx, companyID))
	n, err = repos.Notifications.GetByID(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, models.NotificationStatusFailed, n.Status)
	assert.Equal(t, 2, n.Attempts)
}

func TestDeliverMissingNotification(t *testing.T) {
	repos, _ := seed(t)
	d := NewDeliverer(repos, nil, nil, 3, zap.NewNop())
	assert.NoError(t, d.Deliver(context.Background(), "nope"))
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	repos, _ := seed(t)

	enq := &fakeEnqueuer{}
	res := Sweep(ctx, repos, enq, time.Now().Add(time.Minute), 10)
	require.NoError(t, res.Err)
	assert.Equal(t, 2, res.Enqueued)
	assert.Len(t, enq.ids, 2)

	none := Sweep(ctx, repos, enq, time.Now().Add(-time.Hour), 10)
	assert.Equal(t, 0, none.Enqueued)

	failing := Sweep(ctx, repos, &fakeEnqueuer{err: errors.New("redis down")}, time.Now().Add(time.Minute), 10)
	assert.Error(t, failing.Err)
	assert.Equal(t, 0, failing.Enqueued)
}
