package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shazidulislam/final-project-plant-server/internal/docstore"
	"github.com/Shazidulislam/final-project-plant-server/internal/docstore/docstoretest"
	"github.com/Shazidulislam/final-project-plant-server/internal/events"
	kafkax "github.com/Shazidulislam/final-project-plant-server/internal/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc    *Service
	orders *docstoretest.Collection
	users  *docstoretest.Collection
	plants *docstoretest.Collection
	rec    *events.Recorder
}

func newFixture() fixture {
	f := fixture{
		orders: docstoretest.New(),
		users:  docstoretest.New("email"),
		plants: docstoretest.New(),
		rec:    &events.Recorder{},
	}
	f.svc = &Service{Orders: f.orders, Users: f.users, Plants: f.plants, Events: events.NewEmitter(f.rec, "test")}
	return f
}

func order(customer, seller string, price float64) docstore.Document {
	return docstore.Document{
		"plantId":  "65a1b2c3d4e5f60718293a4b",
		"customer": map[string]any{"email": customer, "name": "C"},
		"seller":   map[string]any{"email": seller},
		"quantity": 1,
		"price":    price,
		"status":   string(StatusPending),
	}
}

func TestCreateAndListByParty(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, order("ann@x.io", "sam@x.io", 10))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, order("bob@x.io", "sam@x.io", 20))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, order("ann@x.io", "sue@x.io", 5))
	require.NoError(t, err)

	ann, err := f.svc.ListByCustomer(ctx, "ann@x.io")
	require.NoError(t, err)
	assert.Len(t, ann, 2)

	sam, err := f.svc.ListBySeller(ctx, "sam@x.io")
	require.NoError(t, err)
	assert.Len(t, sam, 2)

	none, err := f.svc.ListBySeller(ctx, "nobody@x.io")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	envs := f.rec.Envelopes(events.TopicOrderPlaced)
	require.Len(t, envs, 3)
	p, err := kafkax.UnwrapPayload[events.OrderPlacedPayload](envs[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.io", p.CustomerEmail)
	assert.Equal(t, "sam@x.io", p.SellerEmail)
}

func TestDuplicateSubmissionCreatesDuplicate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	o := order("ann@x.io", "sam@x.io", 10)

	a, err := f.svc.Create(ctx, o)
	require.NoError(t, err)
	b, err := f.svc.Create(ctx, o)
	require.NoError(t, err)
	assert.NotEqual(t, a.InsertedID, b.InsertedID)
	assert.Equal(t, 2, f.orders.Len())
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.orders.InsertAt(order("ann@x.io", "sam@x.io", 10), time.Now())

	res, err := f.svc.UpdateStatus(ctx, id, "Delivered")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MatchedCount)

	doc, err := f.orders.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Delivered", doc["status"])
}

func TestUpdateStatusDoesNotUpsert(t *testing.T) {
	f := newFixture()
	res, err := f.svc.UpdateStatus(context.Background(), "65a1b2c3d4e5f60718293a4b", "Delivered")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.MatchedCount)
	assert.Equal(t, 0, f.orders.Len())
	assert.Empty(t, f.rec.Envelopes(events.TopicOrderStatusChanged))
}

func TestCancelExistingOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := f.orders.InsertAt(order("ann@x.io", "sam@x.io", 10), time.Now())

	res, err := f.svc.Cancel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MatchedCount)
	assert.Equal(t, int64(0), res.UpsertedCount)

	doc, err := f.orders.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "cancle", doc["status"])
	assert.Equal(t, "ann@x.io", doc.String("customer.email"))
}

func TestCancelUnknownOrderUpserts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	id := "65a1b2c3d4e5f60718293a4b"

	res, err := f.svc.Cancel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.UpsertedCount)
	require.NotNil(t, res.UpsertedID)
	assert.Equal(t, id, *res.UpsertedID)

	doc, err := f.orders.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, docstore.Document{"_id": id, "status": "cancle"}, doc)

	envs := f.rec.Envelopes(events.TopicOrderStatusChanged)
	require.Len(t, envs, 1)
	p, err := kafkax.UnwrapPayload[events.OrderStatusChangedPayload](envs[0].Payload)
	require.NoError(t, err)
	assert.True(t, p.Upserted)
}

func TestCancelRejectsMalformedID(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Cancel(context.Background(), "abc")
	assert.ErrorIs(t, err, docstore.ErrInvalidID)
}

func TestStatsGroupsRevenueByDay(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	d1 := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	d2 := time.Date(2024, 5, 2, 23, 59, 0, 0, time.UTC)

	f.orders.InsertAt(docstore.Document{"price": 10}, d1)
	f.orders.InsertAt(docstore.Document{"price": 5}, d1.Add(2*time.Hour))
	f.orders.InsertAt(docstore.Document{"price": 20}, d2)
	f.users.InsertAt(docstore.Document{"email": "a@x.io"}, d1)
	f.users.InsertAt(docstore.Document{"email": "b@x.io"}, d1)
	f.plants.InsertAt(docstore.Document{"name": "Fern"}, d1)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalPlant)
	assert.Equal(t, float64(35), stats.TotalRevenue)
	assert.Equal(t, int64(3), stats.TotalOrder)
	assert.Equal(t, []DayRevenue{
		{Date: "2024-05-01", Revenue: 15, Order: 2},
		{Date: "2024-05-02", Revenue: 20, Order: 1},
	}, stats.BarChatData)
}

func TestStatsCountsUnpricedOrders(t *testing.T) {
	f := newFixture()
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	f.orders.InsertAt(docstore.Document{"price": "12"}, at)
	f.orders.InsertAt(docstore.Document{"status": "cancle"}, at)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(0), stats.TotalRevenue)
	assert.Equal(t, int64(2), stats.TotalOrder)
}

func TestStatsEmpty(t *testing.T) {
	f := newFixture()
	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, stats.BarChatData)
	assert.Empty(t, stats.BarChatData)
}

func TestStatsStoreFailure(t *testing.T) {
	f := newFixture()
	f.users.Err = errors.New("down")
	_, err := f.svc.Stats(context.Background())
	assert.ErrorIs(t, err, docstore.ErrUnavailable)
}
