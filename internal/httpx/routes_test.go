package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Shazidulislam/final-project-plant-server/internal/docstore"
	"github.com/Shazidulislam/final-project-plant-server/internal/events"
	"github.com/Shazidulislam/final-project-plant-server/internal/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const missingID = "65a1b2c3d4e5f60718293a4b"

func TestAddAndListPlants(t *testing.T) {
	a := newAPI(t, true)

	rr := a.do(t, http.MethodPost, "/add-plant", `{"name":"Fern","category":"Indoor","price":12.5,"quantity":10,"seller":{"email":"sam@x.io"}}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	ack := decodeBody[docstore.InsertResult](t, rr)
	assert.True(t, ack.Acknowledged)
	assert.Len(t, ack.InsertedID, 24)

	rr = a.do(t, http.MethodGet, "/plants", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeBody[[]map[string]any](t, rr)
	require.Len(t, list, 1)
	assert.Equal(t, "Fern", list[0]["name"])
	assert.Equal(t, ack.InsertedID, list[0]["_id"])

	assert.Len(t, a.rec.Envelopes(events.TopicPlantAdded), 1)
}

func TestAddPlantValidation(t *testing.T) {
	a := newAPI(t, true)

	for _, body := range []string{
		`{"price":1,"quantity":1}`,
		`{"name":"Fern","price":"cheap","quantity":1}`,
		`{"name":"Fern","price":1,"quantity":1.5}`,
		`[]`,
	} {
		rr := a.do(t, http.MethodPost, "/add-plant", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code, body)
	}
	assert.Zero(t, a.plants.Len())
}

func TestListPlantsEmptyIsArray(t *testing.T) {
	a := newAPI(t, true)
	rr := a.do(t, http.MethodGet, "/plants", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetPlant(t *testing.T) {
	a := newAPI(t, true)
	id := a.plants.InsertAt(docstore.Document{"name": "Fern", "price": 12.5}, time.Now())

	rr := a.do(t, http.MethodGet, "/plant/"+id, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Fern", decodeBody[map[string]any](t, rr)["name"])

	rr = a.do(t, http.MethodGet, "/plant/"+missingID, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "null", strings.TrimSpace(rr.Body.String()))

	rr = a.do(t, http.MethodGet, "/plant/not-an-id", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdjustPlantQuantity(t *testing.T) {
	a := newAPI(t, true)
	id := a.plants.InsertAt(docstore.Document{"name": "Fern", "quantity": 10}, time.Now())

	rr := a.do(t, http.MethodPatch, "/update_plant_quantity/"+id, `{"updateQuantity":3,"status":"decrease"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	res := decodeBody[docstore.UpdateResult](t, rr)
	assert.EqualValues(t, 1, res.MatchedCount)
	assert.EqualValues(t, 1, res.ModifiedCount)

	rr = a.do(t, http.MethodPatch, "/update_plant_quantity/"+id, `{"updateQuantity":5,"status":"increase"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	p, err := a.plants.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 12.0, p["quantity"])

	rr = a.do(t, http.MethodPatch, "/update_plant_quantity/"+id, `{"updateQuantity":1,"status":"sideways"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPaymentIntent(t *testing.T) {
	a := newAPI(t, true)
	id := a.plants.InsertAt(docstore.Document{"name": "Fern", "price": 12.5}, time.Now())

	rr := a.do(t, http.MethodPost, "/create-payment-intent", `{"plantId":"`+id+`","quantity":3}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"secret":"pi_123_secret_456"}`, rr.Body.String())
	assert.EqualValues(t, 3750, a.proc.amount)
	assert.Equal(t, "usd", a.proc.currency)
}

func TestPaymentIntentUnknownPlant(t *testing.T) {
	a := newAPI(t, true)

	rr := a.do(t, http.MethodPost, "/create-payment-intent", `{"plantId":"`+missingID+`","quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"message":"Plant not found!"}`, rr.Body.String())
	assert.Zero(t, a.proc.calls)
}

func TestPaymentIntentFailures(t *testing.T) {
	a := newAPI(t, true)
	unpriced := a.plants.InsertAt(docstore.Document{"name": "Fern"}, time.Now())
	priced := a.plants.InsertAt(docstore.Document{"name": "Moss", "price": 2}, time.Now())

	rr := a.do(t, http.MethodPost, "/create-payment-intent", `{"plantId":"`+unpriced+`","quantity":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Zero(t, a.proc.calls)

	a.proc.err = payment.ErrProcessor
	rr = a.do(t, http.MethodPost, "/create-payment-intent", `{"plantId":"`+priced+`","quantity":1}`)
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	rr = a.do(t, http.MethodPost, "/create-payment-intent", `{"plantId":"`+priced+`","quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func orderBody(customer, seller string, price float64) string {
	return fmt.Sprintf(`{"plantId":%q,"customer":{"email":%q},"seller":{"email":%q},"quantity":1,"price":%g,"status":"pending"}`,
		missingID, customer, seller, price)
}

func TestOrdersByParty(t *testing.T) {
	a := newAPI(t, true)
	for _, b := range []string{
		orderBody("ann@x.io", "sam@x.io", 10),
		orderBody("bob@x.io", "sam@x.io", 20),
		orderBody("ann@x.io", "sue@x.io", 5),
	} {
		rr := a.do(t, http.MethodPost, "/orders", b)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	rr := a.do(t, http.MethodGet, "/customer/orders/ann@x.io", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, rr), 2)

	rr = a.do(t, http.MethodGet, "/orders/seller/sam%40x.io", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]map[string]any](t, rr), 2)

	rr = a.do(t, http.MethodGet, "/customer/orders/nobody@x.io", "")
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestCreateOrderWithLegacySellerString(t *testing.T) {
	a := newAPI(t, true)
	body := fmt.Sprintf(`{"plantId":%q,"customer":{"email":"ann@x.io"},"seller":"sam@x.io","quantity":1,"price":10}`, missingID)

	rr := a.do(t, http.MethodPost, "/orders", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 1, a.orders.Len())

	envs := a.rec.Envelopes(events.TopicOrderPlaced)
	require.Len(t, envs, 1)
	assert.Contains(t, string(envs[0].Payload), `"seller_email":"sam@x.io"`)

	rr = a.do(t, http.MethodPost, "/orders", fmt.Sprintf(`{"plantId":%q,"customer":{"email":"ann@x.io"},"seller":"","quantity":1,"price":10}`, missingID))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = a.do(t, http.MethodPost, "/orders", fmt.Sprintf(`{"plantId":%q,"customer":{"email":"ann@x.io"},"seller":{"name":"Sam"},"quantity":1,"price":10}`, missingID))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 1, a.orders.Len())
}

func TestCreateOrderValidation(t *testing.T) {
	a := newAPI(t, true)
	rr := a.do(t, http.MethodPost, "/orders", `{"plantId":"x","quantity":1,"price":1}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, a.orders.Len())
}

func TestOrderStatus(t *testing.T) {
	a := newAPI(t, true)
	id := a.orders.InsertAt(docstore.Document{"status": "pending"}, time.Now())

	rr := a.do(t, http.MethodPatch, "/orders/status/"+id, `{"status":"delivered"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, decodeBody[docstore.UpdateResult](t, rr).ModifiedCount)

	rr = a.do(t, http.MethodPatch, "/orders/status/"+missingID, `{"status":"delivered"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	res := decodeBody[docstore.UpdateResult](t, rr)
	assert.Zero(t, res.MatchedCount)
	assert.Zero(t, res.UpsertedCount)
	assert.Equal(t, 1, a.orders.Len())
}

func TestCancelOrder(t *testing.T) {
	a := newAPI(t, true)
	id := a.orders.InsertAt(docstore.Document{"status": "pending"}, time.Now())

	rr := a.do(t, http.MethodPatch, "/orders/status/cancle/"+id, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, decodeBody[docstore.UpdateResult](t, rr).MatchedCount)
	o, err := a.orders.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "cancle", o["status"])

	rr = a.do(t, http.MethodPatch, "/orders/status/cancle/"+missingID, "")
	require.Equal(t, http.StatusOK, rr.Code)
	res := decodeBody[docstore.UpdateResult](t, rr)
	assert.EqualValues(t, 1, res.UpsertedCount)
	require.NotNil(t, res.UpsertedID)
	assert.Equal(t, missingID, *res.UpsertedID)
	assert.Equal(t, 2, a.orders.Len())

	rr = a.do(t, http.MethodPatch, "/orders/status/cancle/xyz", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSaveUserTwiceInsertsOnce(t *testing.T) {
	a := newAPI(t, true)

	rr := a.do(t, http.MethodPost, "/user", `{"email":"ann@x.io","name":"Ann"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	first := decodeBody[map[string]any](t, rr)
	assert.Contains(t, first, "insertedId")

	rr = a.do(t, http.MethodPost, "/user", `{"email":"ann@x.io","name":"Ann"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	second := decodeBody[map[string]any](t, rr)
	assert.EqualValues(t, 1, second["matchedCount"])

	assert.Equal(t, 1, a.users.Len())
}

func TestUserRole(t *testing.T) {
	a := newAPI(t, true)
	a.users.InsertAt(docstore.Document{"email": "ann@x.io", "role": "seller"}, time.Now())

	rr := a.do(t, http.MethodGet, "/user-role/ann@x.io", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"role":"seller"}`, rr.Body.String())

	rr = a.do(t, http.MethodGet, "/user-role/ghost@x.io", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUserRoleOmittedWhenUnset(t *testing.T) {
	a := newAPI(t, true)
	a.users.InsertAt(docstore.Document{"email": "old@x.io"}, time.Now())

	rr := a.do(t, http.MethodGet, "/user-role/old@x.io", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{}`, rr.Body.String())
}

func TestUpdateRoleByAdmin(t *testing.T) {
	a := newAPI(t, true)
	a.users.InsertAt(docstore.Document{"email": "admin@x.io", "role": "admin"}, time.Now())
	a.users.InsertAt(docstore.Document{"email": "sam@x.io", "role": "customer", "status": "requsted"}, time.Now())
	admin := a.session(t, "admin@x.io")

	rr := a.do(t, http.MethodPatch, "/user/role/update/sam@x.io", `{"role":"seller"}`, admin)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	u, err := a.users.FindOne(context.Background(), docstore.Document{"email": "sam@x.io"})
	require.NoError(t, err)
	assert.Equal(t, "seller", u["role"])
	assert.Equal(t, "verified", u["status"])

	rr = a.do(t, http.MethodPatch, "/user/role/update/sam@x.io", `{"role":"overlord"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = a.do(t, http.MethodPatch, "/user/role/update/sam@x.io", `{"role":"admin"}`, a.session(t, "sam@x.io"))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestBecomeSeller(t *testing.T) {
	a := newAPI(t, true)
	a.users.InsertAt(docstore.Document{"email": "ann@x.io", "role": "customer"}, time.Now())

	rr := a.do(t, http.MethodPatch, "/user/become-seller/ann@x.io", "", a.session(t, "ann@x.io"))
	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody[map[string]docstore.UpdateResult](t, rr)
	assert.EqualValues(t, 1, body["result"].MatchedCount)

	u, err := a.users.FindOne(context.Background(), docstore.Document{"email": "ann@x.io"})
	require.NoError(t, err)
	assert.Equal(t, "requsted", u["status"])
}

func TestManageUsersExcludesCaller(t *testing.T) {
	a := newAPI(t, true)
	a.users.InsertAt(docstore.Document{"email": "admin@x.io", "role": "admin"}, time.Now())
	a.users.InsertAt(docstore.Document{"email": "ann@x.io", "role": "customer"}, time.Now())
	a.users.InsertAt(docstore.Document{"email": "sam@x.io", "role": "seller"}, time.Now())

	rr := a.do(t, http.MethodGet, "/manage_user", "", a.session(t, "admin@x.io"))
	require.Equal(t, http.StatusOK, rr.Code)
	list := decodeBody[[]map[string]any](t, rr)
	require.Len(t, list, 2)
	for _, u := range list {
		assert.NotEqual(t, "admin@x.io", u["email"])
	}
}

func TestAdminState(t *testing.T) {
	a := newAPI(t, true)
	a.users.InsertAt(docstore.Document{"email": "admin@x.io", "role": "admin"}, time.Now())
	a.plants.InsertAt(docstore.Document{"name": "Fern"}, time.Now())
	day1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
	a.orders.InsertAt(docstore.Document{"price": 10}, day1)
	a.orders.InsertAt(docstore.Document{"price": 15}, day1)
	a.orders.InsertAt(docstore.Document{"price": 7}, day2)

	rr := a.do(t, http.MethodGet, "/admin-state", "", a.session(t, "admin@x.io"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{
		"totalUsers": 1,
		"totalPlant": 1,
		"totalRevenue": 32,
		"totalOrder": 3,
		"barChatData": [
			{"date": "2025-03-01", "revenue": 25, "order": 2},
			{"date": "2025-03-02", "revenue": 7, "order": 1}
		]
	}`, rr.Body.String())
}

func TestStoreFailureIsServiceUnavailable(t *testing.T) {
	a := newAPI(t, true)
	a.plants.Err = errors.New("connection refused")

	rr := a.do(t, http.MethodGet, "/plants", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"message":"storage unavailable"}`, rr.Body.String())
	assert.NotContains(t, rr.Body.String(), "connection refused")
}
