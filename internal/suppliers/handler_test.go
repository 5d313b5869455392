package suppliers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/suppliers-api/internal/i18n"
	"github.com/odyssey-erp/suppliers-api/internal/platform/httpx"
	"github.com/odyssey-erp/suppliers-api/internal/shared"
)

const testKey = "secret-key"

// ============================================================================
// MOCK STORE
// ============================================================================

type mockStore struct {
	mu     sync.Mutex
	rows   map[int64]Supplier
	nextID int64
	clock  time.Time
	calls  int

	listErr   error
	getErr    error
	createErr error
	updateErr error
	deleteErr error
	existsErr error
	panicOn   string
}

func newMockStore() *mockStore {
	return &mockStore{
		rows:   make(map[int64]Supplier),
		nextID: 1,
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *mockStore) enter(op string) {
	m.calls++
	if m.panicOn == op {
		panic("boom in " + op)
	}
}

func (m *mockStore) List(ctx context.Context) ([]Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enter("list")
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]Supplier, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *mockStore) Get(ctx context.Context, id int64) (Supplier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enter("get")
	if m.getErr != nil {
		return Supplier{}, m.getErr
	}
	row, ok := m.rows[id]
	if !ok {
		return Supplier{}, shared.ErrNotFound
	}
	return row, nil
}

func (m *mockStore) Create(ctx context.Context, in Input) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enter("create")
	if m.createErr != nil {
		return 0, m.createErr
	}
	in = in.Sanitized()
	m.clock = m.clock.Add(time.Second)
	id := m.nextID
	m.nextID++
	m.rows[id] = Supplier{
		ID:          id,
		CompanyName: in.CompanyName,
		ContactName: in.ContactName,
		Phone:       in.Phone,
		Email:       in.Email,
		CreatedAt:   m.clock,
		UpdatedAt:   m.clock,
	}
	return id, nil
}

func (m *mockStore) Update(ctx context.Context, id int64, in Input) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enter("update")
	if m.updateErr != nil {
		return m.updateErr
	}
	row, ok := m.rows[id]
	if !ok {
		return nil
	}
	in = in.Sanitized()
	m.clock = m.clock.Add(time.Second)
	row.CompanyName, row.ContactName, row.Phone, row.Email = in.CompanyName, in.ContactName, in.Phone, in.Email
	row.UpdatedAt = m.clock
	m.rows[id] = row
	return nil
}

func (m *mockStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enter("delete")
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.rows, id)
	return nil
}

func (m *mockStore) Exists(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enter("exists")
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.rows[id]
	return ok, nil
}

type staticAuth string

func (a staticAuth) Validate(key string) bool { return key != "" && key == string(a) }

type recordingPublisher struct {
	events []Event
	err    error
}

func (p *recordingPublisher) PublishSupplierEvent(ctx context.Context, ev Event) error {
	p.events = append(p.events, ev)
	return p.err
}

type recordingMetrics struct {
	seen []string
}

func (m *recordingMetrics) ObserveOperation(operation, outcome string) {
	m.seen = append(m.seen, operation+":"+outcome)
}

// ============================================================================
// HELPERS
// ============================================================================

type fixture struct {
	store   *mockStore
	events  *recordingPublisher
	metrics *recordingMetrics
	handler *Handler
	router  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalog, err := i18n.New("en")
	require.NoError(t, err)

	f := &fixture{
		store:   newMockStore(),
		events:  &recordingPublisher{},
		metrics: &recordingMetrics{},
	}
	f.handler = NewHandler(HandlerParams{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:    f.store,
		Auth:     staticAuth(testKey),
		Messages: catalog,
		BasePath: "/api",
		Events:   f.events,
		Metrics:  f.metrics,
	})
	r := chi.NewRouter()
	f.handler.MountRoutes(r)
	f.router = r
	return f
}

type response struct {
	Code    int
	Header  http.Header
	Raw     string
	Status  string          `json:"status"`
	Message string          `json:"message"`
	ID      int64           `json:"id"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
}

func (f *fixture) do(t *testing.T, method, path, body string, headers map[string]string) response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if headers == nil {
		headers = map[string]string{"X-API-Key": testKey}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	res := response{Code: rr.Code, Header: rr.Header(), Raw: rr.Body.String()}
	if strings.TrimSpace(res.Raw) != "" {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res), "body: %s", res.Raw)
	}
	return res
}

// ============================================================================
// AUTHENTICATION
// ============================================================================

func TestServeHTTP_MissingKeyRejectedWithoutTouchingStore(t *testing.T) {
	f := newFixture(t)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		res := f.do(t, method, "/api/suppliers/1", `{"company_name":"A","contact_name":"B"}`, map[string]string{})
		assert.Equal(t, http.StatusUnauthorized, res.Code, method)
		assert.Equal(t, "error", res.Status)
		assert.Equal(t, i18n.MsgUnauthorized, res.Message)
	}
	assert.Zero(t, f.store.calls)
}

func TestServeHTTP_WrongKeyRejected(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodGet, "/api/suppliers", "", map[string]string{"X-API-Key": "nope"})

	assert.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Zero(t, f.store.calls)
}

func TestServeHTTP_LowercaseHeaderAccepted(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/suppliers", nil)
	req.Header["x-api-key"] = []string{testKey}
	rr := httptest.NewRecorder()

	f.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestServeHTTP_OptionsShortCircuits(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodOptions, "/api/suppliers/5", "", map[string]string{})

	assert.Equal(t, http.StatusOK, res.Code)
	assert.Empty(t, strings.TrimSpace(res.Raw))
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", res.Header.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "X-API-Key, Content-Type, Authorization", res.Header.Get("Access-Control-Allow-Headers"))
	assert.Zero(t, f.store.calls)
}

// ============================================================================
// COLLECTION
// ============================================================================

func TestServeHTTP_EmptyListKeepsDataAndCount(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodGet, "/api/suppliers", "", nil)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "application/json; charset=UTF-8", res.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"status":"success","data":[],"count":0}`, res.Raw)
}

func TestServeHTTP_ListNewestFirst(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Create(context.Background(), Input{CompanyName: "Old", ContactName: "A"})
	require.NoError(t, err)
	_, err = f.store.Create(context.Background(), Input{CompanyName: "New", ContactName: "B"})
	require.NoError(t, err)

	res := f.do(t, http.MethodGet, "/api/suppliers", "", nil)

	require.Equal(t, http.StatusOK, res.Code)
	require.NotNil(t, res.Count)
	assert.Equal(t, 2, *res.Count)
	var items []Supplier
	require.NoError(t, json.Unmarshal(res.Data, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "New", items[0].CompanyName)
	assert.Equal(t, "Old", items[1].CompanyName)
}

func TestServeHTTP_ListFailureEmbedsError(t *testing.T) {
	f := newFixture(t)
	f.store.listErr = errors.New("connection refused")

	res := f.do(t, http.MethodGet, "/api/suppliers", "", nil)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, "error", res.Status)
	assert.Equal(t, "Internal server error: connection refused", res.Message)
	assert.Contains(t, f.metrics.seen, "list:error")
}

// ============================================================================
// CREATE AND READ
// ============================================================================

func TestServeHTTP_CreateThenGet(t *testing.T) {
	f := newFixture(t)

	created := f.do(t, http.MethodPost, "/api/suppliers", `{"company_name":"A","contact_name":"B"}`, nil)
	require.Equal(t, http.StatusCreated, created.Code)
	assert.Equal(t, "success", created.Status)
	assert.Equal(t, i18n.MsgCreated, created.Message)
	require.Positive(t, created.ID)

	got := f.do(t, http.MethodGet, "/api/suppliers/1", "", nil)
	require.Equal(t, http.StatusOK, got.Code)
	var sup Supplier
	require.NoError(t, json.Unmarshal(got.Data, &sup))
	assert.Equal(t, created.ID, sup.ID)
	assert.Equal(t, "A", sup.CompanyName)
	assert.Equal(t, "B", sup.ContactName)
	assert.Equal(t, "", sup.Phone)
	assert.Equal(t, "", sup.Email)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, ActionCreated, f.events.events[0].Action)
	assert.Equal(t, created.ID, f.events.events[0].SupplierID)
	assert.NotEmpty(t, f.events.events[0].ID)
}

func TestServeHTTP_CreateSanitizesMarkup(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodPost, "/api/suppliers", `{"company_name":"<b>Acme</b> & Co","contact_name":"O'Neil"}`, nil)
	require.Equal(t, http.StatusCreated, res.Code)

	row := f.store.rows[res.ID]
	assert.Equal(t, "Acme &amp; Co", row.CompanyName)
	assert.Equal(t, "O&#039;Neil", row.ContactName)
}

func TestServeHTTP_CreateMissingFieldNamesIt(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		body  string
		field string
	}{
		{`{"contact_name":"B"}`, "company_name"},
		{`{"company_name":"","contact_name":"B"}`, "company_name"},
		{`{"company_name":"A"}`, "contact_name"},
		{`{}`, "company_name"},
	}
	for _, tc := range cases {
		res := f.do(t, http.MethodPost, "/api/suppliers", tc.body, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code, tc.body)
		assert.Equal(t, "Field '"+tc.field+"' is required.", res.Message, tc.body)
	}
	assert.Zero(t, f.store.calls)
}

func TestServeHTTP_CreateInvalidJSON(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{`{"company_name":`, `not json`, `{"company_name":{"a":1},"contact_name":"B"}`, `{"company_name":"A","contact_name":"B","phone":[1]}`, `{"company_name":"A","contact_name":"B"} {}`} {
		res := f.do(t, http.MethodPost, "/api/suppliers", body, nil)
		assert.Equal(t, http.StatusBadRequest, res.Code, body)
		assert.Equal(t, i18n.MsgInvalidJSON, res.Message, body)
	}
	assert.Zero(t, f.store.calls)
}

func TestServeHTTP_CreateAcceptsScalarFields(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodPost, "/api/suppliers", `{"company_name":"Acme","contact_name":"Jane","phone":5551234,"email":null}`, nil)

	require.Equal(t, http.StatusCreated, res.Code, res.Raw)
	row := f.store.rows[res.ID]
	assert.Equal(t, "5551234", row.Phone)
	assert.Equal(t, "", row.Email)
}

func TestServeHTTP_CreateAcceptsZeroCompanyName(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodPost, "/api/suppliers", `{"company_name":"0","contact_name":"B"}`, nil)

	require.Equal(t, http.StatusCreated, res.Code, res.Raw)
	assert.Equal(t, "0", f.store.rows[res.ID].CompanyName)
}

func TestServeHTTP_CreateStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.createErr = errors.New("disk full")

	res := f.do(t, http.MethodPost, "/api/suppliers", `{"company_name":"A","contact_name":"B"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, i18n.MsgCreateFailed, res.Message)
	assert.Empty(t, f.events.events)
}

func TestServeHTTP_PublishFailureDoesNotChangeOutcome(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("queue down")

	res := f.do(t, http.MethodPost, "/api/suppliers", `{"company_name":"A","contact_name":"B"}`, nil)

	assert.Equal(t, http.StatusCreated, res.Code)
}

func TestServeHTTP_GetUnknownIsNotFound(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodGet, "/api/suppliers/42", "", nil)

	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, i18n.MsgSupplierNotFound, res.Message)
	assert.Contains(t, f.metrics.seen, "get:not_found")
}

func TestServeHTTP_NumericLastSegmentAddressesRecord(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Create(context.Background(), Input{CompanyName: "A", ContactName: "B"})
	require.NoError(t, err)

	res := f.do(t, http.MethodGet, "/api/vendors/1", "", nil)

	assert.Equal(t, http.StatusOK, res.Code)
}

// ============================================================================
// UPDATE AND DELETE
// ============================================================================

func TestServeHTTP_UpdateOverwritesAllFields(t *testing.T) {
	f := newFixture(t)
	id, err := f.store.Create(context.Background(), Input{CompanyName: "A", ContactName: "B", Phone: "1", Email: "a@b.c"})
	require.NoError(t, err)

	res := f.do(t, http.MethodPut, "/api/suppliers/1", `{"company_name":"A2"}`, nil)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, i18n.MsgUpdated, res.Message)
	row := f.store.rows[id]
	assert.Equal(t, "A2", row.CompanyName)
	assert.Equal(t, "", row.ContactName)
	assert.Equal(t, "", row.Phone)
	assert.Equal(t, "", row.Email)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, ActionUpdated, f.events.events[0].Action)
}

func TestServeHTTP_UpdateAcceptsNumericPhone(t *testing.T) {
	f := newFixture(t)
	id, err := f.store.Create(context.Background(), Input{CompanyName: "A", ContactName: "B"})
	require.NoError(t, err)

	res := f.do(t, http.MethodPut, "/api/suppliers/1", `{"company_name":"A","contact_name":"B","phone":79001234567,"email":true}`, nil)

	require.Equal(t, http.StatusOK, res.Code, res.Raw)
	assert.Equal(t, "79001234567", f.store.rows[id].Phone)
	assert.Equal(t, "1", f.store.rows[id].Email)
}

func TestServeHTTP_UpdateUnknownDoesNotMutate(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Create(context.Background(), Input{CompanyName: "A", ContactName: "B"})
	require.NoError(t, err)
	before := f.store.rows[1]

	res := f.do(t, http.MethodPut, "/api/suppliers/999999", `{"company_name":"X","contact_name":"Y"}`, nil)

	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, i18n.MsgSupplierNotFound, res.Message)
	assert.Equal(t, before, f.store.rows[1])
	assert.Len(t, f.store.rows, 1)
}

func TestServeHTTP_UpdateWithoutIDIsBadRequest(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodPut, "/api/suppliers", `{"company_name":"X"}`, nil)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, i18n.MsgIDMissing, res.Message)
	assert.Zero(t, f.store.calls)
}

func TestServeHTTP_UpdateInvalidJSON(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Create(context.Background(), Input{CompanyName: "A", ContactName: "B"})
	require.NoError(t, err)

	res := f.do(t, http.MethodPut, "/api/suppliers/1", `{`, nil)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, i18n.MsgInvalidJSON, res.Message)
	assert.Equal(t, "A", f.store.rows[1].CompanyName)
}

func TestServeHTTP_UpdateStoreFailure(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Create(context.Background(), Input{CompanyName: "A", ContactName: "B"})
	require.NoError(t, err)
	f.store.updateErr = errors.New("locked")

	res := f.do(t, http.MethodPut, "/api/suppliers/1", `{"company_name":"X"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, i18n.MsgUpdateFailed, res.Message)
}

func TestServeHTTP_DeleteTwice(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Create(context.Background(), Input{CompanyName: "A", ContactName: "B"})
	require.NoError(t, err)

	first := f.do(t, http.MethodDelete, "/api/suppliers/1", "", nil)
	second := f.do(t, http.MethodDelete, "/api/suppliers/1", "", nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, i18n.MsgDeleted, first.Message)
	assert.Equal(t, http.StatusNotFound, second.Code)
	assert.Equal(t, i18n.MsgSupplierNotFound, second.Message)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, ActionDeleted, f.events.events[0].Action)
}

func TestServeHTTP_DeleteWithoutID(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodDelete, "/api/suppliers", "", nil)

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, i18n.MsgIDMissing, res.Message)
}

func TestServeHTTP_DeleteStoreFailure(t *testing.T) {
	f := newFixture(t)
	_, err := f.store.Create(context.Background(), Input{CompanyName: "A", ContactName: "B"})
	require.NoError(t, err)
	f.store.deleteErr = errors.New("fk violation")

	res := f.do(t, http.MethodDelete, "/api/suppliers/1", "", nil)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, i18n.MsgDeleteFailed, res.Message)
}

func TestServeHTTP_ExistsFailureEmbedsError(t *testing.T) {
	f := newFixture(t)
	f.store.existsErr = errors.New("timeout")

	res := f.do(t, http.MethodDelete, "/api/suppliers/3", "", nil)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, "Internal server error: timeout", res.Message)
}

// ============================================================================
// DISPATCH AND FAULTS
// ============================================================================

func TestServeHTTP_UnsupportedMethod(t *testing.T) {
	f := newFixture(t)

	for _, method := range []string{http.MethodPatch, "PROPFIND", "PURGE"} {
		res := f.do(t, method, "/api/suppliers/1", "", nil)

		assert.Equal(t, http.StatusMethodNotAllowed, res.Code, method)
		assert.Equal(t, "error", res.Status, method)
		assert.Equal(t, i18n.MsgMethodNotAllowed, res.Message, method)
		assert.Equal(t, httpx.ContentTypeJSON, res.Header.Get("Content-Type"), method)
	}
	assert.Zero(t, f.store.calls)
}

func TestServeHTTP_PanicBecomesInternalError(t *testing.T) {
	f := newFixture(t)
	f.store.panicOn = "list"

	res := f.do(t, http.MethodGet, "/api/suppliers", "", nil)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, "Internal server error: boom in list", res.Message)
}

func TestServeHTTP_RussianMessages(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodGet, "/api/suppliers/77", "", map[string]string{
		"X-API-Key":       testKey,
		"Accept-Language": "ru-RU,ru;q=0.9",
	})

	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "Поставщик не найден.", res.Message)
}

func TestServeHTTP_RecordsOperationOutcomes(t *testing.T) {
	f := newFixture(t)

	f.do(t, http.MethodPost, "/api/suppliers", `{"company_name":"A","contact_name":"B"}`, nil)
	f.do(t, http.MethodPost, "/api/suppliers", `{}`, nil)
	f.do(t, http.MethodGet, "/api/suppliers", "", nil)

	assert.Equal(t, []string{"create:ok", "create:invalid", "list:ok"}, f.metrics.seen)
}
