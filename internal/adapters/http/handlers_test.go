package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	accountDomain "campusbooking/internal/domain/account"
	auditDomain "campusbooking/internal/domain/audit"
	"campusbooking/internal/domain/booking"
	incidentDomain "campusbooking/internal/domain/incident"
	scheduleDomain "campusbooking/internal/domain/schedule"
	"campusbooking/internal/domain/scope"
	spaceDomain "campusbooking/internal/domain/space"

	accountStore "campusbooking/internal/adapters/storage/account"
	auditStore "campusbooking/internal/adapters/storage/audit"
	reservationStore "campusbooking/internal/adapters/storage/reservation"
	schoolStore "campusbooking/internal/adapters/storage/school"

	"campusbooking/internal/adapters/http/middleware"
	"campusbooking/internal/adapters/http/perf"
	"campusbooking/internal/adapters/incidentpolicy"
	"campusbooking/internal/adapters/token"
	"campusbooking/internal/application/scheduleindex"
)

// Monday of the fixture week, mid-morning.
var handlerNow = time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)

type mockAccountStore struct {
	accounts map[string]accountDomain.Account
}

// GetByID implements the account store interface for testing.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (m *mockAccountStore) GetByID(ctx context.Context, id string) (accountDomain.Account, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return accountDomain.Account{}, accountStore.ErrNotFound
}

// GetByEmail implements the account store interface for testing.
// PRE: email is non-empty
// POST: Returns the entity or an error if not found
func (m *mockAccountStore) GetByEmail(ctx context.Context, email string) (accountDomain.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return accountDomain.Account{}, accountStore.ErrNotFound
}

// Save implements the account store interface for testing.
// PRE: entity has been validated
// POST: Entity is persisted
func (m *mockAccountStore) Save(ctx context.Context, a accountDomain.Account) error {
	if m.accounts == nil {
		m.accounts = make(map[string]accountDomain.Account)
	}
	m.accounts[a.ID] = a
	return nil
}

// List implements the account store interface for testing.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (m *mockAccountStore) List(ctx context.Context, filter accountStore.ListFilter) ([]accountDomain.Account, error) {
	var list []accountDomain.Account
	for _, a := range m.accounts {
		list = append(list, a)
	}
	return list, nil
}

// Count implements the account store interface for testing.
// POST: Returns count of stored entities
func (m *mockAccountStore) Count(ctx context.Context) (int, error) {
	return len(m.accounts), nil
}

type mockSpaceStore struct {
	spaces map[string]spaceDomain.Space
	blocks map[string]spaceDomain.ScheduleBlock
}

// GetByID implements the space store interface for testing.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (m *mockSpaceStore) GetByID(ctx context.Context, id string) (spaceDomain.Space, error) {
	if s, ok := m.spaces[id]; ok {
		return s, nil
	}
	return spaceDomain.Space{}, spaceDomain.ErrNotFound
}

// Save implements the space store interface for testing.
// PRE: entity has been validated
// POST: Entity is persisted
func (m *mockSpaceStore) Save(ctx context.Context, s spaceDomain.Space) error {
	m.spaces[s.ID] = s
	return nil
}

// List implements the space store interface for testing.
// POST: Returns spaces, optionally narrowed by school
func (m *mockSpaceStore) List(ctx context.Context, schoolID string) ([]spaceDomain.Space, error) {
	var list []spaceDomain.Space
	for _, s := range m.spaces {
		if schoolID == "" || s.SchoolID == schoolID {
			list = append(list, s)
		}
	}
	return list, nil
}

// GetBlock implements the space store interface for testing.
// PRE: blockID is non-empty
// POST: Returns the block or an error if not found
func (m *mockSpaceStore) GetBlock(ctx context.Context, blockID string) (spaceDomain.ScheduleBlock, error) {
	if b, ok := m.blocks[blockID]; ok {
		return b, nil
	}
	return spaceDomain.ScheduleBlock{}, spaceDomain.ErrNotFound
}

// SaveBlock implements the space store interface for testing.
// PRE: entity has been validated
// POST: Entity is persisted
func (m *mockSpaceStore) SaveBlock(ctx context.Context, b spaceDomain.ScheduleBlock) error {
	m.blocks[b.ID] = b
	return nil
}

// ListBlocks implements the space store interface for testing.
// PRE: spaceID is non-empty
// POST: Returns blocks of the given space
func (m *mockSpaceStore) ListBlocks(ctx context.Context, spaceID string) ([]spaceDomain.ScheduleBlock, error) {
	var list []spaceDomain.ScheduleBlock
	for _, b := range m.blocks {
		if b.SpaceID == spaceID {
			list = append(list, b)
		}
	}
	return list, nil
}

type mockReservationStore struct {
	reservations map[string]booking.Reservation
}

// GetByID implements the reservation store interface for testing.
// PRE: id is non-empty
// POST: Returns the entity or booking.ErrNotFound
func (m *mockReservationStore) GetByID(ctx context.Context, id string) (booking.Reservation, error) {
	if r, ok := m.reservations[id]; ok {
		return r, nil
	}
	return booking.Reservation{}, booking.ErrNotFound
}

// Insert implements the reservation store interface for testing. It mirrors
// the production store's slot uniqueness over active states.
// PRE: entity has been validated
// POST: Entity is persisted, or booking.ErrSlotConflict on a taken slot
func (m *mockReservationStore) Insert(ctx context.Context, r booking.Reservation) error {
	for _, existing := range m.reservations {
		if existing.IsActive() && existing.SpaceID == r.SpaceID &&
			existing.BlockID == r.BlockID && existing.Date.Equal(r.Date) {
			return booking.ErrSlotConflict
		}
	}
	if m.reservations == nil {
		m.reservations = make(map[string]booking.Reservation)
	}
	m.reservations[r.ID] = r
	return nil
}

// Update implements the reservation store interface for testing.
// PRE: entity exists
// POST: Entity is replaced
func (m *mockReservationStore) Update(ctx context.Context, r booking.Reservation) error {
	for id, existing := range m.reservations {
		if id == r.ID {
			continue
		}
		if existing.IsActive() && r.IsActive() && existing.SpaceID == r.SpaceID &&
			existing.BlockID == r.BlockID && existing.Date.Equal(r.Date) {
			return booking.ErrSlotConflict
		}
	}
	m.reservations[r.ID] = r
	return nil
}

// List implements the reservation store interface for testing.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (m *mockReservationStore) List(ctx context.Context, filter reservationStore.Filter) ([]booking.Reservation, error) {
	var list []booking.Reservation
	for _, r := range m.reservations {
		if filter.RequesterID != "" && r.RequesterID != filter.RequesterID {
			continue
		}
		if filter.State != "" && r.State != filter.State {
			continue
		}
		list = append(list, r)
	}
	return list, nil
}

// CountByState implements the reservation store interface for testing.
// POST: Returns per-state counts under the same filter as List
func (m *mockReservationStore) CountByState(ctx context.Context, filter reservationStore.Filter) (map[string]int, error) {
	counts := make(map[string]int)
	list, _ := m.List(ctx, filter)
	for _, r := range list {
		counts[r.State]++
	}
	return counts, nil
}

// ListActiveInRange implements the reservation store interface for testing.
// PRE: from <= to
// POST: Returns active reservations of the space within [from, to]
func (m *mockReservationStore) ListActiveInRange(ctx context.Context, spaceID string, from, to time.Time) ([]booking.Reservation, error) {
	var list []booking.Reservation
	for _, r := range m.reservations {
		if r.SpaceID == spaceID && r.IsActive() && !r.Date.Before(from) && !r.Date.After(to) {
			list = append(list, r)
		}
	}
	return list, nil
}

type mockClaimStore struct {
	claims []scheduleDomain.WeeklyClaim
}

// Save implements the claim store interface for testing.
func (m *mockClaimStore) Save(ctx context.Context, c scheduleDomain.WeeklyClaim) error {
	m.claims = append(m.claims, c)
	return nil
}

// Delete implements the claim store interface for testing.
func (m *mockClaimStore) Delete(ctx context.Context, id string) error { return nil }

// ListBySpace implements the claim store interface for testing.
// PRE: spaceID is non-empty
// POST: Returns weekly claims of the given space
func (m *mockClaimStore) ListBySpace(ctx context.Context, spaceID string) ([]scheduleDomain.WeeklyClaim, error) {
	var list []scheduleDomain.WeeklyClaim
	for _, c := range m.claims {
		if c.SpaceID == spaceID {
			list = append(list, c)
		}
	}
	return list, nil
}

type mockSchoolStore struct {
	schools []schoolStore.School
}

// GetByID implements the school store interface for testing.
func (m *mockSchoolStore) GetByID(ctx context.Context, id string) (schoolStore.School, error) {
	for _, s := range m.schools {
		if s.ID == id {
			return s, nil
		}
	}
	return schoolStore.School{}, spaceDomain.ErrNotFound
}

// Save implements the school store interface for testing.
func (m *mockSchoolStore) Save(ctx context.Context, s schoolStore.School) error {
	m.schools = append(m.schools, s)
	return nil
}

// List implements the school store interface for testing.
func (m *mockSchoolStore) List(ctx context.Context) ([]schoolStore.School, error) {
	return m.schools, nil
}

type mockWindowStore struct {
	windows map[string]incidentDomain.Window
}

// Save implements the window store interface for testing.
func (m *mockWindowStore) Save(ctx context.Context, w incidentDomain.Window) error {
	if m.windows == nil {
		m.windows = make(map[string]incidentDomain.Window)
	}
	m.windows[w.ReservationID] = w
	return nil
}

// GetByReservation implements the window store interface for testing.
// PRE: reservationID is non-empty
// POST: Returns the window or incident.ErrWindowNotFound
func (m *mockWindowStore) GetByReservation(ctx context.Context, reservationID string) (incidentDomain.Window, error) {
	if w, ok := m.windows[reservationID]; ok {
		return w, nil
	}
	return incidentDomain.Window{}, incidentDomain.ErrWindowNotFound
}

type mockReportStore struct {
	reports []incidentDomain.Report
}

// Save implements the report store interface for testing.
func (m *mockReportStore) Save(ctx context.Context, r incidentDomain.Report) error {
	m.reports = append(m.reports, r)
	return nil
}

// ListByReservation implements the report store interface for testing.
func (m *mockReportStore) ListByReservation(ctx context.Context, reservationID string) ([]incidentDomain.Report, error) {
	var list []incidentDomain.Report
	for _, r := range m.reports {
		if r.ReservationID == reservationID {
			list = append(list, r)
		}
	}
	return list, nil
}

type mockAuditStore struct {
	events []auditDomain.Event
}

// Save implements the audit store interface for testing.
func (m *mockAuditStore) Save(ctx context.Context, e auditDomain.Event) error {
	m.events = append(m.events, e)
	return nil
}

// List implements the audit store interface for testing.
func (m *mockAuditStore) List(ctx context.Context, filter auditStore.Filter, limit int) ([]auditDomain.Event, error) {
	return m.events, nil
}

type noopNotifier struct{}

func (noopNotifier) NotifyDecision(ctx context.Context, r booking.Reservation, decision, reason string) error {
	return nil
}

// testFixture holds the mocks behind the handler globals for one test.
type testFixture struct {
	mux          *http.ServeMux
	accounts     *mockAccountStore
	reservations *mockReservationStore
	windows      *mockWindowStore
	audits       *mockAuditStore
}

// setupHandlers wires the handler globals to mocks and a fixed clock. The
// fixture week runs 2026-03-01 (Sunday) through 2026-03-07 (Saturday).
func setupHandlers(t *testing.T) *testFixture {
	t.Helper()

	accounts := &mockAccountStore{accounts: make(map[string]accountDomain.Account)}
	spaces := &mockSpaceStore{
		spaces: map[string]spaceDomain.Space{
			"lab-1": {ID: "lab-1", Code: "LAB-101", Name: "Laboratorio de Redes",
				Type: spaceDomain.TypeLab, Capacity: 30, SchoolID: "school-1", Status: spaceDomain.StatusActive},
		},
		blocks: map[string]spaceDomain.ScheduleBlock{
			"b1": {ID: "b1", SpaceID: "lab-1", Label: "Bloque 1", StartTime: "08:00", EndTime: "09:10"},
			"b2": {ID: "b2", SpaceID: "lab-1", Label: "Bloque 2", StartTime: "09:20", EndTime: "10:30"},
			"b3": {ID: "b3", SpaceID: "lab-1", Label: "Bloque 5", StartTime: "13:00", EndTime: "14:10"},
		},
	}
	reservations := &mockReservationStore{reservations: make(map[string]booking.Reservation)}
	claims := &mockClaimStore{}
	schools := &mockSchoolStore{schools: []schoolStore.School{{ID: "school-1", Name: "Ingeniería"}}}
	windows := &mockWindowStore{}
	reports := &mockReportStore{}
	audits := &mockAuditStore{}

	clock = func() time.Time { return handlerNow }
	stores = &Stores{
		AccountStore:     accounts,
		SchoolStore:      schools,
		SpaceStore:       spaces,
		ClaimStore:       claims,
		ReservationStore: reservations,
		WindowStore:      windows,
		ReportStore:      reports,
		AuditStore:       audits,
	}
	services = &Services{
		Index:    scheduleindex.New(claims, reservations, spaces, scheduleindex.DefaultSnapshotTTL, clock),
		Policy:   incidentpolicy.NewDayPolicy(0),
		Notifier: noopNotifier{},
		Tokens:   token.NewService("test-secret", time.Hour, clock),
	}
	sessions = middleware.NewSessionStore()
	perfCollector = perf.NewCollector(64)

	mux := http.NewServeMux()
	registerRoutes(mux)
	return &testFixture{mux: mux, accounts: accounts, reservations: reservations, windows: windows, audits: audits}
}

func professorSession() middleware.Session {
	return middleware.Session{
		AccountID: "prof-1",
		Email:     "prof@campus.edu",
		Name:      "Ana",
		Scope:     scope.RequesterScope{AccountID: "prof-1", Role: scope.RoleProfessor},
	}
}

func adminSession() middleware.Session {
	return middleware.Session{
		AccountID: "adm-1",
		Email:     "admin@campus.edu",
		Name:      "Marta",
		Scope:     scope.RequesterScope{AccountID: "adm-1", Role: scope.RoleAdministrative},
	}
}

// doJSON serves a JSON request through the mux with an optional session
// injected into the context.
func doJSON(f *testFixture, method, target string, body any, session *middleware.Session) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if session != nil {
		req = req.WithContext(middleware.ContextWithSession(req.Context(), *session))
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func TestLoginEndpoint(t *testing.T) {
	f := setupHandlers(t)

	acct := accountDomain.Account{
		ID: "prof-1", Email: "prof@campus.edu", Name: "Ana",
		Role: scope.RoleProfessor, CreatedAt: handlerNow,
	}
	if err := acct.SetPassword("contrasena-segura-1"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	f.accounts.accounts[acct.ID] = acct

	t.Run("valid credentials create a session", func(t *testing.T) {
		rec := doJSON(f, http.MethodPost, "/api/login", map[string]string{
			"email": "prof@campus.edu", "password": "contrasena-segura-1",
		}, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var found bool
		for _, c := range rec.Result().Cookies() {
			if c.Name == "campusbooking_session" && c.Value != "" {
				found = true
			}
		}
		if !found {
			t.Error("session cookie not set")
		}
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		rec := doJSON(f, http.MethodPost, "/api/login", map[string]string{
			"email": "prof@campus.edu", "password": "contrasena-equivocada",
		}, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("unknown email is indistinguishable", func(t *testing.T) {
		rec := doJSON(f, http.MethodPost, "/api/login", map[string]string{
			"email": "nadie@campus.edu", "password": "contrasena-segura-1",
		}, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestReservationEndpoints(t *testing.T) {
	f := setupHandlers(t)
	prof := professorSession()

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		rec := doJSON(f, http.MethodGet, "/api/reservations", nil, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("create reservation", func(t *testing.T) {
		rec := doJSON(f, http.MethodPost, "/api/reservations", map[string]any{
			"space_id": "lab-1", "block_id": "b2", "course_id": "crs-1",
			"date": "2026-03-04", "expected_attendance": 25,
		}, &prof)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var created booking.Reservation
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if created.State != booking.StatePending || created.RequesterID != "prof-1" {
			t.Errorf("created = %+v", created)
		}
	})

	t.Run("same slot conflicts", func(t *testing.T) {
		rec := doJSON(f, http.MethodPost, "/api/reservations", map[string]any{
			"space_id": "lab-1", "block_id": "b2", "course_id": "crs-2",
			"date": "2026-03-04", "expected_attendance": 10,
		}, &prof)
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("date outside booking window", func(t *testing.T) {
		rec := doJSON(f, http.MethodPost, "/api/reservations", map[string]any{
			"space_id": "lab-1", "block_id": "b3", "course_id": "crs-1",
			"date": "2026-03-09", "expected_attendance": 10,
		}, &prof)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
	})

	t.Run("professor cannot approve", func(t *testing.T) {
		var pending booking.Reservation
		for _, r := range f.reservations.reservations {
			pending = r
		}
		rec := doJSON(f, http.MethodPost, "/api/reservations/"+pending.ID+"/approve",
			map[string]string{"reason": "ok"}, &prof)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("admin approves and window opens", func(t *testing.T) {
		admin := adminSession()
		var pending booking.Reservation
		for _, r := range f.reservations.reservations {
			pending = r
		}
		rec := doJSON(f, http.MethodPost, "/api/reservations/"+pending.ID+"/approve",
			map[string]string{"reason": "horario disponible"}, &admin)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		if _, ok := f.windows.windows[pending.ID]; !ok {
			t.Error("incident window not created on approval")
		}
	})

	t.Run("verification token for approved reservation", func(t *testing.T) {
		var approved booking.Reservation
		for _, r := range f.reservations.reservations {
			approved = r
		}
		rec := doJSON(f, http.MethodGet, "/api/reservations/"+approved.ID+"/token", nil, &prof)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var payload struct {
			Token string `json:"token"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		claims, err := services.Tokens.Verify(payload.Token)
		if err != nil {
			t.Fatalf("issued token does not verify: %v", err)
		}
		if claims.ReservationID != approved.ID {
			t.Errorf("token reservation = %s, want %s", claims.ReservationID, approved.ID)
		}
	})

	t.Run("unknown reservation is not found", func(t *testing.T) {
		rec := doJSON(f, http.MethodGet, "/api/reservations/no-such/token", nil, &prof)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestAvailabilityEndpoint(t *testing.T) {
	f := setupHandlers(t)
	prof := professorSession()

	t.Run("lists slots for a space", func(t *testing.T) {
		rec := doJSON(f, http.MethodGet, "/api/availability?space_id=lab-1&date=2026-03-04", nil, &prof)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var result struct {
			Slots []struct {
				BlockID   string
				Available bool
			}
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(result.Slots) != 3 {
			t.Errorf("slots = %d, want 3", len(result.Slots))
		}
	})

	t.Run("malformed date", func(t *testing.T) {
		rec := doJSON(f, http.MethodGet, "/api/availability?space_id=lab-1&date=04-03-2026", nil, &prof)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown space", func(t *testing.T) {
		rec := doJSON(f, http.MethodGet, "/api/availability?space_id=no-such&date=2026-03-04", nil, &prof)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestAdminEndpointsRequireRole(t *testing.T) {
	f := setupHandlers(t)
	prof := professorSession()
	admin := adminSession()

	t.Run("professor is forbidden", func(t *testing.T) {
		rec := doJSON(f, http.MethodGet, "/api/admin/audit", nil, &prof)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("admin reads the audit trail", func(t *testing.T) {
		f.audits.events = append(f.audits.events,
			auditDomain.NewEvent("adm-1", scope.RoleAdministrative, auditDomain.CategoryAccount, auditDomain.ActionCreate))
		rec := doJSON(f, http.MethodGet, "/api/admin/audit", nil, &admin)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})
}
