package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"campusbooking/internal/adapters/http/middleware"
	auditStore "campusbooking/internal/adapters/storage/audit"
	"campusbooking/internal/application/listutil"
	"campusbooking/internal/application/orchestrators"
	"campusbooking/internal/application/projections"
	"campusbooking/internal/application/scheduleindex"
	"campusbooking/internal/domain/account"
	"campusbooking/internal/domain/audit"
	"campusbooking/internal/domain/booking"
	"campusbooking/internal/domain/incident"
	"campusbooking/internal/domain/scope"
	"campusbooking/internal/domain/space"
	"campusbooking/internal/domain/timeslot"
)

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/login", handleLogin)
	mux.HandleFunc("POST /api/logout", handleLogout)

	mux.Handle("GET /api/spaces", middleware.RequireAuth(http.HandlerFunc(handleListSpaces)))
	mux.Handle("GET /api/availability", middleware.RequireAuth(http.HandlerFunc(handleListAvailability)))

	mux.Handle("GET /api/reservations", middleware.RequireAuth(http.HandlerFunc(handleListReservations)))
	mux.Handle("POST /api/reservations", middleware.RequireAuth(http.HandlerFunc(handleCreateReservation)))
	mux.Handle("PUT /api/reservations/{id}", middleware.RequireAuth(http.HandlerFunc(handleEditReservation)))
	mux.Handle("POST /api/reservations/{id}/approve", middleware.RequireAuth(http.HandlerFunc(handleApproveReservation)))
	mux.Handle("POST /api/reservations/{id}/reject", middleware.RequireAuth(http.HandlerFunc(handleRejectReservation)))
	mux.Handle("POST /api/reservations/{id}/cancel", middleware.RequireAuth(http.HandlerFunc(handleCancelReservation)))
	mux.Handle("GET /api/reservations/{id}/token", middleware.RequireAuth(http.HandlerFunc(handleReservationToken)))

	mux.Handle("GET /api/reservations/{id}/incidents", middleware.RequireAuth(http.HandlerFunc(handleListIncidents)))
	mux.Handle("POST /api/reservations/{id}/incidents", middleware.RequireAuth(http.HandlerFunc(handleReportIncident)))

	mux.Handle("POST /api/accounts",
		middleware.RequireRole(scope.RoleAdministrative)(http.HandlerFunc(handleCreateAccount)))
	mux.Handle("GET /api/admin/audit",
		middleware.RequireRole(scope.RoleAdministrative)(http.HandlerFunc(handleListAudit)))
	mux.Handle("GET /api/admin/perf",
		middleware.RequireRole(scope.RoleAdministrative)(http.HandlerFunc(handlePerfSnapshot)))
}

// writeJSON renders v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Forbidden responses carry
// nothing beyond "not permitted".
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, booking.ErrInvalidInput),
		errors.Is(err, account.ErrPasswordTooShort),
		errors.Is(err, incident.ErrEmptyDescription):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, booking.ErrInvalidDateRange):
		status, message = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, booking.ErrSlotConflict):
		status, message = http.StatusConflict, "slot already claimed, refresh availability"
	case errors.Is(err, booking.ErrInvalidState):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, incident.ErrWindowClosed):
		status, message = http.StatusConflict, "incident window is not open"
	case errors.Is(err, scope.ErrForbidden), errors.Is(err, scope.ErrMissingAssignment):
		status, message = http.StatusForbidden, "not permitted"
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, space.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, scheduleindex.ErrUpstreamUnavailable):
		status, message = http.StatusServiceUnavailable, "schedule source unavailable, retry shortly"
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, orchestrators.ErrAccountLocked):
		status, message = http.StatusLocked, err.Error()
	default:
		slog.Error("unhandled_error", "error", err)
	}

	writeJSON(w, status, map[string]string{"error": message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return false
	}
	return true
}

func sessionScope(r *http.Request) (middleware.Session, scope.RequesterScope) {
	session, _ := middleware.GetSessionFromContext(r.Context())
	return session, session.Scope
}

// --- Auth ---

func handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    body.Email,
		Password: body.Password,
	}, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		AuditStore:   stores.AuditStore,
		Now:          clock,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := sessions.Create(middleware.Session{
		AccountID: result.AccountID,
		Email:     result.Email,
		Name:      result.Name,
		Scope:     result.Scope,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)

	writeJSON(w, http.StatusOK, map[string]any{
		"account_id":         result.AccountID,
		"name":               result.Name,
		"role":               result.Scope.Role,
		"assigned_school_id": result.Scope.AssignedSchoolID,
	})
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// --- Catalog and availability ---

func handleListSpaces(w http.ResponseWriter, r *http.Request) {
	_, requester := sessionScope(r)
	result, err := projections.QueryGetSpaces(r.Context(), projections.GetSpacesQuery{
		Scope:    requester,
		SchoolID: r.URL.Query().Get("school_id"),
	}, projections.GetSpacesDeps{
		SpaceStore:  stores.SpaceStore,
		SchoolStore: stores.SchoolStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func handleListAvailability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	result, err := projections.QueryGetAvailability(r.Context(), projections.GetAvailabilityQuery{
		SpaceID: query.Get("space_id"),
		Date:    query.Get("date"),
		Period:  query.Get("period"),
	}, projections.GetAvailabilityDeps{
		SpaceStore: stores.SpaceStore,
		Index:      services.Index,
		Now:        clock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- Reservations ---

func handleListReservations(w http.ResponseWriter, r *http.Request) {
	_, requester := sessionScope(r)
	query := r.URL.Query()
	result, err := projections.QueryGetReservations(r.Context(), projections.GetReservationsQuery{
		Scope:    requester,
		SchoolID: query.Get("school_id"),
		SpaceID:  query.Get("space_id"),
		State:    query.Get("state"),
		DateFrom: query.Get("date_from"),
		DateTo:   query.Get("date_to"),
	}, projections.GetReservationsDeps{
		ReservationStore: stores.ReservationStore,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	page := listutil.ParsePageParams(query)
	info := listutil.NewPageInfo(page.Page, page.PerPage, len(result.Items))
	writeJSON(w, http.StatusOK, map[string]any{
		"items":          listutil.Paginate(result.Items, info),
		"summary_counts": result.SummaryCounts,
		"diagnostic":     result.Diagnostic,
		"page_info":      info,
	})
}

type reservationBody struct {
	SpaceID            string `json:"space_id"`
	BlockID            string `json:"block_id"`
	CourseID           string `json:"course_id"`
	Date               string `json:"date"`
	Description        string `json:"description"`
	ExpectedAttendance int    `json:"expected_attendance"`
}

func handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	_, requester := sessionScope(r)
	var body reservationBody
	if !decodeBody(w, r, &body) {
		return
	}

	reservation, err := orchestrators.ExecuteCreateReservation(r.Context(), orchestrators.CreateReservationInput{
		Scope:              requester,
		SpaceID:            body.SpaceID,
		BlockID:            body.BlockID,
		CourseID:           body.CourseID,
		Date:               body.Date,
		Description:        body.Description,
		ExpectedAttendance: body.ExpectedAttendance,
	}, orchestrators.CreateReservationDeps{
		ReservationStore: stores.ReservationStore,
		SpaceStore:       stores.SpaceStore,
		AuditStore:       stores.AuditStore,
		Index:            services.Index,
		GenerateID:       uuid.NewString,
		Now:              clock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservation)
}

func handleEditReservation(w http.ResponseWriter, r *http.Request) {
	_, requester := sessionScope(r)
	var body reservationBody
	if !decodeBody(w, r, &body) {
		return
	}

	reservation, err := orchestrators.ExecuteEditReservation(r.Context(), orchestrators.EditReservationInput{
		Scope:              requester,
		ReservationID:      r.PathValue("id"),
		SpaceID:            body.SpaceID,
		BlockID:            body.BlockID,
		CourseID:           body.CourseID,
		Date:               body.Date,
		Description:        body.Description,
		ExpectedAttendance: body.ExpectedAttendance,
	}, orchestrators.EditReservationDeps{
		ReservationStore: stores.ReservationStore,
		SpaceStore:       stores.SpaceStore,
		AuditStore:       stores.AuditStore,
		Index:            services.Index,
		Now:              clock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func decideDeps() orchestrators.DecideReservationDeps {
	return orchestrators.DecideReservationDeps{
		ReservationStore: stores.ReservationStore,
		SpaceStore:       stores.SpaceStore,
		WindowStore:      stores.WindowStore,
		WindowPolicy:     services.Policy,
		AuditStore:       stores.AuditStore,
		Notifier:         services.Notifier,
		Index:            services.Index,
		Now:              clock,
	}
}

func handleApproveReservation(w http.ResponseWriter, r *http.Request) {
	handleDecision(w, r, orchestrators.ExecuteApproveReservation)
}

func handleRejectReservation(w http.ResponseWriter, r *http.Request) {
	handleDecision(w, r, orchestrators.ExecuteRejectReservation)
}

type decisionFunc func(ctx context.Context, input orchestrators.DecideReservationInput, deps orchestrators.DecideReservationDeps) (booking.Reservation, error)

func handleDecision(w http.ResponseWriter, r *http.Request, decide decisionFunc) {
	_, requester := sessionScope(r)
	var body struct {
		Reason string `json:"reason"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	reservation, err := decide(r.Context(), orchestrators.DecideReservationInput{
		Scope:         requester,
		ReservationID: r.PathValue("id"),
		Reason:        body.Reason,
	}, decideDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	_, requester := sessionScope(r)
	reservation, err := orchestrators.ExecuteCancelReservation(r.Context(), orchestrators.CancelReservationInput{
		Scope:         requester,
		ReservationID: r.PathValue("id"),
	}, decideDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func handleReservationToken(w http.ResponseWriter, r *http.Request) {
	_, requester := sessionScope(r)
	reservation, err := stores.ReservationStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if reservation.RequesterID != requester.AccountID && !requester.CanApprove() {
		writeError(w, scope.ErrForbidden)
		return
	}
	if !reservation.IsApproved() {
		writeError(w, booking.ErrInvalidState)
		return
	}

	signed, err := services.Tokens.Issue(reservation.ID, reservation.SpaceID, timeslot.FormatDate(reservation.Date))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": signed})
}

// --- Incidents ---

func handleListIncidents(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetIncidents(r.Context(), projections.GetIncidentsQuery{
		ReservationID: r.PathValue("id"),
	}, projections.GetIncidentsDeps{
		WindowStore: stores.WindowStore,
		ReportStore: stores.ReportStore,
		Now:         clock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func handleReportIncident(w http.ResponseWriter, r *http.Request) {
	_, requester := sessionScope(r)
	var body struct {
		Description string `json:"description"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	report, err := orchestrators.ExecuteReportIncident(r.Context(), orchestrators.ReportIncidentInput{
		ReservationID: r.PathValue("id"),
		ReporterID:    requester.AccountID,
		ReporterRole:  requester.Role,
		Description:   body.Description,
	}, orchestrators.ReportIncidentDeps{
		WindowStore: stores.WindowStore,
		ReportStore: stores.ReportStore,
		AuditStore:  stores.AuditStore,
		GenerateID:  uuid.NewString,
		Now:         clock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// --- Administration ---

func handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	_, requester := sessionScope(r)
	var body struct {
		Email            string `json:"email"`
		Name             string `json:"name"`
		Password         string `json:"password"`
		Role             string `json:"role"`
		AssignedSchoolID string `json:"assigned_school_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := orchestrators.ExecuteCreateAccount(r.Context(), orchestrators.CreateAccountInput{
		Scope:            requester,
		Email:            body.Email,
		Name:             body.Name,
		Password:         body.Password,
		Role:             body.Role,
		AssignedSchoolID: body.AssignedSchoolID,
	}, orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		AuditStore:   stores.AuditStore,
		GenerateID:   uuid.NewString,
		Now:          clock,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	created.PasswordHash = ""
	writeJSON(w, http.StatusCreated, created)
}

// auditFilterFromQuery builds an audit filter from the request query string.
// Absent parameters stay nil so the store applies no predicate for them.
func auditFilterFromQuery(r *http.Request) auditStore.Filter {
	query := r.URL.Query()
	var filter auditStore.Filter
	if v := query.Get("category"); v != "" {
		c := audit.Category(v)
		filter.Category = &c
	}
	if v := query.Get("action"); v != "" {
		a := audit.Action(v)
		filter.Action = &a
	}
	if v := query.Get("actor_id"); v != "" {
		filter.ActorID = &v
	}
	if v := query.Get("resource_id"); v != "" {
		filter.ResourceID = &v
	}
	if v := query.Get("date_from"); v != "" {
		filter.FromDate = &v
	}
	if v := query.Get("date_to"); v != "" {
		filter.ToDate = &v
	}
	return filter
}

func handleListAudit(w http.ResponseWriter, r *http.Request) {
	page := listutil.ParsePageParams(r.URL.Query())
	events, err := stores.AuditStore.List(r.Context(), auditFilterFromQuery(r), page.PerPage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func handlePerfSnapshot(w http.ResponseWriter, r *http.Request) {
	since := clock().Add(-15 * time.Minute)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, 10))
}
