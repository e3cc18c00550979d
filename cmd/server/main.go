package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "modernc.org/sqlite"

	emailPkg "campusbooking/internal/adapters/email"
	web "campusbooking/internal/adapters/http"
	"campusbooking/internal/adapters/http/perf"
	"campusbooking/internal/adapters/incidentpolicy"
	"campusbooking/internal/adapters/storage"
	accountStore "campusbooking/internal/adapters/storage/account"
	auditStore "campusbooking/internal/adapters/storage/audit"
	incidentStore "campusbooking/internal/adapters/storage/incident"
	reservationStore "campusbooking/internal/adapters/storage/reservation"
	scheduleStore "campusbooking/internal/adapters/storage/schedule"
	schoolStore "campusbooking/internal/adapters/storage/school"
	spaceStore "campusbooking/internal/adapters/storage/space"
	"campusbooking/internal/adapters/token"
	"campusbooking/internal/application/orchestrators"
	"campusbooking/internal/application/scheduleindex"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	level := slog.LevelInfo
	if os.Getenv("CAMPUSBOOKING_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	// WAL mode, foreign keys and a busy timeout keep the single-file DB usable
	// under concurrent handlers.
	dbPath := envOrDefault("CAMPUSBOOKING_DB", "campusbooking.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	accounts := accountStore.NewSQLiteStore(timedDB)
	schools := schoolStore.NewSQLiteStore(timedDB)
	spaces := spaceStore.NewSQLiteStore(timedDB)
	claims := scheduleStore.NewSQLiteStore(timedDB)
	reservations := reservationStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:     accounts,
		SchoolStore:      schools,
		SpaceStore:       spaces,
		ClaimStore:       claims,
		ReservationStore: reservations,
		WindowStore:      incidentStore.NewWindowSQLiteStore(timedDB),
		ReportStore:      incidentStore.NewReportSQLiteStore(timedDB),
		AuditStore:       auditStore.NewSQLiteStore(timedDB),
	}

	// Seed catalog and bootstrap admin account on an empty database
	seedDeps := orchestrators.SeedCatalogDeps{
		SchoolStore:   schools,
		SpaceStore:    spaces,
		ClaimStore:    claims,
		AccountStore:  accounts,
		AdminEmail:    envOrDefault("CAMPUSBOOKING_ADMIN_EMAIL", "admin@campus.edu"),
		AdminPassword: envOrDefault("CAMPUSBOOKING_ADMIN_PASSWORD", "cambiar-esta-clave"),
		Now:           time.Now,
	}
	if err := orchestrators.ExecuteSeedCatalog(context.Background(), seedDeps); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}

	// Configure email sender for decision notifications
	var sender emailPkg.Sender
	emailFrom := envOrDefault("CAMPUSBOOKING_RESEND_FROM", "Reservas Campus <noreply@campus.edu>")
	if resendKey := os.Getenv("CAMPUSBOOKING_RESEND_KEY"); resendKey != "" {
		sender = emailPkg.NewResendSender(resendKey, emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if os.Getenv("CAMPUSBOOKING_ENV") == "production" {
			log.Println("WARNING: CAMPUSBOOKING_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set CAMPUSBOOKING_RESEND_KEY for real delivery)")
		}
	}

	tokenSecret := os.Getenv("CAMPUSBOOKING_TOKEN_SECRET")
	if tokenSecret == "" {
		if os.Getenv("CAMPUSBOOKING_ENV") == "production" {
			log.Fatal("CAMPUSBOOKING_TOKEN_SECRET is required in production")
		}
		tokenSecret = "dev-token-secret"
	}

	services := &web.Services{
		Index:    scheduleindex.New(claims, reservations, spaces, scheduleindex.DefaultSnapshotTTL, time.Now),
		Policy:   incidentpolicy.NewDayPolicy(0),
		Notifier: emailPkg.NewDecisionMailer(sender, accounts, emailFrom),
		Tokens:   token.NewService(tokenSecret, 24*time.Hour, time.Now),
	}

	mux := web.NewMux("static", stores, services, collector)

	addr := envOrDefault("CAMPUSBOOKING_ADDR", ":8080")
	log.Printf("Campus booking %s starting on %s (env=%s)", version, addr, envOrDefault("CAMPUSBOOKING_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
