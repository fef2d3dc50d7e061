package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projecthub-dev/projecthub/internal/config"
	"github.com/projecthub-dev/projecthub/internal/logger"
)

var Conn *pgxpool.Pool

// Init connects to Postgres and makes sure the schema exists.
func Init(cfg config.DatabaseConfig) *pgxpool.Pool {
	var err error
	Conn, err = pgxpool.New(context.Background(), cfg.DSN())
	if err != nil {
		logger.Fatal("unable to connect to database: %v", err)
	}
	if err = Conn.Ping(context.Background()); err != nil {
		logger.Fatal("unable to ping database: %v", err)
	}
	logger.Info("connected to Postgres")

	ensureSchema()
	return Conn
}

// ensureSchema creates the tables and indexes the stores rely on. Statements
// are idempotent so startup is safe against an existing database.
func ensureSchema() {
	ctx := context.Background()
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			avatar TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'buyer' CHECK (role IN ('buyer','seller','admin')),
			rating NUMERIC(2,1) NOT NULL DEFAULT 0,
			rating_count INTEGER NOT NULL DEFAULT 0,
			completed_projects INTEGER NOT NULL DEFAULT 0,
			linkedin_url TEXT NOT NULL DEFAULT '',
			skills TEXT[] NOT NULL DEFAULT '{}',
			experience_level TEXT NOT NULL DEFAULT '',
			years_of_experience INTEGER NOT NULL DEFAULT 0,
			bio TEXT NOT NULL DEFAULT '',
			portfolio_url TEXT NOT NULL DEFAULT '',
			availability TEXT NOT NULL DEFAULT '',
			is_email_verified BOOLEAN NOT NULL DEFAULT FALSE,
			email_verify_token TEXT NOT NULL DEFAULT '',
			password_reset_token TEXT NOT NULL DEFAULT '',
			password_reset_expires TIMESTAMPTZ NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id UUID PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			category TEXT NOT NULL,
			subcategory TEXT NOT NULL DEFAULT '',
			skills TEXT[] NOT NULL DEFAULT '{}',
			budget_min NUMERIC NOT NULL,
			budget_max NUMERIC NOT NULL,
			delivery_days INTEGER NOT NULL DEFAULT 0,
			deadline TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending'
				CHECK (status IN ('pending','open','in-progress','completed','cancelled')),
			seller_id UUID NOT NULL REFERENCES users(id),
			bids_count INTEGER NOT NULL DEFAULT 0,
			project_type TEXT NOT NULL DEFAULT 'Fixed Price',
			poster_skills TEXT[] NOT NULL DEFAULT '{}',
			company_name TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			remote_friendly BOOLEAN NOT NULL DEFAULT TRUE,
			urgency_level TEXT NOT NULL DEFAULT 'Normal',
			attachments TEXT[] NOT NULL DEFAULT '{}',
			work_submitted BOOLEAN NOT NULL DEFAULT FALSE,
			admin_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			owner_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_projects_status_created ON projects(status, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS bids (
			id UUID PRIMARY KEY,
			project_id UUID NOT NULL REFERENCES projects(id),
			bidder_id UUID NOT NULL REFERENCES users(id),
			amount NUMERIC NOT NULL,
			delivery_days INTEGER NOT NULL,
			cover_letter TEXT NOT NULL,
			skills TEXT[] NOT NULL DEFAULT '{}',
			experience_level TEXT NOT NULL DEFAULT '',
			years_of_experience INTEGER NOT NULL DEFAULT 0,
			bio TEXT NOT NULL DEFAULT '',
			portfolio_url TEXT NOT NULL DEFAULT '',
			linkedin_url TEXT NOT NULL DEFAULT '',
			availability TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','accepted','rejected')),
			admin_status TEXT NOT NULL DEFAULT 'pending_admin'
				CHECK (admin_status IN ('pending_admin','approved','rejected_admin')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bids_project_bidder ON bids(project_id, bidder_id)`,
		`CREATE TABLE IF NOT EXISTS purchases (
			id UUID PRIMARY KEY,
			project_id UUID NOT NULL REFERENCES projects(id),
			buyer_id UUID NOT NULL REFERENCES users(id),
			freelancer_id UUID NOT NULL REFERENCES users(id),
			amount NUMERIC NOT NULL,
			payment_status TEXT NOT NULL DEFAULT 'pending'
				CHECK (payment_status IN ('pending','paid','released')),
			gateway_order_id TEXT NOT NULL DEFAULT '',
			gateway_payment_id TEXT NOT NULL DEFAULT '',
			gateway_signature TEXT NOT NULL DEFAULT '',
			paid_at TIMESTAMPTZ NULL,
			released_at TIMESTAMPTZ NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_purchases_project_buyer ON purchases(project_id, buyer_id)`,
		`CREATE TABLE IF NOT EXISTS ratings (
			id UUID PRIMARY KEY,
			project_id UUID NOT NULL REFERENCES projects(id),
			rater_id UUID NOT NULL REFERENCES users(id),
			ratee_id UUID NOT NULL REFERENCES users(id),
			stars INTEGER NOT NULL CHECK (stars BETWEEN 1 AND 5),
			comment TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_ratings_project_rater ON ratings(project_id, rater_id)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			type TEXT NOT NULL,
			message TEXT NOT NULL,
			bid_id UUID NULL,
			project_id UUID NOT NULL,
			actor_id UUID NOT NULL,
			project_title TEXT NOT NULL,
			actor_name TEXT NOT NULL,
			recipient_id UUID NULL,
			read BOOLEAN NOT NULL DEFAULT FALSE,
			dispatched BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_recipient_created ON notifications(recipient_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_undispatched ON notifications(dispatched) WHERE NOT dispatched`,
		`CREATE TABLE IF NOT EXISTS saved_alerts (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			skills TEXT[] NOT NULL DEFAULT '{}',
			budget_min NUMERIC NULL,
			budget_max NUMERIC NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_saved_alerts_user_created ON saved_alerts(user_id, created_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := Conn.Exec(ctx, stmt); err != nil {
			logger.Fatal("schema ensure failed: %v", err)
		}
	}
}
