package database

import (
	"database/sql"
	"log"
	"sync"

	"github.com/FredvanRijswijk/novatrek-engine/config"

	_ "github.com/lib/pq"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		con, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		log.Printf("database Connection error ❌: %v", err)
		return nil, err
	}
	err = Migrate(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the engine's schema and tables if they do not exist.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE SCHEMA IF NOT EXISTS novatrek`); err != nil {
		return err
	}
	for _, create := range []func(*sql.DB) error{
		createWaitlistTables,
		createSellerApplicationTable,
		createSellerProfileTable,
		createProductTable,
		createTransactionTable,
	} {
		if err := create(db); err != nil {
			return err
		}
	}
	return nil
}

// createWaitlistTables creates the waitlist entry table and the single-row
// position counter the sequencer increments atomically.
func createWaitlistTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS novatrek.waitlist_entries (
			id SERIAL PRIMARY KEY,
			waitlist_id TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL,
			name TEXT,
			position BIGINT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			approved_at TIMESTAMP,
			invited_at TIMESTAMP,
			meta_data JSONB
		)
	`)
	if err != nil {
		log.Printf("Error creating waitlist_entries table: %v", err)
		return err
	}
	_, err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS waitlist_entries_email_idx ON novatrek.waitlist_entries (LOWER(email))`)
	if err != nil {
		log.Printf("Error creating waitlist email index: %v", err)
		return err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS novatrek.waitlist_counters (
			id INT PRIMARY KEY,
			current_position BIGINT NOT NULL
		)
	`)
	if err != nil {
		log.Printf("Error creating waitlist_counters table: %v", err)
		return err
	}
	_, err = db.Exec(`INSERT INTO novatrek.waitlist_counters (id, current_position) VALUES (1, 0) ON CONFLICT (id) DO NOTHING`)
	if err != nil {
		log.Printf("Error seeding waitlist counter: %v", err)
	}
	return err
}

// createSellerApplicationTable creates a PostgreSQL table for the SellerApplication struct
func createSellerApplicationTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS novatrek.seller_applications (
			id SERIAL PRIMARY KEY,
			application_id TEXT NOT NULL UNIQUE,
			applicant_user_id TEXT NOT NULL,
			email TEXT NOT NULL,
			business_name TEXT NOT NULL,
			specializations TEXT[],
			status TEXT NOT NULL,
			review_notes TEXT,
			reviewed_by TEXT,
			reviewed_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating seller_applications table: %v", err)
	}
	return err
}

// createSellerProfileTable creates a PostgreSQL table for the SellerProfile struct
func createSellerProfileTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS novatrek.seller_profiles (
			id SERIAL PRIMARY KEY,
			profile_id TEXT NOT NULL UNIQUE,
			slug TEXT NOT NULL UNIQUE,
			payout_account_id TEXT,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating seller_profiles table: %v", err)
	}
	return err
}

// createProductTable creates a PostgreSQL table for the Product struct
func createProductTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS novatrek.products (
			id SERIAL PRIMARY KEY,
			product_id TEXT NOT NULL UNIQUE,
			seller_id TEXT NOT NULL REFERENCES novatrek.seller_profiles(profile_id),
			name TEXT NOT NULL,
			price BIGINT NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating products table: %v", err)
	}
	return err
}

// createTransactionTable creates a PostgreSQL table for the Transaction struct
func createTransactionTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS novatrek.transactions (
			id SERIAL PRIMARY KEY,
			transaction_id TEXT NOT NULL UNIQUE,
			authorization_id TEXT NOT NULL UNIQUE,
			buyer_id TEXT NOT NULL,
			seller_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			amount BIGINT NOT NULL,
			platform_fee BIGINT NOT NULL,
			seller_earnings BIGINT NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			meta_data JSONB
		)
	`)
	if err != nil {
		log.Printf("Error creating transactions table: %v", err)
	}
	return err
}
