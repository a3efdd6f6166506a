/*
Copyright 2025 Leadrail Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"database/sql"
	"log"
	"sync"

	_ "github.com/lib/pq"

	"github.com/leadrail/leadrail/config"
	"github.com/leadrail/leadrail/internal/cache"
)

// Declare a package-level variable to hold the singleton instance.
// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

type Datasource struct {
	Conn  *sql.DB
	Cache cache.Cache
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
		instance = &Datasource{Conn: con, Cache: nil}
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
	err = createLeadTable(db)
	if err != nil {
		return nil, err
	}
	err = createOutreachQueueTable(db)
	if err != nil {
		return nil, err
	}
	err = createIntegrationTable(db)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// createLeadTable creates a PostgreSQL table for the Lead struct
func createLeadTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS leads (
			id SERIAL PRIMARY KEY,
			lead_id TEXT NOT NULL UNIQUE,
			tenant_id TEXT NOT NULL,
			first_name TEXT,
			last_name TEXT,
			email TEXT,
			phone TEXT,
			street TEXT,
			city TEXT,
			state TEXT,
			postal_code TEXT,
			ghl_contact_id TEXT,
			sync_status TEXT NOT NULL DEFAULT 'NOT_SYNCED',
			sync_error TEXT,
			repair_attempts INT NOT NULL DEFAULT 0,
			lead_source_id TEXT,
			listing_status TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating leads table: %v", err)
	}
	return err
}

// createOutreachQueueTable creates a PostgreSQL table for the OutreachEntry struct.
// The unique (contact_id, channel) index backs the idempotent enqueue upsert.
func createOutreachQueueTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS outreach_queue (
			id SERIAL PRIMARY KEY,
			entry_id TEXT NOT NULL UNIQUE,
			contact_id TEXT NOT NULL,
			lead_id TEXT,
			tenant_id TEXT NOT NULL,
			channel TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'PENDING',
			next_eligible_send TIMESTAMP NOT NULL DEFAULT NOW(),
			attempts INT NOT NULL DEFAULT 0,
			last_sent_at TIMESTAMP,
			contact_name TEXT,
			address TEXT,
			phone TEXT,
			email TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE (contact_id, channel)
		)
	`)
	if err != nil {
		log.Printf("Error creating outreach_queue table: %v", err)
	}
	return err
}

// createIntegrationTable creates a PostgreSQL table for the Integration struct
func createIntegrationTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ghl_integrations (
			id SERIAL PRIMARY KEY,
			tenant_id TEXT NOT NULL UNIQUE,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			location_id TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		log.Printf("Error creating ghl_integrations table: %v", err)
	}
	return err
}
