// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package example

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Table is the name of the goblin table created by CreateTable.
const Table = "goblins"

var columns = []string{
	"id", "name", "favourite_letter", "intelligence_level", "age",
	"power_level", "stamina", "experience_points", "magic_power", "mana",
	"strength", "agility", "salary", "is_active", "taste",
	"date_of_birth", "date_of_conception", "hobbit_ancestry",
	"contract_signing_date", "contract_details_signing_time",
	"contract_details_duration", "contract_details_days_of_effect",
}

const createTable = `
CREATE TABLE IF NOT EXISTS goblins (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	favourite_letter TEXT NOT NULL,
	intelligence_level INTEGER NOT NULL,
	age INTEGER NOT NULL,
	power_level INTEGER NOT NULL,
	stamina INTEGER NOT NULL,
	experience_points INTEGER NOT NULL,
	magic_power INTEGER NOT NULL,
	mana INTEGER NOT NULL,
	strength REAL NOT NULL,
	agility REAL NOT NULL,
	salary REAL NOT NULL,
	is_active BOOLEAN NOT NULL,
	taste INTEGER NOT NULL,
	date_of_birth DATETIME NOT NULL,
	date_of_conception DATETIME NOT NULL,
	hobbit_ancestry BOOLEAN,
	contract_signing_date TEXT,
	contract_details_signing_time TEXT,
	contract_details_duration INTEGER,
	contract_details_days_of_effect INTEGER
)`

// CreateTable creates the goblin table in a SQLite database.
func CreateTable(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("cannot create table %q: %w", Table, err)
	}
	return nil
}

// Seed inserts goblins into the table created by CreateTable, using the
// storage conventions of the SQLite dialect.
func Seed(ctx context.Context, db *sql.DB, goblins []Goblin) error {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", Table, strings.Join(columns, ", "), marks)
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, g := range goblins {
		if _, err := tx.ExecContext(ctx, stmt, row(g)...); err != nil {
			return fmt.Errorf("cannot insert goblin %d: %w", g.ID, err)
		}
	}
	return tx.Commit()
}

func row(g Goblin) []any {
	salary, _ := g.Salary.Float64()
	var hobbit any
	if g.HobbitAncestry != nil {
		hobbit = *g.HobbitAncestry
	}
	var signingDate, signingTime, duration, days any
	if c := g.Contract; c != nil {
		signingDate = c.SigningDate.Format(time.DateOnly)
		signingTime = c.Details.SigningTime.Format("15:04:05.999999999")
		if c.Details.Duration != nil {
			duration = int64(*c.Details.Duration)
		}
		if c.Details.DaysOfEffect != nil {
			days = *c.Details.DaysOfEffect
		}
	}
	return []any{
		g.ID, g.Name, string(g.FavouriteLetter), g.IntelligenceLevel, g.Age,
		g.PowerLevel, g.Stamina, g.ExperiencePoints, g.MagicPower, g.Mana,
		float64(g.Strength), g.Agility, salary, g.IsActive, int64(g.Taste),
		g.DateOfBirth, g.DateOfConception, hobbit,
		signingDate, signingTime, duration, days,
	}
}
