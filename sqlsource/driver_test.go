// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlsource

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/mattn/go-sqlite3"
)

// This file contains a wrapper sql.Driver over the SQLite driver which
// records the prepared statements it opens and closes, and the queries run
// through them. The cache tests use it to check for statement leaks.

// openedStmts and closedStmts store the pointers to the created and closed
// statements indexed by test name. Pointers are stored as integers so that
// the records do not keep the statements alive.
var openedStmts = map[string]map[uintptr]string{}
var closedStmts = map[string]map[uintptr]bool{}
var stmtRegistryMutex sync.RWMutex

// stmtQueriesRun counts the queries run through prepared statements,
// indexed by test name.
var stmtQueriesRun = map[string]int{}
var queriesRunMutex sync.RWMutex

type trackingDriver struct {
	driver.Driver
}

type trackingConn struct {
	testName string
	*sqlite3.SQLiteConn
}

type trackingStmt struct {
	testName string
	*sqlite3.SQLiteStmt
}

func (s *trackingStmt) Close() error {
	stmtRegistryMutex.Lock()
	defer stmtRegistryMutex.Unlock()
	if _, ok := closedStmts[s.testName]; !ok {
		closedStmts[s.testName] = map[uintptr]bool{}
	}
	closedStmts[s.testName][uintptr(unsafe.Pointer(s))] = true
	return s.SQLiteStmt.Close()
}

func (s *trackingStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	rows, err := s.SQLiteStmt.QueryContext(ctx, args)
	if err == nil {
		queriesRunMutex.Lock()
		stmtQueriesRun[s.testName]++
		queriesRunMutex.Unlock()
	}
	return rows, err
}

func (c *trackingConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	s, err := c.SQLiteConn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	sm, ok := s.(*sqlite3.SQLiteStmt)
	if !ok {
		panic(fmt.Sprintf("internal error: base driver is not SQLite, got %T", s))
	}
	ts := &trackingStmt{SQLiteStmt: sm, testName: c.testName}

	stmtRegistryMutex.Lock()
	defer stmtRegistryMutex.Unlock()
	if _, ok := openedStmts[c.testName]; !ok {
		openedStmts[c.testName] = map[uintptr]string{}
	}
	openedStmts[c.testName][uintptr(unsafe.Pointer(ts))] = query
	return ts, nil
}

func (c *trackingConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

const testNameTag = "testName"

// Open expects the DSN to carry the test name in the testName parameter.
func (d *trackingDriver) Open(name string) (driver.Conn, error) {
	var testName string
	if _, params, ok := strings.Cut(name, "?"); ok {
		for _, p := range strings.Split(params, "&") {
			if k, v, _ := strings.Cut(p, "="); k == testNameTag {
				testName = v
			}
		}
	}
	if testName == "" {
		panic("internal error: testName is not found in the db DSN")
	}

	conn, err := d.Driver.Open(name)
	if err != nil {
		return nil, err
	}
	base, ok := conn.(*sqlite3.SQLiteConn)
	if !ok {
		panic("internal error: base driver is not SQLite")
	}
	return &trackingConn{SQLiteConn: base, testName: testName}, nil
}

func init() {
	sql.Register("sqlite3_stmtChecked", &trackingDriver{&sqlite3.SQLiteDriver{}})
}
