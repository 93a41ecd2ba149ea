// Copyright 2025 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlsource

import (
	"context"
	"database/sql"
	"runtime"
	"sync"
	"sync/atomic"
)

// handleIDCount is used to generate unique handle IDs.
var handleIDCount uint64

type handleID = uint64

// maxStatements bounds the number of prepared statements kept per handle.
// Statements past the bound are prepared and closed per query.
const maxStatements = 256

// statementCache caches the sql.Stmt values prepared for rendered queries.
// Statements are indexed by the ID of the handle shared by a table and
// every source derived from it, then by SQL text.
//
// A finalizer on the handle closes its statements and removes them from
// the cache once no source refers to it. The mutex must be locked when
// accessing stmts.
type statementCache struct {
	stmts map[handleID]map[string]*sql.Stmt
	mutex sync.RWMutex
}

var once sync.Once
var singleStmtCache *statementCache

// newStatementCache returns the single instance of the statement cache.
func newStatementCache() *statementCache {
	once.Do(func() {
		singleStmtCache = &statementCache{
			stmts: map[handleID]map[string]*sql.Stmt{},
		}
	})
	return singleStmtCache
}

// handle ties a database to its cached statements.
type handle struct {
	id handleID
	db *sql.DB
}

// newHandle allocates a handle for db in the cache. A finalizer is set on
// the handle to close all statements prepared through it.
func (sc *statementCache) newHandle(db *sql.DB) *handle {
	h := &handle{id: atomic.AddUint64(&handleIDCount, 1), db: db}
	sc.mutex.Lock()
	sc.stmts[h.id] = map[string]*sql.Stmt{}
	sc.mutex.Unlock()
	runtime.SetFinalizer(h, sc.finalize)
	return h
}

// prepareSubstrate is an object that queries can be prepared on, e.g. a
// sql.DB or sql.Conn.
type prepareSubstrate interface {
	PrepareContext(context.Context, string) (*sql.Stmt, error)
}

// prepareStmt returns a statement for query prepared on ps. It first checks
// the cache to see if it has already been prepared through h. The boolean
// result is true if the statement is cached and must not be closed by the
// caller.
func (sc *statementCache) prepareStmt(ctx context.Context, h *handle, ps prepareSubstrate, query string) (*sql.Stmt, bool, error) {
	sc.mutex.RLock()
	stmt, ok := sc.stmts[h.id][query]
	sc.mutex.RUnlock()
	if ok {
		return stmt, true, nil
	}

	stmt, err := ps.PrepareContext(ctx, query)
	if err != nil {
		return nil, false, err
	}
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	// Check if a statement has been inserted by someone else since we last
	// checked.
	if alt, ok := sc.stmts[h.id][query]; ok {
		stmt.Close()
		return alt, true, nil
	}
	if len(sc.stmts[h.id]) >= maxStatements {
		return stmt, false, nil
	}
	sc.stmts[h.id][query] = stmt
	return stmt, true, nil
}

// finalize closes and removes all statements prepared through h.
func (sc *statementCache) finalize(h *handle) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	for _, stmt := range sc.stmts[h.id] {
		stmt.Close()
	}
	delete(sc.stmts, h.id)
}
