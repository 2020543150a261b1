package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/vedsharma/reqpad/internal/model"

	_ "modernc.org/sqlite"
)

const (
	dbFile = "reqpad.db"

	// historyLimit is the number of sends kept in history
	historyLimit = 100

	// Secure file permissions - owner read/write only
	secureFileMode = 0600 // -rw-------
	secureDirMode  = 0700 // drwx------
)

// ErrNotFound is returned when a request or history entry does not exist
var ErrNotFound = errors.New("not found")

// ensureSecureFile creates a file with secure permissions if it doesn't exist,
// or verifies/fixes permissions if it does exist. This prevents a TOCTOU race
// condition where the file could be created with insecure default permissions.
func ensureSecureFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, secureFileMode)
		if err != nil {
			return fmt.Errorf("failed to create secure file: %w", err)
		}
		return f.Close()
	}
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	if info.Mode().Perm() != secureFileMode {
		if err := os.Chmod(path, secureFileMode); err != nil {
			return fmt.Errorf("failed to set secure permissions: %w", err)
		}
	}
	return nil
}

// SQLiteStorage persists the request list and send history
type SQLiteStorage struct {
	db *sql.DB
}

// Open opens (or creates) the workspace database inside dataDir
func Open(dataDir string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(dataDir, secureDirMode); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dataDir, dbFile)
	if err := ensureSecureFile(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &SQLiteStorage{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// initSchema creates the database tables if they don't exist
func (s *SQLiteStorage) initSchema() error {
	schema := `
	-- Request list, ordered by position (lowest first)
	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		method TEXT NOT NULL,
		headers TEXT NOT NULL DEFAULT '[]',
		param_type TEXT NOT NULL,
		text_param TEXT NOT NULL DEFAULT '',
		form_params TEXT NOT NULL DEFAULT '[]',
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_requests_position ON requests(position);

	-- Send history
	CREATE TABLE IF NOT EXISTS history (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		method TEXT NOT NULL,
		url TEXT NOT NULL,
		error TEXT,
		response_status_code INTEGER,
		response_status TEXT,
		response_content_length INTEGER,
		response_headers TEXT,
		response_body TEXT,
		response_duration_ms INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// Request Operations
// =============================================================================

// SaveRequest inserts spec at the top of the list, or updates it in place if
// it is already stored
func (s *SQLiteStorage) SaveRequest(spec *model.Http) error {
	headersJSON, err := json.Marshal(spec.Headers)
	if err != nil {
		return fmt.Errorf("failed to encode headers: %w", err)
	}
	formJSON, err := json.Marshal(spec.FormParams)
	if err != nil {
		return fmt.Errorf("failed to encode form params: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var minPos sql.NullInt64
	if err := tx.QueryRow("SELECT MIN(position) FROM requests").Scan(&minPos); err != nil {
		return err
	}
	position := int64(0)
	if minPos.Valid {
		position = minPos.Int64 - 1
	}

	_, err = tx.Exec(`
		INSERT INTO requests (
			id, position, name, url, method, headers,
			param_type, text_param, form_params, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			url = excluded.url,
			method = excluded.method,
			headers = excluded.headers,
			param_type = excluded.param_type,
			text_param = excluded.text_param,
			form_params = excluded.form_params,
			updated_at = excluded.updated_at`,
		spec.ID(), position, spec.Name, spec.URL, spec.Method.String(), string(headersJSON),
		spec.ParamType.String(), spec.TextParam, string(formJSON), time.Now(),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// LoadRequests returns every stored request in list order
func (s *SQLiteStorage) LoadRequests() ([]*model.Http, error) {
	rows, err := s.db.Query(`
		SELECT id, name, url, method, headers, param_type, text_param, form_params
		FROM requests
		ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	specs := []*model.Http{}
	for rows.Next() {
		spec, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	return specs, rows.Err()
}

// GetRequest loads a single request by id
func (s *SQLiteStorage) GetRequest(id string) (*model.Http, error) {
	row := s.db.QueryRow(`
		SELECT id, name, url, method, headers, param_type, text_param, form_params
		FROM requests
		WHERE id = ?`, id)

	spec, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	return spec, err
}

// DeleteRequest removes a request. Its history is kept.
func (s *SQLiteStorage) DeleteRequest(id string) error {
	res, err := s.db.Exec("DELETE FROM requests WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("request %s: %w", id, ErrNotFound)
	}
	return nil
}

// ClearRequests removes every request
func (s *SQLiteStorage) ClearRequests() error {
	_, err := s.db.Exec("DELETE FROM requests")
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(row scanner) (*model.Http, error) {
	var id, name, url, method, headersJSON, paramType, textParam, formJSON string
	if err := row.Scan(&id, &name, &url, &method, &headersJSON, &paramType, &textParam, &formJSON); err != nil {
		return nil, err
	}

	spec, err := model.RestoreHttp(id)
	if err != nil {
		return nil, err
	}
	spec.Name = name
	spec.URL = url
	spec.TextParam = textParam

	if spec.Method, err = model.ParseMethod(method); err != nil {
		return nil, fmt.Errorf("request %s: %w", id, err)
	}
	if spec.ParamType, err = model.ParseParamType(paramType); err != nil {
		return nil, fmt.Errorf("request %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(headersJSON), &spec.Headers); err != nil {
		return nil, fmt.Errorf("failed to parse headers JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(formJSON), &spec.FormParams); err != nil {
		return nil, fmt.Errorf("failed to parse form params JSON: %w", err)
	}
	return spec, nil
}

// =============================================================================
// History Operations
// =============================================================================

// AddToHistory records a send and trims history to the newest entries
func (s *SQLiteStorage) AddToHistory(entry *model.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()[:8]
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	var errText sql.NullString
	if entry.Error != "" {
		errText = sql.NullString{String: entry.Error, Valid: true}
	}

	var respStatusCode, respContentLength, respDurationMs sql.NullInt64
	var respStatus, respHeaders, respBody sql.NullString

	if resp := entry.Response; resp != nil {
		respStatusCode = sql.NullInt64{Int64: int64(resp.StatusCode), Valid: true}
		respStatus = sql.NullString{String: resp.Status, Valid: true}
		if resp.ContentLength != nil {
			respContentLength = sql.NullInt64{Int64: *resp.ContentLength, Valid: true}
		}
		respHeadersJSON, _ := json.Marshal(resp.Headers)
		respHeaders = sql.NullString{String: string(respHeadersJSON), Valid: true}
		respBody = sql.NullString{String: resp.Body, Valid: true}
		respDurationMs = sql.NullInt64{Int64: resp.Duration.Milliseconds(), Valid: true}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO history (
			id, request_id, timestamp, method, url, error,
			response_status_code, response_status, response_content_length,
			response_headers, response_body, response_duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.RequestID, entry.Timestamp, entry.Method.String(), entry.URL, errText,
		respStatusCode, respStatus, respContentLength, respHeaders, respBody, respDurationMs,
	)
	if err != nil {
		return err
	}

	// Enforce the history limit by deleting oldest entries
	_, err = tx.Exec(`
		DELETE FROM history
		WHERE id NOT IN (
			SELECT id FROM history ORDER BY timestamp DESC LIMIT ?
		)`, historyLimit)
	if err != nil {
		return err
	}

	return tx.Commit()
}

const historyColumns = `
	id, request_id, timestamp, method, url, error,
	response_status_code, response_status, response_content_length,
	response_headers, response_body, response_duration_ms`

// LoadHistory returns up to limit entries, newest first. A limit <= 0 returns all.
func (s *SQLiteStorage) LoadHistory(limit int) ([]model.HistoryEntry, error) {
	if limit <= 0 {
		limit = historyLimit
	}
	rows, err := s.db.Query(`SELECT `+historyColumns+`
		FROM history
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.HistoryEntry{}
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	return entries, rows.Err()
}

// GetHistoryEntry gets a specific entry by ID
func (s *SQLiteStorage) GetHistoryEntry(id string) (*model.HistoryEntry, error) {
	row := s.db.QueryRow(`SELECT `+historyColumns+` FROM history WHERE id = ?`, id)
	entry, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("history entry %s: %w", id, ErrNotFound)
	}
	return entry, err
}

// ClearHistory clears all history
func (s *SQLiteStorage) ClearHistory() error {
	_, err := s.db.Exec("DELETE FROM history")
	return err
}

func scanHistory(row scanner) (*model.HistoryEntry, error) {
	var entry model.HistoryEntry
	var method string
	var errText sql.NullString
	var respStatusCode, respContentLength, respDurationMs sql.NullInt64
	var respStatus, respHeaders, respBody sql.NullString

	err := row.Scan(
		&entry.ID, &entry.RequestID, &entry.Timestamp, &method, &entry.URL, &errText,
		&respStatusCode, &respStatus, &respContentLength,
		&respHeaders, &respBody, &respDurationMs,
	)
	if err != nil {
		return nil, err
	}

	entry.Method = model.Method(method)
	entry.Error = errText.String

	if respStatusCode.Valid {
		resp := &model.Response{
			StatusCode: int(respStatusCode.Int64),
			Status:     respStatus.String,
			Body:       respBody.String,
			Duration:   time.Duration(respDurationMs.Int64) * time.Millisecond,
		}
		if respContentLength.Valid {
			n := respContentLength.Int64
			resp.ContentLength = &n
		}
		if respHeaders.Valid && respHeaders.String != "" {
			// Headers are informational; a broken column does not hide the entry
			_ = json.Unmarshal([]byte(respHeaders.String), &resp.Headers)
		}
		entry.Response = resp
	}

	return &entry, nil
}
