// Yearly Review - Community Year in Review Reports
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yearlyreview

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/yearlyreview/internal/models"
)

const insertPublicationRecord = `
	INSERT INTO publication_records (year, document_id, publisher, published_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (year) DO NOTHING`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// PublicationExists reports whether a publication record is stored for year.
func (db *DB) PublicationExists(ctx context.Context, year int) (bool, error) {
	_, err := db.GetPublication(ctx, year)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetPublication returns the publication record for year, or sql.ErrNoRows.
func (db *DB) GetPublication(ctx context.Context, year int) (*models.PublicationRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var rec models.PublicationRecord
	err := db.conn.QueryRowContext(ctx, `
		SELECT year, document_id, publisher, published_at
		FROM publication_records
		WHERE year = ?
	`, year).Scan(&rec.Year, &rec.DocumentID, &rec.Publisher, &rec.PublishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read publication record for %d: %w", year, err)
	}
	return &rec, nil
}

// RecordPublication stores rec. It returns ErrPublicationExists when the year
// already has a record.
func (db *DB) RecordPublication(ctx context.Context, rec models.PublicationRecord) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return insertRecord(ctx, db.conn, rec)
}

func insertRecord(ctx context.Context, ex execer, rec models.PublicationRecord) error {
	if rec.PublishedAt.IsZero() {
		rec.PublishedAt = time.Now().UTC()
	}

	result, err := ex.ExecContext(ctx, insertPublicationRecord,
		rec.Year, rec.DocumentID, rec.Publisher, rec.PublishedAt)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("year %d: %w", rec.Year, ErrPublicationExists)
		}
		return fmt.Errorf("failed to insert publication record for %d: %w", rec.Year, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("year %d: %w", rec.Year, ErrPublicationExists)
	}
	return nil
}

// PublishDocument stores doc, its replies and the publication record in one
// transaction. The record is written first so a second publisher for the same
// year fails before any document row exists.
func (db *DB) PublishDocument(ctx context.Context, doc *models.ReviewDocument, publisher string) (models.PublicationRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	customFields, err := json.Marshal(doc.CustomFields())
	if err != nil {
		return models.PublicationRecord{}, fmt.Errorf("failed to encode custom fields: %w", err)
	}

	rec := models.PublicationRecord{
		Year:        doc.Year,
		DocumentID:  uuid.New().String(),
		Publisher:   publisher,
		PublishedAt: time.Now().UTC(),
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return models.PublicationRecord{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := insertRecord(ctx, tx, rec); err != nil {
		return models.PublicationRecord{}, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO review_documents
			(id, year, title, body, category, author_id, author_username, custom_fields, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.DocumentID, doc.Year, doc.Title, doc.Body, doc.Category,
		doc.Author.ID, doc.Author.Username, string(customFields), rec.PublishedAt)
	if err != nil {
		return models.PublicationRecord{}, fmt.Errorf("failed to insert review document: %w", err)
	}

	for i, reply := range doc.Replies {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO review_replies (document_id, position, body) VALUES (?, ?, ?)`,
			rec.DocumentID, i+1, reply); err != nil {
			return models.PublicationRecord{}, fmt.Errorf("failed to insert reply %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		if isConstraintViolation(err) {
			return models.PublicationRecord{}, fmt.Errorf("year %d: %w", doc.Year, ErrPublicationExists)
		}
		return models.PublicationRecord{}, fmt.Errorf("failed to commit publication: %w", err)
	}
	committed = true

	return rec, nil
}

// GetDocumentForYear loads the stored review document tagged with year.
func (db *DB) GetDocumentForYear(ctx context.Context, year int) (*models.ReviewDocument, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		doc          models.ReviewDocument
		id           string
		category     sql.NullString
		customFields string
	)
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, year, title, body, category, author_id, author_username, custom_fields
		FROM review_documents
		WHERE year = ?
		ORDER BY created_at
		LIMIT 1
	`, year).Scan(&id, &doc.Year, &doc.Title, &doc.Body, &category,
		&doc.Author.ID, &doc.Author.Username, &customFields)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read review document for %d: %w", year, err)
	}
	doc.Category = category.String

	var fields map[string]string
	if err := json.Unmarshal([]byte(customFields), &fields); err != nil {
		return nil, fmt.Errorf("failed to decode custom fields of document %s: %w", id, err)
	}
	if fields[models.CustomFieldName] == "" {
		return nil, fmt.Errorf("document %s is missing the %s custom field", id, models.CustomFieldName)
	}

	replies, err := timedQuery(ctx, db, "review_replies", `
		SELECT body FROM review_replies WHERE document_id = ? ORDER BY position
	`, []interface{}{id}, func(rows *sql.Rows) (string, error) {
		var body string
		err := rows.Scan(&body)
		return body, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read replies of document %s: %w", id, err)
	}
	doc.Replies = replies

	return &doc, nil
}

// RenameUserInDocuments rewrites /oldUsername/ path segments in stored review
// bodies and replies. Avatar paths carry the lower-cased username, so the
// lower-cased segment is rewritten too. It returns the number of rows changed.
func (db *DB) RenameUserInDocuments(ctx context.Context, oldUsername, newUsername string) (int64, error) {
	oldUsername = strings.TrimSpace(oldUsername)
	newUsername = strings.TrimSpace(newUsername)
	if oldUsername == "" || newUsername == "" {
		return 0, fmt.Errorf("both usernames are required")
	}
	if oldUsername == newUsername {
		return 0, nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	// The exact-case pair only differs from the lower-cased one for
	// mixed-case names and then never matches an avatar path. For a
	// lower-case old name both pairs must agree so avatars stay lower-case.
	lowerOld, lowerNew := "/"+strings.ToLower(oldUsername)+"/", "/"+strings.ToLower(newUsername)+"/"
	exactOld, exactNew := "/"+oldUsername+"/", "/"+newUsername+"/"
	if exactOld == lowerOld {
		exactNew = lowerNew
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var total int64
	for _, table := range []string{"review_documents", "review_replies"} {
		// table is one of two constants above
		result, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET body = replace(replace(body, ?, ?), ?, ?)
				WHERE contains(body, ?) OR contains(body, ?)`, table),
			lowerOld, lowerNew, exactOld, exactNew, lowerOld, exactOld)
		if err != nil {
			return 0, fmt.Errorf("failed to rewrite %s: %w", table, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read rows affected: %w", err)
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit rename: %w", err)
	}
	committed = true

	return total, nil
}
