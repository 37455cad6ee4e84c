package storage

import (
	"database/sql"
	"time"
)

func CreateIssuanceEvent(db *sql.DB, event *IssuanceEvent) (int, error) {
	query := `INSERT INTO issuance_events (request_id, alias, common_name, serial_number, not_before, not_after, outcome, error_message)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := db.Exec(query, event.RequestID, event.Alias, event.CommonName, event.SerialNumber,
		event.NotBefore, event.NotAfter, event.Outcome, event.ErrorMessage)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	event.ID = int(id)
	event.CreatedAt = time.Now()

	return int(id), nil
}

func GetIssuanceEvents(db *sql.DB, limit int) ([]*IssuanceEvent, error) {
	query := `SELECT id, request_id, alias, common_name, serial_number, not_before, not_after, outcome, error_message, created_at
			  FROM issuance_events ORDER BY created_at DESC, id DESC LIMIT ?`

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*IssuanceEvent
	for rows.Next() {
		var event IssuanceEvent
		err := rows.Scan(&event.ID, &event.RequestID, &event.Alias, &event.CommonName, &event.SerialNumber,
			&event.NotBefore, &event.NotAfter, &event.Outcome, &event.ErrorMessage, &event.CreatedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}

func GetIssuanceEventsByAlias(db *sql.DB, alias string) ([]*IssuanceEvent, error) {
	query := `SELECT id, request_id, alias, common_name, serial_number, not_before, not_after, outcome, error_message, created_at
			  FROM issuance_events WHERE alias = ? ORDER BY created_at DESC, id DESC`

	rows, err := db.Query(query, alias)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*IssuanceEvent
	for rows.Next() {
		var event IssuanceEvent
		err := rows.Scan(&event.ID, &event.RequestID, &event.Alias, &event.CommonName, &event.SerialNumber,
			&event.NotBefore, &event.NotAfter, &event.Outcome, &event.ErrorMessage, &event.CreatedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}
