package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Event struct {
	ID        int64           `json:"id"`
	Actor     string          `json:"actor"`
	Action    string          `json:"action"`
	Entity    string          `json:"entity"`
	EntityID  string          `json:"entityId"`
	RequestID string          `json:"requestId"`
	ClientIP  string          `json:"clientIp"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

// Record appends an audit event. Details must already be safe to persist:
// callers never pass passwords, hashes, or access codes.
func (s *Service) Record(ctx context.Context, actor, action, entity, entityID, requestID, clientIP string, details any) error {
	var detailsJSON []byte
	if details != nil {
		payload, err := json.Marshal(details)
		if err != nil {
			return err
		}
		detailsJSON = payload
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_log (actor, action, entity, entity_id, request_id, client_ip, details)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, actor, action, entity, entityID, requestID, clientIP, detailsJSON)
	return err
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Event, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, COALESCE(actor, ''), action, COALESCE(entity, ''), COALESCE(entity_id, ''), COALESCE(request_id, ''), COALESCE(client_ip, ''), details, created_at
    FROM audit_log
    ORDER BY created_at DESC, id DESC
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.Actor, &evt.Action, &evt.Entity, &evt.EntityID, &evt.RequestID, &evt.ClientIP, &evt.Details, &evt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}
