// Package postgres implementa el port recordstore sobre Postgres para
// despliegues auto-hospedados: una única tabla de colecciones con el
// documento en jsonb, y el predicado textual traducido a comparaciones
// sobre data->>campo.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"farm-records/internal/filter"
	"farm-records/internal/ports/recordstore"
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables (ajustable luego)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// EnsureSchema crea la tabla de registros si no existe.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS records (
			collection text NOT NULL,
			id         text NOT NULL,
			data       jsonb NOT NULL,
			PRIMARY KEY (collection, id)
		)
	`)
	return err
}

func (s *Store) List(ctx context.Context, token, collection string, opts recordstore.ListOptions) (recordstore.Page, error) {
	clauses, err := filter.Parse(opts.Filter)
	if err != nil {
		return recordstore.Page{}, &recordstore.RemoteError{Status: 400, Message: err.Error()}
	}

	where := []string{"collection = $1"}
	args := []any{collection}
	for _, c := range clauses {
		n := len(args) + 1
		switch c.Op {
		case filter.OpEq:
			where = append(where, fmt.Sprintf("coalesce(data->>'%s','') = $%d", sqlField(c.Field), n))
			args = append(args, c.Value)
		case filter.OpNeq:
			where = append(where, fmt.Sprintf("coalesce(data->>'%s','') <> $%d", sqlField(c.Field), n))
			args = append(args, c.Value)
		case filter.OpContains:
			where = append(where, fmt.Sprintf("coalesce(data->>'%s','') ILIKE '%%' || $%d || '%%'", sqlField(c.Field), n))
			args = append(args, escapeLike(c.Value))
		case filter.OpGte:
			where = append(where, fmt.Sprintf("coalesce(data->>'%s','') >= $%d", sqlField(c.Field), n))
			args = append(args, c.Value)
		case filter.OpLte:
			where = append(where, fmt.Sprintf("coalesce(data->>'%s','') <= $%d", sqlField(c.Field), n))
			args = append(args, c.Value)
		default:
			return recordstore.Page{}, &recordstore.RemoteError{Status: 400, Message: "unsupported operator " + c.Op}
		}
	}

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = 30
	}

	whereSQL := strings.Join(where, " AND ")

	// Conteo aparte: una página fuera de rango no devuelve filas y aun
	// así los totales tienen que salir, igual que en el store remoto.
	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM records WHERE "+whereSQL, args...,
	).Scan(&total); err != nil {
		return recordstore.Page{}, &recordstore.RemoteError{Message: err.Error()}
	}

	query := "SELECT data FROM records WHERE " + whereSQL
	query += orderBy(opts.Sort)
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", perPage, (page-1)*perPage)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return recordstore.Page{}, &recordstore.RemoteError{Message: err.Error()}
	}
	defer rows.Close()

	out := recordstore.Page{Page: page, PerPage: perPage, TotalItems: total, Items: make([]json.RawMessage, 0)}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return recordstore.Page{}, &recordstore.RemoteError{Message: err.Error()}
		}
		out.Items = append(out.Items, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return recordstore.Page{}, &recordstore.RemoteError{Message: err.Error()}
	}
	if total > 0 {
		out.TotalPages = (total + perPage - 1) / perPage
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, token, collection, id, expand string) (json.RawMessage, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, recordstore.ErrNotFound
	}
	if err != nil {
		return nil, &recordstore.RemoteError{Message: err.Error()}
	}
	return json.RawMessage(raw), nil
}

func (s *Store) Create(ctx context.Context, token, collection string, data map[string]any, files []recordstore.File) (json.RawMessage, error) {
	now := s.now().UTC().Format(time.RFC3339)
	doc := make(map[string]any, len(data)+4)
	for k, v := range data {
		doc[k] = v
	}
	doc["id"] = uuid.NewString()
	doc["collectionName"] = collection
	doc["created"] = now
	doc["updated"] = now
	for _, f := range files {
		doc[f.Field] = f.Name
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, &recordstore.RemoteError{Message: err.Error()}
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO records (collection, id, data) VALUES ($1, $2, $3)`,
		collection, doc["id"], raw,
	); err != nil {
		return nil, &recordstore.RemoteError{Message: err.Error()}
	}
	return json.RawMessage(raw), nil
}

func (s *Store) Update(ctx context.Context, token, collection, id string, data map[string]any, files []recordstore.File) (json.RawMessage, error) {
	patch := make(map[string]any, len(data)+len(files)+1)
	for k, v := range data {
		// id/created nunca se pisan
		if k == "id" || k == "created" || k == "updated" || k == "collectionName" {
			continue
		}
		patch[k] = v
	}
	for _, f := range files {
		patch[f.Field] = f.Name
	}
	patch["updated"] = s.now().UTC().Format(time.RFC3339)

	rawPatch, err := json.Marshal(patch)
	if err != nil {
		return nil, &recordstore.RemoteError{Message: err.Error()}
	}

	var raw []byte
	err = s.db.QueryRowContext(ctx,
		`UPDATE records SET data = data || $3::jsonb
		 WHERE collection = $1 AND id = $2
		 RETURNING data`,
		collection, id, rawPatch,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, recordstore.ErrNotFound
	}
	if err != nil {
		return nil, &recordstore.RemoteError{Message: err.Error()}
	}
	return json.RawMessage(raw), nil
}

func (s *Store) Delete(ctx context.Context, token, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return &recordstore.RemoteError{Message: err.Error()}
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return recordstore.ErrNotFound
	}
	return nil
}

func (s *Store) FileURL(collection, recordID, filename string) string {
	return "/files/" + collection + "/" + recordID + "/" + filename
}

func orderBy(sortExpr string) string {
	sortExpr = strings.TrimSpace(sortExpr)
	if sortExpr == "" {
		return ""
	}
	dir := "ASC"
	field := sortExpr
	if strings.HasPrefix(sortExpr, "-") {
		dir = "DESC"
		field = sortExpr[1:]
	}
	return fmt.Sprintf(" ORDER BY data->>'%s' %s", sqlField(field), dir)
}

// sqlField: los nombres de campo vienen de schemas propios, no del
// usuario, pero igual se restringen a identificadores.
func sqlField(field string) string {
	var b strings.Builder
	for i := 0; i < len(field); i++ {
		c := field[i]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
