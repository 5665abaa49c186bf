package contacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rolohq/rolo/internal/db"
)

// PostgresStore is the networked backend: contact records in a relational
// table, owner-scoped on every query, ids assigned by the database.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore creates a Postgres-backed contact store.
func NewPostgresStore(log *slog.Logger, pool *pgxpool.Pool) *PostgresStore {
	if log == nil {
		log = slog.Default()
	}
	return &PostgresStore{
		pool:   pool,
		logger: log.With(slog.String("store", "postgres")),
	}
}

const contactColumns = `id, user_id, name, date_of_birth, when_we_met, school, profession_text,
	professions, contact_methods, social_links, comments, created_at`

// List implements Store.
func (s *PostgresStore) List(ctx context.Context, ownerID string) ([]Contact, error) {
	if s.pool == nil {
		return nil, errors.New("contact pool not configured")
	}
	pgOwner, err := db.ParseUUID(ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, pgOwner)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	items := make([]Contact, 0)
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return items, nil
}

// Create implements Store.
func (s *PostgresStore) Create(ctx context.Context, ownerID string, draft Draft) (Contact, error) {
	if s.pool == nil {
		return Contact{}, errors.New("contact pool not configured")
	}
	pgOwner, err := db.ParseUUID(ownerID)
	if err != nil {
		return Contact{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if err := draft.Validate(); err != nil {
		return Contact{}, err
	}
	record := draft.Record()
	professions, methods, social, comments, err := encodeSequences(record)
	if err != nil {
		return Contact{}, err
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO contacts (user_id, name, date_of_birth, when_we_met, school, profession_text,
			professions, contact_methods, social_links, comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+contactColumns,
		pgOwner, record.Name, record.DateOfBirth, record.WhenWeMet,
		textOrNull(record.School), textOrNull(record.ProfessionText),
		professions, methods, social, comments)
	contact, err := scanContact(row)
	if err != nil {
		return Contact{}, err
	}
	return contact, nil
}

// Update implements Store. The replacement is whole-record; when the incoming
// record carries an owner, the match is owner-scoped as well so one user can
// never overwrite another's record by id alone.
func (s *PostgresStore) Update(ctx context.Context, id string, record Contact) (Contact, error) {
	if s.pool == nil {
		return Contact{}, errors.New("contact pool not configured")
	}
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return Contact{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	record = Normalize(record)
	professions, methods, social, comments, err := encodeSequences(record)
	if err != nil {
		return Contact{}, err
	}
	owner := pgtype.UUID{}
	if record.OwnerID != "" {
		owner, err = db.ParseUUID(record.OwnerID)
		if err != nil {
			return Contact{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE contacts
		SET name = $2, date_of_birth = $3, when_we_met = $4, school = $5, profession_text = $6,
			professions = $7, contact_methods = $8, social_links = $9, comments = $10,
			updated_at = now()
		WHERE id = $1 AND ($11::uuid IS NULL OR user_id = $11)
		RETURNING `+contactColumns,
		pgID, record.Name, record.DateOfBirth, record.WhenWeMet,
		textOrNull(record.School), textOrNull(record.ProfessionText),
		professions, methods, social, comments, owner)
	contact, err := scanContact(row)
	if err != nil {
		return Contact{}, err
	}
	return contact, nil
}

// Delete implements Store. The match is owner-scoped, so deleting a record
// held by another user reports ErrNotFound.
func (s *PostgresStore) Delete(ctx context.Context, ownerID, id string) error {
	if s.pool == nil {
		return errors.New("contact pool not configured")
	}
	pgOwner, err := db.ParseUUID(ownerID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1 AND user_id = $2`, pgID, pgOwner)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (Contact, error) {
	var (
		id             pgtype.UUID
		ownerID        pgtype.UUID
		school         pgtype.Text
		professionText pgtype.Text
		professions    []byte
		methods        []byte
		social         []byte
		comments       []byte
		createdAt      pgtype.Timestamptz
		contact        Contact
	)
	err := row.Scan(&id, &ownerID, &contact.Name, &contact.DateOfBirth, &contact.WhenWeMet,
		&school, &professionText, &professions, &methods, &social, &comments, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Contact{}, ErrNotFound
		}
		return Contact{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	contact.ID = db.UUIDToString(id)
	contact.OwnerID = db.UUIDToString(ownerID)
	contact.School = db.TextToString(school)
	contact.ProfessionText = db.TextToString(professionText)
	contact.CreatedAt = db.TimeFromPg(createdAt)
	if err := decodeSequence(professions, &contact.Professions); err != nil {
		return Contact{}, err
	}
	if err := decodeSequence(methods, &contact.Methods); err != nil {
		return Contact{}, err
	}
	if err := decodeSequence(social, &contact.Social); err != nil {
		return Contact{}, err
	}
	if err := decodeSequence(comments, &contact.Comments); err != nil {
		return Contact{}, err
	}
	return Normalize(contact), nil
}

func encodeSequences(record Contact) (professions, methods, social, comments []byte, err error) {
	if professions, err = json.Marshal(record.Professions); err != nil {
		return nil, nil, nil, nil, err
	}
	if methods, err = json.Marshal(record.Methods); err != nil {
		return nil, nil, nil, nil, err
	}
	if social, err = json.Marshal(record.Social); err != nil {
		return nil, nil, nil, nil, err
	}
	if comments, err = json.Marshal(record.Comments); err != nil {
		return nil, nil, nil, nil, err
	}
	return professions, methods, social, comments, nil
}

func decodeSequence(raw []byte, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func textOrNull(value string) pgtype.Text {
	if value == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: value, Valid: true}
}
