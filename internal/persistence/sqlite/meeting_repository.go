package sqlite

import (
	"context"
	"database/sql"
	"sort"

	"github.com/example/meetsync/internal/persistence"
	"github.com/example/meetsync/internal/schedule"
)

const meetingColumns = `id, owner_id, title, date, duration_hours, flex_minutes,
	modality, platform, location, recurring, tags, join_code,
	slot_label, slot_anchor_hour, slot_weekday, created_at, updated_at`

// CreateMeeting inserts a meeting together with its participant list.
func (s *Store) CreateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		tags, err := encodeTags(meeting.Tags)
		if err != nil {
			return err
		}
		slotLabel, slotAnchor, slotWeekday := slotColumns(meeting.SelectedSlot)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO meetings (id, owner_id, title, date, duration_hours, flex_minutes,
				modality, platform, location, recurring, tags, join_code,
				slot_label, slot_anchor_hour, slot_weekday, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			meeting.ID, meeting.OwnerID, meeting.Title, meeting.Date,
			meeting.DurationHours, meeting.FlexMinutes,
			meeting.Modality, meeting.Platform, meeting.Location,
			boolToInt(meeting.Recurring), tags, meeting.JoinCode,
			slotLabel, slotAnchor, slotWeekday,
			formatTime(meeting.CreatedAt), formatTime(meeting.UpdatedAt))
		if err != nil {
			return mapError(err)
		}
		for _, participant := range meeting.Participants {
			if err := insertParticipant(ctx, tx, participant); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.hub.notify(ctx)
	return nil
}

// UpdateMeeting replaces the mutable meeting fields. The participant list is
// managed through AddParticipant and is left untouched.
func (s *Store) UpdateMeeting(ctx context.Context, meeting persistence.Meeting) error {
	tags, err := encodeTags(meeting.Tags)
	if err != nil {
		return err
	}
	slotLabel, slotAnchor, slotWeekday := slotColumns(meeting.SelectedSlot)
	result, err := s.db.ExecContext(ctx, `
		UPDATE meetings SET title = ?, date = ?, duration_hours = ?, flex_minutes = ?,
			modality = ?, platform = ?, location = ?, recurring = ?, tags = ?,
			slot_label = ?, slot_anchor_hour = ?, slot_weekday = ?, updated_at = ?
		WHERE id = ?`,
		meeting.Title, meeting.Date, meeting.DurationHours, meeting.FlexMinutes,
		meeting.Modality, meeting.Platform, meeting.Location,
		boolToInt(meeting.Recurring), tags,
		slotLabel, slotAnchor, slotWeekday, formatTime(meeting.UpdatedAt),
		meeting.ID)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	s.hub.notify(ctx)
	return nil
}

// GetMeeting retrieves one meeting and its participants.
func (s *Store) GetMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = ?`, id)
	meeting, err := scanMeeting(row)
	if err != nil {
		return persistence.Meeting{}, err
	}
	if meeting.Participants, err = s.listParticipants(ctx, meeting.ID); err != nil {
		return persistence.Meeting{}, err
	}
	return meeting, nil
}

// GetMeetingByJoinCode resolves a join code through the unique index.
func (s *Store) GetMeetingByJoinCode(ctx context.Context, code string) (persistence.Meeting, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE join_code = ?`, code)
	meeting, err := scanMeeting(row)
	if err != nil {
		return persistence.Meeting{}, err
	}
	if meeting.Participants, err = s.listParticipants(ctx, meeting.ID); err != nil {
		return persistence.Meeting{}, err
	}
	return meeting, nil
}

// DeleteMeeting removes a meeting; participant rows cascade.
func (s *Store) DeleteMeeting(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM meetings WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	s.hub.notify(ctx)
	return nil
}

// AddParticipant appends one participant to a meeting. A registered user
// joining the same meeting twice violates the unique index and surfaces as
// ErrDuplicate.
func (s *Store) AddParticipant(ctx context.Context, participant persistence.Participant) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return insertParticipant(ctx, tx, participant)
	})
	if err != nil {
		return err
	}
	s.hub.notify(ctx)
	return nil
}

// ListMeetingsOwnedBy returns every meeting owned by the user, newest first.
func (s *Store) ListMeetingsOwnedBy(ctx context.Context, userID string) ([]persistence.Meeting, error) {
	return s.listMeetings(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE owner_id = ?`, userID)
}

// ListMeetingsWithParticipant returns every meeting whose participant list
// references the user, newest first.
func (s *Store) ListMeetingsWithParticipant(ctx context.Context, userID string) ([]persistence.Meeting, error) {
	return s.listMeetings(ctx, `
		SELECT `+meetingColumns+` FROM meetings
		WHERE id IN (SELECT meeting_id FROM meeting_participants WHERE user_id = ?)`, userID)
}

func (s *Store) listMeetings(ctx context.Context, query string, args ...any) ([]persistence.Meeting, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	meetings := make([]persistence.Meeting, 0)
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, meeting)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range meetings {
		if meetings[i].Participants, err = s.listParticipants(ctx, meetings[i].ID); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(meetings, func(i, j int) bool {
		if meetings[i].CreatedAt.Equal(meetings[j].CreatedAt) {
			return meetings[i].ID < meetings[j].ID
		}
		return meetings[i].CreatedAt.After(meetings[j].CreatedAt)
	})
	return meetings, nil
}

func (s *Store) listParticipants(ctx context.Context, meetingID string) ([]persistence.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, meeting_id, user_id, display_name, guest, availability, created_at
		FROM meeting_participants WHERE meeting_id = ? ORDER BY created_at, id`, meetingID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	participants := make([]persistence.Participant, 0)
	for rows.Next() {
		var p persistence.Participant
		var userID, availability sql.NullString
		var guest int
		var createdAt string
		if err := rows.Scan(&p.ID, &p.MeetingID, &userID, &p.DisplayName, &guest, &availability, &createdAt); err != nil {
			return nil, mapError(err)
		}
		p.UserID = userID.String
		p.Guest = guest != 0
		if availability.Valid {
			if p.Availability, err = decodeGrid(availability.String); err != nil {
				return nil, err
			}
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return participants, nil
}

func insertParticipant(ctx context.Context, tx *sql.Tx, participant persistence.Participant) error {
	var userID sql.NullString
	if participant.UserID != "" {
		userID = sql.NullString{String: participant.UserID, Valid: true}
	}
	var availability sql.NullString
	if participant.Availability != nil {
		encoded, err := encodeGrid(participant.Availability)
		if err != nil {
			return err
		}
		availability = sql.NullString{String: encoded, Valid: true}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO meeting_participants (id, meeting_id, user_id, display_name, guest, availability, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		participant.ID, participant.MeetingID, userID, participant.DisplayName,
		boolToInt(participant.Guest), availability, formatTime(participant.CreatedAt))
	return mapError(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMeeting(row rowScanner) (persistence.Meeting, error) {
	var meeting persistence.Meeting
	var recurring int
	var tags, createdAt, updatedAt string
	var slotLabel, slotWeekday sql.NullString
	var slotAnchor sql.NullInt64

	err := row.Scan(&meeting.ID, &meeting.OwnerID, &meeting.Title, &meeting.Date,
		&meeting.DurationHours, &meeting.FlexMinutes,
		&meeting.Modality, &meeting.Platform, &meeting.Location,
		&recurring, &tags, &meeting.JoinCode,
		&slotLabel, &slotAnchor, &slotWeekday, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Meeting{}, mapError(err)
	}

	meeting.Recurring = recurring != 0
	if meeting.Tags, err = decodeTags(tags); err != nil {
		return persistence.Meeting{}, err
	}
	if slotLabel.Valid {
		meeting.SelectedSlot = &persistence.SelectedSlot{
			Label:      slotLabel.String,
			AnchorHour: int(slotAnchor.Int64),
			Weekday:    schedule.Weekday(slotWeekday.String),
		}
	}
	if meeting.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Meeting{}, err
	}
	if meeting.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Meeting{}, err
	}
	return meeting, nil
}

func slotColumns(slot *persistence.SelectedSlot) (sql.NullString, sql.NullInt64, sql.NullString) {
	if slot == nil {
		return sql.NullString{}, sql.NullInt64{}, sql.NullString{}
	}
	return sql.NullString{String: slot.Label, Valid: true},
		sql.NullInt64{Int64: int64(slot.AnchorHour), Valid: true},
		sql.NullString{String: string(slot.Weekday), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
