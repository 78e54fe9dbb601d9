package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Faisd405/ayomabar-be/internal/database"
	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CreateRoomInput struct {
	GameID      uuid.UUID
	MinSlot     int
	MaxSlot     int
	RankMinID   *uuid.UUID
	RankMaxID   *uuid.UUID
	TypePlay    models.TypePlay
	RoomType    models.RoomType
	RoomCode    *string
	ScheduledAt *time.Time
	ExpiresAt   *time.Time
}

// UpdateRoomInput is a partial update: nil fields are left untouched.
type UpdateRoomInput struct {
	GameID      *uuid.UUID
	MinSlot     *int
	MaxSlot     *int
	RankMinID   *uuid.UUID
	RankMaxID   *uuid.UUID
	TypePlay    *models.TypePlay
	RoomType    *models.RoomType
	RoomCode    *string
	Status      *models.RoomStatus
	ScheduledAt *time.Time
	ExpiresAt   *time.Time

	// ClearRankMin and ClearRankMax drop a bound. A rank id sent alongside
	// wins over the clear.
	ClearRankMin bool
	ClearRankMax bool
}

type RoomFilter struct {
	GameID    *uuid.UUID
	UserID    *uuid.UUID
	Status    models.RoomStatus
	TypePlay  models.TypePlay
	RoomType  models.RoomType
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type Participant struct {
	RequestID uuid.UUID          `json:"requestId"`
	User      models.UserSummary `json:"user"`
	IsHost    bool               `json:"isHost"`
	JoinedAt  time.Time          `json:"joinedAt"`
}

// RoomDetail is a room with its derived facts, computed from the ledger at
// read time.
type RoomDetail struct {
	*models.Room
	Game              models.GameSummary `json:"game"`
	Host              models.UserSummary `json:"host"`
	RankMin           *models.GameRank   `json:"rankMin"`
	RankMax           *models.GameRank   `json:"rankMax"`
	Participants      []Participant      `json:"participants,omitempty"`
	ParticipantsCount int64              `json:"participantsCount"`
	PendingCount      int64              `json:"pendingCount"`
	IsExpired         bool               `json:"isExpired"`
	IsFull            bool               `json:"isFull"`
}

type RoomPage struct {
	Data []RoomDetail `json:"data"`
	Meta PageMeta     `json:"meta"`
}

type JoinResult struct {
	Request *models.RoomRequest `json:"request"`
	Message string              `json:"-"`
}

type RequestView struct {
	*models.RoomRequest
	User models.UserSummary `json:"user"`
}

type RequestCounts struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Accepted int64 `json:"accepted"`
	Rejected int64 `json:"rejected"`
}

type RoomRequests struct {
	Requests []RequestView `json:"requests"`
	Counts   RequestCounts `json:"counts"`
}

// RoomService owns the room lifecycle: creation, membership transitions,
// capacity and expiry.
type RoomService struct {
	db        *database.Database
	log       *logrus.Logger
	now       func() time.Time
	notifiers []Notifier
}

func NewRoomService(db *database.Database, log *logrus.Logger) *RoomService {
	return &RoomService{
		db:  db,
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source.
func (s *RoomService) WithClock(now func() time.Time) *RoomService {
	s.now = now
	return s
}

func (s *RoomService) Subscribe(n Notifier) {
	s.notifiers = append(s.notifiers, n)
}

func (s *RoomService) Now() time.Time {
	return s.now()
}

func (s *RoomService) publish(ctx context.Context, ev RoomEvent) {
	ev.At = s.now()
	for _, n := range s.notifiers {
		if err := n.RoomChanged(ctx, ev); err != nil {
			s.log.WithFields(logrus.Fields{
				"room_id": ev.RoomID,
				"event":   ev.Type,
			}).WithError(err).Warn("room notifier failed")
		}
	}
}

func (s *RoomService) CreateRoom(ctx context.Context, actorID uuid.UUID, in CreateRoomInput) (*models.Room, error) {
	now := s.now()

	if in.MinSlot == 0 {
		in.MinSlot = models.MinSlotFloor
	}
	if in.TypePlay == "" {
		in.TypePlay = models.TypePlayCasual
	}
	if in.RoomType == "" {
		in.RoomType = models.RoomTypePublic
	}
	if err := validateSlots(in.MinSlot, in.MaxSlot); err != nil {
		return nil, err
	}
	if !in.TypePlay.Valid() {
		return nil, BadRequest("Invalid play type")
	}
	if !in.RoomType.Valid() {
		return nil, BadRequest("Invalid room type")
	}
	if in.ScheduledAt != nil && in.ScheduledAt.Before(now) {
		return nil, BadRequest("Scheduled time must be in the future")
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, BadRequest("Expiry time must be in the future")
	}

	room := &models.Room{
		GameID:      in.GameID,
		UserID:      actorID,
		MinSlot:     in.MinSlot,
		MaxSlot:     in.MaxSlot,
		RankMinID:   in.RankMinID,
		RankMaxID:   in.RankMaxID,
		TypePlay:    in.TypePlay,
		RoomType:    in.RoomType,
		RoomCode:    in.RoomCode,
		Status:      models.RoomStatusOpen,
		ScheduledAt: utcPtr(in.ScheduledAt),
		ExpiresAt:   utcPtr(in.ExpiresAt),
	}

	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		if _, err := tx.GetGame(in.GameID); err != nil {
			return storageErr(err, "Game not found")
		}
		if err := validateRanks(tx, in.GameID, in.RankMinID, in.RankMaxID); err != nil {
			return err
		}

		active, err := tx.FindActiveHostedRoom(actorID, now)
		if err == nil {
			return Conflict(fmt.Sprintf(
				"You already have an active room (%s). Close or delete it before creating a new one.", active.ID,
			)).WithCode(CodeActiveRoom)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return storageErr(err, "")
		}

		if err := tx.CreateRoom(room); err != nil {
			return storageErr(err, "")
		}
		host := &models.RoomRequest{
			RoomID: room.ID,
			UserID: actorID,
			Status: models.RequestStatusAccepted,
			IsHost: true,
		}
		return storageErr(tx.CreateRoomRequest(host), "")
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"room_id": room.ID, "user_id": actorID}).Info("room created")
	s.publish(ctx, RoomEvent{Type: EventRoomCreated, RoomID: room.ID, ActorID: actorID})

	created, err := s.db.WithContext(ctx).GetRoom(room.ID)
	if err != nil {
		return nil, storageErr(err, "Room not found")
	}
	return created, nil
}

func (s *RoomService) JoinRoom(ctx context.Context, actorID, roomID uuid.UUID) (*JoinResult, error) {
	now := s.now()
	var req *models.RoomRequest

	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		room, err := tx.LockRoom(roomID)
		if err != nil {
			return storageErr(err, "Room not found")
		}
		if room.Status != models.RoomStatusOpen {
			return BadRequest("Room is not open for joining").WithCode(CodeRoomNotOpen)
		}
		if room.ExpiredAt(now) {
			return BadRequest("This room has expired and is no longer accepting players").WithCode(CodeRoomExpired)
		}
		if room.UserID == actorID {
			return BadRequest("You are the host of this room").WithCode(CodeIsHost)
		}

		if err := checkExistingRequest(tx, roomID, actorID); err != nil {
			return err
		}

		occupied, err := tx.CountOccupied(roomID)
		if err != nil {
			return storageErr(err, "")
		}
		if occupied >= int64(room.MaxSlot) {
			return BadRequest("Room is full").WithCode(CodeRoomFull)
		}

		status := models.RequestStatusPending
		if room.RoomType == models.RoomTypePublic {
			status = models.RequestStatusAccepted
		}
		req = &models.RoomRequest{RoomID: roomID, UserID: actorID, Status: status}
		if err := tx.CreateRoomRequest(req); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return Conflict("You already have a request for this room").WithCode(CodeAlreadyPending)
			}
			return storageErr(err, "")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &JoinResult{Request: req}
	ev := RoomEvent{RoomID: roomID, UserID: actorID, ActorID: actorID}
	if req.Status == models.RequestStatusAccepted {
		result.Message = "Successfully joined the room"
		ev.Type = EventPlayerJoined
	} else {
		result.Message = "Join request sent, waiting for host approval"
		ev.Type = EventPlayerRequested
	}

	s.log.WithFields(logrus.Fields{"room_id": roomID, "user_id": actorID, "status": req.Status}).Info("room join")
	s.publish(ctx, ev)
	return result, nil
}

// checkExistingRequest refuses a join when the user already has a row in the
// room. A rejected row blocks for good, even once soft-deleted by a kick.
func checkExistingRequest(tx *database.Database, roomID, userID uuid.UUID) error {
	existing, err := tx.FindActiveRequest(roomID, userID)
	switch {
	case err == nil:
		switch existing.Status {
		case models.RequestStatusPending:
			return Conflict("You already have a pending request for this room. Please wait for the host to respond.").
				WithCode(CodeAlreadyPending)
		case models.RequestStatusAccepted:
			return Conflict("You are already a member of this room").WithCode(CodeAlreadyMember)
		default:
			return BadRequest("Your request to join this room was rejected. You cannot request again.").
				WithCode(CodeBlocked)
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return storageErr(err, "")
	}

	if _, err := tx.FindRejectedRequest(roomID, userID); err == nil {
		return BadRequest("You were previously rejected from this room and cannot join again").WithCode(CodeBlocked)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return storageErr(err, "")
	}
	return nil
}

func (s *RoomService) ApproveRoomRequest(ctx context.Context, hostID, requestID uuid.UUID) (*models.RoomRequest, error) {
	return s.resolveRequest(ctx, hostID, requestID, models.RequestStatusAccepted)
}

func (s *RoomService) RejectRoomRequest(ctx context.Context, hostID, requestID uuid.UUID) (*models.RoomRequest, error) {
	return s.resolveRequest(ctx, hostID, requestID, models.RequestStatusRejected)
}

func (s *RoomService) resolveRequest(ctx context.Context, hostID, requestID uuid.UUID, to models.RequestStatus) (*models.RoomRequest, error) {
	verb := "approve"
	if to == models.RequestStatusRejected {
		verb = "reject"
	}

	var req *models.RoomRequest
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		var err error
		req, err = tx.GetRoomRequest(requestID)
		if err != nil {
			return storageErr(err, "Room request not found")
		}
		room, err := tx.LockRoom(req.RoomID)
		if err != nil {
			return storageErr(err, "Room not found")
		}
		if room.UserID != hostID {
			return Forbidden(fmt.Sprintf("Only the room host can %s requests", verb))
		}
		if room.RoomType == models.RoomTypePublic {
			return BadRequest("Public rooms do not require manual approval")
		}

		switch m := req.Membership().(type) {
		case models.HostMembership:
			return BadRequest("The host's membership cannot be approved or rejected")
		case models.ParticipantMembership:
			if !m.Resolvable() {
				return BadRequest(fmt.Sprintf("This request has already been %s", m.Status))
			}
		}

		if to == models.RequestStatusAccepted {
			occupied, err := tx.CountOccupied(room.ID)
			if err != nil {
				return storageErr(err, "")
			}
			if occupied >= int64(room.MaxSlot) {
				return BadRequest("Room is full, cannot accept more players").WithCode(CodeRoomFull)
			}
		}

		if err := tx.ResolveRequest(req.ID, to); err != nil {
			return resolutionErr(err)
		}
		req.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := RoomEvent{Type: EventRequestApproved, RoomID: req.RoomID, UserID: req.UserID, ActorID: hostID}
	if to == models.RequestStatusRejected {
		ev.Type = EventRequestRejected
	}
	s.log.WithFields(logrus.Fields{"room_id": req.RoomID, "user_id": req.UserID, "status": to}).Info("room request resolved")
	s.publish(ctx, ev)
	return req, nil
}

// resolutionErr reports a request that changed state between the read and
// the guarded write the same way as one that was already resolved.
func resolutionErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return BadRequest("This request has already been processed")
	}
	return storageErr(err, "")
}

func (s *RoomService) KickPlayer(ctx context.Context, hostID, roomID, targetID uuid.UUID) error {
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		room, err := tx.GetRoom(roomID)
		if err != nil {
			return storageErr(err, "Room not found")
		}
		if room.UserID != hostID {
			return Forbidden("Only the room host can kick players")
		}
		if targetID == hostID {
			return BadRequest("You cannot kick yourself from your own room")
		}

		req, err := tx.FindActiveRequest(roomID, targetID)
		if err != nil {
			return storageErr(err, "User is not in this room")
		}
		switch m := req.Membership().(type) {
		case models.HostMembership:
			return Forbidden("Cannot kick another host from the room")
		case models.ParticipantMembership:
			if !m.Kickable() {
				return NotFound("User is not in this room")
			}
		}

		return storageErr(tx.KickRoomRequest(req.ID, s.now()), "User is not in this room")
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"room_id": roomID, "user_id": targetID}).Info("player kicked")
	s.publish(ctx, RoomEvent{Type: EventPlayerKicked, RoomID: roomID, UserID: targetID, ActorID: hostID})
	return nil
}

func (s *RoomService) LeaveRoom(ctx context.Context, actorID, roomID uuid.UUID) error {
	db := s.db.WithContext(ctx)

	if _, err := db.GetRoom(roomID); err != nil {
		return storageErr(err, "Room not found")
	}
	req, err := db.FindActiveRequest(roomID, actorID)
	if err != nil {
		return storageErr(err, "You are not a member of this room")
	}
	switch m := req.Membership().(type) {
	case models.HostMembership:
		return Forbidden("Host cannot leave the room. Please delete the room instead.")
	case models.ParticipantMembership:
		if !m.Leavable() {
			return NotFound("You are not a member of this room")
		}
	}

	if err := db.DeleteRoomRequest(req.ID); err != nil {
		return storageErr(err, "You are not a member of this room")
	}

	s.log.WithFields(logrus.Fields{"room_id": roomID, "user_id": actorID}).Info("player left")
	s.publish(ctx, RoomEvent{Type: EventPlayerLeft, RoomID: roomID, UserID: actorID, ActorID: actorID})
	return nil
}

func (s *RoomService) ReportPlayer(ctx context.Context, reporterID, roomID, reportedID uuid.UUID, reason string) (*models.PlayerReport, error) {
	db := s.db.WithContext(ctx)

	if _, err := db.GetRoom(roomID); err != nil {
		return nil, storageErr(err, "Room not found")
	}
	if reporterID == reportedID {
		return nil, BadRequest("You cannot report yourself")
	}
	if n := len([]rune(reason)); n < models.ReportReasonMinLen || n > models.ReportReasonMaxLen {
		return nil, BadRequest(fmt.Sprintf("Reason must be between %d and %d characters",
			models.ReportReasonMinLen, models.ReportReasonMaxLen))
	}

	member, err := db.HasRequested(roomID, reporterID)
	if err != nil {
		return nil, storageErr(err, "")
	}
	if !member {
		return nil, BadRequest("You must be a member of this room to report players")
	}
	reported, err := db.HasRequested(roomID, reportedID)
	if err != nil {
		return nil, storageErr(err, "")
	}
	if !reported {
		return nil, NotFound("The reported user is not in this room")
	}

	dup, err := db.PlayerReportExists(roomID, reporterID, reportedID)
	if err != nil {
		return nil, storageErr(err, "")
	}
	if dup {
		return nil, BadRequest("You have already reported this player in this room")
	}

	report := &models.PlayerReport{
		RoomID:         roomID,
		ReporterID:     reporterID,
		ReportedUserID: reportedID,
		Reason:         reason,
		Status:         models.ReportStatusPending,
	}
	if err := db.CreatePlayerReport(report); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, BadRequest("You have already reported this player in this room")
		}
		return nil, storageErr(err, "")
	}

	s.log.WithFields(logrus.Fields{"room_id": roomID, "user_id": reportedID, "reporter_id": reporterID}).Info("player reported")
	return report, nil
}

func (s *RoomService) UpdateRoom(ctx context.Context, actorID, roomID uuid.UUID, in UpdateRoomInput) (*models.Room, error) {
	now := s.now()

	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		room, err := tx.LockRoom(roomID)
		if err != nil {
			return storageErr(err, "Room not found")
		}
		if room.UserID != actorID {
			return Forbidden("You are not authorized to update this room")
		}

		fields := map[string]interface{}{}

		gameID := room.GameID
		if in.GameID != nil && *in.GameID != room.GameID {
			if _, err := tx.GetGame(*in.GameID); err != nil {
				return storageErr(err, "Game not found")
			}
			gameID = *in.GameID
			fields["game_id"] = gameID
		}

		rankMin, rankMax := room.RankMinID, room.RankMaxID
		if in.ClearRankMin {
			rankMin = nil
			fields["rank_min_id"] = nil
		}
		if in.ClearRankMax {
			rankMax = nil
			fields["rank_max_id"] = nil
		}
		if in.RankMinID != nil {
			rankMin = in.RankMinID
			fields["rank_min_id"] = *in.RankMinID
		}
		if in.RankMaxID != nil {
			rankMax = in.RankMaxID
			fields["rank_max_id"] = *in.RankMaxID
		}
		if err := validateRanks(tx, gameID, rankMin, rankMax); err != nil {
			return err
		}

		minSlot, maxSlot := room.MinSlot, room.MaxSlot
		if in.MinSlot != nil {
			minSlot = *in.MinSlot
			fields["min_slot"] = minSlot
		}
		if in.MaxSlot != nil {
			maxSlot = *in.MaxSlot
			fields["max_slot"] = maxSlot
		}
		if err := validateSlots(minSlot, maxSlot); err != nil {
			return err
		}
		if in.MaxSlot != nil {
			occupied, err := tx.CountOccupied(roomID)
			if err != nil {
				return storageErr(err, "")
			}
			if int64(maxSlot) < occupied {
				return BadRequest(fmt.Sprintf("Max slot cannot be lower than the current number of players (%d)", occupied))
			}
		}

		if in.TypePlay != nil {
			if !in.TypePlay.Valid() {
				return BadRequest("Invalid play type")
			}
			fields["type_play"] = *in.TypePlay
		}
		if in.RoomType != nil {
			if !in.RoomType.Valid() {
				return BadRequest("Invalid room type")
			}
			if *in.RoomType == models.RoomTypePublic && room.RoomType == models.RoomTypePrivate {
				counts, err := tx.CountRequestsByStatus(roomID)
				if err != nil {
					return storageErr(err, "")
				}
				if n := counts[models.RequestStatusPending]; n > 0 {
					return BadRequest(fmt.Sprintf("Resolve the %d pending join request(s) before making the room public", n))
				}
			}
			fields["room_type"] = *in.RoomType
		}
		if in.Status != nil {
			if !in.Status.Valid() {
				return BadRequest("Invalid room status")
			}
			fields["status"] = *in.Status
		}
		if in.RoomCode != nil {
			fields["room_code"] = *in.RoomCode
		}
		if in.ScheduledAt != nil {
			if in.ScheduledAt.Before(now) {
				return BadRequest("Scheduled time must be in the future")
			}
			fields["scheduled_at"] = in.ScheduledAt.UTC()
		}
		if in.ExpiresAt != nil {
			fields["expires_at"] = in.ExpiresAt.UTC()
		}

		return storageErr(tx.UpdateRoomFields(roomID, fields), "Room not found")
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, RoomEvent{Type: EventRoomUpdated, RoomID: roomID, ActorID: actorID})

	updated, err := s.db.WithContext(ctx).GetRoom(roomID)
	if err != nil {
		return nil, storageErr(err, "Room not found")
	}
	return updated, nil
}

func (s *RoomService) DeleteRoom(ctx context.Context, actorID, roomID uuid.UUID) error {
	db := s.db.WithContext(ctx)

	room, err := db.GetRoom(roomID)
	if err != nil {
		return storageErr(err, "Room not found")
	}
	if room.UserID != actorID {
		return Forbidden("You are not authorized to delete this room")
	}
	if err := db.DeleteRoom(roomID); err != nil {
		return storageErr(err, "Room not found")
	}

	ev := RoomEvent{Type: EventRoomDeleted, RoomID: roomID, ActorID: actorID}
	if room.HasPresentation() {
		ev.ChannelID = *room.DiscordChannelID
		ev.MessageID = *room.DiscordMessageID
	}
	s.log.WithFields(logrus.Fields{"room_id": roomID, "user_id": actorID}).Info("room deleted")
	s.publish(ctx, ev)
	return nil
}

func (s *RoomService) GetRoom(ctx context.Context, roomID uuid.UUID) (*RoomDetail, error) {
	db := s.db.WithContext(ctx)

	room, err := db.GetRoom(roomID)
	if err != nil {
		return nil, storageErr(err, "Room not found")
	}
	members, err := db.ListAcceptedMembers(roomID)
	if err != nil {
		return nil, storageErr(err, "")
	}
	counts, err := db.CountRequestsByStatus(roomID)
	if err != nil {
		return nil, storageErr(err, "")
	}

	detail := s.detail(room, int64(len(members)))
	detail.PendingCount = counts[models.RequestStatusPending]
	detail.Participants = make([]Participant, 0, len(members))
	for i := range members {
		detail.Participants = append(detail.Participants, Participant{
			RequestID: members[i].ID,
			User:      members[i].User.Summary(),
			IsHost:    members[i].IsHost,
			JoinedAt:  members[i].CreatedAt,
		})
	}
	return detail, nil
}

func (s *RoomService) detail(room *models.Room, occupied int64) *RoomDetail {
	return &RoomDetail{
		Room:              room,
		Game:              room.Game.Summary(),
		Host:              room.Host.Summary(),
		RankMin:           room.RankMin,
		RankMax:           room.RankMax,
		ParticipantsCount: occupied,
		IsExpired:         room.ExpiredAt(s.now()),
		IsFull:            occupied >= int64(room.MaxSlot),
	}
}

func (s *RoomService) ListRooms(ctx context.Context, f RoomFilter) (*RoomPage, error) {
	db := s.db.WithContext(ctx)
	page, limit, offset := normalizePage(f.Page, f.Limit)

	rooms, total, err := db.ListRooms(database.RoomQuery{
		GameID:    f.GameID,
		UserID:    f.UserID,
		Status:    string(f.Status),
		TypePlay:  string(f.TypePlay),
		RoomType:  string(f.RoomType),
		SortBy:    f.SortBy,
		SortOrder: f.SortOrder,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		return nil, storageErr(err, "")
	}

	ids := make([]uuid.UUID, len(rooms))
	for i := range rooms {
		ids[i] = rooms[i].ID
	}
	counts, err := db.CountOccupiedByRoom(ids)
	if err != nil {
		return nil, storageErr(err, "")
	}

	out := &RoomPage{Data: make([]RoomDetail, 0, len(rooms)), Meta: newPageMeta(total, page, limit)}
	for i := range rooms {
		out.Data = append(out.Data, *s.detail(&rooms[i], counts[rooms[i].ID]))
	}
	return out, nil
}

func (s *RoomService) GetRoomRequests(ctx context.Context, hostID, roomID uuid.UUID) (*RoomRequests, error) {
	db := s.db.WithContext(ctx)

	room, err := db.GetRoom(roomID)
	if err != nil {
		return nil, storageErr(err, "Room not found")
	}
	if room.UserID != hostID {
		return nil, Forbidden("Only the room host can view join requests")
	}

	reqs, err := db.ListRoomRequests(roomID)
	if err != nil {
		return nil, storageErr(err, "")
	}

	out := &RoomRequests{Requests: make([]RequestView, 0, len(reqs))}
	for i := range reqs {
		out.Requests = append(out.Requests, RequestView{RoomRequest: &reqs[i], User: reqs[i].User.Summary()})
		switch reqs[i].Status {
		case models.RequestStatusPending:
			out.Counts.Pending++
		case models.RequestStatusAccepted:
			out.Counts.Accepted++
		case models.RequestStatusRejected:
			out.Counts.Rejected++
		}
	}
	out.Counts.Total = int64(len(reqs))
	return out, nil
}

// AttachPresentation records where the lobby is currently rendered.
func (s *RoomService) AttachPresentation(ctx context.Context, roomID uuid.UUID, channelID, messageID string) error {
	err := s.db.WithContext(ctx).UpdateRoomFields(roomID, map[string]interface{}{
		"discord_channel_id": channelID,
		"discord_message_id": messageID,
	})
	return storageErr(err, "Room not found")
}

// ExtendExpiry restarts the lobby's expiry clock. Only the host may do it and
// never on a closed or completed room.
func (s *RoomService) ExtendExpiry(ctx context.Context, hostID, roomID uuid.UUID, window time.Duration) (*models.Room, error) {
	now := s.now()
	expires := now.Add(window)

	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		room, err := tx.LockRoom(roomID)
		if err != nil {
			return storageErr(err, "Room not found")
		}
		if room.UserID != hostID {
			return Forbidden("Only the room host can bump this room")
		}
		if room.Status.Terminal() {
			return BadRequest("You cannot bump a closed or completed room.")
		}
		return storageErr(tx.UpdateRoomFields(roomID, map[string]interface{}{
			"expires_at":     expires,
			"last_bumped_at": now,
		}), "Room not found")
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, RoomEvent{Type: EventRoomBumped, RoomID: roomID, ActorID: hostID})

	room, err := s.db.WithContext(ctx).GetRoom(roomID)
	if err != nil {
		return nil, storageErr(err, "Room not found")
	}
	return room, nil
}

func (s *RoomService) ListExpiring(ctx context.Context, since, until time.Time) ([]models.Room, error) {
	rooms, err := s.db.WithContext(ctx).ListExpiringRooms(since.UTC(), until.UTC())
	if err != nil {
		return nil, storageErr(err, "")
	}
	return rooms, nil
}

func validateSlots(minSlot, maxSlot int) error {
	if minSlot < models.MinSlotFloor || maxSlot < models.MinSlotFloor {
		return BadRequest(fmt.Sprintf("Slots must be at least %d", models.MinSlotFloor))
	}
	if maxSlot > models.MaxSlotCeiling || minSlot > models.MaxSlotCeiling {
		return BadRequest(fmt.Sprintf("Slots cannot exceed %d", models.MaxSlotCeiling))
	}
	if minSlot > maxSlot {
		return BadRequest("Min slot cannot be greater than max slot")
	}
	return nil
}

// validateRanks checks that both bounds belong to the game's ladder and are
// ordered.
func validateRanks(tx *database.Database, gameID uuid.UUID, minID, maxID *uuid.UUID) error {
	var minRank, maxRank *models.GameRank
	for _, pair := range []struct {
		id  *uuid.UUID
		out **models.GameRank
	}{{minID, &minRank}, {maxID, &maxRank}} {
		if pair.id == nil {
			continue
		}
		rank, err := tx.GetGameRank(*pair.id)
		if err != nil {
			return storageErr(err, "Rank not found")
		}
		if rank.GameID != gameID {
			return BadRequest("Rank does not belong to this game")
		}
		*pair.out = rank
	}
	if minRank != nil && maxRank != nil && minRank.Position > maxRank.Position {
		return BadRequest("Minimum rank cannot be higher than maximum rank")
	}
	return nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
