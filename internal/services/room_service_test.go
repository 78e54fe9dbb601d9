package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Faisd405/ayomabar-be/internal/database"
	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/Faisd405/ayomabar-be/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []RoomEvent
	err    error
}

func (r *eventRecorder) RoomChanged(_ context.Context, ev RoomEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *eventRecorder) types() []RoomEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RoomEventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

type roomFixture struct {
	db   *database.Database
	svc  *RoomService
	now  time.Time
	game *models.Game
	rec  *eventRecorder
}

func newRoomFixture(t *testing.T) *roomFixture {
	t.Helper()

	f := &roomFixture{
		db:  testutil.NewDatabase(t),
		now: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
		rec: &eventRecorder{},
	}
	f.game = testutil.CreateGame(t, f.db, "Valorant", "Iron", "Bronze", "Silver", "Gold")
	f.svc = NewRoomService(f.db, testutil.Logger()).WithClock(func() time.Time { return f.now })
	f.svc.Subscribe(f.rec)
	return f
}

func (f *roomFixture) user(t *testing.T, name string) *models.User {
	return testutil.CreateUser(t, f.db, name)
}

func (f *roomFixture) createRoom(t *testing.T, host *models.User, opts ...func(*CreateRoomInput)) *models.Room {
	t.Helper()

	in := CreateRoomInput{
		GameID:   f.game.ID,
		MinSlot:  1,
		MaxSlot:  4,
		TypePlay: models.TypePlayCasual,
		RoomType: models.RoomTypePublic,
	}
	for _, opt := range opts {
		opt(&in)
	}
	room, err := f.svc.CreateRoom(context.Background(), host.ID, in)
	require.NoError(t, err)
	return room
}

func private(in *CreateRoomInput) { in.RoomType = models.RoomTypePrivate }

func maxSlot(n int) func(*CreateRoomInput) {
	return func(in *CreateRoomInput) { in.MaxSlot = n }
}

func assertKind(t *testing.T, err error, kind Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, KindOf(err), "unexpected kind for %q", err)
	if msg != "" {
		assert.Equal(t, msg, MessageOf(err))
	}
}

func (f *roomFixture) occupied(t *testing.T, roomID uuid.UUID) int64 {
	t.Helper()
	n, err := f.db.CountOccupied(roomID)
	require.NoError(t, err)
	return n
}

func TestCreateRoomInsertsAcceptedHostRow(t *testing.T) {
	f := newRoomFixture(t)
	host := f.user(t, "alice")

	room := f.createRoom(t, host)

	assert.Equal(t, host.ID, room.UserID)
	assert.Equal(t, models.RoomStatusOpen, room.Status)
	assert.Equal(t, "Valorant", room.Game.Title)

	hosts, err := f.db.CountHostRows(room.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, hosts)

	req, err := f.db.FindActiveRequest(room.ID, host.ID)
	require.NoError(t, err)
	assert.True(t, req.IsHost)
	assert.Equal(t, models.RequestStatusAccepted, req.Status)
	assert.IsType(t, models.HostMembership{}, req.Membership())

	assert.Equal(t, []RoomEventType{EventRoomCreated}, f.rec.types())
}

func TestCreateRoomValidation(t *testing.T) {
	f := newRoomFixture(t)
	host := f.user(t, "alice")
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateRoomInput
		kind Kind
	}{
		{"min above max", CreateRoomInput{GameID: f.game.ID, MinSlot: 5, MaxSlot: 2}, KindBadRequest},
		{"max above ceiling", CreateRoomInput{GameID: f.game.ID, MinSlot: 1, MaxSlot: 101}, KindBadRequest},
		{"zero max", CreateRoomInput{GameID: f.game.ID, MinSlot: 1}, KindBadRequest},
		{"bad play type", CreateRoomInput{GameID: f.game.ID, MaxSlot: 2, TypePlay: "ranked"}, KindBadRequest},
		{"unknown game", CreateRoomInput{GameID: uuid.New(), MaxSlot: 2}, KindNotFound},
		{"past schedule", CreateRoomInput{GameID: f.game.ID, MaxSlot: 2, ScheduledAt: ptr(f.now.Add(-time.Hour))}, KindBadRequest},
		{"rank bounds inverted", CreateRoomInput{
			GameID: f.game.ID, MaxSlot: 2, RankMinID: &f.game.Ranks[3].ID, RankMaxID: &f.game.Ranks[0].ID,
		}, KindBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateRoom(ctx, host.ID, tt.in)
			assertKind(t, err, tt.kind, "")
		})
	}

	other := testutil.CreateGame(t, f.db, "Dota 2", "Herald")
	_, err := f.svc.CreateRoom(ctx, host.ID, CreateRoomInput{GameID: f.game.ID, MaxSlot: 2, RankMinID: &other.Ranks[0].ID})
	assertKind(t, err, KindBadRequest, "Rank does not belong to this game")
}

func TestCreateRoomOneActiveLobbyPerHost(t *testing.T) {
	f := newRoomFixture(t)
	host := f.user(t, "alice")
	ctx := context.Background()

	room1 := f.createRoom(t, host, func(in *CreateRoomInput) { in.ExpiresAt = ptr(f.now.Add(5 * time.Minute)) })

	_, err := f.svc.CreateRoom(ctx, host.ID, CreateRoomInput{GameID: f.game.ID, MaxSlot: 2})
	assertKind(t, err, KindConflict, "")
	assert.Contains(t, MessageOf(err), room1.ID.String())
	assert.Equal(t, CodeActiveRoom, CodeOf(err))

	// Once the first lobby has expired the host may open another.
	f.now = f.now.Add(6 * time.Minute)
	room2 := f.createRoom(t, host)

	closed := models.RoomStatusClosed
	_, err = f.svc.UpdateRoom(ctx, host.ID, room2.ID, UpdateRoomInput{Status: &closed})
	require.NoError(t, err)
	f.createRoom(t, host)
}

func TestJoinPublicRoomUntilFull(t *testing.T) {
	f := newRoomFixture(t)
	a, b, c := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	ctx := context.Background()

	room := f.createRoom(t, a, func(in *CreateRoomInput) {
		in.MinSlot = 2
		in.MaxSlot = 2
	})

	res, err := f.svc.JoinRoom(ctx, b.ID, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, res.Request.Status)
	assert.Equal(t, "Successfully joined the room", res.Message)
	assert.EqualValues(t, 2, f.occupied(t, room.ID))

	_, err = f.svc.JoinRoom(ctx, c.ID, room.ID)
	assertKind(t, err, KindBadRequest, "Room is full")
	assert.Equal(t, CodeRoomFull, CodeOf(err))

	detail, err := f.svc.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, detail.IsFull)
	assert.EqualValues(t, 2, detail.ParticipantsCount)
	require.Len(t, detail.Participants, 2)
	assert.True(t, detail.Participants[0].IsHost)
}

func TestJoinPrivateRoomApproveThenLeave(t *testing.T) {
	f := newRoomFixture(t)
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	room := f.createRoom(t, a, private)

	res, err := f.svc.JoinRoom(ctx, b.ID, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, res.Request.Status)
	assert.Equal(t, "Join request sent, waiting for host approval", res.Message)
	assert.EqualValues(t, 1, f.occupied(t, room.ID))

	approved, err := f.svc.ApproveRoomRequest(ctx, a.ID, res.Request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, approved.Status)
	assert.EqualValues(t, 2, f.occupied(t, room.ID))

	require.NoError(t, f.svc.LeaveRoom(ctx, b.ID, room.ID))
	assert.EqualValues(t, 1, f.occupied(t, room.ID))

	_, err = f.db.FindActiveRequest(room.ID, b.ID)
	assert.Error(t, err)

	// Leaving is not punitive.
	res, err = f.svc.JoinRoom(ctx, b.ID, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, res.Request.Status)

	assert.Equal(t, []RoomEventType{
		EventRoomCreated, EventPlayerRequested, EventRequestApproved, EventPlayerLeft, EventPlayerRequested,
	}, f.rec.types())
}

func TestJoinRefusals(t *testing.T) {
	f := newRoomFixture(t)
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	_, err := f.svc.JoinRoom(ctx, b.ID, uuid.New())
	assertKind(t, err, KindNotFound, "Room not found")

	room := f.createRoom(t, a, private)

	_, err = f.svc.JoinRoom(ctx, a.ID, room.ID)
	assertKind(t, err, KindBadRequest, "")
	assert.Equal(t, CodeIsHost, CodeOf(err))

	_, err = f.svc.JoinRoom(ctx, b.ID, room.ID)
	require.NoError(t, err)
	_, err = f.svc.JoinRoom(ctx, b.ID, room.ID)
	assertKind(t, err, KindConflict, "")
	assert.Equal(t, CodeAlreadyPending, CodeOf(err))

	inProgress := models.RoomStatusInProgress
	_, err = f.svc.UpdateRoom(ctx, a.ID, room.ID, UpdateRoomInput{Status: &inProgress})
	require.NoError(t, err)
	_, err = f.svc.JoinRoom(ctx, f.user(t, "carol").ID, room.ID)
	assertKind(t, err, KindBadRequest, "Room is not open for joining")
}

func TestJoinAlreadyMember(t *testing.T) {
	f := newRoomFixture(t)
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	room := f.createRoom(t, a)
	_, err := f.svc.JoinRoom(ctx, b.ID, room.ID)
	require.NoError(t, err)

	_, err = f.svc.JoinRoom(ctx, b.ID, room.ID)
	assertKind(t, err, KindConflict, "You are already a member of this room")
	assert.Equal(t, CodeAlreadyMember, CodeOf(err))
}

func TestJoinExpiredRoomStillFlaggedOpen(t *testing.T) {
	f := newRoomFixture(t)
	a, b := f.user(t, "alice"), f.user(t, "bob")

	room := f.createRoom(t, a, func(in *CreateRoomInput) { in.ExpiresAt = ptr(f.now.Add(5 * time.Minute)) })
	f.now = f.now.Add(5 * time.Minute)

	_, err := f.svc.JoinRoom(context.Background(), b.ID, room.ID)
	assertKind(t, err, KindBadRequest, "")
	assert.Equal(t, CodeRoomExpired, CodeOf(err))

	stored, err := f.db.GetRoom(room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusOpen, stored.Status)
}

func TestKickIsPermanent(t *testing.T) {
	f := newRoomFixture(t)
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	room := f.createRoom(t, a)
	_, err := f.svc.JoinRoom(ctx, b.ID, room.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.KickPlayer(ctx, a.ID, room.ID, b.ID))
	assert.EqualValues(t, 1, f.occupied(t, room.ID))

	rejected, err := f.db.FindRejectedRequest(room.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, rejected.DeletedAt.Valid)

	for i := 0; i < 2; i++ {
		_, err = f.svc.JoinRoom(ctx, b.ID, room.ID)
		assertKind(t, err, KindBadRequest, "")
		assert.Equal(t, CodeBlocked, CodeOf(err))
	}
}

func TestKickRefusals(t *testing.T) {
	f := newRoomFixture(t)
	a, b, c := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	ctx := context.Background()

	room := f.createRoom(t, a)
	_, err := f.svc.JoinRoom(ctx, b.ID, room.ID)
	require.NoError(t, err)

	assertKind(t, f.svc.KickPlayer(ctx, b.ID, room.ID, a.ID), KindForbidden, "Only the room host can kick players")
	assertKind(t, f.svc.KickPlayer(ctx, a.ID, room.ID, a.ID), KindBadRequest, "You cannot kick yourself from your own room")
	assertKind(t, f.svc.KickPlayer(ctx, a.ID, room.ID, c.ID), KindNotFound, "User is not in this room")
	assertKind(t, f.svc.KickPlayer(ctx, a.ID, uuid.New(), b.ID), KindNotFound, "Room not found")
}

func TestRejectBlocksRejoin(t *testing.T) {
	f := newRoomFixture(t)
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	room := f.createRoom(t, a, private)
	res, err := f.svc.JoinRoom(ctx, b.ID, room.ID)
	require.NoError(t, err)

	rejected, err := f.svc.RejectRoomRequest(ctx, a.ID, res.Request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusRejected, rejected.Status)

	_, err = f.svc.JoinRoom(ctx, b.ID, room.ID)
	assertKind(t, err, KindBadRequest, "")
	assert.Equal(t, CodeBlocked, CodeOf(err))

	// A rejected user leaving does not clear the block.
	assertKind(t, f.svc.LeaveRoom(ctx, b.ID, room.ID), KindNotFound, "You are not a member of this room")
	_, err = f.svc.JoinRoom(ctx, b.ID, room.ID)
	assert.Equal(t, CodeBlocked, CodeOf(err))
}

func TestResolveRequestRefusals(t *testing.T) {
	f := newRoomFixture(t)
	a, b, c := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	ctx := context.Background()

	room := f.createRoom(t, a, private, maxSlot(2))
	resB, err := f.svc.JoinRoom(ctx, b.ID, room.ID)
	require.NoError(t, err)
	resC, err := f.svc.JoinRoom(ctx, c.ID, room.ID)
	require.NoError(t, err)

	_, err = f.svc.ApproveRoomRequest(ctx, b.ID, resC.Request.ID)
	assertKind(t, err, KindForbidden, "Only the room host can approve requests")
	_, err = f.svc.RejectRoomRequest(ctx, c.ID, resB.Request.ID)
	assertKind(t, err, KindForbidden, "Only the room host can reject requests")
	_, err = f.svc.ApproveRoomRequest(ctx, a.ID, uuid.New())
	assertKind(t, err, KindNotFound, "")

	_, err = f.svc.ApproveRoomRequest(ctx, a.ID, resB.Request.ID)
	require.NoError(t, err)
	_, err = f.svc.ApproveRoomRequest(ctx, a.ID, resB.Request.ID)
	assertKind(t, err, KindBadRequest, "This request has already been accepted")
	_, err = f.svc.RejectRoomRequest(ctx, a.ID, resB.Request.ID)
	assertKind(t, err, KindBadRequest, "This request has already been accepted")

	// Capacity is checked again at approval time.
	_, err = f.svc.ApproveRoomRequest(ctx, a.ID, resC.Request.ID)
	assertKind(t, err, KindBadRequest, "Room is full, cannot accept more players")

	_, err = f.svc.RejectRoomRequest(ctx, a.ID, resC.Request.ID)
	require.NoError(t, err)
	_, err = f.svc.RejectRoomRequest(ctx, a.ID, resC.Request.ID)
	assertKind(t, err, KindBadRequest, "This request has already been rejected")

	hostReq, err := f.db.FindActiveRequest(room.ID, a.ID)
	require.NoError(t, err)
	_, err = f.svc.ApproveRoomRequest(ctx, a.ID, hostReq.ID)
	assertKind(t, err, KindBadRequest, "")
}

func TestApproveOnPublicRoomRefused(t *testing.T) {
	f := newRoomFixture(t)
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	room := f.createRoom(t, a)
	res, err := f.svc.JoinRoom(ctx, b.ID, room.ID)
	require.NoError(t, err)

	_, err = f.svc.ApproveRoomRequest(ctx, a.ID, res.Request.ID)
	assertKind(t, err, KindBadRequest, "Public rooms do not require manual approval")
}

func TestHostCannotLeave(t *testing.T) {
	f := newRoomFixture(t)
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	room := f.createRoom(t, a)

	assertKind(t, f.svc.LeaveRoom(ctx, a.ID, room.ID), KindForbidden, "Host cannot leave the room. Please delete the room instead.")
	assertKind(t, f.svc.LeaveRoom(ctx, b.ID, room.ID), KindNotFound, "You are not a member of this room")
}

func TestReportPlayer(t *testing.T) {
	f := newRoomFixture(t)
	a, b, c := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	ctx := context.Background()
	reason := "griefing the whole match"

	room := f.createRoom(t, a)
	_, err := f.svc.JoinRoom(ctx, b.ID, room.ID)
	require.NoError(t, err)

	report, err := f.svc.ReportPlayer(ctx, a.ID, room.ID, b.ID, reason)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, report.Status)

	_, err = f.svc.ReportPlayer(ctx, a.ID, room.ID, b.ID, reason)
	assertKind(t, err, KindBadRequest, "You have already reported this player in this room")

	_, err = f.svc.ReportPlayer(ctx, a.ID, room.ID, a.ID, reason)
	assertKind(t, err, KindBadRequest, "You cannot report yourself")

	_, err = f.svc.ReportPlayer(ctx, c.ID, room.ID, b.ID, reason)
	assertKind(t, err, KindBadRequest, "You must be a member of this room to report players")

	_, err = f.svc.ReportPlayer(ctx, b.ID, room.ID, c.ID, reason)
	assertKind(t, err, KindNotFound, "The reported user is not in this room")

	_, err = f.svc.ReportPlayer(ctx, b.ID, room.ID, a.ID, "short")
	assertKind(t, err, KindBadRequest, "")

	// Past members can still report and be reported.
	require.NoError(t, f.svc.KickPlayer(ctx, a.ID, room.ID, b.ID))
	_, err = f.svc.ReportPlayer(ctx, b.ID, room.ID, a.ID, reason)
	require.NoError(t, err)
}

func TestUpdateRoom(t *testing.T) {
	f := newRoomFixture(t)
	a, b, c := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	ctx := context.Background()

	room := f.createRoom(t, a)
	for _, u := range []*models.User{b, c} {
		_, err := f.svc.JoinRoom(ctx, u.ID, room.ID)
		require.NoError(t, err)
	}

	_, err := f.svc.UpdateRoom(ctx, b.ID, room.ID, UpdateRoomInput{MaxSlot: ptr(5)})
	assertKind(t, err, KindForbidden, "You are not authorized to update this room")

	_, err = f.svc.UpdateRoom(ctx, a.ID, room.ID, UpdateRoomInput{MaxSlot: ptr(2)})
	assertKind(t, err, KindBadRequest, "Max slot cannot be lower than the current number of players (3)")

	_, err = f.svc.UpdateRoom(ctx, a.ID, room.ID, UpdateRoomInput{MinSlot: ptr(6)})
	assertKind(t, err, KindBadRequest, "Min slot cannot be greater than max slot")

	missing := uuid.New()
	_, err = f.svc.UpdateRoom(ctx, a.ID, room.ID, UpdateRoomInput{GameID: &missing})
	assertKind(t, err, KindNotFound, "Game not found")

	code := "ABC-123"
	updated, err := f.svc.UpdateRoom(ctx, a.ID, room.ID, UpdateRoomInput{
		MaxSlot:   ptr(6),
		RoomCode:  &code,
		RankMinID: &f.game.Ranks[1].ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.MaxSlot)
	assert.Equal(t, 1, updated.MinSlot)
	assert.Equal(t, code, *updated.RoomCode)
	require.NotNil(t, updated.RankMin)
	assert.Equal(t, "Bronze", updated.RankMin.Name)
	assert.Equal(t, models.TypePlayCasual, updated.TypePlay)
}

func TestUpdateRoomPublicSwitchWaitsForPendingRequests(t *testing.T) {
	f := newRoomFixture(t)
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	room := f.createRoom(t, a, private)
	res, err := f.svc.JoinRoom(ctx, b.ID, room.ID)
	require.NoError(t, err)

	public := models.RoomTypePublic
	_, err = f.svc.UpdateRoom(ctx, a.ID, room.ID, UpdateRoomInput{RoomType: &public})
	assertKind(t, err, KindBadRequest, "Resolve the 1 pending join request(s) before making the room public")

	// The pending row can still be resolved after the refused switch.
	_, err = f.svc.ApproveRoomRequest(ctx, a.ID, res.Request.ID)
	require.NoError(t, err)

	updated, err := f.svc.UpdateRoom(ctx, a.ID, room.ID, UpdateRoomInput{RoomType: &public})
	require.NoError(t, err)
	assert.Equal(t, models.RoomTypePublic, updated.RoomType)
	assert.EqualValues(t, 2, f.occupied(t, room.ID))
}

func TestUpdateRoomClearsRanks(t *testing.T) {
	f := newRoomFixture(t)
	a := f.user(t, "alice")
	ctx := context.Background()

	room := f.createRoom(t, a, func(in *CreateRoomInput) {
		in.RankMinID = &f.game.Ranks[1].ID
		in.RankMaxID = &f.game.Ranks[3].ID
	})
	require.NotNil(t, room.RankMinID)
	require.NotNil(t, room.RankMaxID)

	updated, err := f.svc.UpdateRoom(ctx, a.ID, room.ID, UpdateRoomInput{ClearRankMin: true})
	require.NoError(t, err)
	assert.Nil(t, updated.RankMinID)
	require.NotNil(t, updated.RankMaxID)
	assert.Equal(t, f.game.Ranks[3].ID, *updated.RankMaxID)

	// A new bound sent with the clear wins.
	updated, err = f.svc.UpdateRoom(ctx, a.ID, room.ID, UpdateRoomInput{
		ClearRankMax: true,
		RankMaxID:    &f.game.Ranks[2].ID,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.RankMaxID)
	assert.Equal(t, f.game.Ranks[2].ID, *updated.RankMaxID)

	updated, err = f.svc.UpdateRoom(ctx, a.ID, room.ID, UpdateRoomInput{ClearRankMax: true})
	require.NoError(t, err)
	assert.Nil(t, updated.RankMinID)
	assert.Nil(t, updated.RankMaxID)
}

func TestResolutionLostToConcurrentWrite(t *testing.T) {
	f := newRoomFixture(t)
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	room := f.createRoom(t, a, private)
	res, err := f.svc.JoinRoom(ctx, b.ID, room.ID)
	require.NoError(t, err)

	// Another host session resolves the row first; the guarded write then
	// matches nothing.
	require.NoError(t, f.db.ResolveRequest(res.Request.ID, models.RequestStatusRejected))
	err = f.db.ResolveRequest(res.Request.ID, models.RequestStatusAccepted)
	require.Error(t, err)

	assertKind(t, resolutionErr(err), KindBadRequest, "This request has already been processed")
	assertKind(t, resolutionErr(errors.New("connection reset")), KindInternal, "")
}

func TestDeleteRoomCascadesToRequests(t *testing.T) {
	f := newRoomFixture(t)
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	room := f.createRoom(t, a)
	_, err := f.svc.JoinRoom(ctx, b.ID, room.ID)
	require.NoError(t, err)

	assertKind(t, f.svc.DeleteRoom(ctx, b.ID, room.ID), KindForbidden, "You are not authorized to delete this room")
	require.NoError(t, f.svc.DeleteRoom(ctx, a.ID, room.ID))

	_, err = f.svc.GetRoom(ctx, room.ID)
	assertKind(t, err, KindNotFound, "Room not found")
	assert.EqualValues(t, 0, f.occupied(t, room.ID))

	// The host is free to open a new lobby.
	f.createRoom(t, a)
}

func TestNotifierFailureDoesNotFailOperation(t *testing.T) {
	f := newRoomFixture(t)
	f.rec.err = errors.New("chat unavailable")
	a, b := f.user(t, "alice"), f.user(t, "bob")

	room := f.createRoom(t, a)
	_, err := f.svc.JoinRoom(context.Background(), b.ID, room.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, f.occupied(t, room.ID))
}

func TestConcurrentJoinsNeverOverbook(t *testing.T) {
	f := newRoomFixture(t)
	host := f.user(t, "host")
	room := f.createRoom(t, host, maxSlot(3))

	const players = 10
	users := make([]*models.User, players)
	for i := range users {
		users[i] = f.user(t, fmt.Sprintf("player%d", i))
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		joined   int
		refusals int
	)
	for _, u := range users {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := f.svc.JoinRoom(context.Background(), id, room.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				joined++
			} else if CodeOf(err) == CodeRoomFull {
				refusals++
			}
		}(u.ID)
	}
	wg.Wait()

	assert.Equal(t, 2, joined)
	assert.Equal(t, players-2, refusals)
	assert.EqualValues(t, 3, f.occupied(t, room.ID))
}

func TestGetRoomRequestsHostOnly(t *testing.T) {
	f := newRoomFixture(t)
	a, b, c := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	ctx := context.Background()

	room := f.createRoom(t, a, private)
	resB, err := f.svc.JoinRoom(ctx, b.ID, room.ID)
	require.NoError(t, err)
	_, err = f.svc.JoinRoom(ctx, c.ID, room.ID)
	require.NoError(t, err)
	_, err = f.svc.RejectRoomRequest(ctx, a.ID, resB.Request.ID)
	require.NoError(t, err)

	_, err = f.svc.GetRoomRequests(ctx, b.ID, room.ID)
	assertKind(t, err, KindForbidden, "")

	reqs, err := f.svc.GetRoomRequests(ctx, a.ID, room.ID)
	require.NoError(t, err)
	assert.Equal(t, RequestCounts{Total: 3, Pending: 1, Accepted: 1, Rejected: 1}, reqs.Counts)
}

func TestListRooms(t *testing.T) {
	f := newRoomFixture(t)
	ctx := context.Background()

	a, b := f.user(t, "alice"), f.user(t, "bob")
	publicRoom := f.createRoom(t, a)
	f.createRoom(t, b, private)
	_, err := f.svc.JoinRoom(ctx, b.ID, publicRoom.ID)
	require.NoError(t, err)

	page, err := f.svc.ListRooms(ctx, RoomFilter{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.EqualValues(t, 2, page.Meta.Total)
	assert.Equal(t, 2, page.Meta.TotalPages)
	assert.True(t, page.Meta.HasNextPage)
	assert.False(t, page.Meta.HasPreviousPage)

	page, err = f.svc.ListRooms(ctx, RoomFilter{RoomType: models.RoomTypePublic})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, publicRoom.ID, page.Data[0].ID)
	assert.EqualValues(t, 2, page.Data[0].ParticipantsCount)
	assert.Equal(t, "alice", page.Data[0].Host.Username)
}

func TestExtendExpiry(t *testing.T) {
	f := newRoomFixture(t)
	a, b := f.user(t, "alice"), f.user(t, "bob")
	ctx := context.Background()

	room := f.createRoom(t, a, func(in *CreateRoomInput) { in.ExpiresAt = ptr(f.now.Add(time.Minute)) })
	f.now = f.now.Add(2 * time.Minute)

	_, err := f.svc.ExtendExpiry(ctx, b.ID, room.ID, 5*time.Minute)
	assertKind(t, err, KindForbidden, "")

	bumped, err := f.svc.ExtendExpiry(ctx, a.ID, room.ID, 5*time.Minute)
	require.NoError(t, err)
	require.NotNil(t, bumped.ExpiresAt)
	assert.True(t, bumped.ExpiresAt.Equal(f.now.Add(5*time.Minute)))
	require.NotNil(t, bumped.LastBumpedAt)
	assert.False(t, bumped.ExpiredAt(f.now))

	_, err = f.svc.JoinRoom(ctx, b.ID, room.ID)
	require.NoError(t, err)

	completed := models.RoomStatusCompleted
	_, err = f.svc.UpdateRoom(ctx, a.ID, room.ID, UpdateRoomInput{Status: &completed})
	require.NoError(t, err)
	_, err = f.svc.ExtendExpiry(ctx, a.ID, room.ID, 5*time.Minute)
	assertKind(t, err, KindBadRequest, "You cannot bump a closed or completed room.")
}

func TestListExpiringOnlyRenderedOpenRooms(t *testing.T) {
	f := newRoomFixture(t)
	ctx := context.Background()

	a, b := f.user(t, "alice"), f.user(t, "bob")
	rendered := f.createRoom(t, a, func(in *CreateRoomInput) { in.ExpiresAt = ptr(f.now.Add(time.Minute)) })
	require.NoError(t, f.svc.AttachPresentation(ctx, rendered.ID, "chan", "msg"))
	f.createRoom(t, b, func(in *CreateRoomInput) { in.ExpiresAt = ptr(f.now.Add(time.Minute)) })

	rooms, err := f.svc.ListExpiring(ctx, f.now, f.now.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, rendered.ID, rooms[0].ID)

	rooms, err = f.svc.ListExpiring(ctx, f.now.Add(2*time.Minute), f.now.Add(3*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func ptr[T any](v T) *T {
	return &v
}
