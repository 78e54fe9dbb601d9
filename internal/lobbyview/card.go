package lobbyview

import (
	"fmt"
	"strings"
	"time"

	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/Faisd405/ayomabar-be/internal/services"
	"github.com/google/uuid"
)

const (
	ColorError   = 0xFF6B6B
	ColorInfo    = 0x5865F2
	ColorSuccess = 0x57F287
	ColorWarning = 0xFEE75C
	ColorDanger  = 0xED4245
)

type ControlStyle int

const (
	StylePrimary ControlStyle = iota
	StyleSecondary
	StyleSuccess
	StyleDanger
)

type Field struct {
	Name   string
	Value  string
	Inline bool
}

type Control struct {
	ID       string
	Label    string
	Style    ControlStyle
	Disabled bool
}

// Card is a transport-neutral rendering of a room.
type Card struct {
	Title       string
	Description string
	Color       int
	Fields      []Field
	Footer      string
	Timestamp   *time.Time
	Controls    []Control
}

type Variant int

const (
	VariantLobby Variant = iota
	VariantCreated
	VariantBumped
)

type Action string

const (
	ActionJoin Action = "join_room_"
	ActionInfo Action = "room_info_"
	ActionBump Action = "bump_room_"
)

func ControlID(action Action, roomID uuid.UUID) string {
	return string(action) + roomID.String()
}

// ParseControlID splits a control id back into its action and room.
func ParseControlID(id string) (Action, uuid.UUID, error) {
	for _, action := range []Action{ActionJoin, ActionInfo, ActionBump} {
		if rest, ok := strings.CutPrefix(id, string(action)); ok {
			roomID, err := uuid.Parse(rest)
			if err != nil {
				return "", uuid.Nil, fmt.Errorf("control %q: %w", id, err)
			}
			return action, roomID, nil
		}
	}
	return "", uuid.Nil, fmt.Errorf("unknown control %q", id)
}

// LobbyOptions tweak the lobby card for the moment it is rendered.
type LobbyOptions struct {
	Variant  Variant
	BumpedBy string
}

// BuildLobbyCard renders the public lobby message with its join, info and
// bump controls.
func BuildLobbyCard(d *services.RoomDetail, now time.Time, opts LobbyOptions) Card {
	state := JoinStateOf(d.Room, d.ParticipantsCount, now)

	card := Card{
		Title:       "🎮 Room Lobby",
		Description: fmt.Sprintf("**%s** room is open for players!", d.Game.Title),
		Color:       ColorInfo,
		Footer:      "Created by " + d.Host.Username,
		Timestamp:   &now,
	}
	switch opts.Variant {
	case VariantCreated:
		card.Title = "🎮 Room Created Successfully!"
		card.Description = fmt.Sprintf("**%s** room is now open for players!", d.Game.Title)
		card.Color = ColorSuccess
	case VariantBumped:
		card.Title = "🎮 Room Lobby (Bumped)"
		if opts.BumpedBy != "" {
			card.Footer += " • Bumped by " + opts.BumpedBy
		}
	}
	if state == JoinStateExpired {
		card.Title = "🔒 Room Lobby (Expired)"
		card.Description = fmt.Sprintf("**%s** room is no longer accepting players.", d.Game.Title)
		card.Color = ColorDanger
	}

	status := strings.ToUpper(string(d.Status))
	if state == JoinStateExpired && !d.Status.Terminal() {
		status = "EXPIRED"
	}
	card.Fields = append(card.Fields,
		Field{Name: "🆔 Room ID", Value: d.ID.String(), Inline: true},
		Field{Name: "👥 Players", Value: fmt.Sprintf("%d/%d", d.ParticipantsCount, d.MaxSlot), Inline: true},
		Field{Name: "🎯 Min Players", Value: fmt.Sprint(d.MinSlot), Inline: true},
		Field{Name: "🎲 Type", Value: strings.ToUpper(string(d.TypePlay)), Inline: true},
		Field{Name: "🔓 Visibility", Value: strings.ToUpper(string(d.RoomType)), Inline: true},
		Field{Name: "📊 Status", Value: status, Inline: true},
	)
	if d.RankMin != nil || d.RankMax != nil {
		card.Fields = append(card.Fields, Field{Name: "🏅 Rank", Value: rankRange(d), Inline: true})
	}
	if d.RoomCode != nil && *d.RoomCode != "" && d.RoomType != models.RoomTypePrivate {
		card.Fields = append(card.Fields, Field{Name: "🔑 Room Code", Value: "`" + *d.RoomCode + "`"})
	}
	if d.ScheduledAt != nil {
		card.Fields = append(card.Fields, Field{Name: "📅 Scheduled At", Value: discordTime(*d.ScheduledAt, "F")})
	}
	if d.ExpiresAt != nil {
		card.Fields = append(card.Fields, Field{Name: "⏰ Expires At", Value: expiryText(*d.ExpiresAt, state == JoinStateExpired)})
	}

	card.Controls = lobbyControls(d, state)
	return card
}

func lobbyControls(d *services.RoomDetail, state JoinState) []Control {
	join := Control{ID: ControlID(ActionJoin, d.ID)}
	switch state {
	case JoinStateExpired:
		join.Label, join.Style, join.Disabled = "Expired - Cannot Join", StyleDanger, true
	case JoinStateFull:
		join.Label, join.Style, join.Disabled = "Room Full", StyleSecondary, true
	default:
		join.Label, join.Style = "Join Room", StyleSuccess
	}

	return []Control{
		join,
		{ID: ControlID(ActionInfo, d.ID), Label: "Room Info", Style: StylePrimary},
		{ID: ControlID(ActionBump, d.ID), Label: "Bump", Style: StyleSecondary, Disabled: state == JoinStateExpired},
	}
}

// BuildInfoCard renders the private details reply for the info control.
func BuildInfoCard(d *services.RoomDetail, now time.Time) Card {
	card := Card{
		Title:       "🎮 Room Details",
		Description: fmt.Sprintf("**%s**\nRoom `%s`", d.Game.Title, d.ID),
		Color:       ColorInfo,
		Footer:      "Room created at",
		Timestamp:   &d.CreatedAt,
	}
	card.Fields = append(card.Fields,
		Field{Name: "👑 Host", Value: d.Host.Username, Inline: true},
		Field{Name: "👥 Players", Value: fmt.Sprintf("%d/%d", d.ParticipantsCount, d.MaxSlot), Inline: true},
		Field{Name: "🎯 Min Players", Value: fmt.Sprint(d.MinSlot), Inline: true},
		Field{Name: "🎲 Type", Value: strings.ToUpper(string(d.TypePlay)), Inline: true},
		Field{Name: "🔓 Visibility", Value: strings.ToUpper(string(d.RoomType)), Inline: true},
		Field{Name: "📊 Status", Value: strings.ToUpper(string(d.Status)), Inline: true},
	)
	if d.RoomCode != nil && *d.RoomCode != "" {
		card.Fields = append(card.Fields, Field{Name: "🔑 Room Code", Value: "`" + *d.RoomCode + "`"})
	}
	if d.ScheduledAt != nil {
		card.Fields = append(card.Fields, Field{Name: "📅 Scheduled At", Value: discordTime(*d.ScheduledAt, "F")})
	}
	if d.ExpiresAt != nil {
		expired := IsExpired(d.Status, d.ExpiresAt, now)
		name := "⏰ Expiration Status"
		if expired {
			name = "🔒 Expiration Status"
		}
		card.Fields = append(card.Fields, Field{Name: name, Value: expiryText(*d.ExpiresAt, expired)})
	}
	if len(d.Participants) > 0 {
		lines := make([]string, 0, len(d.Participants))
		for _, p := range d.Participants {
			line := "• " + p.User.Username
			if p.IsHost {
				line += " 👑"
			}
			lines = append(lines, line)
		}
		card.Fields = append(card.Fields, Field{Name: "✅ Current Players", Value: strings.Join(lines, "\n")})
	}
	if d.PendingCount > 0 && d.RoomType == models.RoomTypePrivate {
		card.Fields = append(card.Fields, Field{Name: "⏳ Pending Requests", Value: fmt.Sprint(d.PendingCount), Inline: true})
	}
	return card
}

func rankRange(d *services.RoomDetail) string {
	low, high := "Any", "Any"
	if d.RankMin != nil {
		low = d.RankMin.Name
	}
	if d.RankMax != nil {
		high = d.RankMax.Name
	}
	return low + " - " + high
}

func expiryText(at time.Time, expired bool) string {
	if expired {
		return "❌ Expired at " + discordTime(at, "F")
	}
	return discordTime(at, "R") + " (" + discordTime(at, "F") + ")"
}

// discordTime formats a timestamp token that chat clients render in the
// reader's locale.
func discordTime(t time.Time, style string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}
