package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/Faisd405/ayomabar-be/internal/services"
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

const (
	defaultMaxPlayers = 4
	defaultMinPlayers = 1
)

func floatPtr(v float64) *float64 { return &v }

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "room",
		Description: "Create a new game room",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "game_id",
				Description: "ID of the game (see /games)",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "room_code",
				Description: "Invite link or in-game room code",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "max_players",
				Description: "Maximum number of players (default 4)",
				MinValue:    floatPtr(models.MinSlotFloor),
				MaxValue:    models.MaxSlotCeiling,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "min_players",
				Description: "Minimum number of players (default 1)",
				MinValue:    floatPtr(models.MinSlotFloor),
				MaxValue:    models.MaxSlotCeiling,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "type_play",
				Description: "Play style",
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Casual", Value: string(models.TypePlayCasual)},
					{Name: "Competitive", Value: string(models.TypePlayCompetitive)},
					{Name: "Custom", Value: string(models.TypePlayCustom)},
					{Name: "Tournament", Value: string(models.TypePlayTournament)},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "room_type",
				Description: "Public rooms accept everyone, private rooms need host approval",
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Public", Value: string(models.RoomTypePublic)},
					{Name: "Private", Value: string(models.RoomTypePrivate)},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "scheduled_at",
				Description: "Start time, e.g. 2026-05-01 20:00 (UTC) or RFC 3339",
			},
		},
	},
	{
		Name:        "games",
		Description: "List available games",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "page",
				Description: "Page number",
				MinValue:    floatPtr(1),
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "search",
				Description: "Filter by title",
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "genre",
				Description: "Filter by genre",
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "platform",
				Description: "Filter by platform",
			},
		},
	},
	{
		Name:        "game",
		Description: "Show details about a game",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "id",
				Description: "ID of the game (see /games)",
				Required:    true,
			},
		},
	},
}

var scheduleLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"}

// roomInput turns /room options into a create request. The lobby window is
// applied as the expiry.
func roomInput(opts []*discordgo.ApplicationCommandInteractionDataOption, now time.Time, window time.Duration) (services.CreateRoomInput, error) {
	in := services.CreateRoomInput{
		MinSlot:  defaultMinPlayers,
		MaxSlot:  defaultMaxPlayers,
		TypePlay: models.TypePlayCasual,
		RoomType: models.RoomTypePublic,
	}
	expires := now.Add(window)
	in.ExpiresAt = &expires

	for _, opt := range opts {
		switch opt.Name {
		case "game_id":
			id, err := uuid.Parse(strings.TrimSpace(opt.StringValue()))
			if err != nil {
				return in, services.BadRequest("Game ID must be a valid ID from /games")
			}
			in.GameID = id
		case "room_code":
			code := strings.TrimSpace(opt.StringValue())
			if code != "" {
				in.RoomCode = &code
			}
		case "max_players":
			in.MaxSlot = int(opt.IntValue())
		case "min_players":
			in.MinSlot = int(opt.IntValue())
		case "type_play":
			in.TypePlay = models.TypePlay(opt.StringValue())
		case "room_type":
			in.RoomType = models.RoomType(opt.StringValue())
		case "scheduled_at":
			at, err := parseSchedule(opt.StringValue())
			if err != nil {
				return in, err
			}
			in.ScheduledAt = &at
		}
	}

	if in.GameID == uuid.Nil {
		return in, services.BadRequest("Game ID is required")
	}
	if in.MinSlot > in.MaxSlot {
		return in, services.BadRequest(fmt.Sprintf(
			"Minimum players (%d) cannot be greater than maximum players (%d).", in.MinSlot, in.MaxSlot))
	}
	return in, nil
}

func gameFilter(opts []*discordgo.ApplicationCommandInteractionDataOption) services.GameFilter {
	return services.GameFilter{
		Search:    strings.TrimSpace(stringOption(opts, "search")),
		Genre:     strings.TrimSpace(stringOption(opts, "genre")),
		Platform:  strings.TrimSpace(stringOption(opts, "platform")),
		SortBy:    "title",
		SortOrder: "asc",
		Page:      intOption(opts, "page", 1),
		Limit:     10,
	}
}

func gameIDOption(opts []*discordgo.ApplicationCommandInteractionDataOption) (uuid.UUID, error) {
	raw := strings.TrimSpace(stringOption(opts, "id"))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, services.BadRequest(fmt.Sprintf("No game found with ID: %s", raw))
	}
	return id, nil
}

func parseSchedule(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, services.BadRequest("Scheduled time must look like 2026-05-01 20:00")
}

func intOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string, fallback int) int {
	for _, opt := range opts {
		if opt.Name == name {
			return int(opt.IntValue())
		}
	}
	return fallback
}

func stringOption(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range opts {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}
