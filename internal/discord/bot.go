// Package discord is the chat surface: slash commands and lobby buttons on
// top of the room services.
package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Faisd405/ayomabar-be/internal/lobbyview"
	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/Faisd405/ayomabar-be/internal/services"
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const interactionTimeout = 10 * time.Second

type Bot struct {
	session *discordgo.Session
	guildID string

	users  *services.UserService
	rooms  *services.RoomService
	games  *services.GameService
	syncer *lobbyview.Syncer
	log    *logrus.Logger

	registered []*discordgo.ApplicationCommand
}

// NewSession creates an unopened gateway session for a bot token.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	return session, nil
}

func NewBot(
	session *discordgo.Session,
	guildID string,
	users *services.UserService,
	rooms *services.RoomService,
	games *services.GameService,
	syncer *lobbyview.Syncer,
	log *logrus.Logger,
) *Bot {
	b := &Bot{
		session: session,
		guildID: guildID,
		users:   users,
		rooms:   rooms,
		games:   games,
		syncer:  syncer,
		log:     log,
	}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	return b
}

// Start opens the gateway and registers the slash commands.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	registered, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, commands)
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	b.registered = registered
	b.log.WithField("count", len(registered)).Info("discord commands registered")
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.log.WithField("bot_user", r.User.Username).Info("discord bot ready")
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch data := i.ApplicationCommandData(); data.Name {
		case "room":
			b.handleRoomCommand(ctx, s, i, data.Options)
		case "games":
			b.handleGamesCommand(ctx, s, i, data.Options)
		case "game":
			b.handleGameCommand(ctx, s, i, data.Options)
		}
	case discordgo.InteractionMessageComponent:
		action, roomID, err := lobbyview.ParseControlID(i.MessageComponentData().CustomID)
		if err != nil {
			b.log.WithError(err).Debug("ignoring unknown component")
			return
		}
		switch action {
		case lobbyview.ActionJoin:
			b.handleJoin(ctx, s, i, roomID)
		case lobbyview.ActionInfo:
			b.handleInfo(ctx, s, i, roomID)
		case lobbyview.ActionBump:
			b.handleBump(ctx, s, i, roomID)
		}
	}
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// actor resolves the caller to a local account, creating one on first use.
func (b *Bot) actor(ctx context.Context, i *discordgo.InteractionCreate) (*models.User, *discordgo.User, error) {
	du := interactionUser(i)
	if du == nil {
		return nil, nil, services.Unauthorized("Could not identify the Discord user")
	}

	avatar := du.AvatarURL("")
	user, err := b.users.FindOrCreateByDiscord(ctx, services.DiscordIdentity{
		ID:            du.ID,
		Username:      du.Username,
		Discriminator: du.Discriminator,
		Avatar:        &avatar,
	})
	return user, du, err
}

func (b *Bot) deferReply(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) bool {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.log.WithError(err).Warn("could not acknowledge interaction")
		return false
	}
	return true
}

func (b *Bot) reply(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	embeds := []*discordgo.MessageEmbed{embed}
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Embeds: &embeds}); err != nil {
		b.log.WithError(err).Warn("could not edit interaction reply")
	}
}

func (b *Bot) fail(s *discordgo.Session, i *discordgo.InteractionCreate, action string, err error) {
	entry := b.log.WithError(err).WithField("action", action)
	if du := interactionUser(i); du != nil {
		entry = entry.WithField("discord_user", du.ID)
	}
	if services.KindOf(err) == services.KindInternal {
		entry.Error("discord interaction failed")
	} else {
		entry.Debug("discord interaction refused")
	}
	b.reply(s, i, errorEmbed(action, err))
}

func (b *Bot) handleRoomCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	if !b.deferReply(s, i, true) {
		return
	}
	const action = "Error Creating Room"

	user, du, err := b.actor(ctx, i)
	if err != nil {
		b.fail(s, i, action, err)
		return
	}
	in, err := roomInput(opts, b.rooms.Now(), b.syncer.Window())
	if err != nil {
		b.fail(s, i, action, err)
		return
	}

	room, err := b.rooms.CreateRoom(ctx, user.ID, in)
	if err != nil {
		b.fail(s, i, action, err)
		return
	}

	if _, err := b.syncer.Publish(ctx, room.ID, i.ChannelID, lobbyview.LobbyOptions{Variant: lobbyview.VariantCreated}); err != nil {
		b.log.WithFields(logrus.Fields{"room_id": room.ID, "channel_id": i.ChannelID}).WithError(err).Warn("could not publish lobby")
		b.reply(s, i, simpleEmbed(lobbyview.ColorWarning, "⚠️ Room Created",
			fmt.Sprintf("Room `%s` was created but the lobby could not be posted in this channel.", room.ID)))
		return
	}

	b.log.WithFields(logrus.Fields{"room_id": room.ID, "discord_user": du.ID}).Info("room created from discord")
	b.reply(s, i, simpleEmbed(lobbyview.ColorSuccess, "✅ Room Created",
		fmt.Sprintf("Your **%s** lobby is up. It stays open for %s; use Bump to keep it alive.", room.Game.Title, b.syncer.Window())))
}

func (b *Bot) handleGamesCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	if !b.deferReply(s, i, true) {
		return
	}

	filter := gameFilter(opts)
	page, err := b.games.ListGames(ctx, filter)
	if err != nil {
		b.fail(s, i, "Error Listing Games", err)
		return
	}
	b.reply(s, i, gamesEmbed(page, filter))
}

func gamesEmbed(page *services.GamePage, filter services.GameFilter) *discordgo.MessageEmbed {
	if len(page.Data) == 0 {
		return simpleEmbed(lobbyview.ColorWarning, "🎮 No Games Found", "No games match your search criteria.")
	}

	var sb strings.Builder
	for n, g := range page.Data {
		if n > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "**%s**\nGenre: %s • Platform: %s • Released: %s\n`%s`\n",
			g.Title, orDash(g.Genre), orDash(g.Platform), dateOrDash(g.ReleaseDate, "Jan 2, 2006"), g.ID)
	}
	embed := simpleEmbed(lobbyview.ColorInfo, "🎮 Available Games", sb.String())
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("Page %d of %d • %d games", page.Meta.Page, page.Meta.TotalPages, page.Meta.Total),
	}

	var active []string
	for _, f := range []struct{ label, value string }{
		{"Search", filter.Search},
		{"Genre", filter.Genre},
		{"Platform", filter.Platform},
	} {
		if f.value != "" {
			active = append(active, fmt.Sprintf("%s: %q", f.label, f.value))
		}
	}
	if len(active) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🔍 Active Filters",
			Value: strings.Join(active, " • "),
		})
	}
	return embed
}

func (b *Bot) handleGameCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	if !b.deferReply(s, i, true) {
		return
	}
	const action = "Error Fetching Game"

	id, err := gameIDOption(opts)
	if err != nil {
		b.fail(s, i, action, err)
		return
	}
	game, err := b.games.GetGame(ctx, id)
	if err != nil {
		if services.KindOf(err) == services.KindNotFound {
			err = services.NotFound(fmt.Sprintf("No game found with ID: %s", id))
		}
		b.fail(s, i, action, err)
		return
	}
	b.reply(s, i, gameEmbed(game))
}

func gameEmbed(g *models.Game) *discordgo.MessageEmbed {
	embed := simpleEmbed(lobbyview.ColorInfo, "🎮 "+g.Title, "")
	add := func(name, value string) {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: value, Inline: true})
	}
	if g.Genre != nil && *g.Genre != "" {
		add("🎯 Genre", *g.Genre)
	}
	if g.Platform != nil && *g.Platform != "" {
		add("💻 Platform", *g.Platform)
	}
	if g.ReleaseDate != nil {
		add("📅 Release Date", g.ReleaseDate.Format("January 2, 2006"))
	}
	add("ℹ️ Game ID", g.ID.String())
	add("📆 Added", g.CreatedAt.Format("Jan 2, 2006"))

	if len(g.Ranks) > 0 {
		names := make([]string, len(g.Ranks))
		for n, r := range g.Ranks {
			names[n] = r.Name
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🏆 Ranks",
			Value: strings.Join(names, " → "),
		})
	}
	return embed
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func dateOrDash(t *time.Time, layout string) string {
	if t == nil {
		return "-"
	}
	return t.Format(layout)
}

func (b *Bot) handleJoin(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, roomID uuid.UUID) {
	if !b.deferReply(s, i, true) {
		return
	}
	const action = "Error Joining Room"

	user, du, err := b.actor(ctx, i)
	if err != nil {
		b.fail(s, i, action, err)
		return
	}
	res, err := b.rooms.JoinRoom(ctx, user.ID, roomID)
	if err != nil {
		b.fail(s, i, action, err)
		return
	}

	detail, err := b.rooms.GetRoom(ctx, roomID)
	if err != nil {
		b.fail(s, i, action, err)
		return
	}
	b.log.WithFields(logrus.Fields{"room_id": roomID, "discord_user": du.ID, "status": res.Request.Status}).Info("discord join")
	b.reply(s, i, joinEmbed(res, detail))
}

func joinEmbed(res *services.JoinResult, d *services.RoomDetail) *discordgo.MessageEmbed {
	embed := simpleEmbed(lobbyview.ColorSuccess, "✅ Joined Room!", res.Message)
	if res.Request.Status == models.RequestStatusPending {
		embed.Title = "✅ Join Request Sent!"
		embed.Color = lobbyview.ColorInfo
	}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "🎮 Game", Value: d.Game.Title, Inline: true},
		{Name: "👥 Players", Value: fmt.Sprintf("%d/%d", d.ParticipantsCount, d.MaxSlot), Inline: true},
		{Name: "📊 Status", Value: strings.ToUpper(string(res.Request.Status)), Inline: true},
	}
	if res.Request.Status == models.RequestStatusAccepted && d.RoomCode != nil && *d.RoomCode != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "🔑 Room Code", Value: "`" + *d.RoomCode + "`"})
	}
	return embed
}

func (b *Bot) handleInfo(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, roomID uuid.UUID) {
	if !b.deferReply(s, i, true) {
		return
	}

	detail, err := b.rooms.GetRoom(ctx, roomID)
	if err != nil {
		b.fail(s, i, "Error Getting Room Info", err)
		return
	}
	b.reply(s, i, cardEmbed(lobbyview.BuildInfoCard(detail, b.rooms.Now())))
}

func (b *Bot) handleBump(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, roomID uuid.UUID) {
	if !b.deferReply(s, i, true) {
		return
	}
	const action = "Error Bumping Room"

	user, du, err := b.actor(ctx, i)
	if err != nil {
		b.fail(s, i, action, err)
		return
	}
	detail, err := b.syncer.Bump(ctx, user.ID, roomID, i.ChannelID, du.Username)
	if err != nil {
		b.fail(s, i, action, err)
		return
	}

	b.log.WithFields(logrus.Fields{"room_id": roomID, "discord_user": du.ID}).Info("room bumped")
	embed := simpleEmbed(lobbyview.ColorSuccess, "✅ Room Bumped!",
		"The lobby has been moved to the bottom of the channel.\nExpiration time has been reset.")
	if detail.ExpiresAt != nil {
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "⏰ New Expiration", Value: fmt.Sprintf("<t:%d:R>", detail.ExpiresAt.Unix()), Inline: true},
		}
	}
	b.reply(s, i, embed)
}
