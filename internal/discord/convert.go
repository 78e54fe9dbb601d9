package discord

import (
	"time"

	"github.com/Faisd405/ayomabar-be/internal/lobbyview"
	"github.com/Faisd405/ayomabar-be/internal/services"
	"github.com/bwmarrin/discordgo"
)

func cardEmbed(card lobbyview.Card) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       card.Title,
		Description: card.Description,
		Color:       card.Color,
	}
	for _, f := range card.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if card.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: card.Footer}
	}
	if card.Timestamp != nil {
		embed.Timestamp = card.Timestamp.Format(time.RFC3339)
	}
	return embed
}

var buttonStyles = map[lobbyview.ControlStyle]discordgo.ButtonStyle{
	lobbyview.StylePrimary:   discordgo.PrimaryButton,
	lobbyview.StyleSecondary: discordgo.SecondaryButton,
	lobbyview.StyleSuccess:   discordgo.SuccessButton,
	lobbyview.StyleDanger:    discordgo.DangerButton,
}

// cardComponents puts every control of the card on a single action row.
func cardComponents(card lobbyview.Card) []discordgo.MessageComponent {
	if len(card.Controls) == 0 {
		return []discordgo.MessageComponent{}
	}
	buttons := make([]discordgo.MessageComponent, 0, len(card.Controls))
	for _, c := range card.Controls {
		buttons = append(buttons, discordgo.Button{
			CustomID: c.ID,
			Label:    c.Label,
			Style:    buttonStyles[c.Style],
			Disabled: c.Disabled,
		})
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

func simpleEmbed(color int, title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: title, Description: description, Color: color}
}

// codeTitles give the join outcomes their own headings.
var codeTitles = map[string]struct {
	title string
	color int
}{
	services.CodeRoomFull:       {"🚫 Room Full", lobbyview.ColorDanger},
	services.CodeRoomExpired:    {"🔒 Room Expired", lobbyview.ColorDanger},
	services.CodeRoomNotOpen:    {"🔒 Room Not Open", lobbyview.ColorDanger},
	services.CodeIsHost:         {"⚠️ You are the Host", lobbyview.ColorWarning},
	services.CodeAlreadyPending: {"⏳ Request Pending", lobbyview.ColorWarning},
	services.CodeAlreadyMember:  {"✅ Already Joined", lobbyview.ColorSuccess},
	services.CodeBlocked:        {"❌ Request Rejected", lobbyview.ColorDanger},
	services.CodeActiveRoom:     {"⚠️ Active Room Exists", lobbyview.ColorWarning},
}

// errorEmbed renders a service error the same way for every interaction.
func errorEmbed(action string, err error) *discordgo.MessageEmbed {
	msg := services.MessageOf(err)
	if c, ok := codeTitles[services.CodeOf(err)]; ok {
		return simpleEmbed(c.color, c.title, msg)
	}

	switch services.KindOf(err) {
	case services.KindNotFound:
		return simpleEmbed(lobbyview.ColorError, "❌ Not Found", msg)
	case services.KindForbidden:
		return simpleEmbed(lobbyview.ColorWarning, "⚠️ Permission Denied", msg)
	case services.KindBadRequest, services.KindConflict:
		return simpleEmbed(lobbyview.ColorError, "❌ "+action, msg)
	}

	embed := simpleEmbed(lobbyview.ColorError, "❌ "+action, "An unexpected error occurred")
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Please try again or contact support"}
	return embed
}
