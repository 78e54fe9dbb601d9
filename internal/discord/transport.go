package discord

import (
	"context"

	"github.com/Faisd405/ayomabar-be/internal/lobbyview"
	"github.com/bwmarrin/discordgo"
)

// Transport posts lobby cards through a gateway session.
type Transport struct {
	session *discordgo.Session
}

func NewTransport(session *discordgo.Session) *Transport {
	return &Transport{session: session}
}

func (t *Transport) Publish(ctx context.Context, channelID string, card lobbyview.Card) (string, error) {
	msg, err := t.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{cardEmbed(card)},
		Components: cardComponents(card),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (t *Transport) Edit(ctx context.Context, channelID, messageID string, card lobbyview.Card) error {
	embeds := []*discordgo.MessageEmbed{cardEmbed(card)}
	components := cardComponents(card)
	_, err := t.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         messageID,
		Channel:    channelID,
		Embeds:     &embeds,
		Components: &components,
	}, discordgo.WithContext(ctx))
	return err
}

func (t *Transport) Delete(ctx context.Context, channelID, messageID string) error {
	return t.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}
