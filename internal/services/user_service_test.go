package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/Faisd405/ayomabar-be/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreateByDiscord(t *testing.T) {
	db := testutil.NewDatabase(t)
	svc := NewUserService(db, testutil.Logger())
	ctx := context.Background()

	id := DiscordIdentity{ID: "123456789", Username: "Cool Gamer!!", Discriminator: "4242"}

	user, err := svc.FindOrCreateByDiscord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "coolgamer_4242", user.Username)
	assert.Equal(t, "Cool Gamer!!", user.Name)
	assert.Equal(t, "discord_123456789@ayomabar.local", user.Email)
	assert.Nil(t, user.PasswordHash)

	again, err := svc.FindOrCreateByDiscord(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestFindOrCreateByDiscordWithoutDiscriminator(t *testing.T) {
	db := testutil.NewDatabase(t)
	svc := NewUserService(db, testutil.Logger())

	user, err := svc.FindOrCreateByDiscord(context.Background(), DiscordIdentity{
		ID: "987", Username: "AVeryLongDiscordUsernameIndeed", Discriminator: "0",
	})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^averylongdiscorduser_\d{4}$`), user.Username)
}

func TestDiscordUsername(t *testing.T) {
	assert.Equal(t, "player_0001", discordUsername("!!!", "0001"))
	assert.Equal(t, "bc_7", discordUsername("ÄbC", "7"))
	assert.Regexp(t, `^bob_\d{4}$`, discordUsername("Bob", ""))
}

func TestUpdateProfile(t *testing.T) {
	db := testutil.NewDatabase(t)
	svc := NewUserService(db, testutil.Logger())
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "alice")

	bio := "support main"
	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Name)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, bio, *updated.Bio)

	empty := "  "
	_, err = svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{Name: &empty})
	assert.Equal(t, KindBadRequest, KindOf(err))

	_, err = svc.GetUser(ctx, uuid.New())
	assert.Equal(t, KindNotFound, KindOf(err))
}
