package app

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/repository"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/testutil"
)

type fixture struct {
	db       *gorm.DB
	users    *repository.UserRepository
	channels *ChannelService
}

func newFixture(t *testing.T, policy DMPolicy) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	users := repository.NewUserRepository(db)
	return &fixture{
		db:       db,
		users:    users,
		channels: NewChannelService(repository.NewChannelRepository(db), users, policy),
	}
}

func (f *fixture) user(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{AuthID: "auth-" + name, Name: name, Email: name + "@example.com"}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) group(t *testing.T, creator *model.User, name string) *model.Channel {
	t.Helper()
	ch, _, err := f.channels.CreateChannel(context.Background(), CreateChannelInput{
		CreatorID: creator.ID,
		Type:      model.ChannelTypeChannel,
		Name:      name,
	})
	if err != nil {
		t.Fatalf("create channel %q: %v", name, err)
	}
	return ch
}
