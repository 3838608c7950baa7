package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"
)

// ErrChannelNameTaken reports that the channel row hit the unique name index.
var ErrChannelNameTaken = errors.New("channel name taken")

type ChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// Create inserts the channel and one membership row per member ID in a single
// transaction. On success channel.Members is left empty; callers reload with
// GetByID when they need the resolved member list.
func (r *ChannelRepository) Create(ctx context.Context, channel *model.Channel, memberIDs []string) error {
	if channel.ID == "" {
		channel.ID = uuid.NewString()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(channel).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrChannelNameTaken
			}
			return err
		}
		members := make([]model.ChannelMember, 0, len(memberIDs))
		for _, userID := range memberIDs {
			members = append(members, model.ChannelMember{
				ChannelID: channel.ID,
				UserID:    userID,
				CreatedAt: channel.CreatedAt,
			})
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		return fmt.Errorf("create channel failed: %w", err)
	}
	return nil
}

func (r *ChannelRepository) GetByID(ctx context.Context, id string) (*model.Channel, error) {
	var channel model.Channel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&channel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get channel failed: %w", err)
	}

	channels := []model.Channel{channel}
	if err := r.attachMembers(ctx, channels); err != nil {
		return nil, err
	}
	return &channels[0], nil
}

func (r *ChannelRepository) GetGroupByName(ctx context.Context, name string) (*model.Channel, error) {
	var channel model.Channel
	err := r.db.WithContext(ctx).
		Where("channel_type = ? AND name = ?", model.ChannelTypeChannel, name).
		First(&channel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get channel by name failed: %w", err)
	}
	return &channel, nil
}

// ListByUserID returns every channel the user is a member of, oldest first.
func (r *ChannelRepository) ListByUserID(ctx context.Context, userID string) ([]model.Channel, error) {
	var channels []model.Channel
	err := r.db.WithContext(ctx).
		Joins("JOIN channel_members cm ON cm.channel_id = channels.id AND cm.user_id = ?", userID).
		Order("channels.created_at ASC, channels.id ASC").
		Find(&channels).Error
	if err != nil {
		return nil, fmt.Errorf("list channels by user failed: %w", err)
	}
	if err := r.attachMembers(ctx, channels); err != nil {
		return nil, err
	}
	return channels, nil
}

// FindDirectMessage returns the oldest DM whose members are exactly userA and
// userB, or nil when the pair has none.
func (r *ChannelRepository) FindDirectMessage(ctx context.Context, userA, userB string) (*model.Channel, error) {
	var channels []model.Channel
	err := r.db.WithContext(ctx).
		Joins("JOIN channel_members a ON a.channel_id = channels.id AND a.user_id = ?", userA).
		Joins("JOIN channel_members b ON b.channel_id = channels.id AND b.user_id = ?", userB).
		Where("channels.channel_type = ?", model.ChannelTypeDM).
		Order("channels.created_at ASC, channels.id ASC").
		Limit(1).
		Find(&channels).Error
	if err != nil {
		return nil, fmt.Errorf("find direct message failed: %w", err)
	}
	if len(channels) == 0 {
		return nil, nil
	}
	if err := r.attachMembers(ctx, channels); err != nil {
		return nil, err
	}
	return &channels[0], nil
}

func (r *ChannelRepository) attachMembers(ctx context.Context, channels []model.Channel) error {
	if len(channels) == 0 {
		return nil
	}
	ids := make([]string, 0, len(channels))
	for _, c := range channels {
		ids = append(ids, c.ID)
	}

	var rows []model.ChannelMember
	if err := r.db.WithContext(ctx).Where("channel_id IN ?", ids).Order("created_at ASC").Find(&rows).Error; err != nil {
		return fmt.Errorf("list channel members failed: %w", err)
	}

	userIDs := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.UserID]; ok {
			continue
		}
		seen[row.UserID] = struct{}{}
		userIDs = append(userIDs, row.UserID)
	}

	var users []model.User
	if len(userIDs) > 0 {
		if err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return fmt.Errorf("list member users failed: %w", err)
		}
	}
	byID := make(map[string]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	index := make(map[string]int, len(channels))
	for i := range channels {
		channels[i].Members = []model.User{}
		index[channels[i].ID] = i
	}
	for _, row := range rows {
		user, ok := byID[row.UserID]
		if !ok {
			continue
		}
		i := index[row.ChannelID]
		channels[i].Members = append(channels[i].Members, user)
	}
	return nil
}
