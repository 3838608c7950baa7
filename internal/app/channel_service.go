package app

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/metrics"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/repository"
)

// DMPolicy decides what happens when a direct message is requested for a pair
// that already has one.
type DMPolicy string

const (
	DMAllowDuplicates DMPolicy = "allow_duplicates"
	DMReuseExisting   DMPolicy = "reuse_existing"
)

type ChannelService struct {
	channelRepo *repository.ChannelRepository
	userRepo    *repository.UserRepository
	dmPolicy    DMPolicy
}

type CreateChannelInput struct {
	CreatorID   string
	Type        string
	Name        string
	Description string
	OtherUserID string
}

func NewChannelService(channelRepo *repository.ChannelRepository, userRepo *repository.UserRepository, dmPolicy DMPolicy) *ChannelService {
	if dmPolicy != DMReuseExisting {
		dmPolicy = DMAllowDuplicates
	}
	return &ChannelService{
		channelRepo: channelRepo,
		userRepo:    userRepo,
		dmPolicy:    dmPolicy,
	}
}

// CreateChannel creates a group channel or a direct message. The boolean is
// false when the DM policy returned an existing channel instead.
func (s *ChannelService) CreateChannel(ctx context.Context, input CreateChannelInput) (*model.Channel, bool, error) {
	if input.CreatorID == "" {
		return nil, false, ErrUnauthenticated
	}

	switch input.Type {
	case "", model.ChannelTypeChannel:
		return s.createGroup(ctx, input)
	case model.ChannelTypeDM:
		return s.createDirectMessage(ctx, input)
	default:
		return nil, false, NewValidationError("type", "must be one of channel, dm")
	}
}

func (s *ChannelService) createGroup(ctx context.Context, input CreateChannelInput) (*model.Channel, bool, error) {
	name := strings.TrimSpace(input.Name)
	description := strings.TrimSpace(input.Description)

	verr := &ValidationError{}
	switch {
	case name == "":
		verr.Add("name", "is required for a channel")
	case utf8.RuneCountInString(name) > MaxChannelNameLength:
		verr.Add("name", "must be at most 50 characters")
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		verr.Add("description", "must be at most 200 characters")
	}
	if err := verr.orNil(); err != nil {
		return nil, false, err
	}

	existing, err := s.channelRepo.GetGroupByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return nil, false, NewValidationError("name", "is already in use")
	}

	channel := &model.Channel{
		ChannelType: model.ChannelTypeChannel,
		Name:        &name,
		CreatorID:   input.CreatorID,
	}
	if description != "" {
		channel.Description = &description
	}
	if err := s.channelRepo.Create(ctx, channel, []string{input.CreatorID}); err != nil {
		// A concurrent create can pass the lookup above.
		if errors.Is(err, repository.ErrChannelNameTaken) {
			return nil, false, NewValidationError("name", "is already in use")
		}
		return nil, false, err
	}
	metrics.ChannelsCreated.WithLabelValues(model.ChannelTypeChannel).Inc()
	return s.reload(ctx, channel.ID)
}

func (s *ChannelService) createDirectMessage(ctx context.Context, input CreateChannelInput) (*model.Channel, bool, error) {
	otherID := strings.TrimSpace(input.OtherUserID)
	if otherID == "" {
		return nil, false, NewValidationError("otherUserId", "is required for a direct message")
	}
	if otherID == input.CreatorID {
		return nil, false, NewValidationError("otherUserId", "must be a different user")
	}
	if _, err := uuid.Parse(otherID); err != nil {
		return nil, false, NewValidationError("otherUserId", "is not a valid user id")
	}
	other, err := s.userRepo.GetByID(ctx, otherID)
	if err != nil {
		return nil, false, err
	}
	if other == nil {
		return nil, false, NewValidationError("otherUserId", "user does not exist")
	}

	if s.dmPolicy == DMReuseExisting {
		existing, err := s.channelRepo.FindDirectMessage(ctx, input.CreatorID, otherID)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
	}

	channel := &model.Channel{
		ChannelType: model.ChannelTypeDM,
		CreatorID:   input.CreatorID,
	}
	if err := s.channelRepo.Create(ctx, channel, []string{input.CreatorID, otherID}); err != nil {
		return nil, false, err
	}
	metrics.ChannelsCreated.WithLabelValues(model.ChannelTypeDM).Inc()
	return s.reload(ctx, channel.ID)
}

func (s *ChannelService) reload(ctx context.Context, channelID string) (*model.Channel, bool, error) {
	channel, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, false, err
	}
	if channel == nil {
		return nil, false, ErrChannelNotFound
	}
	return channel, true, nil
}

func (s *ChannelService) ListChannels(ctx context.Context, userID string) ([]model.Channel, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.channelRepo.ListByUserID(ctx, userID)
}

// Authorize loads a channel and applies the access gate. A channel that does
// not exist is reported before membership is considered.
func (s *ChannelService) Authorize(ctx context.Context, userID, channelID string) (*model.Channel, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if _, err := uuid.Parse(channelID); err != nil {
		return nil, NewValidationError("channelId", "is not a valid channel id")
	}

	channel, err := s.channelRepo.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, ErrChannelNotFound
	}
	if !CanAccess(channel, userID) {
		metrics.AccessDenied.Inc()
		return nil, ErrForbidden
	}
	return channel, nil
}
