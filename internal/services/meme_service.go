package services

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"

	"github.com/srrathi/cyberplace-be/internal/feed"
	"github.com/srrathi/cyberplace-be/internal/models"
	"github.com/srrathi/cyberplace-be/internal/realtime"
	"github.com/srrathi/cyberplace-be/internal/repository"
	"github.com/srrathi/cyberplace-be/internal/storage"
)

type CreateMemeRequest struct {
	Title         string `form:"title" binding:"required,max=255"`
	CaptionPrompt string `form:"captionPrompt"`
}

type MemeService struct {
	memes    *repository.MemeRepository
	users    *repository.UserRepository
	media    *storage.MediaStore
	captions *CaptionService
	notifier *realtime.Notifier
	feed     *feed.Publisher
	logger   *slog.Logger
}

func NewMemeService(
	memes *repository.MemeRepository,
	users *repository.UserRepository,
	media *storage.MediaStore,
	captions *CaptionService,
	notifier *realtime.Notifier,
	publisher *feed.Publisher,
	logger *slog.Logger,
) *MemeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemeService{
		memes:    memes,
		users:    users,
		media:    media,
		captions: captions,
		notifier: notifier,
		feed:     publisher,
		logger:   logger,
	}
}

// Create stores the meme, optionally uploading its image and generating a
// caption, then announces it. The row is committed before any broadcast, so
// a dropped notification never loses a meme.
func (s *MemeService) Create(ctx context.Context, ownerID uint, req CreateMemeRequest, image *multipart.FileHeader) (*models.Meme, error) {
	owner, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, errors.New("owner not found")
	}

	meme := &models.Meme{
		Title:   req.Title,
		OwnerID: owner.ID,
	}

	if image != nil {
		url, err := s.media.UploadImage(ctx, image)
		if err != nil {
			return nil, err
		}
		meme.ImageURL = url
	}

	if req.CaptionPrompt != "" && s.captions != nil {
		caption, err := s.captions.Generate(ctx, req.CaptionPrompt)
		if err != nil {
			// A meme without a caption beats no meme at all.
			s.logger.Warn("caption generation failed", "title", req.Title, "error", err)
		} else {
			meme.Caption = caption
		}
	}

	if err := s.memes.Create(ctx, meme); err != nil {
		return nil, err
	}

	if err := s.notifier.MemeCreated(meme.ID, meme.Title, owner.Username, meme.ImageURL, meme.Caption); err != nil {
		s.logger.Warn("meme broadcast skipped", "error", err)
	}
	s.feed.Publish(ctx, realtime.EventNewMeme.String(), map[string]interface{}{
		"memeId":  meme.ID,
		"title":   meme.Title,
		"ownerId": owner.ID,
	})
	return meme, nil
}

func (s *MemeService) Get(ctx context.Context, id uint) (*models.Meme, error) {
	return s.memes.FindByID(ctx, id)
}

func (s *MemeService) List(ctx context.Context, limit, offset int) ([]models.Meme, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.memes.List(ctx, limit, offset)
}
