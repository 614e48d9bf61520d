package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/repository"
)

// ErrAnnouncementNotFound indicates the announcement was not located.
var ErrAnnouncementNotFound = errors.New("announcement not found")

// ErrAnnouncementEmpty indicates the body was empty after sanitization.
var ErrAnnouncementEmpty = errors.New("announcement body empty after sanitization")

// NotificationPublisher is the slice of the notification service the
// announcement flow needs.
type NotificationPublisher interface {
	Publish(ctx context.Context, payload dto.NotificationCreateRequest) (dto.NotificationResponse, error)
}

// AnnouncementService encapsulates class feed workflows.
type AnnouncementService interface {
	Create(ctx context.Context, classID, authorID uint, payload dto.AnnouncementCreateRequest) (dto.AnnouncementResponse, error)
	List(ctx context.Context, classID uint, filter repository.AnnouncementFilter) ([]dto.AnnouncementResponse, int64, error)
	Update(ctx context.Context, id, authorID uint, payload dto.AnnouncementUpdateRequest) (dto.AnnouncementResponse, error)
	Delete(ctx context.Context, id, authorID uint) error
}

type announcementService struct {
	announcements repository.AnnouncementRepository
	classes       repository.ClassRepository
	enrollments   repository.EnrollmentRepository
	notifier      NotificationPublisher
	redis         *redis.Client
	cacheTTL      time.Duration
	validator     *validator.Validate
	sanitizer     *bluemonday.Policy
	logger        zerolog.Logger
}

// NewAnnouncementService constructs the announcement service. The redis client
// and notifier are optional; a nil client disables caching and a nil notifier
// disables fan-out.
func NewAnnouncementService(
	announcements repository.AnnouncementRepository,
	classes repository.ClassRepository,
	enrollments repository.EnrollmentRepository,
	notifier NotificationPublisher,
	redisClient *redis.Client,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger zerolog.Logger,
) AnnouncementService {
	if cacheTTL <= 0 {
		cacheTTL = 2 * time.Minute
	}

	return &announcementService{
		announcements: announcements,
		classes:       classes,
		enrollments:   enrollments,
		notifier:      notifier,
		redis:         redisClient,
		cacheTTL:      cacheTTL,
		validator:     validate,
		sanitizer:     bluemonday.UGCPolicy(),
		logger:        logger.With().Str("component", "announcement_service").Logger(),
	}
}

func (s *announcementService) Create(ctx context.Context, classID, authorID uint, payload dto.AnnouncementCreateRequest) (dto.AnnouncementResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AnnouncementResponse{}, ErrClassNotFound
		}
		return dto.AnnouncementResponse{}, err
	}
	if class.TeacherID != authorID {
		return dto.AnnouncementResponse{}, ErrClassNotOwned
	}

	body := strings.TrimSpace(s.sanitizer.Sanitize(payload.Body))
	if body == "" {
		return dto.AnnouncementResponse{}, ErrAnnouncementEmpty
	}

	announcement := models.Announcement{
		ClassID:  classID,
		AuthorID: authorID,
		Title:    strings.TrimSpace(s.sanitizer.Sanitize(payload.Title)),
		Body:     body,
		IsPinned: payload.IsPinned,
	}

	if err := s.announcements.Create(ctx, &announcement); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	s.invalidateCache(ctx, classID)
	go s.fanOut(class, announcement)

	return dto.NewAnnouncementResponse(announcement), nil
}

// fanOut notifies every active student about a new announcement. Failures are
// logged and never roll back the announcement itself.
func (s *announcementService) fanOut(class models.Class, announcement models.Announcement) {
	if s.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	enrolled, _, err := s.enrollments.ListByClass(ctx, class.ID, repository.EnrollmentFilter{
		Status: models.EnrollmentStatusActive,
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("class_id", class.ID).Msg("announcement fan-out: listing students failed")
		return
	}

	message := fmt.Sprintf("New announcement in %s: %s", class.Name, announcement.Title)
	for _, enrollment := range enrolled {
		payload := dto.NotificationCreateRequest{
			UserID:  strconv.FormatUint(uint64(enrollment.StudentID), 10),
			Type:    "announcement",
			Message: message,
		}
		if _, err := s.notifier.Publish(ctx, payload); err != nil {
			s.logger.Warn().Err(err).
				Uint("student_id", enrollment.StudentID).
				Msg("announcement fan-out: publish failed")
		}
	}
}

func (s *announcementService) List(ctx context.Context, classID uint, filter repository.AnnouncementFilter) ([]dto.AnnouncementResponse, int64, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrClassNotFound
		}
		return nil, 0, err
	}

	// Only the default first page is cached; that is what class dashboards hit.
	cacheable := s.redis != nil && filter.Page <= 1
	if cacheable {
		if cached, total, ok := s.readCache(ctx, classID, filter.Limit); ok {
			return cached, total, nil
		}
	}

	items, total, err := s.announcements.ListByClass(ctx, classID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := dto.NewAnnouncementResponseSlice(items)
	if cacheable {
		s.writeCache(ctx, classID, filter.Limit, responses, total)
	}

	return responses, total, nil
}

func (s *announcementService) Update(ctx context.Context, id, authorID uint, payload dto.AnnouncementUpdateRequest) (dto.AnnouncementResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	announcement, err := s.ownedAnnouncement(ctx, id, authorID)
	if err != nil {
		return dto.AnnouncementResponse{}, err
	}

	if payload.Title != nil {
		announcement.Title = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Title))
	}
	if payload.Body != nil {
		body := strings.TrimSpace(s.sanitizer.Sanitize(*payload.Body))
		if body == "" {
			return dto.AnnouncementResponse{}, ErrAnnouncementEmpty
		}
		announcement.Body = body
	}
	if payload.IsPinned != nil {
		announcement.IsPinned = *payload.IsPinned
	}

	if err := s.announcements.Update(ctx, &announcement); err != nil {
		return dto.AnnouncementResponse{}, err
	}

	s.invalidateCache(ctx, announcement.ClassID)

	return dto.NewAnnouncementResponse(announcement), nil
}

func (s *announcementService) Delete(ctx context.Context, id, authorID uint) error {
	announcement, err := s.ownedAnnouncement(ctx, id, authorID)
	if err != nil {
		return err
	}

	if err := s.announcements.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateCache(ctx, announcement.ClassID)
	return nil
}

func (s *announcementService) ownedAnnouncement(ctx context.Context, id, authorID uint) (models.Announcement, error) {
	announcement, err := s.announcements.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Announcement{}, ErrAnnouncementNotFound
		}
		return models.Announcement{}, err
	}

	class, err := s.classes.GetByID(ctx, announcement.ClassID)
	if err != nil {
		return models.Announcement{}, err
	}
	if class.TeacherID != authorID {
		return models.Announcement{}, ErrClassNotOwned
	}

	return announcement, nil
}

type announcementCacheEntry struct {
	Items []dto.AnnouncementResponse `json:"items"`
	Total int64                      `json:"total"`
}

func announcementCacheKey(classID uint, limit int) string {
	return fmt.Sprintf("announcements:class:%d:limit:%d", classID, limit)
}

func (s *announcementService) readCache(ctx context.Context, classID uint, limit int) ([]dto.AnnouncementResponse, int64, bool) {
	raw, err := s.redis.Get(ctx, announcementCacheKey(classID, limit)).Bytes()
	if err != nil {
		return nil, 0, false
	}

	var entry announcementCacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, 0, false
	}

	return entry.Items, entry.Total, true
}

func (s *announcementService) writeCache(ctx context.Context, classID uint, limit int, items []dto.AnnouncementResponse, total int64) {
	raw, err := json.Marshal(announcementCacheEntry{Items: items, Total: total})
	if err != nil {
		return
	}

	if err := s.redis.Set(ctx, announcementCacheKey(classID, limit), raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("class_id", classID).Msg("announcement cache write failed")
	}
}

func (s *announcementService) invalidateCache(ctx context.Context, classID uint) {
	if s.redis == nil {
		return
	}

	pattern := fmt.Sprintf("announcements:class:%d:*", classID)
	iter := s.redis.Scan(ctx, 0, pattern, 50).Iterator()
	for iter.Next(ctx) {
		if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.Warn().Err(err).Str("key", iter.Val()).Msg("announcement cache invalidation failed")
		}
	}
}
