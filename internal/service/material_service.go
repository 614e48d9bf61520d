package service

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/vstep-go-api/internal/dto"
	"github.com/noah-isme/vstep-go-api/internal/models"
	"github.com/noah-isme/vstep-go-api/internal/repository"
)

// maxMaterialSize caps uploads at 25 MiB.
const maxMaterialSize = 25 << 20

// ErrMaterialNotFound indicates the material was not located.
var ErrMaterialNotFound = errors.New("material not found")

// ErrMaterialTooLarge indicates the upload exceeds the size cap.
var ErrMaterialTooLarge = errors.New("material exceeds maximum size")

// ErrUnsupportedFileType indicates the uploaded content type is not allowed.
var ErrUnsupportedFileType = errors.New("unsupported file type")

// FileUploader pushes a file to external storage and returns its public URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

var allowedMaterialTypes = []string{
	"application/pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"application/zip",
	"audio/mpeg",
	"image/jpeg",
	"image/png",
	"text/plain",
}

// MaterialService encapsulates study-material workflows.
type MaterialService interface {
	Upload(ctx context.Context, classID, teacherID uint, payload dto.MaterialCreateRequest, filename string, content []byte) (dto.MaterialResponse, error)
	List(ctx context.Context, classID uint, filter repository.MaterialFilter) ([]dto.MaterialResponse, int64, error)
	Get(ctx context.Context, id uint) (dto.MaterialResponse, error)
	Update(ctx context.Context, id, teacherID uint, payload dto.MaterialUpdateRequest) (dto.MaterialResponse, error)
	Delete(ctx context.Context, id, teacherID uint) error
	Download(ctx context.Context, id uint) (dto.MaterialResponse, error)
}

type materialService struct {
	materials repository.MaterialRepository
	classes   repository.ClassRepository
	uploader  FileUploader
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewMaterialService constructs the material service.
func NewMaterialService(
	materials repository.MaterialRepository,
	classes repository.ClassRepository,
	uploader FileUploader,
	validate *validator.Validate,
	logger zerolog.Logger,
) MaterialService {
	return &materialService{
		materials: materials,
		classes:   classes,
		uploader:  uploader,
		validator: validate,
		logger:    logger.With().Str("component", "material_service").Logger(),
	}
}

func (s *materialService) Upload(ctx context.Context, classID, teacherID uint, payload dto.MaterialCreateRequest, filename string, content []byte) (dto.MaterialResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MaterialResponse{}, err
	}

	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MaterialResponse{}, ErrClassNotFound
		}
		return dto.MaterialResponse{}, err
	}
	if class.TeacherID != teacherID {
		return dto.MaterialResponse{}, ErrClassNotOwned
	}

	if len(content) > maxMaterialSize {
		return dto.MaterialResponse{}, ErrMaterialTooLarge
	}

	// Sniff the real content type instead of trusting the client header.
	detected := mimetype.Detect(content)
	allowed := false
	for _, mime := range allowedMaterialTypes {
		if detected.Is(mime) {
			allowed = true
			break
		}
	}
	if !allowed {
		return dto.MaterialResponse{}, ErrUnsupportedFileType
	}

	url := ""
	if s.uploader != nil && len(content) > 0 {
		url, err = s.uploader.Upload(ctx, filename, bytes.NewReader(content))
		if err != nil {
			s.logger.Error().Err(err).Str("filename", filename).Msg("material upload failed")
			return dto.MaterialResponse{}, err
		}
	}

	material := models.Material{
		ClassID:     classID,
		Title:       payload.Title,
		Description: payload.Description,
		FileURL:     url,
		FileSize:    int64(len(content)),
		ContentType: detected.String(),
		UploadedBy:  teacherID,
	}

	if err := s.materials.Create(ctx, &material); err != nil {
		return dto.MaterialResponse{}, err
	}

	s.logger.Info().Uint("class_id", classID).Uint("material_id", material.ID).Msg("material uploaded")

	return dto.NewMaterialResponse(material), nil
}

func (s *materialService) List(ctx context.Context, classID uint, filter repository.MaterialFilter) ([]dto.MaterialResponse, int64, error) {
	if _, err := s.classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrClassNotFound
		}
		return nil, 0, err
	}

	materials, total, err := s.materials.ListByClass(ctx, classID, filter)
	if err != nil {
		return nil, 0, err
	}

	return dto.NewMaterialResponseSlice(materials), total, nil
}

func (s *materialService) Get(ctx context.Context, id uint) (dto.MaterialResponse, error) {
	material, err := s.materials.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MaterialResponse{}, ErrMaterialNotFound
		}
		return dto.MaterialResponse{}, err
	}

	return dto.NewMaterialResponse(material), nil
}

func (s *materialService) Update(ctx context.Context, id, teacherID uint, payload dto.MaterialUpdateRequest) (dto.MaterialResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.MaterialResponse{}, err
	}

	material, err := s.ownedMaterial(ctx, id, teacherID)
	if err != nil {
		return dto.MaterialResponse{}, err
	}

	if payload.Title != nil {
		material.Title = *payload.Title
	}
	if payload.Description != nil {
		material.Description = *payload.Description
	}

	if err := s.materials.Update(ctx, &material); err != nil {
		return dto.MaterialResponse{}, err
	}

	return dto.NewMaterialResponse(material), nil
}

func (s *materialService) Delete(ctx context.Context, id, teacherID uint) error {
	if _, err := s.ownedMaterial(ctx, id, teacherID); err != nil {
		return err
	}
	return s.materials.Delete(ctx, id)
}

// Download returns the material and bumps its download counter. A failed bump
// is logged but never blocks the download itself.
func (s *materialService) Download(ctx context.Context, id uint) (dto.MaterialResponse, error) {
	material, err := s.materials.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.MaterialResponse{}, ErrMaterialNotFound
		}
		return dto.MaterialResponse{}, err
	}

	if err := s.materials.IncrementDownloads(ctx, id); err != nil {
		s.logger.Warn().Err(err).Uint("material_id", id).Msg("failed to bump download counter")
	} else {
		material.DownloadCount++
	}

	return dto.NewMaterialResponse(material), nil
}

func (s *materialService) ownedMaterial(ctx context.Context, id, teacherID uint) (models.Material, error) {
	material, err := s.materials.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Material{}, ErrMaterialNotFound
		}
		return models.Material{}, err
	}

	class, err := s.classes.GetByID(ctx, material.ClassID)
	if err != nil {
		return models.Material{}, err
	}
	if class.TeacherID != teacherID {
		return models.Material{}, ErrClassNotOwned
	}

	return material, nil
}
