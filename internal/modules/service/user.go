package service

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/obraplan/obraplan/internal/infra/blob"
	"github.com/obraplan/obraplan/internal/modules/model"
	"github.com/obraplan/obraplan/internal/modules/repo"
	"github.com/obraplan/obraplan/internal/pkg/apperr"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

type UserService interface {
	Register(ctx context.Context, email, name, password string) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// EnsureGoogleUser finds the user linked to the Google subject, linking
	// by email or creating a fresh account when needed.
	EnsureGoogleUser(ctx context.Context, googleID, email, name, avatarURL string) (*model.User, error)
	SetPassword(ctx context.Context, userID uuid.UUID, password string) error
	UploadAvatar(ctx context.Context, userID uuid.UUID, fh *multipart.FileHeader) (*model.User, error)
	AvatarURL(ctx context.Context, userID uuid.UUID) (string, error)
}

type userService struct {
	r             repo.UserRepo
	blob          *blob.S3Deps
	presignExpire func() time.Duration
}

func NewUserService(r repo.UserRepo, b *blob.S3Deps, presignExpire func() time.Duration) UserService {
	return &userService{r: r, blob: b, presignExpire: presignExpire}
}

func (s *userService) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	if email == "" || name == "" {
		return nil, apperr.Validation("email and name are required")
	}
	if len(password) < 6 {
		return nil, apperr.Validation("password must be at least 6 characters long")
	}

	if _, err := s.r.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}
	hashed := string(hash)

	u := &model.User{
		Email:    email,
		Name:     name,
		Password: &hashed,
	}
	if err := s.r.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.r.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("invalid email or password")
		}
		return nil, err
	}
	if u.Password == nil {
		return nil, apperr.Unauthorized("this account was created with Google, use Google login")
	}
	if bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(password)) != nil {
		return nil, apperr.Unauthorized("invalid email or password")
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.r.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) EnsureGoogleUser(ctx context.Context, googleID, email, name, avatarURL string) (*model.User, error) {
	if googleID == "" || email == "" {
		return nil, apperr.Validation("google profile is missing id or email")
	}

	u, err := s.r.GetByGoogleID(ctx, googleID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Link an existing password account with the same email.
	u, err = s.r.GetByEmail(ctx, email)
	if err == nil {
		u.GoogleID = &googleID
		if u.AvatarURL == nil && avatarURL != "" {
			u.AvatarURL = &avatarURL
		}
		if err := s.r.Update(ctx, u); err != nil {
			return nil, err
		}
		return u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	u = &model.User{
		Email:    email,
		Name:     name,
		GoogleID: &googleID,
	}
	if avatarURL != "" {
		u.AvatarURL = &avatarURL
	}
	if err := s.r.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) SetPassword(ctx context.Context, userID uuid.UUID, password string) error {
	if len(password) < 6 {
		return apperr.Validation("password must be at least 6 characters long")
	}
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	hashed := string(hash)
	u.Password = &hashed
	return s.r.Update(ctx, u)
}

func (s *userService) UploadAvatar(ctx context.Context, userID uuid.UUID, fh *multipart.FileHeader) (*model.User, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	meta, err := s.blob.UploadFormFile(ctx, "avatars", fh)
	if err != nil {
		return nil, err
	}
	u.AvatarKey = &meta.Key
	if err := s.r.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *userService) AvatarURL(ctx context.Context, userID uuid.UUID) (string, error) {
	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u.AvatarKey == nil {
		if u.AvatarURL != nil {
			return *u.AvatarURL, nil
		}
		return "", apperr.NotFound("user has no avatar")
	}
	return s.blob.PresignGet(ctx, *u.AvatarKey, s.presignExpire())
}
