package adoption

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"github.com/pborman/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"pawstogether/internal/dbmongo"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotOwner         = errors.New("only the owner can change this listing")
	ErrMissingPetName   = errors.New("pet name is required")
)

// NameResolver resolves a user id to a display name; "" means unknown.
type NameResolver interface {
	ResolveDisplayName(ctx context.Context, userID string) string
}

// MediaUploader stores the listing photo and hands back a durable URL.
// DeleteFile reclaims a photo whose listing never made it in.
type MediaUploader interface {
	UploadFile(ctx context.Context, filename, mimeType, uploaderID string, content io.Reader) (*dbmongo.MediaFile, error)
	DeleteFile(ctx context.Context, fileID string) error
	MediaURL(fileID string) string
}

type ListingUpdate struct {
	Name        *string `json:"name,omitempty"`
	Breed       *string `json:"breed,omitempty"`
	Age         *int    `json:"age,omitempty"`
	Description *string `json:"description,omitempty"`
}

type AdoptionUsecase interface {
	PublishPet(ctx context.Context, ownerID string, pet Pet, photo io.Reader, filename, mimeType string) (*Pet, error)
	ListAvailable(ctx context.Context) ([]Pet, error)
	GetPet(ctx context.Context, petID string) (*Pet, error)
	UpdateListing(ctx context.Context, petID, callerID string, update ListingUpdate) (*Pet, error)
	MarkAdopted(ctx context.Context, petID, callerID string) error
}

type AdoptionService struct {
	petRepo Pets
	media   MediaUploader
	names   NameResolver
}

func NewAdoptionService(p Pets, m MediaUploader, n NameResolver) *AdoptionService {
	return &AdoptionService{petRepo: p, media: m, names: n}
}

func (s *AdoptionService) PublishPet(ctx context.Context, ownerID string, pet Pet, photo io.Reader, filename, mimeType string) (*Pet, error) {
	if ownerID == "" {
		return nil, ErrNotAuthenticated
	}
	pet.Name = strings.TrimSpace(pet.Name)
	if pet.Name == "" {
		return nil, ErrMissingPetName
	}

	pet.ID = uuid.New()
	pet.OwnerID = ownerID
	pet.OwnerName = s.names.ResolveDisplayName(ctx, ownerID)
	pet.Status = StatusAvailable
	pet.Timestamp = time.Now().UnixMilli()

	var uploadedID string
	if photo != nil {
		file, err := s.media.UploadFile(ctx, filename, mimeType, ownerID, photo)
		if err != nil {
			return nil, err
		}
		uploadedID = file.ID
		pet.ImageURL = s.media.MediaURL(file.ID)
	}

	if err := s.petRepo.CreatePet(ctx, &pet); err != nil {
		if uploadedID != "" {
			// the listing never landed; don't leave the photo orphaned
			if delErr := s.media.DeleteFile(ctx, uploadedID); delErr != nil {
				log.Printf("orphaned photo %s cleanup failed: %v", uploadedID, delErr)
			}
		}
		return nil, err
	}
	return &pet, nil
}

func (s *AdoptionService) ListAvailable(ctx context.Context) ([]Pet, error) {
	return s.petRepo.ListAvailable(ctx)
}

func (s *AdoptionService) GetPet(ctx context.Context, petID string) (*Pet, error) {
	return s.petRepo.GetPet(ctx, petID)
}

func (s *AdoptionService) UpdateListing(ctx context.Context, petID, callerID string, update ListingUpdate) (*Pet, error) {
	if callerID == "" {
		return nil, ErrNotAuthenticated
	}

	fields := bson.M{}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, ErrMissingPetName
		}
		fields["name"] = name
	}
	if update.Breed != nil {
		fields["breed"] = *update.Breed
	}
	if update.Age != nil {
		fields["age"] = *update.Age
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if len(fields) == 0 {
		return s.petRepo.GetPet(ctx, petID)
	}

	if err := s.petRepo.UpdateListing(ctx, petID, callerID, fields); err != nil {
		if errors.Is(err, ErrPetNotFound) {
			// distinguish "not yours" from "gone"
			if _, lookupErr := s.petRepo.GetPet(ctx, petID); lookupErr == nil {
				return nil, ErrNotOwner
			}
		}
		return nil, err
	}
	return s.petRepo.GetPet(ctx, petID)
}

// MarkAdopted is owner-only and one-way.
func (s *AdoptionService) MarkAdopted(ctx context.Context, petID, callerID string) error {
	if callerID == "" {
		return ErrNotAuthenticated
	}
	pet, err := s.petRepo.GetPet(ctx, petID)
	if err != nil {
		return err
	}
	if pet.OwnerID != callerID {
		return ErrNotOwner
	}
	return s.petRepo.MarkAdopted(ctx, petID)
}
