package adoption

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pawstogether/internal/dbmongo"
	"pawstogether/internal/observability"
)

var (
	ErrPetNotFound    = errors.New("pet not found")
	ErrAlreadyAdopted = errors.New("pet is already adopted")
)

const (
	StatusAvailable = "available"
	StatusAdopted   = "adopted"
)

// Pet is a listing; status only ever moves available -> adopted.
type Pet struct {
	ID          string `bson:"_id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Breed       string `bson:"breed" json:"breed"`
	Age         int    `bson:"age" json:"age"`
	Description string `bson:"description" json:"description"`
	ImageURL    string `bson:"imageUrl" json:"imageUrl"`
	OwnerID     string `bson:"ownerId" json:"ownerId"`
	OwnerName   string `bson:"ownerName" json:"ownerName"`
	Status      string `bson:"status" json:"status"`
	Timestamp   int64  `bson:"timestamp" json:"timestamp"`
}

type Pets interface {
	CreatePet(ctx context.Context, pet *Pet) error
	GetPet(ctx context.Context, id string) (*Pet, error)
	ListAvailable(ctx context.Context) ([]Pet, error)
	UpdateListing(ctx context.Context, id, ownerID string, fields bson.M) error
	MarkAdopted(ctx context.Context, id string) error
}

type AdoptionRepository struct {
	pets *mongo.Collection
}

func NewAdoptionRepository(mc *dbmongo.MongoClient) *AdoptionRepository {
	return &AdoptionRepository{pets: mc.Database.Collection("adoption_pets")}
}

func (r *AdoptionRepository) CreatePet(ctx context.Context, pet *Pet) error {
	_, err := r.pets.InsertOne(ctx, pet)
	if err != nil {
		return fmt.Errorf("pet insert failed: %w", err)
	}
	return nil
}

func (r *AdoptionRepository) GetPet(ctx context.Context, id string) (*Pet, error) {
	var pet Pet
	err := r.pets.FindOne(ctx, bson.M{"_id": id}).Decode(&pet)
	if err == mongo.ErrNoDocuments {
		return nil, ErrPetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pet lookup failed: %w", err)
	}
	return &pet, nil
}

// ListAvailable returns adoptable pets, newest listing first. Malformed
// documents are skipped.
func (r *AdoptionRepository) ListAvailable(ctx context.Context) ([]Pet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.pets.Find(ctx, bson.M{"status": StatusAvailable}, opts)
	if err != nil {
		return nil, fmt.Errorf("pet list query failed: %w", err)
	}
	defer cur.Close(ctx)

	var out []Pet
	for cur.Next(ctx) {
		var p Pet
		if err := cur.Decode(&p); err != nil {
			log.Printf("skipping malformed pet listing: %v", err)
			observability.IncDecodeSkip("adoption_pets")
			continue
		}
		out = append(out, p)
	}
	return out, cur.Err()
}

// UpdateListing lets only the owner change listing fields; status is managed
// exclusively by MarkAdopted.
func (r *AdoptionRepository) UpdateListing(ctx context.Context, id, ownerID string, fields bson.M) error {
	delete(fields, "status")
	res, err := r.pets.UpdateOne(ctx,
		bson.M{"_id": id, "ownerId": ownerID},
		bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("pet update failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrPetNotFound
	}
	return nil
}

// MarkAdopted flips available -> adopted; the filter guard makes the
// transition one-way and a second call an error, never a double flip.
func (r *AdoptionRepository) MarkAdopted(ctx context.Context, id string) error {
	res, err := r.pets.UpdateOne(ctx,
		bson.M{"_id": id, "status": StatusAvailable},
		bson.M{"$set": bson.M{"status": StatusAdopted}})
	if err != nil {
		return fmt.Errorf("adopt update failed: %w", err)
	}
	if res.MatchedCount == 0 {
		count, err := r.pets.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("pet existence check failed: %w", err)
		}
		if count == 0 {
			return ErrPetNotFound
		}
		return ErrAlreadyAdopted
	}
	return nil
}
