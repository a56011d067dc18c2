package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionName is the MongoDB collection holding registration documents.
const CollectionName = "registrations"

const duplicateKeyCode = 11000

type memberDocument struct {
	FullName string `bson:"fullName"`
	Email    string `bson:"email"`
	Phone    string `bson:"phone"`
	College  string `bson:"college"`
	Entered  bool   `bson:"entered"`
}

// registrationDocument is the stored form of a Registration. TeamNameKey holds
// the lower-cased team name and carries the case-insensitive unique index.
type registrationDocument struct {
	ID                  string           `bson:"_id"`
	PassID              string           `bson:"passId"`
	Email               string           `bson:"email"`
	TeamName            string           `bson:"teamName"`
	TeamNameKey         string           `bson:"teamNameKey"`
	TeamLeadFullName    string           `bson:"teamLeadFullName"`
	Phone               string           `bson:"phone"`
	College             string           `bson:"college"`
	Year                string           `bson:"year"`
	NumberOfTeamMembers int              `bson:"numberOfTeamMembers"`
	TeamMembers         []memberDocument `bson:"teamMembers"`
	Entered             bool             `bson:"entered"`
	CreatedAt           time.Time        `bson:"createdAt"`
	UpdatedAt           time.Time        `bson:"updatedAt"`
}

// MongoRepository implements Repository on a single MongoDB collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a new Repository backed by the registrations
// collection of db.
func NewMongoRepository(db *mongo.Database) Repository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// Create inserts a new registration document.
func (r *MongoRepository) Create(ctx context.Context, reg *Registration) error {
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	// BSON dates carry millisecond precision.
	now := time.Now().UTC().Truncate(time.Millisecond)
	reg.CreatedAt = now
	reg.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, toDocument(reg)); err != nil {
		if dup := duplicateFromWriteError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("inserting registration: %w", err)
	}
	return nil
}

// GetByEmail retrieves a registration by its normalized email.
func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*Registration, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByPassID retrieves a registration by its pass ID.
func (r *MongoRepository) GetByPassID(ctx context.Context, passID string) (*Registration, error) {
	return r.findOne(ctx, bson.M{"passId": passID})
}

// FindByPassIDOrEmail retrieves the first registration matching either key.
func (r *MongoRepository) FindByPassIDOrEmail(ctx context.Context, passID, email string) (*Registration, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"passId": passID},
		bson.M{"email": email},
	}})
}

// EmailExists reports whether a registration uses the given normalized email.
func (r *MongoRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("checking email existence: %w", err)
	}
	return n > 0, nil
}

// TeamNameExists reports whether a registration uses teamName, ignoring case.
func (r *MongoRepository) TeamNameExists(ctx context.Context, teamName string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"teamNameKey": teamNameKey(teamName)}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("checking team name existence: %w", err)
	}
	return n > 0, nil
}

// SetEntered applies every target with one $set on the matching document.
func (r *MongoRepository) SetEntered(ctx context.Context, passID string, targets []EntryTarget, entered bool) error {
	set := bson.M{}
	for _, t := range targets {
		switch t.Type {
		case PersonLead:
			set["entered"] = entered
		case PersonMember:
			set[fmt.Sprintf("teamMembers.%d.entered", t.MemberIndex)] = entered
		}
	}
	if len(set) == 0 {
		return fmt.Errorf("setting entered flags: no targets")
	}
	set["updatedAt"] = time.Now().UTC().Truncate(time.Millisecond)

	filter := bson.M{"passId": passID}
	if highest := maxMemberIndex(targets); highest >= 0 {
		// Without this guard $set would pad the array with nulls.
		filter[fmt.Sprintf("teamMembers.%d", highest)] = bson.M{"$exists": true}
	}

	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("updating entered flags: %w", err)
	}

	if result.MatchedCount == 0 {
		n, err := r.coll.CountDocuments(ctx, bson.M{"passId": passID}, options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("checking registration existence: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrMemberIndexOutOfRange
	}

	return nil
}

// List retrieves every registration ordered by creation time.
func (r *MongoRepository) List(ctx context.Context) ([]Registration, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("listing registrations: %w", err)
	}

	var docs []registrationDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding registrations: %w", err)
	}

	regs := make([]Registration, 0, len(docs))
	for i := range docs {
		reg, err := fromDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, nil
}

// Ping verifies the client can reach the deployment.
func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*Registration, error) {
	var doc registrationDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("finding registration: %w", err)
	}
	return fromDocument(&doc)
}

// MongoIndexes returns the unique indexes the registrations collection needs.
func MongoIndexes() []mongo.IndexModel {
	unique := func(name string) *options.IndexOptions {
		return options.Index().SetUnique(true).SetName(name)
	}
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique("email_1")},
		{Keys: bson.D{{Key: "passId", Value: 1}}, Options: unique("passId_1")},
		{Keys: bson.D{{Key: "teamNameKey", Value: 1}}, Options: unique("teamNameKey_1")},
	}
}

func teamNameKey(teamName string) string {
	return strings.ToLower(strings.TrimSpace(teamName))
}

func toDocument(reg *Registration) *registrationDocument {
	members := make([]memberDocument, 0, len(reg.TeamMembers))
	for _, m := range reg.TeamMembers {
		members = append(members, memberDocument(m))
	}
	return &registrationDocument{
		ID:                  reg.ID.String(),
		PassID:              reg.PassID,
		Email:               reg.Email,
		TeamName:            reg.TeamName,
		TeamNameKey:         teamNameKey(reg.TeamName),
		TeamLeadFullName:    reg.TeamLeadFullName,
		Phone:               reg.Phone,
		College:             reg.College,
		Year:                string(reg.Year),
		NumberOfTeamMembers: reg.NumberOfTeamMembers,
		TeamMembers:         members,
		Entered:             reg.Entered,
		CreatedAt:           reg.CreatedAt,
		UpdatedAt:           reg.UpdatedAt,
	}
}

func fromDocument(doc *registrationDocument) (*Registration, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing registration id %q: %w", doc.ID, err)
	}
	members := make([]TeamMember, 0, len(doc.TeamMembers))
	for _, m := range doc.TeamMembers {
		members = append(members, TeamMember(m))
	}
	return &Registration{
		ID:                  id,
		PassID:              doc.PassID,
		Email:               doc.Email,
		TeamName:            doc.TeamName,
		TeamLeadFullName:    doc.TeamLeadFullName,
		Phone:               doc.Phone,
		College:             doc.College,
		Year:                Year(doc.Year),
		NumberOfTeamMembers: doc.NumberOfTeamMembers,
		TeamMembers:         members,
		Entered:             doc.Entered,
		CreatedAt:           doc.CreatedAt.UTC(),
		UpdatedAt:           doc.UpdatedAt.UTC(),
	}, nil
}

// duplicateFromWriteError maps an E11000 write error to its sentinel by the
// name of the violated index. Returns nil for any other error.
func duplicateFromWriteError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	var we mongo.WriteException
	if !errors.As(err, &we) {
		return fmt.Errorf("duplicate key: %w", err)
	}
	for _, e := range we.WriteErrors {
		if e.Code != duplicateKeyCode {
			continue
		}
		switch indexName(e.Message) {
		case "email_1":
			return ErrEmailExists
		case "teamNameKey_1":
			return ErrTeamNameExists
		case "passId_1":
			return ErrPassIDExists
		}
		return fmt.Errorf("duplicate key: %s", e.Message)
	}
	return nil
}

// indexName extracts the index from "... index: <name> dup key: ...".
func indexName(msg string) string {
	_, after, ok := strings.Cut(msg, "index: ")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(after, " ")
	return name
}
