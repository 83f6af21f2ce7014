package backend

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/kintree/pkg/family"
)

// personDoc is the MongoDB document for one person.
type personDoc struct {
	ID          int      `bson:"_id"`
	Ord         int      `bson:"ord"`
	Name        string   `bson:"name"`
	BirthDate   *string  `bson:"birth_date,omitempty"`
	Description *string  `bson:"description,omitempty"`
	Parents     []int    `bson:"parents"`
	Children    []int    `bson:"children"`
	X           *float64 `bson:"x,omitempty"`
	Y           *float64 `bson:"y,omitempty"`
}

func toDoc(p family.Person, ord int) personDoc {
	d := personDoc{
		ID:          p.ID,
		Ord:         ord,
		Name:        p.Name,
		BirthDate:   p.BirthDate,
		Description: p.Description,
		Parents:     p.Parents,
		Children:    p.Children,
	}
	if d.Parents == nil {
		d.Parents = []int{}
	}
	if d.Children == nil {
		d.Children = []int{}
	}
	if p.Position != nil {
		x, y := p.Position.X, p.Position.Y
		d.X, d.Y = &x, &y
	}
	return d
}

func (d personDoc) person() family.Person {
	p := family.Person{
		ID:          d.ID,
		Name:        d.Name,
		BirthDate:   d.BirthDate,
		Description: d.Description,
		Parents:     d.Parents,
		Children:    d.Children,
	}
	if d.X != nil && d.Y != nil {
		p.Position = &family.Position{X: *d.X, Y: *d.Y}
	}
	return p
}

// MongoBackend stores one document per person in a collection.
type MongoBackend struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoBackend connects to uri and uses database.collection.
func NewMongoBackend(ctx context.Context, uri, database, collection string) (*MongoBackend, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoBackend{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Load reads every document in stored order.
func (b *MongoBackend) Load(ctx context.Context) ([]family.Person, error) {
	opts := options.Find().SetSort(bson.D{{Key: "ord", Value: 1}})
	cursor, err := b.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find people: %w", err)
	}
	var docs []personDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode people: %w", err)
	}

	var people []family.Person
	for _, d := range docs {
		people = append(people, d.person())
	}
	return people, nil
}

// Save makes the collection hold exactly people. Documents are upserted by id
// first and stale ids are removed last, in one ordered bulk write, so a write
// that fails partway never leaves the collection missing a saved person.
func (b *MongoBackend) Save(ctx context.Context, people []family.Person) error {
	opts := options.BulkWrite().SetOrdered(true)
	if _, err := b.collection.BulkWrite(ctx, saveModels(people), opts); err != nil {
		return fmt.Errorf("write people: %w", err)
	}
	return nil
}

// saveModels returns one upsert per person followed by the delete of every
// document whose id is not in people. The result is never empty.
func saveModels(people []family.Person) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, len(people)+1)
	ids := make(bson.A, 0, len(people))
	for i, p := range people {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.D{{Key: "_id", Value: p.ID}}).
			SetReplacement(toDoc(p, i)).
			SetUpsert(true))
		ids = append(ids, p.ID)
	}
	stale := bson.D{{Key: "_id", Value: bson.D{{Key: "$nin", Value: ids}}}}
	return append(models, mongo.NewDeleteManyModel().SetFilter(stale))
}

// Close disconnects the client.
func (b *MongoBackend) Close() error {
	return b.client.Disconnect(context.Background())
}

var _ family.Backend = (*MongoBackend)(nil)
