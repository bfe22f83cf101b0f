package meta

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/yeisme/filecdn/pkg/configs"
	"github.com/yeisme/filecdn/pkg/internal/model"
)

func init() {
	RegisterFactory(configs.MetaTypeMongo, newMongoStore)
}

// fileDoc 持久化文档结构 { _id, name, ext, type }.
type fileDoc struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
	Ext  string             `bson:"ext"`
	Type string             `bson:"type"`
}

func (d *fileDoc) record() *model.FileRecord {
	return &model.FileRecord{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Extension: d.Ext,
		MimeType:  d.Type,
	}
}

// MongoStore 基于 MongoDB 集合的元数据存储.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	logger *zerolog.Logger
}

func newMongoStore(ctx context.Context, opts Options) (Store, error) {
	cfg := opts.Config.Mongo

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc

		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)

		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	opts.Logger.Info().
		Str("database", opts.Database).
		Str("collection", opts.Config.Collection).
		Msg("mongo meta store connected")

	return NewMongoStore(client, opts.Database, opts.Config.Collection, opts.Logger), nil
}

// NewMongoStore 使用已有的客户端创建存储.
func NewMongoStore(client *mongo.Client, database, collection string, logger *zerolog.Logger) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
		logger: logger,
	}
}

func (s *MongoStore) Create(ctx context.Context, rec model.FileRecord) (string, error) {
	res, err := s.coll.InsertOne(ctx, fileDoc{Name: rec.Name, Ext: rec.Extension, Type: rec.MimeType})
	if err != nil {
		return "", fmt.Errorf("insert file record: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert file record: unexpected id type %T", res.InsertedID)
	}

	return oid.Hex(), nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*model.FileRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil //nolint:nilnil // 非法 id 等同于不存在
	}

	var doc fileDoc

	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil //nolint:nilnil // 不存在
	}

	if err != nil {
		return nil, fmt.Errorf("find file record %s: %w", id, err)
	}

	return doc.record(), nil
}

func (s *MongoStore) GetAll(ctx context.Context) ([]model.FileRecord, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list file records: %w", err)
	}
	defer cur.Close(ctx)

	var docs []fileDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode file records: %w", err)
	}

	out := make([]model.FileRecord, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].record())
	}

	return out, nil
}

func (s *MongoStore) Update(ctx context.Context, id string, patch model.Patch) (*model.FileRecord, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil //nolint:nilnil // 非法 id 等同于不存在
	}

	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}

	if patch.Extension != nil {
		set["ext"] = *patch.Extension
	}

	if patch.MimeType != nil {
		set["type"] = *patch.MimeType
	}

	if len(set) == 0 {
		return s.Get(ctx, id)
	}

	var doc fileDoc

	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil //nolint:nilnil // 不存在
	}

	if err != nil {
		return nil, fmt.Errorf("update file record %s: %w", id, err)
	}

	return doc.record(), nil
}

func (s *MongoStore) SearchAll(ctx context.Context, query string, field model.Field) ([]model.FileRecord, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return Filter(all, query, field), nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
