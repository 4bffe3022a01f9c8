package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mealbook/entity"
	"mealbook/internal/config"
	"mealbook/internal/invite"
)

const (
	collectionUsers   = "users"
	collectionInvites = "invites"
	collectionUsage   = "invite_usage"
	collectionRecipes = "recipes"
	collectionRatings = "ratings"
)

// ErrCodeExists is reported when invite creation collides with an
// existing code.
var ErrCodeExists = errors.New("invite code already exists")

// ErrCodeNotFound is reported when a code lookup or revoke finds nothing.
var ErrCodeNotFound = errors.New("invite code not found")

type MongoDB struct {
	ctx           context.Context
	clientOptions *options.ClientOptions
	database      string
}

func NewMongoClient(conf *config.Config) *MongoDB {
	if !conf.Mongo.Enabled {
		return nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		ctx:           context.Background(),
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
	}
	return client
}

func (m *MongoDB) connect() (*mongo.Client, error) {
	connection, err := mongo.Connect(m.ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	_ = connection.Disconnect(m.ctx)
}

func (m *MongoDB) GetUser(token string) (*entity.User, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionUsers)
	filter := bson.D{{Key: "token", Value: token}}
	var user entity.User
	err = collection.FindOne(m.ctx, filter).Decode(&user)
	return &user, err
}

// Redeem applies the redemption transaction for one attempt: the
// conditional consume of the code document and the guarded insert of the
// usage record, inside one session transaction so both commit or neither
// does. A zero-match consume or a duplicate usage key aborts with
// invite.ErrConditionFailed; every other error is a backend fault.
//
// Requires a deployment that supports transactions (replica set). The
// usage collection's _id supplies the insert's uniqueness guard.
func (m *MongoDB) Redeem(ctx context.Context, attempt *invite.Attempt) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	session, err := connection.StartSession()
	if err != nil {
		return fmt.Errorf("mongodb session: %w", err)
	}
	defer session.EndSession(ctx)

	db := connection.Database(m.database)
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := db.Collection(collectionInvites).UpdateOne(sc,
			redemptionFilter(attempt.Code, attempt.At),
			consumeUpdate(attempt))
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, invite.ErrConditionFailed
		}

		_, err = db.Collection(collectionUsage).InsertOne(sc, attempt.Record)
		if mongo.IsDuplicateKeyError(err) {
			return nil, invite.ErrConditionFailed
		}
		return nil, err
	})
	return err
}

// CreateInviteCode stores a new code. Creation never overwrites: a
// second create with the same code reports ErrCodeExists.
func (m *MongoDB) CreateInviteCode(code *entity.InviteCode) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionInvites)
	filter := bson.D{{Key: "code", Value: code.Code}}
	update := bson.D{{Key: "$setOnInsert", Value: code}}
	opts := options.Update().SetUpsert(true)
	res, err := collection.UpdateOne(m.ctx, filter, update, opts)
	if err != nil {
		return err
	}
	if res.UpsertedCount == 0 {
		return ErrCodeExists
	}
	return nil
}

// RevokeInviteCode permanently disables a code. The uses counter and
// audit fields are left untouched.
func (m *MongoDB) RevokeInviteCode(code string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionInvites)
	filter := bson.D{{Key: "code", Value: code}}
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "revoked", Value: true}}}}
	res, err := collection.UpdateOne(m.ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrCodeNotFound
	}
	return nil
}

func (m *MongoDB) GetInviteCode(code string) (*entity.InviteCode, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionInvites)
	filter := bson.D{{Key: "code", Value: code}}
	var inviteCode entity.InviteCode
	err = collection.FindOne(m.ctx, filter).Decode(&inviteCode)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inviteCode, nil
}

func (m *MongoDB) GetInviteCodes() ([]*entity.InviteCode, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionInvites)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := collection.Find(m.ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var codes []*entity.InviteCode
	err = cursor.All(m.ctx, &codes)
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (m *MongoDB) GetRecipes() ([]*entity.Recipe, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionRecipes)
	cursor, err := collection.Find(m.ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var recipes []*entity.Recipe
	err = cursor.All(m.ctx, &recipes)
	if err != nil {
		return nil, err
	}
	return recipes, nil
}

func (m *MongoDB) GetRecipe(id string) (*entity.Recipe, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionRecipes)
	filter := bson.D{{Key: "recipe_id", Value: id}}
	var recipe entity.Recipe
	err = collection.FindOne(m.ctx, filter).Decode(&recipe)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (m *MongoDB) SaveRecipe(recipe *entity.Recipe) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionRecipes)
	filter := bson.D{{Key: "recipe_id", Value: recipe.RecipeId}}
	update := bson.D{{Key: "$set", Value: recipe}}
	opts := options.Update().SetUpsert(true)
	_, err = collection.UpdateOne(m.ctx, filter, update, opts)
	return err
}

func (m *MongoDB) DeleteRecipe(id string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionRecipes)
	filter := bson.D{{Key: "recipe_id", Value: id}}
	_, err = collection.DeleteOne(m.ctx, filter)
	return err
}

func (m *MongoDB) SaveRating(rating *entity.Rating) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionRatings)
	_, err = collection.InsertOne(m.ctx, rating)
	return err
}

func (m *MongoDB) GetRatings(recipeId string) ([]*entity.Rating, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionRatings)
	filter := bson.D{}
	if recipeId != "" {
		filter = bson.D{{Key: "recipe_id", Value: recipeId}}
	}
	cursor, err := collection.Find(m.ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(m.ctx)

	var ratings []*entity.Rating
	err = cursor.All(m.ctx, &ratings)
	if err != nil {
		return nil, err
	}
	return ratings, nil
}
