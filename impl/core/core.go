package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mealbook/entity"
	"mealbook/internal/invite"
	"mealbook/internal/storage"
	"mealbook/lib/clock"
	"mealbook/lib/sl"
)

// Database is the durable state the core depends on.
// Implemented by internal/database/mongo.go.
type Database interface {
	invite.Store
	GetUser(token string) (*entity.User, error)
	GetRecipes() ([]*entity.Recipe, error)
	GetRecipe(id string) (*entity.Recipe, error)
	SaveRecipe(recipe *entity.Recipe) error
	DeleteRecipe(id string) error
	SaveRating(rating *entity.Rating) error
	GetRatings(recipeId string) ([]*entity.Rating, error)
}

type AuthService interface {
	UserByToken(token string) (*entity.User, error)
}

// Notifier delivers short messages to the service admins.
// Implemented by bot.TgBot.
type Notifier interface {
	NotifyAdmins(msg string)
}

type Core struct {
	db       Database
	redeemer *invite.Service
	store    *storage.ObjectStorage
	auth     AuthService
	notifier Notifier
	log      *slog.Logger
}

func New(db Database, log *slog.Logger) *Core {
	if db == nil {
		panic("database is nil")
	}
	return &Core{
		db:       db,
		redeemer: invite.NewService(db, log),
		log:      log.With(sl.Module("core")),
	}
}

func (c *Core) SetAuthService(auth AuthService) {
	c.auth = auth
}

func (c *Core) SetObjectStorage(store *storage.ObjectStorage) {
	c.store = store
}

func (c *Core) SetNotifier(notifier Notifier) {
	c.notifier = notifier
}

func (c *Core) AuthenticateByToken(token string) (*entity.User, error) {
	if c.auth == nil {
		return nil, fmt.Errorf("auth service not connected")
	}
	return c.auth.UserByToken(token)
}

// RedeemInvite gates one registration attempt on its invite code.
// The wall-clock instant is captured here, once, so the whole attempt is
// judged against a single timestamp.
func (c *Core) RedeemInvite(ctx context.Context, attempt *entity.SignupAttempt) (invite.Decision, error) {
	decision, err := c.redeemer.Redeem(ctx, attempt.InviteCode, attempt.Identity(), time.Now().UTC())
	if err != nil {
		return decision, err
	}
	if decision == invite.Allow && c.notifier != nil {
		c.notifier.NotifyAdmins(fmt.Sprintf("Invite redeemed by %s", attempt.Email))
	}
	return decision, nil
}

func (c *Core) Recipes() ([]*entity.Recipe, error) {
	return c.db.GetRecipes()
}

func (c *Core) Recipe(id string) (*entity.Recipe, error) {
	return c.db.GetRecipe(id)
}

func (c *Core) CreateRecipe(user *entity.User, recipe *entity.Recipe) (*entity.Recipe, error) {
	now := clock.Unix()
	recipe.RecipeId = uuid.New().String()
	recipe.CreatedAt = now
	recipe.CreatedBySub = user.Username
	recipe.CreatedByName = user.DisplayName()
	recipe.UpdatedAt = now
	recipe.UpdatedBySub = user.Username
	recipe.UpdatedByName = user.DisplayName()

	if err := c.db.SaveRecipe(recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

// UpdateRecipe replaces a recipe's content while preserving the original
// creation metadata.
func (c *Core) UpdateRecipe(user *entity.User, id string, recipe *entity.Recipe) (*entity.Recipe, error) {
	existing, err := c.db.GetRecipe(id)
	if err != nil {
		return nil, err
	}

	now := clock.Unix()
	recipe.RecipeId = id
	if existing != nil {
		recipe.CreatedAt = existing.CreatedAt
		recipe.CreatedBySub = existing.CreatedBySub
		recipe.CreatedByName = existing.CreatedByName
	} else {
		recipe.CreatedAt = now
		recipe.CreatedBySub = user.Username
		recipe.CreatedByName = user.DisplayName()
	}
	recipe.UpdatedAt = now
	recipe.UpdatedBySub = user.Username
	recipe.UpdatedByName = user.DisplayName()

	if err = c.db.SaveRecipe(recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (c *Core) DeleteRecipe(id string) error {
	return c.db.DeleteRecipe(id)
}

func (c *Core) CreateRating(user *entity.User, rating *entity.Rating) (*entity.Rating, error) {
	rating.RatingId = uuid.New().String()
	rating.CreatedBy = user.Username
	rating.CreatedAt = clock.Unix()

	if err := c.db.SaveRating(rating); err != nil {
		return nil, err
	}
	return rating, nil
}

func (c *Core) Ratings(recipeId string) ([]*entity.Rating, error) {
	return c.db.GetRatings(recipeId)
}

func (c *Core) IssueUpload(ctx context.Context, filename string) (*entity.UploadTicket, error) {
	if c.store == nil {
		return nil, fmt.Errorf("object storage not connected")
	}
	return c.store.IssueUpload(ctx, filename)
}

func (c *Core) ImageUrl(ctx context.Context, key string) (string, error) {
	if c.store == nil {
		return "", fmt.Errorf("object storage not connected")
	}
	return c.store.ViewUrl(ctx, key)
}
