// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password every generated user gets.
const DemoPassword = "SeedingPass12!"

// Options controls how much data the seeder generates.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// DryRun builds entities without writing them.
	DryRun bool
	// SkipBcrypt stores the demo password in plain text. Login will not
	// work for those users, but bulk seeding gets much faster.
	SkipBcrypt bool
	// MaxDays spreads created_at timestamps over this many days back.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and by tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Factory{
		db:   db,
		opts: opts,
		//nolint:gosec // Weak random number generator is fine for seeding
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID: 1000,
	}
}

// spreadCreatedAt returns a timestamp up to opts.MaxDays in the past so
// seeded content does not all land on one instant.
func (f *Factory) spreadCreatedAt() time.Time {
	daysBack := f.rng.Intn(f.opts.MaxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
	}

	if f.opts.SkipBcrypt {
		user.Password = DemoPassword
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s <%s>", user.Username, user.Email)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post struct without persisting it. Useful for
// batching.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Title:    gofakeit.Sentence(5),
		Body:     gofakeit.Paragraph(1, 3, 5, "\n"),
		AuthorID: author.ID,
		// roughly one post in ten is flagged
		Safe:      f.rng.Intn(10) != 0,
		CreatedAt: f.spreadCreatedAt(),
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost constructs and persists a sample `models.Post` for the given author.
func (f *Factory) CreatePost(author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, overrides...)

	if f.opts.DryRun {
		f.nextID++
		post.ID = f.nextID
		log.Printf("[dry-run] CreatePost: author=%d title=%q safe=%t", post.AuthorID, post.Title, post.Safe)
		return post, nil
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post authored by the provided user.
func (f *Factory) CreateComment(author *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	authorID := author.ID
	comment := &models.Comment{
		Body:      gofakeit.Sentence(8),
		AuthorID:  &authorID,
		PostID:    post.ID,
		CreatedAt: f.spreadCreatedAt(),
	}

	for _, override := range overrides {
		override(comment)
	}

	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateTag tags a user on a post.
func (f *Factory) CreateTag(user *models.User, post *models.Post) (*models.UserTag, error) {
	tag := &models.UserTag{
		UserID:    user.ID,
		PostID:    post.ID,
		CreatedAt: f.spreadCreatedAt(),
	}

	if f.opts.DryRun {
		f.nextID++
		tag.ID = f.nextID
		return tag, nil
	}

	if err := f.db.Create(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}

// LikePost persists a like from `user` on `post`.
func (f *Factory) LikePost(user *models.User, post *models.Post) error {
	return f.createLike(&models.Like{
		UserID:     user.ID,
		TargetKind: models.LikeTargetPost,
		TargetID:   post.ID,
	})
}

// LikeComment persists a like from `user` on `comment`.
func (f *Factory) LikeComment(user *models.User, comment *models.Comment) error {
	return f.createLike(&models.Like{
		UserID:     user.ID,
		TargetKind: models.LikeTargetComment,
		TargetID:   comment.ID,
	})
}

func (f *Factory) createLike(like *models.Like) error {
	if f.opts.DryRun {
		f.nextID++
		like.ID = f.nextID
		return nil
	}
	return f.db.Create(like).Error
}
